package mail

const verificationTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Email Verification</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="border: 1px solid #ddd; border-radius: 5px; padding: 20px; background-color: #f9f9f9;">
        <div style="text-align: center; padding-bottom: 10px; border-bottom: 2px solid #4a90e2; margin-bottom: 20px;">
            <h1>Email Verification</h1>
        </div>
        <p>Hello {{username}},</p>
        <p>Thank you for registering with Car Dealership. To verify your account, please use the following OTP:</p>
        <p style="text-align: center;">
            <span style="font-size: 24px; font-weight: bold; color: #4a90e2; letter-spacing: 5px; padding: 5px 10px; background-color: #f0f7ff; border-radius: 3px;">{{otp}}</span>
        </p>
        <p>This OTP will expire in 15 minutes. If you did not request this verification, please ignore this email.</p>
        <div style="margin-top: 20px; text-align: center; font-size: 12px; color: #777;">
            <p>Car Dealership Team</p>
        </div>
    </div>
</body>
</html>`

const passwordResetTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <title>Password Reset</title>
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="border: 1px solid #ddd; border-radius: 5px; padding: 20px; background-color: #f9f9f9;">
        <div style="text-align: center; padding-bottom: 10px; border-bottom: 2px solid #4a90e2; margin-bottom: 20px;">
            <h1>Password Reset</h1>
        </div>
        <p>A password reset was requested for {{email}}.</p>
        <p>Use the following OTP to reset your password:</p>
        <p style="text-align: center;">
            <span style="font-size: 24px; font-weight: bold; color: #4a90e2; letter-spacing: 5px; padding: 5px 10px; background-color: #f0f7ff; border-radius: 3px;">{{otp}}</span>
        </p>
        <p>This OTP will expire in 15 minutes. If you did not request a reset, you can safely ignore this email.</p>
        <div style="margin-top: 20px; text-align: center; font-size: 12px; color: #777;">
            <p>Car Dealership Team</p>
        </div>
    </div>
</body>
</html>`
