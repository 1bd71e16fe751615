package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserAlreadyExists is returned when the email or username is taken.
	ErrUserAlreadyExists = errors.New("User already exists")
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("User not found")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrEmailNotVerified is returned on login before OTP verification.
	ErrEmailNotVerified = errors.New("Email not verified")
	// ErrAlreadyVerified is returned when resending an OTP to a verified account.
	ErrAlreadyVerified = errors.New("Email is already verified")
	// ErrInvalidOTP is returned when an OTP does not match or has expired.
	ErrInvalidOTP = errors.New("Invalid or expired OTP")
	// ErrMailDelivery is returned when the OTP mail cannot be sent.
	ErrMailDelivery = errors.New("Failed to send verification email. Please try again.")

	// ErrCarNotFound is returned when a car lookup misses.
	ErrCarNotFound = errors.New("Car not found")
	// ErrNotCarOwner is returned when a non-seller, non-admin mutates a listing.
	ErrNotCarOwner = errors.New("not authorized to modify this car")
	// ErrImageRequired is returned when a mutation would leave a car imageless.
	ErrImageRequired = errors.New("At least one car image is required")

	// ErrLastAdmin guards against removing or demoting the final admin.
	ErrLastAdmin = errors.New("Cannot remove the last remaining admin")
	// ErrAlreadyAdmin is returned when promoting an admin.
	ErrAlreadyAdmin = errors.New("User already admin")
	// ErrNotAdmin is returned when demoting a non-admin.
	ErrNotAdmin = errors.New("User is not an admin")
	// ErrSelfPromotion is returned when an admin promotes themselves.
	ErrSelfPromotion = errors.New("You are already an admin.")
)

// MessageResponse is the JSON error body the frontend expects.
type MessageResponse struct {
	Message string `json:"message"`
}

// HTTPError pairs a status code with a client-safe message.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors become
// an opaque 500 so internals never leak to the client.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrCarNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrEmailNotVerified):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrUserAlreadyExists),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrInvalidOTP),
		errors.Is(err, ErrImageRequired),
		errors.Is(err, ErrLastAdmin),
		errors.Is(err, ErrNotAdmin),
		errors.Is(err, ErrSelfPromotion):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotCarOwner):
		// Source behavior: ownership failures surface as 401, not 403.
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrMailDelivery):
		return NewHTTPError(http.StatusInternalServerError, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Server error")
	}
}
