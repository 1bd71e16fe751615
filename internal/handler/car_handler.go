package handler

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"cardealer/internal/errors"
	"cardealer/internal/middleware"
	"cardealer/internal/repository"
	"cardealer/internal/service"
)

const maxSearchQueryLen = 100

// CarHandler handles listing endpoints.
type CarHandler struct {
	carService service.CarService
}

// NewCarHandler creates a new car handler.
func NewCarHandler(carService service.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

// CarRequest represents a create/update listing payload. On update every
// field is optional; on create the required tags apply.
type CarRequest struct {
	Make          string   `json:"make"`
	Model         string   `json:"model"`
	Year          int      `json:"year" validate:"omitempty,min=1900"`
	Price         string   `json:"price"`
	Mileage       int      `json:"mileage" validate:"omitempty,min=0"`
	Color         string   `json:"color"`
	FuelType      string   `json:"fuelType" validate:"omitempty,oneof=Petrol Diesel Electric Hybrid LPG CNG"`
	Transmission  string   `json:"transmission" validate:"omitempty,oneof=Manual Automatic CVT Semi-Automatic"`
	EngineSize    string   `json:"engineSize"`
	BodyType      string   `json:"bodyType" validate:"omitempty,oneof=Sedan SUV Hatchback Coupe Convertible Wagon Pickup Van"`
	Doors         int      `json:"doors" validate:"omitempty,min=2,max=5"`
	Seats         int      `json:"seats" validate:"omitempty,min=2,max=9"`
	Images        []string `json:"images" validate:"omitempty,dive,url"`
	Description   string   `json:"description" validate:"omitempty,min=20"`
	Features      []string `json:"features"`
	Condition     string   `json:"condition" validate:"omitempty,oneof=Excellent Good Fair Poor"`
	IsAvailable   *bool    `json:"isAvailable"`
	IsFeatured    *bool    `json:"isFeatured"`
	Location      string   `json:"location"`
	ContactNumber string   `json:"contactNumber"`
}

// requireCreateFields enforces the fields a new listing cannot omit.
// Updates are partial, so these checks only run on create.
func (r *CarRequest) requireCreateFields() string {
	required := []struct {
		name string
		ok   bool
	}{
		{"make", r.Make != ""},
		{"model", r.Model != ""},
		{"year", r.Year != 0},
		{"price", r.Price != ""},
		{"mileage", r.Mileage >= 0},
		{"color", r.Color != ""},
		{"fuelType", r.FuelType != ""},
		{"transmission", r.Transmission != ""},
		{"engineSize", r.EngineSize != ""},
		{"bodyType", r.BodyType != ""},
		{"doors", r.Doors != 0},
		{"seats", r.Seats != 0},
		{"description", r.Description != ""},
		{"condition", r.Condition != ""},
		{"location", r.Location != ""},
		{"contactNumber", r.ContactNumber != ""},
	}
	for _, f := range required {
		if !f.ok {
			return f.name + " is required"
		}
	}
	return ""
}

func (r *CarRequest) toInput() service.CarInput {
	return service.CarInput{
		Make:          r.Make,
		Model:         r.Model,
		Year:          r.Year,
		Price:         r.Price,
		Mileage:       r.Mileage,
		Color:         r.Color,
		FuelType:      r.FuelType,
		Transmission:  r.Transmission,
		EngineSize:    r.EngineSize,
		BodyType:      r.BodyType,
		Doors:         r.Doors,
		Seats:         r.Seats,
		Images:        r.Images,
		Description:   r.Description,
		Features:      r.Features,
		Condition:     r.Condition,
		IsAvailable:   r.IsAvailable,
		IsFeatured:    r.IsFeatured,
		Location:      r.Location,
		ContactNumber: r.ContactNumber,
	}
}

// RemoveImagesRequest lists image URLs to drop from a listing.
type RemoveImagesRequest struct {
	ImageURLs []string `json:"imageUrls" validate:"required,min=1"`
}

// ListCars godoc
// @Summary Browse listings with filters and pagination
// @Tags cars
// @Produce json
// @Param page query int false "Page (default 1)"
// @Param limit query int false "Page size (default 5, max 100)"
// @Param color query string false "Color substring"
// @Param make query string false "Make substring"
// @Param fuelType query string false "Fuel type"
// @Param bodyType query string false "Body type"
// @Param condition query string false "Condition"
// @Param minPrice query number false "Minimum price"
// @Param maxPrice query number false "Maximum price"
// @Success 200 {object} service.CarPage
// @Router /cars [get]
func (h *CarHandler) ListCars(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	filter := repository.CarFilter{
		Color:     c.QueryParam("color"),
		Make:      c.QueryParam("make"),
		FuelType:  c.QueryParam("fuelType"),
		BodyType:  c.QueryParam("bodyType"),
		Condition: c.QueryParam("condition"),
	}
	if v := c.QueryParam("minPrice"); v != "" {
		if price, err := decimal.NewFromString(v); err == nil {
			filter.MinPrice = &price
		}
	}
	if v := c.QueryParam("maxPrice"); v != "" {
		if price, err := decimal.NewFromString(v); err == nil {
			filter.MaxPrice = &price
		}
	}

	result, err := h.carService.ListCars(c.Request().Context(), filter, page, limit)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, result)
}

// FeaturedCars godoc
// @Summary Get featured listings
// @Tags cars
// @Produce json
// @Success 200 {array} model.Car
// @Router /cars/featured [get]
func (h *CarHandler) FeaturedCars(c echo.Context) error {
	cars, err := h.carService.FeaturedCars(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, cars)
}

// SearchCars godoc
// @Summary Free-text search across listings
// @Tags cars
// @Produce json
// @Param q query string true "Search query (max 100 chars)"
// @Success 200 {array} model.Car
// @Failure 400 {object} errors.MessageResponse
// @Router /cars/search [get]
func (h *CarHandler) SearchCars(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Search query is required"})
	}
	if len(query) > maxSearchQueryLen {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Search query too long (max 100 characters)"})
	}

	cars, err := h.carService.SearchCars(c.Request().Context(), query)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, cars)
}

// GetCar godoc
// @Summary Get a single listing
// @Tags cars
// @Produce json
// @Param id path string true "Car ID"
// @Success 200 {object} model.Car
// @Failure 404 {object} errors.MessageResponse
// @Router /cars/{id} [get]
func (h *CarHandler) GetCar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errors.MessageResponse{Message: "Car not found"})
	}

	car, err := h.carService.GetCar(c.Request().Context(), id)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, car)
}

// CreateCar godoc
// @Summary Create a listing
// @Tags cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CarRequest true "Listing data"
// @Success 201 {object} model.Car
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /cars [post]
func (h *CarHandler) CreateCar(c echo.Context) error {
	var req CarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}
	if missing := req.requireCreateFields(); missing != "" {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: missing})
	}

	seller := middleware.CurrentUser(c)
	car, err := h.carService.CreateCar(c.Request().Context(), seller, req.toInput())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusCreated, car)
}

// UpdateCar godoc
// @Summary Update a listing (seller or admin)
// @Tags cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Car ID"
// @Param request body CarRequest true "Listing changes"
// @Success 200 {object} model.Car
// @Failure 401 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /cars/{id} [put]
func (h *CarHandler) UpdateCar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errors.MessageResponse{Message: "Car not found"})
	}

	var req CarRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: err.Error()})
	}

	actor := middleware.CurrentUser(c)
	car, err := h.carService.UpdateCar(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		if err == errors.ErrNotCarOwner {
			return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized to update this car"})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, car)
}

// DeleteCar godoc
// @Summary Delete a listing (seller or admin)
// @Tags cars
// @Produce json
// @Security BearerAuth
// @Param id path string true "Car ID"
// @Success 200 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Failure 404 {object} errors.MessageResponse
// @Router /cars/{id} [delete]
func (h *CarHandler) DeleteCar(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errors.MessageResponse{Message: "Car not found"})
	}

	actor := middleware.CurrentUser(c)
	if err := h.carService.DeleteCar(c.Request().Context(), actor, id); err != nil {
		if err == errors.ErrNotCarOwner {
			return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized to delete this car"})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}
	return c.JSON(http.StatusOK, errors.MessageResponse{Message: "Car removed"})
}

// RemoveImages godoc
// @Summary Remove image URLs from a listing (seller or admin)
// @Tags cars
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Car ID"
// @Param request body RemoveImagesRequest true "Image URLs to remove"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.MessageResponse
// @Failure 401 {object} errors.MessageResponse
// @Router /cars/{id}/images [delete]
func (h *CarHandler) RemoveImages(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusNotFound, errors.MessageResponse{Message: "Car not found"})
	}

	var req RemoveImagesRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Image URLs array is required"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.MessageResponse{Message: "Image URLs array is required"})
	}

	actor := middleware.CurrentUser(c)
	remaining, err := h.carService.RemoveImages(c.Request().Context(), actor, id, req.ImageURLs)
	if err != nil {
		if err == errors.ErrNotCarOwner {
			return c.JSON(http.StatusUnauthorized, errors.MessageResponse{Message: "Not authorized to modify this car"})
		}
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errors.MessageResponse{Message: httpErr.Message})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "Images removed successfully",
		"remainingImages": remaining,
	})
}
