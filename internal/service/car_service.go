package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardealer/internal/cache"
	"cardealer/internal/errors"
	"cardealer/internal/model"
	"cardealer/internal/repository"
)

const (
	carCacheTTL      = 5 * time.Minute
	featuredCacheKey = "cars:featured"
	featuredLimit    = 6

	defaultPageSize = 5
	maxPageSize     = 100
)

// CarInput carries the writable fields of a listing.
type CarInput struct {
	Make          string
	Model         string
	Year          int
	Price         string
	Mileage       int
	Color         string
	FuelType      string
	Transmission  string
	EngineSize    string
	BodyType      string
	Doors         int
	Seats         int
	Images        []string
	Description   string
	Features      []string
	Condition     string
	IsAvailable   *bool
	IsFeatured    *bool
	Location      string
	ContactNumber string
}

// Pagination describes one page of a filtered listing.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCars   int64 `json:"totalCars"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// CarPage is the paginated listing response.
type CarPage struct {
	Cars       []model.Car `json:"cars"`
	Pagination Pagination  `json:"pagination"`
}

// CarService handles listing CRUD, search and the read-through Redis cache.
type CarService interface {
	ListCars(ctx context.Context, filter repository.CarFilter, page, limit int) (*CarPage, error)
	GetCar(ctx context.Context, id uuid.UUID) (*model.Car, error)
	CreateCar(ctx context.Context, seller *model.User, input CarInput) (*model.Car, error)
	UpdateCar(ctx context.Context, actor *model.User, id uuid.UUID, input CarInput) (*model.Car, error)
	DeleteCar(ctx context.Context, actor *model.User, id uuid.UUID) error
	FeaturedCars(ctx context.Context) ([]model.Car, error)
	SearchCars(ctx context.Context, query string) ([]model.Car, error)
	RemoveImages(ctx context.Context, actor *model.User, id uuid.UUID, imageURLs []string) ([]string, error)
}

type carService struct {
	repo  repository.CarRepository
	cache *cache.Client
}

// NewCarService creates a car service backed by the repository and Redis.
func NewCarService(repo repository.CarRepository, cache *cache.Client) CarService {
	return &carService{repo: repo, cache: cache}
}

func (s *carService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("car:%s", id)
}

func (s *carService) ListCars(ctx context.Context, filter repository.CarFilter, page, limit int) (*CarPage, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	cars, total, err := s.repo.ListFiltered(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &CarPage{
		Cars: cars,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalCars:   total,
			HasNextPage: page < totalPages,
			HasPrevPage: page > 1,
		},
	}, nil
}

// GetCar retrieves a car by ID with read-through caching.
func (s *carService) GetCar(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Car
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCarNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(car); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, carCacheTTL)
	}
	return car, nil
}

func (s *carService) CreateCar(ctx context.Context, seller *model.User, input CarInput) (*model.Car, error) {
	if len(input.Images) == 0 {
		return nil, errors.ErrImageRequired
	}

	car, err := carFromInput(input)
	if err != nil {
		return nil, err
	}
	car.SellerID = seller.ID

	if err := s.repo.Create(ctx, car); err != nil {
		return nil, fmt.Errorf("create car: %w", err)
	}
	_ = s.cache.Delete(ctx, featuredCacheKey)
	return car, nil
}

func (s *carService) UpdateCar(ctx context.Context, actor *model.User, id uuid.UUID, input CarInput) (*model.Car, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCarNotFound
		}
		return nil, err
	}
	if !car.OwnedBy(actor) {
		return nil, errors.ErrNotCarOwner
	}

	if err := applyInput(car, input); err != nil {
		return nil, err
	}
	if len(car.Images) == 0 {
		return nil, errors.ErrImageRequired
	}

	if err := s.repo.Update(ctx, car); err != nil {
		return nil, fmt.Errorf("update car: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id), featuredCacheKey)
	return car, nil
}

func (s *carService) DeleteCar(ctx context.Context, actor *model.User, id uuid.UUID) error {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCarNotFound
		}
		return err
	}
	if !car.OwnedBy(actor) {
		return errors.ErrNotCarOwner
	}

	if err := s.repo.Delete(ctx, car); err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id), featuredCacheKey)
	return nil
}

// FeaturedCars returns up to six featured listings, cached in Redis.
func (s *carService) FeaturedCars(ctx context.Context) ([]model.Car, error) {
	if data, _ := s.cache.Get(ctx, featuredCacheKey); data != nil {
		var cached []model.Car
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	cars, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("featured cars: %w", err)
	}
	if cars == nil {
		cars = []model.Car{}
	}

	if payload, err := json.Marshal(cars); err == nil {
		_ = s.cache.Set(ctx, featuredCacheKey, payload, carCacheTTL)
	}
	return cars, nil
}

func (s *carService) SearchCars(ctx context.Context, query string) ([]model.Car, error) {
	cars, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search cars: %w", err)
	}
	if cars == nil {
		cars = []model.Car{}
	}
	return cars, nil
}

// RemoveImages drops the given URLs from a listing, refusing to leave it
// imageless. Returns the remaining image list.
func (s *carService) RemoveImages(ctx context.Context, actor *model.User, id uuid.UUID, imageURLs []string) ([]string, error) {
	car, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCarNotFound
		}
		return nil, err
	}
	if !car.OwnedBy(actor) {
		return nil, errors.ErrNotCarOwner
	}

	remove := make(map[string]bool, len(imageURLs))
	for _, url := range imageURLs {
		remove[url] = true
	}
	var remaining model.StringList
	for _, img := range car.Images {
		if !remove[img] {
			remaining = append(remaining, img)
		}
	}
	if len(remaining) == 0 {
		return nil, errors.ErrImageRequired
	}

	car.Images = remaining
	if err := s.repo.Update(ctx, car); err != nil {
		return nil, fmt.Errorf("remove images: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id), featuredCacheKey)
	return remaining, nil
}

// decimalFromString parses a non-negative price.
func decimalFromString(s string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(s)
	if err != nil || price.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q", s)
	}
	return price, nil
}

// carFromInput builds a new Car from a full input.
func carFromInput(input CarInput) (*model.Car, error) {
	car := &model.Car{IsAvailable: true}
	if err := applyInput(car, input); err != nil {
		return nil, err
	}
	return car, nil
}

// applyInput merges non-zero input fields into car. New image URLs are
// appended to the existing set, matching the upload-merge behavior of the API.
func applyInput(car *model.Car, input CarInput) error {
	if input.Make != "" {
		car.Make = input.Make
	}
	if input.Model != "" {
		car.Model = input.Model
	}
	if input.Year != 0 {
		car.Year = input.Year
	}
	if input.Price != "" {
		price, err := decimalFromString(input.Price)
		if err != nil {
			return err
		}
		car.Price = price
	}
	if input.Mileage != 0 {
		car.Mileage = input.Mileage
	}
	if input.Color != "" {
		car.Color = input.Color
	}
	if input.FuelType != "" {
		car.FuelType = input.FuelType
	}
	if input.Transmission != "" {
		car.Transmission = input.Transmission
	}
	if input.EngineSize != "" {
		car.EngineSize = input.EngineSize
	}
	if input.BodyType != "" {
		car.BodyType = input.BodyType
	}
	if input.Doors != 0 {
		car.Doors = input.Doors
	}
	if input.Seats != 0 {
		car.Seats = input.Seats
	}
	for _, img := range input.Images {
		if !car.Images.Contains(img) {
			car.Images = append(car.Images, img)
		}
	}
	if input.Description != "" {
		car.Description = input.Description
	}
	if input.Features != nil {
		car.Features = input.Features
	}
	if input.Condition != "" {
		car.Condition = input.Condition
	}
	if input.IsAvailable != nil {
		car.IsAvailable = *input.IsAvailable
	}
	if input.IsFeatured != nil {
		car.IsFeatured = *input.IsFeatured
	}
	if input.Location != "" {
		car.Location = input.Location
	}
	if input.ContactNumber != "" {
		car.ContactNumber = input.ContactNumber
	}
	return nil
}
