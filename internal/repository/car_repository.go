package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardealer/internal/model"
)

// CarFilter narrows a car listing query. Zero values mean "no constraint".
type CarFilter struct {
	Color     string
	Make      string
	FuelType  string
	BodyType  string
	Condition string
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
}

// CarRepository defines car persistence operations.
type CarRepository interface {
	Create(ctx context.Context, car *model.Car) error
	Update(ctx context.Context, car *model.Car) error
	Delete(ctx context.Context, car *model.Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error)
	// ListFiltered returns one page of matching cars, newest first,
	// along with the total match count for pagination.
	ListFiltered(ctx context.Context, filter CarFilter, offset, limit int) ([]model.Car, int64, error)
	Featured(ctx context.Context, limit int) ([]model.Car, error)
	Search(ctx context.Context, query string) ([]model.Car, error)
	Count(ctx context.Context) (int64, error)
}

type carRepository struct {
	db *gorm.DB
}

// NewCarRepository builds a GORM-backed repository.
func NewCarRepository(db *gorm.DB) CarRepository {
	return &carRepository{db: db}
}

// sellerPreload limits the embedded seller to its public fields.
func sellerPreload(db *gorm.DB) *gorm.DB {
	return db.Select("id", "username", "email")
}

func (r *carRepository) Create(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *carRepository) Update(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *carRepository) Delete(ctx context.Context, car *model.Car) error {
	return r.db.WithContext(ctx).Delete(car).Error
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Car, error) {
	var car model.Car
	if err := r.db.WithContext(ctx).Preload("Seller", sellerPreload).
		Where("id = ?", id).First(&car).Error; err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *carRepository) applyFilter(db *gorm.DB, filter CarFilter) *gorm.DB {
	if filter.Color != "" {
		db = db.Where("color LIKE ?", "%"+filter.Color+"%")
	}
	if filter.Make != "" {
		db = db.Where("make LIKE ?", "%"+filter.Make+"%")
	}
	if filter.FuelType != "" {
		db = db.Where("fuel_type = ?", filter.FuelType)
	}
	if filter.BodyType != "" {
		db = db.Where("body_type = ?", filter.BodyType)
	}
	if filter.Condition != "" {
		db = db.Where("`condition` = ?", filter.Condition)
	}
	if filter.MinPrice != nil {
		db = db.Where("price >= ?", filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		db = db.Where("price <= ?", filter.MaxPrice)
	}
	return db
}

func (r *carRepository) ListFiltered(ctx context.Context, filter CarFilter, offset, limit int) ([]model.Car, int64, error) {
	// Session makes the filtered base reusable for both the count and the
	// page query without statement pollution.
	base := r.applyFilter(r.db.WithContext(ctx).Model(&model.Car{}), filter).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var cars []model.Car
	if err := base.Preload("Seller", sellerPreload).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&cars).Error; err != nil {
		return nil, 0, err
	}
	return cars, total, nil
}

func (r *carRepository) Featured(ctx context.Context, limit int) ([]model.Car, error) {
	var cars []model.Car
	if err := r.db.WithContext(ctx).Preload("Seller", sellerPreload).
		Where("is_featured = ?", true).
		Limit(limit).
		Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) Search(ctx context.Context, query string) ([]model.Car, error) {
	like := "%" + query + "%"
	var cars []model.Car
	if err := r.db.WithContext(ctx).Preload("Seller", sellerPreload).
		Where("make LIKE ? OR model LIKE ? OR description LIKE ? OR features LIKE ? OR color LIKE ?",
			like, like, like, like, like).
		Find(&cars).Error; err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *carRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Car{}).Count(&count).Error
	return count, err
}
