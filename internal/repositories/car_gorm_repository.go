package repositories

import (
	"errors"
	"fmt"
	"strings"

	"garasi/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCarRepository is a GORM implementation of CarRepository.
type GORMCarRepository struct {
	db *gorm.DB
}

// NewGORMCarRepository creates a new instance of GORMCarRepository.
func NewGORMCarRepository(db *gorm.DB) *GORMCarRepository {
	return &GORMCarRepository{
		db: db,
	}
}

// Create creates a new car listing in the database.
func (r *GORMCarRepository) Create(car *models.Car) error {
	if car.ID == "" {
		car.ID = uuid.New().String()
	}
	if err := r.db.Create(car).Error; err != nil {
		return fmt.Errorf("failed to create car: %w", err)
	}
	return nil
}

// GetByOwner retrieves all listings of one owner, newest first. When
// search is non-empty it is matched case-insensitively as a substring
// against the title, description and all three tag fields.
func (r *GORMCarRepository) GetByOwner(ownerID, search string) ([]models.Car, error) {
	query := r.db.Where("user_id = ?", ownerID)

	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where(
			"LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tag_car_type) LIKE ? OR LOWER(tag_company) LIKE ? OR LOWER(tag_dealer) LIKE ?",
			pattern, pattern, pattern, pattern, pattern,
		)
	}

	var cars []models.Car
	if err := query.Order("created_at DESC").Find(&cars).Error; err != nil {
		return nil, fmt.Errorf("failed to get cars for owner: %w", err)
	}
	return cars, nil
}

// GetByID retrieves a single listing by its ID, scoped to the owner.
func (r *GORMCarRepository) GetByID(ownerID, id string) (*models.Car, error) {
	var car models.Car
	if err := r.db.First(&car, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get car by ID %s: %w", id, err)
	}
	return &car, nil
}

// Update persists changes to an existing listing.
func (r *GORMCarRepository) Update(car *models.Car) error {
	res := r.db.Save(car) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update car: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound when nothing
		// matched, so we check RowsAffected.
		return ErrNotFound
	}
	return nil
}

// Delete removes a listing by its ID, scoped to the owner.
func (r *GORMCarRepository) Delete(ownerID, id string) error {
	res := r.db.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Car{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete car: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
