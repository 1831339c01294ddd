package repositories

import "garasi/internal/models"

// CarRepository defines the interface for car listing data access.
// Every read and write is scoped by the owning user ID; a listing owned
// by someone else behaves exactly like a missing one.
type CarRepository interface {
	Create(car *models.Car) error
	GetByOwner(ownerID, search string) ([]models.Car, error)
	GetByID(ownerID, id string) (*models.Car, error)
	Update(car *models.Car) error
	Delete(ownerID, id string) error
}
