package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"

	"garasi/internal/models"
	"garasi/internal/repositories"
	"garasi/pkg/rabbitmq"
)

// ErrImageCount is returned when a listing is created or updated with an
// invalid number of images.
var ErrImageCount = errors.New("a listing requires between 1 and 10 images")

// ErrNotImage is returned when an uploaded file is not an image.
var ErrNotImage = errors.New("only image uploads are allowed")

const maxImagesPerCar = 10

// ImageStore persists uploaded files and returns the server-relative path
// they will be served from.
type ImageStore interface {
	Save(file *multipart.FileHeader) (string, error)
}

// CreateCarInput carries the scalar fields of a new listing.
type CreateCarInput struct {
	Title       string
	Description string
	Tags        models.CarTags
}

// UpdateCarInput carries the optional fields of a listing update. Empty
// strings leave the current value in place; a nil Tags pointer keeps the
// existing tag triple.
type UpdateCarInput struct {
	Title       string
	Description string
	Tags        *models.CarTags
}

// CarService handles business logic for car listings. Every operation is
// scoped to the owning user.
type CarService struct {
	carRepo  repositories.CarRepository
	images   ImageStore
	mqClient *rabbitmq.Client // May be nil when no broker is configured
}

// NewCarService creates a new CarService.
func NewCarService(carRepo repositories.CarRepository, images ImageStore, mqClient *rabbitmq.Client) *CarService {
	return &CarService{
		carRepo:  carRepo,
		images:   images,
		mqClient: mqClient,
	}
}

// CreateCar validates and stores the uploaded images, then persists a new
// listing owned by ownerID.
func (s *CarService) CreateCar(ownerID string, input CreateCarInput, files []*multipart.FileHeader) (*models.Car, error) {
	if len(files) == 0 || len(files) > maxImagesPerCar {
		return nil, ErrImageCount
	}

	paths, err := s.storeImages(files)
	if err != nil {
		return nil, err
	}

	car := &models.Car{
		Title:       input.Title,
		Description: input.Description,
		Images:      paths,
		Tags:        input.Tags,
		UserID:      ownerID,
	}

	if err := s.carRepo.Create(car); err != nil {
		return nil, fmt.Errorf("failed to create car in repository: %w", err)
	}

	s.publishEvent("listing.created", car)
	return car, nil
}

// GetCars retrieves all listings of the owner, newest first, optionally
// filtered by a case-insensitive search term.
func (s *CarService) GetCars(ownerID, search string) ([]models.Car, error) {
	return s.carRepo.GetByOwner(ownerID, search)
}

// GetCarByID retrieves a single listing owned by ownerID.
func (s *CarService) GetCarByID(ownerID, id string) (*models.Car, error) {
	return s.carRepo.GetByID(ownerID, id)
}

// UpdateCar applies a partial update to a listing owned by ownerID.
// Supplied scalar fields overwrite, absent ones are kept, and uploaded
// files replace the full prior image sequence.
func (s *CarService) UpdateCar(ownerID, id string, input UpdateCarInput, files []*multipart.FileHeader) (*models.Car, error) {
	car, err := s.carRepo.GetByID(ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != "" {
		car.Title = input.Title
	}
	if input.Description != "" {
		car.Description = input.Description
	}
	if input.Tags != nil {
		car.Tags = *input.Tags
	}

	if len(files) > 0 {
		if len(files) > maxImagesPerCar {
			return nil, ErrImageCount
		}
		paths, err := s.storeImages(files)
		if err != nil {
			return nil, err
		}
		car.Images = paths
	}

	if err := s.carRepo.Update(car); err != nil {
		return nil, err
	}
	return car, nil
}

// DeleteCar removes a listing owned by ownerID.
func (s *CarService) DeleteCar(ownerID, id string) error {
	if err := s.carRepo.Delete(ownerID, id); err != nil {
		return err
	}

	s.publishEvent("listing.deleted", &models.Car{ID: id, UserID: ownerID})
	return nil
}

// storeImages checks the MIME type of each upload and writes it through
// the image store, collecting the resulting relative paths.
func (s *CarService) storeImages(files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, file := range files {
		if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
			return nil, ErrNotImage
		}
		path, err := s.images.Save(file)
		if err != nil {
			return nil, fmt.Errorf("failed to store image %s: %w", file.Filename, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// publishEvent emits a listing lifecycle event. Publishing is best
// effort: a missing broker or a publish failure never fails the request.
func (s *CarService) publishEvent(eventType string, car *models.Car) {
	if s.mqClient == nil {
		return
	}

	payload := map[string]interface{}{
		"listingID": car.ID,
		"userID":    car.UserID,
		"title":     car.Title,
	}
	if err := s.mqClient.PublishListingEvent(eventType, payload); err != nil {
		log.Printf("Warning: Failed to publish %s event for listing %s: %v", eventType, car.ID, err)
	}
}
