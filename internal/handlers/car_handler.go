package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"

	"garasi/internal/models"
	"garasi/internal/repositories"
	"garasi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CarHandler handles HTTP requests for car listings.
type CarHandler struct {
	service  *services.CarService
	validate *validator.Validate
}

// NewCarHandler creates a new CarHandler.
func NewCarHandler(service *services.CarService) *CarHandler {
	return &CarHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the car routes with the Fiber app. The
// caller is expected to mount these behind the auth middleware.
func (h *CarHandler) RegisterRoutes(router fiber.Router) {
	carRoutes := router.Group("/cars")
	carRoutes.Post("/", h.HandleCreateCar)
	carRoutes.Get("/", h.HandleGetCars)
	carRoutes.Get("/:id", h.HandleGetCarByID)
	carRoutes.Put("/:id", h.HandleUpdateCar)
	carRoutes.Delete("/:id", h.HandleDeleteCar)
}

// createCarRequest is the validated scalar part of the multipart create
// form.
type createCarRequest struct {
	Title       string `validate:"required,min=1,max=200"`
	Description string `validate:"required,max=2000"`
}

// HandleCreateCar creates a new listing from a multipart form carrying
// the scalar fields, a tags JSON string and 1-10 image files.
func (h *CarHandler) HandleCreateCar(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("Error parsing multipart form: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}

	req := createCarRequest{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Title and description are required",
		})
	}

	tags, err := parseTags(c.FormValue("tags"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid tags JSON",
		})
	}

	input := services.CreateCarInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if tags != nil {
		input.Tags = *tags
	}

	car, err := h.service.CreateCar(ownerID, input, imageFiles(form))
	if err != nil {
		if errors.Is(err, services.ErrImageCount) || errors.Is(err, services.ErrNotImage) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error creating car for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create car",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(car)
}

// HandleGetCars lists the authenticated user's cars, newest first,
// optionally filtered by the search query parameter.
func (h *CarHandler) HandleGetCars(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	cars, err := h.service.GetCars(ownerID, c.Query("search"))
	if err != nil {
		log.Printf("Error getting cars for user %s: %v", ownerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cars",
		})
	}
	return c.JSON(cars)
}

// HandleGetCarByID retrieves a single listing. A listing owned by
// another user answers 404 exactly like a missing one.
func (h *CarHandler) HandleGetCarByID(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	car, err := h.service.GetCarByID(ownerID, c.Params("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		log.Printf("Error getting car %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve car",
		})
	}
	return c.JSON(car)
}

// HandleUpdateCar applies a partial update. Absent scalar fields keep
// their values; uploaded files replace the whole image sequence.
func (h *CarHandler) HandleUpdateCar(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Printf("Error parsing multipart form: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid multipart form",
		})
	}

	tags, err := parseTags(c.FormValue("tags"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid tags JSON",
		})
	}

	input := services.UpdateCarInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        tags,
	}

	car, err := h.service.UpdateCar(ownerID, c.Params("id"), input, imageFiles(form))
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		case errors.Is(err, services.ErrImageCount), errors.Is(err, services.ErrNotImage):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		log.Printf("Error updating car %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update car",
		})
	}
	return c.JSON(car)
}

// HandleDeleteCar deletes a listing owned by the authenticated user.
func (h *CarHandler) HandleDeleteCar(c *fiber.Ctx) error {
	ownerID, ok := c.Locals("user_id").(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication required",
		})
	}

	if err := h.service.DeleteCar(ownerID, c.Params("id")); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Car not found",
			})
		}
		log.Printf("Error deleting car %s: %v", c.Params("id"), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete car",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Car deleted successfully",
	})
}

// parseTags decodes the tags form field. An absent field returns nil so
// updates can tell "keep the tags" from "replace the tags".
func parseTags(raw string) (*models.CarTags, error) {
	if raw == "" {
		return nil, nil
	}
	var tags models.CarTags
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, err
	}
	return &tags, nil
}

// imageFiles pulls the uploaded image files out of the multipart form.
func imageFiles(form *multipart.Form) []*multipart.FileHeader {
	if form == nil {
		return nil
	}
	return form.File["images"]
}
