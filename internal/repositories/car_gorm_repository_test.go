package repositories_test

import (
	"fmt"
	"testing"
	"time"

	"garasi/internal/models"
	"garasi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupDB opens a per-test in-memory SQLite database and migrates the
// models. TranslateError mirrors the production configuration so unique
// constraint violations surface as gorm.ErrDuplicatedKey.
func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.User{}, &models.Car{}))
	return db
}

func seedCar(t *testing.T, repo repositories.CarRepository, ownerID, title, description string, tags models.CarTags, createdAt time.Time) *models.Car {
	t.Helper()

	car := &models.Car{
		Title:       title,
		Description: description,
		Images:      []string{"/uploads/photo.jpg"},
		Tags:        tags,
		UserID:      ownerID,
	}
	car.CreatedAt = createdAt
	assert.NoError(t, repo.Create(car))
	return car
}

func TestGORMCarRepository_OwnerScoping(t *testing.T) {
	repo := repositories.NewGORMCarRepository(setupDB(t))
	now := time.Now()

	carA := seedCar(t, repo, "user-a", "Civic", "Honda sedan", models.CarTags{Company: "Honda"}, now)
	seedCar(t, repo, "user-b", "Model 3", "Electric sedan", models.CarTags{Company: "Tesla"}, now)

	cars, err := repo.GetByOwner("user-a", "")
	assert.NoError(t, err)
	assert.Len(t, cars, 1)
	assert.Equal(t, carA.ID, cars[0].ID)

	// Another owner's listing behaves exactly like a missing one.
	_, err = repo.GetByID("user-b", carA.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Delete("user-b", carA.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	// The owner still sees it.
	got, err := repo.GetByID("user-a", carA.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Civic", got.Title)
	assert.Equal(t, []string{"/uploads/photo.jpg"}, got.Images)
}

func TestGORMCarRepository_Search(t *testing.T) {
	repo := repositories.NewGORMCarRepository(setupDB(t))
	now := time.Now()

	civic := seedCar(t, repo, "user-a", "Civic", "Daily driver", models.CarTags{CarType: "sedan", Company: "Honda", Dealer: "D1"}, now.Add(-2*time.Hour))
	accord := seedCar(t, repo, "user-a", "Accord", "Honda flagship", models.CarTags{CarType: "sedan", Company: "honda", Dealer: "D2"}, now.Add(-time.Hour))
	seedCar(t, repo, "user-a", "Hilux", "Workhorse pickup", models.CarTags{CarType: "truck", Company: "Toyota", Dealer: "D3"}, now)

	// Case-insensitive match across the tag fields.
	cars, err := repo.GetByOwner("user-a", "HONDA")
	assert.NoError(t, err)
	assert.Len(t, cars, 2)

	// Newest first.
	assert.Equal(t, accord.ID, cars[0].ID)
	assert.Equal(t, civic.ID, cars[1].ID)

	// Match in the title.
	cars, err = repo.GetByOwner("user-a", "hilux")
	assert.NoError(t, err)
	assert.Len(t, cars, 1)

	// Match in the description.
	cars, err = repo.GetByOwner("user-a", "daily")
	assert.NoError(t, err)
	assert.Len(t, cars, 1)
	assert.Equal(t, civic.ID, cars[0].ID)

	// Match in the dealer tag.
	cars, err = repo.GetByOwner("user-a", "d3")
	assert.NoError(t, err)
	assert.Len(t, cars, 1)

	// No match.
	cars, err = repo.GetByOwner("user-a", "ferrari")
	assert.NoError(t, err)
	assert.Empty(t, cars)

	// Search never crosses owners.
	cars, err = repo.GetByOwner("user-b", "honda")
	assert.NoError(t, err)
	assert.Empty(t, cars)
}

func TestGORMCarRepository_Ordering(t *testing.T) {
	repo := repositories.NewGORMCarRepository(setupDB(t))
	now := time.Now()

	oldest := seedCar(t, repo, "user-a", "First", "desc", models.CarTags{}, now.Add(-3*time.Hour))
	newest := seedCar(t, repo, "user-a", "Third", "desc", models.CarTags{}, now)
	middle := seedCar(t, repo, "user-a", "Second", "desc", models.CarTags{}, now.Add(-time.Hour))

	cars, err := repo.GetByOwner("user-a", "")
	assert.NoError(t, err)
	assert.Len(t, cars, 3)
	assert.Equal(t, newest.ID, cars[0].ID)
	assert.Equal(t, middle.ID, cars[1].ID)
	assert.Equal(t, oldest.ID, cars[2].ID)
}

func TestGORMCarRepository_UpdateAndDelete(t *testing.T) {
	repo := repositories.NewGORMCarRepository(setupDB(t))

	car := seedCar(t, repo, "user-a", "Civic", "desc", models.CarTags{Company: "Honda"}, time.Now())

	car.Title = "Civic Type R"
	car.Images = []string{"/uploads/new-1.jpg", "/uploads/new-2.jpg"}
	assert.NoError(t, repo.Update(car))

	got, err := repo.GetByID("user-a", car.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Civic Type R", got.Title)
	assert.Equal(t, []string{"/uploads/new-1.jpg", "/uploads/new-2.jpg"}, got.Images)
	assert.Equal(t, "Honda", got.Tags.Company)

	assert.NoError(t, repo.Delete("user-a", car.ID))

	_, err = repo.GetByID("user-a", car.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	err = repo.Delete("user-a", car.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestGORMUserRepository_UniqueEmail(t *testing.T) {
	repo := repositories.NewGORMUserRepository(setupDB(t))

	user := &models.User{Email: "a@x.com", Password: "hash", Name: "A"}
	assert.NoError(t, repo.Create(user))
	assert.NotEmpty(t, user.ID)

	// The unique index rejects a second registration at write time, even
	// when every other field differs.
	dup := &models.User{Email: "a@x.com", Password: "other-hash", Name: "B"}
	err := repo.Create(dup)
	assert.ErrorIs(t, err, repositories.ErrDuplicateEmail)

	got, err := repo.GetByEmail("a@x.com")
	assert.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	byID, err := repo.GetByID(user.ID)
	assert.NoError(t, err)
	assert.Equal(t, "A", byID.Name)

	_, err = repo.GetByEmail("missing@x.com")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	_, err = repo.GetByID("missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
