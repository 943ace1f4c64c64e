package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"tour-booking-server/config"
	"tour-booking-server/models"
	"tour-booking-server/repository"
	"tour-booking-server/storage"

	"gorm.io/gorm"
)

var fixedNow = time.Date(2024, time.June, 15, 10, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(offset int) time.Time {
	return dateOnly(fixedNow).AddDate(0, 0, offset)
}

func newTestStore(t *testing.T) (repository.Store, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := storage.InitializeDB(config.Database{
		Driver: "sqlite",
		URL:    "file:" + name + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(db), db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func seedTour(t *testing.T, db *gorm.DB, name string, price float64) *models.Tour {
	t.Helper()
	tour := &models.Tour{Name: name, Description: name + " description", Price: price}
	if err := db.Create(tour).Error; err != nil {
		t.Fatalf("seed tour: %v", err)
	}
	return tour
}

func seedBooking(t *testing.T, db *gorm.DB, userID, tourID uint, status models.BookingStatus, approved bool, departure time.Time) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		UserID:         userID,
		TourID:         tourID,
		Status:         status,
		Price:          100,
		NumberOfPeople: 1,
		DepartureDate:  departure,
		IsApproved:     approved,
		IsCancelled:    status == models.StatusCancelled,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	return booking
}

func loadBooking(t *testing.T, db *gorm.DB, id uint) *models.Booking {
	t.Helper()
	var b models.Booking
	if err := db.First(&b, id).Error; err != nil {
		t.Fatalf("load booking %d: %v", id, err)
	}
	return &b
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

type fakeImageStore struct {
	uploaded  []string
	destroyed []string
	uploadErr error
}

func (f *fakeImageStore) Upload(_ context.Context, publicID, base64Image string) (storage.UploadedImage, error) {
	if f.uploadErr != nil {
		return storage.UploadedImage{}, f.uploadErr
	}
	if base64Image == "" {
		return storage.UploadedImage{}, errors.New("empty image payload")
	}
	f.uploaded = append(f.uploaded, publicID)
	return storage.UploadedImage{URL: "https://img.example.com/" + publicID, PublicID: publicID}, nil
}

func (f *fakeImageStore) Destroy(_ context.Context, publicID string) error {
	f.destroyed = append(f.destroyed, publicID)
	return nil
}
