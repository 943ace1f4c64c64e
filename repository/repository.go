package repository

import (
	"context"
	"errors"
	"time"

	"tour-booking-server/models"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

// PriceRange is an inclusive price interval.
type PriceRange struct {
	Min float64
	Max float64
}

// TourFilter narrows a tour listing. Nil fields are not applied.
type TourFilter struct {
	Keyword    string
	PriceRange *PriceRange
	StartFrom  *time.Time
	EndBy      *time.Time
}

type BookingListFilter struct {
	Status models.BookingStatus
	Offset int
	Limit  int
}

// TourRepository defines the data access for tours and their images.
type TourRepository interface {
	Create(ctx context.Context, tour *models.Tour) error
	Save(ctx context.Context, tour *models.Tour) error
	// GetByID returns the tour with its images.
	GetByID(ctx context.Context, id uint) (*models.Tour, error)
	// Search returns tours ordered by average rating (desc) then creation time (asc), images preloaded.
	Search(ctx context.Context, filter TourFilter) ([]models.Tour, error)
	Delete(ctx context.Context, id uint) error
	HasPendingBooking(ctx context.Context, tourID uint) (bool, error)
	HasFutureConfirmedBooking(ctx context.Context, tourID uint, now time.Time) (bool, error)
	SetAverageRating(ctx context.Context, tourID uint, avg float64) error

	AddImage(ctx context.Context, image *models.Image) error
	GetImage(ctx context.Context, tourID, imageID uint) (*models.Image, error)
	ListImages(ctx context.Context, tourID uint) ([]models.Image, error)
	DeleteImage(ctx context.Context, imageID uint) error
	DeleteImagesByTour(ctx context.Context, tourID uint) error
}

// BookingRepository defines the data access for bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	Save(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	// FindByIDs returns the bookings among ids that exist, ordered by id.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	List(ctx context.Context, filter BookingListFilter) ([]models.Booking, int64, error)
	// FindApproved returns the earliest approved booking the user holds for the tour.
	FindApproved(ctx context.Context, userID, tourID uint) (*models.Booking, error)
	MarkApproved(ctx context.Context, id uint) error
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	DeleteByTour(ctx context.Context, tourID uint) error
}

// RatingRepository defines the data access for ratings.
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	ListByTour(ctx context.Context, tourID uint) ([]models.Rating, error)
	AverageForTour(ctx context.Context, tourID uint) (float64, error)
	DeleteByTour(ctx context.Context, tourID uint) error
}

// UserRepository defines the data access for accounts and profiles.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	CreateProfile(ctx context.Context, profile *models.UserProfile) error
	GetProfile(ctx context.Context, userID uint) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, profile *models.UserProfile) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
}

// Store groups the repositories. Transaction runs fn against a Store bound to
// a single database transaction; fn's error rolls everything back.
type Store interface {
	Tours() TourRepository
	Bookings() BookingRepository
	Ratings() RatingRepository
	Users() UserRepository
	Audit() AuditRepository
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of gorm.
type GormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Tours() TourRepository       { return &gormTourRepository{db: s.db} }
func (s *GormStore) Bookings() BookingRepository { return &gormBookingRepository{db: s.db} }
func (s *GormStore) Ratings() RatingRepository   { return &gormRatingRepository{db: s.db} }
func (s *GormStore) Users() UserRepository       { return &gormUserRepository{db: s.db} }
func (s *GormStore) Audit() AuditRepository      { return &gormAuditRepository{db: s.db} }

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
