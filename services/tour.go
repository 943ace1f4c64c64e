package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tour-booking-server/models"
	"tour-booking-server/repository"
	"tour-booking-server/storage"

	"github.com/google/uuid"
	"github.com/kataras/golog"
)

var ErrTourInUse = fmt.Errorf("%w: tour has pending or upcoming confirmed bookings", ErrConflict)

type TourService struct {
	store  repository.Store
	images storage.ImageStore
	settings
}

func NewTourService(store repository.Store, images storage.ImageStore, opts ...Option) *TourService {
	return &TourService{store: store, images: images, settings: newSettings(opts)}
}

type TourInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	StartDate   string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Location    string  `json:"location" validate:"max=100"`
}

// TourPatch carries a partial update; nil fields keep their current value.
type TourPatch struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	StartDate   *string  `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string  `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Location    *string  `json:"location" validate:"omitempty,max=100"`
}

func (s *TourService) Create(ctx context.Context, in TourInput) (*models.Tour, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	tour := &models.Tour{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       roundCents(in.Price),
		StartDate:   optionalDate(in.StartDate),
		EndDate:     optionalDate(in.EndDate),
		Location:    optionalString(in.Location),
		Images:      []models.Image{},
	}
	if err := checkTourDates(tour); err != nil {
		return nil, err
	}
	if err := s.store.Tours().Create(ctx, tour); err != nil {
		return nil, err
	}
	golog.Infof("tour %d created: %q", tour.ID, tour.Name)
	return tour, nil
}

func (s *TourService) Update(ctx context.Context, tourID uint, patch TourPatch) (*models.Tour, error) {
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	tour, err := s.store.Tours().GetByID(ctx, tourID)
	if err != nil {
		return nil, err
	}

	if patch.Name != nil {
		tour.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		tour.Description = *patch.Description
	}
	if patch.Price != nil {
		tour.Price = roundCents(*patch.Price)
	}
	if patch.StartDate != nil {
		tour.StartDate = optionalDate(*patch.StartDate)
	}
	if patch.EndDate != nil {
		tour.EndDate = optionalDate(*patch.EndDate)
	}
	if patch.Location != nil {
		tour.Location = optionalString(*patch.Location)
	}
	if err := checkTourDates(tour); err != nil {
		return nil, err
	}

	if err := s.store.Tours().Save(ctx, tour); err != nil {
		return nil, err
	}
	return tour, nil
}

// Get returns the tour with its images.
func (s *TourService) Get(ctx context.Context, tourID uint) (*models.Tour, error) {
	return s.store.Tours().GetByID(ctx, tourID)
}

func (s *TourService) List(ctx context.Context) ([]models.Tour, error) {
	return s.store.Tours().Search(ctx, repository.TourFilter{})
}

// Delete removes a tour together with its images, ratings and remaining
// bookings. It refuses while the tour has a Pending booking or a Confirmed
// one departing today or later.
func (s *TourService) Delete(ctx context.Context, tourID uint) error {
	now := s.now()
	var images []models.Image
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if _, err := tx.Tours().GetByID(ctx, tourID); err != nil {
			return err
		}

		pending, err := tx.Tours().HasPendingBooking(ctx, tourID)
		if err != nil {
			return err
		}
		// Departure dates are calendar days, so "now" is today's date: a tour
		// leaving today still counts as upcoming.
		upcoming, err := tx.Tours().HasFutureConfirmedBooking(ctx, tourID, dateOnly(now))
		if err != nil {
			return err
		}
		if pending || upcoming {
			return ErrTourInUse
		}

		if images, err = tx.Tours().ListImages(ctx, tourID); err != nil {
			return err
		}
		if err := tx.Tours().DeleteImagesByTour(ctx, tourID); err != nil {
			return err
		}
		if err := tx.Ratings().DeleteByTour(ctx, tourID); err != nil {
			return err
		}
		if err := tx.Bookings().DeleteByTour(ctx, tourID); err != nil {
			return err
		}
		return tx.Tours().Delete(ctx, tourID)
	})
	if err != nil {
		return err
	}

	for _, img := range images {
		if err := s.images.Destroy(ctx, img.PublicID); err != nil {
			golog.Warnf("tour %d deleted but image asset %q was not removed: %v", tourID, img.PublicID, err)
		}
	}
	golog.Infof("tour %d deleted with %d images", tourID, len(images))
	return nil
}

// AddImage uploads a base64 encoded image to the image host and attaches it to the tour.
func (s *TourService) AddImage(ctx context.Context, tourID uint, base64Image string) (*models.Image, error) {
	if strings.TrimSpace(base64Image) == "" {
		return nil, NewValidationError("image", "This field is required.")
	}
	if _, err := s.store.Tours().GetByID(ctx, tourID); err != nil {
		return nil, err
	}

	publicID := fmt.Sprintf("tour-%d-%s", tourID, uuid.NewString())
	uploaded, err := s.images.Upload(ctx, publicID, base64Image)
	if err != nil {
		return nil, fmt.Errorf("failed to upload tour image: %w", err)
	}

	image := &models.Image{TourID: tourID, URL: uploaded.URL, PublicID: uploaded.PublicID}
	if err := s.store.Tours().AddImage(ctx, image); err != nil {
		if derr := s.images.Destroy(ctx, uploaded.PublicID); derr != nil {
			golog.Warnf("orphaned image asset %q: %v", uploaded.PublicID, derr)
		}
		return nil, err
	}
	return image, nil
}

func (s *TourService) RemoveImage(ctx context.Context, tourID, imageID uint) error {
	image, err := s.store.Tours().GetImage(ctx, tourID, imageID)
	if err != nil {
		return err
	}
	if err := s.store.Tours().DeleteImage(ctx, image.ID); err != nil {
		return err
	}
	if err := s.images.Destroy(ctx, image.PublicID); err != nil {
		golog.Warnf("image %d removed but asset %q was not: %v", image.ID, image.PublicID, err)
	}
	return nil
}

func checkTourDates(t *models.Tour) error {
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return NewValidationError("endDate", "End date cannot be before the start date.")
	}
	return nil
}

// optionalDate expects a value that already passed the datetime tag.
func optionalDate(value string) *time.Time {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	d, err := ParseDate(value)
	if err != nil {
		return nil
	}
	return &d
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}
