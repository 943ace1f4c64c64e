package services

import (
	"context"
	"errors"
	"strings"

	"tour-booking-server/models"
	"tour-booking-server/repository"

	"github.com/kataras/golog"
)

type RatingService struct {
	store repository.Store
}

func NewRatingService(store repository.Store) *RatingService {
	return &RatingService{store: store}
}

type SubmitRatingInput struct {
	UserID  uint   `form:"-"`
	TourID  uint   `form:"-"`
	Rating  int    `form:"rating" validate:"required,min=1,max=5"`
	Content string `form:"content" validate:"required"`
}

// CanRate returns the approved booking that entitles the user to rate the tour.
func (s *RatingService) CanRate(ctx context.Context, userID, tourID uint) (*models.Booking, error) {
	booking, err := s.store.Bookings().FindApproved(ctx, userID, tourID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return booking, err
}

// Submit records a rating from a user holding an approved booking on the tour
// and refreshes the tour's average rating.
func (s *RatingService) Submit(ctx context.Context, in SubmitRatingInput) (*models.Rating, error) {
	if _, err := s.store.Tours().GetByID(ctx, in.TourID); err != nil {
		return nil, err
	}
	booking, err := s.CanRate(ctx, in.UserID, in.TourID)
	if err != nil {
		return nil, err
	}
	in.Content = strings.TrimSpace(in.Content)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	rating := &models.Rating{UserID: in.UserID, TourID: in.TourID, Rating: in.Rating, Content: in.Content}
	err = s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := tx.Ratings().Create(ctx, rating); err != nil {
			return err
		}
		if err := tx.Bookings().MarkApproved(ctx, booking.ID); err != nil {
			return err
		}
		avg, err := tx.Ratings().AverageForTour(ctx, in.TourID)
		if err != nil {
			return err
		}
		return tx.Tours().SetAverageRating(ctx, in.TourID, roundCents(avg))
	})
	if err != nil {
		return nil, err
	}

	golog.Infof("user %d rated tour %d with %d", in.UserID, in.TourID, in.Rating)
	return rating, nil
}

func (s *RatingService) ListForTour(ctx context.Context, tourID uint) ([]models.Rating, error) {
	return s.store.Ratings().ListByTour(ctx, tourID)
}
