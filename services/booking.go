package services

import (
	"context"
	"strconv"
	"strings"
	"time"

	"tour-booking-server/models"
	"tour-booking-server/repository"

	"github.com/kataras/golog"
)

// BookingService holds the booking lifecycle rules.
type BookingService struct {
	store repository.Store
	settings
}

func NewBookingService(store repository.Store, opts ...Option) *BookingService {
	return &BookingService{store: store, settings: newSettings(opts)}
}

type CreateBookingInput struct {
	TourID         uint       `form:"-"`
	UserID         uint       `form:"-"`
	NumberOfPeople int        `form:"number_of_people" validate:"gte=1"`
	DepartureDate  time.Time  `form:"departure_date" validate:"required"`
	EndDate        *time.Time `form:"end_date"`
}

// ParseBookingForm reads the booking form fields through get.
func ParseBookingForm(get func(key string) string) (CreateBookingInput, error) {
	var in CreateBookingInput
	verr := &ValidationError{Fields: map[string]string{}}

	if raw := strings.TrimSpace(get("number_of_people")); raw == "" {
		verr.Fields["number_of_people"] = "This field is required."
	} else if n, err := strconv.Atoi(raw); err != nil {
		verr.Fields["number_of_people"] = "Enter a whole number."
	} else {
		in.NumberOfPeople = n
	}

	if raw := strings.TrimSpace(get("departure_date")); raw == "" {
		verr.Fields["departure_date"] = "This field is required."
	} else if d, err := ParseDate(raw); err != nil {
		verr.Fields["departure_date"] = "Enter a valid date."
	} else {
		in.DepartureDate = d
	}

	if raw := strings.TrimSpace(get("end_date")); raw != "" {
		d, err := ParseDate(raw)
		if err != nil {
			verr.Fields["end_date"] = "Enter a valid date."
		} else {
			in.EndDate = &d
		}
	}

	if len(verr.Fields) > 0 {
		return in, verr
	}
	return in, nil
}

// Create books a tour for the user. The departure day must be strictly after
// today; the price is fixed at tour price times head count.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	tour, err := s.store.Tours().GetByID(ctx, in.TourID)
	if err != nil {
		return nil, err
	}

	if err := validateStruct(in); err != nil {
		return nil, err
	}
	departure := dateOnly(in.DepartureDate)
	if !departure.After(dateOnly(s.now())) {
		return nil, ErrInvalidDate
	}

	var endDate *time.Time
	if in.EndDate != nil {
		end := dateOnly(*in.EndDate)
		if end.Before(departure) {
			return nil, NewValidationError("end_date", "End date cannot be before the departure date.")
		}
		endDate = &end
	}

	booking := &models.Booking{
		UserID:         in.UserID,
		TourID:         tour.ID,
		Status:         models.StatusPending,
		Price:          roundCents(tour.Price * float64(in.NumberOfPeople)),
		NumberOfPeople: in.NumberOfPeople,
		DepartureDate:  departure,
		EndDate:        endDate,
		IsApproved:     false,
	}
	if err := s.store.Bookings().Create(ctx, booking); err != nil {
		return nil, err
	}

	golog.Infof("booking %d created: user=%d tour=%d people=%d price=%.2f",
		booking.ID, booking.UserID, booking.TourID, booking.NumberOfPeople, booking.Price)
	return booking, nil
}

// Cancel lets the owner withdraw a booking that is still Pending.
func (s *BookingService) Cancel(ctx context.Context, bookingID, actingUserID uint) (*models.Booking, error) {
	booking, err := s.store.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != actingUserID {
		return nil, ErrPermission
	}
	if booking.Status != models.StatusPending {
		return nil, ErrInvalidState
	}

	booking.Status = models.StatusCancelled
	booking.IsCancelled = true
	if err := s.store.Bookings().Save(ctx, booking); err != nil {
		return nil, err
	}
	golog.Infof("booking %d cancelled by user %d", booking.ID, actingUserID)
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	return s.store.Bookings().ListByUser(ctx, userID)
}

// DeleteBookings removes the cancelled bookings among ids. Pending and
// Confirmed ones are left in place and reported through a BatchConflictError
// alongside the ids that were deleted.
func (s *BookingService) DeleteBookings(ctx context.Context, ids []uint) ([]uint, error) {
	var deleted, blocked []uint
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		bookings, err := tx.Bookings().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, b := range bookings {
			if b.Status.IsDeletable() {
				deleted = append(deleted, b.ID)
			} else {
				blocked = append(blocked, b.ID)
			}
		}
		_, err = tx.Bookings().DeleteByIDs(ctx, deleted)
		return err
	})
	if err != nil {
		return nil, err
	}

	if len(deleted) > 0 {
		golog.Infof("deleted cancelled bookings %v", deleted)
	}
	if len(blocked) > 0 {
		return deleted, &BatchConflictError{Blocked: blocked}
	}
	return deleted, nil
}
