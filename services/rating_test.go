package services

import (
	"context"
	"errors"
	"testing"

	"tour-booking-server/models"
	"tour-booking-server/repository"

	"gorm.io/gorm"
)

func TestRatingRequiresApprovedBooking(t *testing.T) {
	store, db := newTestStore(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	tour := seedTour(t, db, "Cu Chi", 25)
	svc := NewRatingService(store)
	ctx := context.Background()

	if _, err := svc.CanRate(ctx, user.ID, tour.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized without booking, got %v", err)
	}

	seedBooking(t, db, user.ID, tour.ID, models.StatusPending, false, day(3))
	_, err := svc.Submit(ctx, SubmitRatingInput{UserID: user.ID, TourID: tour.ID, Rating: 5, Content: "great"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unapproved booking, got %v", err)
	}
	if n := countRows(t, db, &models.Rating{}); n != 0 {
		t.Fatalf("no rating should be stored, got %d", n)
	}
}

func TestSubmitRatingUpdatesAverage(t *testing.T) {
	store, db := newTestStore(t)
	alice := seedUser(t, db, "alice", models.RoleUser)
	bob := seedUser(t, db, "bob", models.RoleUser)
	tour := seedTour(t, db, "Hoi An", 40)
	seedBooking(t, db, alice.ID, tour.ID, models.StatusPending, false, day(3))
	approved := seedBooking(t, db, alice.ID, tour.ID, models.StatusConfirmed, true, day(4))
	seedBooking(t, db, bob.ID, tour.ID, models.StatusConfirmed, true, day(4))

	svc := NewRatingService(store)
	ctx := context.Background()

	booking, err := svc.CanRate(ctx, alice.ID, tour.ID)
	if err != nil || booking.ID != approved.ID {
		t.Fatalf("expected approved booking %d, got %+v %v", approved.ID, booking, err)
	}

	for _, in := range []SubmitRatingInput{
		{UserID: alice.ID, TourID: tour.ID, Rating: 5, Content: "loved it"},
		{UserID: bob.ID, TourID: tour.ID, Rating: 4, Content: "good"},
		{UserID: bob.ID, TourID: tour.ID, Rating: 4, Content: "still good"},
	} {
		if _, err := svc.Submit(ctx, in); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	var stored models.Tour
	if err := db.First(&stored, tour.ID).Error; err != nil {
		t.Fatalf("load tour: %v", err)
	}
	if stored.AverageRating != 4.33 {
		t.Fatalf("expected average 4.33, got %v", stored.AverageRating)
	}
	if !loadBooking(t, db, approved.ID).IsApproved {
		t.Fatal("triggering booking should stay approved")
	}

	ratings, err := svc.ListForTour(ctx, tour.ID)
	if err != nil || len(ratings) != 3 {
		t.Fatalf("expected 3 ratings, got %d %v", len(ratings), err)
	}
	if ratings[0].User == nil {
		t.Fatal("expected rating author preloaded")
	}
}

func TestSubmitRatingValidation(t *testing.T) {
	store, db := newTestStore(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	tour := seedTour(t, db, "Nha Trang", 70)
	seedBooking(t, db, user.ID, tour.ID, models.StatusConfirmed, true, day(2))
	svc := NewRatingService(store)

	for _, in := range []SubmitRatingInput{
		{UserID: user.ID, TourID: tour.ID, Rating: 0, Content: "x"},
		{UserID: user.ID, TourID: tour.ID, Rating: 6, Content: "x"},
		{UserID: user.ID, TourID: tour.ID, Rating: 3, Content: "   "},
	} {
		_, err := svc.Submit(context.Background(), in)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("input %+v: expected ValidationError, got %v", in, err)
		}
	}
	if n := countRows(t, db, &models.Rating{}); n != 0 {
		t.Fatalf("invalid ratings must not be stored, got %d", n)
	}

	if _, err := svc.Submit(context.Background(), SubmitRatingInput{UserID: user.ID, TourID: 999, Rating: 3, Content: "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown tour, got %v", err)
	}
}

// cancelAfterLookup cancels the booking right after the rating gate reads it,
// the way an admin acting between the two steps would.
type cancelAfterLookup struct {
	repository.BookingRepository
	db *gorm.DB
}

func (r cancelAfterLookup) FindApproved(ctx context.Context, userID, tourID uint) (*models.Booking, error) {
	booking, err := r.BookingRepository.FindApproved(ctx, userID, tourID)
	if err != nil {
		return nil, err
	}
	err = r.db.Model(&models.Booking{}).Where("id = ?", booking.ID).
		Updates(map[string]interface{}{"status": models.StatusCancelled, "is_cancelled": true}).Error
	return booking, err
}

type cancellingStore struct {
	repository.Store
	db *gorm.DB
}

func (s cancellingStore) Bookings() repository.BookingRepository {
	return cancelAfterLookup{BookingRepository: s.Store.Bookings(), db: s.db}
}

func TestSubmitRatingKeepsConcurrentCancel(t *testing.T) {
	store, db := newTestStore(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	tour := seedTour(t, db, "Ha Long", 80)
	booking := seedBooking(t, db, user.ID, tour.ID, models.StatusConfirmed, true, day(5))

	svc := NewRatingService(cancellingStore{Store: store, db: db})
	in := SubmitRatingInput{UserID: user.ID, TourID: tour.ID, Rating: 5, Content: "calm bay"}
	if _, err := svc.Submit(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var stored models.Booking
	if err := db.First(&stored, booking.ID).Error; err != nil {
		t.Fatalf("reload booking: %v", err)
	}
	if stored.Status != models.StatusCancelled || !stored.IsCancelled {
		t.Fatalf("cancel must survive the rating, got status %s cancelled=%v", stored.Status, stored.IsCancelled)
	}
	if !stored.IsApproved {
		t.Fatal("booking should stay approved")
	}
}
