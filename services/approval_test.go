package services

import (
	"context"
	"errors"
	"testing"

	"tour-booking-server/models"

	"gorm.io/gorm"
)

type approvalFixture struct {
	svc       *ApprovalService
	db        *gorm.DB
	pending   *models.Booking
	confirmed *models.Booking
	cancelled *models.Booking
}

func newApprovalFixture(t *testing.T) approvalFixture {
	t.Helper()
	store, db := newTestStore(t)
	user := seedUser(t, db, "alice", models.RoleUser)
	tour := seedTour(t, db, "Ninh Binh", 55)
	return approvalFixture{
		svc:       NewApprovalService(store),
		db:        db,
		pending:   seedBooking(t, db, user.ID, tour.ID, models.StatusPending, false, day(5)),
		confirmed: seedBooking(t, db, user.ID, tour.ID, models.StatusConfirmed, true, day(5)),
		cancelled: seedBooking(t, db, user.ID, tour.ID, models.StatusCancelled, false, day(5)),
	}
}

func (f approvalFixture) ids() []uint {
	return []uint{f.pending.ID, f.confirmed.ID, f.cancelled.ID}
}

var admin = Actor{ID: 1, IP: "10.0.0.1"}

func TestBulkApproveIsUnconditional(t *testing.T) {
	f := newApprovalFixture(t)

	result, err := f.svc.ApplyBulkAction(context.Background(), admin, f.ids(), ActionApprove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Updated) != 3 {
		t.Fatalf("expected 3 updated, got %v", result.Updated)
	}
	for _, id := range f.ids() {
		b := loadBooking(t, f.db, id)
		if b.Status != models.StatusConfirmed || !b.IsApproved {
			t.Fatalf("booking %d: expected approved Confirmed, got %s approved=%v", id, b.Status, b.IsApproved)
		}
	}
	if n := countRows(t, f.db, &models.AuditLog{}); n != 3 {
		t.Fatalf("expected 3 audit rows, got %d", n)
	}
}

func TestBulkCancelSkipsConfirmed(t *testing.T) {
	f := newApprovalFixture(t)

	result, err := f.svc.ApplyBulkAction(context.Background(), admin, f.ids(), ActionCancel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Updated) != 1 || result.Updated[0] != f.pending.ID {
		t.Fatalf("expected only the pending booking cancelled, got %v", result.Updated)
	}
	if len(result.Skipped) != 1 || result.Skipped[0] != f.confirmed.ID {
		t.Fatalf("expected the confirmed booking skipped, got %v", result.Skipped)
	}

	if b := loadBooking(t, f.db, f.pending.ID); b.Status != models.StatusCancelled || !b.IsCancelled {
		t.Fatalf("pending booking should be cancelled, got %+v", b)
	}
	if b := loadBooking(t, f.db, f.confirmed.ID); b.Status != models.StatusConfirmed {
		t.Fatalf("confirmed booking must be untouched, got %s", b.Status)
	}

	var entry models.AuditLog
	if err := f.db.First(&entry).Error; err != nil {
		t.Fatalf("expected audit row: %v", err)
	}
	if entry.Action != "cancel" || entry.ResourceID != f.pending.ID || entry.AdminUserID != admin.ID || entry.IPAddress != admin.IP {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
	if len(entry.Before) == 0 || len(entry.After) == 0 {
		t.Fatal("audit entry should carry before and after snapshots")
	}
}

func TestBulkDeleteIsAllOrNothing(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	_, err := f.svc.ApplyBulkAction(ctx, admin, f.ids(), ActionDelete)
	var conflict *BatchConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected BatchConflictError, got %v", err)
	}
	if len(conflict.Blocked) != 2 {
		t.Fatalf("expected pending and confirmed blocked, got %v", conflict.Blocked)
	}
	if n := countRows(t, f.db, &models.Booking{}); n != 3 {
		t.Fatalf("nothing should be deleted, %d bookings left", n)
	}
	if n := countRows(t, f.db, &models.AuditLog{}); n != 0 {
		t.Fatalf("a refused delete must not be audited, got %d", n)
	}

	result, err := f.svc.ApplyBulkAction(ctx, admin, []uint{f.cancelled.ID}, ActionDelete)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Deleted) != 1 || result.Deleted[0] != f.cancelled.ID {
		t.Fatalf("expected cancelled booking deleted, got %v", result.Deleted)
	}
	if n := countRows(t, f.db, &models.Booking{}); n != 2 {
		t.Fatalf("expected 2 bookings left, got %d", n)
	}
}

func TestBulkActionUnknownAction(t *testing.T) {
	f := newApprovalFixture(t)
	if _, err := f.svc.ApplyBulkAction(context.Background(), admin, f.ids(), "archive"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseBulkAction("archive"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if a, err := ParseBulkAction("delete"); err != nil || a != ActionDelete {
		t.Fatalf("expected delete action, got %v %v", a, err)
	}
}

func TestApprovePendingOnlyTouchesPending(t *testing.T) {
	f := newApprovalFixture(t)

	result, err := f.svc.ApprovePending(context.Background(), admin, f.ids())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Updated) != 1 || result.Updated[0] != f.pending.ID {
		t.Fatalf("expected only pending approved, got %v", result.Updated)
	}
	if b := loadBooking(t, f.db, f.cancelled.ID); b.Status != models.StatusCancelled {
		t.Fatalf("cancelled booking must stay cancelled, got %s", b.Status)
	}
	if b := loadBooking(t, f.db, f.pending.ID); b.Status != models.StatusConfirmed || !b.IsApproved {
		t.Fatalf("pending booking should be confirmed, got %+v", b)
	}
}

func TestListBookingsPaginates(t *testing.T) {
	f := newApprovalFixture(t)
	ctx := context.Background()

	all, total, err := f.svc.ListBookings(ctx, BookingListQuery{})
	if err != nil || total != 3 || len(all) != 3 {
		t.Fatalf("expected all 3 bookings, got %d/%d %v", len(all), total, err)
	}

	page, total, err := f.svc.ListBookings(ctx, BookingListQuery{Page: 2, PerPage: 2})
	if err != nil || total != 3 || len(page) != 1 {
		t.Fatalf("expected 1 booking on page 2, got %d/%d %v", len(page), total, err)
	}

	pending, total, err := f.svc.ListBookings(ctx, BookingListQuery{Status: "Pending"})
	if err != nil || total != 1 || pending[0].ID != f.pending.ID {
		t.Fatalf("expected the pending booking, got %v %d %v", pending, total, err)
	}

	if _, _, err := f.svc.ListBookings(ctx, BookingListQuery{Status: "Archived"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}
