package services

import (
	"context"
	"encoding/json"
	"fmt"

	"tour-booking-server/models"
	"tour-booking-server/repository"

	"github.com/kataras/golog"
	"gorm.io/datatypes"
)

type BulkAction string

const (
	ActionApprove BulkAction = "approve"
	ActionCancel  BulkAction = "cancel"
	ActionDelete  BulkAction = "delete"

	actionApprovePending = "approve_pending"
)

func ParseBulkAction(value string) (BulkAction, error) {
	switch a := BulkAction(value); a {
	case ActionApprove, ActionCancel, ActionDelete:
		return a, nil
	}
	return "", NewValidationError("action", fmt.Sprintf("Select a valid choice. %q is not one of the available choices.", value))
}

// Actor identifies the administrator performing an action.
type Actor struct {
	ID uint
	IP string
}

// BulkResult reports what a bulk action did. Skipped lists selected bookings
// the action left untouched.
type BulkResult struct {
	Action  BulkAction `json:"action"`
	Updated []uint     `json:"updated"`
	Deleted []uint     `json:"deleted"`
	Skipped []uint     `json:"skipped"`
}

type BookingListQuery struct {
	Status  string
	Page    int
	PerPage int
}

const (
	defaultPerPage = 25
	maxPerPage     = 100
)

// Normalize clamps the paging values into their allowed range.
func (q *BookingListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = defaultPerPage
	}
	if q.PerPage > maxPerPage {
		q.PerPage = maxPerPage
	}
}

type ApprovalService struct {
	store repository.Store
}

func NewApprovalService(store repository.Store) *ApprovalService {
	return &ApprovalService{store: store}
}

// ApplyBulkAction applies action to the selected bookings in one transaction.
//
// approve confirms every selected booking. cancel cancels the Pending ones and
// skips Confirmed ones. delete is refused as a whole while any selected
// booking is Pending or Confirmed.
func (s *ApprovalService) ApplyBulkAction(ctx context.Context, actor Actor, ids []uint, action BulkAction) (*BulkResult, error) {
	result := &BulkResult{Action: action, Updated: []uint{}, Deleted: []uint{}, Skipped: []uint{}}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		bookings, err := tx.Bookings().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}

		switch action {
		case ActionApprove:
			for i := range bookings {
				if err := confirm(ctx, tx, actor, &bookings[i], string(ActionApprove)); err != nil {
					return err
				}
				result.Updated = append(result.Updated, bookings[i].ID)
			}
		case ActionCancel:
			for i := range bookings {
				b := &bookings[i]
				if !b.Status.IsInFlight() {
					continue
				}
				if b.Status == models.StatusConfirmed {
					result.Skipped = append(result.Skipped, b.ID)
					continue
				}
				before := snapshot(b)
				b.IsCancelled = true
				b.Status = models.StatusCancelled
				if err := tx.Bookings().Save(ctx, b); err != nil {
					return err
				}
				if err := writeAudit(ctx, tx, actor, string(ActionCancel), b.ID, before, snapshot(b)); err != nil {
					return err
				}
				result.Updated = append(result.Updated, b.ID)
			}
		case ActionDelete:
			var blocked, deletable []uint
			befores := map[uint]datatypes.JSON{}
			for i := range bookings {
				b := &bookings[i]
				if b.Status.IsInFlight() {
					blocked = append(blocked, b.ID)
					continue
				}
				deletable = append(deletable, b.ID)
				befores[b.ID] = snapshot(b)
			}
			if len(blocked) > 0 {
				return &BatchConflictError{Blocked: blocked}
			}
			if _, err := tx.Bookings().DeleteByIDs(ctx, deletable); err != nil {
				return err
			}
			for _, id := range deletable {
				if err := writeAudit(ctx, tx, actor, string(ActionDelete), id, befores[id], nil); err != nil {
					return err
				}
			}
			result.Deleted = deletable
		default:
			return NewValidationError("action", fmt.Sprintf("Unknown action %q.", action))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	golog.Infof("admin %d applied %s: updated=%v deleted=%v skipped=%v",
		actor.ID, action, result.Updated, result.Deleted, result.Skipped)
	return result, nil
}

// ApprovePending confirms only the selected bookings that are still Pending.
func (s *ApprovalService) ApprovePending(ctx context.Context, actor Actor, ids []uint) (*BulkResult, error) {
	result := &BulkResult{Action: ActionApprove, Updated: []uint{}, Deleted: []uint{}, Skipped: []uint{}}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		bookings, err := tx.Bookings().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for i := range bookings {
			if bookings[i].Status != models.StatusPending {
				result.Skipped = append(result.Skipped, bookings[i].ID)
				continue
			}
			if err := confirm(ctx, tx, actor, &bookings[i], actionApprovePending); err != nil {
				return err
			}
			result.Updated = append(result.Updated, bookings[i].ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	golog.Infof("admin %d approved pending bookings %v", actor.ID, result.Updated)
	return result, nil
}

// ListBookings returns one page of bookings, newest first, and the total count.
func (s *ApprovalService) ListBookings(ctx context.Context, q BookingListQuery) ([]models.Booking, int64, error) {
	filter := repository.BookingListFilter{}
	if q.Status != "" {
		status, err := models.ParseBookingStatus(q.Status)
		if err != nil {
			return nil, 0, NewValidationError("status", err.Error())
		}
		filter.Status = status
	}
	if q.PerPage > 0 || q.Page > 0 {
		q.Normalize()
		filter.Offset = (q.Page - 1) * q.PerPage
		filter.Limit = q.PerPage
	}
	return s.store.Bookings().List(ctx, filter)
}

func confirm(ctx context.Context, tx repository.Store, actor Actor, b *models.Booking, action string) error {
	before := snapshot(b)
	b.IsApproved = true
	b.Status = models.StatusConfirmed
	if err := tx.Bookings().Save(ctx, b); err != nil {
		return err
	}
	return writeAudit(ctx, tx, actor, action, b.ID, before, snapshot(b))
}

func writeAudit(ctx context.Context, tx repository.Store, actor Actor, action string, bookingID uint, before, after datatypes.JSON) error {
	return tx.Audit().Create(ctx, &models.AuditLog{
		AdminUserID:  actor.ID,
		Action:       action,
		ResourceType: "booking",
		ResourceID:   bookingID,
		Before:       before,
		After:        after,
		IPAddress:    actor.IP,
	})
}

func snapshot(b *models.Booking) datatypes.JSON {
	data, err := json.Marshal(b)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
