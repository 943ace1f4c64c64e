package repository

import (
	"context"
	"fmt"

	"tour-booking-server/models"

	"gorm.io/gorm"
)

type gormBookingRepository struct {
	db *gorm.DB
}

func (r *gormBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if err := r.db.WithContext(ctx).Omit("User", "Tour").Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *gormBookingRepository) Save(ctx context.Context, booking *models.Booking) error {
	if err := r.db.WithContext(ctx).Omit("User", "Tour").Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking %d: %w", booking.ID, err)
	}
	return nil
}

func (r *gormBookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Tour").First(&booking, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

func (r *gormBookingRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Booking, error) {
	bookings := []models.Booking{}
	if len(ids) == 0 {
		return bookings, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&bookings).Error; err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	bookings := []models.Booking{}
	err := r.db.WithContext(ctx).
		Preload("Tour").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of user %d: %w", userID, err)
	}
	return bookings, nil
}

func (r *gormBookingRepository) List(ctx context.Context, filter BookingListFilter) ([]models.Booking, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}
	bookings := []models.Booking{}
	if err := q.Preload("Tour").Preload("User").Order("created_at DESC").Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, total, nil
}

func (r *gormBookingRepository) FindApproved(ctx context.Context, userID, tourID uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND tour_id = ? AND is_approved = ?", userID, tourID, true).
		Order("id").
		First(&booking).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &booking, nil
}

// MarkApproved sets is_approved without touching the other columns.
func (r *gormBookingRepository) MarkApproved(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Update("is_approved", true)
	if res.Error != nil {
		return fmt.Errorf("failed to approve booking %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormBookingRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Booking{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete bookings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormBookingRepository) DeleteByTour(ctx context.Context, tourID uint) error {
	if err := r.db.WithContext(ctx).Where("tour_id = ?", tourID).Delete(&models.Booking{}).Error; err != nil {
		return fmt.Errorf("failed to delete bookings of tour %d: %w", tourID, err)
	}
	return nil
}
