package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tour-booking-server/models"

	"gorm.io/gorm"
)

type gormTourRepository struct {
	db *gorm.DB
}

func (r *gormTourRepository) Create(ctx context.Context, tour *models.Tour) error {
	if err := r.db.WithContext(ctx).Omit("Images").Create(tour).Error; err != nil {
		return fmt.Errorf("failed to create tour: %w", err)
	}
	return nil
}

func (r *gormTourRepository) Save(ctx context.Context, tour *models.Tour) error {
	if err := r.db.WithContext(ctx).Omit("Images").Save(tour).Error; err != nil {
		return fmt.Errorf("failed to update tour %d: %w", tour.ID, err)
	}
	return nil
}

func (r *gormTourRepository) GetByID(ctx context.Context, id uint) (*models.Tour, error) {
	var tour models.Tour
	err := r.db.WithContext(ctx).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&tour, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tour, nil
}

func (r *gormTourRepository) Search(ctx context.Context, filter TourFilter) ([]models.Tour, error) {
	q := r.db.WithContext(ctx).Model(&models.Tour{})
	if filter.Keyword != "" {
		q = q.Where(keywordClause(r.db.Dialector.Name()), containsPattern(filter.Keyword))
	}
	if filter.PriceRange != nil {
		q = q.Where("price BETWEEN ? AND ?", filter.PriceRange.Min, filter.PriceRange.Max)
	}
	if filter.StartFrom != nil {
		q = q.Where("start_date >= ?", *filter.StartFrom)
	}
	if filter.EndBy != nil {
		q = q.Where("end_date <= ?", *filter.EndBy)
	}

	tours := []models.Tour{}
	err := q.Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("average_rating DESC").
		Order("created_at ASC").
		Find(&tours).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search tours: %w", err)
	}
	return tours, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern matches value as a literal substring under LIKE ... ESCAPE '\'.
func containsPattern(value string) string {
	return "%" + likeEscaper.Replace(value) + "%"
}

// keywordClause is a case-insensitive substring match on the tour name.
// sqlite's LIKE only folds ASCII letters; other characters match exactly.
func keywordClause(dialect string) string {
	if dialect == "postgres" {
		return `name ILIKE ? ESCAPE '\'`
	}
	return `name LIKE ? ESCAPE '\'`
}

func (r *gormTourRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Tour{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete tour %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormTourRepository) HasPendingBooking(ctx context.Context, tourID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("tour_id = ? AND status = ?", tourID, models.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check pending bookings: %w", err)
	}
	return count > 0, nil
}

func (r *gormTourRepository) HasFutureConfirmedBooking(ctx context.Context, tourID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("tour_id = ? AND status = ? AND departure_date >= ?", tourID, models.StatusConfirmed, now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check confirmed bookings: %w", err)
	}
	return count > 0, nil
}

func (r *gormTourRepository) SetAverageRating(ctx context.Context, tourID uint, avg float64) error {
	err := r.db.WithContext(ctx).Model(&models.Tour{}).
		Where("id = ?", tourID).
		Update("average_rating", avg).Error
	if err != nil {
		return fmt.Errorf("failed to update tour rating: %w", err)
	}
	return nil
}

func (r *gormTourRepository) AddImage(ctx context.Context, image *models.Image) error {
	if err := r.db.WithContext(ctx).Create(image).Error; err != nil {
		return fmt.Errorf("failed to save tour image: %w", err)
	}
	return nil
}

func (r *gormTourRepository) GetImage(ctx context.Context, tourID, imageID uint) (*models.Image, error) {
	var image models.Image
	err := r.db.WithContext(ctx).Where("id = ? AND tour_id = ?", imageID, tourID).First(&image).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &image, nil
}

func (r *gormTourRepository) ListImages(ctx context.Context, tourID uint) ([]models.Image, error) {
	images := []models.Image{}
	if err := r.db.WithContext(ctx).Where("tour_id = ?", tourID).Order("id").Find(&images).Error; err != nil {
		return nil, fmt.Errorf("failed to list tour images: %w", err)
	}
	return images, nil
}

func (r *gormTourRepository) DeleteImage(ctx context.Context, imageID uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Image{}, imageID).Error; err != nil {
		return fmt.Errorf("failed to delete image %d: %w", imageID, err)
	}
	return nil
}

func (r *gormTourRepository) DeleteImagesByTour(ctx context.Context, tourID uint) error {
	if err := r.db.WithContext(ctx).Where("tour_id = ?", tourID).Delete(&models.Image{}).Error; err != nil {
		return fmt.Errorf("failed to delete images of tour %d: %w", tourID, err)
	}
	return nil
}
