package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tour-booking-server/models"

	"gorm.io/gorm"
)

type gormRatingRepository struct {
	db *gorm.DB
}

func (r *gormRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	if err := r.db.WithContext(ctx).Omit("User", "Tour").Create(rating).Error; err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *gormRatingRepository) ListByTour(ctx context.Context, tourID uint) ([]models.Rating, error) {
	ratings := []models.Rating{}
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("tour_id = ?", tourID).
		Order("create_time DESC").
		Find(&ratings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings of tour %d: %w", tourID, err)
	}
	return ratings, nil
}

func (r *gormRatingRepository) AverageForTour(ctx context.Context, tourID uint) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.WithContext(ctx).Model(&models.Rating{}).
		Select("AVG(rating)").
		Where("tour_id = ?", tourID).
		Scan(&avg).Error
	if err != nil {
		return 0, fmt.Errorf("failed to average ratings of tour %d: %w", tourID, err)
	}
	return avg.Float64, nil
}

func (r *gormRatingRepository) DeleteByTour(ctx context.Context, tourID uint) error {
	if err := r.db.WithContext(ctx).Where("tour_id = ?", tourID).Delete(&models.Rating{}).Error; err != nil {
		return fmt.Errorf("failed to delete ratings of tour %d: %w", tourID, err)
	}
	return nil
}
