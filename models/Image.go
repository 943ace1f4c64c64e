package models

import "time"

type Image struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	TourID    uint      `json:"tourID" gorm:"not null;index"`
	URL       string    `json:"url" gorm:"size:512"`
	PublicID  string    `json:"publicID" gorm:"size:255"` // asset reference at the image host
	CreatedAt time.Time `json:"createdAt"`
}
