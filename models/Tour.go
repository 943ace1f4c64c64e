package models

import "time"

type Tour struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name" gorm:"size:255;not null"`
	Description   string     `json:"description" gorm:"type:text"`
	Price         float64    `json:"price" gorm:"type:decimal(10,2);not null;check:price >= 0"`
	StartDate     *time.Time `json:"startDate" gorm:"type:date"`
	EndDate       *time.Time `json:"endDate" gorm:"type:date"`
	AverageRating float64    `json:"averageRating" gorm:"type:decimal(5,2);default:0"`
	Location      *string    `json:"location" gorm:"size:100"`
	CreatedAt     time.Time  `json:"createdAt" gorm:"index"`
	UpdatedAt     time.Time  `json:"updatedAt"`

	Images []Image `json:"images" gorm:"foreignKey:TourID"`
}

// Stars renders the average rating as five glyphs.
func (t Tour) Stars() string {
	switch avg := t.AverageRating; {
	case avg >= 4.5:
		return "★★★★★"
	case avg >= 3.5:
		return "★★★★☆"
	case avg >= 2.5:
		return "★★★☆☆"
	case avg >= 1.5:
		return "★★☆☆☆"
	default:
		return "★☆☆☆☆"
	}
}
