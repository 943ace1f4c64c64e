package models

import "time"

type Booking struct {
	ID             uint          `json:"id" gorm:"primaryKey"`
	UserID         uint          `json:"userID" gorm:"not null;index"`
	User           *User         `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TourID         uint          `json:"tourID" gorm:"not null;index"`
	Tour           *Tour         `json:"tour,omitempty" gorm:"foreignKey:TourID"`
	Status         BookingStatus `json:"status" gorm:"size:16;not null;index"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Price          float64       `json:"price" gorm:"type:decimal(10,2);not null"`
	NumberOfPeople int           `json:"numberOfPeople" gorm:"not null"`
	DepartureDate  time.Time     `json:"departureDate" gorm:"not null;index"`
	EndDate        *time.Time    `json:"endDate" gorm:"type:date"`
	IsApproved     bool          `json:"isApproved" gorm:"default:false"`
	IsCancelled    bool          `json:"isCancelled" gorm:"default:false"`
}
