package models

import "time"

// UserProfile is created alongside the account at registration. Profiles are
// deactivated, never deleted.
type UserProfile struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	UserID          uint      `json:"userID" gorm:"not null;uniqueIndex"`
	User            *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	IsActive        bool      `json:"isActive" gorm:"default:true"`
	ActivationToken string    `json:"-" gorm:"size:255"`
	Username        string    `json:"username" gorm:"size:255"`
	Email           string    `json:"email" gorm:"size:255"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
