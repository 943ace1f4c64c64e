package models

import (
	"strings"
	"time"
)

type Rating struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"userID" gorm:"not null;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TourID     uint      `json:"tourID" gorm:"not null;index"`
	Tour       *Tour     `json:"tour,omitempty" gorm:"foreignKey:TourID"`
	Rating     int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Content    string    `json:"content" gorm:"type:text"`
	CreateTime time.Time `json:"createTime" gorm:"autoCreateTime"`
}

func (r Rating) Stars() string {
	if r.Rating <= 0 {
		return ""
	}
	return strings.Repeat("★", r.Rating)
}
