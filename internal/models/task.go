package models

import "time"

// Task is a single todo item, always bound to exactly one session.
type Task struct {
	ID        uint   `gorm:"primaryKey"`
	Title     string `gorm:"size:255;not null"`
	Completed bool   `gorm:"not null;default:false"`
	SessionID uint   `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
