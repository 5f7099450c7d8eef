package models

import "time"

// User represents application user.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:64;uniqueIndex;not null"`
	PasswordHash string `gorm:"size:255;not null"`

	// CurrentSessionID points at the todo list the user is working in right
	// now. Nil until the user creates a private session or selects a group
	// one.
	CurrentSessionID *uint `gorm:"index"`

	CreatedAt time.Time
	UpdatedAt time.Time

	OwnedSessions []Session `gorm:"foreignKey:OwnerID"`
	Joined        []Session `gorm:"many2many:session_members"`

	LastLoginAt *time.Time
	LastLoginIP string `gorm:"size:64"`
}
