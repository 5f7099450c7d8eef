package models

import "time"

// Session is a named todo-list grouping, either private (owner only) or
// group (owner plus joined members). Not the HTTP login session — that is
// LoginSession.
type Session struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:64;not null"`
	IsPrivate bool   `gorm:"not null"`
	OwnerID   uint   `gorm:"index;not null"`
	CreatedAt time.Time

	Owner   User   `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE"`
	Members []User `gorm:"many2many:session_members"`
	Tasks   []Task `gorm:"constraint:OnDelete:CASCADE"`
}
