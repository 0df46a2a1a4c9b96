package models

import (
	"time"
)

// Contact represents a directed follow edge between two users.
// The combination of UserFromID and UserToID must be unique.
type Contact struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserFromID uint      `gorm:"not null;uniqueIndex:idx_contact_from_to" json:"user_from_id"`
	UserToID   uint      `gorm:"not null;uniqueIndex:idx_contact_from_to;index" json:"user_to_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`

	// Relationships
	UserFrom User `gorm:"foreignKey:UserFromID" json:"user_from,omitempty"`
	UserTo   User `gorm:"foreignKey:UserToID" json:"user_to,omitempty"`
}

// TableName specifies the table name for GORM
func (Contact) TableName() string {
	return "contacts"
}
