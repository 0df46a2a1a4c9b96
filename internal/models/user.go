// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents an account in the bookmarking application.
// New accounts start inactive and are flipped active by email confirmation.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"unique;not null" json:"username"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `gorm:"not null;default:false;index" json:"is_active"`
	IsStaff   bool      `gorm:"not null;default:false" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	Images  []Image  `gorm:"foreignKey:UserID" json:"images,omitempty"`
}

// Profile is the 1:1 extension of a User with optional personal data.
type Profile struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex" json:"user_id"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	Photo       string     `json:"photo"`
	Bio         string     `gorm:"type:text" json:"bio"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Profile) TableName() string {
	return "profiles"
}
