package models

import (
	"time"
)

// Image represents a bookmarked image. URL points at the source the image
// was bookmarked from; File is set instead when the image was uploaded
// directly.
type Image struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"not null" json:"title"`
	Slug        string    `gorm:"not null;index" json:"slug"`
	URL         string    `json:"url"`
	File        string    `json:"file,omitempty"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"index:,sort:desc" json:"created_at"`

	// Relationships
	User      User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	UsersLike []User `gorm:"many2many:image_likes" json:"users_like,omitempty"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->;-:migration" json:"likes_count"`
	// Liked indicates whether the current requesting user liked this image (computed)
	Liked bool `gorm:"->;-:migration" json:"liked"`
	// TotalViews comes from the ranking store, not the database
	TotalViews int64 `gorm:"-" json:"total_views"`
}

// TableName specifies the table name for GORM
func (Image) TableName() string {
	return "images"
}
