package models

import (
	"time"
)

// Target type names recorded on actions. The value is the table name of the
// referenced entity, so a (TargetType, TargetID) pair is resolvable against
// any table.
const (
	TargetTypeUser  = "users"
	TargetTypeImage = "images"
)

// Verbs recorded in the action log.
const (
	VerbCreatedAccount  = "has created an account"
	VerbFollowing       = "is following"
	VerbBookmarkedImage = "bookmarked image"
	VerbLikes           = "likes"
)

// Action is one immutable entry in the activity log: an actor, a verb and an
// optional polymorphic target. Rows are only ever created, never updated;
// the sole delete path is the like-cleanup on unlike.
type Action struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Verb       string    `gorm:"not null" json:"verb"`
	TargetType *string   `gorm:"index:idx_actions_target" json:"target_type,omitempty"`
	TargetID   *uint     `gorm:"index:idx_actions_target" json:"target_id,omitempty"`
	CreatedAt  time.Time `gorm:"index:,sort:desc" json:"created_at"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table name for GORM
func (Action) TableName() string {
	return "actions"
}

// NewAction builds an action without a target.
func NewAction(userID uint, verb string) *Action {
	return &Action{UserID: userID, Verb: verb}
}

// NewTargetedAction builds an action referencing a target entity.
func NewTargetedAction(userID uint, verb, targetType string, targetID uint) *Action {
	return &Action{
		UserID:     userID,
		Verb:       verb,
		TargetType: &targetType,
		TargetID:   &targetID,
	}
}
