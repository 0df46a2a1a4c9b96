package repository

import (
	"context"
	"time"

	"bookmarks/internal/models"

	"gorm.io/gorm"
)

// ContactRepository manages the follow graph between users.
type ContactRepository interface {
	Follow(ctx context.Context, userFromID, userToID uint) (bool, error)
	Unfollow(ctx context.Context, userFromID, userToID uint) error
	IsFollowing(ctx context.Context, userFromID, userToID uint) (bool, error)
	FollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	CountFollowers(ctx context.Context, userID uint) (int64, error)
	CountFollowing(ctx context.Context, userID uint) (int64, error)
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository returns a new ContactRepository implementation.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

// Follow creates the edge and logs the "is following" action in one
// transaction. Returns false when the edge already existed, in which
// case no action row is written.
func (r *contactRepository) Follow(ctx context.Context, userFromID, userToID uint) (bool, error) {
	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO contacts (user_from_id, user_to_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_from_id, user_to_id) DO NOTHING`,
			userFromID, userToID, time.Now().UTC(),
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Create(models.NewTargetedAction(userFromID, models.VerbFollowing, models.TargetTypeUser, userToID)).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return created, nil
}

// Unfollow removes the edge. Deleting a non-existent edge is a no-op.
func (r *contactRepository) Unfollow(ctx context.Context, userFromID, userToID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_from_id = ? AND user_to_id = ?", userFromID, userToID).
		Delete(&models.Contact{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) IsFollowing(ctx context.Context, userFromID, userToID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_from_id = ? AND user_to_id = ?", userFromID, userToID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// FollowingIDs returns the ids of every user the given user follows.
func (r *contactRepository) FollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_from_id = ?", userID).
		Pluck("user_to_id", &ids).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

func (r *contactRepository) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_to_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

func (r *contactRepository) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Contact{}).
		Where("user_from_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
