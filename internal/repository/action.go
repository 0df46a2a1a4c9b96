package repository

import (
	"context"

	"bookmarks/internal/models"

	"gorm.io/gorm"
)

// ActionRepository manages the activity stream.
type ActionRepository interface {
	Create(ctx context.Context, action *models.Action) error
	Feed(ctx context.Context, userID uint, followingIDs []uint, limit, offset int) ([]models.Action, error)
	ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Action, error)
}

type actionRepository struct {
	db *gorm.DB
}

// NewActionRepository returns a new ActionRepository implementation.
func NewActionRepository(db *gorm.DB) ActionRepository {
	return &actionRepository{db: db}
}

func (r *actionRepository) Create(ctx context.Context, action *models.Action) error {
	if err := r.db.WithContext(ctx).Create(action).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Feed returns recent actions for a user's dashboard. The user's own
// actions are always excluded. When the user follows anyone, the feed
// is restricted to the people they follow; otherwise it shows everyone
// else's activity.
func (r *actionRepository) Feed(ctx context.Context, userID uint, followingIDs []uint, limit, offset int) ([]models.Action, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("User.Profile").
		Where("user_id <> ?", userID)

	if len(followingIDs) > 0 {
		q = q.Where("user_id IN ?", followingIDs)
	}

	var actions []models.Action
	if err := q.Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return actions, nil
}

func (r *actionRepository) ListByUserID(ctx context.Context, userID uint, limit, offset int) ([]models.Action, error) {
	var actions []models.Action
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return actions, nil
}
