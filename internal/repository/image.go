package repository

import (
	"context"
	"errors"

	"bookmarks/internal/cache"
	"bookmarks/internal/models"

	"gorm.io/gorm"
)

// ImageRepository manages bookmarked images and their likes.
type ImageRepository interface {
	Create(ctx context.Context, image *models.Image) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Image, error)
	GetByIDAndSlug(ctx context.Context, id uint, slug string, viewerID uint) (*models.Image, error)
	GetByIDs(ctx context.Context, ids []uint, viewerID uint) ([]models.Image, error)
	List(ctx context.Context, viewerID uint, limit, offset int) ([]models.Image, error)
	ListByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Image, error)
	Like(ctx context.Context, userID, imageID uint) (bool, error)
	Unlike(ctx context.Context, userID, imageID uint) error
	CountByUserID(ctx context.Context, userID uint) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository returns a new ImageRepository implementation.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

// Create stores the image and logs the bookmark action in one transaction.
func (r *imageRepository) Create(ctx context.Context, image *models.Image) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		return tx.Create(models.NewTargetedAction(image.UserID, models.VerbBookmarkedImage, models.TargetTypeImage, image.ID)).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withLikeColumns annotates image rows with the like count and whether
// the viewer has liked them. A viewer id of zero marks nothing as liked.
func (r *imageRepository) withLikeColumns(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Image{}).
		Select(`images.*,
			(SELECT COUNT(*) FROM image_likes WHERE image_likes.image_id = images.id) AS likes_count,
			EXISTS(SELECT 1 FROM image_likes il WHERE il.image_id = images.id AND il.user_id = ?) AS liked`,
			viewerID)
}

func (r *imageRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Image, error) {
	var image models.Image
	if err := r.withLikeColumns(ctx, viewerID).
		Preload("User").
		Preload("User.Profile").
		First(&image, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

func (r *imageRepository) GetByIDAndSlug(ctx context.Context, id uint, slug string, viewerID uint) (*models.Image, error) {
	var image models.Image
	if err := r.withLikeColumns(ctx, viewerID).
		Preload("User").
		Preload("User.Profile").
		Where("images.id = ? AND images.slug = ?", id, slug).
		First(&image).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Image", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &image, nil
}

// GetByIDs loads the given images in no particular order. Callers that
// need ranking order must re-sort the result themselves.
func (r *imageRepository) GetByIDs(ctx context.Context, ids []uint, viewerID uint) ([]models.Image, error) {
	if len(ids) == 0 {
		return []models.Image{}, nil
	}
	var images []models.Image
	if err := r.withLikeColumns(ctx, viewerID).
		Preload("User").
		Where("images.id IN ?", ids).
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

func (r *imageRepository) List(ctx context.Context, viewerID uint, limit, offset int) ([]models.Image, error) {
	var images []models.Image
	if err := r.withLikeColumns(ctx, viewerID).
		Preload("User").
		Order("images.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

func (r *imageRepository) ListByUserID(ctx context.Context, userID, viewerID uint, limit, offset int) ([]models.Image, error) {
	var images []models.Image
	if err := r.withLikeColumns(ctx, viewerID).
		Preload("User").
		Where("images.user_id = ?", userID).
		Order("images.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&images).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return images, nil
}

// Like records the viewer's like and logs the "likes" action in one
// transaction. Returns false when the like already existed.
func (r *imageRepository) Like(ctx context.Context, userID, imageID uint) (bool, error) {
	var image models.Image
	if err := r.db.WithContext(ctx).Select("id").First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, models.NewNotFoundError("Image", imageID)
		}
		return false, models.NewInternalError(err)
	}

	var created bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO image_likes (user_id, image_id)
			 VALUES (?, ?)
			 ON CONFLICT (user_id, image_id) DO NOTHING`,
			userID, imageID,
		)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		created = true
		return tx.Create(models.NewTargetedAction(userID, models.VerbLikes, models.TargetTypeImage, imageID)).Error
	})
	if err != nil {
		return false, models.NewInternalError(err)
	}
	if created {
		cache.InvalidateImage(ctx, imageID)
	}
	return created, nil
}

// Unlike removes the like and any matching "likes" action rows.
// Unliking an image the viewer never liked is a no-op.
func (r *imageRepository) Unlike(ctx context.Context, userID, imageID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM image_likes WHERE user_id = ? AND image_id = ?`,
			userID, imageID,
		).Error; err != nil {
			return err
		}
		return tx.Where(
			"user_id = ? AND verb = ? AND target_type = ? AND target_id = ?",
			userID, models.VerbLikes, models.TargetTypeImage, imageID,
		).Delete(&models.Action{}).Error
	})
	if err != nil {
		return models.NewInternalError(err)
	}
	cache.InvalidateImage(ctx, imageID)
	return nil
}

func (r *imageRepository) CountByUserID(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Image{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
