// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"bookmarks/internal/models"
	"bookmarks/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	rand *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// CreateUser constructs and persists an active sample user with profile.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		Username:  strings.ToLower(gofakeit.Username()) + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Password:  string(hashedPassword),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		IsActive:  true,
	}

	for _, override := range overrides {
		override(user)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.Profile{
			UserID: user.ID,
			Bio:    gofakeit.Sentence(12),
			Photo:  fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		return tx.Create(models.NewAction(user.ID, models.VerbCreatedAccount)).Error
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CreateImage constructs and persists a bookmarked image for the user,
// including the bookmark action, with a realistic created_at spread.
func (f *Factory) CreateImage(user *models.User, overrides ...func(*models.Image)) (*models.Image, error) {
	title := gofakeit.Sentence(4)
	image := &models.Image{
		UserID:      user.ID,
		Title:       title,
		Slug:        validation.Slugify(title),
		URL:         fmt.Sprintf("https://picsum.photos/seed/%s/800/800.jpg", gofakeit.UUID()),
		Description: gofakeit.Paragraph(1, 2, 8, "\n"),
		CreatedAt:   f.pastTime(90),
	}

	for _, override := range overrides {
		override(image)
	}

	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(image).Error; err != nil {
			return err
		}
		action := models.NewTargetedAction(user.ID, models.VerbBookmarkedImage, models.TargetTypeImage, image.ID)
		action.CreatedAt = image.CreatedAt
		return tx.Create(action).Error
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

// CreateFollow creates a follow edge plus its action, skipping
// self-follows and duplicates.
func (f *Factory) CreateFollow(from, to *models.User) error {
	if from.ID == to.ID {
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO contacts (user_from_id, user_to_id, created_at)
			 VALUES (?, ?, ?)
			 ON CONFLICT (user_from_id, user_to_id) DO NOTHING`,
			from.ID, to.ID, f.pastTime(60),
		)
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Create(models.NewTargetedAction(from.ID, models.VerbFollowing, models.TargetTypeUser, to.ID)).Error
	})
}

// CreateLike likes an image on behalf of the user, skipping duplicates.
func (f *Factory) CreateLike(user *models.User, image *models.Image) error {
	return f.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Exec(
			`INSERT INTO image_likes (user_id, image_id)
			 VALUES (?, ?)
			 ON CONFLICT (user_id, image_id) DO NOTHING`,
			user.ID, image.ID,
		)
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Create(models.NewTargetedAction(user.ID, models.VerbLikes, models.TargetTypeImage, image.ID)).Error
	})
}

// pastTime returns a time up to maxDays in the past with hour/minute jitter.
func (f *Factory) pastTime(maxDays int) time.Time {
	daysBack := f.rand.Intn(maxDays)
	hoursBack := f.rand.Intn(24)
	minsBack := f.rand.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour -
		time.Duration(minsBack)*time.Minute)
}
