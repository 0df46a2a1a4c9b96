package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"bookmarks/internal/config"
	"bookmarks/internal/models"
	"bookmarks/internal/ranking"
	"bookmarks/internal/repository"
	"bookmarks/internal/validation"
)

const (
	DefaultUploadDir       = "/tmp/bookmarks/uploads/images"
	DefaultMaxUploadSizeMB = 10
	RankingSize            = 10
)

// BookmarkInput carries the fields accepted when bookmarking a remote image.
type BookmarkInput struct {
	UserID      uint
	Title       string
	URL         string
	Description string
}

// UploadInput carries an uploaded image file.
type UploadInput struct {
	UserID      uint
	Title       string
	Description string
	Filename    string
	Content     []byte
}

// ImageService provides bookmarking, likes, and ranking business logic.
type ImageService struct {
	imageRepo          repository.ImageRepository
	views              *ranking.Store
	uploadDir          string
	maxUploadSizeBytes int64
}

// NewImageService returns a new ImageService.
func NewImageService(imageRepo repository.ImageRepository, views *ranking.Store, cfg *config.Config) *ImageService {
	uploadDir := DefaultUploadDir
	maxUploadSizeMB := DefaultMaxUploadSizeMB
	if cfg != nil {
		if cfg.UploadDir != "" {
			uploadDir = cfg.UploadDir
		}
		if cfg.UploadMaxSizeMB > 0 {
			maxUploadSizeMB = cfg.UploadMaxSizeMB
		}
	}
	return &ImageService{
		imageRepo:          imageRepo,
		views:              views,
		uploadDir:          uploadDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Bookmark stores a reference to a remote image.
func (s *ImageService) Bookmark(ctx context.Context, in BookmarkInput) (*models.Image, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if err := validation.ValidateURL(in.URL); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if !hasAllowedImageExtension(in.URL) {
		return nil, models.NewValidationError("URL must point to a jpg, jpeg, or png image")
	}

	image := &models.Image{
		UserID:      in.UserID,
		Title:       title,
		Slug:        validation.Slugify(title),
		URL:         in.URL,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		return nil, err
	}
	return s.imageRepo.GetByID(ctx, image.ID, in.UserID)
}

// Upload stores an uploaded image file and bookmarks it.
func (s *ImageService) Upload(ctx context.Context, in UploadInput) (*models.Image, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detected := http.DetectContentType(in.Content)
	ext, ok := extensionForMIME(detected)
	if !ok && detected == "application/octet-stream" {
		// sniffing came back ambiguous; fall back to the client's
		// extension when it names a supported image type
		ext, ok = extensionForFilename(in.Filename)
	}
	if !ok {
		return nil, models.NewValidationError("Invalid image type")
	}

	sum := sha256.Sum256(in.Content)
	relPath := filepath.ToSlash(filepath.Join(
		fmt.Sprintf("%d", in.UserID),
		hex.EncodeToString(sum[:])+ext,
	))
	if err := writeUploadFile(filepath.Join(s.uploadDir, relPath), in.Content); err != nil {
		return nil, models.NewInternalError(err)
	}

	image := &models.Image{
		UserID:      in.UserID,
		Title:       title,
		Slug:        validation.Slugify(title),
		File:        relPath,
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.imageRepo.Create(ctx, image); err != nil {
		_ = os.Remove(filepath.Join(s.uploadDir, relPath))
		return nil, err
	}
	return s.imageRepo.GetByID(ctx, image.ID, in.UserID)
}

// Detail loads an image by id and slug, counts the view, and attaches
// the running total. A slug mismatch is indistinguishable from a
// missing image.
func (s *ImageService) Detail(ctx context.Context, id uint, slug string, viewerID uint) (*models.Image, error) {
	image, err := s.imageRepo.GetByIDAndSlug(ctx, id, slug, viewerID)
	if err != nil {
		return nil, err
	}
	image.TotalViews, err = s.views.RegisterView(ctx, image.ID)
	if err != nil {
		// counting must never break the page
		image.TotalViews = 0
	}
	return image, nil
}

// List returns a page of images, newest first.
func (s *ImageService) List(ctx context.Context, viewerID uint, limit, offset int) ([]models.Image, error) {
	return s.imageRepo.List(ctx, viewerID, limit, offset)
}

// Like records a like; Unlike removes it. Both are idempotent.
func (s *ImageService) Like(ctx context.Context, userID, imageID uint) error {
	_, err := s.imageRepo.Like(ctx, userID, imageID)
	return err
}

func (s *ImageService) Unlike(ctx context.Context, userID, imageID uint) error {
	return s.imageRepo.Unlike(ctx, userID, imageID)
}

// Ranking returns the most viewed images, best first. The rows come
// back from the database in arbitrary order, so they are re-sorted to
// match the ranking.
func (s *ImageService) Ranking(ctx context.Context, viewerID uint) ([]models.Image, error) {
	ids, err := s.views.TopImageIDs(ctx, RankingSize)
	if err != nil || len(ids) == 0 {
		return []models.Image{}, err
	}

	images, err := s.imageRepo.GetByIDs(ctx, ids, viewerID)
	if err != nil {
		return nil, err
	}

	rank := make(map[uint]int, len(ids))
	for i, id := range ids {
		rank[id] = i
	}
	sort.SliceStable(images, func(a, b int) bool {
		return rank[images[a].ID] < rank[images[b].ID]
	})

	for i := range images {
		views, verr := s.views.TotalViews(ctx, images[i].ID)
		if verr == nil {
			images[i].TotalViews = views
		}
	}
	return images, nil
}

func hasAllowedImageExtension(url string) bool {
	u := strings.ToLower(url)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	switch strings.TrimPrefix(filepath.Ext(u), ".") {
	case "jpg", "jpeg", "png":
		return true
	default:
		return false
	}
}

func extensionForMIME(contentType string) (string, bool) {
	switch contentType {
	case "image/jpeg":
		return ".jpg", true
	case "image/png":
		return ".png", true
	case "image/gif":
		return ".gif", true
	case "image/webp":
		return ".webp", true
	default:
		return "", false
	}
}

func extensionForFilename(name string) (string, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return ".jpg", true
	case ".png":
		return ".png", true
	case ".gif":
		return ".gif", true
	case ".webp":
		return ".webp", true
	default:
		return "", false
	}
}

func writeUploadFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
