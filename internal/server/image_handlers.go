package server

import (
	"io"

	"bookmarks/internal/models"
	"bookmarks/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetImages handles GET /api/images. With ?images_only=1 the response
// is the bare array instead of the paginated envelope, for clients that
// append pages in place.
func (s *Server) GetImages(c *fiber.Ctx) error {
	page := parsePagination(c, defaultImagePageSize)

	images, err := s.imageService.List(c.Context(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	if c.QueryBool("images_only") {
		return c.JSON(images)
	}
	return c.JSON(fiber.Map{
		"images": images,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetImage handles GET /api/images/:id/:slug
func (s *Server) GetImage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	image, derr := s.imageService.Detail(c.Context(), id, c.Params("slug"), currentUserID(c))
	if derr != nil {
		return respondServiceError(c, derr)
	}
	return c.JSON(image)
}

// GetImageRanking handles GET /api/images/ranking
func (s *Server) GetImageRanking(c *fiber.Ctx) error {
	images, err := s.imageService.Ranking(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(images)
}

// CreateImage handles POST /api/images
func (s *Server) CreateImage(c *fiber.Ctx) error {
	var req struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	image, err := s.imageService.Bookmark(c.Context(), service.BookmarkInput{
		UserID:      currentUserID(c),
		Title:       req.Title,
		URL:         req.URL,
		Description: req.Description,
	})
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// UploadImage handles POST /api/images/upload (multipart form:
// file, title, description).
func (s *Server) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	f, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Unreadable file"))
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError,
			models.NewInternalError(err))
	}

	image, uerr := s.imageService.Upload(c.Context(), service.UploadInput{
		UserID:      currentUserID(c),
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Filename:    fileHeader.Filename,
		Content:     content,
	})
	if uerr != nil {
		return respondServiceError(c, uerr)
	}
	return c.Status(fiber.StatusCreated).JSON(image)
}

// LikeToggle handles POST /api/images/like with body {id, action}.
// It answers {"status":"ok"} or {"status":"error"} and nothing else.
func (s *Server) LikeToggle(c *fiber.Ctx) error {
	var req struct {
		ID     uint   `json:"id"`
		Action string `json:"action"`
	}
	if err := c.BodyParser(&req); err != nil || req.ID == 0 {
		return statusError(c, fiber.StatusBadRequest)
	}

	userID := currentUserID(c)
	var err error
	switch req.Action {
	case "like":
		err = s.imageService.Like(c.Context(), userID, req.ID)
	case "unlike":
		err = s.imageService.Unlike(c.Context(), userID, req.ID)
	default:
		return statusError(c, fiber.StatusBadRequest)
	}
	if err != nil {
		return statusError(c, fiber.StatusBadRequest)
	}
	return statusOK(c)
}
