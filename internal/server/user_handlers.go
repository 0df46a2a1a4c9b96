package server

import (
	"time"

	"bookmarks/internal/models"
	"bookmarks/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetUsers handles GET /api/users
func (s *Server) GetUsers(c *fiber.Ctx) error {
	page := parsePagination(c, defaultUserPageSize)

	users, err := s.userRepo.ListActive(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(users)
}

// GetUserDetail handles GET /api/users/:username
func (s *Server) GetUserDetail(c *fiber.Ctx) error {
	username := c.Params("username")
	viewerID := currentUserID(c)

	user, err := s.userRepo.GetByUsername(c.Context(), username)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if user == nil || !user.IsActive {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("User", username))
	}

	rel, err := s.followService.RelationshipWith(c.Context(), viewerID, user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	imagesCount, err := s.imageRepo.CountByUserID(c.Context(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"user":            user,
		"following":       rel.Following,
		"followers_count": rel.FollowersCount,
		"following_count": rel.FollowingCount,
		"images_count":    imagesCount,
	})
}

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		FirstName   *string `json:"first_name"`
		LastName    *string `json:"last_name"`
		Email       *string `json:"email"`
		Bio         *string `json:"bio"`
		DateOfBirth *string `json:"date_of_birth"`
		Photo       *string `json:"photo"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Email != nil && *req.Email != user.Email {
		if verr := validation.ValidateEmail(*req.Email); verr != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(verr.Error()))
		}
		existing, err := s.userRepo.GetByEmail(c.Context(), *req.Email)
		if err != nil {
			return respondServiceError(c, err)
		}
		if existing != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Email already registered"))
		}
		user.Email = *req.Email
	}
	if err := s.userRepo.Update(c.Context(), user); err != nil {
		return respondServiceError(c, err)
	}

	if user.Profile != nil {
		profile := user.Profile
		if req.Bio != nil {
			profile.Bio = *req.Bio
		}
		if req.Photo != nil {
			profile.Photo = *req.Photo
		}
		if req.DateOfBirth != nil {
			if *req.DateOfBirth == "" {
				profile.DateOfBirth = nil
			} else {
				dob, perr := time.Parse("2006-01-02", *req.DateOfBirth)
				if perr != nil {
					return models.RespondWithError(c, fiber.StatusBadRequest,
						models.NewValidationError("date_of_birth must be YYYY-MM-DD"))
				}
				profile.DateOfBirth = &dob
			}
		}
		if err := s.userRepo.UpdateProfile(c.Context(), profile); err != nil {
			return respondServiceError(c, err)
		}
	}

	updated, err := s.userRepo.GetByID(c.Context(), user.ID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(updated)
}

// FollowToggle handles POST /api/users/follow with body {id, action}.
// It answers {"status":"ok"} or {"status":"error"} and nothing else.
func (s *Server) FollowToggle(c *fiber.Ctx) error {
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
	case "follow":
		err = s.followService.Follow(c.Context(), userID, req.ID)
	case "unfollow":
		err = s.followService.Unfollow(c.Context(), userID, req.ID)
	default:
		return statusError(c, fiber.StatusBadRequest)
	}
	if err != nil {
		return statusError(c, fiber.StatusBadRequest)
	}
	return statusOK(c)
}
