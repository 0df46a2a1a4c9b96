package service

import (
	"context"

	"bookmarks/internal/models"
	"bookmarks/internal/repository"
)

// FollowService provides follow-graph business logic.
type FollowService struct {
	contactRepo repository.ContactRepository
	userRepo    repository.UserRepository
}

// NewFollowService returns a new FollowService.
func NewFollowService(contactRepo repository.ContactRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{
		contactRepo: contactRepo,
		userRepo:    userRepo,
	}
}

// Follow makes userID follow targetID. Following someone you already
// follow is a no-op success.
func (s *FollowService) Follow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("Cannot follow yourself")
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if !target.IsActive {
		return models.NewNotFoundError("User", targetID)
	}

	_, err = s.contactRepo.Follow(ctx, userID, targetID)
	return err
}

// Unfollow removes the edge. Unfollowing someone you never followed is
// a no-op success.
func (s *FollowService) Unfollow(ctx context.Context, userID, targetID uint) error {
	if userID == targetID {
		return models.NewValidationError("Cannot unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return err
	}
	return s.contactRepo.Unfollow(ctx, userID, targetID)
}

// Relationship describes the viewer's follow state with another user
// plus that user's follower counts.
type Relationship struct {
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
	FollowingCount int64 `json:"following_count"`
}

// RelationshipWith returns the viewer's relationship with the target
// user. A viewer id of zero yields Following=false.
func (s *FollowService) RelationshipWith(ctx context.Context, viewerID, targetID uint) (*Relationship, error) {
	rel := &Relationship{}

	var err error
	rel.FollowersCount, err = s.contactRepo.CountFollowers(ctx, targetID)
	if err != nil {
		return nil, err
	}
	rel.FollowingCount, err = s.contactRepo.CountFollowing(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if viewerID != 0 && viewerID != targetID {
		rel.Following, err = s.contactRepo.IsFollowing(ctx, viewerID, targetID)
		if err != nil {
			return nil, err
		}
	}
	return rel, nil
}
