package service

import (
	"context"

	"bookmarks/internal/models"
	"bookmarks/internal/repository"
)

// FeedService assembles the dashboard activity stream.
type FeedService struct {
	actionRepo  repository.ActionRepository
	contactRepo repository.ContactRepository
}

// NewFeedService returns a new FeedService.
func NewFeedService(actionRepo repository.ActionRepository, contactRepo repository.ContactRepository) *FeedService {
	return &FeedService{
		actionRepo:  actionRepo,
		contactRepo: contactRepo,
	}
}

// Dashboard returns the actions shown on a user's dashboard: never
// their own, restricted to the people they follow when they follow
// anyone, otherwise everyone else's.
func (s *FeedService) Dashboard(ctx context.Context, userID uint, limit, offset int) ([]models.Action, error) {
	followingIDs, err := s.contactRepo.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.actionRepo.Feed(ctx, userID, followingIDs, limit, offset)
}
