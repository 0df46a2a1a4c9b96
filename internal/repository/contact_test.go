package repository

import (
	"context"
	"testing"

	"bookmarks/internal/models"
)

func TestContactRepositoryFollowIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	created, err := repo.Follow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if !created {
		t.Fatal("expected edge to be created")
	}

	created, err = repo.Follow(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("second Follow failed: %v", err)
	}
	if created {
		t.Fatal("expected duplicate follow to be a no-op")
	}

	var edges int64
	db.Model(&models.Contact{}).Count(&edges)
	if edges != 1 {
		t.Fatalf("expected 1 edge, got %d", edges)
	}
	// the action is only written when the edge was actually created
	if got := countActions(t, db, alice.ID, models.VerbFollowing); got != 1 {
		t.Fatalf("expected 1 follow action, got %d", got)
	}
}

func TestContactRepositoryUnfollow(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	if _, err := repo.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Follow failed: %v", err)
	}
	if err := repo.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("Unfollow failed: %v", err)
	}
	// unfollowing again is a no-op
	if err := repo.Unfollow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("repeat Unfollow failed: %v", err)
	}

	var edges int64
	db.Model(&models.Contact{}).Count(&edges)
	if edges != 0 {
		t.Fatalf("expected 0 edges, got %d", edges)
	}
	// the follow action survives the unfollow
	if got := countActions(t, db, alice.ID, models.VerbFollowing); got != 1 {
		t.Fatalf("expected follow action to remain, got %d", got)
	}
}

func TestContactRepositoryCountsAndFollowingIDs(t *testing.T) {
	db := setupTestDB(t)
	repo := NewContactRepository(db)
	ctx := context.Background()

	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")
	carol := createTestUser(t, db, "carol")

	if _, err := repo.Follow(ctx, alice.ID, bob.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Follow(ctx, alice.ID, carol.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Follow(ctx, carol.ID, bob.ID); err != nil {
		t.Fatal(err)
	}

	following, err := repo.CountFollowing(ctx, alice.ID)
	if err != nil || following != 2 {
		t.Fatalf("expected alice to follow 2, got %d (err %v)", following, err)
	}
	followers, err := repo.CountFollowers(ctx, bob.ID)
	if err != nil || followers != 2 {
		t.Fatalf("expected bob to have 2 followers, got %d (err %v)", followers, err)
	}

	ids, err := repo.FollowingIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FollowingIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 following ids, got %v", ids)
	}

	isFollowing, err := repo.IsFollowing(ctx, alice.ID, bob.ID)
	if err != nil || !isFollowing {
		t.Fatalf("expected alice to follow bob (err %v)", err)
	}
	isFollowing, err = repo.IsFollowing(ctx, bob.ID, alice.ID)
	if err != nil || isFollowing {
		t.Fatalf("expected bob not to follow alice (err %v)", err)
	}
}
