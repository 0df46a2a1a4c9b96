package ranking

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client), mr
}

func TestRegisterViewIncrementsCounterAndRanking(t *testing.T) {
	store, mr := testStore(t)
	ctx := context.Background()

	total, err := store.RegisterView(ctx, 9)
	if err != nil {
		t.Fatalf("RegisterView failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 view, got %d", total)
	}

	total, err = store.RegisterView(ctx, 9)
	if err != nil {
		t.Fatalf("second RegisterView failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 views, got %d", total)
	}

	// the counter and the sorted set move together
	counter, err := mr.Get("image:9:views")
	if err != nil || counter != "2" {
		t.Fatalf("expected counter 2, got %q (err %v)", counter, err)
	}
	score, err := mr.ZScore("image_ranking", "9")
	if err != nil || score != 2 {
		t.Fatalf("expected ranking score 2, got %v (err %v)", score, err)
	}
}

func TestTotalViewsMissingKeyIsZero(t *testing.T) {
	store, _ := testStore(t)

	total, err := store.TotalViews(context.Background(), 123)
	if err != nil {
		t.Fatalf("TotalViews failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected 0 for unseen image, got %d", total)
	}
}

func TestTopImageIDsOrdering(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, _ = store.RegisterView(ctx, 2)
	}
	for i := 0; i < 3; i++ {
		_, _ = store.RegisterView(ctx, 7)
	}
	_, _ = store.RegisterView(ctx, 4)

	ids, err := store.TopImageIDs(ctx, 10)
	if err != nil {
		t.Fatalf("TopImageIDs failed: %v", err)
	}
	want := []uint{2, 7, 4}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, ids)
		}
	}
}

func TestTopImageIDsRespectsLimit(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	for id := uint(1); id <= 5; id++ {
		_, _ = store.RegisterView(ctx, id)
	}

	ids, err := store.TopImageIDs(ctx, 2)
	if err != nil {
		t.Fatalf("TopImageIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 ids, got %v", ids)
	}
}

func TestNilClientDegradesQuietly(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if total, err := store.RegisterView(ctx, 1); err != nil || total != 0 {
		t.Fatalf("expected silent no-op, got %d, %v", total, err)
	}
	if total, err := store.TotalViews(ctx, 1); err != nil || total != 0 {
		t.Fatalf("expected zero views, got %d, %v", total, err)
	}
	if ids, err := store.TopImageIDs(ctx, 10); err != nil || len(ids) != 0 {
		t.Fatalf("expected empty ranking, got %v, %v", ids, err)
	}
}
