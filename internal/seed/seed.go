package seed

import (
	"fmt"
	"log"

	"bookmarks/internal/models"

	"gorm.io/gorm"
)

// Seeder orchestrates demo-data creation.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a new Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db),
	}
}

// ClearAll wipes all seeded tables. Order matters for foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	statements := []string{
		"DELETE FROM image_likes",
		"DELETE FROM actions",
		"DELETE FROM contacts",
		"DELETE FROM images",
		"DELETE FROM profiles",
		"DELETE FROM users",
	}
	for _, stmt := range statements {
		if err := s.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}
	return nil
}

// SeedUsers creates n active users with profiles.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	log.Printf("Seeding %d users...", n)
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// SeedFollowMesh creates a loose follow graph: each user follows a
// handful of random others.
func (s *Seeder) SeedFollowMesh(users []*models.User) error {
	log.Println("Seeding follow graph...")
	for _, from := range users {
		follows := s.factory.rand.Intn(6)
		for j := 0; j < follows; j++ {
			to := users[s.factory.rand.Intn(len(users))]
			if err := s.factory.CreateFollow(from, to); err != nil {
				return fmt.Errorf("seed follow: %w", err)
			}
		}
	}
	return nil
}

// SeedImages bookmarks n images spread across the given users.
func (s *Seeder) SeedImages(users []*models.User, n int) ([]*models.Image, error) {
	log.Printf("Seeding %d images...", n)
	images := make([]*models.Image, 0, n)
	for i := 0; i < n; i++ {
		owner := users[s.factory.rand.Intn(len(users))]
		image, err := s.factory.CreateImage(owner)
		if err != nil {
			return nil, fmt.Errorf("seed image %d: %w", i, err)
		}
		images = append(images, image)
	}
	return images, nil
}

// SeedLikes sprinkles likes over the seeded images.
func (s *Seeder) SeedLikes(users []*models.User, images []*models.Image) error {
	log.Println("Seeding likes...")
	for _, image := range images {
		likes := s.factory.rand.Intn(8)
		for j := 0; j < likes; j++ {
			user := users[s.factory.rand.Intn(len(users))]
			if err := s.factory.CreateLike(user, image); err != nil {
				return fmt.Errorf("seed like: %w", err)
			}
		}
	}
	return nil
}
