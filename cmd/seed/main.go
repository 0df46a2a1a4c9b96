// Command main runs the database seeder for the bookmarks backend.
package main

import (
	"flag"
	"log"

	"bookmarks/internal/config"
	"bookmarks/internal/database"
	"bookmarks/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numImages := flag.Int("images", 200, "Number of images to bookmark")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d images, clean=%v\n", *numUsers, *numImages, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s := seed.NewSeeder(database.DB)

	if *shouldClean {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	users, err := s.SeedUsers(*numUsers)
	if err != nil {
		log.Fatalf("User seeding failed: %v", err)
	}
	if err := s.SeedFollowMesh(users); err != nil {
		log.Fatalf("Follow seeding failed: %v", err)
	}
	images, err := s.SeedImages(users, *numImages)
	if err != nil {
		log.Fatalf("Image seeding failed: %v", err)
	}
	if err := s.SeedLikes(users, images); err != nil {
		log.Fatalf("Like seeding failed: %v", err)
	}

	log.Println("All done! Your database is now populated with test data.")
	log.Println("All test users have the password: password123")
}
