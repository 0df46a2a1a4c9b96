package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bookmarks/internal/cache"
	"bookmarks/internal/config"
	"bookmarks/internal/mailer"
	"bookmarks/internal/models"
	"bookmarks/internal/ranking"
	"bookmarks/internal/repository"
	"bookmarks/internal/service"
	"bookmarks/internal/token"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassword = "Password123"

// newTestServer wires a full server against in-memory sqlite and miniredis
// and returns a Fiber app with all routes registered.
func newTestServer(t *testing.T) (*Server, *fiber.App, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Contact{},
		&models.Action{},
		&models.Image{},
	); err != nil {
		t.Fatalf("migrate sqlite: %v", err)
	}

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	cfg := &config.Config{
		JWTSecret:            "test-secret",
		Env:                  "test",
		SiteBaseURL:          "http://localhost:8274",
		UploadDir:            t.TempDir(),
		UploadMaxSizeMB:      1,
		ActivationTTLHours:   72,
		ResetTokenTTLMinutes: 60,
	}

	userRepo := repository.NewUserRepository(db)
	contactRepo := repository.NewContactRepository(db)
	actionRepo := repository.NewActionRepository(db)
	imageRepo := repository.NewImageRepository(db)

	signer := token.NewSigner(
		cfg.JWTSecret,
		time.Duration(cfg.ActivationTTLHours)*time.Hour,
		time.Duration(cfg.ResetTokenTTLMinutes)*time.Minute,
	)
	views := ranking.NewStore(rdb)

	s := &Server{
		config:      cfg,
		db:          db,
		redis:       rdb,
		userRepo:    userRepo,
		contactRepo: contactRepo,
		actionRepo:  actionRepo,
		imageRepo:   imageRepo,
	}
	s.accountService = service.NewAccountService(userRepo, signer, mailer.New(cfg), cfg)
	s.followService = service.NewFollowService(contactRepo, userRepo)
	s.feedService = service.NewFeedService(actionRepo, contactRepo)
	s.imageService = service.NewImageService(imageRepo, views, cfg)

	return s, s.NewApp(), db
}

// createActiveUser inserts an activated user with the shared test password.
func createActiveUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hashed, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: string(hashed),
		IsActive: true,
		Profile:  &models.Profile{},
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

// loginUser logs in through the API and returns the bearer token.
func loginUser(t *testing.T, app *fiber.App, username string) string {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": testPassword,
	}, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: expected 200, got %d", username, resp.StatusCode)
	}
	var body struct {
		Token string `json:"token"`
	}
	decodeBody(t, resp, &body)
	if body.Token == "" {
		t.Fatalf("login %s: empty token", username)
	}
	return body.Token
}

// doJSON performs a JSON request, optionally authenticated.
func doJSON(t *testing.T, app *fiber.App, method, path string, body any, bearer string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func TestHealthLive(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/health/live", nil, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestHealthReady(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/health/ready", nil, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "healthy" {
		t.Fatalf("expected healthy, got %q", body.Status)
	}
}

func TestAppErrorHandlerSpeaksJSON(t *testing.T) {
	_, app, _ := newTestServer(t)
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp := doJSON(t, app, http.MethodGet, "/boom", nil, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode)
	}
	var body models.ErrorResponse
	decodeBody(t, resp, &body)
	if body.Code != "INTERNAL_ERROR" {
		t.Fatalf("expected INTERNAL_ERROR response, got %+v", body)
	}
}

func TestAuthRequiredRejectsAnonymous(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/feed", nil, "")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestAuthRequiredRejectsGarbageToken(t *testing.T) {
	_, app, _ := newTestServer(t)

	resp := doJSON(t, app, http.MethodGet, "/api/feed", nil, "not-a-jwt")
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}
