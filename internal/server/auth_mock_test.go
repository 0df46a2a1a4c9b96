package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"bookmarks/internal/config"
	"bookmarks/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Activate(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) ListActive(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.MinCost)
	assert.NoError(t, err)

	activeUser := &models.User{
		ID:       1,
		Username: "testuser",
		Password: string(hashed),
		IsActive: true,
	}
	inactiveUser := &models.User{
		ID:       2,
		Username: "pending",
		Password: string(hashed),
		IsActive: false,
	}

	tests := []struct {
		name           string
		body           map[string]string
		mockSetup      func(m *MockUserRepository)
		expectedStatus int
		wantToken      bool
	}{
		{
			name: "Success",
			body: map[string]string{
				"username": "testuser",
				"password": "Password123",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "testuser").Return(activeUser, nil)
			},
			expectedStatus: http.StatusOK,
			wantToken:      true,
		},
		{
			name: "Wrong Password",
			body: map[string]string{
				"username": "testuser",
				"password": "WrongPassword1",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "testuser").Return(activeUser, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Unknown User",
			body: map[string]string{
				"username": "nobody",
				"password": "Password123",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "nobody").Return(nil, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "Inactive Account",
			body: map[string]string{
				"username": "pending",
				"password": "Password123",
			},
			mockSetup: func(m *MockUserRepository) {
				m.On("GetByUsername", mock.Anything, "pending").Return(inactiveUser, nil)
			},
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.mockSetup(mockRepo)

			s := &Server{
				config:   &config.Config{JWTSecret: "test_secret"},
				userRepo: mockRepo,
			}
			app := fiber.New()
			app.Post("/login", s.Login)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req, -1)
			assert.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.wantToken {
				var parsed struct {
					Token string `json:"token"`
				}
				assert.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
				assert.NotEmpty(t, parsed.Token)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}
