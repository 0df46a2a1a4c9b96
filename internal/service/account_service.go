// Package service contains the application's business logic.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bookmarks/internal/config"
	"bookmarks/internal/mailer"
	"bookmarks/internal/models"
	"bookmarks/internal/repository"
	"bookmarks/internal/token"
	"bookmarks/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidActivation is the single message returned for every
// activation failure so the link leaks nothing about why it failed.
const ErrInvalidActivation = "Activation link is invalid"

// RegisterInput carries the fields accepted at signup.
type RegisterInput struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// AccountService handles registration, activation, and password lifecycle.
type AccountService struct {
	userRepo repository.UserRepository
	signer   *token.Signer
	mail     mailer.Mailer
	baseURL  string
}

// NewAccountService returns a new AccountService.
func NewAccountService(userRepo repository.UserRepository, signer *token.Signer, mail mailer.Mailer, cfg *config.Config) *AccountService {
	baseURL := "http://localhost:8274"
	if cfg != nil && cfg.SiteBaseURL != "" {
		baseURL = strings.TrimRight(cfg.SiteBaseURL, "/")
	}
	return &AccountService{
		userRepo: userRepo,
		signer:   signer,
		mail:     mail,
		baseURL:  baseURL,
	}
}

// Register creates an inactive account and emails the activation link.
// A non-empty warning means the account exists but the activation email
// could not be delivered.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, string, error) {
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, "", models.NewValidationError(err.Error())
	}

	if existing, err := s.userRepo.GetByUsername(ctx, in.Username); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewValidationError("Username already taken")
	}
	if existing, err := s.userRepo.GetByEmail(ctx, in.Email); err != nil {
		return nil, "", err
	} else if existing != nil {
		return nil, "", models.NewValidationError("Email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError(err)
	}

	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  string(hashed),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  false,
	}
	if err := s.userRepo.CreateWithProfile(ctx, user); err != nil {
		return nil, "", err
	}

	warning := ""
	if err := s.sendActivationEmail(ctx, user); err != nil {
		warning = "Account created, but the activation email could not be sent"
	}
	return user, warning, nil
}

func (s *AccountService) sendActivationEmail(ctx context.Context, user *models.User) error {
	activationToken, err := s.signer.Activation(user.ID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign activation token", "user_id", user.ID, "error", err)
		return err
	}

	link := fmt.Sprintf("%s/activate/%d/%s", s.baseURL, user.ID, activationToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nPlease activate your account by visiting:\n\n%s\n",
		user.Username, link,
	)
	if err := s.mail.Send(user.Email, "Activate your account", body); err != nil {
		slog.ErrorContext(ctx, "failed to send activation email", "user_id", user.ID, "error", err)
		return err
	}
	return nil
}

// ResendActivation re-sends the activation email. It reports success
// even when the email is unknown or the account is already active so
// the endpoint cannot be used to probe for accounts.
func (s *AccountService) ResendActivation(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || user.IsActive {
		return nil
	}
	_ = s.sendActivationEmail(ctx, user)
	return nil
}

// Activate validates the activation token and marks the account active.
// Activating an already active account succeeds so stale links behave
// sanely; any other failure returns the same generic message.
func (s *AccountService) Activate(ctx context.Context, userID uint, activationToken string) error {
	if err := s.signer.VerifyActivation(activationToken, userID); err != nil {
		return models.NewValidationError(ErrInvalidActivation)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NewValidationError(ErrInvalidActivation)
	}
	if user.IsActive {
		return nil
	}
	return s.userRepo.Activate(ctx, user.ID)
}

// ChangePassword updates the password for a logged-in user after
// verifying the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return models.NewUnauthorizedError("Current password is incorrect")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hashed))
}

// RequestPasswordReset emails a reset link. It reports success even for
// unknown emails so the endpoint cannot be used to probe for accounts.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil || !user.IsActive {
		return nil
	}

	resetToken, err := s.signer.PasswordReset(user.ID, user.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to sign reset token", "user_id", user.ID, "error", err)
		return nil
	}

	link := fmt.Sprintf("%s/password-reset/%d/%s", s.baseURL, user.ID, resetToken)
	body := fmt.Sprintf(
		"Hi %s,\n\nYou requested a password reset. Visit:\n\n%s\n\nIf you did not request this, ignore this email.\n",
		user.Username, link,
	)
	if err := s.mail.Send(user.Email, "Reset your password", body); err != nil {
		slog.ErrorContext(ctx, "failed to send reset email", "user_id", user.ID, "error", err)
	}
	return nil
}

// ConfirmPasswordReset sets a new password from a reset token. The
// token is bound to the current password hash, so it stops working the
// moment the password changes.
func (s *AccountService) ConfirmPasswordReset(ctx context.Context, userID uint, resetToken, newPassword string) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return models.NewValidationError("Reset link is invalid")
	}
	if err := s.signer.VerifyPasswordReset(resetToken, userID, user.Password); err != nil {
		return models.NewValidationError("Reset link is invalid")
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.userRepo.UpdatePassword(ctx, userID, string(hashed))
}
