package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"bookmarks/internal/models"
	"bookmarks/internal/token"

	"golang.org/x/crypto/bcrypt"
)

type userRepoStub struct {
	getByIDFn           func(context.Context, uint) (*models.User, error)
	getByEmailFn        func(context.Context, string) (*models.User, error)
	getByUsernameFn     func(context.Context, string) (*models.User, error)
	createWithProfileFn func(context.Context, *models.User) error
	updateFn            func(context.Context, *models.User) error
	updateProfileFn     func(context.Context, *models.Profile) error
	updatePasswordFn    func(context.Context, uint, string) error
	activateFn          func(context.Context, uint) error
	listActiveFn        func(context.Context, int, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) CreateWithProfile(ctx context.Context, user *models.User) error {
	return s.createWithProfileFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, profile *models.Profile) error {
	return s.updateProfileFn(ctx, profile)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) Activate(ctx context.Context, id uint) error {
	return s.activateFn(ctx, id)
}
func (s *userRepoStub) ListActive(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listActiveFn(ctx, limit, offset)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn:           func(context.Context, uint) (*models.User, error) { return &models.User{ID: 1}, nil },
		getByEmailFn:        func(context.Context, string) (*models.User, error) { return nil, nil },
		getByUsernameFn:     func(context.Context, string) (*models.User, error) { return nil, nil },
		createWithProfileFn: func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		updateFn:            func(context.Context, *models.User) error { return nil },
		updateProfileFn:     func(context.Context, *models.Profile) error { return nil },
		updatePasswordFn:    func(context.Context, uint, string) error { return nil },
		activateFn:          func(context.Context, uint) error { return nil },
		listActiveFn:        func(context.Context, int, int) ([]models.User, error) { return nil, nil },
	}
}

type mailerStub struct {
	sent []string
	fail bool
}

func (m *mailerStub) Send(to, subject, body string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, to)
	return nil
}

func testSigner() *token.Signer {
	return token.NewSigner("test-secret", 72*time.Hour, time.Hour)
}

func newTestAccountService(repo *userRepoStub, mail *mailerStub) *AccountService {
	return NewAccountService(repo, testSigner(), mail, nil)
}

func validRegisterInput() RegisterInput {
	return RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "Password123",
	}
}

func TestAccountServiceRegister(t *testing.T) {
	mail := &mailerStub{}
	svc := newTestAccountService(noopUserRepo(), mail)

	user, warning, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.IsActive {
		t.Fatal("expected new account to be inactive")
	}
	if warning != "" {
		t.Fatalf("unexpected warning: %q", warning)
	}
	if len(mail.sent) != 1 || mail.sent[0] != "alice@example.com" {
		t.Fatalf("expected activation email to alice, got %v", mail.sent)
	}
}

func TestAccountServiceRegisterMailFailureIsAWarning(t *testing.T) {
	mail := &mailerStub{fail: true}
	svc := newTestAccountService(noopUserRepo(), mail)

	user, warning, err := svc.Register(context.Background(), validRegisterInput())
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user == nil {
		t.Fatal("expected user despite mail failure")
	}
	if warning == "" {
		t.Fatal("expected a warning about the activation email")
	}
}

func TestAccountServiceRegisterDuplicateUsername(t *testing.T) {
	repo := noopUserRepo()
	repo.getByUsernameFn = func(context.Context, string) (*models.User, error) {
		return &models.User{ID: 7}, nil
	}
	svc := newTestAccountService(repo, &mailerStub{})

	_, _, err := svc.Register(context.Background(), validRegisterInput())
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation app error, got %#v", err)
	}
}

func TestAccountServiceRegisterWeakPassword(t *testing.T) {
	svc := newTestAccountService(noopUserRepo(), &mailerStub{})

	in := validRegisterInput()
	in.Password = "short"
	_, _, err := svc.Register(context.Background(), in)
	if err == nil {
		t.Fatal("expected validation error")
	}
}

func TestAccountServiceActivate(t *testing.T) {
	activated := false
	repo := noopUserRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, IsActive: false}, nil
	}
	repo.activateFn = func(context.Context, uint) error {
		activated = true
		return nil
	}
	svc := newTestAccountService(repo, &mailerStub{})

	tok, err := testSigner().Activation(1)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	if err := svc.Activate(context.Background(), 1, tok); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if !activated {
		t.Fatal("expected account to be activated")
	}
}

func TestAccountServiceActivateGenericFailures(t *testing.T) {
	repo := noopUserRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return nil, models.NewNotFoundError("User", 1)
	}
	svc := newTestAccountService(repo, &mailerStub{})

	tok, _ := testSigner().Activation(1)

	cases := []struct {
		name  string
		uid   uint
		token string
	}{
		{"tampered token", 1, tok + "x"},
		{"uid mismatch", 2, tok},
		{"missing user", 1, tok},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Activate(context.Background(), tc.uid, tc.token)
			if err == nil {
				t.Fatal("expected error")
			}
			// every failure mode returns the identical message
			if err.Error() != ErrInvalidActivation {
				t.Fatalf("expected generic activation error, got %q", err.Error())
			}
		})
	}
}

func TestAccountServiceActivateAlreadyActive(t *testing.T) {
	repo := noopUserRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, IsActive: true}, nil
	}
	repo.activateFn = func(context.Context, uint) error {
		t.Fatal("Activate must not be called for an already active account")
		return nil
	}
	svc := newTestAccountService(repo, &mailerStub{})

	tok, _ := testSigner().Activation(1)
	if err := svc.Activate(context.Background(), 1, tok); err != nil {
		t.Fatalf("expected replayed activation to succeed, got %v", err)
	}
}

func TestAccountServiceChangePasswordWrongCurrent(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("Correct123"), bcrypt.DefaultCost)
	repo := noopUserRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, Password: string(hash)}, nil
	}
	svc := newTestAccountService(repo, &mailerStub{})

	err := svc.ChangePassword(context.Background(), 1, "Wrong123", "NewPassword1")
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "UNAUTHORIZED" {
		t.Fatalf("expected unauthorized app error, got %#v", err)
	}
}

func TestAccountServicePasswordResetUnknownEmailIsSilent(t *testing.T) {
	mail := &mailerStub{}
	svc := newTestAccountService(noopUserRepo(), mail)

	if err := svc.RequestPasswordReset(context.Background(), "nobody@example.com"); err != nil {
		t.Fatalf("expected silent success, got %v", err)
	}
	if len(mail.sent) != 0 {
		t.Fatalf("expected no mail, got %v", mail.sent)
	}
}

func TestAccountServicePasswordResetTokenDiesWithPasswordChange(t *testing.T) {
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("Original1"), bcrypt.DefaultCost)
	newHash, _ := bcrypt.GenerateFromPassword([]byte("Changed22"), bcrypt.DefaultCost)

	currentHash := string(oldHash)
	repo := noopUserRepo()
	repo.getByIDFn = func(context.Context, uint) (*models.User, error) {
		return &models.User{ID: 1, IsActive: true, Password: currentHash}, nil
	}
	repo.updatePasswordFn = func(_ context.Context, _ uint, hash string) error {
		currentHash = hash
		return nil
	}
	svc := newTestAccountService(repo, &mailerStub{})

	resetToken, err := testSigner().PasswordReset(1, currentHash)
	if err != nil {
		t.Fatalf("failed to sign reset token: %v", err)
	}

	// token works against the hash it was minted for
	if err := svc.ConfirmPasswordReset(context.Background(), 1, resetToken, "BrandNew99"); err != nil {
		t.Fatalf("first reset failed: %v", err)
	}

	// simulate a later password change, then try the old token again
	currentHash = string(newHash)
	err = svc.ConfirmPasswordReset(context.Background(), 1, resetToken, "Another111")
	if err == nil {
		t.Fatal("expected stale reset token to be rejected")
	}
}
