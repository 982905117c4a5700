package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/productman/internal/model"
	"github.com/hitoshi/productman/internal/repository"
)

// --- モック ---

type mockUserRepo struct {
	createFn                func(ctx context.Context, user *model.User) error
	findByIDFn              func(ctx context.Context, id string) (*model.User, error)
	findByEmailOrUsernameFn func(ctx context.Context, key string) (*model.User, error)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmailOrUsername(ctx context.Context, key string) (*model.User, error) {
	if m.findByEmailOrUsernameFn != nil {
		return m.findByEmailOrUsernameFn(ctx, key)
	}
	return nil, nil
}

func newTestService(users repository.UserRepository) *Service {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	issuer := NewTokenIssuer(testSecret, time.Hour)
	return NewService(users, hasher, issuer)
}

// --- Register ---

func TestService_Register_Success_ReturnsVerifiableToken(t *testing.T) {
	var created *model.User
	users := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(users)

	result, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if created == nil {
		t.Fatal("expected user to be persisted")
	}
	if created.ID == "" {
		t.Error("expected generated user ID")
	}
	if created.PasswordHash == "secret1" || created.PasswordHash == "" {
		t.Error("expected password to be stored as hash")
	}

	// 発行されたトークンは登録ユーザーのIDに解決できる
	issuer := NewTokenIssuer(testSecret, time.Hour)
	userID, err := issuer.Verify(result.Token)
	if err != nil {
		t.Fatalf("issued token failed verification: %v", err)
	}
	if userID != created.ID {
		t.Errorf("token subject = %q, want %q", userID, created.ID)
	}
}

func TestService_Register_DuplicateEmail_ReturnsEmailTaken(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateEmail
		},
	}

	svc := newTestService(users)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmailTaken {
		t.Fatalf("expected EMAIL_TAKEN, got %v", err)
	}
	if !strings.Contains(apiErr.Message, "既に登録されています") {
		t.Errorf("message should mention already registered, got %q", apiErr.Message)
	}
}

func TestService_Register_DuplicateUsername_ReturnsUsernameTaken(t *testing.T) {
	users := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateUsername
		},
	}

	svc := newTestService(users)

	_, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUsernameTaken {
		t.Fatalf("expected USERNAME_TAKEN, got %v", err)
	}
}

func TestService_Register_MissingFields_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	tests := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"ユーザー名なし", "", "a@x.com", "secret1"},
		{"メールアドレスなし", "alice", "", "secret1"},
		{"パスワードなし", "alice", "a@x.com", ""},
		{"メールアドレス形式不正", "alice", "not-an-email", "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.email, tt.password)

			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
				t.Errorf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

// --- Login ---

func registeredUser(t *testing.T, password string) *model.User {
	t.Helper()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(password)
	if err != nil {
		t.Fatalf("failed to hash test password: %v", err)
	}
	return &model.User{
		ID:           "user-123",
		Username:     "alice",
		Email:        "a@x.com",
		PasswordHash: hash,
	}
}

func TestService_Login_CorrectCredentials_ReturnsToken(t *testing.T) {
	user := registeredUser(t, "secret1")
	users := &mockUserRepo{
		findByEmailOrUsernameFn: func(ctx context.Context, key string) (*model.User, error) {
			if key == "a@x.com" || key == "alice" {
				return user, nil
			}
			return nil, nil
		},
	}

	svc := newTestService(users)

	result, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token == "" {
		t.Error("expected non-empty token")
	}
	if result.User.ID != "user-123" {
		t.Errorf("user ID = %q, want %q", result.User.ID, "user-123")
	}
}

// ユーザー名でもログインできることを検証
func TestService_Login_ByUsername_Succeeds(t *testing.T) {
	user := registeredUser(t, "secret1")
	users := &mockUserRepo{
		findByEmailOrUsernameFn: func(ctx context.Context, key string) (*model.User, error) {
			if key == "alice" {
				return user, nil
			}
			return nil, nil
		},
	}

	svc := newTestService(users)

	if _, err := svc.Login(context.Background(), "alice", "secret1"); err != nil {
		t.Fatalf("Login by username returned error: %v", err)
	}
}

func TestService_Login_WrongPassword_ReturnsInvalidCredentials(t *testing.T) {
	user := registeredUser(t, "secret1")
	users := &mockUserRepo{
		findByEmailOrUsernameFn: func(ctx context.Context, key string) (*model.User, error) {
			return user, nil
		},
	}

	svc := newTestService(users)

	_, err := svc.Login(context.Background(), "a@x.com", "wrongpassword")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidCredentials {
		t.Fatalf("expected INVALID_CREDENTIALS, got %v", err)
	}
}

func TestService_Login_UnknownUser_ReturnsSameErrorAsWrongPassword(t *testing.T) {
	user := registeredUser(t, "secret1")
	users := &mockUserRepo{
		findByEmailOrUsernameFn: func(ctx context.Context, key string) (*model.User, error) {
			if key == "a@x.com" {
				return user, nil
			}
			return nil, nil
		},
	}

	svc := newTestService(users)

	_, errUnknown := svc.Login(context.Background(), "unknown@x.com", "secret1")
	_, errWrongPw := svc.Login(context.Background(), "a@x.com", "wrongpassword")

	var apiErrUnknown, apiErrWrongPw *model.APIError
	if !errors.As(errUnknown, &apiErrUnknown) || !errors.As(errWrongPw, &apiErrWrongPw) {
		t.Fatalf("expected APIErrors, got %v / %v", errUnknown, errWrongPw)
	}

	// メールアドレスとパスワードのどちらが誤っているかを区別してはならない
	if apiErrUnknown.Code != apiErrWrongPw.Code || apiErrUnknown.Message != apiErrWrongPw.Message {
		t.Errorf("unknown-user and wrong-password must be indistinguishable: %q vs %q",
			apiErrUnknown.Message, apiErrWrongPw.Message)
	}
}

func TestService_Login_EmptyFields_ReturnsValidationError(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), "", "")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeValidation {
		t.Errorf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestService_Login_StoreFailure_ReturnsInternalError(t *testing.T) {
	users := &mockUserRepo{
		findByEmailOrUsernameFn: func(ctx context.Context, key string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}

	svc := newTestService(users)

	_, err := svc.Login(context.Background(), "a@x.com", "secret1")
	if err == nil {
		t.Fatal("expected error")
	}

	// ストア障害はAPIErrorではなく内部エラーとして伝播する
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("store failure must not map to an APIError, got %v", apiErr)
	}
}
