package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/productman/internal/model"
	"github.com/hitoshi/productman/internal/repository"
)

// emailPattern はメールアドレス形式の簡易チェック用。
var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Result は登録・ログイン成功時の結果を表す。
type Result struct {
	User  *model.User
	Token string
}

// Service はユーザー登録とログインのビジネスロジックを提供する。
// パスワードのハッシュ化とトークン発行を組み合わせ、
// ストア操作の失敗をAPIErrorに変換して返す。
type Service struct {
	users  repository.UserRepository
	hasher *PasswordHasher
	issuer *TokenIssuer
}

// NewService はServiceを生成する。
func NewService(users repository.UserRepository, hasher *PasswordHasher, issuer *TokenIssuer) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		issuer: issuer,
	}
}

// Register は新規ユーザーを登録し、トークンを発行する。
// username/emailが既に使用されている場合は重複エラーを返す。
// 平文パスワードは永続化せず、ログにも出力しない。
func (s *Service) Register(ctx context.Context, username, email, password string) (*Result, error) {
	if username == "" {
		return nil, model.NewValidationError("ユーザー名が空です")
	}
	if email == "" {
		return nil, model.NewValidationError("メールアドレスが空です")
	}
	if !emailPattern.MatchString(email) {
		return nil, model.NewValidationError("メールアドレスの形式が正しくありません")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.Create(ctx, user); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return nil, model.NewEmailTakenError()
		case errors.Is(err, repository.ErrDuplicateUsername):
			return nil, model.NewUsernameTakenError()
		default:
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Result{User: user, Token: token}, nil
}

// Login は認証情報を検証し、トークンを発行する。
// credentialはメールアドレスまたはユーザー名のどちらでもよい。
// ユーザー不在とパスワード不一致は同一のエラーを返す
// （どちらが誤っているかを外部に漏らさない）。
func (s *Service) Login(ctx context.Context, credential, password string) (*Result, error) {
	if credential == "" || password == "" {
		return nil, model.NewValidationError("メールアドレスとパスワードは必須です")
	}

	user, err := s.users.FindByEmailOrUsername(ctx, credential)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	ok, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return nil, model.NewInvalidCredentialsError()
	}

	token, err := s.issuer.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &Result{User: user, Token: token}, nil
}
