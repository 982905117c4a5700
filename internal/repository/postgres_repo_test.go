package repository

import (
	"testing"
)

// PostgresUserRepoはUserRepositoryインターフェースを満たすことを検証
func TestPostgresUserRepo_ImplementsInterface(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
}

// PostgresProductRepoはProductRepositoryインターフェースを満たすことを検証
func TestPostgresProductRepo_ImplementsInterface(t *testing.T) {
	var _ ProductRepository = (*PostgresProductRepo)(nil)
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// NewPostgresProductRepoが正しく初期化されることを検証
func TestNewPostgresProductRepo_Initializes(t *testing.T) {
	repo := NewPostgresProductRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// 一意制約違反のセンチネルエラーが別物であることを検証
func TestDuplicateSentinelErrors_AreDistinct(t *testing.T) {
	if ErrDuplicateEmail == ErrDuplicateUsername {
		t.Error("ErrDuplicateEmail and ErrDuplicateUsername must be distinct")
	}
	if ErrDuplicateEmail.Error() == "" || ErrDuplicateUsername.Error() == "" {
		t.Error("sentinel errors must have messages")
	}
}
