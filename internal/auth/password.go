// Package auth はパスワード認証とトークン発行・検証を提供する。
package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/productman/internal/model"
)

// maxPasswordBytes はbcryptが処理できる平文パスワードの最大バイト数。
// これを超える入力はbcryptが黙って切り詰めるのではなくエラーにする。
const maxPasswordBytes = 72

// PasswordHasher はbcryptによるパスワードのハッシュ化と検証を提供する。
// 呼び出しごとにソルトが生成されるため、同一平文でもハッシュ値は毎回異なる。
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher はPasswordHasherを生成する。
// costはbcryptのワークファクタ（大きいほど総当たり攻撃のコストが上がる）。
func NewPasswordHasher(cost int) *PasswordHasher {
	return &PasswordHasher{cost: cost}
}

// Hash は平文パスワードをbcryptでハッシュ化する。
// 空文字列および72バイト超の入力は検証エラーを返す。
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	if plaintext == "" {
		return "", model.NewValidationError("パスワードが空です")
	}
	if len(plaintext) > maxPasswordBytes {
		return "", model.NewValidationError(fmt.Sprintf("パスワードが長すぎます（最大%dバイト）", maxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	return string(hashed), nil
}

// Verify は平文パスワードとハッシュ値を比較する。
// 不一致は(false, nil)を返し、エラーはハッシュ値自体が不正な場合のみ返す。
// bcrypt.CompareHashAndPasswordの比較は位置に依存しない時間で行われる。
func (h *PasswordHasher) Verify(plaintext, hashedValue string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedValue), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed password hash: %w", err)
}
