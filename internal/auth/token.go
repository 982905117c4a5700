package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗理由を表すエラー。
// 呼び出し側はerrors.Isで区別できる。
var (
	// ErrTokenMalformed はトークンが構造的に解析できない場合のエラー。
	ErrTokenMalformed = errors.New("token is malformed")
	// ErrTokenBadSignature は署名が一致しない場合のエラー。
	ErrTokenBadSignature = errors.New("token signature is invalid")
	// ErrTokenExpired はトークンの有効期限が切れている場合のエラー。
	ErrTokenExpired = errors.New("token is expired")
)

// Claims はJWTのクレームを表す。
// ユーザーIDは標準のsubクレームに格納する。
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer はHS256（対称MAC）で署名された時限トークンの発行と検証を提供する。
// サーバー側に状態を持たないため、同一の秘密鍵を共有するプロセス間で水平にスケールする。
// 失効リストは持たない（有効期限のみでライフタイムを制御する）。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
// secretは署名用の共有秘密鍵、ttlは発行するトークンの有効期間。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// Issue は指定ユーザーIDをsubとするトークンを発行する。
// 有効期限は現在時刻 + TTL。副作用はない。
func (t *TokenIssuer) Issue(userID string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証し、埋め込まれたユーザーIDを返す。
// 同一の未失効トークンに対しては常に同一のユーザーIDを返す（冪等）。
// 失敗時はErrTokenMalformed、ErrTokenBadSignature、ErrTokenExpiredのいずれかを返す。
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(tk *jwt.Token) (any, error) {
		return t.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrTokenBadSignature
		default:
			return "", ErrTokenMalformed
		}
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrTokenMalformed
	}

	return claims.Subject, nil
}
