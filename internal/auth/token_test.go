package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-jwt-secret-32bytes-long!!!!"

func TestTokenIssuer_IssueAndVerify_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	userID, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if userID != "user-123" {
		t.Errorf("userID = %q, want %q", userID, "user-123")
	}
}

// 同一の未失効トークンに対する検証が冪等であることを検証
func TestTokenIssuer_Verify_Idempotent(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		userID, err := issuer.Verify(token)
		if err != nil {
			t.Fatalf("Verify #%d returned error: %v", i+1, err)
		}
		if userID != "user-123" {
			t.Errorf("Verify #%d userID = %q, want %q", i+1, userID, "user-123")
		}
	}
}

func TestTokenIssuer_Verify_Expired_ReturnsErrTokenExpired(t *testing.T) {
	// 負のTTLで即座に期限切れのトークンを発行する
	issuer := NewTokenIssuer(testSecret, -time.Minute)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_Verify_WrongSecret_ReturnsErrTokenBadSignature(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)
	other := NewTokenIssuer("another-secret-32bytes-long!!!!!", time.Hour)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	_, err = other.Verify(token)
	if !errors.Is(err, ErrTokenBadSignature) {
		t.Errorf("expected ErrTokenBadSignature, got %v", err)
	}
}

func TestTokenIssuer_Verify_Garbage_ReturnsErrTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	for _, tokenString := range []string{"", "garbage", "a.b", "a.b.c.d"} {
		_, err := issuer.Verify(tokenString)
		if !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): expected ErrTokenMalformed, got %v", tokenString, err)
		}
	}
}

// subクレームを持たないトークンは拒否されることを検証
func TestTokenIssuer_Verify_MissingSubject_ReturnsErrTokenMalformed(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	_, err = issuer.Verify(token)
	if !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed, got %v", err)
	}
}

// HS256以外の署名アルゴリズムは拒否されることを検証
func TestTokenIssuer_Verify_UnexpectedAlgorithm_Rejected(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, time.Hour)

	// alg=noneのトークンを構築する
	claims := jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to sign test token: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification of alg=none token to fail")
	}
}

func TestTokenIssuer_Verify_ValidUntilExpiry(t *testing.T) {
	// 短いTTLで発行直後は有効なことを検証する
	issuer := NewTokenIssuer(testSecret, 2*time.Second)

	token, err := issuer.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := issuer.Verify(token); err != nil {
		t.Errorf("token should be valid before expiry, got %v", err)
	}
}
