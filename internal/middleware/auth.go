// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hitoshi/productman/internal/auth"
	"github.com/hitoshi/productman/internal/model"
)

// bearerPrefix はAuthorizationヘッダーのスキーム部分。
const bearerPrefix = "Bearer "

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// TokenVerifier はトークンの検証に必要なインターフェース。
// auth.TokenIssuerの部分集合として定義する。
type TokenVerifier interface {
	Verify(tokenString string) (string, error)
}

// UserFinder はユーザーの検索に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NewAuthMiddleware はAuthorizationヘッダーからBearerトークンを読み取り、
// 検証してユーザーを解決するミドルウェアを返す。
// 認証済みユーザーをリクエストコンテキストに注入する。
// トークンがない・無効・期限切れ、またはユーザーが既に存在しない場合は401を返す。
func NewAuthMiddleware(verifier TokenVerifier, users UserFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. AuthorizationヘッダーからBearerトークンを取り出す
			header := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(header, bearerPrefix)
			if !found || tokenString == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 2. トークンを検証する
			userID, err := verifier.Verify(tokenString)
			if err != nil {
				// 期限切れのみユーザー向けメッセージを区別する
				if errors.Is(err, auth.ErrTokenExpired) {
					WriteErrorResponse(w, http.StatusUnauthorized, model.NewTokenExpiredError())
					return
				}
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 3. トークンのsubをユーザーに解決する
			// トークン発行後にユーザーが削除されている場合も未認証として扱う
			user, err := users.FindByID(r.Context(), userID)
			if err != nil {
				slog.Error("failed to find user for token",
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}
			if user == nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			// 4. 認証済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
