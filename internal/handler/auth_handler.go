package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/hitoshi/productman/internal/auth"
	"github.com/hitoshi/productman/internal/metrics"
	"github.com/hitoshi/productman/internal/middleware"
	"github.com/hitoshi/productman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録し、トークンを発行する。
	Register(ctx context.Context, username, email, password string) (*auth.Result, error)
	// Login は認証情報を検証し、トークンを発行する。
	Login(ctx context.Context, credential, password string) (*auth.Result, error)
}

// AuthHandler はユーザー登録・ログインのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
// collectorはnil許容（テスト用）。
func NewAuthHandler(service AuthServiceInterface, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service:   service,
		collector: collector,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest はログインリクエストのボディ。
// credentialにはメールアドレスまたはユーザー名を指定する。
type loginRequest struct {
	Credential string `json:"credential"`
	Password   string `json:"password"`
}

// userResponse はユーザー情報のAPIレスポンス。
// パスワードハッシュは決して含めない。
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// authResponse は登録・ログイン成功時のレスポンスデータ。
type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

// Register は新規ユーザー登録を処理する。
// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordRegistration()
	}

	writeSuccessResponse(w, http.StatusCreated, "ユーザー登録が完了しました。", authResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Login はログインを処理する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestBody(w)
		return
	}

	result, err := h.service.Login(r.Context(), req.Credential, req.Password)
	if err != nil {
		if h.collector != nil && isCredentialFailure(err) {
			h.collector.RecordLoginFailure()
		}
		handleServiceError(w, err)
		return
	}

	if h.collector != nil {
		h.collector.RecordLoginSuccess()
	}

	writeSuccessResponse(w, http.StatusOK, "ログインしました。", authResponse{
		Token: result.Token,
		User:  toUserResponse(result.User),
	})
}

// Me は現在の認証済みユーザー情報を返す。
// GET /api/auth/me（認証ミドルウェアの後に配置）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeSuccessResponse(w, http.StatusOK, "", toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(user *model.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}

// isCredentialFailure は認証情報の誤りによる失敗かどうかを判定する。
// システム障害による失敗はログイン失敗カウンタに含めない。
func isCredentialFailure(err error) bool {
	var apiErr *model.APIError
	return errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials
}
