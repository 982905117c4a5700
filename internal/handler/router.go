package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/productman/internal/database"
	"github.com/hitoshi/productman/internal/metrics"
	"github.com/hitoshi/productman/internal/middleware"
)

// healthCheckTimeout はヘルスチェック時のDB疎通確認タイムアウト。
const healthCheckTimeout = 2 * time.Second

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	UserFinder        middleware.UserFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// ログ（nilの場合はslog.Defaultを使用）
	Logger *slog.Logger

	// サービス
	AuthService    AuthServiceInterface
	ProductService ProductServiceInterface

	// メトリクス
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// ヘルスチェック
	DB *sql.DB
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → Metrics
//
// 認証ルート（/api/auth/register, /api/auth/login）には接続元IPごとの
// レート制限を適用し、商品ルートにはAuth → ユーザーごとのレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.Collector != nil {
		r.Use(metrics.Middleware(deps.Collector))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Collector)
	productHandler := NewProductHandler(deps.ProductService)
	authMiddleware := middleware.NewAuthMiddleware(deps.TokenVerifier, deps.UserFinder)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler(deps.DB))

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// 登録・ログイン（接続元IPごとのレート制限）
	r.Route("/api/auth", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.CredentialMiddleware()).Post("/register", authHandler.Register)
			r.With(deps.RateLimiter.CredentialMiddleware()).Post("/login", authHandler.Login)
		} else {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		}

		// GET /api/auth/me - 現在のユーザー情報（要認証）
		r.With(authMiddleware).Get("/me", authHandler.Me)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// 商品管理
		r.Route("/api/products", func(r chi.Router) {
			r.Post("/", productHandler.Create)
			r.Get("/", productHandler.List)

			// GET /api/products/category/{category} - カテゴリ別一覧
			// {id}ルートより先に登録する
			r.Get("/category/{category}", productHandler.ListByCategory)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", productHandler.Get)
				r.Put("/", productHandler.Update)
				r.Delete("/", productHandler.Delete)
			})
		})
	})

	return r
}

// healthHandler はDB疎通を確認するヘルスチェックハンドラーを返す。
// GET /health
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
			defer cancel()

			if err := database.Ping(ctx, db); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
