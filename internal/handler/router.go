package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/todoapi/internal/metrics"
	"github.com/hitoshi/todoapi/internal/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// サービス
	AuthService AuthServiceInterface
	TodoService TodoServiceInterface

	// ヘルスチェック
	Pinger Pinger

	// メトリクス（nilの場合は記録もエンドポイントも無効化される）
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware → MetricsMiddleware
//
// 保護ルート（/todos配下）ではさらに:
//
//	BearerAuthMiddleware → RateLimitMiddleware(GeneralMiddleware)
//
// サインアップは未認証のためIP単位のレート制限（SignupMiddleware）を個別に適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Metrics)
	todoHandler := NewTodoHandler(deps.TodoService, deps.Metrics)
	healthHandler := NewHealthHandler(deps.Pinger)

	// --- 認証不要のルート ---

	if deps.RateLimiter != nil {
		r.With(deps.RateLimiter.SignupMiddleware()).Post("/signup", authHandler.Signup)
	} else {
		r.Post("/signup", authHandler.Signup)
	}
	r.Post("/login", authHandler.Login)
	r.Get("/health", healthHandler.Check)

	if deps.MetricsGatherer != nil {
		r.Get("/metrics", metrics.Handler(deps.MetricsGatherer).ServeHTTP)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: BearerAuth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewBearerAuthMiddleware(deps.TokenVerifier))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Route("/todos", func(r chi.Router) {
			r.Post("/", todoHandler.Create)
			r.Get("/", todoHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Delete("/", todoHandler.Delete)
				r.Patch("/", todoHandler.UpdateCompleted)
			})
		})
	})

	return r
}
