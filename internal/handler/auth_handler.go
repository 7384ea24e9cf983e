package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/todoapi/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Signup はIdPにユーザーを作成し、ミラーレコードを書き込む。
	Signup(ctx context.Context, email, password, name string) error
	// Login はemail/passwordでサインインし、署名済みIDトークンを返す。
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthMetricsRecorder は認証操作のメトリクスを記録するインターフェース。
type AuthMetricsRecorder interface {
	RecordSignupSuccess()
	RecordSignupFailure()
	RecordLoginSuccess()
	RecordLoginFailure()
}

// noopAuthMetrics はメトリクス未設定時のフォールバック。
type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordSignupSuccess() {}
func (noopAuthMetrics) RecordSignupFailure() {}
func (noopAuthMetrics) RecordLoginSuccess()  {}
func (noopAuthMetrics) RecordLoginFailure()  {}

// AuthHandler はサインアップとログインのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	metrics AuthMetricsRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(service AuthServiceInterface, metrics AuthMetricsRecorder) *AuthHandler {
	if metrics == nil {
		metrics = noopAuthMetrics{}
	}
	return &AuthHandler{
		service: service,
		metrics: metrics,
	}
}

// signupRequest はサインアップリクエストのボディ。
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// loginRequest はログインリクエストのボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// messageResponse は確認メッセージのみのレスポンス。
type messageResponse struct {
	Message string `json:"message"`
}

// tokenResponse はログイン成功時のレスポンス。
type tokenResponse struct {
	Token string `json:"token"`
}

// Signup はユーザー登録を処理する。
// POST /signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordSignupFailure()
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidJSONError())
		return
	}

	if req.Email == "" || req.Password == "" {
		h.metrics.RecordSignupFailure()
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewEmailPasswordRequiredError())
		return
	}

	if err := h.service.Signup(r.Context(), req.Email, req.Password, req.Name); err != nil {
		h.metrics.RecordSignupFailure()
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordSignupSuccess()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(messageResponse{Message: "User created successfully"})
}

// Login はログインを処理し、署名済みIDトークンを返す。
// POST /login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.RecordLoginFailure()
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidJSONError())
		return
	}

	if req.Email == "" || req.Password == "" {
		h.metrics.RecordLoginFailure()
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewEmailPasswordRequiredError())
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.metrics.RecordLoginFailure()
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordLoginSuccess()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(tokenResponse{Token: token})
}
