package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/todoapi/internal/middleware"
	"github.com/hitoshi/todoapi/internal/model"
)

// TodoServiceInterface はTodoハンドラーが必要とするサービスインターフェース。
type TodoServiceInterface interface {
	// Create は認証済みユーザーのTodoを作成し、採番されたIDを含む完全なレコードを返す。
	Create(ctx context.Context, userID, title, description, dueDate string) (*model.Todo, error)
	// List は認証済みユーザーが所有する全Todoを返す。
	List(ctx context.Context, userID string) ([]*model.Todo, error)
	// Delete は所有権を確認したうえで指定IDのTodoを削除する。
	Delete(ctx context.Context, userID, todoID string) error
	// SetCompleted は所有権を確認したうえでcompletedを更新する。
	SetCompleted(ctx context.Context, userID, todoID string, completed bool) error
}

// TodoMetricsRecorder はTodo操作のメトリクスを記録するインターフェース。
type TodoMetricsRecorder interface {
	RecordTodoCreated()
	RecordTodoCompleted()
	RecordTodoDeleted()
}

// noopTodoMetrics はメトリクス未設定時のフォールバック。
type noopTodoMetrics struct{}

func (noopTodoMetrics) RecordTodoCreated()   {}
func (noopTodoMetrics) RecordTodoCompleted() {}
func (noopTodoMetrics) RecordTodoDeleted()   {}

// TodoHandler はTodo管理のHTTPハンドラー。
type TodoHandler struct {
	service TodoServiceInterface
	metrics TodoMetricsRecorder
}

// NewTodoHandler はTodoHandlerを生成する。metricsはnilでもよい。
func NewTodoHandler(service TodoServiceInterface, metrics TodoMetricsRecorder) *TodoHandler {
	if metrics == nil {
		metrics = noopTodoMetrics{}
	}
	return &TodoHandler{
		service: service,
		metrics: metrics,
	}
}

// createTodoRequest はTodo作成リクエストのボディ。
type createTodoRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// updateCompletedRequest は完了状態更新リクエストのボディ。
type updateCompletedRequest struct {
	Completed bool `json:"completed"`
}

// todoResponse はTodoレコードのAPIレスポンス。
type todoResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTodoResponse(t *model.Todo) todoResponse {
	return todoResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDate,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// Create はTodo作成を処理する。
// POST /todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidJSONError())
		return
	}

	if req.Title == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewTitleRequiredError())
		return
	}

	created, err := h.service.Create(r.Context(), userID, req.Title, req.Description, req.DueDate)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodoCreated()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toTodoResponse(created))
}

// List は認証済みユーザーのTodo一覧を返す。
// GET /todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todos, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// 該当なしでも空配列を返す（nullにしない）
	resp := make([]todoResponse, 0, len(todos))
	for _, t := range todos {
		resp = append(resp, toTodoResponse(t))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// Delete はTodo削除を処理する。
// DELETE /todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), userID, todoID); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodoDeleted()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(messageResponse{Message: "Todo deleted successfully"})
}

// UpdateCompleted はTodoの完了状態更新を処理する。
// PATCH /todos/{id}
func (h *TodoHandler) UpdateCompleted(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	todoID := chi.URLParam(r, "id")

	var req updateCompletedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidJSONError())
		return
	}

	if err := h.service.SetCompleted(r.Context(), userID, todoID, req.Completed); err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordTodoCompleted()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(messageResponse{Message: "Todo updated successfully"})
}
