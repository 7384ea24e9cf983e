package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, todo, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInvalidToken = "INVALID_TOKEN"
	ErrCodeTodoNotFound = "TODO_NOT_FOUND"
	ErrCodeAuthUpstream = "AUTH_UPSTREAM"
	ErrCodeStoreFailure = "STORE_FAILURE"
)

// NewEmailPasswordRequiredError はemail/password未指定エラーを生成する。
func NewEmailPasswordRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Email and password required",
		Category: "validation",
		Action:   "Provide both email and password in the request body.",
	}
}

// NewTitleRequiredError はtitle未指定エラーを生成する。
func NewTitleRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Title is required",
		Category: "validation",
		Action:   "Provide a non-empty title in the request body.",
	}
}

// NewInvalidJSONError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidJSONError() *APIError {
	return &APIError{
		Code:     ErrCodeBadRequest,
		Message:  "Invalid request body",
		Category: "validation",
		Action:   "Send a valid JSON request body.",
	}
}

// NewUnauthorizedError は認証情報が提示されていない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authorization required",
		Category: "auth",
		Action:   "Send a bearer token in the Authorization header.",
	}
}

// NewInvalidTokenError はトークン検証に失敗した場合のエラーを生成する。
func NewInvalidTokenError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidToken,
		Message:  fmt.Sprintf("Invalid token: %s", reason),
		Category: "auth",
		Action:   "Log in again to obtain a fresh token.",
	}
}

// NewTodoNotFoundError はTodo未検出エラーを生成する。
// 存在しない場合と他ユーザー所有の場合を意図的に区別しない。
func NewTodoNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeTodoNotFound,
		Message:  "Todo not found",
		Category: "todo",
		Action:   "Check the todo id.",
	}
}

// NewAuthUpstreamError はIdP呼び出し失敗エラーを生成する。
// 上流のエラーメッセージをそのまま保持する。
func NewAuthUpstreamError(upstream string) *APIError {
	return &APIError{
		Code:     ErrCodeAuthUpstream,
		Message:  upstream,
		Category: "auth",
		Action:   "Check the request values and try again.",
	}
}

// NewStoreFailureError はドキュメントストア呼び出し失敗エラーを生成する。
// 上流のエラーメッセージをそのまま保持する。
func NewStoreFailureError(upstream string) *APIError {
	return &APIError{
		Code:     ErrCodeStoreFailure,
		Message:  upstream,
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}
