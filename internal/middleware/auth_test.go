package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockTokenVerifier はTokenVerifierのモック実装。
type mockTokenVerifier struct {
	verifyFn func(ctx context.Context, idToken string) (string, error)

	calls int
}

func (m *mockTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	m.calls++
	if m.verifyFn != nil {
		return m.verifyFn(ctx, idToken)
	}
	return "user-123", nil
}

func TestBearerAuthMiddleware_MissingHeader_Returns401WithoutVerifying(t *testing.T) {
	verifier := &mockTokenVerifier{}
	mw := NewBearerAuthMiddleware(verifier)

	handlerCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if handlerCalled {
		t.Error("next handler should not be called")
	}
	if verifier.calls != 0 {
		t.Errorf("verifier calls = %d, want 0 (must not touch IdP without credential)", verifier.calls)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["code"] != "UNAUTHORIZED" {
		t.Errorf("code = %v, want %q", body["code"], "UNAUTHORIZED")
	}
}

func TestBearerAuthMiddleware_InvalidToken_Returns401(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(ctx context.Context, idToken string) (string, error) {
			return "", errors.New("token expired")
		},
	}
	mw := NewBearerAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer bad-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["code"] != "INVALID_TOKEN" {
		t.Errorf("code = %v, want %q", body["code"], "INVALID_TOKEN")
	}
}

func TestBearerAuthMiddleware_ValidToken_InjectsUserID(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(ctx context.Context, idToken string) (string, error) {
			if idToken != "good-token" {
				t.Errorf("idToken = %q, want %q", idToken, "good-token")
			}
			return "user-42", nil
		},
	}
	mw := NewBearerAuthMiddleware(verifier)

	var gotUserID string
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := UserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("UserIDFromContext() error = %v", err)
		}
		gotUserID = userID
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "Bearer good-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotUserID != "user-42" {
		t.Errorf("userID = %q, want %q", gotUserID, "user-42")
	}
}

func TestBearerAuthMiddleware_RawTokenWithoutScheme_Accepted(t *testing.T) {
	verifier := &mockTokenVerifier{
		verifyFn: func(ctx context.Context, idToken string) (string, error) {
			if idToken != "raw-token" {
				t.Errorf("idToken = %q, want %q", idToken, "raw-token")
			}
			return "user-42", nil
		},
	}
	mw := NewBearerAuthMiddleware(verifier)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", "raw-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
		{"bearer scheme", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"raw token", "abc123", "abc123"},
		{"other scheme passed through as raw", "Basic abc123", "Basic abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractToken(tt.header); got != tt.want {
				t.Errorf("extractToken(%q) = %q, want %q", tt.header, got, tt.want)
			}
		})
	}
}

func TestUserIDFromContext_NotSet_ReturnsError(t *testing.T) {
	_, err := UserIDFromContext(context.Background())
	if err == nil {
		t.Error("expected error for context without user ID")
	}
}

func TestContextWithUserID_RoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), "user-99")

	userID, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("UserIDFromContext() error = %v", err)
	}
	if userID != "user-99" {
		t.Errorf("userID = %q, want %q", userID, "user-99")
	}
}
