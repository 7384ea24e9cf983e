package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestPasswordClient_SignInWithPassword_Success(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]interface{}

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"localId":      "uid-123",
			"email":        "a@x.com",
			"idToken":      "signed-id-token",
			"refreshToken": "refresh-token",
			"expiresIn":    "3600",
		})
	}))
	defer ts.Close()

	client := NewPasswordClient(PasswordClientConfig{
		APIKey:    "test-api-key",
		SignInURL: ts.URL + "/v1/accounts:signInWithPassword",
	})

	result, err := client.SignInWithPassword(context.Background(), "a@x.com", "p1")
	if err != nil {
		t.Fatalf("SignInWithPassword() error = %v", err)
	}

	if gotPath != "/v1/accounts:signInWithPassword" {
		t.Errorf("path = %q, want %q", gotPath, "/v1/accounts:signInWithPassword")
	}
	if gotKey != "test-api-key" {
		t.Errorf("key = %q, want %q", gotKey, "test-api-key")
	}
	if gotBody["email"] != "a@x.com" {
		t.Errorf("request email = %v, want %q", gotBody["email"], "a@x.com")
	}
	if gotBody["password"] != "p1" {
		t.Errorf("request password = %v, want %q", gotBody["password"], "p1")
	}
	if gotBody["returnSecureToken"] != true {
		t.Errorf("returnSecureToken = %v, want true", gotBody["returnSecureToken"])
	}

	if result.UID != "uid-123" {
		t.Errorf("UID = %q, want %q", result.UID, "uid-123")
	}
	if result.Email != "a@x.com" {
		t.Errorf("Email = %q, want %q", result.Email, "a@x.com")
	}
	if result.IDToken != "signed-id-token" {
		t.Errorf("IDToken = %q, want %q", result.IDToken, "signed-id-token")
	}
}

func TestPasswordClient_SignInWithPassword_UpstreamError_SurfacesMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"code":    400,
				"message": "INVALID_PASSWORD",
			},
		})
	}))
	defer ts.Close()

	client := NewPasswordClient(PasswordClientConfig{
		APIKey:    "test-api-key",
		SignInURL: ts.URL,
	})

	_, err := client.SignInWithPassword(context.Background(), "a@x.com", "wrong")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if err.Error() != "INVALID_PASSWORD" {
		t.Errorf("error = %q, want upstream message %q", err.Error(), "INVALID_PASSWORD")
	}
}

func TestPasswordClient_SignInWithPassword_MalformedErrorBody(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer ts.Close()

	client := NewPasswordClient(PasswordClientConfig{
		APIKey:    "test-api-key",
		SignInURL: ts.URL,
	})

	_, err := client.SignInWithPassword(context.Background(), "a@x.com", "p1")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error %q should contain upstream status code", err.Error())
	}
}

func TestPasswordClient_SignInWithPassword_EmptyIDToken(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"localId": "uid-123",
			"email":   "a@x.com",
		})
	}))
	defer ts.Close()

	client := NewPasswordClient(PasswordClientConfig{
		APIKey:    "test-api-key",
		SignInURL: ts.URL,
	})

	_, err := client.SignInWithPassword(context.Background(), "a@x.com", "p1")
	if err == nil {
		t.Fatal("expected error for empty ID token, got nil")
	}
}

func TestNewPasswordClient_DefaultURL(t *testing.T) {
	client := NewPasswordClient(PasswordClientConfig{APIKey: "k"})
	if client.config.SignInURL != defaultSignInURL {
		t.Errorf("SignInURL = %q, want default %q", client.config.SignInURL, defaultSignInURL)
	}
}
