package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultSignInURL = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// PasswordClientConfig はパスワードサインインクライアントの設定。
type PasswordClientConfig struct {
	// APIKey はクライアント側トラストドメインのWeb APIキー。
	APIKey string

	// テスト用にオーバーライド可能なURL
	SignInURL string
}

// PasswordClient はIdentity ToolkitのREST APIでパスワードサインインを行う
// クライアント。管理側のサービスアカウントではなくWeb APIキーで認可される。
type PasswordClient struct {
	config PasswordClientConfig
}

// NewPasswordClient はPasswordClientを生成する。
func NewPasswordClient(config PasswordClientConfig) *PasswordClient {
	if config.SignInURL == "" {
		config.SignInURL = defaultSignInURL
	}
	return &PasswordClient{config: config}
}

// SignInResult はパスワードサインイン成功時の結果。
type SignInResult struct {
	UID     string
	Email   string
	IDToken string
}

// signInRequest はIdentity Toolkitのサインインエンドポイントへのリクエストボディ。
type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// signInResponse はIdentity Toolkitのサインインエンドポイントのレスポンス。
type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

// signInErrorResponse はIdentity Toolkitのエラーレスポンス。
type signInErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignInWithPassword はemail/passwordでサインインし、署名済みIDトークンを取得する。
// 失敗時は上流のエラーメッセージ（EMAIL_NOT_FOUND等）をそのままエラーに含める。
func (c *PasswordClient) SignInWithPassword(ctx context.Context, email, password string) (*SignInResult, error) {
	reqBody, err := json.Marshal(signInRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal sign-in request: %w", err)
	}

	url := c.config.SignInURL + "?key=" + c.config.APIKey
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read sign-in response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp signInErrorResponse
		if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
			return nil, fmt.Errorf("%s", errResp.Error.Message)
		}
		return nil, fmt.Errorf("sign-in failed with status %d: %s", resp.StatusCode, string(body))
	}

	var signInResp signInResponse
	if err := json.Unmarshal(body, &signInResp); err != nil {
		return nil, fmt.Errorf("failed to parse sign-in response: %w", err)
	}

	if signInResp.IDToken == "" {
		return nil, fmt.Errorf("empty ID token in sign-in response")
	}

	return &SignInResult{
		UID:     signInResp.LocalID,
		Email:   signInResp.Email,
		IDToken: signInResp.IDToken,
	}, nil
}
