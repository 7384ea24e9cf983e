package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// デフォルトのGoogle OAuthエンドポイント。サービスアカウントごとに変わらないため
// 環境変数で未指定の場合はこの値を使用する。
const (
	defaultAuthURI             = "https://accounts.google.com/o/oauth2/auth"
	defaultTokenURI            = "https://oauth2.googleapis.com/token"
	defaultAuthProviderCertURL = "https://www.googleapis.com/oauth2/v1/certs"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Admin credential（サービスアカウント、管理側トラストドメイン）
	CredentialType      string
	ProjectID           string
	PrivateKeyID        string
	PrivateKey          string
	ClientEmail         string
	ClientID            string
	AuthURI             string
	TokenURI            string
	AuthProviderCertURL string
	ClientCertURL       string
	StorageBucket       string

	// Client credential（クライアント側トラストドメイン）
	WebAPIKey         string
	AppID             string
	MessagingSenderID string

	// Rate Limit
	RateLimitGeneral int
	RateLimitSignup  int

	// Server
	ServerPort      string
	ShutdownTimeout time.Duration

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.ProjectID = os.Getenv("FIREBASE_PROJECT_ID")
	if cfg.ProjectID == "" {
		missing = append(missing, "FIREBASE_PROJECT_ID")
	}

	cfg.PrivateKey = os.Getenv("FIREBASE_PRIVATE_KEY")
	if cfg.PrivateKey == "" {
		missing = append(missing, "FIREBASE_PRIVATE_KEY")
	}

	cfg.ClientEmail = os.Getenv("FIREBASE_CLIENT_EMAIL")
	if cfg.ClientEmail == "" {
		missing = append(missing, "FIREBASE_CLIENT_EMAIL")
	}

	cfg.WebAPIKey = os.Getenv("FIREBASE_WEB_API_KEY")
	if cfg.WebAPIKey == "" {
		missing = append(missing, "FIREBASE_WEB_API_KEY")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.CredentialType = getEnvString("FIREBASE_CREDENTIAL_TYPE", "service_account")
	cfg.PrivateKeyID = os.Getenv("FIREBASE_PRIVATE_KEY_ID")
	cfg.ClientID = os.Getenv("FIREBASE_CLIENT_ID")
	cfg.AuthURI = getEnvString("FIREBASE_AUTH_URI", defaultAuthURI)
	cfg.TokenURI = getEnvString("FIREBASE_TOKEN_URI", defaultTokenURI)
	cfg.AuthProviderCertURL = getEnvString("FIREBASE_AUTH_PROVIDER_CERT_URL", defaultAuthProviderCertURL)
	cfg.ClientCertURL = os.Getenv("FIREBASE_CLIENT_CERT_URL")
	cfg.StorageBucket = os.Getenv("FIREBASE_STORAGE_BUCKET")
	cfg.AppID = os.Getenv("FIREBASE_APP_ID")
	cfg.MessagingSenderID = os.Getenv("FIREBASE_MESSAGING_SENDER_ID")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitSignup = getEnvInt("RATE_LIMIT_SIGNUP", 10)
	cfg.ServerPort = getEnvString("SERVER_PORT", "5000")
	cfg.ShutdownTimeout = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

// serviceAccount はGoogleサービスアカウントのJSONキーフォーマット。
type serviceAccount struct {
	Type                string `json:"type"`
	ProjectID           string `json:"project_id"`
	PrivateKeyID        string `json:"private_key_id,omitempty"`
	PrivateKey          string `json:"private_key"`
	ClientEmail         string `json:"client_email"`
	ClientID            string `json:"client_id,omitempty"`
	AuthURI             string `json:"auth_uri"`
	TokenURI            string `json:"token_uri"`
	AuthProviderCertURL string `json:"auth_provider_x509_cert_url"`
	ClientCertURL       string `json:"client_x509_cert_url,omitempty"`
}

// ServiceAccountJSON は環境変数から組み立てたサービスアカウント認証情報を
// JSONキーフォーマットで返す。環境変数では秘密鍵の改行が \n にエスケープ
// されていることが多いため、実際の改行に復元する。
func (c *Config) ServiceAccountJSON() ([]byte, error) {
	sa := serviceAccount{
		Type:                c.CredentialType,
		ProjectID:           c.ProjectID,
		PrivateKeyID:        c.PrivateKeyID,
		PrivateKey:          strings.ReplaceAll(c.PrivateKey, `\n`, "\n"),
		ClientEmail:         c.ClientEmail,
		ClientID:            c.ClientID,
		AuthURI:             c.AuthURI,
		TokenURI:            c.TokenURI,
		AuthProviderCertURL: c.AuthProviderCertURL,
		ClientCertURL:       c.ClientCertURL,
	}

	data, err := json.Marshal(sa)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal service account credential: %w", err)
	}
	return data, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
