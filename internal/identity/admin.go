package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// UserRecord はIdPが管理するユーザーの基本属性。
type UserRecord struct {
	UID         string
	Email       string
	DisplayName string
}

// AdminClient はサービスアカウント権限でIdPの管理操作を行うクライアント。
// ユーザーの作成・削除とIDトークンの検証を提供する。
type AdminClient struct {
	auth *auth.Client
}

// NewAdminClient はFirebase AppからAdminClientを生成する。
func NewAdminClient(ctx context.Context, app *firebase.App) (*AdminClient, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth client: %w", err)
	}
	return &AdminClient{auth: client}, nil
}

// CreateUser はIdPに新しいユーザーを作成する。
// displayNameが空の場合は表示名なしで作成する。uidはIdPが採番する。
func (c *AdminClient) CreateUser(ctx context.Context, email, password, displayName string) (*UserRecord, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}

	u, err := c.auth.CreateUser(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &UserRecord{
		UID:         u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}, nil
}

// VerifyIDToken はIDトークンを検証し、トークンが指すユーザーのuidを返す。
// 検証結果はキャッシュしない。保護されたリクエストごとに再検証される。
func (c *AdminClient) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := c.auth.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", fmt.Errorf("failed to verify ID token: %w", err)
	}
	return token.UID, nil
}

// DeleteUser は指定uidのユーザーをIdPから削除する。
// サインアップのミラー書き込み失敗時の補償処理で使用する。
func (c *AdminClient) DeleteUser(ctx context.Context, uid string) error {
	if err := c.auth.DeleteUser(ctx, uid); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
