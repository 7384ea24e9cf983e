// Package identity は外部IdP（Firebase）とのクライアントを提供する。
// 管理側トラストドメイン（サービスアカウント）とクライアント側トラストドメイン
// （Web APIキー）は意図的に別のクライアントとして分離している。
package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// NewFirebaseApp はサービスアカウント認証情報からFirebase Appを初期化する。
// credJSONにはサービスアカウントのJSONキーを渡す。
func NewFirebaseApp(ctx context.Context, projectID string, credJSON []byte) (*firebase.App, error) {
	app, err := firebase.NewApp(ctx,
		&firebase.Config{ProjectID: projectID},
		option.WithCredentialsJSON(credJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	return app, nil
}
