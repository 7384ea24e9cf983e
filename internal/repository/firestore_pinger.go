package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestorePinger はヘルスチェック用にFirestoreへの到達性を確認する。
type FirestorePinger struct {
	client *firestore.Client
}

// NewFirestorePinger はFirestorePingerを生成する。
func NewFirestorePinger(client *firestore.Client) *FirestorePinger {
	return &FirestorePinger{client: client}
}

// Ping は存在しないドキュメントを1件読むことでストアへの到達性を確認する。
// NotFoundはストアに到達できている証拠のため正常とみなす。
func (p *FirestorePinger) Ping(ctx context.Context) error {
	_, err := p.client.Collection("healthz").Doc("ping").Get(ctx)
	if err != nil && status.Code(err) != codes.NotFound {
		return fmt.Errorf("document store unreachable: %w", err)
	}
	return nil
}
