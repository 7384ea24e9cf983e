package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/hitoshi/todoapi/internal/model"
)

const usersCollection = "users"

// FirestoreUserRepo はFirestoreを使用したユーザーミラーリポジトリ。
type FirestoreUserRepo struct {
	client *firestore.Client
}

// NewFirestoreUserRepo はFirestoreUserRepoを生成する。
func NewFirestoreUserRepo(client *firestore.Client) *FirestoreUserRepo {
	return &FirestoreUserRepo{client: client}
}

// Create はuidをドキュメントIDとしてミラーレコードを作成する。
func (r *FirestoreUserRepo) Create(ctx context.Context, mirror *model.UserMirror) error {
	_, err := r.client.Collection(usersCollection).Doc(mirror.UID).Set(ctx, mirror)
	if err != nil {
		return fmt.Errorf("failed to create user mirror: %w", err)
	}
	return nil
}

// compile-time interface check
var _ UserMirrorRepository = (*FirestoreUserRepo)(nil)
