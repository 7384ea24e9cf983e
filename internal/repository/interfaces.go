// Package repository はドキュメントストアへの永続化インターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/todoapi/internal/model"
)

// TodoRepository はTodoレコードの永続化インターフェース。
type TodoRepository interface {
	// Insert はTodoを保存し、ストアが採番したドキュメントIDを返す。
	Insert(ctx context.Context, todo *model.Todo) (string, error)

	// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Todo, error)

	// ListByUserID は指定ユーザーが所有する全Todoを返す。
	// 等値フィルタのみで、ページネーションやソートは行わない。
	ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error)

	// UpdateCompleted は指定IDのTodoのcompletedとupdatedAtを更新する。
	UpdateCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error

	// Delete は指定IDのTodoを削除する。
	Delete(ctx context.Context, id string) error
}

// UserMirrorRepository はユーザーミラーレコードの永続化インターフェース。
type UserMirrorRepository interface {
	// Create はuidをドキュメントIDとしてミラーレコードを作成する。
	Create(ctx context.Context, mirror *model.UserMirror) error
}
