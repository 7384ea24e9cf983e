package repository

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hitoshi/todoapi/internal/model"
)

const todosCollection = "todos"

// FirestoreTodoRepo はFirestoreを使用したTodoリポジトリ。
type FirestoreTodoRepo struct {
	client *firestore.Client
}

// NewFirestoreTodoRepo はFirestoreTodoRepoを生成する。
func NewFirestoreTodoRepo(client *firestore.Client) *FirestoreTodoRepo {
	return &FirestoreTodoRepo{client: client}
}

// Insert はTodoを保存し、Firestoreが採番したドキュメントIDを返す。
func (r *FirestoreTodoRepo) Insert(ctx context.Context, todo *model.Todo) (string, error) {
	ref, _, err := r.client.Collection(todosCollection).Add(ctx, todo)
	if err != nil {
		return "", fmt.Errorf("failed to insert todo: %w", err)
	}
	return ref.ID, nil
}

// FindByID は指定IDのTodoを取得する。見つからない場合はnilを返す。
func (r *FirestoreTodoRepo) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	doc, err := r.client.Collection(todosCollection).Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find todo by ID: %w", err)
	}

	todo := &model.Todo{}
	if err := doc.DataTo(todo); err != nil {
		return nil, fmt.Errorf("failed to decode todo document: %w", err)
	}
	todo.ID = doc.Ref.ID

	return todo, nil
}

// ListByUserID は指定ユーザーが所有する全Todoを返す。
func (r *FirestoreTodoRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Todo, error) {
	iter := r.client.Collection(todosCollection).
		Where("userId", "==", userID).
		Documents(ctx)
	defer iter.Stop()

	todos := []*model.Todo{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list todos: %w", err)
		}

		todo := &model.Todo{}
		if err := doc.DataTo(todo); err != nil {
			return nil, fmt.Errorf("failed to decode todo document: %w", err)
		}
		todo.ID = doc.Ref.ID
		todos = append(todos, todo)
	}

	return todos, nil
}

// UpdateCompleted は指定IDのTodoのcompletedとupdatedAtを更新する。
func (r *FirestoreTodoRepo) UpdateCompleted(ctx context.Context, id string, completed bool, updatedAt time.Time) error {
	_, err := r.client.Collection(todosCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "completed", Value: completed},
		{Path: "updatedAt", Value: updatedAt},
	})
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}
	return nil
}

// Delete は指定IDのTodoを削除する。
func (r *FirestoreTodoRepo) Delete(ctx context.Context, id string) error {
	_, err := r.client.Collection(todosCollection).Doc(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return nil
}

// compile-time interface check
var _ TodoRepository = (*FirestoreTodoRepo)(nil)
