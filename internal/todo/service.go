// Package todo はTodoレコードのビジネスロジックを提供する。
package todo

import (
	"context"
	"time"

	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/repository"
)

// Service はTodoに関するビジネスロジックを提供する。
type Service struct {
	repo repository.TodoRepository

	// now はテストで時刻を固定するための関数。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(repo repository.TodoRepository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

// Create は認証済みユーザーのTodoを作成し、採番されたIDを含む完全なレコードを返す。
// completedはfalse、createdAt/updatedAtはサーバー時刻で初期化する。
func (s *Service) Create(ctx context.Context, userID, title, description, dueDate string) (*model.Todo, error) {
	now := s.now()

	t := &model.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Completed:   false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	id, err := s.repo.Insert(ctx, t)
	if err != nil {
		return nil, model.NewStoreFailureError(err.Error())
	}
	t.ID = id

	return t, nil
}

// List は認証済みユーザーが所有する全Todoを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Todo, error) {
	todos, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, model.NewStoreFailureError(err.Error())
	}
	return todos, nil
}

// Delete は所有権を確認したうえで指定IDのTodoを削除する。
func (s *Service) Delete(ctx context.Context, userID, todoID string) error {
	if _, err := s.findOwned(ctx, userID, todoID); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, todoID); err != nil {
		return model.NewStoreFailureError(err.Error())
	}
	return nil
}

// SetCompleted は所有権を確認したうえでcompletedを更新し、updatedAtを
// サーバー時刻に更新する。同じ値の再設定も書き込みとしてカウントされる。
func (s *Service) SetCompleted(ctx context.Context, userID, todoID string, completed bool) error {
	if _, err := s.findOwned(ctx, userID, todoID); err != nil {
		return err
	}

	if err := s.repo.UpdateCompleted(ctx, todoID, completed, s.now()); err != nil {
		return model.NewStoreFailureError(err.Error())
	}
	return nil
}

// findOwned は指定IDのTodoを取得し、所有者が一致するか確認する。
// 存在しない場合と他ユーザー所有の場合はどちらもTodoNotFoundを返し、
// 非所有者にレコードの存在を漏らさない。
func (s *Service) findOwned(ctx context.Context, userID, todoID string) (*model.Todo, error) {
	t, err := s.repo.FindByID(ctx, todoID)
	if err != nil {
		return nil, model.NewStoreFailureError(err.Error())
	}
	if t == nil || t.UserID != userID {
		return nil, model.NewTodoNotFoundError()
	}
	return t, nil
}
