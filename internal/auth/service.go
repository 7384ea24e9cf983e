// Package auth はサインアップとログインのビジネスロジックを提供する。
package auth

import (
	"context"
	"log/slog"

	"github.com/hitoshi/todoapi/internal/identity"
	"github.com/hitoshi/todoapi/internal/model"
	"github.com/hitoshi/todoapi/internal/repository"
)

// AdminIdentity は管理側トラストドメイン（サービスアカウント権限）の操作。
// ユーザーの作成と補償削除に使用する。トークン検証はミドルウェア側で行う。
type AdminIdentity interface {
	CreateUser(ctx context.Context, email, password, displayName string) (*identity.UserRecord, error)
	DeleteUser(ctx context.Context, uid string) error
}

// ClientIdentity はクライアント側トラストドメイン（Web APIキー）の操作。
// 管理側とは権限も認可方式も異なるため、別インターフェースとして保持する。
type ClientIdentity interface {
	SignInWithPassword(ctx context.Context, email, password string) (*identity.SignInResult, error)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	admin   AdminIdentity
	client  ClientIdentity
	mirrors repository.UserMirrorRepository
}

// NewService はServiceを生成する。
func NewService(admin AdminIdentity, client ClientIdentity, mirrors repository.UserMirrorRepository) *Service {
	return &Service{
		admin:   admin,
		client:  client,
		mirrors: mirrors,
	}
}

// Signup はIdPにユーザーを作成し、ドキュメントストアにミラーレコードを書き込む。
// ミラー書き込みに失敗した場合は作成済みのIdPユーザーをベストエフォートで削除し、
// 孤児アカウントを残さないようにする。失敗は上流メッセージをそのまま返す。
func (s *Service) Signup(ctx context.Context, email, password, name string) error {
	rec, err := s.admin.CreateUser(ctx, email, password, name)
	if err != nil {
		return model.NewAuthUpstreamError(err.Error())
	}

	mirror := &model.UserMirror{
		UID:   rec.UID,
		Email: email,
		Name:  name,
	}

	if err := s.mirrors.Create(ctx, mirror); err != nil {
		// 補償処理: ミラーのないIdPユーザーを残さない
		if delErr := s.admin.DeleteUser(ctx, rec.UID); delErr != nil {
			slog.Error("failed to delete orphaned user after mirror write failure",
				slog.String("uid", rec.UID),
				slog.String("error", delErr.Error()),
			)
		}
		return model.NewAuthUpstreamError(err.Error())
	}

	slog.Info("user signed up", slog.String("uid", rec.UID))
	return nil
}

// Login はemail/passwordでサインインし、署名済みIDトークンを返す。
// 失敗（不正なパスワード、未知のメール、無効化済みアカウント）は
// 上流メッセージをそのまま返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	result, err := s.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		return "", model.NewAuthUpstreamError(err.Error())
	}

	slog.Info("user logged in", slog.String("uid", result.UID))
	return result.IDToken, nil
}
