// Package session はログイン中のユーザー情報とベアラートークンを保持し、
// durable storage へ永続化するセッションストアを提供する。
//
// Storeはプロセス起動時に1回だけ生成し、必要なハンドラーへ明示的に渡す。
// 状態の変更は Set と Clear のみで行う。
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hitoshi/manabi/internal/model"
	"github.com/hitoshi/manabi/internal/storage"
)

// ErrEmptyToken は空のトークンでSetを呼んだ場合のエラー。
var ErrEmptyToken = errors.New("session: bearer token must not be empty")

// Snapshot はある時点のセッション状態のコピー。
// 読み取り専用の値として扱い、Store内部の状態とは共有しない。
type Snapshot struct {
	Identity *model.Identity
	Token    string
}

// IsAuthenticated はトークンが存在する場合にのみtrueを返す。
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != ""
}

// Role はログインユーザーのRoleを返す。ユーザー情報がない場合は空文字列。
func (s Snapshot) Role() model.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

// UserID はログインユーザーのIDを返す。ユーザー情報がない場合は空文字列。
func (s Snapshot) UserID() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.ID
}

// Store はセッションの保持と永続化を行う。
// HTTPサーバーのハンドラーから並行に呼ばれるため、状態はmutexで保護する。
type Store struct {
	mu      sync.RWMutex
	storage storage.Storage
	logger  *slog.Logger
	current Snapshot
}

// New はstorageから前回のセッションを同期的に復元してStoreを生成する。
// 保存値が存在しない場合は未認証状態で開始する。
// "user" キーの値が壊れている場合は警告を出し、保存値を削除して未認証状態で開始する。
func New(ctx context.Context, st storage.Storage, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{storage: st, logger: logger}

	token, _, err := st.Get(ctx, storage.KeyToken)
	if err != nil {
		return nil, fmt.Errorf("failed to restore token: %w", err)
	}
	rawUser, hasUser, err := st.Get(ctx, storage.KeyUser)
	if err != nil {
		return nil, fmt.Errorf("failed to restore user: %w", err)
	}

	var identity *model.Identity
	if hasUser && rawUser != "" {
		var u model.Identity
		if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
			logger.Warn("stored user is corrupt, discarding session",
				slog.String("error", err.Error()),
			)
			if clearErr := s.deleteKeys(ctx); clearErr != nil {
				return nil, clearErr
			}
			return s, nil
		}
		identity = &u
	}

	if token == "" {
		// トークンのないユーザー情報は未認証として扱う
		identity = nil
	}

	s.current = Snapshot{Identity: identity, Token: token}

	logger.Info("session restored",
		slog.Bool("authenticated", s.current.IsAuthenticated()),
		slog.String("user_id", s.current.UserID()),
	)
	return s, nil
}

// Set はユーザー情報とトークンを無条件に上書きし、永続化する。
// トークンの形式は検証しない。メモリ上の状態は永続化の成否に関わらず更新する。
func (s *Store) Set(ctx context.Context, identity model.Identity, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	rawUser, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := identity
	s.current = Snapshot{Identity: &id, Token: token}

	// userを先に書き、tokenの書き込みに失敗した場合は両方を削除する。
	// 永続化されたtokenが別ユーザーの情報と組になることはない。
	if err := s.storage.Set(ctx, storage.KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("failed to persist user: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyToken, token); err != nil {
		return errors.Join(fmt.Errorf("failed to persist token: %w", err), s.deleteKeys(ctx))
	}

	s.logger.Info("session set",
		slog.String("user_id", identity.ID),
		slog.String("role", string(identity.Role)),
	)
	return nil
}

// Clear はメモリと永続ストレージからセッションを削除する。
// 旧トークンを使った実行中のリクエストは取り消さない。
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := s.current.UserID()
	s.current = Snapshot{}

	if err := s.deleteKeys(ctx); err != nil {
		return err
	}

	s.logger.Info("session cleared", slog.String("user_id", userID))
	return nil
}

// Snapshot は現在のセッション状態のコピーを返す。副作用はない。
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{Token: s.current.Token}
	if s.current.Identity != nil {
		id := *s.current.Identity
		snap.Identity = &id
	}
	return snap
}

// Token は現在のベアラートークンを返す。api.TokenSourceを満たす。
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Token
}

func (s *Store) deleteKeys(ctx context.Context) error {
	var errs []error
	if err := s.storage.Delete(ctx, storage.KeyToken); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete token: %w", err))
	}
	if err := s.storage.Delete(ctx, storage.KeyUser); err != nil {
		errs = append(errs, fmt.Errorf("failed to delete user: %w", err))
	}
	return errors.Join(errs...)
}
