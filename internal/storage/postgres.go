package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/manabi/internal/database"
)

// PostgresStorage はPostgreSQLの client_storage テーブルに値を保存するStorage。
// 共有端末などでセッションをホスト外に置く場合に使用する。
// テーブルは `manabi migrate` で作成する。
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage は既存の接続からPostgresStorageを生成する。
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// OpenPostgresStorage はdatabaseURLに接続してPostgresStorageを生成する。
func OpenPostgresStorage(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	db, err := database.Open(databaseURL)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to storage database: %w", err)
	}
	return NewPostgresStorage(db), nil
}

func (s *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM client_storage WHERE key = $1`,
		key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get storage value: %w", err)
	}
	return value, true, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO client_storage (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set storage value: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM client_storage WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete storage value: %w", err)
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

// Ping はDB接続を確認する。ヘルスチェック用。
func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
