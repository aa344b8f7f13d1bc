// Package storage はセッションを永続化するためのキー・バリュー型ストレージを提供する。
// 値はすべて文字列で、"token" と "user" の2キーのみを扱う想定。
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 定義済みキー
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage は文字列値のキー・バリュー型の永続ストレージ。
type Storage interface {
	// Get はキーに対応する値を返す。キーが存在しない場合は ok=false を返す。
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set はキーに値を保存する。既存の値は上書きする。
	Set(ctx context.Context, key, value string) error
	// Delete はキーを削除する。存在しないキーの削除はエラーにしない。
	Delete(ctx context.Context, key string) error
	// Close は保持しているリソースを解放する。
	Close() error
}

// Options はOpenの追加設定。
type Options struct {
	// KeyPrefix はRedisドライバーでキーに付与する接頭辞。
	KeyPrefix string
}

// Open はSTORAGE_URLの形式に応じたドライバーでStorageを開く。
//
//	file:///path/session.json または /path/session.json -> FileStorage
//	postgres://...                                       -> PostgresStorage
//	redis://...                                          -> RedisStorage
//	memory:                                              -> MemoryStorage
//
// 空文字列の場合は $HOME/.manabi/session.json を使う。
func Open(ctx context.Context, rawURL string, opts Options) (Storage, error) {
	switch {
	case rawURL == "":
		path, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		return NewFileStorage(path), nil
	case rawURL == "memory:" || rawURL == "memory://":
		return NewMemoryStorage(), nil
	case strings.HasPrefix(rawURL, "file://"):
		return NewFileStorage(strings.TrimPrefix(rawURL, "file://")), nil
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return OpenPostgresStorage(ctx, rawURL)
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return OpenRedisStorage(ctx, rawURL, opts.KeyPrefix)
	case strings.Contains(rawURL, "://"):
		return nil, fmt.Errorf("unsupported storage URL scheme: %s", rawURL)
	default:
		return NewFileStorage(rawURL), nil
	}
}

// DefaultFilePath はファイルストレージの既定パスを返す。
func DefaultFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".manabi", "session.json"), nil
}

// Driver はStorageの実装名を返す。ログ出力用。
func Driver(s Storage) string {
	switch s.(type) {
	case *FileStorage:
		return "file"
	case *MemoryStorage:
		return "memory"
	case *PostgresStorage:
		return "postgres"
	case *RedisStorage:
		return "redis"
	default:
		return "unknown"
	}
}
