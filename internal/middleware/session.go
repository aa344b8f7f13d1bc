// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/manabi/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	snapshotContextKey  = contextKey("session_snapshot")
	csrfTokenContextKey = contextKey("csrf_token")
)

// SnapshotSource は現在のセッション状態を返す。session.Storeが実装する。
type SnapshotSource interface {
	Snapshot() session.Snapshot
}

// NewSessionMiddleware はリクエスト開始時点のセッション状態をコンテキストに注入する。
// 1リクエストの処理中はガード判定・ログ・画面描画が同じスナップショットを参照する。
func NewSessionMiddleware(src SnapshotSource) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithSnapshot(r.Context(), src.Snapshot())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SnapshotFromContext はコンテキストのセッション状態を返す。
// 注入されていない場合は未認証のスナップショットを返す。
func SnapshotFromContext(ctx context.Context) session.Snapshot {
	snap, _ := ctx.Value(snapshotContextKey).(session.Snapshot)
	return snap
}

// ContextWithSnapshot はコンテキストにセッション状態を注入する。
func ContextWithSnapshot(ctx context.Context, snap session.Snapshot) context.Context {
	return context.WithValue(ctx, snapshotContextKey, snap)
}

// UserIDFromContext はコンテキストのセッションからユーザーIDを返す。
// 未認証の場合は空文字列。
func UserIDFromContext(ctx context.Context) string {
	snap := SnapshotFromContext(ctx)
	if !snap.IsAuthenticated() {
		return ""
	}
	return snap.UserID()
}
