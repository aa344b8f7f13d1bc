package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/manabi/internal/guard"
)

// GuardRecorder はガード判定を記録する。metrics.Collectorが実装する。
type GuardRecorder interface {
	RecordGuardDecision(route, outcome string)
}

// NewGuardMiddleware はルートの要件をセッション状態と照合するミドルウェアを返す。
// 拒否された場合は描画せずに 303 See Other でリダイレクトする。
// 判定は遷移のたびに行い、結果をキャッシュしない。
func NewGuardMiddleware(pattern string, req guard.Requirement, recorder GuardRecorder, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			snap := SnapshotFromContext(r.Context())
			decision := guard.Decide(snap, req)
			if recorder != nil {
				recorder.RecordGuardDecision(pattern, decision.Outcome)
			}

			if !decision.Allowed {
				logger.Debug("navigation redirected",
					slog.String("path", r.URL.Path),
					slog.String("role", string(snap.Role())),
					slog.String("redirect", decision.Redirect),
				)
				http.Redirect(w, r, decision.Redirect, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
