package middleware

import (
	"net/http"
)

// ErrorWriter はエラー画面を書き込む関数。
// ミドルウェアが拒否・異常終了したリクエストの応答に使う。
type ErrorWriter func(w http.ResponseWriter, r *http.Request, status int, message string)

// PlainErrorWriter はテキストでエラーを書き込むErrorWriter。
func PlainErrorWriter(w http.ResponseWriter, _ *http.Request, status int, message string) {
	http.Error(w, message, status)
}

func errorWriterOrDefault(ew ErrorWriter) ErrorWriter {
	if ew == nil {
		return PlainErrorWriter
	}
	return ew
}

// WriteInternalServerError は内部エラーの画面を書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter, r *http.Request, ew ErrorWriter) {
	errorWriterOrDefault(ew)(w, r, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}
