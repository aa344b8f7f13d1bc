package model

import (
	"errors"
	"strings"
)

// FieldError はフォームの特定フィールドに対する検証エラーを表す。
type FieldError struct {
	Field   string
	Message string
}

// ValidationError はネットワーク呼び出し前にクライアント側で検出した入力エラーを表す。
// 画面ではフィールドごとにインライン表示する。
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError はValidationErrorを生成する。
func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Fields: fields}
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Message は指定フィールドのエラーメッセージを返す。該当がなければ空文字列。
func (e *ValidationError) Message(field string) string {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message
		}
	}
	return ""
}

// ErrNotFound はシミュレーションカタログで対象が見つからない場合のエラー。
var ErrNotFound = errors.New("not found")
