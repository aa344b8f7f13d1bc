// Package form は画面のフォーム入力の取り込みと検証を提供する。
// 検証はネットワーク呼び出しの前に行い、失敗は model.ValidationError として返す。
package form

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/manabi/internal/model"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// エラーのフィールド名にはフォームのname属性を使う
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// structChecker はタグで表現できない相関チェックを持つフォームが実装する。
type structChecker interface {
	check() []model.FieldError
}

// Validate はフォームを検証する。
// 問題がなければnil、あれば *model.ValidationError を返す。
func Validate(f any) error {
	var fields []model.FieldError

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("failed to validate form: %w", err)
		}
		for _, fe := range verrs {
			fields = append(fields, model.FieldError{Field: fe.Field(), Message: message(fe)})
		}
	}
	if c, ok := f.(structChecker); ok {
		fields = append(fields, c.check()...)
	}

	if len(fields) == 0 {
		return nil
	}
	return model.NewValidationError(fields...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "eqfield":
		return "Passwords do not match"
	case "oneof":
		return "Please choose a valid option"
	case "numeric", "number":
		return "Please enter a valid number"
	case "e164":
		return "Please enter the phone number in international format (e.g. +14155550100)"
	default:
		return "Invalid value"
	}
}

func value(v url.Values, key string) string {
	return strings.TrimSpace(v.Get(key))
}
