package form

import (
	"net/url"

	"github.com/hitoshi/manabi/internal/model"
)

// Login はログインフォーム。
type Login struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// LoginFromValues はPOSTされた値からLoginを組み立てる。
// パスワードは前後の空白を含めてそのまま使う。
func LoginFromValues(v url.Values) Login {
	return Login{
		Email:    value(v, "email"),
		Password: v.Get("password"),
	}
}

// Register はアカウント登録フォーム。
// 自己登録できるのはstudentとteacherのみ。
type Register struct {
	Name     string `form:"name" validate:"max=100"`
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required,min=6"`
	Phone    string `form:"phone" validate:"omitempty,e164"`
	Role     string `form:"role" validate:"required,oneof=student teacher"`
}

// RegisterFromValues はPOSTされた値からRegisterを組み立てる。
// roleが未指定の場合はstudentとする。
func RegisterFromValues(v url.Values) Register {
	r := Register{
		Name:     value(v, "name"),
		Email:    value(v, "email"),
		Password: v.Get("password"),
		Phone:    value(v, "phone"),
		Role:     value(v, "role"),
	}
	if r.Role == "" {
		r.Role = string(model.RoleStudent)
	}
	return r
}

// ForgotPassword はパスワード再設定コードの要求フォーム。
type ForgotPassword struct {
	Email string `form:"email" validate:"required,email"`
}

// ForgotPasswordFromValues はPOSTされた値からForgotPasswordを組み立てる。
func ForgotPasswordFromValues(v url.Values) ForgotPassword {
	return ForgotPassword{Email: value(v, "email")}
}

// VerifyEmail はOTPによるメールアドレス確認フォーム。
type VerifyEmail struct {
	Email string `form:"email" validate:"required,email"`
	OTP   string `form:"otp" validate:"required,len=6,numeric"`
}

// VerifyEmailFromValues はPOSTされた値からVerifyEmailを組み立てる。
func VerifyEmailFromValues(v url.Values) VerifyEmail {
	return VerifyEmail{
		Email: value(v, "email"),
		OTP:   value(v, "otp"),
	}
}

// ResetPassword はOTPによるパスワード再設定フォーム。
type ResetPassword struct {
	Email           string `form:"email" validate:"required,email"`
	OTP             string `form:"otp" validate:"required,len=6,numeric"`
	NewPassword     string `form:"new_password" validate:"required,min=6"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword"`
}

// ResetPasswordFromValues はPOSTされた値からResetPasswordを組み立てる。
func ResetPasswordFromValues(v url.Values) ResetPassword {
	return ResetPassword{
		Email:           value(v, "email"),
		OTP:             value(v, "otp"),
		NewPassword:     v.Get("new_password"),
		ConfirmPassword: v.Get("confirm_password"),
	}
}
