// Package model はドメインモデルを定義する。
package model

import (
	"strings"
)

// Role はユーザーの役割を表す。
// student、teacher、admin の3値のみを取る閉じた列挙型として扱う。
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// Roles は定義済みのすべてのRoleを返す。
func Roles() []Role {
	return []Role{RoleStudent, RoleTeacher, RoleAdmin}
}

// Valid はRoleが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// Label は画面表示用のラベルを返す。
func (r Role) Label() string {
	switch r {
	case RoleStudent:
		return "Student"
	case RoleTeacher:
		return "Teacher"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// Identity はバックエンドから受け取るログインユーザーの情報を表す。
// durable storage の "user" キーにはこの構造体をJSONで保存する。
type Identity struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Email      string `json:"email"`
	Role       Role   `json:"role"`
	Phone      string `json:"phone,omitempty"`
	Bio        string `json:"bio,omitempty"`
	IsVerified bool   `json:"isVerified,omitempty"`
}

// DisplayName は表示名を返す。名前が未設定の場合はメールアドレスを使う。
func (i Identity) DisplayName() string {
	if i.Name != "" {
		return i.Name
	}
	return i.Email
}

// Initial はアバター表示用の頭文字を返す。
func (i Identity) Initial() string {
	name := i.DisplayName()
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}
