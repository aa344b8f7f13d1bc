package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims はベアラートークンから読み取った表示用の情報。
type TokenClaims struct {
	Subject   string
	Issuer    string
	IssuedAt  *time.Time
	ExpiresAt *time.Time
}

// Expired は有効期限が過ぎているかを返す。期限が不明な場合はfalse。
// 表示専用で、セッションの有効性判定には使わない。
func (c TokenClaims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}

// Claims は現在のトークンを署名検証なしでJWTとしてデコードする。
// トークンがない場合やJWTでない場合は ok=false を返す。
func (s *Store) Claims() (TokenClaims, bool) {
	return ParseClaims(s.Token())
}

// ParseClaims はトークン文字列を署名検証なしでデコードする。
func ParseClaims(token string) (TokenClaims, bool) {
	if token == "" {
		return TokenClaims{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, false
	}

	tc := TokenClaims{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		t := claims.IssuedAt.UTC()
		tc.IssuedAt = &t
	}
	if claims.ExpiresAt != nil {
		t := claims.ExpiresAt.UTC()
		tc.ExpiresAt = &t
	}
	return tc, true
}
