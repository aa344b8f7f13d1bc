// Package security はバックエンドから受け取ったテキストを画面に出す前の無害化を提供する。
//
// コースや教材の説明文はバックエンドが保持する任意の文字列であり、
// HTMLを含む場合がある。bluemondayの許可リストポリシーで安全なタグのみを残す。
package security

import (
	"html/template"
	"net/url"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer は説明文HTMLのサニタイズ機能のインターフェース。
type Sanitizer interface {
	// Sanitize はHTMLをサニタイズして安全なHTMLを返す。
	// 許可タグ（p, br, a, ul, ol, li, strong, em, code, pre, h3, h4）のみを通過させる。
	// aタグのhrefはhttp/httpsのみ許可し、rel="noopener noreferrer" と target="_blank" を付与する。
	// 同一入力に対して常に同一出力を返す。
	Sanitize(rawHTML string) string
	// SanitizeHTML はSanitizeの結果をテンプレートにそのまま埋め込める型で返す。
	SanitizeHTML(rawHTML string) template.HTML
}

type descriptionSanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer はSanitizerの新しいインスタンスを生成する。
// 返り値は並行に利用してよい。
func NewSanitizer() *descriptionSanitizer {
	p := bluemonday.NewPolicy()

	p.AllowElements(
		"p", "br", "ul", "ol", "li",
		"strong", "em", "code", "pre",
		"h3", "h4",
	)

	p.AllowAttrs("href").OnElements("a")
	p.AllowRelativeURLs(false)
	p.AllowURLSchemeWithCustomPolicy("https", func(*url.URL) bool { return true })
	p.AllowURLSchemeWithCustomPolicy("http", func(*url.URL) bool { return true })
	p.AddTargetBlankToFullyQualifiedLinks(true)
	p.RequireNoReferrerOnLinks(true)

	return &descriptionSanitizer{policy: p}
}

// Sanitize はHTMLをサニタイズする。
func (s *descriptionSanitizer) Sanitize(rawHTML string) string {
	return s.policy.Sanitize(rawHTML)
}

// SanitizeHTML はサニタイズ済みのHTMLを template.HTML として返す。
func (s *descriptionSanitizer) SanitizeHTML(rawHTML string) template.HTML {
	return template.HTML(s.policy.Sanitize(rawHTML))
}
