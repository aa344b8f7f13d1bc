package security

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

const ellipsis = "…"

// PlainText はHTMLからテキストノードのみを取り出し、空白を1つに詰めて返す。
// script と style の中身は捨てる。
func PlainText(rawHTML string) string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))

	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF 以外のエラーでもそこまでのテキストを返す
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			name, _ := z.TagName()
			if isSkipped(name) {
				skip++
			}
			if isBlock(name) {
				b.WriteByte(' ')
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if isSkipped(name) && skip > 0 {
				skip--
			}
			if isBlock(name) {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Excerpt はHTMLをプレーンテキストに変換し、最大maxRunes文字に切り詰める。
// 切り詰めた場合は末尾に省略記号を付ける。
func Excerpt(rawHTML string, maxRunes int) string {
	text := PlainText(rawHTML)
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:maxRunes]), " ")
	return cut + ellipsis
}

func isSkipped(tag []byte) bool {
	switch string(tag) {
	case "script", "style":
		return true
	}
	return false
}

func isBlock(tag []byte) bool {
	switch string(tag) {
	case "p", "br", "li", "div", "h1", "h2", "h3", "h4", "ul", "ol", "pre":
		return true
	}
	return false
}
