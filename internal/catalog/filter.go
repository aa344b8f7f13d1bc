package catalog

import (
	"strings"

	"github.com/hitoshi/manabi/internal/model"
)

// FilterAll はカテゴリ・難易度の絞り込みを行わないことを表す。
const FilterAll = "all"

// Categories はコース一覧の絞り込みに使うカテゴリを返す。
func Categories() []string {
	return []string{FilterAll, "programming", "mathematics", "science", "business", "arts"}
}

// Query はコース一覧の絞り込み条件。
// 空文字列と "all" は条件なしとして扱う。
type Query struct {
	Search   string
	Category string
	Level    string
}

// Filter は条件に一致するコースを元の順序のまま返す。
// Searchはタイトルと説明文に対する大文字小文字を区別しない部分一致、
// Categoryは大文字小文字を区別しない完全一致とする。
func Filter(courses []model.Course, q Query) []model.Course {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.ToLower(q.Category)

	out := make([]model.Course, 0, len(courses))
	for _, c := range courses {
		if search != "" &&
			!strings.Contains(strings.ToLower(c.Title), search) &&
			!strings.Contains(strings.ToLower(c.Description), search) {
			continue
		}
		if category != "" && category != FilterAll && strings.ToLower(c.Category) != category {
			continue
		}
		if q.Level != "" && q.Level != FilterAll && string(c.Level) != q.Level {
			continue
		}
		out = append(out, c)
	}
	return out
}

// FilterContent はタイトルにsearchを含む教材を返す。
func FilterContent(items []model.ContentItem, search string) []model.ContentItem {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return items
	}
	out := make([]model.ContentItem, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Title), search) {
			out = append(out, item)
		}
	}
	return out
}

// CountByKind は教材種別ごとの件数を返す。
func CountByKind(items []model.ContentItem) map[model.ContentKind]int {
	counts := make(map[model.ContentKind]int, len(model.ContentKinds()))
	for _, k := range model.ContentKinds() {
		counts[k] = 0
	}
	for _, item := range items {
		counts[item.Kind]++
	}
	return counts
}

// Totals はコース群の集計値。
type Totals struct {
	Courses  int
	Students int
	Lessons  int
}

// Summarize はコース群の受講者数とレッスン数を集計する。
func Summarize(courses []model.Course) Totals {
	t := Totals{Courses: len(courses)}
	for _, c := range courses {
		t.Students += c.EnrolledStudentCount
		t.Lessons += c.Lessons
	}
	return t
}
