package form

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/model"
)

// Content は講師の教材登録フォーム。
// ファイル本体は扱わず、ファイル名とサイズのみを受け取る。
type Content struct {
	CourseID    string `form:"course" validate:"required"`
	Title       string `form:"title" validate:"notblank,max=200"`
	Description string `form:"description" validate:"max=2000"`
	Kind        string `form:"type" validate:"required,oneof=video pdf quiz"`
	Duration    string `form:"duration" validate:"omitempty,number"`
	FileName    string `form:"file"`
	FileSize    int64  `form:"-"`
}

// ContentFromValues はPOSTされた値からContentを組み立てる。
// fileNameとfileSizeはアップロードされたファイルのヘッダーから渡す。
func ContentFromValues(v url.Values, fileName string, fileSize int64) Content {
	kind := value(v, "type")
	if kind == "" {
		kind = string(model.KindVideo)
	}
	return Content{
		CourseID:    value(v, "course"),
		Title:       value(v, "title"),
		Description: value(v, "description"),
		Kind:        kind,
		Duration:    value(v, "duration"),
		FileName:    fileName,
		FileSize:    fileSize,
	}
}

func (f Content) check() []model.FieldError {
	if f.Kind != string(model.KindVideo) {
		return nil
	}
	n, err := strconv.Atoi(f.Duration)
	if err != nil || n <= 0 {
		return []model.FieldError{{Field: "duration", Message: "Please enter the video length in minutes"}}
	}
	return nil
}

// Input は検証済みのフォームをカタログへの入力値に変換する。
func (f Content) Input() catalog.ContentInput {
	in := catalog.ContentInput{
		Title:       f.Title,
		Description: f.Description,
		Kind:        model.ContentKind(f.Kind),
	}
	if in.Kind == model.KindVideo {
		in.DurationMinutes, _ = strconv.Atoi(f.Duration)
	} else if f.FileSize > 0 {
		in.Size = FormatSize(f.FileSize)
	}
	return in
}

// FormatSize はバイト数を "1.2 MB" 形式に整形する。
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
