package form

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/model"
)

// Course は管理者のコース作成・編集フォーム。
type Course struct {
	Title       string `form:"title" validate:"notblank,max=120"`
	Description string `form:"description" validate:"max=2000"`
	Instructor  string `form:"instructor" validate:"max=100"`
	Category    string `form:"category" validate:"required,oneof=programming mathematics science business arts"`
	Level       string `form:"level" validate:"required,oneof=beginner intermediate advanced"`
	Price       string `form:"price" validate:"omitempty,numeric"`
}

// CourseFromValues はPOSTされた値からCourseを組み立てる。
func CourseFromValues(v url.Values) Course {
	return Course{
		Title:       value(v, "title"),
		Description: value(v, "description"),
		Instructor:  value(v, "instructor"),
		Category:    value(v, "category"),
		Level:       value(v, "level"),
		Price:       value(v, "price"),
	}
}

// CourseFromModel は既存コースから編集フォームの初期値を組み立てる。
func CourseFromModel(c model.Course) Course {
	return Course{
		Title:       c.Title,
		Description: c.Description,
		Instructor:  c.Instructor,
		Category:    c.Category,
		Level:       string(c.Level),
		Price:       strconv.FormatFloat(c.Price, 'f', -1, 64),
	}
}

func (f Course) check() []model.FieldError {
	if f.Price == "" {
		return nil
	}
	p, err := strconv.ParseFloat(f.Price, 64)
	switch {
	case errors.Is(err, strconv.ErrRange):
		return []model.FieldError{{Field: "price", Message: "Price is out of range"}}
	case err == nil && p < 0:
		return []model.FieldError{{Field: "price", Message: "Price must not be negative"}}
	}
	return nil
}

// Input は検証済みのフォームをカタログへの入力値に変換する。
func (f Course) Input() catalog.CourseInput {
	price, _ := strconv.ParseFloat(f.Price, 64)
	return catalog.CourseInput{
		Title:       f.Title,
		Description: f.Description,
		Instructor:  f.Instructor,
		Category:    f.Category,
		Level:       model.Level(f.Level),
		Price:       price,
	}
}
