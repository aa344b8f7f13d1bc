package model

import "fmt"

// Level はコースの難易度を表す。
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Levels は定義済みのすべての難易度を返す。
func Levels() []Level {
	return []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}
}

// Valid は難易度が定義済みの値かどうかを返す。
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// PublicationState は受講者に公開されているかどうかを表す。
type PublicationState string

const (
	StateDraft     PublicationState = "draft"
	StatePublished PublicationState = "published"
)

// PublicationStateOf はbool値の公開フラグを PublicationState に変換する。
func PublicationStateOf(published bool) PublicationState {
	if published {
		return StatePublished
	}
	return StateDraft
}

// Course はコースを表す。
// バックエンドが所有する値で、クライアントは画面ごとに取得した一時的なコピーのみを持つ。
type Course struct {
	ID                   string  `json:"_id"`
	Title                string  `json:"title"`
	Description          string  `json:"description"`
	Instructor           string  `json:"instructor"`
	Category             string  `json:"category"`
	Level                Level   `json:"level"`
	Price                float64 `json:"price"`
	DurationHours        int     `json:"duration,omitempty"`
	Thumbnail            string  `json:"thumbnail,omitempty"`
	EnrolledStudentCount int     `json:"enrolledStudents"`
	Lessons              int     `json:"lessons,omitempty"`
	Published            bool    `json:"isPublished"`
	IsEnrolled           bool    `json:"isEnrolled,omitempty"`
	CreatedAt            string  `json:"createdAt,omitempty"`
}

// State はコースの公開状態を返す。
func (c Course) State() PublicationState {
	return PublicationStateOf(c.Published)
}

// PriceLabel は価格の表示文字列を返す。0円は "Free" とする。
func (c Course) PriceLabel() string {
	if c.Price == 0 {
		return "Free"
	}
	if c.Price == float64(int64(c.Price)) {
		return fmt.Sprintf("$%d", int64(c.Price))
	}
	return fmt.Sprintf("$%.2f", c.Price)
}
