package model

import "fmt"

// ContentKind はコース教材の種類を表す。
type ContentKind string

const (
	KindVideo ContentKind = "video"
	KindPDF   ContentKind = "pdf"
	KindQuiz  ContentKind = "quiz"
)

// ContentKinds は定義済みのすべての教材種別を返す。
func ContentKinds() []ContentKind {
	return []ContentKind{KindVideo, KindPDF, KindQuiz}
}

// Valid は教材種別が定義済みの値かどうかを返す。
func (k ContentKind) Valid() bool {
	switch k {
	case KindVideo, KindPDF, KindQuiz:
		return true
	default:
		return false
	}
}

// AcceptedFiles はアップロードフォームで受け付けるファイル形式を返す。
func (k ContentKind) AcceptedFiles() string {
	switch k {
	case KindVideo:
		return "video/mp4,video/avi,video/mov,video/wmv"
	case KindPDF:
		return ".pdf"
	case KindQuiz:
		return ".json,.txt"
	default:
		return "*"
	}
}

// ContentItem はコースに含まれる教材を表す。
// Course と同じく、バックエンド所有の値の一時的なコピーとして扱う。
type ContentItem struct {
	ID              string      `json:"_id"`
	CourseID        string      `json:"courseId,omitempty"`
	Title           string      `json:"title"`
	Description     string      `json:"description,omitempty"`
	Kind            ContentKind `json:"type"`
	DurationMinutes int         `json:"duration,omitempty"`
	Size            string      `json:"size,omitempty"`
	UploadDate      string      `json:"uploadDate"`
	Order           int         `json:"order"`
	Published       bool        `json:"isPublished"`
}

// State は教材の公開状態を返す。
func (c ContentItem) State() PublicationState {
	return PublicationStateOf(c.Published)
}

// SizeOrDuration は動画なら再生時間、それ以外ならファイルサイズを返す。
func (c ContentItem) SizeOrDuration() string {
	if c.Kind == KindVideo {
		return fmt.Sprintf("%d min", c.DurationMinutes)
	}
	if c.Size == "" {
		return "-"
	}
	return c.Size
}
