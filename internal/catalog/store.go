// Package catalog は講師・管理者画面で使うコースと教材のシミュレーションストアを提供する。
// データはプロセス内にのみ保持し、バックエンドへは永続化しない。
package catalog

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/manabi/internal/model"
)

const dateLayout = "2006-01-02"

// CourseInput はコース作成・更新の入力値。
type CourseInput struct {
	Title       string
	Description string
	Instructor  string
	Category    string
	Level       model.Level
	Price       float64
}

// ContentInput は教材追加の入力値。
type ContentInput struct {
	Title           string
	Description     string
	Kind            model.ContentKind
	DurationMinutes int
	Size            string
}

// Store はコースと教材をメモリ上で管理する。
// 複数のハンドラーから並行に呼ばれるため、mutexで保護する。
type Store struct {
	mu      sync.RWMutex
	courses []model.Course
	content map[string][]model.ContentItem
	logger  *slog.Logger
	now     func() time.Time
}

// New はサンプルデータを投入したStoreを生成する。
func New(logger *slog.Logger) *Store {
	return NewWithData(SeedCourses(), SeedContent(), logger)
}

// NewWithData は指定データでStoreを生成する。
func NewWithData(courses []model.Course, content []model.ContentItem, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		courses: slices.Clone(courses),
		content: make(map[string][]model.ContentItem),
		logger:  logger,
		now:     time.Now,
	}
	for _, item := range content {
		s.content[item.CourseID] = append(s.content[item.CourseID], item)
	}
	return s
}

// ListCourses はすべてのコースを登録順に返す。
func (s *Store) ListCourses() []model.Course {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.courses)
}

// GetCourse は指定IDのコースを返す。
func (s *Store) GetCourse(id string) (model.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Course{}, fmt.Errorf("course %s: %w", id, model.ErrNotFound)
	}
	return s.courses[i], nil
}

// CreateCourse はコースを下書き状態で作成する。
func (s *Store) CreateCourse(in CourseInput) model.Course {
	s.mu.Lock()
	defer s.mu.Unlock()

	course := model.Course{
		ID:        uuid.NewString(),
		CreatedAt: s.now().Format(dateLayout),
	}
	applyCourseInput(&course, in)
	s.courses = append(s.courses, course)

	s.logger.Info("course created", slog.String("course_id", course.ID), slog.String("title", course.Title))
	return course
}

// UpdateCourse はコースの属性を更新する。公開状態と受講者数は変更しない。
func (s *Store) UpdateCourse(id string, in CourseInput) (model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Course{}, fmt.Errorf("course %s: %w", id, model.ErrNotFound)
	}
	applyCourseInput(&s.courses[i], in)

	s.logger.Info("course updated", slog.String("course_id", id))
	return s.courses[i], nil
}

// DeleteCourse はコースとその教材を削除する。
func (s *Store) DeleteCourse(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("course %s: %w", id, model.ErrNotFound)
	}
	s.courses = slices.Delete(s.courses, i, i+1)
	delete(s.content, id)

	s.logger.Info("course deleted", slog.String("course_id", id))
	return nil
}

// TogglePublish はコースの公開状態を反転する。
func (s *Store) TogglePublish(id string) (model.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return model.Course{}, fmt.Errorf("course %s: %w", id, model.ErrNotFound)
	}
	s.courses[i].Published = !s.courses[i].Published

	s.logger.Info("course publication toggled",
		slog.String("course_id", id),
		slog.String("state", string(s.courses[i].State())),
	)
	return s.courses[i], nil
}

// ListContent はコースの教材を表示順に返す。
func (s *Store) ListContent(courseID string) ([]model.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.indexOf(courseID) < 0 {
		return nil, fmt.Errorf("course %s: %w", courseID, model.ErrNotFound)
	}
	items := slices.Clone(s.content[courseID])
	slices.SortStableFunc(items, func(a, b model.ContentItem) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return items, nil
}

// RecentContent はアップロード日の新しい順に最大limit件の教材を返す。
func (s *Store) RecentContent(limit int) []model.ContentItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var items []model.ContentItem
	for _, c := range s.courses {
		items = append(items, s.content[c.ID]...)
	}
	slices.SortStableFunc(items, func(a, b model.ContentItem) int {
		return cmp.Compare(b.UploadDate, a.UploadDate)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// AddContent はコースの末尾に教材を下書き状態で追加する。
func (s *Store) AddContent(courseID string, in ContentInput) (model.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(courseID) < 0 {
		return model.ContentItem{}, fmt.Errorf("course %s: %w", courseID, model.ErrNotFound)
	}

	order := 0
	for _, item := range s.content[courseID] {
		order = max(order, item.Order)
	}
	item := model.ContentItem{
		ID:              uuid.NewString(),
		CourseID:        courseID,
		Title:           in.Title,
		Description:     in.Description,
		Kind:            in.Kind,
		DurationMinutes: in.DurationMinutes,
		Size:            in.Size,
		UploadDate:      s.now().Format(dateLayout),
		Order:           order + 1,
	}
	s.content[courseID] = append(s.content[courseID], item)

	s.logger.Info("content added",
		slog.String("course_id", courseID),
		slog.String("content_id", item.ID),
		slog.String("kind", string(item.Kind)),
	)
	return item, nil
}

// ToggleContentPublish は教材の公開状態を反転する。
func (s *Store) ToggleContentPublish(courseID, contentID string) (model.ContentItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.content[courseID]
	for i := range items {
		if items[i].ID == contentID {
			items[i].Published = !items[i].Published
			return items[i], nil
		}
	}
	return model.ContentItem{}, fmt.Errorf("content %s in course %s: %w", contentID, courseID, model.ErrNotFound)
}

// DeleteContent は教材を削除する。
func (s *Store) DeleteContent(courseID, contentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.content[courseID]
	for i := range items {
		if items[i].ID == contentID {
			s.content[courseID] = slices.Delete(items, i, i+1)
			s.logger.Info("content deleted", slog.String("course_id", courseID), slog.String("content_id", contentID))
			return nil
		}
	}
	return fmt.Errorf("content %s in course %s: %w", contentID, courseID, model.ErrNotFound)
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.courses, func(c model.Course) bool { return c.ID == id })
}

func applyCourseInput(c *model.Course, in CourseInput) {
	c.Title = in.Title
	c.Description = in.Description
	c.Instructor = in.Instructor
	c.Category = in.Category
	c.Level = in.Level
	c.Price = in.Price
}
