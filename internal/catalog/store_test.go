package catalog

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/manabi/internal/model"
)

func newTestStore() *Store {
	s := New(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestNew_Seeded(t *testing.T) {
	s := newTestStore()

	courses := s.ListCourses()
	if len(courses) != 2 {
		t.Fatalf("コース数 = %d, want 2", len(courses))
	}
	if courses[0].Title != "Introduction to React" || courses[1].Title != "Advanced JavaScript" {
		t.Errorf("サンプルコースが不正: %+v", courses)
	}
}

func TestListCourses_ReturnsCopy(t *testing.T) {
	s := newTestStore()
	courses := s.ListCourses()
	courses[0].Title = "changed"

	got, _ := s.GetCourse("1")
	if got.Title != "Introduction to React" {
		t.Errorf("ListCourses の戻り値の変更がストアに反映された: %q", got.Title)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.GetCourse("missing")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestCreateCourse_StartsAsDraft(t *testing.T) {
	s := newTestStore()

	c := s.CreateCourse(CourseInput{
		Title:    "Linear Algebra",
		Category: "mathematics",
		Level:    model.LevelIntermediate,
		Price:    19.5,
	})

	if c.ID == "" {
		t.Error("IDが採番されていない")
	}
	if c.State() != model.StateDraft {
		t.Errorf("State = %s, want draft", c.State())
	}
	if c.CreatedAt != "2026-03-04" {
		t.Errorf("CreatedAt = %q, want 2026-03-04", c.CreatedAt)
	}
	if len(s.ListCourses()) != 3 {
		t.Errorf("コース数 = %d, want 3", len(s.ListCourses()))
	}
}

func TestUpdateCourse(t *testing.T) {
	s := newTestStore()

	updated, err := s.UpdateCourse("2", CourseInput{Title: "Modern JavaScript", Level: model.LevelAdvanced, Price: 59})
	if err != nil {
		t.Fatalf("UpdateCourse returned error: %v", err)
	}
	if updated.Title != "Modern JavaScript" || updated.Price != 59 {
		t.Errorf("updated = %+v", updated)
	}
	if !updated.Published || updated.EnrolledStudentCount != 89 {
		t.Errorf("公開状態や受講者数が変更された: %+v", updated)
	}

	if _, err := s.UpdateCourse("missing", CourseInput{}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDeleteCourse_RemovesContent(t *testing.T) {
	s := newTestStore()

	if err := s.DeleteCourse("1"); err != nil {
		t.Fatalf("DeleteCourse returned error: %v", err)
	}
	if _, err := s.GetCourse("1"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("削除したコースが残っている: %v", err)
	}
	if _, err := s.ListContent("1"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("削除したコースの教材が取得できた: %v", err)
	}
	for _, item := range s.RecentContent(0) {
		if item.CourseID == "1" {
			t.Errorf("削除したコースの教材が最近の教材に含まれる: %+v", item)
		}
	}
	if err := s.DeleteCourse("1"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("二重削除 error = %v, want ErrNotFound", err)
	}
}

func TestTogglePublish(t *testing.T) {
	s := newTestStore()

	c, err := s.TogglePublish("1")
	if err != nil {
		t.Fatalf("TogglePublish returned error: %v", err)
	}
	if c.State() != model.StateDraft {
		t.Errorf("State = %s, want draft", c.State())
	}
	c, _ = s.TogglePublish("1")
	if c.State() != model.StatePublished {
		t.Errorf("State = %s, want published", c.State())
	}
}

func TestListContent_SortedByOrder(t *testing.T) {
	s := newTestStore()

	items, err := s.ListContent("1")
	if err != nil {
		t.Fatalf("ListContent returned error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("教材数 = %d, want 3", len(items))
	}
	for i, item := range items {
		if item.Order != i+1 {
			t.Errorf("items[%d].Order = %d, want %d", i, item.Order, i+1)
		}
	}
}

func TestAddContent_AppendsAsDraft(t *testing.T) {
	s := newTestStore()

	item, err := s.AddContent("1", ContentInput{Title: "Hooks Deep Dive", Kind: model.KindVideo, DurationMinutes: 30})
	if err != nil {
		t.Fatalf("AddContent returned error: %v", err)
	}
	if item.Order != 4 {
		t.Errorf("Order = %d, want 4", item.Order)
	}
	if item.Published {
		t.Error("追加した教材は下書きであるべき")
	}
	if item.UploadDate != "2026-03-04" {
		t.Errorf("UploadDate = %q", item.UploadDate)
	}

	recent := s.RecentContent(1)
	if len(recent) != 1 || recent[0].ID != item.ID {
		t.Errorf("RecentContent(1) = %+v, want 追加した教材", recent)
	}

	if _, err := s.AddContent("missing", ContentInput{Title: "x", Kind: model.KindPDF}); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestToggleContentPublish(t *testing.T) {
	s := newTestStore()

	item, err := s.ToggleContentPublish("1", "3")
	if err != nil {
		t.Fatalf("ToggleContentPublish returned error: %v", err)
	}
	if !item.Published {
		t.Error("Components Quiz は公開状態になるべき")
	}

	if _, err := s.ToggleContentPublish("2", "3"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("別コースの教材 error = %v, want ErrNotFound", err)
	}
}

func TestDeleteContent(t *testing.T) {
	s := newTestStore()

	if err := s.DeleteContent("1", "2"); err != nil {
		t.Fatalf("DeleteContent returned error: %v", err)
	}
	items, _ := s.ListContent("1")
	if len(items) != 2 {
		t.Errorf("教材数 = %d, want 2", len(items))
	}
	if err := s.DeleteContent("1", "2"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestRecentContent_NewestFirst(t *testing.T) {
	s := newTestStore()

	items := s.RecentContent(2)
	if len(items) != 2 {
		t.Fatalf("件数 = %d, want 2", len(items))
	}
	if items[0].UploadDate != "2024-01-17" || items[1].UploadDate != "2024-01-16" {
		t.Errorf("並び順が不正: %s, %s", items[0].UploadDate, items[1].UploadDate)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.TogglePublish("1")
		}()
		go func() {
			defer wg.Done()
			s.ListCourses()
		}()
	}
	wg.Wait()

	c, _ := s.GetCourse("1")
	if !c.Published {
		t.Error("偶数回の反転後は公開状態に戻るべき")
	}
}
