package api

import (
	"context"
	"net/http"
	"testing"
)

func TestListCourses_DecodesBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "エンベロープ", body: `{"success":true,"data":[{"_id":"c1","title":"Go"},{"_id":"c2","title":"SQL"}]}`},
		{name: "配列", body: `[{"_id":"c1","title":"Go"},{"_id":"c2","title":"SQL"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/courses" {
					t.Errorf("path = %s", r.URL.Path)
				}
				w.Write([]byte(tt.body))
			}, "")

			courses, err := c.ListCourses(context.Background())
			if err != nil {
				t.Fatalf("ListCourses returned error: %v", err)
			}
			if len(courses) != 2 || courses[0].ID != "c1" || courses[1].Title != "SQL" {
				t.Errorf("courses = %+v", courses)
			}
		})
	}
}

func TestGetCourse_EscapesID(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.EscapedPath() != "/api/courses/a%2Fb" {
			t.Errorf("escaped path = %s", r.URL.EscapedPath())
		}
		w.Write([]byte(`{"data":{"_id":"a/b","title":"Escaped","isPublished":true}}`))
	}, "")

	course, err := c.GetCourse(context.Background(), "a/b")
	if err != nil {
		t.Fatalf("GetCourse returned error: %v", err)
	}
	if course.Title != "Escaped" || !course.Published {
		t.Errorf("course = %+v", course)
	}
}

func TestGetCourse_BareObject(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"c9","title":"Bare"}`))
	}, "")

	course, err := c.GetCourse(context.Background(), "c9")
	if err != nil {
		t.Fatalf("GetCourse returned error: %v", err)
	}
	if course.ID != "c9" || course.Title != "Bare" {
		t.Errorf("course = %+v", course)
	}
}

func TestGetCourse_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Course not found"}`))
	}, "")

	_, err := c.GetCourse(context.Background(), "missing")
	if err == nil || err.Error() != "Course not found" {
		t.Errorf("error = %v, want Course not found", err)
	}
}

func TestEnroll_PostsWithToken(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/courses/c1/enroll" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"success":true,"message":"Enrolled"}`))
	}, "tok")

	resp, err := c.Enroll(context.Background(), "c1")
	if err != nil {
		t.Fatalf("Enroll returned error: %v", err)
	}
	if resp.Message != "Enrolled" {
		t.Errorf("Message = %q", resp.Message)
	}
}

func TestEnroll_SuccessFalseIsError(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{name: "メッセージあり", body: `{"success":false,"message":"Already enrolled"}`, wantMsg: "Already enrolled"},
		{name: "メッセージなし", body: `{"success":false}`, wantMsg: "Request failed."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}, "tok")

			resp, err := c.Enroll(context.Background(), "c1")
			if err == nil {
				t.Fatal("success=falseでエラーが返らない")
			}
			if resp != nil {
				t.Errorf("resp = %+v, want nil", resp)
			}
			if !IsAPIError(err) {
				t.Errorf("APIErrorではない: %T", err)
			}
			if got := Message(err, "fallback"); got != tt.wantMsg {
				t.Errorf("Message = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestProfileAndDashboards(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/protected/profile":
			w.Write([]byte(`{"success":true,"data":{"user":{"id":"u1","email":"s@x.io","role":"student"}}}`))
		case "/api/protected/student/dashboard":
			w.Write([]byte(`{"success":true,"data":{"enrolledCourses":[{"_id":"c1"}],"progress":[{"courseId":"c1","progress":40}]}}`))
		case "/api/protected/teacher/dashboard":
			w.Write([]byte(`{"success":true,"data":{"courses":[{"_id":"c1"},{"_id":"c2"}],"totalStudents":12}}`))
		case "/api/protected/courses":
			w.Write([]byte(`{"success":true,"data":[{"_id":"c3"}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}, "tok")
	ctx := context.Background()

	user, err := c.Profile(ctx)
	if err != nil || user.Email != "s@x.io" {
		t.Errorf("Profile = %+v, %v", user, err)
	}

	sd, err := c.StudentDashboard(ctx)
	if err != nil || len(sd.EnrolledCourses) != 1 || sd.Progress[0].Percent != 40 {
		t.Errorf("StudentDashboard = %+v, %v", sd, err)
	}

	td, err := c.TeacherDashboard(ctx)
	if err != nil || len(td.Courses) != 2 || td.TotalStudents != 12 {
		t.Errorf("TeacherDashboard = %+v, %v", td, err)
	}

	courses, err := c.ProtectedCourses(ctx)
	if err != nil || len(courses) != 1 || courses[0].ID != "c3" {
		t.Errorf("ProtectedCourses = %+v, %v", courses, err)
	}
}
