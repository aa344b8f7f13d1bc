package catalog

import "github.com/hitoshi/manabi/internal/model"

// SeedCourses はシミュレーション用のサンプルコースを返す。
func SeedCourses() []model.Course {
	return []model.Course{
		{
			ID:                   "1",
			Title:                "Introduction to React",
			Description:          "Learn React fundamentals",
			Instructor:           "John Doe",
			Category:             "programming",
			Level:                model.LevelBeginner,
			Price:                0,
			EnrolledStudentCount: 150,
			Lessons:              12,
			Published:            true,
			CreatedAt:            "2024-01-15",
		},
		{
			ID:                   "2",
			Title:                "Advanced JavaScript",
			Description:          "Deep dive into JavaScript",
			Instructor:           "Jane Smith",
			Category:             "programming",
			Level:                model.LevelAdvanced,
			Price:                49,
			EnrolledStudentCount: 89,
			Lessons:              8,
			Published:            true,
			CreatedAt:            "2024-01-10",
		},
	}
}

// SeedContent はシミュレーション用のサンプル教材を返す。
func SeedContent() []model.ContentItem {
	return []model.ContentItem{
		{
			ID:              "1",
			CourseID:        "1",
			Title:           "React Components Introduction",
			Kind:            model.KindVideo,
			DurationMinutes: 25,
			UploadDate:      "2024-01-15",
			Order:           1,
			Published:       true,
		},
		{
			ID:         "2",
			CourseID:   "1",
			Title:      "State and Props Guide",
			Kind:       model.KindPDF,
			Size:       "1.2 MB",
			UploadDate: "2024-01-16",
			Order:      2,
			Published:  true,
		},
		{
			ID:         "3",
			CourseID:   "1",
			Title:      "Components Quiz",
			Kind:       model.KindQuiz,
			UploadDate: "2024-01-17",
			Order:      3,
		},
		{
			ID:         "4",
			CourseID:   "2",
			Title:      "JavaScript ES6 Features",
			Kind:       model.KindPDF,
			Size:       "2.4 MB",
			UploadDate: "2024-01-14",
			Order:      1,
			Published:  true,
		},
	}
}
