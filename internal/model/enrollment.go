package model

import "time"

type EnrollmentStatus string

const (
	EnrollmentActive    EnrollmentStatus = "active"
	EnrollmentCompleted EnrollmentStatus = "completed"
)

// Progress mirrors the progress block of an enrollment record owned by the backend.
type Progress struct {
	CurrentModule    int              `json:"currentModule" validate:"gte=0"`
	CurrentLesson    int              `json:"currentLesson" validate:"gte=0"`
	CompletedLessons CompletedLessons `json:"completedLessons"`
	OverallProgress  float64          `json:"overallProgress" validate:"gte=0,lte=100"`
	LastAccessedAt   *time.Time       `json:"lastAccessedAt,omitempty"`
}

// swagger:model Note
type Note struct {
	ID          string    `json:"_id" validate:"required"`
	ModuleIndex int       `json:"moduleIndex" validate:"gte=0"`
	LessonIndex int       `json:"lessonIndex" validate:"gte=0"`
	Timestamp   float64   `json:"timestamp" validate:"gte=0"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (n Note) Key() LessonKey {
	return LessonKey{Module: n.ModuleIndex, Lesson: n.LessonIndex}
}

// swagger:model Enrollment
type Enrollment struct {
	ID                string           `json:"_id" validate:"required"`
	UserID            string           `json:"user" validate:"required"`
	CourseID          string           `json:"course" validate:"required"`
	Progress          *Progress        `json:"progress,omitempty"`
	Notes             []Note           `json:"notes" validate:"dive"`
	Status            EnrollmentStatus `json:"status" validate:"omitempty,oneof=active completed"`
	CertificateIssued bool             `json:"certificateIssued"`
	EnrolledAt        time.Time        `json:"enrolledAt"`
}

// Completed returns the completion set, never nil.
func (e *Enrollment) Completed() CompletedLessons {
	if e == nil || e.Progress == nil || e.Progress.CompletedLessons == nil {
		return CompletedLessons{}
	}
	return e.Progress.CompletedLessons
}
