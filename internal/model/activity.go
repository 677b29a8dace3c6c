package model

type ActivityType string

const (
	ActivityLessonCompleted ActivityType = "lesson_completed"
	ActivityNoteAdded       ActivityType = "note_added"
	ActivityNoteUpdated     ActivityType = "note_updated"
	ActivityNoteDeleted     ActivityType = "note_deleted"
)

// LearningActivity is the gateway-side log of successful learner mutations.
// swagger:model LearningActivity
type LearningActivity struct {
	Record
	UserID         string       `gorm:"size:64;index:idx_activity_user_course;not null" json:"userId"`
	CourseID       string       `gorm:"size:64;index:idx_activity_user_course;not null" json:"courseId"`
	EnrollmentID   string       `gorm:"size:64" json:"enrollmentId"`
	Type           ActivityType `gorm:"size:32;not null" json:"type"`
	ModuleIndex    int          `json:"moduleIndex"`
	LessonIndex    int          `json:"lessonIndex"`
	WatchedSeconds int          `json:"watchedSeconds"`
	NoteID         string       `gorm:"size:64" json:"noteId,omitempty"`
	Progress       float64      `json:"progress"`
}

func (LearningActivity) TableName() string {
	return "learning_activities"
}
