package util

import "errors"

// ErrValidation marks failures detected before any call to the backend.
var ErrValidation = errors.New("validation failed")

var (
	ErrNoSession           = errors.New("session required")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrEmptyNote           = validation("note content must not be empty")
	ErrNoteIDRequired      = validation("note id is required")
	ErrInvalidTimestamp    = validation("note timestamp must not be negative")
	ErrLessonOutOfRange    = validation("lesson is not part of this course")
	ErrInvalidWatchTime    = validation("watched duration must not be negative")
	ErrInvalidRating       = validation("rating must be between 1 and 5")
	ErrEnrollmentNotLoaded = errors.New("enrollment not loaded")
	ErrCourseNotLoaded     = errors.New("course not loaded")
	ErrNotificationMissing = errors.New("notification not found")
)

type validationError struct {
	msg string
}

func (e *validationError) Error() string { return e.msg }

func (e *validationError) Is(target error) bool { return target == ErrValidation }

func validation(msg string) error {
	return &validationError{msg: msg}
}

// IsValidation reports whether err was raised by local input validation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}
