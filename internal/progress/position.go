// Package progress models a learner's progress through one course: which lessons are
// complete, where the learner is, and the notes taken along the way. The enrollment
// record owned by the marketplace backend stays the source of truth; this package only
// derives views from it and mediates mutations.
package progress

import (
	"math"

	"designhub_backend/internal/model"
)

// Stage is the lifecycle of one enrollment as seen by the learner.
type Stage string

const (
	StageNotStarted Stage = "not_started"
	StageInProgress Stage = "in_progress"
	StageCompleted  Stage = "completed"
)

// ResolveCurrentPosition returns the position stored on the enrollment, or (0,0)
// when there is none.
func ResolveCurrentPosition(e *model.Enrollment) model.LessonKey {
	if e == nil || e.Progress == nil {
		return model.LessonKey{}
	}
	return model.LessonKey{
		Module: max(e.Progress.CurrentModule, 0),
		Lesson: max(e.Progress.CurrentLesson, 0),
	}
}

// ClampPosition pulls a position back inside the course. Courses without lessons
// resolve to (0,0).
func ClampPosition(course *model.Course, k model.LessonKey) model.LessonKey {
	if course.HasLesson(k) {
		return k
	}
	last, ok := LastLesson(course)
	if !ok {
		return model.LessonKey{}
	}
	if k.Module >= len(course.Modules) || !k.Less(last) {
		return last
	}
	first, _ := FirstLesson(course)
	if k.Less(first) {
		return first
	}
	// inside the course range but pointing past the end of a module
	return NextPosition(course, model.LessonKey{Module: k.Module, Lesson: len(course.Modules[k.Module].Lessons) - 1})
}

func FirstLesson(course *model.Course) (model.LessonKey, bool) {
	if course == nil {
		return model.LessonKey{}, false
	}
	for m, mod := range course.Modules {
		if len(mod.Lessons) > 0 {
			return model.LessonKey{Module: m, Lesson: 0}, true
		}
	}
	return model.LessonKey{}, false
}

func LastLesson(course *model.Course) (model.LessonKey, bool) {
	if course == nil {
		return model.LessonKey{}, false
	}
	for m := len(course.Modules) - 1; m >= 0; m-- {
		if n := len(course.Modules[m].Lessons); n > 0 {
			return model.LessonKey{Module: m, Lesson: n - 1}, true
		}
	}
	return model.LessonKey{}, false
}

// NextPosition is the lesson after k: the next lesson of the same module, else the
// first lesson of the next non-empty module. The final lesson of the course maps to
// itself.
func NextPosition(course *model.Course, k model.LessonKey) model.LessonKey {
	if course == nil || k.Module < 0 || k.Module >= len(course.Modules) {
		return k
	}
	if k.Lesson+1 < len(course.Modules[k.Module].Lessons) {
		return model.LessonKey{Module: k.Module, Lesson: k.Lesson + 1}
	}
	for m := k.Module + 1; m < len(course.Modules); m++ {
		if len(course.Modules[m].Lessons) > 0 {
			return model.LessonKey{Module: m, Lesson: 0}
		}
	}
	return k
}

// IsComplete reports whether the lesson at (moduleIndex, lessonIndex) is in the
// enrollment's completion set.
func IsComplete(e *model.Enrollment, moduleIndex, lessonIndex int) bool {
	return e.Completed().Has(model.LessonKey{Module: moduleIndex, Lesson: lessonIndex})
}

// NotesForLesson returns the notes taken on exactly (moduleIndex, lessonIndex), in
// stored order.
func NotesForLesson(e *model.Enrollment, moduleIndex, lessonIndex int) []model.Note {
	out := []model.Note{}
	if e == nil {
		return out
	}
	want := model.LessonKey{Module: moduleIndex, Lesson: lessonIndex}
	for _, n := range e.Notes {
		if n.Key() == want {
			out = append(out, n)
		}
	}
	return out
}

// Percent is 100 * |completed lessons of the course| / total lessons, rounded to two
// decimals. Keys that no longer address a lesson of the course are not counted.
func Percent(completed model.CompletedLessons, course *model.Course) float64 {
	total := course.TotalLessons()
	if total == 0 {
		return 0
	}
	done := 0
	for k := range completed {
		if course.HasLesson(k) {
			done++
		}
	}
	return math.Round(float64(done)*10000/float64(total)) / 100
}

// StageOf derives the lifecycle stage. Completion is driven by the backend status.
func StageOf(e *model.Enrollment) Stage {
	switch {
	case e == nil:
		return StageNotStarted
	case e.Status == model.EnrollmentCompleted:
		return StageCompleted
	case e.Completed().Len() > 0:
		return StageInProgress
	default:
		return StageNotStarted
	}
}
