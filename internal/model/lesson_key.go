package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// LessonKey addresses a lesson by its module and lesson index inside a course.
type LessonKey struct {
	Module int `json:"moduleIndex"`
	Lesson int `json:"lessonIndex"`
}

func (k LessonKey) String() string {
	return strconv.Itoa(k.Module) + "-" + strconv.Itoa(k.Lesson)
}

// Less orders keys by module first, then lesson.
func (k LessonKey) Less(o LessonKey) bool {
	if k.Module != o.Module {
		return k.Module < o.Module
	}
	return k.Lesson < o.Lesson
}

// ParseLessonKey parses the "module-lesson" wire encoding used by the backend.
func ParseLessonKey(s string) (LessonKey, error) {
	m, l, ok := strings.Cut(s, "-")
	if !ok {
		return LessonKey{}, fmt.Errorf("invalid lesson key %q", s)
	}
	mi, err := strconv.Atoi(m)
	if err != nil || mi < 0 {
		return LessonKey{}, fmt.Errorf("invalid module index in lesson key %q", s)
	}
	li, err := strconv.Atoi(l)
	if err != nil || li < 0 {
		return LessonKey{}, fmt.Errorf("invalid lesson index in lesson key %q", s)
	}
	return LessonKey{Module: mi, Lesson: li}, nil
}

// CompletedLessons is the set of finished lessons. On the wire it is an array of
// "module-lesson" strings.
type CompletedLessons map[LessonKey]struct{}

func NewCompletedLessons(keys ...LessonKey) CompletedLessons {
	set := make(CompletedLessons, len(keys))
	for _, k := range keys {
		set[k] = struct{}{}
	}
	return set
}

func (c CompletedLessons) Has(k LessonKey) bool {
	_, ok := c[k]
	return ok
}

func (c CompletedLessons) Len() int {
	return len(c)
}

// Keys returns the members in course order.
func (c CompletedLessons) Keys() []LessonKey {
	keys := make([]LessonKey, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

func (c CompletedLessons) MarshalJSON() ([]byte, error) {
	keys := c.Keys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return json.Marshal(out)
}

func (c *CompletedLessons) UnmarshalJSON(data []byte) error {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("completedLessons: %w", err)
	}
	set := make(CompletedLessons, len(raw))
	for _, s := range raw {
		k, err := ParseLessonKey(s)
		if err != nil {
			return fmt.Errorf("completedLessons: %w", err)
		}
		set[k] = struct{}{}
	}
	*c = set
	return nil
}
