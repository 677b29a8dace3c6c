package model

import "time"

// swagger:model Lesson
type Lesson struct {
	Title         string `json:"title" validate:"required"`
	Description   string `json:"description,omitempty"`
	Duration      int    `json:"duration" validate:"gte=0"`
	VideoURL      string `json:"videoUrl"`
	IsFreePreview bool   `json:"isFree"`
}

// swagger:model Module
type Module struct {
	Title   string   `json:"title" validate:"required"`
	Lessons []Lesson `json:"lessons" validate:"dive"`
}

// swagger:model Course
type Course struct {
	ID           string    `json:"_id" validate:"required"`
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description,omitempty"`
	Thumbnail    string    `json:"thumbnail,omitempty"`
	Instructor   string    `json:"instructor,omitempty"`
	Level        string    `json:"level,omitempty"`
	Price        float64   `json:"price" validate:"gte=0"`
	IsPublished  bool      `json:"isPublished"`
	Modules      []Module  `json:"modules" validate:"dive"`
	EnrollCount  int       `json:"enrollmentCount"`
	AverageStars float64   `json:"averageRating"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (c *Course) TotalLessons() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, m := range c.Modules {
		total += len(m.Lessons)
	}
	return total
}

func (c *Course) HasLesson(k LessonKey) bool {
	if c == nil || k.Module < 0 || k.Lesson < 0 || k.Module >= len(c.Modules) {
		return false
	}
	return k.Lesson < len(c.Modules[k.Module].Lessons)
}

func (c *Course) Lesson(k LessonKey) (Lesson, bool) {
	if !c.HasLesson(k) {
		return Lesson{}, false
	}
	return c.Modules[k.Module].Lessons[k.Lesson], true
}
