package course

import (
	"github.com/labtrack/backend/core"
)

// Kind is the kind of content Item a course owns.
type Kind string

const (
	KindLab  Kind = "lab"
	KindQuiz Kind = "quiz"
	KindExam Kind = "exam"
)

var Kinds = []Kind{KindLab, KindQuiz, KindExam}

func (k Kind) Valid() bool {
	switch k {
	case KindLab, KindQuiz, KindExam:
		return true
	}
	return false
}

type Course struct {
	ID           int    `json:"id" db:"id"`
	Title        string `json:"title" db:"title"`
	Description  string `json:"description" db:"description"`
	InstructorID *int   `json:"instructor_id" db:"instructor_id"`
}

// Detail is a Course with the IDs of its enrolled users.
type Detail struct {
	Course
	EnrolledUsers []int `json:"enrolled_users"`
}

// Item is a Lab, a Quiz or an Exam.
type Item struct {
	ID          int    `json:"id" db:"id"`
	CourseID    int    `json:"-" db:"course_id"`
	Kind        Kind   `json:"-" db:"-"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
}

// ItemCounts holds the number of items per Kind of a course.
type ItemCounts map[Kind]int

func (c ItemCounts) Total() int {
	var total int
	for _, n := range c {
		total += n
	}
	return total
}

// NewCourse contains information needed to create a Course and, optionally, its items.
type NewCourse struct {
	Title        string    `json:"title" yaml:"title" validate:"required"`
	Description  string    `json:"description" yaml:"description"`
	InstructorID *int      `json:"instructor_id" yaml:"-"`
	Labs         []NewItem `json:"labs" yaml:"labs" validate:"dive"`
	Quizzes      []NewItem `json:"quizzes" yaml:"quizzes" validate:"dive"`
	Exams        []NewItem `json:"exams" yaml:"exams" validate:"dive"`
}

type NewItem struct {
	Title       string `json:"title" yaml:"title" validate:"required"`
	Description string `json:"description" yaml:"description"`
}

func (nc *NewCourse) Clean() {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	for _, items := range [][]NewItem{nc.Labs, nc.Quizzes, nc.Exams} {
		for i := range items {
			items[i].Title = core.CleanString(items[i].Title)
			items[i].Description = core.CleanString(items[i].Description)
		}
	}
}

func (nc NewCourse) items() map[Kind][]NewItem {
	return map[Kind][]NewItem{KindLab: nc.Labs, KindQuiz: nc.Quizzes, KindExam: nc.Exams}
}
