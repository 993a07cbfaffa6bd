package discussion

import (
	"time"
	"unicode/utf8"

	"github.com/labtrack/backend/core/course"
)

// Board is the kind of content a Discussion is attached to.
type Board string

const (
	BoardCourse Board = "course"
	BoardLab    Board = "lab"
	BoardQuiz   Board = "quiz"
	BoardExam   Board = "exam"
)

var Boards = []Board{BoardCourse, BoardLab, BoardQuiz, BoardExam}

// BoardOf returns the board of the discussions of an item Kind.
func BoardOf(kind course.Kind) Board {
	return Board(kind)
}

// MinContentLen is the minimum number of characters of a Discussion's content.
func (b Board) MinContentLen() int {
	if b == BoardCourse {
		return 15
	}
	return 5
}

func (b Board) checkContent(content string) bool {
	return utf8.RuneCountInString(content) >= b.MinContentLen()
}

type Discussion struct {
	ID        int       `json:"id" db:"id"`
	Board     Board     `json:"-" db:"-"`
	ParentID  int       `json:"-" db:"parent_id"` // course or item id, depending on Board
	UserID    int       `json:"-" db:"user_id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	Content   string    `json:"content" db:"content"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // UTC
}

// AssertOwner reports whether the user authored the discussion.
func AssertOwner(d Discussion, userID int) bool {
	return d.UserID == userID
}

// NewCourseDiscussion is the payload of a course board post.
type NewCourseDiscussion struct {
	CourseID int    `json:"course_id" validate:"required"`
	Content  string `json:"content"`
}

// Content is the payload of an item board post and of every update.
type Content struct {
	Content string `json:"content"`
}
