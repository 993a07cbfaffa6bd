package enrollment

import (
	"time"

	"github.com/labtrack/backend/core/course"
)

type Enrollment struct {
	ID           int       `json:"id" db:"id"`
	UserID       int       `json:"-" db:"user_id"`
	CourseID     int       `json:"course_id" db:"course_id"`
	Progress     int       `json:"progress" db:"progress"`
	DateEnrolled time.Time `json:"date_enrolled" db:"date_enrolled"` // UTC
}

// NewEnrollment is the payload of an enrollment request.
type NewEnrollment struct {
	CourseID int `json:"course_id" validate:"required"`
}

// Completion is a row of a completion ledger: at most one per (user, item).
type Completion struct {
	ID         int         `db:"id"`
	Kind       course.Kind `db:"-"`
	UserID     int         `db:"user_id"`
	ItemID     int         `db:"item_id"`
	IsComplete bool        `db:"is_complete"`
}

// CompletionUpdate is the payload of a completion request. IsComplete defaults to true.
type CompletionUpdate struct {
	IsComplete *bool `json:"is_complete"`
}

func (cu CompletionUpdate) Value() bool {
	if cu.IsComplete == nil {
		return true
	}
	return *cu.IsComplete
}

// ItemStatus is a course Item with the completion flag of a user merged in.
type ItemStatus struct {
	course.Item
	IsComplete bool `json:"is_complete"`
}

type QueryFilter struct {
	UserID   int
	CourseID int
}
