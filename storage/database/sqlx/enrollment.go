package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/enrollment"
)

const enrollmentColumns = "id, user_id, course_id, progress, date_enrolled"

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *sqlx.DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	err := repo.db.GetContext(ctx, &e.ID, `
		INSERT INTO enrollments (user_id, course_id, progress, date_enrolled)
		VALUES ($1, $2, $3, $4) RETURNING id`,
		e.UserID, e.CourseID, e.Progress, e.DateEnrolled,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return e, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, userID, courseID int) (enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	q := fmt.Sprintf("SELECT %s FROM enrollments WHERE user_id = $1 AND course_id = $2", enrollmentColumns)
	if err := repo.db.GetContext(ctx, &e, q, userID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "selecting enrollment")
	}
	e.DateEnrolled = e.DateEnrolled.UTC()
	return e, nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	enrollments := make([]enrollment.Enrollment, 0)
	q := fmt.Sprintf(`
		SELECT %s FROM enrollments
		WHERE ($1 = 0 OR user_id = $1) AND ($2 = 0 OR course_id = $2)
		ORDER BY id`, enrollmentColumns)
	if err := repo.db.SelectContext(ctx, &enrollments, q, filter.UserID, filter.CourseID); err != nil {
		return nil, errors.Wrap(err, "selecting enrollments")
	}
	for i := range enrollments {
		enrollments[i].DateEnrolled = enrollments[i].DateEnrolled.UTC()
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) UpdateProgress(ctx context.Context, id, progress int) error {
	res, err := repo.db.ExecContext(ctx, "UPDATE enrollments SET progress = $2 WHERE id = $1", id, progress)
	if err != nil {
		return errors.Wrap(err, "updating progress")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.ErrNotFound
	}
	return nil
}

// UpsertCompletion inserts the (user, item) completion, or updates it when it already exists.
func (repo *enrollmentRepository) UpsertCompletion(ctx context.Context, c enrollment.Completion) (enrollment.Completion, error) {
	t, err := completionTable(c.Kind)
	if err != nil {
		return enrollment.Completion{}, err
	}

	q := fmt.Sprintf(`
		INSERT INTO %s (user_id, item_id, is_complete) VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET is_complete = EXCLUDED.is_complete
		RETURNING id`, t)
	if err = repo.db.GetContext(ctx, &c.ID, q, c.UserID, c.ItemID, c.IsComplete); err != nil {
		return enrollment.Completion{}, errors.Wrap(err, "upserting completion")
	}
	return c, nil
}

func (repo *enrollmentRepository) QueryCompletions(ctx context.Context, kind course.Kind, userID, courseID int) ([]enrollment.Completion, error) {
	items, err := itemTable(kind)
	if err != nil {
		return nil, err
	}
	completions, _ := completionTable(kind)

	res := make([]enrollment.Completion, 0)
	q := fmt.Sprintf(`
		SELECT c.id, c.user_id, c.item_id, c.is_complete FROM %s c
		JOIN %s i ON i.id = c.item_id
		WHERE c.user_id = $1 AND i.course_id = $2`, completions, items)
	if err = repo.db.SelectContext(ctx, &res, q, userID, courseID); err != nil {
		return nil, errors.Wrapf(err, "selecting %s completions", kind)
	}
	for i := range res {
		res[i].Kind = kind
	}
	return res, nil
}

func (repo *enrollmentRepository) CountCompleted(ctx context.Context, userID, courseID int) (course.ItemCounts, error) {
	counts := make(course.ItemCounts, len(course.Kinds))
	for _, kind := range course.Kinds {
		items, _ := itemTable(kind)
		completions, _ := completionTable(kind)
		q := fmt.Sprintf(`
			SELECT COUNT(*) FROM %s c
			JOIN %s i ON i.id = c.item_id
			WHERE c.user_id = $1 AND i.course_id = $2 AND c.is_complete`, completions, items)

		var n int
		if err := repo.db.GetContext(ctx, &n, q, userID, courseID); err != nil {
			return nil, errors.Wrapf(err, "counting %s completions", kind)
		}
		counts[kind] = n
	}
	return counts, nil
}
