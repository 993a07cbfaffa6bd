package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

// CreateCourse inserts the course and its items in one transaction.
func (repo *courseRepository) CreateCourse(ctx context.Context, c course.Course, items []course.Item) (course.Course, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &c.ID,
			"INSERT INTO courses (title, description, instructor_id) VALUES ($1, $2, $3) RETURNING id",
			c.Title, c.Description, c.InstructorID,
		)
		if err != nil {
			return errors.Wrap(err, "inserting course")
		}
		for _, item := range items {
			item.CourseID = c.ID
			if _, err = insertItem(ctx, tx, item); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, "SELECT id, title, description, instructor_id FROM courses ORDER BY id"); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int) (course.Course, error) {
	var c course.Course
	err := repo.db.GetContext(ctx, &c, "SELECT id, title, description, instructor_id FROM courses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Course{}, course.ErrNotFound
		}
		return course.Course{}, errors.Wrap(err, "selecting course")
	}
	return c, nil
}

// DeleteCourse removes, in one transaction, the discussions and completions of the
// course items, the items, the course discussions, the enrollments, then the course.
func (repo *courseRepository) DeleteCourse(ctx context.Context, id int) error {
	queries := make([]string, 0, 12)
	for _, kind := range course.Kinds {
		items, _ := itemTable(kind)
		completions, _ := completionTable(kind)
		discussions, _ := discussionTable(discussion.BoardOf(kind))
		queries = append(queries,
			fmt.Sprintf("DELETE FROM %s WHERE parent_id IN (SELECT id FROM %s WHERE course_id = $1)", discussions, items),
			fmt.Sprintf("DELETE FROM %s WHERE item_id IN (SELECT id FROM %s WHERE course_id = $1)", completions, items),
			fmt.Sprintf("DELETE FROM %s WHERE course_id = $1", items),
		)
	}
	queries = append(queries,
		"DELETE FROM discussions WHERE parent_id = $1",
		"DELETE FROM enrollments WHERE course_id = $1",
		"DELETE FROM courses WHERE id = $1",
	)

	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		return execAll(ctx, tx, queries, id)
	})
}

func (repo *courseRepository) CreateItem(ctx context.Context, item course.Item) (course.Item, error) {
	return insertItem(ctx, repo.db, item)
}

func insertItem(ctx context.Context, exec dbExecutor, item course.Item) (course.Item, error) {
	t, err := itemTable(item.Kind)
	if err != nil {
		return course.Item{}, err
	}
	q := fmt.Sprintf("INSERT INTO %s (course_id, title, description) VALUES ($1, $2, $3) RETURNING id", t)
	if err = exec.GetContext(ctx, &item.ID, q, item.CourseID, item.Title, item.Description); err != nil {
		return course.Item{}, errors.Wrapf(err, "inserting %s %q", item.Kind, item.Title)
	}
	return item, nil
}

func (repo *courseRepository) GetItem(ctx context.Context, kind course.Kind, id int) (course.Item, error) {
	t, err := itemTable(kind)
	if err != nil {
		return course.Item{}, course.ErrItemNotFound
	}

	var item course.Item
	q := fmt.Sprintf("SELECT id, course_id, title, description FROM %s WHERE id = $1", t)
	if err = repo.db.GetContext(ctx, &item, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return course.Item{}, course.ErrItemNotFound
		}
		return course.Item{}, errors.Wrapf(err, "selecting %s", kind)
	}
	item.Kind = kind
	return item, nil
}

func (repo *courseRepository) QueryItems(ctx context.Context, kind course.Kind, courseID int) ([]course.Item, error) {
	t, err := itemTable(kind)
	if err != nil {
		return nil, err
	}

	items := make([]course.Item, 0)
	q := fmt.Sprintf("SELECT id, course_id, title, description FROM %s WHERE course_id = $1 ORDER BY id", t)
	if err = repo.db.SelectContext(ctx, &items, q, courseID); err != nil {
		return nil, errors.Wrapf(err, "selecting %s items", kind)
	}
	for i := range items {
		items[i].Kind = kind
	}
	return items, nil
}

func (repo *courseRepository) CountItems(ctx context.Context, courseID int) (course.ItemCounts, error) {
	counts := make(course.ItemCounts, len(course.Kinds))
	for _, kind := range course.Kinds {
		t, _ := itemTable(kind)
		var n int
		if err := repo.db.GetContext(ctx, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE course_id = $1", t), courseID); err != nil {
			return nil, errors.Wrapf(err, "counting %s items", kind)
		}
		counts[kind] = n
	}
	return counts, nil
}
