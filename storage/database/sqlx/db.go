// Package sqlxrepos implements the repositories on PostgreSQL with sqlx.
package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
)

// dbExecutor is implemented by both *sqlx.DB and *sqlx.Tx.
type dbExecutor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

var (
	_ dbExecutor = (*sqlx.DB)(nil)
	_ dbExecutor = (*sqlx.Tx)(nil)
)

var itemTables = map[course.Kind]string{
	course.KindLab:  "labs",
	course.KindQuiz: "quizzes",
	course.KindExam: "exams",
}

func itemTable(kind course.Kind) (string, error) {
	if t, ok := itemTables[kind]; ok {
		return t, nil
	}
	return "", errors.Errorf("unknown item kind %q", kind)
}

func completionTable(kind course.Kind) (string, error) {
	if _, ok := itemTables[kind]; ok {
		return fmt.Sprintf("%s_completions", kind), nil
	}
	return "", errors.Errorf("unknown item kind %q", kind)
}

func discussionTable(board discussion.Board) (string, error) {
	switch board {
	case discussion.BoardCourse:
		return "discussions", nil
	case discussion.BoardLab, discussion.BoardQuiz, discussion.BoardExam:
		return fmt.Sprintf("%s_discussions", board), nil
	}
	return "", errors.Errorf("unknown discussion board %q", board)
}

// withTx runs fn in a transaction, committed if fn returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing transaction")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func execAll(ctx context.Context, exec dbExecutor, queries []string, args ...interface{}) error {
	for _, q := range queries {
		if _, err := exec.ExecContext(ctx, q, args...); err != nil {
			return errors.Wrapf(err, "executing %q", q)
		}
	}
	return nil
}
