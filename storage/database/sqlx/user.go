package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/user"
)

const userColumns = "id, name, email, student_id, track, is_instructor, password_hash, created_at"

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(ctx context.Context, email, studentID string, excludedUsers ...user.User) error {
	excludedIDs := make([]int64, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, int64(usr.ID))
	}

	var count int
	err := repo.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM users
		WHERE ((email = $1 AND $1 <> '') OR (student_id = $2 AND $2 <> ''))
		AND NOT (id = ANY($3))`,
		email, studentID, pq.Array(excludedIDs),
	)
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	if count > 0 {
		return user.ErrUserExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	err := repo.db.GetContext(ctx, &usr.ID, `
		INSERT INTO users (name, email, student_id, track, is_instructor, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		usr.Name, usr.Email, usr.StudentID, usr.Track, usr.IsInstructor, usr.PasswordHash, usr.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	var (
		where string
		arg   interface{}
	)
	switch {
	case filter.ID != 0:
		where, arg = "id = $1", filter.ID
	case filter.Email != "":
		where, arg = "email = $1", filter.Email
	case filter.StudentID != "":
		where, arg = "student_id = $1", filter.StudentID
	default:
		return user.User{}, user.ErrNotFound
	}

	var usr user.User
	q := fmt.Sprintf("SELECT %s FROM users WHERE %s", userColumns, where)
	if err := repo.db.GetContext(ctx, &usr, q, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "selecting user")
	}
	usr.CreatedAt = usr.CreatedAt.UTC()
	return usr, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE users SET name = $2, email = $3, student_id = $4, track = $5, is_instructor = $6,
		password_hash = COALESCE($7, password_hash)
		WHERE id = $1`,
		usr.ID, usr.Name, usr.Email, usr.StudentID, usr.Track, usr.IsInstructor, usr.PasswordHash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUser(ctx, user.GetFilter{ID: usr.ID})
}

// DeleteUser removes the user with its completions, discussions and enrollments in one transaction.
func (repo *userRepository) DeleteUser(ctx context.Context, id int) error {
	queries := make([]string, 0, 10)
	for _, kind := range course.Kinds {
		t, _ := completionTable(kind)
		queries = append(queries, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", t))
	}
	for _, board := range discussion.Boards {
		t, _ := discussionTable(board)
		queries = append(queries, fmt.Sprintf("DELETE FROM %s WHERE user_id = $1", t))
	}
	queries = append(queries,
		"DELETE FROM enrollments WHERE user_id = $1",
		"UPDATE courses SET instructor_id = NULL WHERE instructor_id = $1",
		"DELETE FROM users WHERE id = $1",
	)

	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		return execAll(ctx, tx, queries, id)
	})
}
