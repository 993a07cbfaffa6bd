package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/discussion"
)

type discussionRepository struct {
	db *sqlx.DB
}

var _ discussion.Repository = (*discussionRepository)(nil)

func NewDiscussionRepository(db *sqlx.DB) discussion.Repository {
	return &discussionRepository{db: db}
}

func selectDiscussions(table string) string {
	return fmt.Sprintf(`
		SELECT d.id, d.parent_id, d.user_id, u.email AS user_email, d.content, d.timestamp
		FROM %s d JOIN users u ON u.id = d.user_id`, table)
}

func (repo *discussionRepository) CreateDiscussion(ctx context.Context, d discussion.Discussion) (discussion.Discussion, error) {
	t, err := discussionTable(d.Board)
	if err != nil {
		return discussion.Discussion{}, err
	}
	q := fmt.Sprintf("INSERT INTO %s (parent_id, user_id, content, timestamp) VALUES ($1, $2, $3, $4) RETURNING id", t)
	if err = repo.db.GetContext(ctx, &d.ID, q, d.ParentID, d.UserID, d.Content, d.Timestamp); err != nil {
		return discussion.Discussion{}, errors.Wrap(err, "inserting discussion")
	}
	return repo.GetDiscussion(ctx, d.Board, d.ID)
}

func (repo *discussionRepository) GetDiscussion(ctx context.Context, board discussion.Board, id int) (discussion.Discussion, error) {
	t, err := discussionTable(board)
	if err != nil {
		return discussion.Discussion{}, discussion.ErrNotFound
	}

	var d discussion.Discussion
	if err = repo.db.GetContext(ctx, &d, selectDiscussions(t)+" WHERE d.id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return discussion.Discussion{}, discussion.ErrNotFound
		}
		return discussion.Discussion{}, errors.Wrap(err, "selecting discussion")
	}
	d.Board = board
	d.Timestamp = d.Timestamp.UTC()
	return d, nil
}

func (repo *discussionRepository) QueryDiscussions(ctx context.Context, board discussion.Board, parentID int) ([]discussion.Discussion, error) {
	t, err := discussionTable(board)
	if err != nil {
		return nil, err
	}

	discussions := make([]discussion.Discussion, 0)
	q := selectDiscussions(t) + " WHERE d.parent_id = $1 ORDER BY d.timestamp DESC, d.id DESC"
	if err = repo.db.SelectContext(ctx, &discussions, q, parentID); err != nil {
		return nil, errors.Wrap(err, "selecting discussions")
	}
	for i := range discussions {
		discussions[i].Board = board
		discussions[i].Timestamp = discussions[i].Timestamp.UTC()
	}
	return discussions, nil
}

func (repo *discussionRepository) UpdateDiscussion(ctx context.Context, d discussion.Discussion) (discussion.Discussion, error) {
	t, err := discussionTable(d.Board)
	if err != nil {
		return discussion.Discussion{}, err
	}
	res, err := repo.db.ExecContext(ctx, fmt.Sprintf("UPDATE %s SET content = $2 WHERE id = $1", t), d.ID, d.Content)
	if err != nil {
		return discussion.Discussion{}, errors.Wrap(err, "updating discussion")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return discussion.Discussion{}, discussion.ErrNotFound
	}
	return repo.GetDiscussion(ctx, d.Board, d.ID)
}

func (repo *discussionRepository) DeleteDiscussion(ctx context.Context, board discussion.Board, id int) error {
	t, err := discussionTable(board)
	if err != nil {
		return err
	}
	res, err := repo.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", t), id)
	if err != nil {
		return errors.Wrap(err, "deleting discussion")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return discussion.ErrNotFound
	}
	return nil
}
