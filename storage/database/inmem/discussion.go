package inmemdb

import (
	"context"
	"sort"

	"github.com/labtrack/backend/core/discussion"
)

type discussionRepository struct {
	db *DB
}

var _ discussion.Repository = (*discussionRepository)(nil)

func NewDiscussionRepository(db *DB) discussion.Repository {
	return &discussionRepository{db: db}
}

func (repo *discussionRepository) CreateDiscussion(_ context.Context, d discussion.Discussion) (discussion.Discussion, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d.ID = repo.db.nextPK(string(d.Board) + "_discussions")
	d.UserEmail = ""
	repo.db.discussions[d.Board][d.ID] = &d
	return repo.withEmail(d), nil
}

// withEmail must be called with the lock held.
func (repo *discussionRepository) withEmail(d discussion.Discussion) discussion.Discussion {
	if usr, ok := repo.db.users[d.UserID]; ok {
		d.UserEmail = usr.Email
	}
	return d
}

func (repo *discussionRepository) GetDiscussion(_ context.Context, board discussion.Board, id int) (discussion.Discussion, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if d, ok := repo.db.discussions[board][id]; ok {
		return repo.withEmail(*d), nil
	}
	return discussion.Discussion{}, discussion.ErrNotFound
}

func (repo *discussionRepository) QueryDiscussions(_ context.Context, board discussion.Board, parentID int) ([]discussion.Discussion, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	discussions := make([]discussion.Discussion, 0)
	for _, d := range repo.db.discussions[board] {
		if d.ParentID == parentID {
			discussions = append(discussions, repo.withEmail(*d))
		}
	}
	sort.Slice(discussions, func(i, j int) bool {
		if discussions[i].Timestamp.Equal(discussions[j].Timestamp) {
			return discussions[i].ID > discussions[j].ID
		}
		return discussions[i].Timestamp.After(discussions[j].Timestamp)
	})
	return discussions, nil
}

func (repo *discussionRepository) UpdateDiscussion(_ context.Context, d discussion.Discussion) (discussion.Discussion, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.discussions[d.Board][d.ID]
	if !ok {
		return discussion.Discussion{}, discussion.ErrNotFound
	}
	orig.Content = d.Content
	return repo.withEmail(*orig), nil
}

func (repo *discussionRepository) DeleteDiscussion(_ context.Context, board discussion.Board, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.discussions[board][id]; !ok {
		return discussion.ErrNotFound
	}
	delete(repo.db.discussions[board], id)
	return nil
}
