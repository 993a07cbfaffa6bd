package inmemdb

import (
	"context"
	"sort"

	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUniqueness(_ context.Context, email, studentID string, excludedUsers ...user.User) error {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	exclUsrsLen := len(excludedUsers)
	if exclUsrsLen > 1 {
		sort.Slice(excludedUsers, func(i, j int) bool { return excludedUsers[i].ID < excludedUsers[j].ID })
	}

	for _, usr := range repo.db.users {
		if isExcluded(*usr, excludedUsers, exclUsrsLen) {
			continue
		}
		if (email != "" && usr.Email == email) || (studentID != "" && usr.StudentID == studentID) {
			return user.ErrUserExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.conflicts(usr) {
		return user.User{}, user.ErrUserExists
	}
	usr.ID = repo.db.nextPK("users")
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if filter.ID != 0 {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if (filter.Email != "" && usr.Email == filter.Email) ||
			(filter.StudentID != "" && usr.StudentID == filter.StudentID) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	origUsr, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if repo.conflicts(usr) {
		return user.User{}, user.ErrUserExists
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	origUsr.Name = usr.Name
	origUsr.Email = usr.Email
	origUsr.StudentID = usr.StudentID
	origUsr.Track = usr.Track
	origUsr.IsInstructor = usr.IsInstructor
	return *origUsr, nil
}

func (repo *userRepository) DeleteUser(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for eid, e := range repo.db.enrollments {
		if e.UserID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	for _, table := range repo.db.completions {
		for cid, c := range table {
			if c.UserID == id {
				delete(table, cid)
			}
		}
	}
	repo.db.deleteDiscussions(func(d *discussion.Discussion) bool { return d.UserID == id })
	for _, c := range repo.db.courses {
		if c.InstructorID != nil && *c.InstructorID == id {
			c.InstructorID = nil
		}
	}
	delete(repo.db.users, id)
	return nil
}

// conflicts reports whether another user has the email or the student ID of usr. The caller holds the lock.
func (repo *userRepository) conflicts(usr user.User) bool {
	for id, other := range repo.db.users {
		if id == usr.ID {
			continue
		}
		if other.Email == usr.Email || (usr.StudentID != "" && other.StudentID == usr.StudentID) {
			return true
		}
	}
	return false
}

func isExcluded(usr user.User, excludedUsers []user.User, n int) bool {
	if n <= 0 {
		return false
	}
	idx := sort.Search(n, func(i int) bool { return excludedUsers[i].ID >= usr.ID })
	return idx < n && excludedUsers[idx].ID == usr.ID
}
