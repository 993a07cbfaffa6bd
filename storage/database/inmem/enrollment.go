package inmemdb

import (
	"context"
	"sort"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil)

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) CreateEnrollment(_ context.Context, e enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.find(e.UserID, e.CourseID); ok {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	e.ID = repo.db.nextPK("enrollments")
	repo.db.enrollments[e.ID] = &e
	return e, nil
}

func (repo *enrollmentRepository) find(userID, courseID int) (*enrollment.Enrollment, bool) {
	for _, e := range repo.db.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return e, true
		}
	}
	return nil, false
}

func (repo *enrollmentRepository) GetEnrollment(_ context.Context, userID, courseID int) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if e, ok := repo.find(userID, courseID); ok {
		return *e, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) QueryEnrollments(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]enrollment.Enrollment, 0)
	for _, e := range repo.db.enrollments {
		if filter.UserID != 0 && e.UserID != filter.UserID {
			continue
		}
		if filter.CourseID != 0 && e.CourseID != filter.CourseID {
			continue
		}
		enrollments = append(enrollments, *e)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *enrollmentRepository) UpdateProgress(_ context.Context, id, progress int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e, ok := repo.db.enrollments[id]
	if !ok {
		return enrollment.ErrNotFound
	}
	e.Progress = progress
	return nil
}

func (repo *enrollmentRepository) UpsertCompletion(_ context.Context, c enrollment.Completion) (enrollment.Completion, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	table := repo.db.completions[c.Kind]
	for _, existing := range table {
		if existing.UserID == c.UserID && existing.ItemID == c.ItemID {
			existing.IsComplete = c.IsComplete
			return *existing, nil
		}
	}
	c.ID = repo.db.nextPK(string(c.Kind) + "_completions")
	table[c.ID] = &c
	return c, nil
}

func (repo *enrollmentRepository) QueryCompletions(_ context.Context, kind course.Kind, userID, courseID int) ([]enrollment.Completion, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	completions := make([]enrollment.Completion, 0)
	for _, c := range repo.db.completions[kind] {
		if c.UserID != userID {
			continue
		}
		if item, ok := repo.db.items[kind][c.ItemID]; ok && item.CourseID == courseID {
			completions = append(completions, *c)
		}
	}
	return completions, nil
}

func (repo *enrollmentRepository) CountCompleted(_ context.Context, userID, courseID int) (course.ItemCounts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(course.ItemCounts, len(course.Kinds))
	for kind, table := range repo.db.completions {
		for _, c := range table {
			if c.UserID != userID || !c.IsComplete {
				continue
			}
			if item, ok := repo.db.items[kind][c.ItemID]; ok && item.CourseID == courseID {
				counts[kind]++
			}
		}
	}
	return counts, nil
}
