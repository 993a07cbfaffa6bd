package inmemdb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course, items []course.Item) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, item := range items {
		if !item.Kind.Valid() {
			return course.Course{}, errors.Errorf("unknown item kind %q", item.Kind)
		}
	}
	c.ID = repo.db.nextPK("courses")
	repo.db.courses[c.ID] = &c
	for _, item := range items {
		item := item
		item.CourseID = c.ID
		item.ID = repo.db.nextPK(string(item.Kind))
		repo.db.items[item.Kind][item.ID] = &item
	}
	return c, nil
}

func (repo *courseRepository) QueryCourses(_ context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, *c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id int) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return *c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for kind, items := range repo.db.items {
		board := discussion.BoardOf(kind)
		completions := repo.db.completions[kind]
		for itemID, item := range items {
			if item.CourseID != id {
				continue
			}
			repo.db.deleteDiscussions(func(d *discussion.Discussion) bool {
				return d.Board == board && d.ParentID == itemID
			})
			for cid, c := range completions {
				if c.ItemID == itemID {
					delete(completions, cid)
				}
			}
			delete(items, itemID)
		}
	}
	repo.db.deleteDiscussions(func(d *discussion.Discussion) bool {
		return d.Board == discussion.BoardCourse && d.ParentID == id
	})
	for eid, e := range repo.db.enrollments {
		if e.CourseID == id {
			delete(repo.db.enrollments, eid)
		}
	}
	delete(repo.db.courses, id)
	return nil
}

func (repo *courseRepository) CreateItem(_ context.Context, item course.Item) (course.Item, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[item.CourseID]; !ok {
		return course.Item{}, course.ErrNotFound
	}
	item.ID = repo.db.nextPK(string(item.Kind))
	repo.db.items[item.Kind][item.ID] = &item
	return item, nil
}

func (repo *courseRepository) GetItem(_ context.Context, kind course.Kind, id int) (course.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if item, ok := repo.db.items[kind][id]; ok {
		return *item, nil
	}
	return course.Item{}, course.ErrItemNotFound
}

func (repo *courseRepository) QueryItems(_ context.Context, kind course.Kind, courseID int) ([]course.Item, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]course.Item, 0)
	for _, item := range repo.db.items[kind] {
		if item.CourseID == courseID {
			items = append(items, *item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (repo *courseRepository) CountItems(_ context.Context, courseID int) (course.ItemCounts, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(course.ItemCounts, len(course.Kinds))
	for kind, items := range repo.db.items {
		for _, item := range items {
			if item.CourseID == courseID {
				counts[kind]++
			}
		}
	}
	return counts, nil
}
