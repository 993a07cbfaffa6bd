// Package inmemdb implements the repositories on in-memory tables.
// It backs the tests and the "memory" database engine.
package inmemdb

import (
	"sync"

	"github.com/labtrack/backend/core/course"
	"github.com/labtrack/backend/core/discussion"
	"github.com/labtrack/backend/core/enrollment"
	"github.com/labtrack/backend/core/user"
)

type (
	// DB guards all its tables with a single lock so cascades are atomic.
	DB struct {
		mutex  sync.RWMutex
		pkSeqs map[string]int

		users       map[int]*user.User
		courses     map[int]*course.Course
		items       map[course.Kind]map[int]*course.Item
		enrollments map[int]*enrollment.Enrollment
		completions map[course.Kind]map[int]*enrollment.Completion
		discussions map[discussion.Board]map[int]*discussion.Discussion
	}
)

func Open() *DB {
	db := &DB{
		pkSeqs:      make(map[string]int),
		users:       make(map[int]*user.User),
		courses:     make(map[int]*course.Course),
		items:       make(map[course.Kind]map[int]*course.Item),
		enrollments: make(map[int]*enrollment.Enrollment),
		completions: make(map[course.Kind]map[int]*enrollment.Completion),
		discussions: make(map[discussion.Board]map[int]*discussion.Discussion),
	}
	for _, kind := range course.Kinds {
		db.items[kind] = make(map[int]*course.Item)
		db.completions[kind] = make(map[int]*enrollment.Completion)
	}
	for _, board := range discussion.Boards {
		db.discussions[board] = make(map[int]*discussion.Discussion)
	}
	return db
}

// nextPK must be called with the write lock held.
func (db *DB) nextPK(table string) int {
	db.pkSeqs[table]++
	return db.pkSeqs[table]
}

// deleteDiscussions must be called with the write lock held.
func (db *DB) deleteDiscussions(match func(d *discussion.Discussion) bool) {
	for _, table := range db.discussions {
		for id, d := range table {
			if match(d) {
				delete(table, id)
			}
		}
	}
}
