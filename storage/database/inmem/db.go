// Package inmemdb keeps every table in memory. It backs the tests and the `inmem` database engine.
package inmemdb

import (
	"sync"

	"github.com/trezcool/recomendo/core/college"
	"github.com/trezcool/recomendo/core/recommendation"
	"github.com/trezcool/recomendo/core/student"
	"github.com/trezcool/recomendo/core/teacher"
)

// DB guards all tables with a single lock, so a multi-table write is one critical section.
type DB struct {
	mu sync.RWMutex

	teachers map[string]*teacher.Teacher
	colleges map[string]*college.College
	students map[string]*studentRow
	requests map[string]*recommendation.Request
	answers  map[string][]recommendation.Answer // {requestID: answers}
	letters  map[string][]recommendation.Letter // {requestID: letters}
	progress map[string]*recommendation.Progress
}

type studentRow struct {
	student    student.Student
	collegeIDs []string
}

func Open() *DB {
	db := new(DB)
	db.reset()
	return db
}

// Reset drops every row.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.reset()
}

func (db *DB) reset() {
	db.teachers = make(map[string]*teacher.Teacher)
	db.colleges = make(map[string]*college.College)
	db.students = make(map[string]*studentRow)
	db.requests = make(map[string]*recommendation.Request)
	db.answers = make(map[string][]recommendation.Answer)
	db.letters = make(map[string][]recommendation.Letter)
	db.progress = make(map[string]*recommendation.Progress)
}

// SetProgress overwrites a progress record as is, consistent or not.
func (db *DB) SetProgress(p recommendation.Progress) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.progress[p.RequestID] = &p
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return append([]string{}, s...)
}
