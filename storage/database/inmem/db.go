package inmemdb

import (
	"sync"

	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/core/skill"
)

// DB is an in-memory store, mainly for tests. Tables keep insertion order.
type DB struct {
	mutex sync.RWMutex

	modules        []course.Module
	courses        []course.Course
	sessions       []course.Session
	deadlines      []deadline.Deadline
	skills         []skill.Skill
	confidenceLogs []skill.ConfidenceLog
	objectives     []goal.Objective // without key results
	keyResults     []goal.KeyResult
	entries        []journal.Entry
	caseStudies    []casestudy.CaseStudy
	tokens         []notify.Token
}

func Open() *DB {
	return &DB{}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.modules = nil
	db.courses = nil
	db.sessions = nil
	db.deadlines = nil
	db.skills = nil
	db.confidenceLogs = nil
	db.objectives = nil
	db.keyResults = nil
	db.entries = nil
	db.caseStudies = nil
	db.tokens = nil
}
