package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/mbatrack/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateModule(_ context.Context, mod course.Module) (course.Module, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.modules = append(repo.db.modules, mod)
	return mod, nil
}

func (repo *courseRepository) QueryModules(context.Context) ([]course.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	mods := append([]course.Module{}, repo.db.modules...)
	sort.SliceStable(mods, func(i, j int) bool { return mods[i].Title < mods[j].Title })
	return mods, nil
}

func (repo *courseRepository) GetModule(_ context.Context, id string) (course.Module, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, mod := range repo.db.modules {
		if mod.ID == id {
			return mod, nil
		}
	}
	return course.Module{}, course.ErrModuleNotFound
}

func (repo *courseRepository) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.courses = append(repo.db.courses, c)
	return c, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, c course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, orig := range repo.db.courses {
		if orig.ID == c.ID {
			c.CreatedAt = orig.CreatedAt
			repo.db.courses[i] = c
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCourses(context.Context) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := append([]course.Course{}, repo.db.courses...)
	sort.SliceStable(courses, func(i, j int) bool { return courses[i].Code < courses[j].Code })
	return courses, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.db.getCourse(id)
}

func (db *DB) getCourse(id string) (course.Course, error) {
	for _, c := range db.courses {
		if c.ID == id {
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseByCode(_ context.Context, code string) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, c := range repo.db.courses {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) CreateSession(_ context.Context, s course.Session) (course.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.sessions = append(repo.db.sessions, s)
	return s, nil
}

func (repo *courseRepository) QuerySessions(_ context.Context, courseIDs ...string) ([]course.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := make(map[string]bool, len(courseIDs))
	for _, id := range courseIDs {
		wanted[id] = true
	}
	sessions := make([]course.Session, 0)
	// newest inserted first on equal dates
	for i := len(repo.db.sessions) - 1; i >= 0; i-- {
		s := repo.db.sessions[i]
		if len(wanted) == 0 || wanted[s.CourseID] {
			sessions = append(sessions, s)
		}
	}
	sort.SliceStable(sessions, func(i, j int) bool { return sessions[i].Date.After(sessions[j].Date) })
	return sessions, nil
}

func (repo *courseRepository) DeleteSession(_ context.Context, id string) (course.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, s := range repo.db.sessions {
		if s.ID == id {
			repo.db.sessions = append(repo.db.sessions[:i], repo.db.sessions[i+1:]...)
			return s, nil
		}
	}
	return course.Session{}, course.ErrSessionNotFound
}
