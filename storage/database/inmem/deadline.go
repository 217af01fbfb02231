package inmemdb

import (
	"context"

	"github.com/trezcool/mbatrack/core/deadline"
)

type deadlineRepository struct {
	db *DB
}

var _ deadline.Repository = (*deadlineRepository)(nil)

func NewDeadlineRepository(db *DB) deadline.Repository {
	return &deadlineRepository{db: db}
}

// withCourse joins the deadline course, like the SQL repository does.
func (db *DB) withCourse(d deadline.Deadline) deadline.Deadline {
	d.Course = nil
	if d.CourseID.Valid {
		if c, err := db.getCourse(d.CourseID.String); err == nil {
			d.Course = &deadline.CourseRef{ID: c.ID, Code: c.Code, Title: c.Title}
		}
	}
	return d
}

func (db *DB) deadlineIndex(id string) int {
	for i, d := range db.deadlines {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (repo *deadlineRepository) CreateDeadline(_ context.Context, d deadline.Deadline) (deadline.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	d.Course = nil
	repo.db.deadlines = append(repo.db.deadlines, d)
	return repo.db.withCourse(d), nil
}

func (repo *deadlineRepository) UpdateDeadline(_ context.Context, d deadline.Deadline) (deadline.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.deadlineIndex(d.ID)
	if i < 0 {
		return deadline.Deadline{}, deadline.ErrNotFound
	}
	orig := repo.db.deadlines[i]
	d.IsCompleted = orig.IsCompleted
	d.CreatedAt = orig.CreatedAt
	d.Course = nil
	repo.db.deadlines[i] = d
	return repo.db.withCourse(d), nil
}

func (repo *deadlineRepository) DeleteDeadline(_ context.Context, id string) (deadline.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.deadlineIndex(id)
	if i < 0 {
		return deadline.Deadline{}, deadline.ErrNotFound
	}
	d := repo.db.withCourse(repo.db.deadlines[i])
	repo.db.deadlines = append(repo.db.deadlines[:i], repo.db.deadlines[i+1:]...)
	return d, nil
}

func (repo *deadlineRepository) SetDeadlineCompleted(_ context.Context, id string, completed bool) (deadline.Deadline, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.deadlineIndex(id)
	if i < 0 {
		return deadline.Deadline{}, deadline.ErrNotFound
	}
	repo.db.deadlines[i].IsCompleted = completed
	return repo.db.withCourse(repo.db.deadlines[i]), nil
}

func (repo *deadlineRepository) GetDeadline(_ context.Context, id string) (deadline.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	i := repo.db.deadlineIndex(id)
	if i < 0 {
		return deadline.Deadline{}, deadline.ErrNotFound
	}
	return repo.db.withCourse(repo.db.deadlines[i]), nil
}

func (repo *deadlineRepository) QueryDeadlines(_ context.Context, filter deadline.QueryFilter) ([]deadline.Deadline, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	deadlines := make([]deadline.Deadline, 0)
	for _, d := range repo.db.deadlines {
		switch {
		case filter.CourseID != "" && d.CourseID.String != filter.CourseID:
			continue
		case filter.OpenOnly && d.IsCompleted:
			continue
		case !filter.DueFrom.IsZero() && d.DueDate.Before(filter.DueFrom):
			continue
		case !filter.DueTo.IsZero() && d.DueDate.After(filter.DueTo):
			continue
		}
		deadlines = append(deadlines, repo.db.withCourse(d))
	}
	deadline.Sort(deadlines)
	if filter.Limit > 0 && len(deadlines) > filter.Limit {
		deadlines = deadlines[:filter.Limit]
	}
	return deadlines, nil
}

func (repo *deadlineRepository) GetCourseRef(_ context.Context, courseID string) (deadline.CourseRef, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c, err := repo.db.getCourse(courseID)
	if err != nil {
		return deadline.CourseRef{}, deadline.ErrCourseNotFound
	}
	return deadline.CourseRef{ID: c.ID, Code: c.Code, Title: c.Title}, nil
}
