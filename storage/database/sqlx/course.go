package sqlxrepos

import (
	"context"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/course"
)

type courseRepository struct {
	db core.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db core.DB) course.Repository {
	return &courseRepository{db: db}
}

func (repo courseRepository) CreateModule(ctx context.Context, mod course.Module) (course.Module, error) {
	q := `INSERT INTO modules (id, title, semester, created_at) VALUES (:id, :title, :semester, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, mod); err != nil {
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo courseRepository) QueryModules(ctx context.Context) ([]course.Module, error) {
	mods := make([]course.Module, 0)
	if err := repo.db.SelectContext(ctx, &mods, `SELECT * FROM modules ORDER BY title`); err != nil {
		return nil, errors.Wrap(err, "selecting modules")
	}
	return mods, nil
}

func (repo courseRepository) GetModule(ctx context.Context, id string) (course.Module, error) {
	var mod course.Module
	err := repo.db.GetContext(ctx, &mod, `SELECT * FROM modules WHERE id = $1`, id)
	if err != nil {
		return course.Module{}, trapNoRowsErr(err, course.ErrModuleNotFound, "selecting module")
	}
	return mod, nil
}

func (repo courseRepository) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `
		INSERT INTO courses (id, title, code, professor, term, total_scheduled_sessions, mandatory_attendance_percentage, module_id, created_at)
		VALUES (:id, :title, :code, :professor, :term, :total_scheduled_sessions, :mandatory_attendance_percentage, :module_id, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, c); err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return c, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	q := `
		UPDATE courses SET
			title = $2, code = $3, professor = $4, term = $5,
			total_scheduled_sessions = $6, mandatory_attendance_percentage = $7, module_id = $8
		WHERE id = $1
		RETURNING *`
	var updated course.Course
	err := repo.db.GetContext(
		ctx, &updated, q,
		c.ID, c.Title, c.Code, c.Professor, c.Term, c.TotalScheduledSessions, c.MandatoryAttendancePercentage, c.ModuleID,
	)
	if err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "updating course")
	}
	return updated, nil
}

func (repo courseRepository) QueryCourses(ctx context.Context) ([]course.Course, error) {
	courses := make([]course.Course, 0)
	if err := repo.db.SelectContext(ctx, &courses, `SELECT * FROM courses ORDER BY code, created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting courses")
	}
	return courses, nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var c course.Course
	if err := repo.db.GetContext(ctx, &c, `SELECT * FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "selecting course")
	}
	return c, nil
}

func (repo courseRepository) GetCourseByCode(ctx context.Context, code string) (course.Course, error) {
	var c course.Course
	q := `SELECT * FROM courses WHERE upper(code) = upper($1) ORDER BY created_at LIMIT 1`
	if err := repo.db.GetContext(ctx, &c, q, code); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound, "selecting course")
	}
	return c, nil
}

func (repo courseRepository) CreateSession(ctx context.Context, s course.Session) (course.Session, error) {
	q := `INSERT INTO sessions (id, course_id, date, status, created_at) VALUES (:id, :course_id, :date, :status, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, s); err != nil {
		return course.Session{}, errors.Wrap(err, "inserting session")
	}
	return s, nil
}

func (repo courseRepository) QuerySessions(ctx context.Context, courseIDs ...string) ([]course.Session, error) {
	sessions := make([]course.Session, 0)
	q := `SELECT * FROM sessions`
	var args []interface{}
	if len(courseIDs) > 0 {
		q += ` WHERE course_id = ANY($1)`
		args = append(args, pq.Array(courseIDs))
	}
	q += ` ORDER BY date DESC, created_at DESC`

	if err := repo.db.SelectContext(ctx, &sessions, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	return sessions, nil
}

func (repo courseRepository) DeleteSession(ctx context.Context, id string) (course.Session, error) {
	var s course.Session
	if err := repo.db.GetContext(ctx, &s, `DELETE FROM sessions WHERE id = $1 RETURNING *`, id); err != nil {
		return course.Session{}, trapNoRowsErr(err, course.ErrSessionNotFound, "deleting session")
	}
	return s, nil
}
