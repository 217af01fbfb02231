package sqlxrepos

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/deadline"
)

const selectDeadlines = `
	SELECT d.*, c.code AS course_code, c.title AS course_title
	FROM deadlines d
	LEFT JOIN courses c ON c.id = d.course_id`

var deadlineOrdering = []core.DBOrdering{
	{Field: "d.due_date", Ascending: true},
	{Field: "d.due_time", Ascending: true, NullsFirst: true},
	{Field: "d.created_at", Ascending: true},
}

type deadlineRow struct {
	ID          string      `db:"id"`
	CourseID    null.String `db:"course_id"`
	Title       string      `db:"title"`
	DueDate     time.Time   `db:"due_date"`
	DueTime     null.String `db:"due_time"`
	Type        string      `db:"type"`
	Description null.String `db:"description"`
	IsCompleted bool        `db:"is_completed"`
	CreatedAt   time.Time   `db:"created_at"`

	// joined
	CourseCode  null.String `db:"course_code"`
	CourseTitle null.String `db:"course_title"`
}

func toDeadlineRow(d deadline.Deadline) deadlineRow {
	return deadlineRow{
		ID:          d.ID,
		CourseID:    d.CourseID,
		Title:       d.Title,
		DueDate:     d.DueDate.UTC(),
		DueTime:     d.DueTime,
		Type:        d.Type,
		Description: d.Description,
		IsCompleted: d.IsCompleted,
		CreatedAt:   d.CreatedAt.UTC(),
	}
}

func (row deadlineRow) deadline() deadline.Deadline {
	d := deadline.Deadline{
		ID:          row.ID,
		CourseID:    row.CourseID,
		Title:       row.Title,
		DueDate:     row.DueDate.UTC(),
		DueTime:     row.DueTime,
		Type:        row.Type,
		Description: row.Description,
		IsCompleted: row.IsCompleted,
		CreatedAt:   row.CreatedAt,
	}
	if row.CourseID.Valid {
		d.Course = &deadline.CourseRef{ID: row.CourseID.String, Code: row.CourseCode.String, Title: row.CourseTitle.String}
	}
	return d
}

type deadlineRepository struct {
	db core.DB
}

var _ deadline.Repository = (*deadlineRepository)(nil) // interface compliance check

func NewDeadlineRepository(db core.DB) deadline.Repository {
	return &deadlineRepository{db: db}
}

func (repo deadlineRepository) CreateDeadline(ctx context.Context, d deadline.Deadline) (deadline.Deadline, error) {
	q := `
		INSERT INTO deadlines (id, course_id, title, due_date, due_time, type, description, is_completed, created_at)
		VALUES (:id, :course_id, :title, :due_date, :due_time, :type, :description, :is_completed, :created_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, toDeadlineRow(d)); err != nil {
		return deadline.Deadline{}, errors.Wrap(err, "inserting deadline")
	}
	return repo.GetDeadline(ctx, d.ID)
}

func (repo deadlineRepository) UpdateDeadline(ctx context.Context, d deadline.Deadline) (deadline.Deadline, error) {
	q := `
		UPDATE deadlines SET
			course_id = :course_id, title = :title, due_date = :due_date, due_time = :due_time,
			type = :type, description = :description
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toDeadlineRow(d))
	if err != nil {
		return deadline.Deadline{}, errors.Wrap(err, "updating deadline")
	}
	if err = checkAffected(res, deadline.ErrNotFound); err != nil {
		return deadline.Deadline{}, err
	}
	return repo.GetDeadline(ctx, d.ID)
}

func (repo deadlineRepository) DeleteDeadline(ctx context.Context, id string) (deadline.Deadline, error) {
	d, err := repo.GetDeadline(ctx, id)
	if err != nil {
		return deadline.Deadline{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM deadlines WHERE id = $1`, id)
	if err != nil {
		return deadline.Deadline{}, errors.Wrap(err, "deleting deadline")
	}
	return d, checkAffected(res, deadline.ErrNotFound)
}

func (repo deadlineRepository) SetDeadlineCompleted(ctx context.Context, id string, completed bool) (deadline.Deadline, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE deadlines SET is_completed = $2 WHERE id = $1`, id, completed)
	if err != nil {
		return deadline.Deadline{}, errors.Wrap(err, "updating deadline")
	}
	if err = checkAffected(res, deadline.ErrNotFound); err != nil {
		return deadline.Deadline{}, err
	}
	return repo.GetDeadline(ctx, id)
}

func (repo deadlineRepository) GetDeadline(ctx context.Context, id string) (deadline.Deadline, error) {
	var row deadlineRow
	if err := repo.db.GetContext(ctx, &row, selectDeadlines+` WHERE d.id = $1`, id); err != nil {
		return deadline.Deadline{}, trapNoRowsErr(err, deadline.ErrNotFound, "selecting deadline")
	}
	return row.deadline(), nil
}

func (repo deadlineRepository) QueryDeadlines(ctx context.Context, filter deadline.QueryFilter) ([]deadline.Deadline, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CourseID != "" {
		where = append(where, "d.course_id = ?")
		args = append(args, filter.CourseID)
	}
	if filter.OpenOnly {
		where = append(where, "NOT d.is_completed")
	}
	if !filter.DueFrom.IsZero() {
		where = append(where, "d.due_date >= ?")
		args = append(args, filter.DueFrom.UTC())
	}
	if !filter.DueTo.IsZero() {
		where = append(where, "d.due_date <= ?")
		args = append(args, filter.DueTo.UTC())
	}

	q := selectDeadlines
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	orderBy := make([]string, 0, len(deadlineOrdering))
	for _, ord := range deadlineOrdering {
		orderBy = append(orderBy, ord.String())
	}
	q += " ORDER BY " + strings.Join(orderBy, ", ")
	if filter.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	var rows []deadlineRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting deadlines")
	}
	deadlines := make([]deadline.Deadline, 0, len(rows))
	for _, row := range rows {
		deadlines = append(deadlines, row.deadline())
	}
	return deadlines, nil
}

func (repo deadlineRepository) GetCourseRef(ctx context.Context, courseID string) (deadline.CourseRef, error) {
	var ref struct {
		ID    string `db:"id"`
		Code  string `db:"code"`
		Title string `db:"title"`
	}
	if err := repo.db.GetContext(ctx, &ref, `SELECT id, code, title FROM courses WHERE id = $1`, courseID); err != nil {
		return deadline.CourseRef{}, trapNoRowsErr(err, deadline.ErrCourseNotFound, "selecting course")
	}
	return deadline.CourseRef{ID: ref.ID, Code: ref.Code, Title: ref.Title}, nil
}
