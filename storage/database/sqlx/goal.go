package sqlxrepos

import (
	"context"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/goal"
)

type (
	objectiveRow struct {
		ID        string      `db:"id"`
		Title     string      `db:"title"`
		Semester  null.String `db:"semester"`
		CreatedAt time.Time   `db:"created_at"`
	}

	keyResultRow struct {
		ID          string    `db:"id"`
		ObjectiveID string    `db:"objective_id"`
		Description string    `db:"description"`
		IsCompleted bool      `db:"is_completed"`
		CreatedAt   time.Time `db:"created_at"`
	}
)

func (row keyResultRow) keyResult() goal.KeyResult {
	return goal.KeyResult{
		ID:          row.ID,
		ObjectiveID: row.ObjectiveID,
		Description: row.Description,
		IsCompleted: row.IsCompleted,
		CreatedAt:   row.CreatedAt,
	}
}

type goalRepository struct {
	db core.DB
}

var _ goal.Repository = (*goalRepository)(nil) // interface compliance check

func NewGoalRepository(db core.DB) goal.Repository {
	return &goalRepository{db: db}
}

func (repo goalRepository) CreateObjective(ctx context.Context, obj goal.Objective) (goal.Objective, error) {
	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		q := `INSERT INTO objectives (id, title, semester, created_at) VALUES ($1, $2, $3, $4)`
		if _, err := tx.ExecContext(ctx, q, obj.ID, obj.Title, obj.Semester, obj.CreatedAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting objective")
		}
		for _, kr := range obj.KeyResults {
			q = `
				INSERT INTO key_results (id, objective_id, description, is_completed, created_at)
				VALUES ($1, $2, $3, $4, $5)`
			if _, err := tx.ExecContext(ctx, q, kr.ID, obj.ID, kr.Description, kr.IsCompleted, kr.CreatedAt.UTC()); err != nil {
				return errors.Wrap(err, "inserting key result")
			}
		}
		return nil
	})
	if err != nil {
		return goal.Objective{}, err
	}
	return obj, nil
}

// withKeyResults loads the key results of the given objectives, oldest first.
func (repo goalRepository) withKeyResults(ctx context.Context, rows []objectiveRow) ([]goal.Objective, error) {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var krRows []keyResultRow
	if len(ids) > 0 {
		q := `SELECT * FROM key_results WHERE objective_id = ANY($1) ORDER BY created_at, id`
		if err := repo.db.SelectContext(ctx, &krRows, q, pq.Array(ids)); err != nil {
			return nil, errors.Wrap(err, "selecting key results")
		}
	}
	byObjective := make(map[string][]goal.KeyResult, len(rows))
	for _, kr := range krRows {
		byObjective[kr.ObjectiveID] = append(byObjective[kr.ObjectiveID], kr.keyResult())
	}

	objs := make([]goal.Objective, 0, len(rows))
	for _, row := range rows {
		krs := byObjective[row.ID]
		if krs == nil {
			krs = []goal.KeyResult{}
		}
		objs = append(objs, goal.Objective{
			ID:         row.ID,
			Title:      row.Title,
			Semester:   row.Semester,
			CreatedAt:  row.CreatedAt,
			KeyResults: krs,
		})
	}
	return objs, nil
}

func (repo goalRepository) QueryObjectives(ctx context.Context) ([]goal.Objective, error) {
	var rows []objectiveRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM objectives ORDER BY created_at DESC, id`); err != nil {
		return nil, errors.Wrap(err, "selecting objectives")
	}
	return repo.withKeyResults(ctx, rows)
}

func (repo goalRepository) GetObjective(ctx context.Context, id string) (goal.Objective, error) {
	var row objectiveRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM objectives WHERE id = $1`, id); err != nil {
		return goal.Objective{}, trapNoRowsErr(err, goal.ErrNotFound, "selecting objective")
	}
	objs, err := repo.withKeyResults(ctx, []objectiveRow{row})
	if err != nil {
		return goal.Objective{}, err
	}
	return objs[0], nil
}

func (repo goalRepository) DeleteObjective(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting objective")
	}
	return checkAffected(res, goal.ErrNotFound)
}

func (repo goalRepository) SetKeyResultCompleted(ctx context.Context, id string, completed bool) (goal.KeyResult, error) {
	var row keyResultRow
	q := `UPDATE key_results SET is_completed = $2 WHERE id = $1 RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, id, completed); err != nil {
		return goal.KeyResult{}, trapNoRowsErr(err, goal.ErrKeyResultNotFound, "updating key result")
	}
	return row.keyResult(), nil
}
