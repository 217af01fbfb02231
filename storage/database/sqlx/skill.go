package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/skill"
)

type (
	skillRow struct {
		ID               string      `db:"id"`
		Name             string      `db:"name"`
		Type             string      `db:"type"`
		Notes            null.String `db:"notes"`
		LatestConfidence int         `db:"latest_confidence"`
		CreatedAt        time.Time   `db:"created_at"`
	}

	confidenceLogRow struct {
		ID              string    `db:"id"`
		SkillID         string    `db:"skill_id"`
		ConfidenceLevel int       `db:"confidence_level"`
		CreatedAt       time.Time `db:"created_at"`
	}
)

func (row skillRow) skill() skill.Skill {
	return skill.Skill{
		ID:               row.ID,
		Name:             row.Name,
		Type:             skill.Type(row.Type),
		Notes:            row.Notes,
		LatestConfidence: row.LatestConfidence,
		CreatedAt:        row.CreatedAt,
	}
}

type skillRepository struct {
	db core.DB
}

var _ skill.Repository = (*skillRepository)(nil) // interface compliance check

func NewSkillRepository(db core.DB) skill.Repository {
	return &skillRepository{db: db}
}

func insertConfidenceLog(ctx context.Context, exec core.DBExecutor, log skill.ConfidenceLog) error {
	q := `INSERT INTO skill_confidence_logs (id, skill_id, confidence_level, created_at) VALUES ($1, $2, $3, $4)`
	_, err := exec.ExecContext(ctx, q, log.ID, log.SkillID, log.ConfidenceLevel, log.CreatedAt.UTC())
	return errors.Wrap(err, "inserting confidence log")
}

func (repo skillRepository) CreateSkill(ctx context.Context, s skill.Skill, log skill.ConfidenceLog) (skill.Skill, error) {
	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		q := `
			INSERT INTO skills (id, name, type, notes, latest_confidence, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`
		if _, err := tx.ExecContext(ctx, q, s.ID, s.Name, string(s.Type), s.Notes, s.LatestConfidence, s.CreatedAt.UTC()); err != nil {
			return errors.Wrap(err, "inserting skill")
		}
		return insertConfidenceLog(ctx, tx, log)
	})
	if err != nil {
		return skill.Skill{}, err
	}
	return s, nil
}

func (repo skillRepository) UpdateSkill(ctx context.Context, s skill.Skill) (skill.Skill, error) {
	var row skillRow
	q := `UPDATE skills SET name = $2, type = $3, notes = $4 WHERE id = $1 RETURNING *`
	if err := repo.db.GetContext(ctx, &row, q, s.ID, s.Name, string(s.Type), s.Notes); err != nil {
		return skill.Skill{}, trapNoRowsErr(err, skill.ErrNotFound, "updating skill")
	}
	return row.skill(), nil
}

func (repo skillRepository) UpdateConfidence(ctx context.Context, log skill.ConfidenceLog) (skill.Skill, error) {
	var row skillRow
	err := withTx(ctx, repo.db, func(tx core.DBTransactor) error {
		q := `UPDATE skills SET latest_confidence = $2 WHERE id = $1 RETURNING *`
		if err := tx.GetContext(ctx, &row, q, log.SkillID, log.ConfidenceLevel); err != nil {
			return trapNoRowsErr(err, skill.ErrNotFound, "updating skill confidence")
		}
		return insertConfidenceLog(ctx, tx, log)
	})
	if err != nil {
		return skill.Skill{}, err
	}
	return row.skill(), nil
}

func (repo skillRepository) DeleteSkill(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM skills WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting skill")
	}
	return checkAffected(res, skill.ErrNotFound)
}

func (repo skillRepository) GetSkill(ctx context.Context, id string) (skill.Skill, error) {
	var row skillRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM skills WHERE id = $1`, id); err != nil {
		return skill.Skill{}, trapNoRowsErr(err, skill.ErrNotFound, "selecting skill")
	}
	return row.skill(), nil
}

func (repo skillRepository) QuerySkills(ctx context.Context) ([]skill.Skill, error) {
	var rows []skillRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM skills ORDER BY name, created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting skills")
	}
	skills := make([]skill.Skill, 0, len(rows))
	for _, row := range rows {
		skills = append(skills, row.skill())
	}
	return skills, nil
}

func (repo skillRepository) QueryConfidenceLogs(ctx context.Context, skillID string) ([]skill.ConfidenceLog, error) {
	var rows []confidenceLogRow
	q := `SELECT * FROM skill_confidence_logs WHERE skill_id = $1 ORDER BY created_at, id`
	if err := repo.db.SelectContext(ctx, &rows, q, skillID); err != nil {
		return nil, errors.Wrap(err, "selecting confidence logs")
	}
	logs := make([]skill.ConfidenceLog, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, skill.ConfidenceLog{
			ID:              row.ID,
			SkillID:         row.SkillID,
			ConfidenceLevel: row.ConfidenceLevel,
			CreatedAt:       row.CreatedAt,
		})
	}
	return logs, nil
}
