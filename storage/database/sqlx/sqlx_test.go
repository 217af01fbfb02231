package sqlxrepos

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/casestudy"
	"github.com/trezcool/mbatrack/core/course"
	"github.com/trezcool/mbatrack/core/deadline"
	"github.com/trezcool/mbatrack/core/goal"
	"github.com/trezcool/mbatrack/core/journal"
	"github.com/trezcool/mbatrack/core/notify"
	"github.com/trezcool/mbatrack/core/skill"
)

var errBoom = errors.New("boom")

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() failed: %v", err)
	}
	db := sqlx.NewDb(mockDB, "postgres")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

func TestWithTx(t *testing.T) {
	t.Run("commit", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(q("SELECT 1")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := withTx(context.Background(), db, func(tx core.DBTransactor) error {
			_, err := tx.ExecContext(context.Background(), "SELECT 1")
			return err
		})
		assert.NoError(t, err)
	})

	t.Run("rollback", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := withTx(context.Background(), db, func(tx core.DBTransactor) error {
			return errBoom
		})
		assert.Equal(t, errBoom, err)
	})

	t.Run("begin fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin().WillReturnError(errBoom)

		err := withTx(context.Background(), db, func(tx core.DBTransactor) error {
			t.Fatal("fn must not run")
			return nil
		})
		assert.Equal(t, errBoom, errors.Cause(err))
	})
}

func TestSkillRepository_CreateSkill_rollback(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSkillRepository(db)

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s := skill.Skill{ID: "s1", Name: "Negotiation", Type: skill.Type("Soft"), LatestConfidence: 2, CreatedAt: now}

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO skills")).
		WithArgs("s1", "Negotiation", "Soft", sqlmock.AnyArg(), 2, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO skill_confidence_logs")).
		WithArgs("l1", "s1", 2, now).
		WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := repo.CreateSkill(context.Background(), s, skill.ConfidenceLog{ID: "l1", SkillID: "s1", ConfidenceLevel: 2, CreatedAt: now})
	assert.Equal(t, errBoom, errors.Cause(err))
}

func TestSkillRepository_UpdateConfidence(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	log := skill.ConfidenceLog{ID: "l2", SkillID: "s1", ConfidenceLevel: 4, CreatedAt: now}
	updateQuery := q("UPDATE skills SET latest_confidence = $2 WHERE id = $1 RETURNING *")

	t.Run("updates and logs", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateQuery).WithArgs("s1", 4).WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "type", "notes", "latest_confidence", "created_at"}).
				AddRow("s1", "Negotiation", "Soft", nil, 4, now),
		)
		mock.ExpectExec(q("INSERT INTO skill_confidence_logs")).
			WithArgs("l2", "s1", 4, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		s, err := NewSkillRepository(db).UpdateConfidence(context.Background(), log)
		assert.NoError(t, err)
		assert.Equal(t, 4, s.LatestConfidence)
		assert.False(t, s.Notes.Valid)
	})

	t.Run("unknown skill", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateQuery).WithArgs("s1", 4).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := NewSkillRepository(db).UpdateConfidence(context.Background(), log)
		assert.Equal(t, skill.ErrNotFound, err)
	})

	t.Run("log insert fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		mock.ExpectBegin()
		mock.ExpectQuery(updateQuery).WithArgs("s1", 4).WillReturnRows(
			sqlmock.NewRows([]string{"id", "name", "type", "notes", "latest_confidence", "created_at"}).
				AddRow("s1", "Negotiation", "Soft", nil, 4, now),
		)
		mock.ExpectExec(q("INSERT INTO skill_confidence_logs")).WillReturnError(errBoom)
		mock.ExpectRollback()

		_, err := NewSkillRepository(db).UpdateConfidence(context.Background(), log)
		assert.Equal(t, errBoom, errors.Cause(err))
	})
}

func TestSkillRepository_DeleteSkill(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(q("DELETE FROM skills WHERE id = $1")).WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 0))

	assert.Equal(t, skill.ErrNotFound, NewSkillRepository(db).DeleteSkill(context.Background(), "s1"))
}

func TestGoalRepository_CreateObjective_rollback(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	obj := goal.Objective{
		ID:        "o1",
		Title:     "Network",
		CreatedAt: now,
		KeyResults: []goal.KeyResult{
			{ID: "k1", ObjectiveID: "o1", Description: "Coffee chats", CreatedAt: now},
			{ID: "k2", ObjectiveID: "o1", Description: "Alumni event", CreatedAt: now},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec(q("INSERT INTO objectives")).WithArgs("o1", "Network", sqlmock.AnyArg(), now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO key_results")).WithArgs("k1", "o1", "Coffee chats", false, now).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("INSERT INTO key_results")).WithArgs("k2", "o1", "Alumni event", false, now).WillReturnError(errBoom)
	mock.ExpectRollback()

	_, err := NewGoalRepository(db).CreateObjective(context.Background(), obj)
	assert.Equal(t, errBoom, errors.Cause(err))
}

func TestJournalRepository_UpsertEntry(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 21, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("ON CONFLICT (entry_date) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at")).
		WithArgs("new-id", "2025-03-01", "Second thoughts", now, now).
		WillReturnRows(
			sqlmock.NewRows([]string{"id", "entry_date", "content", "created_at", "updated_at"}).
				AddRow("first-id", time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "Second thoughts", created, now),
		)

	e, err := NewJournalRepository(db).UpsertEntry(context.Background(), journal.Entry{
		ID:        "new-id",
		EntryDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Content:   "Second thoughts",
		CreatedAt: now,
		UpdatedAt: now,
	})
	assert.NoError(t, err)
	assert.Equal(t, "first-id", e.ID)
	assert.Equal(t, created, e.CreatedAt)
	assert.Equal(t, "Second thoughts", e.Content)
}

func TestTokenRepository_UpsertToken(t *testing.T) {
	db, mock := newMockDB(t)
	created := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(q("ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token")).
		WithArgs("new-id", "device-token-1", now).
		WillReturnRows(sqlmock.NewRows([]string{"id", "token", "created_at"}).AddRow("first-id", "device-token-1", created))

	tok, err := NewTokenRepository(db).UpsertToken(context.Background(), notify.Token{ID: "new-id", Token: "device-token-1", CreatedAt: now})
	assert.NoError(t, err)
	assert.Equal(t, notify.Token{ID: "first-id", Token: "device-token-1", CreatedAt: created}, tok)
}

func TestRepositoryConstructors(t *testing.T) {
	db, _ := newMockDB(t)

	repos := []interface{}{
		NewCourseRepository(db),
		NewDeadlineRepository(db),
		NewSkillRepository(db),
		NewGoalRepository(db),
		NewJournalRepository(db),
		NewCaseStudyRepository(db),
		NewTokenRepository(db),
	}
	assert.Implements(t, (*course.Repository)(nil), repos[0])
	assert.Implements(t, (*deadline.Repository)(nil), repos[1])
	assert.Implements(t, (*skill.Repository)(nil), repos[2])
	assert.Implements(t, (*goal.Repository)(nil), repos[3])
	assert.Implements(t, (*journal.Repository)(nil), repos[4])
	assert.Implements(t, (*casestudy.Repository)(nil), repos[5])
	assert.Implements(t, (*notify.Repository)(nil), repos[6])
}
