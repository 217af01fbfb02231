package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/journal"
)

type entryRow struct {
	ID        string    `db:"id"`
	EntryDate time.Time `db:"entry_date"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row entryRow) entry() journal.Entry {
	return journal.Entry{
		ID:        row.ID,
		EntryDate: row.EntryDate.UTC(),
		Content:   row.Content,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type journalRepository struct {
	db core.DBExecutor
}

var _ journal.Repository = (*journalRepository)(nil) // interface compliance check

func NewJournalRepository(db core.DBExecutor) journal.Repository {
	return &journalRepository{db: db}
}

func (repo journalRepository) UpsertEntry(ctx context.Context, e journal.Entry) (journal.Entry, error) {
	q := `
		INSERT INTO journal_entries (id, entry_date, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (entry_date) DO UPDATE SET content = EXCLUDED.content, updated_at = EXCLUDED.updated_at
		RETURNING *`
	var row entryRow
	err := repo.db.GetContext(ctx, &row, q, e.ID, e.EntryDate.Format(core.DateLayout), e.Content, e.CreatedAt.UTC(), e.UpdatedAt.UTC())
	if err != nil {
		return journal.Entry{}, errors.Wrap(err, "upserting journal entry")
	}
	return row.entry(), nil
}

func (repo journalRepository) QueryEntries(ctx context.Context) ([]journal.Entry, error) {
	var rows []entryRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM journal_entries ORDER BY entry_date DESC`); err != nil {
		return nil, errors.Wrap(err, "selecting journal entries")
	}
	entries := make([]journal.Entry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, row.entry())
	}
	return entries, nil
}

func (repo journalRepository) GetEntryByDate(ctx context.Context, date time.Time) (journal.Entry, error) {
	var row entryRow
	q := `SELECT * FROM journal_entries WHERE entry_date = $1`
	if err := repo.db.GetContext(ctx, &row, q, date.Format(core.DateLayout)); err != nil {
		return journal.Entry{}, trapNoRowsErr(err, journal.ErrNotFound, "selecting journal entry")
	}
	return row.entry(), nil
}
