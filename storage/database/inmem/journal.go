package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/mbatrack/core/journal"
)

type journalRepository struct {
	db *DB
}

var _ journal.Repository = (*journalRepository)(nil)

func NewJournalRepository(db *DB) journal.Repository {
	return &journalRepository{db: db}
}

func (repo *journalRepository) UpsertEntry(_ context.Context, e journal.Entry) (journal.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, orig := range repo.db.entries {
		if orig.EntryDate.Equal(e.EntryDate) {
			repo.db.entries[i].Content = e.Content
			repo.db.entries[i].UpdatedAt = e.UpdatedAt
			return repo.db.entries[i], nil
		}
	}
	repo.db.entries = append(repo.db.entries, e)
	return e, nil
}

func (repo *journalRepository) QueryEntries(context.Context) ([]journal.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := append([]journal.Entry{}, repo.db.entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].EntryDate.After(entries[j].EntryDate) })
	return entries, nil
}

func (repo *journalRepository) GetEntryByDate(_ context.Context, date time.Time) (journal.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, e := range repo.db.entries {
		if e.EntryDate.Equal(date) {
			return e, nil
		}
	}
	return journal.Entry{}, journal.ErrNotFound
}
