package journal

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
)

var ErrNotFound = core.NewNotFoundError("journal entry", "")

// Entry is the journal entry of a calendar date. There is at most one per date.
type Entry struct {
	ID        string    `json:"id"`
	EntryDate time.Time `json:"entry_date"` // UTC midnight
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveEntry contains information needed to save the entry of a date.
type SaveEntry struct {
	EntryDate string `json:"entry_date" validate:"required,isodate"`
	Content   string `json:"content" validate:"required,notblank"`
}

func (se *SaveEntry) Validate(validate *validator.Validate) error {
	se.EntryDate = core.CleanString(se.EntryDate)
	return validate.Struct(se)
}

type (
	Repository interface {
		// UpsertEntry inserts the entry or overwrites the content of the entry with the same date.
		UpsertEntry(ctx context.Context, e Entry) (Entry, error)
		// QueryEntries returns all entries, newest date first.
		QueryEntries(ctx context.Context) ([]Entry, error)
		GetEntryByDate(ctx context.Context, date time.Time) (Entry, error)
	}

	Service interface {
		Save(ctx context.Context, se SaveEntry) (Entry, error)
		SaveToday(ctx context.Context, content string) (Entry, error)
		QueryAll(ctx context.Context) ([]Entry, error)
		GetByDate(ctx context.Context, date string) (Entry, error)
	}

	service struct {
		repo     Repository
		validate *validator.Validate
		cache    core.ViewCache
		logger   core.Logger
		loc      *time.Location
		nowFunc  func() time.Time
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, validate *validator.Validate, cache core.ViewCache, logger core.Logger, conf *core.Config) Service {
	return &service{
		repo:     repo,
		validate: validate,
		cache:    cache,
		logger:   logger,
		loc:      conf.Location(),
		nowFunc:  time.Now,
	}
}

// Save upserts the entry of se.EntryDate, overwriting any previous content.
func (svc *service) Save(ctx context.Context, se SaveEntry) (Entry, error) {
	if err := se.Validate(svc.validate); err != nil {
		return Entry{}, err
	}
	date, _ := time.Parse(core.DateLayout, se.EntryDate) // validated

	now := svc.nowFunc().UTC()
	e, err := svc.repo.UpsertEntry(ctx, Entry{
		ID:        uuid.NewString(),
		EntryDate: date,
		Content:   se.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return Entry{}, errors.Wrap(err, "saving journal entry")
	}
	core.InvalidateViews(ctx, svc.cache, svc.logger, core.ViewJournal)
	return e, nil
}

// SaveToday saves the entry of the current date in the configured time zone.
func (svc *service) SaveToday(ctx context.Context, content string) (Entry, error) {
	today := core.Today(svc.nowFunc(), svc.loc)
	return svc.Save(ctx, SaveEntry{EntryDate: today.Format(core.DateLayout), Content: content})
}

func (svc *service) QueryAll(ctx context.Context) ([]Entry, error) {
	return svc.repo.QueryEntries(ctx)
}

func (svc *service) GetByDate(ctx context.Context, date string) (Entry, error) {
	day, err := time.Parse(core.DateLayout, core.CleanString(date))
	if err != nil {
		return Entry{}, core.NewValidationError(err, core.FieldError{Field: "entry_date", Error: "date must be in YYYY-MM-DD format"})
	}
	return svc.repo.GetEntryByDate(ctx, day)
}
