package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/mbatrack/core"
	"github.com/trezcool/mbatrack/core/notify"
)

type tokenRepository struct {
	db core.DBExecutor
}

var _ notify.Repository = (*tokenRepository)(nil) // interface compliance check

func NewTokenRepository(db core.DBExecutor) notify.Repository {
	return &tokenRepository{db: db}
}

func (repo tokenRepository) UpsertToken(ctx context.Context, t notify.Token) (notify.Token, error) {
	q := `
		INSERT INTO fcm_tokens (id, token, created_at) VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET token = EXCLUDED.token
		RETURNING *`
	var saved notify.Token
	if err := repo.db.GetContext(ctx, &saved, q, t.ID, t.Token, t.CreatedAt.UTC()); err != nil {
		return notify.Token{}, errors.Wrap(err, "upserting token")
	}
	return saved, nil
}

func (repo tokenRepository) QueryTokens(ctx context.Context) ([]notify.Token, error) {
	tokens := make([]notify.Token, 0)
	if err := repo.db.SelectContext(ctx, &tokens, `SELECT * FROM fcm_tokens ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "selecting tokens")
	}
	return tokens, nil
}
