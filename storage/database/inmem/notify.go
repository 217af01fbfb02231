package inmemdb

import (
	"context"

	"github.com/trezcool/mbatrack/core/notify"
)

type tokenRepository struct {
	db *DB
}

var _ notify.Repository = (*tokenRepository)(nil)

func NewTokenRepository(db *DB) notify.Repository {
	return &tokenRepository{db: db}
}

func (repo *tokenRepository) UpsertToken(_ context.Context, t notify.Token) (notify.Token, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, orig := range repo.db.tokens {
		if orig.Token == t.Token {
			return orig, nil
		}
	}
	repo.db.tokens = append(repo.db.tokens, t)
	return t, nil
}

func (repo *tokenRepository) QueryTokens(context.Context) ([]notify.Token, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return append([]notify.Token{}, repo.db.tokens...), nil
}
