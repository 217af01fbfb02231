package inmemdb

import (
	"context"

	"github.com/trezcool/mbatrack/core/goal"
)

type goalRepository struct {
	db *DB
}

var _ goal.Repository = (*goalRepository)(nil)

func NewGoalRepository(db *DB) goal.Repository {
	return &goalRepository{db: db}
}

func (db *DB) withKeyResults(obj goal.Objective) goal.Objective {
	obj.KeyResults = make([]goal.KeyResult, 0)
	for _, kr := range db.keyResults {
		if kr.ObjectiveID == obj.ID {
			obj.KeyResults = append(obj.KeyResults, kr)
		}
	}
	return obj
}

func (repo *goalRepository) CreateObjective(_ context.Context, obj goal.Objective) (goal.Objective, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	krs := obj.KeyResults
	obj.KeyResults = nil
	repo.db.objectives = append(repo.db.objectives, obj)
	repo.db.keyResults = append(repo.db.keyResults, krs...)
	return repo.db.withKeyResults(obj), nil
}

func (repo *goalRepository) QueryObjectives(context.Context) ([]goal.Objective, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	objs := make([]goal.Objective, 0, len(repo.db.objectives))
	for i := len(repo.db.objectives) - 1; i >= 0; i-- {
		objs = append(objs, repo.db.withKeyResults(repo.db.objectives[i]))
	}
	return objs, nil
}

func (repo *goalRepository) GetObjective(_ context.Context, id string) (goal.Objective, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, obj := range repo.db.objectives {
		if obj.ID == id {
			return repo.db.withKeyResults(obj), nil
		}
	}
	return goal.Objective{}, goal.ErrNotFound
}

func (repo *goalRepository) DeleteObjective(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, obj := range repo.db.objectives {
		if obj.ID != id {
			continue
		}
		repo.db.objectives = append(repo.db.objectives[:i], repo.db.objectives[i+1:]...)

		// cascade
		krs := repo.db.keyResults[:0]
		for _, kr := range repo.db.keyResults {
			if kr.ObjectiveID != id {
				krs = append(krs, kr)
			}
		}
		repo.db.keyResults = krs
		return nil
	}
	return goal.ErrNotFound
}

func (repo *goalRepository) SetKeyResultCompleted(_ context.Context, id string, completed bool) (goal.KeyResult, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for i, kr := range repo.db.keyResults {
		if kr.ID == id {
			repo.db.keyResults[i].IsCompleted = completed
			return repo.db.keyResults[i], nil
		}
	}
	return goal.KeyResult{}, goal.ErrKeyResultNotFound
}
