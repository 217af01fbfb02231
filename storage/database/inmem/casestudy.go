package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/mbatrack/core/casestudy"
)

type caseStudyRepository struct {
	db *DB
}

var _ casestudy.Repository = (*caseStudyRepository)(nil)

func NewCaseStudyRepository(db *DB) casestudy.Repository {
	return &caseStudyRepository{db: db}
}

func (db *DB) caseStudyIndex(id string) int {
	for i, cs := range db.caseStudies {
		if cs.ID == id {
			return i
		}
	}
	return -1
}

func (repo *caseStudyRepository) CreateCaseStudy(_ context.Context, cs casestudy.CaseStudy) (casestudy.CaseStudy, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()
	repo.db.caseStudies = append(repo.db.caseStudies, cs)
	return cs, nil
}

func (repo *caseStudyRepository) UpdateCaseStudy(_ context.Context, cs casestudy.CaseStudy) (casestudy.CaseStudy, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.caseStudyIndex(cs.ID)
	if i < 0 {
		return casestudy.CaseStudy{}, casestudy.ErrNotFound
	}
	cs.CreatedAt = repo.db.caseStudies[i].CreatedAt
	cs.Scorecard = nil
	repo.db.caseStudies[i] = cs
	return cs, nil
}

func (repo *caseStudyRepository) SetScorecard(_ context.Context, id string, sc casestudy.Scorecard, at time.Time) (casestudy.CaseStudy, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.caseStudyIndex(id)
	if i < 0 {
		return casestudy.CaseStudy{}, casestudy.ErrNotFound
	}
	repo.db.caseStudies[i].Scorecard = &sc
	repo.db.caseStudies[i].UpdatedAt = at
	return repo.db.caseStudies[i], nil
}

func (repo *caseStudyRepository) DeleteCaseStudy(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.caseStudyIndex(id)
	if i < 0 {
		return casestudy.ErrNotFound
	}
	repo.db.caseStudies = append(repo.db.caseStudies[:i], repo.db.caseStudies[i+1:]...)
	return nil
}

func (repo *caseStudyRepository) GetCaseStudy(_ context.Context, id string) (casestudy.CaseStudy, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	i := repo.db.caseStudyIndex(id)
	if i < 0 {
		return casestudy.CaseStudy{}, casestudy.ErrNotFound
	}
	return repo.db.caseStudies[i], nil
}

func (repo *caseStudyRepository) QueryCaseStudies(context.Context) ([]casestudy.CaseStudy, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	studies := append([]casestudy.CaseStudy{}, repo.db.caseStudies...)
	sort.SliceStable(studies, func(i, j int) bool { return studies[i].UpdatedAt.After(studies[j].UpdatedAt) })
	return studies, nil
}
