package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/mbatrack/core/skill"
)

type skillRepository struct {
	db *DB
}

var _ skill.Repository = (*skillRepository)(nil)

func NewSkillRepository(db *DB) skill.Repository {
	return &skillRepository{db: db}
}

func (db *DB) skillIndex(id string) int {
	for i, s := range db.skills {
		if s.ID == id {
			return i
		}
	}
	return -1
}

func (repo *skillRepository) CreateSkill(_ context.Context, s skill.Skill, log skill.ConfidenceLog) (skill.Skill, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.skills = append(repo.db.skills, s)
	repo.db.confidenceLogs = append(repo.db.confidenceLogs, log)
	return s, nil
}

func (repo *skillRepository) UpdateSkill(_ context.Context, s skill.Skill) (skill.Skill, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.skillIndex(s.ID)
	if i < 0 {
		return skill.Skill{}, skill.ErrNotFound
	}
	orig := &repo.db.skills[i]
	orig.Name = s.Name
	orig.Type = s.Type
	orig.Notes = s.Notes
	return *orig, nil
}

func (repo *skillRepository) UpdateConfidence(_ context.Context, log skill.ConfidenceLog) (skill.Skill, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.skillIndex(log.SkillID)
	if i < 0 {
		return skill.Skill{}, skill.ErrNotFound
	}
	repo.db.skills[i].LatestConfidence = log.ConfidenceLevel
	repo.db.confidenceLogs = append(repo.db.confidenceLogs, log)
	return repo.db.skills[i], nil
}

func (repo *skillRepository) DeleteSkill(_ context.Context, id string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	i := repo.db.skillIndex(id)
	if i < 0 {
		return skill.ErrNotFound
	}
	repo.db.skills = append(repo.db.skills[:i], repo.db.skills[i+1:]...)

	// cascade
	logs := repo.db.confidenceLogs[:0]
	for _, log := range repo.db.confidenceLogs {
		if log.SkillID != id {
			logs = append(logs, log)
		}
	}
	repo.db.confidenceLogs = logs
	return nil
}

func (repo *skillRepository) GetSkill(_ context.Context, id string) (skill.Skill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	i := repo.db.skillIndex(id)
	if i < 0 {
		return skill.Skill{}, skill.ErrNotFound
	}
	return repo.db.skills[i], nil
}

func (repo *skillRepository) QuerySkills(context.Context) ([]skill.Skill, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	skills := append([]skill.Skill{}, repo.db.skills...)
	sort.SliceStable(skills, func(i, j int) bool { return skills[i].Name < skills[j].Name })
	return skills, nil
}

func (repo *skillRepository) QueryConfidenceLogs(_ context.Context, skillID string) ([]skill.ConfidenceLog, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	logs := make([]skill.ConfidenceLog, 0)
	for _, log := range repo.db.confidenceLogs {
		if log.SkillID == skillID {
			logs = append(logs, log)
		}
	}
	return logs, nil
}
