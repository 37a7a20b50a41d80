package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/recomendo/core/college"
)

type collegeRepository struct {
	db *DB
}

var _ college.Repository = (*collegeRepository)(nil) // interface compliance check

func NewCollegeRepository(db *DB) *collegeRepository {
	return &collegeRepository{db: db}
}

func cloneCollege(c *college.College) college.College {
	cc := *c
	cc.Values = cloneStrings(c.Values)
	cc.Characteristics = cloneStrings(c.Characteristics)
	return cc
}

func (repo *collegeRepository) CreateCollege(_ context.Context, c college.College) (college.College, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := college.NameKey(c.Name)
	for _, existing := range repo.db.colleges {
		if college.NameKey(existing.Name) == key {
			return college.College{}, college.ErrNameExists
		}
	}
	c.ID = uuid.New().String()
	c.Values = cloneStrings(c.Values)
	c.Characteristics = cloneStrings(c.Characteristics)
	repo.db.colleges[c.ID] = &c
	return cloneCollege(&c), nil
}

func (repo *collegeRepository) GetCollegeByID(_ context.Context, id string) (college.College, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if c, ok := repo.db.colleges[id]; ok {
		return cloneCollege(c), nil
	}
	return college.College{}, college.ErrNotFound
}

func (repo *collegeRepository) GetCollegeByName(_ context.Context, name string) (college.College, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	key := college.NameKey(name)
	for _, c := range repo.db.colleges {
		if college.NameKey(c.Name) == key {
			return cloneCollege(c), nil
		}
	}
	return college.College{}, college.ErrNotFound
}

func (repo *collegeRepository) QueryColleges(_ context.Context) ([]college.College, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	colleges := make([]college.College, 0, len(repo.db.colleges))
	for _, c := range repo.db.colleges {
		colleges = append(colleges, cloneCollege(c))
	}
	sort.Slice(colleges, func(i, j int) bool { return colleges[i].Name < colleges[j].Name })
	return colleges, nil
}
