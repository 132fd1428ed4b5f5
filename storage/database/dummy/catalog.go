package dummydb

import (
	"context"
	"sort"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) GetProgram(_ context.Context, id int, _ ...core.DBExecutor) (catalog.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if prg, ok := repo.db.programs[id]; ok {
		return *prg, nil
	}
	return catalog.Program{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetCompetency(_ context.Context, id int, _ ...core.DBExecutor) (catalog.Competency, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cpt, ok := repo.db.competencies[id]; ok {
		return *cpt, nil
	}
	return catalog.Competency{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetOutcome(_ context.Context, id int, _ ...core.DBExecutor) (catalog.LearningOutcome, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if out, ok := repo.db.outcomes[id]; ok {
		return *out, nil
	}
	return catalog.LearningOutcome{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetCohort(_ context.Context, id int, _ ...core.DBExecutor) (catalog.Cohort, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if cht, ok := repo.db.cohorts[id]; ok {
		return *cht, nil
	}
	return catalog.Cohort{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetQuarter(_ context.Context, id int, _ ...core.DBExecutor) (catalog.Quarter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if qtr, ok := repo.db.quarters[id]; ok {
		return *qtr, nil
	}
	return catalog.Quarter{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetInstructor(_ context.Context, id int, _ ...core.DBExecutor) (catalog.Instructor, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if ins, ok := repo.db.instructors[id]; ok {
		return *ins, nil
	}
	return catalog.Instructor{}, catalog.ErrNotFound
}

func (repo *catalogRepository) GetPlan(_ context.Context, id int, _ ...core.DBExecutor) (catalog.CurriculumPlan, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if pln, ok := repo.db.plans[id]; ok {
		return *pln, nil
	}
	return catalog.CurriculumPlan{}, catalog.ErrNotFound
}

func (repo *catalogRepository) QueryCohortQuarters(_ context.Context, cohortID int, _ ...core.DBExecutor) ([]catalog.Quarter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var qtrs []catalog.Quarter
	for _, pln := range repo.db.plans {
		if pln.CohortID != cohortID {
			continue
		}
		for _, qtr := range repo.db.quarters {
			if qtr.PlanID == pln.ID {
				qtrs = append(qtrs, *qtr)
			}
		}
	}
	sort.Slice(qtrs, func(i, j int) bool { return qtrs[i].Sequence < qtrs[j].Sequence })
	return qtrs, nil
}
