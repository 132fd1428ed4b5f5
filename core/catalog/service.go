package catalog

import (
	"context"
	"errors"

	"github.com/formavista/sabana/core"
)

var (
	// errors
	ErrNotFound        = errors.New("catalog record not found")
	ErrCohortNoProgram = errors.New("cohort has no program associated")
)

type (
	// Repository provides read-only access to the catalog tables. Their
	// lifecycle is owned by the administrative CRUD modules, never by this core.
	Repository interface {
		GetProgram(ctx context.Context, id int, exec ...core.DBExecutor) (Program, error)
		GetCompetency(ctx context.Context, id int, exec ...core.DBExecutor) (Competency, error)
		GetOutcome(ctx context.Context, id int, exec ...core.DBExecutor) (LearningOutcome, error)
		GetCohort(ctx context.Context, id int, exec ...core.DBExecutor) (Cohort, error)
		GetQuarter(ctx context.Context, id int, exec ...core.DBExecutor) (Quarter, error)
		GetInstructor(ctx context.Context, id int, exec ...core.DBExecutor) (Instructor, error)
		GetPlan(ctx context.Context, id int, exec ...core.DBExecutor) (CurriculumPlan, error)
		// QueryCohortQuarters returns the cohort's quarters ordered by sequence.
		QueryCohortQuarters(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]Quarter, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) GetCohort(ctx context.Context, id int) (Cohort, error) {
	return svc.repo.GetCohort(ctx, id)
}

func (svc *Service) GetOutcome(ctx context.Context, id int) (LearningOutcome, error) {
	return svc.repo.GetOutcome(ctx, id)
}

func (svc *Service) GetInstructor(ctx context.Context, id int) (Instructor, error) {
	return svc.repo.GetInstructor(ctx, id)
}

func (svc *Service) QueryCohortQuarters(ctx context.Context, cohortID int) ([]Quarter, error) {
	if _, err := svc.repo.GetCohort(ctx, cohortID); err != nil {
		return nil, err
	}
	return svc.repo.QueryCohortQuarters(ctx, cohortID)
}

// CohortProgramID resolves the program a cohort belongs to.
// Returns ErrNotFound when the cohort is missing and ErrCohortNoProgram when
// the cohort exists without a program.
func (svc *Service) CohortProgramID(ctx context.Context, cohortID int) (int, error) {
	cht, err := svc.repo.GetCohort(ctx, cohortID)
	if err != nil {
		return 0, err
	}
	if !cht.ProgramID.Valid {
		return 0, ErrCohortNoProgram
	}
	return int(cht.ProgramID.Int), nil
}

// OutcomeProgramID resolves the program an outcome belongs to through its competency.
func (svc *Service) OutcomeProgramID(ctx context.Context, outcomeID int) (int, error) {
	out, err := svc.repo.GetOutcome(ctx, outcomeID)
	if err != nil {
		return 0, err
	}
	cpt, err := svc.repo.GetCompetency(ctx, out.CompetencyID)
	if err != nil {
		return 0, err
	}
	return cpt.ProgramID, nil
}

// QuarterCohortID resolves the cohort a quarter belongs to through its curriculum plan.
func (svc *Service) QuarterCohortID(ctx context.Context, quarterID int) (int, error) {
	qtr, err := svc.repo.GetQuarter(ctx, quarterID)
	if err != nil {
		return 0, err
	}
	pln, err := svc.repo.GetPlan(ctx, qtr.PlanID)
	if err != nil {
		return 0, err
	}
	return pln.CohortID, nil
}
