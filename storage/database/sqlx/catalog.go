package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil) // interface compliance check

func NewCatalogRepository(db *sqlx.DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) ext(exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*sqlx.Tx); ok {
			return tx
		}
	}
	return repo.db
}

// trapNoRowsErr maps psql "no rows" err to catalog.ErrNotFound
func trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return catalog.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *catalogRepository) GetProgram(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Program, error) {
	var prg catalog.Program
	err := sqlx.GetContext(ctx, repo.ext(exec), &prg,
		`SELECT id, code, name FROM programs WHERE id = $1`, id)
	if err != nil {
		return catalog.Program{}, trapNoRowsErr(err, "finding program")
	}
	return prg, nil
}

func (repo *catalogRepository) GetCompetency(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Competency, error) {
	var cpt catalog.Competency
	err := sqlx.GetContext(ctx, repo.ext(exec), &cpt,
		`SELECT id, program_id, code, name, max_duration FROM competencies WHERE id = $1`, id)
	if err != nil {
		return catalog.Competency{}, trapNoRowsErr(err, "finding competency")
	}
	return cpt, nil
}

func (repo *catalogRepository) GetOutcome(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.LearningOutcome, error) {
	var out catalog.LearningOutcome
	err := sqlx.GetContext(ctx, repo.ext(exec), &out,
		`SELECT id, competency_id, code, label, duration FROM learning_outcomes WHERE id = $1`, id)
	if err != nil {
		return catalog.LearningOutcome{}, trapNoRowsErr(err, "finding learning outcome")
	}
	return out, nil
}

func (repo *catalogRepository) GetCohort(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Cohort, error) {
	var cht catalog.Cohort
	err := sqlx.GetContext(ctx, repo.ext(exec), &cht,
		`SELECT id, program_id, modality, shift, start_date, end_date FROM cohorts WHERE id = $1`, id)
	if err != nil {
		return catalog.Cohort{}, trapNoRowsErr(err, "finding cohort")
	}
	return cht, nil
}

func (repo *catalogRepository) GetQuarter(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Quarter, error) {
	var qtr catalog.Quarter
	err := sqlx.GetContext(ctx, repo.ext(exec), &qtr,
		`SELECT id, plan_id, sequence, phase FROM quarters WHERE id = $1`, id)
	if err != nil {
		return catalog.Quarter{}, trapNoRowsErr(err, "finding quarter")
	}
	return qtr, nil
}

func (repo *catalogRepository) GetInstructor(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.Instructor, error) {
	var ins catalog.Instructor
	err := sqlx.GetContext(ctx, repo.ext(exec), &ins,
		`SELECT id, name, email, is_active FROM instructors WHERE id = $1`, id)
	if err != nil {
		return catalog.Instructor{}, trapNoRowsErr(err, "finding instructor")
	}
	return ins, nil
}

func (repo *catalogRepository) GetPlan(ctx context.Context, id int, exec ...core.DBExecutor) (catalog.CurriculumPlan, error) {
	var pln catalog.CurriculumPlan
	err := sqlx.GetContext(ctx, repo.ext(exec), &pln,
		`SELECT id, cohort_id, created_at FROM curriculum_plans WHERE id = $1`, id)
	if err != nil {
		return catalog.CurriculumPlan{}, trapNoRowsErr(err, "finding curriculum plan")
	}
	return pln, nil
}

func (repo *catalogRepository) QueryCohortQuarters(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]catalog.Quarter, error) {
	var qtrs []catalog.Quarter
	err := sqlx.SelectContext(ctx, repo.ext(exec), &qtrs,
		`SELECT q.id, q.plan_id, q.sequence, q.phase
		 FROM quarters q
		 JOIN curriculum_plans p ON q.plan_id = p.id
		 WHERE p.cohort_id = $1
		 ORDER BY q.sequence`, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying cohort quarters")
	}
	return qtrs, nil
}
