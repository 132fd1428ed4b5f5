package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/sabana"
)

const baseRowSelect = `
	SELECT a.id AS assignment_id,
	       o.id AS outcome_id, o.code AS outcome_code, o.label AS outcome_label, o.duration,
	       c.id AS competency_id, c.code AS competency_code, c.name AS competency_name,
	       q.id AS quarter_id, q.sequence AS quarter_sequence, q.phase,
	       a.quarter_hours, a.weekly_hours, a.status, a.instructor_id
	FROM assignments a
	JOIN learning_outcomes o ON a.outcome_id = o.id
	JOIN competencies c ON o.competency_id = c.id
	JOIN quarters q ON a.quarter_id = q.id`

type assignmentRepository struct {
	db *sqlx.DB
}

var _ sabana.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *sqlx.DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) ext(exec []core.DBExecutor) sqlx.ExtContext {
	if len(exec) > 0 {
		if tx, ok := exec[0].(*sqlx.Tx); ok {
			return tx
		}
	}
	return repo.db
}

// trapAsgNoRowsErr maps psql "no rows" err to sabana.ErrNotFound
func trapAsgNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return sabana.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// Atomic runs fn inside one database transaction, rolling back on any error.
func (repo *assignmentRepository) Atomic(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func (repo *assignmentRepository) GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (sabana.Assignment, error) {
	var asg sabana.Assignment
	err := sqlx.GetContext(ctx, repo.ext(exec), &asg,
		`SELECT id, outcome_id, quarter_id, cohort_id, quarter_hours, weekly_hours, status, instructor_id, created_at, updated_at
		 FROM assignments WHERE id = $1`, id)
	if err != nil {
		return sabana.Assignment{}, trapAsgNoRowsErr(err, "finding assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) GetOutcomeQuarterAssignment(ctx context.Context, outcomeID, quarterID int, exec ...core.DBExecutor) (sabana.Assignment, error) {
	var asg sabana.Assignment
	err := sqlx.GetContext(ctx, repo.ext(exec), &asg,
		`SELECT id, outcome_id, quarter_id, cohort_id, quarter_hours, weekly_hours, status, instructor_id, created_at, updated_at
		 FROM assignments WHERE outcome_id = $1 AND quarter_id = $2`, outcomeID, quarterID)
	if err != nil {
		return sabana.Assignment{}, trapAsgNoRowsErr(err, "finding assignment by outcome and quarter")
	}
	return asg, nil
}

func (repo *assignmentRepository) LockOutcomeAssignments(ctx context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]sabana.Assignment, error) {
	// Writers of the same (outcome, cohort) serialize on a transaction-scoped
	// advisory lock before any row is read. FOR UPDATE alone cannot order
	// them under READ COMMITTED: a waiter resuming after the holder commits
	// keeps its own statement snapshot, in which the holder's freshly
	// inserted row is invisible and unlocked, so a losing mover would read
	// an empty set and supersede nothing.
	if _, err := repo.ext(exec).ExecContext(ctx,
		`SELECT pg_advisory_xact_lock($1, $2)`, outcomeID, cohortID); err != nil {
		return nil, errors.Wrap(err, "acquiring outcome advisory lock")
	}

	var asgs []sabana.Assignment
	err := sqlx.SelectContext(ctx, repo.ext(exec), &asgs,
		`SELECT id, outcome_id, quarter_id, cohort_id, quarter_hours, weekly_hours, status, instructor_id, created_at, updated_at
		 FROM assignments WHERE outcome_id = $1 AND cohort_id = $2
		 ORDER BY id
		 FOR UPDATE`, outcomeID, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "locking outcome assignments")
	}
	return asgs, nil
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg sabana.Assignment, exec ...core.DBExecutor) (sabana.Assignment, error) {
	row := repo.ext(exec).QueryRowxContext(ctx,
		`INSERT INTO assignments (outcome_id, quarter_id, cohort_id, quarter_hours, weekly_hours, status, instructor_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		asg.OutcomeID, asg.QuarterID, asg.CohortID, asg.QuarterHours, asg.WeeklyHours,
		asg.Status, asg.InstructorID, asg.CreatedAt, asg.UpdatedAt)
	if err := row.Scan(&asg.ID); err != nil {
		return sabana.Assignment{}, errors.Wrap(err, "inserting assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asg sabana.Assignment, exec ...core.DBExecutor) (sabana.Assignment, error) {
	_, err := repo.ext(exec).ExecContext(ctx,
		`UPDATE assignments
		 SET quarter_hours = $1, weekly_hours = $2, status = $3, instructor_id = $4, updated_at = $5
		 WHERE id = $6`,
		asg.QuarterHours, asg.WeeklyHours, asg.Status, asg.InstructorID, asg.UpdatedAt, asg.ID)
	if err != nil {
		return sabana.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error {
	if _, err := repo.ext(exec).ExecContext(ctx, `DELETE FROM assignments WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return nil
}

func (repo *assignmentRepository) QueryOutcomeAssignments(ctx context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]sabana.Assignment, error) {
	var asgs []sabana.Assignment
	err := sqlx.SelectContext(ctx, repo.ext(exec), &asgs,
		`SELECT id, outcome_id, quarter_id, cohort_id, quarter_hours, weekly_hours, status, instructor_id, created_at, updated_at
		 FROM assignments WHERE outcome_id = $1 AND cohort_id = $2
		 ORDER BY id`, outcomeID, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying outcome assignments")
	}
	return asgs, nil
}

func (repo *assignmentRepository) QueryBaseRows(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]sabana.BaseRow, error) {
	var rows []sabana.BaseRow
	err := sqlx.SelectContext(ctx, repo.ext(exec), &rows,
		baseRowSelect+`
		 WHERE a.cohort_id = $1
		 ORDER BY c.id, o.code, q.sequence`, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying base rows")
	}
	return rows, nil
}

func (repo *assignmentRepository) QueryQuarterRows(ctx context.Context, quarterID int, exec ...core.DBExecutor) ([]sabana.BaseRow, error) {
	var rows []sabana.BaseRow
	err := sqlx.SelectContext(ctx, repo.ext(exec), &rows,
		baseRowSelect+`
		 WHERE a.quarter_id = $1
		 ORDER BY c.id, o.code`, quarterID)
	if err != nil {
		return nil, errors.Wrap(err, "querying quarter rows")
	}
	return rows, nil
}

func (repo *assignmentRepository) QueryAvailableOutcomes(ctx context.Context, programID, cohortID int, exec ...core.DBExecutor) ([]sabana.OutcomeSummary, error) {
	var outs []sabana.OutcomeSummary
	err := sqlx.SelectContext(ctx, repo.ext(exec), &outs,
		`SELECT o.id AS outcome_id, o.code AS outcome_code, o.label AS outcome_label, o.duration,
		        c.id AS competency_id, c.code AS competency_code, c.name AS competency_name
		 FROM learning_outcomes o
		 JOIN competencies c ON o.competency_id = c.id
		 WHERE c.program_id = $1
		   AND o.id NOT IN (SELECT a.outcome_id FROM assignments a WHERE a.cohort_id = $2)
		 ORDER BY c.id, o.code`, programID, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying available outcomes")
	}
	return outs, nil
}
