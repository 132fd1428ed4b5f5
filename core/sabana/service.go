package sabana

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/catalog"
)

var (
	// errors
	ErrInvalidReference    = errors.New("outcome or quarter does not belong to this cohort")
	ErrDuplicateAssignment = errors.New("outcome is already assigned to this quarter")
	ErrNotAssigned         = errors.New("outcome is not assigned to this quarter")
	ErrNotFound            = errors.New("assignment not found")
	ErrScopeMismatch       = errors.New("assignment belongs to another cohort")
	ErrInstructorInactive  = errors.New("instructor is missing or inactive")
	ErrCohortNotFound      = errors.New("cohort not found")
	ErrQuarterNotInCohort  = errors.New("quarter does not belong to this cohort")
)

type (
	Repository interface {
		// Atomic runs fn inside one storage transaction; fn must pass exec to
		// every repository call it makes. Any error rolls the whole
		// transaction back.
		Atomic(ctx context.Context, fn func(exec core.DBExecutor) error) error

		GetAssignment(ctx context.Context, id int, exec ...core.DBExecutor) (Assignment, error)
		GetOutcomeQuarterAssignment(ctx context.Context, outcomeID, quarterID int, exec ...core.DBExecutor) (Assignment, error)
		// LockOutcomeAssignments returns the outcome's assignment rows within
		// the cohort, ordered by id, locked until the surrounding transaction
		// ends. Concurrent movers of the same (outcome, cohort) serialize
		// before the rows are read, so a loser sees the winner's committed
		// placement.
		LockOutcomeAssignments(ctx context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]Assignment, error)
		CreateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment, exec ...core.DBExecutor) (Assignment, error)
		DeleteAssignment(ctx context.Context, id int, exec ...core.DBExecutor) error
		QueryOutcomeAssignments(ctx context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]Assignment, error)
		QueryBaseRows(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]BaseRow, error)
		QueryQuarterRows(ctx context.Context, quarterID int, exec ...core.DBExecutor) ([]BaseRow, error)
		// QueryAvailableOutcomes returns the program's outcomes that have no
		// assignment in the given cohort yet.
		QueryAvailableOutcomes(ctx context.Context, programID, cohortID int, exec ...core.DBExecutor) ([]OutcomeSummary, error)
	}

	Service struct {
		repo    Repository
		catalog *catalog.Service
	}
)

func NewService(repo Repository, catalogSvc *catalog.Service) *Service {
	return &Service{repo: repo, catalog: catalogSvc}
}

// Assign places an outcome in a quarter of the cohort's plan and returns the
// refreshed matrix projection. With Move set, all of the outcome's other
// placements in the cohort are superseded in the same transaction, carrying
// their workload and instructor over to the new quarter.
func (svc *Service) Assign(ctx context.Context, na NewAssignment) (*Matrix, error) {
	if ok, err := svc.outcomeBelongsToCohort(ctx, na.OutcomeID, na.CohortID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidReference
	}
	if ok, err := svc.quarterBelongsToCohort(ctx, na.QuarterID, na.CohortID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrInvalidReference
	}

	// nominal allocation; membership passed so the outcome exists
	out, err := svc.catalog.GetOutcome(ctx, na.OutcomeID)
	if err != nil {
		return nil, errors.Wrap(err, "fetching outcome")
	}

	err = svc.repo.Atomic(ctx, func(exec core.DBExecutor) error {
		existing, err := svc.repo.LockOutcomeAssignments(ctx, na.OutcomeID, na.CohortID, exec)
		if err != nil {
			return errors.Wrap(err, "locking outcome assignments")
		}

		// duplicate check must happen under the same locks as the insert
		for _, asg := range existing {
			if asg.QuarterID == na.QuarterID {
				return ErrDuplicateAssignment
			}
		}

		asg := Assignment{
			OutcomeID: na.OutcomeID,
			QuarterID: na.QuarterID,
			CohortID:  na.CohortID,
			Status:    StatusPlanned,
		}
		asg.SetQuarterHours(out.Duration)

		if na.Move {
			for _, old := range existing {
				if err = svc.repo.DeleteAssignment(ctx, old.ID, exec); err != nil {
					return errors.Wrap(err, "deleting superseded assignment")
				}
			}
			// the relocated slot keeps the workload and instructor of the most
			// recent placement instead of resetting them
			if n := len(existing); n > 0 {
				last := existing[n-1]
				asg.InstructorID = last.InstructorID
				asg.Status = last.Status
				asg.SetQuarterHours(last.QuarterHours)
			}
		}

		now := time.Now().UTC()
		asg.CreatedAt, asg.UpdatedAt = now, now
		if _, err = svc.repo.CreateAssignment(ctx, asg, exec); err != nil {
			return errors.Wrap(err, "creating assignment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// read after commit so the board reflects exactly the committed state
	return svc.MatrixView(ctx, na.CohortID)
}

// Unassign removes an outcome's placement from a quarter and redistributes
// the outcome's nominal duration across its remaining placements.
func (svc *Service) Unassign(ctx context.Context, ra RemoveAssignment) (*Matrix, error) {
	out, err := svc.catalog.GetOutcome(ctx, ra.OutcomeID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return nil, ErrNotAssigned
		}
		return nil, errors.Wrap(err, "fetching outcome")
	}

	err = svc.repo.Atomic(ctx, func(exec core.DBExecutor) error {
		asg, err := svc.repo.GetOutcomeQuarterAssignment(ctx, ra.OutcomeID, ra.QuarterID, exec)
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return ErrNotAssigned
			}
			return errors.Wrap(err, "finding assignment")
		}
		if asg.CohortID != ra.CohortID {
			return ErrNotAssigned
		}

		if err = svc.repo.DeleteAssignment(ctx, asg.ID, exec); err != nil {
			return errors.Wrap(err, "deleting assignment")
		}
		return svc.recalcOutcomeHours(ctx, exec, ra.OutcomeID, ra.CohortID, out.Duration)
	})
	if err != nil {
		return nil, err
	}

	return svc.MatrixView(ctx, ra.CohortID)
}

// recalcOutcomeHours redistributes the outcome's nominal duration evenly
// across its remaining assignments in the cohort, recomputing weekly hours
// per row.
func (svc *Service) recalcOutcomeHours(ctx context.Context, exec core.DBExecutor, outcomeID, cohortID, duration int) error {
	remaining, err := svc.repo.QueryOutcomeAssignments(ctx, outcomeID, cohortID, exec)
	if err != nil {
		return errors.Wrap(err, "querying remaining assignments")
	}
	if len(remaining) == 0 {
		return nil
	}

	// the leading rows absorb the division remainder so the shares always
	// sum back to the nominal duration
	share, extra := duration/len(remaining), duration%len(remaining)
	now := time.Now().UTC()
	for i, asg := range remaining {
		hours := share
		if i < extra {
			hours++
		}
		asg.SetQuarterHours(hours)
		asg.UpdatedAt = now
		if _, err = svc.repo.UpdateAssignment(ctx, asg, exec); err != nil {
			return errors.Wrap(err, "redistributing outcome hours")
		}
	}
	return nil
}

// UpdateHours sets an assignment's quarter hours and recomputes the derived
// weekly hours. The cohort id guards against cross-cohort edits.
func (svc *Service) UpdateHours(ctx context.Context, assignmentID int, uh UpdateAssignmentHours) (Assignment, error) {
	var updated Assignment
	err := svc.repo.Atomic(ctx, func(exec core.DBExecutor) error {
		asg, err := svc.repo.GetAssignment(ctx, assignmentID, exec)
		if err != nil {
			return err
		}
		if asg.CohortID != uh.CohortID {
			return ErrScopeMismatch
		}

		asg.SetQuarterHours(uh.QuarterHours)
		asg.UpdatedAt = time.Now().UTC()
		if updated, err = svc.repo.UpdateAssignment(ctx, asg, exec); err != nil {
			return errors.Wrap(err, "updating assignment hours")
		}
		return nil
	})
	return updated, err
}

// AssignInstructor binds an instructor to an assignment. The instructor must
// exist and be active at the moment of binding.
func (svc *Service) AssignInstructor(ctx context.Context, assignmentID int, bi BindInstructor) (Assignment, error) {
	ins, err := svc.catalog.GetInstructor(ctx, bi.InstructorID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return Assignment{}, ErrInstructorInactive
		}
		return Assignment{}, errors.Wrap(err, "fetching instructor")
	}
	if !ins.IsActive {
		return Assignment{}, ErrInstructorInactive
	}

	var updated Assignment
	err = svc.repo.Atomic(ctx, func(exec core.DBExecutor) error {
		asg, err := svc.repo.GetAssignment(ctx, assignmentID, exec)
		if err != nil {
			return err
		}

		asg.InstructorID = null.IntFrom(ins.ID)
		asg.UpdatedAt = time.Now().UTC()
		if updated, err = svc.repo.UpdateAssignment(ctx, asg, exec); err != nil {
			return errors.Wrap(err, "binding instructor")
		}
		return nil
	})
	return updated, err
}

// ListQuarters returns the cohort's quarters ordered by sequence; the board
// renders them as columns.
func (svc *Service) ListQuarters(ctx context.Context, cohortID int) ([]catalog.Quarter, error) {
	qtrs, err := svc.catalog.QueryCohortQuarters(ctx, cohortID)
	if err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return nil, ErrCohortNotFound
		}
		return nil, errors.Wrap(err, "querying cohort quarters")
	}
	if qtrs == nil {
		qtrs = []catalog.Quarter{}
	}
	return qtrs, nil
}

// AvailableOutcomes lists the program's outcomes not yet placed in any
// quarter of the cohort, ordered by competency then numeric outcome code.
func (svc *Service) AvailableOutcomes(ctx context.Context, cohortID int) ([]OutcomeSummary, error) {
	programID, err := svc.catalog.CohortProgramID(ctx, cohortID)
	if err != nil {
		if isCatalogMiss(err) {
			return nil, ErrCohortNotFound
		}
		return nil, errors.Wrap(err, "resolving cohort program")
	}

	outs, err := svc.repo.QueryAvailableOutcomes(ctx, programID, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying available outcomes")
	}
	sortOutcomeSummaries(outs)
	if outs == nil {
		outs = []OutcomeSummary{}
	}
	return outs, nil
}

// AssignedOutcomes lists the assignments of one quarter of the cohort.
func (svc *Service) AssignedOutcomes(ctx context.Context, cohortID, quarterID int) ([]BaseRow, error) {
	if ok, err := svc.quarterBelongsToCohort(ctx, quarterID, cohortID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrQuarterNotInCohort
	}

	rows, err := svc.repo.QueryQuarterRows(ctx, quarterID)
	if err != nil {
		return nil, errors.Wrap(err, "querying quarter assignments")
	}
	sortBaseRows(rows)
	if rows == nil {
		rows = []BaseRow{}
	}
	return rows, nil
}
