package dummydb

import (
	"context"
	"sort"

	"github.com/formavista/sabana/core"
	"github.com/formavista/sabana/core/sabana"
)

type assignmentRepository struct {
	db *DB
}

var _ sabana.Repository = (*assignmentRepository)(nil) // interface compliance check

func NewAssignmentRepository(db *DB) *assignmentRepository {
	return &assignmentRepository{db: db}
}

// txMarker is passed to Atomic callbacks so repository methods know the
// store lock is already held.
type txMarker struct{ core.DBExecutor }

// Atomic serializes mutating sections on the store's write lock, which gives
// tests the same linearization the SQL repository gets from its per-outcome
// advisory lock.
func (repo *assignmentRepository) Atomic(_ context.Context, fn func(exec core.DBExecutor) error) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	return fn(txMarker{})
}

func (repo *assignmentRepository) rlock(exec []core.DBExecutor) func() {
	if len(exec) > 0 {
		return func() {}
	}
	repo.db.mu.RLock()
	return repo.db.mu.RUnlock
}

func (repo *assignmentRepository) lock(exec []core.DBExecutor) func() {
	if len(exec) > 0 {
		return func() {}
	}
	repo.db.mu.Lock()
	return repo.db.mu.Unlock
}

func (repo *assignmentRepository) GetAssignment(_ context.Context, id int, exec ...core.DBExecutor) (sabana.Assignment, error) {
	defer repo.rlock(exec)()

	if asg, ok := repo.db.assignments[id]; ok {
		return *asg, nil
	}
	return sabana.Assignment{}, sabana.ErrNotFound
}

func (repo *assignmentRepository) GetOutcomeQuarterAssignment(_ context.Context, outcomeID, quarterID int, exec ...core.DBExecutor) (sabana.Assignment, error) {
	defer repo.rlock(exec)()

	for _, asg := range repo.db.assignments {
		if asg.OutcomeID == outcomeID && asg.QuarterID == quarterID {
			return *asg, nil
		}
	}
	return sabana.Assignment{}, sabana.ErrNotFound
}

func (repo *assignmentRepository) LockOutcomeAssignments(ctx context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]sabana.Assignment, error) {
	return repo.QueryOutcomeAssignments(ctx, outcomeID, cohortID, exec...)
}

func (repo *assignmentRepository) CreateAssignment(_ context.Context, asg sabana.Assignment, exec ...core.DBExecutor) (sabana.Assignment, error) {
	defer repo.lock(exec)()

	repo.db.assignmentPK++
	asg.ID = repo.db.assignmentPK
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) UpdateAssignment(_ context.Context, asg sabana.Assignment, exec ...core.DBExecutor) (sabana.Assignment, error) {
	defer repo.lock(exec)()

	if _, ok := repo.db.assignments[asg.ID]; !ok {
		return sabana.Assignment{}, sabana.ErrNotFound
	}
	repo.db.assignments[asg.ID] = &asg
	return asg, nil
}

func (repo *assignmentRepository) DeleteAssignment(_ context.Context, id int, exec ...core.DBExecutor) error {
	defer repo.lock(exec)()
	delete(repo.db.assignments, id)
	return nil
}

func (repo *assignmentRepository) QueryOutcomeAssignments(_ context.Context, outcomeID, cohortID int, exec ...core.DBExecutor) ([]sabana.Assignment, error) {
	defer repo.rlock(exec)()

	var asgs []sabana.Assignment
	for _, asg := range repo.db.assignments {
		if asg.OutcomeID == outcomeID && asg.CohortID == cohortID {
			asgs = append(asgs, *asg)
		}
	}
	sort.Slice(asgs, func(i, j int) bool { return asgs[i].ID < asgs[j].ID })
	return asgs, nil
}

func (repo *assignmentRepository) QueryBaseRows(_ context.Context, cohortID int, exec ...core.DBExecutor) ([]sabana.BaseRow, error) {
	defer repo.rlock(exec)()

	var rows []sabana.BaseRow
	for _, asg := range repo.db.assignments {
		if asg.CohortID != cohortID {
			continue
		}
		if row, ok := repo.baseRow(asg); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (repo *assignmentRepository) QueryQuarterRows(_ context.Context, quarterID int, exec ...core.DBExecutor) ([]sabana.BaseRow, error) {
	defer repo.rlock(exec)()

	var rows []sabana.BaseRow
	for _, asg := range repo.db.assignments {
		if asg.QuarterID != quarterID {
			continue
		}
		if row, ok := repo.baseRow(asg); ok {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (repo *assignmentRepository) QueryAvailableOutcomes(_ context.Context, programID, cohortID int, exec ...core.DBExecutor) ([]sabana.OutcomeSummary, error) {
	defer repo.rlock(exec)()

	assigned := make(map[int]bool)
	for _, asg := range repo.db.assignments {
		if asg.CohortID == cohortID {
			assigned[asg.OutcomeID] = true
		}
	}

	var outs []sabana.OutcomeSummary
	for _, out := range repo.db.outcomes {
		if assigned[out.ID] {
			continue
		}
		cpt, ok := repo.db.competencies[out.CompetencyID]
		if !ok || cpt.ProgramID != programID {
			continue
		}
		outs = append(outs, sabana.OutcomeSummary{
			OutcomeID:      out.ID,
			OutcomeCode:    out.Code,
			OutcomeLabel:   out.Label,
			Duration:       out.Duration,
			CompetencyID:   cpt.ID,
			CompetencyCode: cpt.Code,
			CompetencyName: cpt.Name,
		})
	}
	return outs, nil
}

// baseRow joins an assignment with its outcome, competency and quarter rows.
func (repo *assignmentRepository) baseRow(asg *sabana.Assignment) (sabana.BaseRow, bool) {
	out, ok := repo.db.outcomes[asg.OutcomeID]
	if !ok {
		return sabana.BaseRow{}, false
	}
	cpt, ok := repo.db.competencies[out.CompetencyID]
	if !ok {
		return sabana.BaseRow{}, false
	}
	qtr, ok := repo.db.quarters[asg.QuarterID]
	if !ok {
		return sabana.BaseRow{}, false
	}
	return sabana.BaseRow{
		AssignmentID:    asg.ID,
		OutcomeID:       out.ID,
		OutcomeCode:     out.Code,
		OutcomeLabel:    out.Label,
		Duration:        out.Duration,
		CompetencyID:    cpt.ID,
		CompetencyCode:  cpt.Code,
		CompetencyName:  cpt.Name,
		QuarterID:       qtr.ID,
		QuarterSequence: qtr.Sequence,
		Phase:           qtr.Phase,
		QuarterHours:    asg.QuarterHours,
		WeeklyHours:     asg.WeeklyHours,
		Status:          asg.Status,
		InstructorID:    asg.InstructorID,
	}, true
}
