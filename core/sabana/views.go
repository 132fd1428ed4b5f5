package sabana

import (
	"context"
	"sort"
	"strconv"

	"github.com/pkg/errors"

	"github.com/formavista/sabana/core/catalog"
)

// Projections are recomputed from current store state on every call; nothing
// is cached, so the board can never render stale slots.

// BaseView returns the flat projection: one row per (outcome, quarter)
// assignment, ordered by competency, numeric outcome code, quarter sequence.
func (svc *Service) BaseView(ctx context.Context, cohortID int) ([]BaseRow, error) {
	if _, err := svc.catalog.GetCohort(ctx, cohortID); err != nil {
		if errors.Cause(err) == catalog.ErrNotFound {
			return nil, ErrCohortNotFound
		}
		return nil, errors.Wrap(err, "fetching cohort")
	}

	rows, err := svc.repo.QueryBaseRows(ctx, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying base rows")
	}
	sortBaseRows(rows)
	if rows == nil {
		rows = []BaseRow{}
	}
	return rows, nil
}

// MatrixView returns the pivoted projection: one row per outcome, one cell
// per quarter column, for direct rendering as a grid.
func (svc *Service) MatrixView(ctx context.Context, cohortID int) (*Matrix, error) {
	qtrs, err := svc.ListQuarters(ctx, cohortID)
	if err != nil {
		return nil, err
	}

	rows, err := svc.repo.QueryBaseRows(ctx, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying base rows")
	}
	sortBaseRows(rows)

	return pivot(cohortID, qtrs, rows), nil
}

// pivot reshapes base rows into one matrix row per outcome with one cell per
// quarter column. Base rows arrive sorted, so outcome grouping preserves the
// competency / numeric-code ordering.
func pivot(cohortID int, qtrs []catalog.Quarter, rows []BaseRow) *Matrix {
	cols := make([]QuarterColumn, 0, len(qtrs))
	colIdx := make(map[int]int, len(qtrs)) // quarter id -> column position
	for i, q := range qtrs {
		cols = append(cols, QuarterColumn{QuarterID: q.ID, Sequence: q.Sequence, Phase: q.Phase})
		colIdx[q.ID] = i
	}

	mtx := &Matrix{CohortID: cohortID, Quarters: cols, Rows: []MatrixRow{}}
	rowIdx := make(map[int]int) // outcome id -> matrix row position

	for _, row := range rows {
		i, ok := rowIdx[row.OutcomeID]
		if !ok {
			cells := make([]MatrixCell, len(cols))
			for j, col := range cols {
				cells[j] = MatrixCell{QuarterID: col.QuarterID}
			}
			mtx.Rows = append(mtx.Rows, MatrixRow{
				OutcomeID:      row.OutcomeID,
				OutcomeCode:    row.OutcomeCode,
				OutcomeLabel:   row.OutcomeLabel,
				Duration:       row.Duration,
				CompetencyID:   row.CompetencyID,
				CompetencyCode: row.CompetencyCode,
				CompetencyName: row.CompetencyName,
				Cells:          cells,
			})
			i = len(mtx.Rows) - 1
			rowIdx[row.OutcomeID] = i
		}

		j, ok := colIdx[row.QuarterID]
		if !ok {
			continue // assignment on a quarter no longer in the plan
		}
		mtx.Rows[i].Cells[j] = MatrixCell{
			QuarterID:    row.QuarterID,
			Assigned:     true,
			AssignmentID: row.AssignmentID,
			QuarterHours: row.QuarterHours,
			WeeklyHours:  row.WeeklyHours,
			Status:       row.Status,
			InstructorID: row.InstructorID,
		}
	}
	return mtx
}

func sortBaseRows(rows []BaseRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].CompetencyID != rows[j].CompetencyID {
			return rows[i].CompetencyID < rows[j].CompetencyID
		}
		if ci, cj := numericCode(rows[i].OutcomeCode), numericCode(rows[j].OutcomeCode); ci != cj {
			return ci < cj
		}
		return rows[i].QuarterSequence < rows[j].QuarterSequence
	})
}

func sortOutcomeSummaries(outs []OutcomeSummary) {
	sort.SliceStable(outs, func(i, j int) bool {
		if outs[i].CompetencyID != outs[j].CompetencyID {
			return outs[i].CompetencyID < outs[j].CompetencyID
		}
		return numericCode(outs[i].OutcomeCode) < numericCode(outs[j].OutcomeCode)
	})
}

// numericCode orders outcome codes by their numeric value ("2" before "10");
// non-numeric codes sort last, falling back to the stable input order.
func numericCode(code string) int {
	end := 0
	for end < len(code) && code[end] >= '0' && code[end] <= '9' {
		end++
	}
	if end == 0 {
		return int(^uint(0) >> 1)
	}
	n, err := strconv.Atoi(code[:end])
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
