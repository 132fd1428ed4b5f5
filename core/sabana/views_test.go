package sabana

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/formavista/sabana/core/catalog"
)

func Test_numericCode(t *testing.T) {
	assert.Equal(t, 2, numericCode("2"))
	assert.Equal(t, 10, numericCode("10"))
	assert.Equal(t, 3, numericCode("3-A"))
	assert.Less(t, numericCode("2"), numericCode("10"))

	// non-numeric codes sort last
	assert.Greater(t, numericCode("RAP"), numericCode("999"))
	assert.Greater(t, numericCode(""), numericCode("1"))
}

func Test_sortBaseRows(t *testing.T) {
	rows := []BaseRow{
		{OutcomeID: 3, OutcomeCode: "1", CompetencyID: 2, QuarterSequence: 1},
		{OutcomeID: 2, OutcomeCode: "10", CompetencyID: 1, QuarterSequence: 2},
		{OutcomeID: 1, OutcomeCode: "2", CompetencyID: 1, QuarterSequence: 3},
		{OutcomeID: 2, OutcomeCode: "10", CompetencyID: 1, QuarterSequence: 1},
	}
	sortBaseRows(rows)

	assert.Equal(t, 1, rows[0].OutcomeID)
	assert.Equal(t, 2, rows[1].OutcomeID)
	assert.Equal(t, 1, rows[1].QuarterSequence)
	assert.Equal(t, 2, rows[2].OutcomeID)
	assert.Equal(t, 2, rows[2].QuarterSequence)
	assert.Equal(t, 3, rows[3].OutcomeID)
}

func Test_pivot(t *testing.T) {
	qtrs := []catalog.Quarter{
		{ID: 11, Sequence: 1, Phase: catalog.PhaseAnalysis},
		{ID: 12, Sequence: 2, Phase: catalog.PhasePlanning},
	}
	rows := []BaseRow{
		{AssignmentID: 1, OutcomeID: 1, OutcomeCode: "2", CompetencyID: 1, QuarterID: 11, QuarterSequence: 1, QuarterHours: 110, WeeklyHours: 10, Status: StatusPlanned},
		{AssignmentID: 2, OutcomeID: 1, OutcomeCode: "2", CompetencyID: 1, QuarterID: 12, QuarterSequence: 2, QuarterHours: 110, WeeklyHours: 10, Status: StatusPlanned},
		{AssignmentID: 3, OutcomeID: 2, OutcomeCode: "10", CompetencyID: 1, QuarterID: 12, QuarterSequence: 2, QuarterHours: 220, WeeklyHours: 20, Status: StatusPlanned},
		// quarter no longer in the plan: dropped from the grid
		{AssignmentID: 4, OutcomeID: 2, OutcomeCode: "10", CompetencyID: 1, QuarterID: 99, QuarterSequence: 9},
	}

	mtx := pivot(7, qtrs, rows)

	assert.Equal(t, 7, mtx.CohortID)
	assert.Equal(t, []QuarterColumn{
		{QuarterID: 11, Sequence: 1, Phase: catalog.PhaseAnalysis},
		{QuarterID: 12, Sequence: 2, Phase: catalog.PhasePlanning},
	}, mtx.Quarters)

	if assert.Len(t, mtx.Rows, 2) {
		assert.Equal(t, 1, mtx.Rows[0].OutcomeID)
		assert.True(t, mtx.Rows[0].Cells[0].Assigned)
		assert.True(t, mtx.Rows[0].Cells[1].Assigned)
		assert.Equal(t, 1, mtx.Rows[0].Cells[0].AssignmentID)

		assert.Equal(t, 2, mtx.Rows[1].OutcomeID)
		assert.False(t, mtx.Rows[1].Cells[0].Assigned)
		assert.Equal(t, 11, mtx.Rows[1].Cells[0].QuarterID) // empty cell still carries its column
		assert.True(t, mtx.Rows[1].Cells[1].Assigned)
		assert.Equal(t, 220, mtx.Rows[1].Cells[1].QuarterHours)
	}
}

func Test_pivot_emptyPlan(t *testing.T) {
	mtx := pivot(7, nil, nil)
	assert.Equal(t, 7, mtx.CohortID)
	assert.Empty(t, mtx.Quarters)
	assert.Empty(t, mtx.Rows)
}

func Test_Assignment_SetQuarterHours(t *testing.T) {
	var asg Assignment
	asg.SetQuarterHours(44)
	assert.Equal(t, 44, asg.QuarterHours)
	assert.InDelta(t, 4.0, asg.WeeklyHours, 1e-9)

	asg.SetQuarterHours(0)
	assert.Zero(t, asg.QuarterHours)
	assert.Zero(t, asg.WeeklyHours)
}
