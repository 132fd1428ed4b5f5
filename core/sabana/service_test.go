package sabana_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/formavista/sabana/core/catalog"
	"github.com/formavista/sabana/core/sabana"
	dummydb "github.com/formavista/sabana/storage/database/dummy"
)

type testEnv struct {
	db   *dummydb.DB
	repo sabana.Repository
	svc  *sabana.Service

	cohort      catalog.Cohort
	otherCohort catalog.Cohort
	quarters    []catalog.Quarter // cohort's plan, sequences 1..3
	otherQtr    catalog.Quarter   // otherCohort's plan

	outDesign catalog.LearningOutcome // competency 1, code "2", 220h
	outBuild  catalog.LearningOutcome // competency 1, code "10", 440h
	outDeploy catalog.LearningOutcome // competency 2, code "1", 220h
	outAlien  catalog.LearningOutcome // other program

	active   catalog.Instructor
	inactive catalog.Instructor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	env := &testEnv{db: db}
	env.repo = dummydb.NewAssignmentRepository(db)
	env.svc = sabana.NewService(env.repo, catalog.NewService(dummydb.NewCatalogRepository(db)))

	prg := db.AddProgram(catalog.Program{ID: 1, Code: "ADSI", Name: "Software Development"})
	otherPrg := db.AddProgram(catalog.Program{ID: 2, Code: "LOG", Name: "Logistics"})

	cpt1 := db.AddCompetency(catalog.Competency{ID: 1, ProgramID: prg.ID, Code: "220501", Name: "Build the software", MaxDuration: 880})
	cpt2 := db.AddCompetency(catalog.Competency{ID: 2, ProgramID: prg.ID, Code: "220505", Name: "Deploy the system", MaxDuration: 440})
	alienCpt := db.AddCompetency(catalog.Competency{ID: 3, ProgramID: otherPrg.ID, Code: "330101", Name: "Manage the supply chain", MaxDuration: 440})

	env.outDesign = db.AddOutcome(catalog.LearningOutcome{ID: 1, CompetencyID: cpt1.ID, Code: "2", Label: "Design the data model", Duration: 220})
	env.outBuild = db.AddOutcome(catalog.LearningOutcome{ID: 2, CompetencyID: cpt1.ID, Code: "10", Label: "Develop the modules", Duration: 440})
	env.outDeploy = db.AddOutcome(catalog.LearningOutcome{ID: 3, CompetencyID: cpt2.ID, Code: "1", Label: "Release the solution", Duration: 220})
	env.outAlien = db.AddOutcome(catalog.LearningOutcome{ID: 4, CompetencyID: alienCpt.ID, Code: "1", Label: "Plan the routes", Duration: 220})

	env.cohort = db.AddCohort(catalog.Cohort{ID: 1, ProgramID: null.IntFrom(prg.ID)})
	env.otherCohort = db.AddCohort(catalog.Cohort{ID: 2, ProgramID: null.IntFrom(prg.ID)})
	pln := db.AddPlan(catalog.CurriculumPlan{ID: 1, CohortID: env.cohort.ID})
	otherPln := db.AddPlan(catalog.CurriculumPlan{ID: 2, CohortID: env.otherCohort.ID})

	phases := []string{catalog.PhaseAnalysis, catalog.PhasePlanning, catalog.PhaseExecution}
	for i, phase := range phases {
		env.quarters = append(env.quarters, db.AddQuarter(catalog.Quarter{ID: i + 1, PlanID: pln.ID, Sequence: i + 1, Phase: phase}))
	}
	env.otherQtr = db.AddQuarter(catalog.Quarter{ID: 9, PlanID: otherPln.ID, Sequence: 1, Phase: catalog.PhaseAnalysis})

	env.active = db.AddInstructor(catalog.Instructor{ID: 1, Name: "Alba Rueda", Email: "alba@example.com", IsActive: true})
	env.inactive = db.AddInstructor(catalog.Instructor{ID: 2, Name: "Mario Quintero", Email: "mario@example.com", IsActive: false})

	return env
}

func (env *testEnv) assign(t *testing.T, out catalog.LearningOutcome, qtr catalog.Quarter, move bool) *sabana.Matrix {
	t.Helper()
	mtx, err := env.svc.Assign(context.Background(), sabana.NewAssignment{
		OutcomeID: out.ID,
		QuarterID: qtr.ID,
		CohortID:  env.cohort.ID,
		Move:      move,
	})
	require.NoError(t, err)
	return mtx
}

// outcomeRows returns the outcome's assignments within the cohort, ordered by id.
func (env *testEnv) outcomeRows(t *testing.T, out catalog.LearningOutcome) []sabana.Assignment {
	t.Helper()
	asgs, err := env.repo.QueryOutcomeAssignments(context.Background(), out.ID, env.cohort.ID)
	require.NoError(t, err)
	return asgs
}

func Test_sabana_Assign(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("outcome outside cohort program is rejected", func(t *testing.T) {
		_, err := env.svc.Assign(ctx, sabana.NewAssignment{
			OutcomeID: env.outAlien.ID, QuarterID: env.quarters[0].ID, CohortID: env.cohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrInvalidReference)
	})

	t.Run("quarter of another cohort is rejected", func(t *testing.T) {
		_, err := env.svc.Assign(ctx, sabana.NewAssignment{
			OutcomeID: env.outDesign.ID, QuarterID: env.otherQtr.ID, CohortID: env.cohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrInvalidReference)
	})

	t.Run("unknown references are rejected", func(t *testing.T) {
		_, err := env.svc.Assign(ctx, sabana.NewAssignment{
			OutcomeID: 999, QuarterID: env.quarters[0].ID, CohortID: env.cohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrInvalidReference)

		_, err = env.svc.Assign(ctx, sabana.NewAssignment{
			OutcomeID: env.outDesign.ID, QuarterID: env.quarters[0].ID, CohortID: 999,
		})
		assert.ErrorIs(t, err, sabana.ErrInvalidReference)
	})

	t.Run("placement defaults to nominal duration", func(t *testing.T) {
		mtx := env.assign(t, env.outDesign, env.quarters[0], false)

		require.Len(t, mtx.Rows, 1)
		require.Len(t, mtx.Rows[0].Cells, 3)
		cell := mtx.Rows[0].Cells[0]
		assert.True(t, cell.Assigned)
		assert.Equal(t, 220, cell.QuarterHours)
		assert.InDelta(t, 20.0, cell.WeeklyHours, 1e-9)
		assert.Equal(t, sabana.StatusPlanned, cell.Status)
		assert.False(t, mtx.Rows[0].Cells[1].Assigned)
		assert.False(t, mtx.Rows[0].Cells[2].Assigned)
	})

	t.Run("same quarter twice is a duplicate", func(t *testing.T) {
		_, err := env.svc.Assign(ctx, sabana.NewAssignment{
			OutcomeID: env.outDesign.ID, QuarterID: env.quarters[0].ID, CohortID: env.cohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrDuplicateAssignment)
		assert.Len(t, env.outcomeRows(t, env.outDesign), 1)
	})

	t.Run("second quarter without move splits the outcome", func(t *testing.T) {
		env.assign(t, env.outDesign, env.quarters[1], false)
		assert.Len(t, env.outcomeRows(t, env.outDesign), 2)
	})
}

func Test_sabana_Assign_move(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.assign(t, env.outDesign, env.quarters[0], false)
	first := env.outcomeRows(t, env.outDesign)[0]

	// adjust the placement so the move has state to carry over
	_, err := env.svc.UpdateHours(ctx, first.ID, sabana.UpdateAssignmentHours{QuarterHours: 110, CohortID: env.cohort.ID})
	require.NoError(t, err)
	_, err = env.svc.AssignInstructor(ctx, first.ID, sabana.BindInstructor{InstructorID: env.active.ID})
	require.NoError(t, err)

	env.assign(t, env.outDesign, env.quarters[2], true)

	rows := env.outcomeRows(t, env.outDesign)
	require.Len(t, rows, 1)
	moved := rows[0]
	assert.Equal(t, env.quarters[2].ID, moved.QuarterID)
	assert.Equal(t, 110, moved.QuarterHours)
	assert.InDelta(t, 10.0, moved.WeeklyHours, 1e-9)
	assert.Equal(t, null.IntFrom(env.active.ID), moved.InstructorID)
	assert.NotEqual(t, first.ID, moved.ID)
}

func Test_sabana_Assign_concurrentMoves(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.assign(t, env.outDesign, env.quarters[0], false)
	first := env.outcomeRows(t, env.outDesign)[0]
	_, err := env.svc.UpdateHours(ctx, first.ID, sabana.UpdateAssignmentHours{QuarterHours: 110, CohortID: env.cohort.ID})
	require.NoError(t, err)
	_, err = env.svc.AssignInstructor(ctx, first.ID, sabana.BindInstructor{InstructorID: env.active.ID})
	require.NoError(t, err)

	// two movers racing the same outcome must leave exactly one placement;
	// the loser has to see the winner's row and supersede it, carrying its
	// state along
	var wg sync.WaitGroup
	for _, qtr := range []catalog.Quarter{env.quarters[1], env.quarters[2]} {
		wg.Add(1)
		go func(qtr catalog.Quarter) {
			defer wg.Done()
			_, err := env.svc.Assign(ctx, sabana.NewAssignment{
				OutcomeID: env.outDesign.ID, QuarterID: qtr.ID, CohortID: env.cohort.ID, Move: true,
			})
			assert.NoError(t, err)
		}(qtr)
	}
	wg.Wait()

	rows := env.outcomeRows(t, env.outDesign)
	require.Len(t, rows, 1)
	assert.Equal(t, 110, rows[0].QuarterHours)
	assert.Equal(t, null.IntFrom(env.active.ID), rows[0].InstructorID)
}

func Test_sabana_Unassign(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("unknown outcome", func(t *testing.T) {
		_, err := env.svc.Unassign(ctx, sabana.RemoveAssignment{OutcomeID: 999, QuarterID: env.quarters[0].ID, CohortID: env.cohort.ID})
		assert.ErrorIs(t, err, sabana.ErrNotAssigned)
	})

	t.Run("not assigned", func(t *testing.T) {
		_, err := env.svc.Unassign(ctx, sabana.RemoveAssignment{
			OutcomeID: env.outDesign.ID, QuarterID: env.quarters[0].ID, CohortID: env.cohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrNotAssigned)
	})

	env.assign(t, env.outBuild, env.quarters[0], false)
	env.assign(t, env.outBuild, env.quarters[1], false)
	env.assign(t, env.outBuild, env.quarters[2], false)

	t.Run("wrong cohort", func(t *testing.T) {
		_, err := env.svc.Unassign(ctx, sabana.RemoveAssignment{
			OutcomeID: env.outBuild.ID, QuarterID: env.quarters[0].ID, CohortID: env.otherCohort.ID,
		})
		assert.ErrorIs(t, err, sabana.ErrNotAssigned)
		assert.Len(t, env.outcomeRows(t, env.outBuild), 3)
	})

	t.Run("removal redistributes the nominal duration", func(t *testing.T) {
		mtx, err := env.svc.Unassign(ctx, sabana.RemoveAssignment{
			OutcomeID: env.outBuild.ID, QuarterID: env.quarters[2].ID, CohortID: env.cohort.ID,
		})
		require.NoError(t, err)

		rows := env.outcomeRows(t, env.outBuild)
		require.Len(t, rows, 2)
		for _, asg := range rows {
			assert.Equal(t, 220, asg.QuarterHours) // 440h over 2 quarters
			assert.InDelta(t, 20.0, asg.WeeklyHours, 1e-9)
		}
		require.Len(t, mtx.Rows, 1)
		assert.False(t, mtx.Rows[0].Cells[2].Assigned)
	})

	t.Run("redistribution keeps every nominal hour", func(t *testing.T) {
		out := env.db.AddOutcome(catalog.LearningOutcome{ID: 5, CompetencyID: 1, Code: "3", Label: "Test the modules", Duration: 445})
		env.assign(t, out, env.quarters[0], false)
		env.assign(t, out, env.quarters[1], false)
		env.assign(t, out, env.quarters[2], false)

		_, err := env.svc.Unassign(ctx, sabana.RemoveAssignment{
			OutcomeID: out.ID, QuarterID: env.quarters[2].ID, CohortID: env.cohort.ID,
		})
		require.NoError(t, err)

		// 445h over 2 quarters: the leading row absorbs the odd hour
		rows := env.outcomeRows(t, out)
		require.Len(t, rows, 2)
		assert.Equal(t, 223, rows[0].QuarterHours)
		assert.Equal(t, 222, rows[1].QuarterHours)
		assert.InDelta(t, 223.0/sabana.WeeksPerQuarter, rows[0].WeeklyHours, 1e-9)
	})

	t.Run("slot can be reused after removal", func(t *testing.T) {
		env.assign(t, env.outBuild, env.quarters[2], false)
		assert.Len(t, env.outcomeRows(t, env.outBuild), 3)
	})
}

func Test_sabana_UpdateHours(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.assign(t, env.outDesign, env.quarters[0], false)
	asg := env.outcomeRows(t, env.outDesign)[0]

	t.Run("weekly hours follow quarter hours", func(t *testing.T) {
		updated, err := env.svc.UpdateHours(ctx, asg.ID, sabana.UpdateAssignmentHours{QuarterHours: 44, CohortID: env.cohort.ID})
		require.NoError(t, err)
		assert.Equal(t, 44, updated.QuarterHours)
		assert.InDelta(t, 4.0, updated.WeeklyHours, 1e-9)
	})

	t.Run("wrong cohort leaves the row unchanged", func(t *testing.T) {
		_, err := env.svc.UpdateHours(ctx, asg.ID, sabana.UpdateAssignmentHours{QuarterHours: 1, CohortID: env.otherCohort.ID})
		assert.ErrorIs(t, err, sabana.ErrScopeMismatch)

		kept := env.outcomeRows(t, env.outDesign)[0]
		assert.Equal(t, 44, kept.QuarterHours)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := env.svc.UpdateHours(ctx, 999, sabana.UpdateAssignmentHours{QuarterHours: 44, CohortID: env.cohort.ID})
		assert.ErrorIs(t, err, sabana.ErrNotFound)
	})
}

func Test_sabana_AssignInstructor(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.assign(t, env.outDesign, env.quarters[0], false)
	asg := env.outcomeRows(t, env.outDesign)[0]

	t.Run("active instructor is bound", func(t *testing.T) {
		updated, err := env.svc.AssignInstructor(ctx, asg.ID, sabana.BindInstructor{InstructorID: env.active.ID})
		require.NoError(t, err)
		assert.Equal(t, null.IntFrom(env.active.ID), updated.InstructorID)
	})

	t.Run("inactive instructor leaves the row unchanged", func(t *testing.T) {
		_, err := env.svc.AssignInstructor(ctx, asg.ID, sabana.BindInstructor{InstructorID: env.inactive.ID})
		assert.ErrorIs(t, err, sabana.ErrInstructorInactive)

		kept := env.outcomeRows(t, env.outDesign)[0]
		assert.Equal(t, null.IntFrom(env.active.ID), kept.InstructorID)
	})

	t.Run("unknown instructor", func(t *testing.T) {
		_, err := env.svc.AssignInstructor(ctx, asg.ID, sabana.BindInstructor{InstructorID: 999})
		assert.ErrorIs(t, err, sabana.ErrInstructorInactive)
	})

	t.Run("unknown assignment", func(t *testing.T) {
		_, err := env.svc.AssignInstructor(ctx, 999, sabana.BindInstructor{InstructorID: env.active.ID})
		assert.ErrorIs(t, err, sabana.ErrNotFound)
	})
}

func Test_sabana_ListQuarters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("ordered by sequence", func(t *testing.T) {
		qtrs, err := env.svc.ListQuarters(ctx, env.cohort.ID)
		require.NoError(t, err)
		require.Len(t, qtrs, 3)
		for i, qtr := range qtrs {
			assert.Equal(t, i+1, qtr.Sequence)
		}
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := env.svc.ListQuarters(ctx, 999)
		assert.ErrorIs(t, err, sabana.ErrCohortNotFound)
	})
}

func Test_sabana_AvailableOutcomes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("whole program before any placement", func(t *testing.T) {
		outs, err := env.svc.AvailableOutcomes(ctx, env.cohort.ID)
		require.NoError(t, err)
		require.Len(t, outs, 3)
		// competency first, then numeric code ("2" before "10")
		assert.Equal(t, env.outDesign.ID, outs[0].OutcomeID)
		assert.Equal(t, env.outBuild.ID, outs[1].OutcomeID)
		assert.Equal(t, env.outDeploy.ID, outs[2].OutcomeID)
	})

	t.Run("placed outcomes drop off the tray", func(t *testing.T) {
		env.assign(t, env.outDesign, env.quarters[0], false)

		outs, err := env.svc.AvailableOutcomes(ctx, env.cohort.ID)
		require.NoError(t, err)
		require.Len(t, outs, 2)
		assert.Equal(t, env.outBuild.ID, outs[0].OutcomeID)
		assert.Equal(t, env.outDeploy.ID, outs[1].OutcomeID)
	})

	t.Run("placements are scoped per cohort", func(t *testing.T) {
		outs, err := env.svc.AvailableOutcomes(ctx, env.otherCohort.ID)
		require.NoError(t, err)
		assert.Len(t, outs, 3)
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := env.svc.AvailableOutcomes(ctx, 999)
		assert.ErrorIs(t, err, sabana.ErrCohortNotFound)
	})
}

func Test_sabana_AssignedOutcomes(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	env.assign(t, env.outDesign, env.quarters[0], false)
	env.assign(t, env.outBuild, env.quarters[0], false)

	t.Run("rows of one quarter", func(t *testing.T) {
		rows, err := env.svc.AssignedOutcomes(ctx, env.cohort.ID, env.quarters[0].ID)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, env.outDesign.ID, rows[0].OutcomeID)
		assert.Equal(t, env.outBuild.ID, rows[1].OutcomeID)
	})

	t.Run("empty quarter", func(t *testing.T) {
		rows, err := env.svc.AssignedOutcomes(ctx, env.cohort.ID, env.quarters[1].ID)
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("quarter of another cohort", func(t *testing.T) {
		_, err := env.svc.AssignedOutcomes(ctx, env.cohort.ID, env.otherQtr.ID)
		assert.ErrorIs(t, err, sabana.ErrQuarterNotInCohort)
	})
}

func Test_sabana_BaseView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("empty plan", func(t *testing.T) {
		rows, err := env.svc.BaseView(ctx, env.cohort.ID)
		require.NoError(t, err)
		assert.Equal(t, []sabana.BaseRow{}, rows)
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := env.svc.BaseView(ctx, 999)
		assert.ErrorIs(t, err, sabana.ErrCohortNotFound)
	})

	t.Run("ordered by competency, code, sequence", func(t *testing.T) {
		env.assign(t, env.outDeploy, env.quarters[0], false)
		env.assign(t, env.outBuild, env.quarters[2], false)
		env.assign(t, env.outBuild, env.quarters[1], false)
		env.assign(t, env.outDesign, env.quarters[0], false)

		rows, err := env.svc.BaseView(ctx, env.cohort.ID)
		require.NoError(t, err)
		require.Len(t, rows, 4)
		assert.Equal(t, env.outDesign.ID, rows[0].OutcomeID)
		assert.Equal(t, env.outBuild.ID, rows[1].OutcomeID)
		assert.Equal(t, 2, rows[1].QuarterSequence)
		assert.Equal(t, env.outBuild.ID, rows[2].OutcomeID)
		assert.Equal(t, 3, rows[2].QuarterSequence)
		assert.Equal(t, env.outDeploy.ID, rows[3].OutcomeID)
	})
}

func Test_sabana_MatrixView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	t.Run("empty plan still renders the columns", func(t *testing.T) {
		mtx, err := env.svc.MatrixView(ctx, env.cohort.ID)
		require.NoError(t, err)
		assert.Equal(t, env.cohort.ID, mtx.CohortID)
		assert.Len(t, mtx.Quarters, 3)
		assert.Empty(t, mtx.Rows)
	})

	t.Run("one row per outcome, one cell per quarter", func(t *testing.T) {
		env.assign(t, env.outBuild, env.quarters[0], false)
		env.assign(t, env.outBuild, env.quarters[1], false)
		mtx := env.assign(t, env.outDesign, env.quarters[2], false)

		require.Len(t, mtx.Rows, 2)
		assert.Equal(t, env.outDesign.ID, mtx.Rows[0].OutcomeID) // code "2" before "10"
		assert.Equal(t, env.outBuild.ID, mtx.Rows[1].OutcomeID)

		design, build := mtx.Rows[0], mtx.Rows[1]
		assert.False(t, design.Cells[0].Assigned)
		assert.False(t, design.Cells[1].Assigned)
		assert.True(t, design.Cells[2].Assigned)
		assert.True(t, build.Cells[0].Assigned)
		assert.True(t, build.Cells[1].Assigned)
		assert.False(t, build.Cells[2].Assigned)
	})

	t.Run("unknown cohort", func(t *testing.T) {
		_, err := env.svc.MatrixView(ctx, 999)
		assert.ErrorIs(t, err, sabana.ErrCohortNotFound)
	})
}
