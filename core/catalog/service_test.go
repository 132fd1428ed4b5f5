package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/formavista/sabana/core/catalog"
	dummydb "github.com/formavista/sabana/storage/database/dummy"
)

func setup(t *testing.T) (*catalog.Service, *dummydb.DB) {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)
	return catalog.NewService(dummydb.NewCatalogRepository(db)), db
}

func Test_catalog_CohortProgramID(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	db.AddProgram(catalog.Program{ID: 1, Code: "ADSI"})
	db.AddCohort(catalog.Cohort{ID: 1, ProgramID: null.IntFrom(1)})
	db.AddCohort(catalog.Cohort{ID: 2}) // no program

	programID, err := svc.CohortProgramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, programID)

	_, err = svc.CohortProgramID(ctx, 2)
	assert.ErrorIs(t, err, catalog.ErrCohortNoProgram)

	_, err = svc.CohortProgramID(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_catalog_OutcomeProgramID(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	db.AddProgram(catalog.Program{ID: 1, Code: "ADSI"})
	db.AddCompetency(catalog.Competency{ID: 1, ProgramID: 1, Code: "220501"})
	db.AddOutcome(catalog.LearningOutcome{ID: 1, CompetencyID: 1, Code: "1"})
	db.AddOutcome(catalog.LearningOutcome{ID: 2, CompetencyID: 9, Code: "2"}) // dangling competency

	programID, err := svc.OutcomeProgramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, programID)

	_, err = svc.OutcomeProgramID(ctx, 2)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = svc.OutcomeProgramID(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_catalog_QuarterCohortID(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	db.AddCohort(catalog.Cohort{ID: 1})
	db.AddPlan(catalog.CurriculumPlan{ID: 1, CohortID: 1})
	db.AddQuarter(catalog.Quarter{ID: 1, PlanID: 1, Sequence: 1, Phase: catalog.PhaseAnalysis})

	cohortID, err := svc.QuarterCohortID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cohortID)

	_, err = svc.QuarterCohortID(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func Test_catalog_QueryCohortQuarters(t *testing.T) {
	ctx := context.Background()
	svc, db := setup(t)

	db.AddCohort(catalog.Cohort{ID: 1})
	db.AddPlan(catalog.CurriculumPlan{ID: 1, CohortID: 1})
	db.AddQuarter(catalog.Quarter{ID: 2, PlanID: 1, Sequence: 2, Phase: catalog.PhasePlanning})
	db.AddQuarter(catalog.Quarter{ID: 1, PlanID: 1, Sequence: 1, Phase: catalog.PhaseAnalysis})

	qtrs, err := svc.QueryCohortQuarters(ctx, 1)
	require.NoError(t, err)
	require.Len(t, qtrs, 2)
	assert.Equal(t, 1, qtrs[0].Sequence)
	assert.Equal(t, 2, qtrs[1].Sequence)

	_, err = svc.QueryCohortQuarters(ctx, 999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
