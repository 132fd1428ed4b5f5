package sabana

import (
	"context"

	"github.com/pkg/errors"

	"github.com/formavista/sabana/core/catalog"
)

// Cohort membership checks live here, and only here.
// Both fail closed: a missing cohort, outcome, quarter or any broken link in
// the hierarchy chain yields false, not an error. Only storage faults error.

func (svc *Service) outcomeBelongsToCohort(ctx context.Context, outcomeID, cohortID int) (bool, error) {
	cohortProg, err := svc.catalog.CohortProgramID(ctx, cohortID)
	if err != nil {
		if isCatalogMiss(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "resolving cohort program")
	}

	outcomeProg, err := svc.catalog.OutcomeProgramID(ctx, outcomeID)
	if err != nil {
		if isCatalogMiss(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "resolving outcome program")
	}

	return cohortProg == outcomeProg, nil
}

func (svc *Service) quarterBelongsToCohort(ctx context.Context, quarterID, cohortID int) (bool, error) {
	quarterCohort, err := svc.catalog.QuarterCohortID(ctx, quarterID)
	if err != nil {
		if isCatalogMiss(err) {
			return false, nil
		}
		return false, errors.Wrap(err, "resolving quarter cohort")
	}
	return quarterCohort == cohortID, nil
}

func isCatalogMiss(err error) bool {
	cause := errors.Cause(err)
	return cause == catalog.ErrNotFound || cause == catalog.ErrCohortNoProgram
}
