package main

import (
	"github.com/pkg/errors"

	"github.com/formavista/sabana/core/catalog"
)

// seed loads a small demo catalog: one program with two competencies and five
// outcomes, one cohort with a seven-quarter plan, and two instructors.
func (cli *commandLine) seed() error {
	tx, err := cli.db.Beginx()
	if err != nil {
		return errors.Wrap(err, "beginning seed transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var programID int
	err = tx.QueryRowx(
		`INSERT INTO programs (code, name) VALUES ($1, $2) RETURNING id`,
		"ADSI", "Software Analysis and Development",
	).Scan(&programID)
	if err != nil {
		return errors.Wrap(err, "seeding program")
	}

	competencies := []struct {
		code, name string
		maxHours   int
		outcomes   []struct {
			code, label string
			duration    int
		}
	}{
		{
			code: "220501", name: "Build the software of the information system", maxHours: 880,
			outcomes: []struct {
				code, label string
				duration    int
			}{
				{"1", "Define the technical requirements of the solution", 220},
				{"2", "Design the data model", 220},
				{"3", "Develop the application modules", 440},
			},
		},
		{
			code: "220505", name: "Deploy the information system", maxHours: 440,
			outcomes: []struct {
				code, label string
				duration    int
			}{
				{"1", "Prepare the deployment environment", 220},
				{"2", "Release and monitor the solution", 220},
			},
		},
	}
	for _, cpt := range competencies {
		var competencyID int
		err = tx.QueryRowx(
			`INSERT INTO competencies (program_id, code, name, max_duration) VALUES ($1, $2, $3, $4) RETURNING id`,
			programID, cpt.code, cpt.name, cpt.maxHours,
		).Scan(&competencyID)
		if err != nil {
			return errors.Wrap(err, "seeding competency")
		}
		for _, out := range cpt.outcomes {
			_, err = tx.Exec(
				`INSERT INTO learning_outcomes (competency_id, code, label, duration) VALUES ($1, $2, $3, $4)`,
				competencyID, out.code, out.label, out.duration,
			)
			if err != nil {
				return errors.Wrap(err, "seeding learning outcome")
			}
		}
	}

	var cohortID int
	err = tx.QueryRowx(
		`INSERT INTO cohorts (program_id, modality, shift, start_date, end_date)
		 VALUES ($1, $2, $3, now(), now() + interval '21 months') RETURNING id`,
		programID, "on-site", "day",
	).Scan(&cohortID)
	if err != nil {
		return errors.Wrap(err, "seeding cohort")
	}

	var planID int
	err = tx.QueryRowx(
		`INSERT INTO curriculum_plans (cohort_id) VALUES ($1) RETURNING id`, cohortID,
	).Scan(&planID)
	if err != nil {
		return errors.Wrap(err, "seeding curriculum plan")
	}

	phases := []string{
		catalog.PhaseAnalysis,
		catalog.PhaseAnalysis,
		catalog.PhasePlanning,
		catalog.PhasePlanning,
		catalog.PhaseExecution,
		catalog.PhaseExecution,
		catalog.PhaseEvaluation,
	}
	for seq, phase := range phases {
		_, err = tx.Exec(
			`INSERT INTO quarters (plan_id, sequence, phase) VALUES ($1, $2, $3)`,
			planID, seq+1, phase,
		)
		if err != nil {
			return errors.Wrap(err, "seeding quarter")
		}
	}

	instructors := []struct {
		name, email string
		active      bool
	}{
		{"Alba Rueda", "alba.rueda@example.com", true},
		{"Mario Quintero", "mario.quintero@example.com", true},
	}
	for _, ins := range instructors {
		_, err = tx.Exec(
			`INSERT INTO instructors (name, email, is_active) VALUES ($1, $2, $3)`,
			ins.name, ins.email, ins.active,
		)
		if err != nil {
			return errors.Wrap(err, "seeding instructor")
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing seed")
	}
	logger.Printf("seeded demo catalog: program=%d cohort=%d plan=%d", programID, cohortID, planID)
	return nil
}
