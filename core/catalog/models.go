package catalog

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Quarter phases. Every quarter of a curriculum plan is tagged with the
// pedagogical phase it belongs to.
const (
	PhaseAnalysis   = "ANALYSIS"
	PhasePlanning   = "PLANNING"
	PhaseExecution  = "EXECUTION"
	PhaseEvaluation = "EVALUATION"
)

var Phases = []string{PhaseAnalysis, PhasePlanning, PhaseExecution, PhaseEvaluation}

type (
	// Program is the root of the curriculum hierarchy.
	Program struct {
		ID   int    `json:"id" db:"id"`
		Code string `json:"code" db:"code"`
		Name string `json:"name" db:"name"`
	}

	// Competency is a unit of a Program's curriculum, decomposed into LearningOutcomes.
	Competency struct {
		ID          int    `json:"id" db:"id"`
		ProgramID   int    `json:"program_id" db:"program_id"`
		Code        string `json:"code" db:"code"`
		Name        string `json:"name" db:"name"`
		MaxDuration int    `json:"max_duration" db:"max_duration"` // hours
	}

	// LearningOutcome (RAP) is an atomic, assignable unit of instructional
	// content with a nominal duration in hours. Identity is immutable once
	// created; durations may be pre-split upstream across sibling outcomes.
	LearningOutcome struct {
		ID           int    `json:"id" db:"id"`
		CompetencyID int    `json:"competency_id" db:"competency_id"`
		Code         string `json:"code" db:"code"`
		Label        string `json:"label" db:"label"`
		Duration     int    `json:"duration" db:"duration"` // hours
	}

	// Cohort (ficha) is a scheduled intake of students following one Program.
	Cohort struct {
		ID        int       `json:"id" db:"id"`
		ProgramID null.Int  `json:"program_id" db:"program_id"`
		Modality  string    `json:"modality" db:"modality"`
		Shift     string    `json:"shift" db:"shift"`
		StartDate time.Time `json:"start_date" db:"start_date"`
		EndDate   time.Time `json:"end_date" db:"end_date"`
	}

	// CurriculumPlan is a Cohort's container for quarters. One per cohort.
	CurriculumPlan struct {
		ID        int       `json:"id" db:"id"`
		CohortID  int       `json:"cohort_id" db:"cohort_id"`
		CreatedAt time.Time `json:"created_at" db:"created_at"`
	}

	// Quarter (trimestre) is one of a fixed sequence of 11-week teaching
	// periods within a Cohort's plan.
	Quarter struct {
		ID       int    `json:"id" db:"id"`
		PlanID   int    `json:"plan_id" db:"plan_id"`
		Sequence int    `json:"sequence" db:"sequence"`
		Phase    string `json:"phase" db:"phase"`
	}

	Instructor struct {
		ID       int    `json:"id" db:"id"`
		Name     string `json:"name" db:"name"`
		Email    string `json:"email" db:"email"`
		IsActive bool   `json:"is_active" db:"is_active"`
	}
)
