package sabana

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"
)

// WeeksPerQuarter is the fixed length of a teaching quarter. Weekly hours
// are always derived from quarter hours using this constant.
const WeeksPerQuarter = 11

// Assignment statuses.
const (
	StatusPlanned    = "planned"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Assignment binds one LearningOutcome to one Quarter within one Cohort.
// CohortID is denormalized from the quarter's plan for fast scoping and
// cross-tenant validation.
type Assignment struct {
	ID           int       `json:"id" db:"id"`
	OutcomeID    int       `json:"outcome_id" db:"outcome_id"`
	QuarterID    int       `json:"quarter_id" db:"quarter_id"`
	CohortID     int       `json:"cohort_id" db:"cohort_id"`
	QuarterHours int       `json:"quarter_hours" db:"quarter_hours"`
	WeeklyHours  float64   `json:"weekly_hours" db:"weekly_hours"`
	Status       string    `json:"status" db:"status"`
	InstructorID null.Int  `json:"instructor_id" db:"instructor_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// SetQuarterHours sets the quarter hours and recomputes the derived weekly hours.
func (a *Assignment) SetQuarterHours(hours int) {
	a.QuarterHours = hours
	a.WeeklyHours = float64(hours) / WeeksPerQuarter
}

// NewAssignment contains information needed to place an outcome in a quarter.
// Move relocates the outcome: every other assignment of the outcome within
// the cohort is superseded in the same transaction.
type NewAssignment struct {
	OutcomeID int  `json:"outcome_id" validate:"required,gt=0"`
	QuarterID int  `json:"quarter_id" validate:"required,gt=0"`
	CohortID  int  `json:"ficha_id" validate:"required,gt=0"`
	Move      bool `json:"move"`
}

func (na *NewAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

// RemoveAssignment identifies the assignment to delete.
type RemoveAssignment struct {
	OutcomeID int `json:"outcome_id" validate:"required,gt=0"`
	QuarterID int `json:"quarter_id" validate:"required,gt=0"`
	CohortID  int `json:"ficha_id" validate:"required,gt=0"`
}

func (ra *RemoveAssignment) Validate(validate *validator.Validate) error {
	return validate.Struct(ra)
}

// UpdateAssignmentHours carries a manual workload adjustment. CohortID guards
// against cross-cohort edits.
type UpdateAssignmentHours struct {
	QuarterHours int `json:"quarter_hours" validate:"gte=0"`
	CohortID     int `json:"ficha_id" validate:"required,gt=0"`
}

func (uh *UpdateAssignmentHours) Validate(validate *validator.Validate) error {
	return validate.Struct(uh)
}

// BindInstructor binds an active instructor to an assignment.
type BindInstructor struct {
	InstructorID int `json:"instructor_id" validate:"required,gt=0"`
}

func (bi *BindInstructor) Validate(validate *validator.Validate) error {
	return validate.Struct(bi)
}

// OutcomeSummary is an outcome with its competency identity, as listed on
// the board's "available" tray.
type OutcomeSummary struct {
	OutcomeID      int    `json:"outcome_id" db:"outcome_id"`
	OutcomeCode    string `json:"outcome_code" db:"outcome_code"`
	OutcomeLabel   string `json:"outcome_label" db:"outcome_label"`
	Duration       int    `json:"duration" db:"duration"`
	CompetencyID   int    `json:"competency_id" db:"competency_id"`
	CompetencyCode string `json:"competency_code" db:"competency_code"`
	CompetencyName string `json:"competency_name" db:"competency_name"`
}

// BaseRow is one row of the flat "base" projection: one row per
// (outcome, quarter-assignment) pair.
type BaseRow struct {
	AssignmentID    int      `json:"assignment_id" db:"assignment_id"`
	OutcomeID       int      `json:"outcome_id" db:"outcome_id"`
	OutcomeCode     string   `json:"outcome_code" db:"outcome_code"`
	OutcomeLabel    string   `json:"outcome_label" db:"outcome_label"`
	Duration        int      `json:"duration" db:"duration"`
	CompetencyID    int      `json:"competency_id" db:"competency_id"`
	CompetencyCode  string   `json:"competency_code" db:"competency_code"`
	CompetencyName  string   `json:"competency_name" db:"competency_name"`
	QuarterID       int      `json:"quarter_id" db:"quarter_id"`
	QuarterSequence int      `json:"quarter_sequence" db:"quarter_sequence"`
	Phase           string   `json:"phase" db:"phase"`
	QuarterHours    int      `json:"quarter_hours" db:"quarter_hours"`
	WeeklyHours     float64  `json:"weekly_hours" db:"weekly_hours"`
	Status          string   `json:"status" db:"status"`
	InstructorID    null.Int `json:"instructor_id" db:"instructor_id"`
}

type (
	// QuarterColumn is one column of the matrix grid.
	QuarterColumn struct {
		QuarterID int    `json:"quarter_id"`
		Sequence  int    `json:"sequence"`
		Phase     string `json:"phase"`
	}

	// MatrixCell is the slot of one outcome in one quarter column.
	// Assigned is false for empty slots.
	MatrixCell struct {
		QuarterID    int      `json:"quarter_id"`
		Assigned     bool     `json:"assigned"`
		AssignmentID int      `json:"assignment_id,omitempty"`
		QuarterHours int      `json:"quarter_hours,omitempty"`
		WeeklyHours  float64  `json:"weekly_hours,omitempty"`
		Status       string   `json:"status,omitempty"`
		InstructorID null.Int `json:"instructor_id,omitempty"`
	}

	// MatrixRow is one outcome with one cell per quarter column.
	MatrixRow struct {
		OutcomeID      int          `json:"outcome_id"`
		OutcomeCode    string       `json:"outcome_code"`
		OutcomeLabel   string       `json:"outcome_label"`
		Duration       int          `json:"duration"`
		CompetencyID   int          `json:"competency_id"`
		CompetencyCode string       `json:"competency_code"`
		CompetencyName string       `json:"competency_name"`
		Cells          []MatrixCell `json:"cells"`
	}

	// Matrix is the pivoted projection rendered as the planning grid.
	Matrix struct {
		CohortID int             `json:"ficha_id"`
		Quarters []QuarterColumn `json:"quarters"`
		Rows     []MatrixRow     `json:"rows"`
	}
)
