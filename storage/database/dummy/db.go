package dummydb

import (
	"sync"

	"github.com/formavista/sabana/core/catalog"
	"github.com/formavista/sabana/core/sabana"
)

// DB is an in-memory stand-in for the relational store, used by tests.
type DB struct {
	mu sync.RWMutex // guards all tables; Atomic holds the write lock

	programs     map[int]*catalog.Program
	competencies map[int]*catalog.Competency
	outcomes     map[int]*catalog.LearningOutcome
	cohorts      map[int]*catalog.Cohort
	plans        map[int]*catalog.CurriculumPlan
	quarters     map[int]*catalog.Quarter
	instructors  map[int]*catalog.Instructor

	assignments  map[int]*sabana.Assignment
	assignmentPK int
}

func Open() (*DB, error) {
	return &DB{
		programs:     make(map[int]*catalog.Program),
		competencies: make(map[int]*catalog.Competency),
		outcomes:     make(map[int]*catalog.LearningOutcome),
		cohorts:      make(map[int]*catalog.Cohort),
		plans:        make(map[int]*catalog.CurriculumPlan),
		quarters:     make(map[int]*catalog.Quarter),
		instructors:  make(map[int]*catalog.Instructor),
		assignments:  make(map[int]*sabana.Assignment),
	}, nil
}

// Catalog seeding; the real catalog is owned by the administrative CRUD
// modules, so the dummy store just lets tests plant records directly.

func (db *DB) AddProgram(prg catalog.Program) catalog.Program {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.programs[prg.ID] = &prg
	return prg
}

func (db *DB) AddCompetency(cpt catalog.Competency) catalog.Competency {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.competencies[cpt.ID] = &cpt
	return cpt
}

func (db *DB) AddOutcome(out catalog.LearningOutcome) catalog.LearningOutcome {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.outcomes[out.ID] = &out
	return out
}

func (db *DB) AddCohort(cht catalog.Cohort) catalog.Cohort {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.cohorts[cht.ID] = &cht
	return cht
}

func (db *DB) AddPlan(pln catalog.CurriculumPlan) catalog.CurriculumPlan {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.plans[pln.ID] = &pln
	return pln
}

func (db *DB) AddQuarter(qtr catalog.Quarter) catalog.Quarter {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.quarters[qtr.ID] = &qtr
	return qtr
}

func (db *DB) AddInstructor(ins catalog.Instructor) catalog.Instructor {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.instructors[ins.ID] = &ins
	return ins
}
