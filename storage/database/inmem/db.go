package inmemdb

import (
	"sync"
	"time"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

type (
	// DB is a thread-safe in-memory store of every table the performance engine reads or writes.
	DB struct {
		sync.RWMutex

		enrollments    map[string]*performance.Enrollment // {id: enrollment}
		semesterMarks  []performance.SemesterMarksRecord
		offerings      []performance.CourseOfferingRow
		olqTotals      []olqRow
		ptScores       []ptRow
		gamesMarks     []gamesRow
		drillMarks     []drillRow
		cfeRecords     []cfeRow
		camps          map[string]*Camp // {id: camp}
		participations []participationRow
		sprRecords     map[sprKey]*performance.SprRecord
	}

	// Camp is a training camp tagged with the semester it counts towards.
	Camp struct {
		ID          string
		Name        string
		SemesterTag string
		DeletedAt   *time.Time
	}

	rowScope struct {
		OCID         string
		EnrollmentID string
		Semester     int
	}

	olqRow struct {
		rowScope
		TotalMarks float64
	}

	ptRow struct {
		rowScope
		TaskID string
		Marks  float64
	}

	gamesRow struct {
		rowScope
		Sport         string
		MarksObtained float64
		DeletedAt     *time.Time
	}

	drillRow struct {
		rowScope
		performance.DrillMark
	}

	cfeRow struct {
		rowScope
		performance.CfeRecord
	}

	participationRow struct {
		OCID         string
		EnrollmentID string
		performance.CampParticipation
		DeletedAt *time.Time
	}

	sprKey struct {
		ocID         string
		enrollmentID string
		semester     int
	}
)

func Open() (*DB, error) {
	db := &DB{
		enrollments: make(map[string]*performance.Enrollment),
		camps:       make(map[string]*Camp),
		sprRecords:  make(map[sprKey]*performance.SprRecord),
	}
	return db, nil
}

// get resolves the fields shared by every per-semester row.
func (s rowScope) get(f core.Field) (interface{}, bool) {
	switch f {
	case performance.FieldOCID:
		return s.OCID, true
	case performance.FieldEnrollmentID:
		return s.EnrollmentID, true
	case performance.FieldSemester:
		return s.Semester, true
	}
	return nil, false
}

func deletedAt(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
