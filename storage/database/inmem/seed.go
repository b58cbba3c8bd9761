package inmemdb

import (
	"time"

	"github.com/google/uuid"

	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

// The Add* helpers populate the read-only subsystem tables. They stand in for the
// data-entry flows that own those tables in production.

func (db *DB) AddEnrollment(enr performance.Enrollment) performance.Enrollment {
	db.Lock()
	defer db.Unlock()

	if enr.ID == "" {
		enr.ID = uuid.New().String()
	}
	if enr.CreatedAt.IsZero() {
		enr.CreatedAt = time.Now().UTC()
	}
	db.enrollments[enr.ID] = &enr
	return enr
}

func (db *DB) AddSemesterMarks(rec performance.SemesterMarksRecord) {
	db.Lock()
	defer db.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	db.semesterMarks = append(db.semesterMarks, rec)
}

func (db *DB) AddCourseOffering(off performance.CourseOfferingRow) {
	db.Lock()
	defer db.Unlock()

	if off.ID == "" {
		off.ID = uuid.New().String()
	}
	db.offerings = append(db.offerings, off)
}

func (db *DB) SetOLQTotal(ocID, enrollmentID string, semester int, total float64) {
	db.Lock()
	defer db.Unlock()

	scope := rowScope{OCID: ocID, EnrollmentID: enrollmentID, Semester: semester}
	for i := range db.olqTotals {
		if db.olqTotals[i].rowScope == scope {
			db.olqTotals[i].TotalMarks = total
			return
		}
	}
	db.olqTotals = append(db.olqTotals, olqRow{rowScope: scope, TotalMarks: total})
}

func (db *DB) AddPTScore(ocID, enrollmentID string, semester int, taskID string, marks float64) {
	db.Lock()
	defer db.Unlock()

	db.ptScores = append(db.ptScores, ptRow{
		rowScope: rowScope{OCID: ocID, EnrollmentID: enrollmentID, Semester: semester},
		TaskID:   taskID,
		Marks:    marks,
	})
}

func (db *DB) AddGamesMark(ocID, enrollmentID string, semester int, sport string, marks float64, deleted *time.Time) {
	db.Lock()
	defer db.Unlock()

	db.gamesMarks = append(db.gamesMarks, gamesRow{
		rowScope:      rowScope{OCID: ocID, EnrollmentID: enrollmentID, Semester: semester},
		Sport:         sport,
		MarksObtained: marks,
		DeletedAt:     deleted,
	})
}

func (db *DB) AddDrillMark(ocID, enrollmentID string, semester int, mark performance.DrillMark) {
	db.Lock()
	defer db.Unlock()

	if mark.ID == "" {
		mark.ID = uuid.New().String()
	}
	db.drillMarks = append(db.drillMarks, drillRow{
		rowScope:  rowScope{OCID: ocID, EnrollmentID: enrollmentID, Semester: semester},
		DrillMark: mark,
	})
}

func (db *DB) AddCfeRecord(ocID, enrollmentID string, semester int, rec performance.CfeRecord) {
	db.Lock()
	defer db.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	db.cfeRecords = append(db.cfeRecords, cfeRow{
		rowScope:  rowScope{OCID: ocID, EnrollmentID: enrollmentID, Semester: semester},
		CfeRecord: rec,
	})
}

func (db *DB) AddCamp(camp Camp) Camp {
	db.Lock()
	defer db.Unlock()

	if camp.ID == "" {
		camp.ID = uuid.New().String()
	}
	db.camps[camp.ID] = &camp
	return camp
}

func (db *DB) AddCampParticipation(ocID, enrollmentID, campID string, totalMarks float64, deleted *time.Time) {
	db.Lock()
	defer db.Unlock()

	db.participations = append(db.participations, participationRow{
		OCID:         ocID,
		EnrollmentID: enrollmentID,
		CampParticipation: performance.CampParticipation{
			ID:               uuid.New().String(),
			CampID:           campID,
			TotalMarksScored: totalMarks,
		},
		DeletedAt: deleted,
	})
}
