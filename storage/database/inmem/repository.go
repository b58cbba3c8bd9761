package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

type performanceRepository struct {
	db *DB
}

var _ performance.Repository = (*performanceRepository)(nil) // interface compliance check

func NewPerformanceRepository(db *DB) performance.Repository {
	return &performanceRepository{db: db}
}

func (repo *performanceRepository) GetOrCreateActiveEnrollment(_ context.Context, ocID string) (performance.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var active []performance.Enrollment
	for _, enr := range repo.db.enrollments {
		if enr.OCID == ocID && enr.IsActive {
			active = append(active, *enr)
		}
	}
	if len(active) > 0 {
		// most recent wins
		sort.Slice(active, func(i, j int) bool { return active[i].CreatedAt.After(active[j].CreatedAt) })
		return active[0], nil
	}

	enr := performance.Enrollment{
		ID:        uuid.New().String(),
		OCID:      ocID,
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *performanceRepository) GetSemesterMarks(_ context.Context, filter core.Predicates) (performance.SemesterMarksRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, rec := range repo.db.semesterMarks {
		scope := rowScope{OCID: rec.OCID, EnrollmentID: rec.EnrollmentID, Semester: rec.Semester}
		if filter.Match(scope.get) {
			rec.Subjects = append([]performance.SemesterSubjectRecord(nil), rec.Subjects...)
			return rec, nil
		}
	}
	return performance.SemesterMarksRecord{}, performance.ErrNotFound
}

func (repo *performanceRepository) QueryCourseOfferings(_ context.Context, filter core.Predicates) ([]performance.CourseOfferingRow, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	offerings := make([]performance.CourseOfferingRow, 0)
	for _, off := range repo.db.offerings {
		off := off
		get := func(f core.Field) (interface{}, bool) {
			switch f {
			case performance.FieldCourseID:
				return off.CourseID, true
			case performance.FieldSemester:
				return off.Semester, true
			}
			return nil, false
		}
		if filter.Match(get) {
			offerings = append(offerings, off)
		}
	}
	return offerings, nil
}

func (repo *performanceRepository) GetOLQTotal(_ context.Context, filter core.Predicates) (float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, row := range repo.db.olqTotals {
		if filter.Match(row.get) {
			return row.TotalMarks, nil
		}
	}
	return 0, performance.ErrNotFound
}

func (repo *performanceRepository) QueryPTScores(_ context.Context, filter core.Predicates) ([]float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	scores := make([]float64, 0)
	for _, row := range repo.db.ptScores {
		if filter.Match(row.get) {
			scores = append(scores, row.Marks)
		}
	}
	return scores, nil
}

func (repo *performanceRepository) QueryGamesMarks(_ context.Context, filter core.Predicates) ([]float64, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marks := make([]float64, 0)
	for _, row := range repo.db.gamesMarks {
		row := row
		get := func(f core.Field) (interface{}, bool) {
			if f == performance.FieldDeletedAt {
				return deletedAt(row.DeletedAt), true
			}
			return row.get(f)
		}
		if filter.Match(get) {
			marks = append(marks, row.MarksObtained)
		}
	}
	return marks, nil
}

func (repo *performanceRepository) QueryDrillMarks(_ context.Context, filter core.Predicates) ([]performance.DrillMark, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	marks := make([]performance.DrillMark, 0)
	for _, row := range repo.db.drillMarks {
		row := row
		get := func(f core.Field) (interface{}, bool) {
			if f == performance.FieldDeletedAt {
				return deletedAt(row.DeletedAt), true
			}
			return row.rowScope.get(f)
		}
		if filter.Match(get) {
			marks = append(marks, row.DrillMark)
		}
	}
	return marks, nil
}

func (repo *performanceRepository) QueryCfeRecords(_ context.Context, filter core.Predicates) ([]performance.CfeRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	records := make([]performance.CfeRecord, 0)
	for _, row := range repo.db.cfeRecords {
		row := row
		get := func(f core.Field) (interface{}, bool) {
			if f == performance.FieldDeletedAt {
				return deletedAt(row.DeletedAt), true
			}
			return row.rowScope.get(f)
		}
		if filter.Match(get) {
			rec := row.CfeRecord
			rec.Items = append([]performance.CfeItem(nil), rec.Items...)
			records = append(records, rec)
		}
	}
	return records, nil
}

// QueryCampParticipations joins participations with their camp; participations of unknown camps are skipped.
func (repo *performanceRepository) QueryCampParticipations(_ context.Context, filter core.Predicates) ([]performance.CampParticipation, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := make([]performance.CampParticipation, 0)
	for _, row := range repo.db.participations {
		camp, ok := repo.db.camps[row.CampID]
		if !ok {
			continue
		}
		row := row
		get := func(f core.Field) (interface{}, bool) {
			switch f {
			case performance.FieldOCID:
				return row.OCID, true
			case performance.FieldEnrollmentID:
				return row.EnrollmentID, true
			case performance.FieldDeletedAt:
				return deletedAt(row.DeletedAt), true
			case performance.FieldCampSemesterTag:
				return camp.SemesterTag, true
			case performance.FieldCampDeletedAt:
				return deletedAt(camp.DeletedAt), true
			}
			return nil, false
		}
		if filter.Match(get) {
			p := row.CampParticipation
			p.CampSemesterTag = camp.SemesterTag
			rows = append(rows, p)
		}
	}
	return rows, nil
}

func (repo *performanceRepository) GetSprRecord(_ context.Context, filter core.Predicates) (performance.SprRecord, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for key, rec := range repo.db.sprRecords {
		scope := rowScope{OCID: key.ocID, EnrollmentID: key.enrollmentID, Semester: key.semester}
		get := func(f core.Field) (interface{}, bool) {
			if f == performance.FieldID {
				return rec.ID, true
			}
			return scope.get(f)
		}
		if filter.Match(get) {
			return copySpr(*rec), nil
		}
	}
	return performance.SprRecord{}, performance.ErrNotFound
}

func (repo *performanceRepository) UpsertSprRecord(_ context.Context, rec performance.SprRecord) (performance.SprRecord, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := sprKey{ocID: rec.OCID, enrollmentID: rec.EnrollmentID, semester: rec.Semester}
	if orig, ok := repo.db.sprRecords[key]; ok {
		// keep identity & creation stamp of the existing row
		rec.ID = orig.ID
		rec.CreatedAt = orig.CreatedAt
	} else if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	stored := copySpr(rec)
	repo.db.sprRecords[key] = &stored
	return copySpr(stored), nil
}

func copySpr(rec performance.SprRecord) performance.SprRecord {
	remarks := make(map[performance.SubjectKey]string, len(rec.SubjectRemarks))
	for k, v := range rec.SubjectRemarks {
		remarks[k] = v
	}
	rec.SubjectRemarks = remarks
	return rec
}
