package performance

import (
	"context"
	"errors"

	"github.com/Hexmon/e-dossier-sub006/core"
)

var (
	// errors
	ErrNotFound = errors.New("record not found")
)

type (
	EnrollmentRepository interface {
		// GetOrCreateActiveEnrollment returns the cadet's active enrollment, creating one if none exists.
		GetOrCreateActiveEnrollment(ctx context.Context, ocID string) (Enrollment, error)
	}

	AcademicRepository interface {
		// GetSemesterMarks returns ErrNotFound when nothing is recorded for the filter.
		GetSemesterMarks(ctx context.Context, filter core.Predicates) (SemesterMarksRecord, error)
		QueryCourseOfferings(ctx context.Context, filter core.Predicates) ([]CourseOfferingRow, error)
	}

	SourceRepository interface {
		// GetOLQTotal returns ErrNotFound when no OLQ total is stored.
		GetOLQTotal(ctx context.Context, filter core.Predicates) (float64, error)
		QueryPTScores(ctx context.Context, filter core.Predicates) ([]float64, error)
		QueryGamesMarks(ctx context.Context, filter core.Predicates) ([]float64, error)
		QueryDrillMarks(ctx context.Context, filter core.Predicates) ([]DrillMark, error)
		QueryCfeRecords(ctx context.Context, filter core.Predicates) ([]CfeRecord, error)
		QueryCampParticipations(ctx context.Context, filter core.Predicates) ([]CampParticipation, error)
	}

	SprRepository interface {
		// GetSprRecord returns ErrNotFound when the record was never upserted.
		GetSprRecord(ctx context.Context, filter core.Predicates) (SprRecord, error)
		// UpsertSprRecord inserts or fully overwrites the record keyed by (oc, enrollment, semester).
		UpsertSprRecord(ctx context.Context, rec SprRecord) (SprRecord, error)
	}

	Repository interface {
		EnrollmentRepository
		AcademicRepository
		SourceRepository
		SprRepository
	}

	// AuditLogger receives one event per SPR upsert.
	AuditLogger interface {
		LogSprUpsert(ctx context.Context, evt AuditEvent)
	}
)

// scope filters rows belonging to a cadet's enrollment.
func scope(ocID, enrollmentID string) core.Predicates {
	return core.Where(core.Eq(FieldOCID, ocID), core.Eq(FieldEnrollmentID, enrollmentID))
}

// semesterScope filters a cadet's rows of one semester.
func semesterScope(ocID, enrollmentID string, semester int) core.Predicates {
	return scope(ocID, enrollmentID).And(core.Eq(FieldSemester, semester))
}

// live additionally excludes soft-deleted rows.
func live(filter core.Predicates) core.Predicates {
	return filter.And(core.IsNull(FieldDeletedAt))
}
