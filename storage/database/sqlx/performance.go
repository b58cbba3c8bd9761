package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
)

var (
	scopeColumns = columns{
		performance.FieldOCID:         "oc_id",
		performance.FieldEnrollmentID: "enrollment_id",
		performance.FieldSemester:     "semester",
	}
	liveScopeColumns = columns{
		performance.FieldOCID:         "oc_id",
		performance.FieldEnrollmentID: "enrollment_id",
		performance.FieldSemester:     "semester",
		performance.FieldDeletedAt:    "deleted_at",
	}
	sprColumns = columns{
		performance.FieldID:           "id",
		performance.FieldOCID:         "oc_id",
		performance.FieldEnrollmentID: "enrollment_id",
		performance.FieldSemester:     "semester",
	}
	offeringColumns = columns{
		performance.FieldCourseID: "o.course_id",
		performance.FieldSemester: "o.semester",
	}
	participationColumns = columns{
		performance.FieldOCID:            "p.oc_id",
		performance.FieldEnrollmentID:    "p.enrollment_id",
		performance.FieldDeletedAt:       "p.deleted_at",
		performance.FieldCampSemesterTag: "c.semester_tag",
		performance.FieldCampDeletedAt:   "c.deleted_at",
	}
)

type (
	enrollmentRow struct {
		ID        string    `db:"id"`
		OCID      string    `db:"oc_id"`
		CourseID  string    `db:"course_id"`
		BranchTag string    `db:"branch_tag"`
		IsActive  bool      `db:"is_active"`
		CreatedAt time.Time `db:"created_at"`
	}

	semesterMarksRow struct {
		ID           string       `db:"id"`
		OCID         string       `db:"oc_id"`
		EnrollmentID string       `db:"enrollment_id"`
		Semester     int          `db:"semester"`
		SGPA         null.Float64 `db:"sgpa"`
		CGPA         null.Float64 `db:"cgpa"`
		MarksScored  null.Float64 `db:"marks_scored"`
		Subjects     string       `db:"subjects"`
	}

	offeringRow struct {
		ID                      string       `db:"id"`
		CourseID                string       `db:"course_id"`
		Semester                int          `db:"semester"`
		IncludeTheory           bool         `db:"include_theory"`
		IncludePractical        bool         `db:"include_practical"`
		TheoryCredits           null.Float64 `db:"theory_credits"`
		PracticalCredits        null.Float64 `db:"practical_credits"`
		SubjectID               string       `db:"subject_id"`
		SubjectCode             string       `db:"subject_code"`
		SubjectName             string       `db:"subject_name"`
		SubjectBranch           string       `db:"subject_branch"`
		HasTheory               bool         `db:"has_theory"`
		HasPractical            bool         `db:"has_practical"`
		DefaultTheoryCredits    null.Float64 `db:"default_theory_credits"`
		DefaultPracticalCredits null.Float64 `db:"default_practical_credits"`
	}

	drillRow struct {
		ID        string    `db:"id"`
		M1        float64   `db:"m1"`
		M2        float64   `db:"m2"`
		A1C1      float64   `db:"a1c1"`
		A2C2      float64   `db:"a2c2"`
		DeletedAt null.Time `db:"deleted_at"`
	}

	cfeRow struct {
		ID        string    `db:"id"`
		Items     string    `db:"items"`
		DeletedAt null.Time `db:"deleted_at"`
	}

	participationRow struct {
		ID               string  `db:"id"`
		CampID           string  `db:"camp_id"`
		CampSemesterTag  string  `db:"semester_tag"`
		TotalMarksScored float64 `db:"total_marks_scored"`
	}

	sprRow struct {
		ID                      string    `db:"id"`
		OCID                    string    `db:"oc_id"`
		EnrollmentID            string    `db:"enrollment_id"`
		Semester                int       `db:"semester"`
		CdrMarks                float64   `db:"cdr_marks"`
		SubjectRemarks          string    `db:"subject_remarks"`
		PlatoonCommanderRemarks string    `db:"platoon_commander_remarks"`
		DeputyCommanderRemarks  string    `db:"deputy_commander_remarks"`
		CommanderRemarks        string    `db:"commander_remarks"`
		CreatedAt               time.Time `db:"created_at"`
		UpdatedAt               time.Time `db:"updated_at"`
	}
)

type performanceRepository struct {
	db *sqlx.DB
}

var _ performance.Repository = (*performanceRepository)(nil) // interface compliance check

func NewPerformanceRepository(db *sqlx.DB) performance.Repository {
	return &performanceRepository{db: db}
}

// trapNoRowsErr maps "no rows" to performance.ErrNotFound
func (repo performanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return performance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo performanceRepository) query(base string, cols columns, filter core.Predicates, suffix string) (string, []interface{}, error) {
	where, args, err := cols.where(filter)
	if err != nil {
		return "", nil, err
	}
	return repo.db.Rebind(base + where + suffix), args, nil
}

func (repo performanceRepository) GetOrCreateActiveEnrollment(ctx context.Context, ocID string) (performance.Enrollment, error) {
	enr, err := repo.getActiveEnrollment(ctx, ocID)
	if errors.Cause(err) != performance.ErrNotFound {
		return enr, err
	}

	// a concurrent caller may win the insert; the unique active index turns ours into a no-op
	ins := repo.db.Rebind(`INSERT INTO enrollments (id, oc_id, course_id, branch_tag, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`)
	if _, err = repo.db.ExecContext(ctx, ins, uuid.New().String(), ocID, "", "", true, time.Now().UTC()); err != nil {
		return performance.Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	return repo.getActiveEnrollment(ctx, ocID)
}

func (repo performanceRepository) getActiveEnrollment(ctx context.Context, ocID string) (performance.Enrollment, error) {
	var row enrollmentRow
	q := repo.db.Rebind(`SELECT id, oc_id, course_id, branch_tag, is_active, created_at FROM enrollments
		WHERE oc_id = ? AND is_active = ? ORDER BY created_at DESC LIMIT 1`)
	if err := repo.db.GetContext(ctx, &row, q, ocID, true); err != nil {
		return performance.Enrollment{}, repo.trapNoRowsErr(err, "getting active enrollment")
	}
	return unboilEnrollment(row), nil
}

func unboilEnrollment(row enrollmentRow) performance.Enrollment {
	return performance.Enrollment{
		ID:        row.ID,
		OCID:      row.OCID,
		CourseID:  row.CourseID,
		BranchTag: row.BranchTag,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt.UTC(),
	}
}

func (repo performanceRepository) GetSemesterMarks(ctx context.Context, filter core.Predicates) (performance.SemesterMarksRecord, error) {
	q, args, err := repo.query(
		`SELECT id, oc_id, enrollment_id, semester, sgpa, cgpa, marks_scored, subjects FROM semester_marks`,
		scopeColumns, filter, " LIMIT 1")
	if err != nil {
		return performance.SemesterMarksRecord{}, err
	}

	var row semesterMarksRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return performance.SemesterMarksRecord{}, repo.trapNoRowsErr(err, "getting semester marks")
	}

	rec := performance.SemesterMarksRecord{
		ID:           row.ID,
		OCID:         row.OCID,
		EnrollmentID: row.EnrollmentID,
		Semester:     row.Semester,
		SGPA:         row.SGPA.Ptr(),
		CGPA:         row.CGPA.Ptr(),
		MarksScored:  row.MarksScored.Ptr(),
	}
	if err = json.Unmarshal([]byte(row.Subjects), &rec.Subjects); err != nil {
		return performance.SemesterMarksRecord{}, errors.Wrap(err, "decoding semester subjects")
	}
	return rec, nil
}

func (repo performanceRepository) QueryCourseOfferings(ctx context.Context, filter core.Predicates) ([]performance.CourseOfferingRow, error) {
	q, args, err := repo.query(
		`SELECT o.id, o.course_id, o.semester, o.include_theory, o.include_practical, o.theory_credits, o.practical_credits,
			s.id AS subject_id, s.code AS subject_code, s.name AS subject_name, s.branch AS subject_branch,
			s.has_theory, s.has_practical, s.default_theory_credits, s.default_practical_credits
		FROM course_offerings o JOIN subjects s ON s.id = o.subject_id`,
		offeringColumns, filter, " ORDER BY s.code")
	if err != nil {
		return nil, err
	}

	var rows []offeringRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying course offerings")
	}
	offerings := make([]performance.CourseOfferingRow, 0, len(rows))
	for _, row := range rows {
		offerings = append(offerings, performance.CourseOfferingRow{
			ID:               row.ID,
			CourseID:         row.CourseID,
			Semester:         row.Semester,
			IncludeTheory:    row.IncludeTheory,
			IncludePractical: row.IncludePractical,
			TheoryCredits:    row.TheoryCredits.Ptr(),
			PracticalCredits: row.PracticalCredits.Ptr(),
			Subject: performance.Subject{
				ID:                      row.SubjectID,
				Code:                    row.SubjectCode,
				Name:                    row.SubjectName,
				Branch:                  row.SubjectBranch,
				HasTheory:               row.HasTheory,
				HasPractical:            row.HasPractical,
				DefaultTheoryCredits:    row.DefaultTheoryCredits.Ptr(),
				DefaultPracticalCredits: row.DefaultPracticalCredits.Ptr(),
			},
		})
	}
	return offerings, nil
}

func (repo performanceRepository) GetOLQTotal(ctx context.Context, filter core.Predicates) (float64, error) {
	q, args, err := repo.query(`SELECT total_marks FROM olq_totals`, scopeColumns, filter, " LIMIT 1")
	if err != nil {
		return 0, err
	}
	var total float64
	if err = repo.db.GetContext(ctx, &total, q, args...); err != nil {
		return 0, repo.trapNoRowsErr(err, "getting olq total")
	}
	return total, nil
}

func (repo performanceRepository) QueryPTScores(ctx context.Context, filter core.Predicates) ([]float64, error) {
	return repo.selectMarks(ctx, `SELECT marks FROM pt_scores`, scopeColumns, filter, "querying pt scores")
}

func (repo performanceRepository) QueryGamesMarks(ctx context.Context, filter core.Predicates) ([]float64, error) {
	return repo.selectMarks(ctx, `SELECT marks_obtained FROM games_marks`, liveScopeColumns, filter, "querying games marks")
}

func (repo performanceRepository) selectMarks(ctx context.Context, base string, cols columns, filter core.Predicates, msg string) ([]float64, error) {
	q, args, err := repo.query(base, cols, filter, "")
	if err != nil {
		return nil, err
	}
	marks := make([]float64, 0)
	if err = repo.db.SelectContext(ctx, &marks, q, args...); err != nil {
		return nil, errors.Wrap(err, msg)
	}
	return marks, nil
}

func (repo performanceRepository) QueryDrillMarks(ctx context.Context, filter core.Predicates) ([]performance.DrillMark, error) {
	q, args, err := repo.query(`SELECT id, m1, m2, a1c1, a2c2, deleted_at FROM drill_marks`, liveScopeColumns, filter, "")
	if err != nil {
		return nil, err
	}
	var rows []drillRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying drill marks")
	}
	marks := make([]performance.DrillMark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, performance.DrillMark{
			ID:        row.ID,
			M1:        row.M1,
			M2:        row.M2,
			A1C1:      row.A1C1,
			A2C2:      row.A2C2,
			DeletedAt: row.DeletedAt.Ptr(),
		})
	}
	return marks, nil
}

func (repo performanceRepository) QueryCfeRecords(ctx context.Context, filter core.Predicates) ([]performance.CfeRecord, error) {
	q, args, err := repo.query(`SELECT id, items, deleted_at FROM cfe_records`, liveScopeColumns, filter, "")
	if err != nil {
		return nil, err
	}
	var rows []cfeRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying cfe records")
	}
	records := make([]performance.CfeRecord, 0, len(rows))
	for _, row := range rows {
		rec := performance.CfeRecord{ID: row.ID, DeletedAt: row.DeletedAt.Ptr()}
		if err = json.Unmarshal([]byte(row.Items), &rec.Items); err != nil {
			return nil, errors.Wrapf(err, "decoding cfe record %s", row.ID)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (repo performanceRepository) QueryCampParticipations(ctx context.Context, filter core.Predicates) ([]performance.CampParticipation, error) {
	q, args, err := repo.query(
		`SELECT p.id, p.camp_id, c.semester_tag, p.total_marks_scored
		FROM camp_participations p JOIN training_camps c ON c.id = p.camp_id`,
		participationColumns, filter, "")
	if err != nil {
		return nil, err
	}
	var rows []participationRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying camp participations")
	}
	participations := make([]performance.CampParticipation, 0, len(rows))
	for _, row := range rows {
		participations = append(participations, performance.CampParticipation(row))
	}
	return participations, nil
}

func (repo performanceRepository) GetSprRecord(ctx context.Context, filter core.Predicates) (performance.SprRecord, error) {
	q, args, err := repo.query(
		`SELECT id, oc_id, enrollment_id, semester, cdr_marks, subject_remarks, platoon_commander_remarks,
			deputy_commander_remarks, commander_remarks, created_at, updated_at FROM spr_records`,
		sprColumns, filter, " LIMIT 1")
	if err != nil {
		return performance.SprRecord{}, err
	}
	var row sprRow
	if err = repo.db.GetContext(ctx, &row, q, args...); err != nil {
		return performance.SprRecord{}, repo.trapNoRowsErr(err, "getting spr record")
	}
	return repo.unboilSpr(row)
}

// UpsertSprRecord overwrites every mutable column; the caller has already merged partial updates.
func (repo performanceRepository) UpsertSprRecord(ctx context.Context, rec performance.SprRecord) (performance.SprRecord, error) {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	remarks := rec.SubjectRemarks
	if remarks == nil {
		remarks = map[performance.SubjectKey]string{}
	}
	remarksJSON, err := json.Marshal(remarks)
	if err != nil {
		return performance.SprRecord{}, errors.Wrap(err, "encoding subject remarks")
	}

	q := repo.db.Rebind(`INSERT INTO spr_records (id, oc_id, enrollment_id, semester, cdr_marks, subject_remarks,
			platoon_commander_remarks, deputy_commander_remarks, commander_remarks, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (oc_id, enrollment_id, semester) DO UPDATE SET
			cdr_marks = excluded.cdr_marks,
			subject_remarks = excluded.subject_remarks,
			platoon_commander_remarks = excluded.platoon_commander_remarks,
			deputy_commander_remarks = excluded.deputy_commander_remarks,
			commander_remarks = excluded.commander_remarks,
			updated_at = excluded.updated_at`)
	_, err = repo.db.ExecContext(ctx, q,
		rec.ID, rec.OCID, rec.EnrollmentID, rec.Semester, rec.CdrMarks, string(remarksJSON),
		rec.PlatoonCommanderRemarks, rec.DeputyCommanderRemarks, rec.CommanderRemarks,
		rec.CreatedAt.UTC(), rec.UpdatedAt.UTC())
	if err != nil {
		return performance.SprRecord{}, errors.Wrap(err, "upserting spr record")
	}

	filter := core.Where(
		core.Eq(performance.FieldOCID, rec.OCID),
		core.Eq(performance.FieldEnrollmentID, rec.EnrollmentID),
		core.Eq(performance.FieldSemester, rec.Semester),
	)
	return repo.GetSprRecord(ctx, filter)
}

func (repo performanceRepository) unboilSpr(row sprRow) (performance.SprRecord, error) {
	rec := performance.SprRecord{
		ID:                      row.ID,
		OCID:                    row.OCID,
		EnrollmentID:            row.EnrollmentID,
		Semester:                row.Semester,
		CdrMarks:                row.CdrMarks,
		PlatoonCommanderRemarks: row.PlatoonCommanderRemarks,
		DeputyCommanderRemarks:  row.DeputyCommanderRemarks,
		CommanderRemarks:        row.CommanderRemarks,
		CreatedAt:               row.CreatedAt.UTC(),
		UpdatedAt:               row.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(row.SubjectRemarks), &rec.SubjectRemarks); err != nil {
		return performance.SprRecord{}, errors.Wrap(err, "decoding subject remarks")
	}
	return rec, nil
}
