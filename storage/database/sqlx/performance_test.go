package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/Hexmon/e-dossier-sub006/core"
	"github.com/Hexmon/e-dossier-sub006/core/performance"
	"github.com/Hexmon/e-dossier-sub006/tests"
)

func setup(t *testing.T) (*performanceRepository, performance.Enrollment) {
	db := testutil.PrepareSQLite(t)
	repo := &performanceRepository{db: db}

	now := time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC)
	testutil.MustExec(t, db, `INSERT INTO enrollments (id, oc_id, course_id, branch_tag, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"enr-old", "oc-1", "course-0", "E", false, now.Add(-24*time.Hour))
	testutil.MustExec(t, db, `INSERT INTO enrollments (id, oc_id, course_id, branch_tag, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		"enr-1", "oc-1", "course-1", "M", true, now)

	return repo, performance.Enrollment{ID: "enr-1", OCID: "oc-1", CourseID: "course-1", BranchTag: "M", IsActive: true, CreatedAt: now}
}

func semScope(enr performance.Enrollment, semester int) core.Predicates {
	return core.Where(
		core.Eq(performance.FieldOCID, enr.OCID),
		core.Eq(performance.FieldEnrollmentID, enr.ID),
		core.Eq(performance.FieldSemester, semester),
	)
}

func TestColumnsWhere(t *testing.T) {
	cols := columns{"a": "t.a", "b": "t.b"}

	tests := []struct {
		name     string
		filter   core.Predicates
		wantSQL  string
		wantArgs []interface{}
		wantErr  bool
	}{
		{name: "empty"},
		{name: "eq", filter: core.Where(core.Eq("a", 1)), wantSQL: " WHERE t.a = ?", wantArgs: []interface{}{1}},
		{
			name:     "in and is null",
			filter:   core.Where(core.In("a", "x", "y"), core.IsNull("b")),
			wantSQL:  " WHERE t.a IN (?, ?) AND t.b IS NULL",
			wantArgs: []interface{}{"x", "y"},
		},
		{name: "empty in", filter: core.Where(core.In("a")), wantSQL: " WHERE 1 = 0", wantArgs: []interface{}{}},
		{name: "unknown field", filter: core.Where(core.Eq("c", 1)), wantErr: true},
		{name: "unknown op", filter: core.Predicates{{Field: "a", Op: "like"}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := cols.where(tt.filter)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
			} else {
				assert.Equal(t, tt.wantArgs, args)
			}
		})
	}
}

func TestGetOrCreateActiveEnrollment(t *testing.T) {
	repo, enr := setup(t)
	ctx := context.Background()

	got, err := repo.GetOrCreateActiveEnrollment(ctx, "oc-1")
	require.NoError(t, err)
	assert.Equal(t, enr.ID, got.ID)
	assert.Equal(t, "M", got.BranchTag)

	created, err := repo.GetOrCreateActiveEnrollment(ctx, "oc-2")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsActive)

	again, err := repo.GetOrCreateActiveEnrollment(ctx, "oc-2")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)

	t.Run("one active enrollment per cadet", func(t *testing.T) {
		_, err := repo.db.ExecContext(ctx, `INSERT INTO enrollments (id, oc_id, course_id, branch_tag, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			"enr-dup", "oc-1", "course-2", "M", true, time.Now().UTC())
		assert.Error(t, err)
	})

	t.Run("concurrent first calls agree", func(t *testing.T) {
		ids := make([]string, 8)
		var g errgroup.Group
		for i := range ids {
			i := i
			g.Go(func() error {
				enr, err := repo.GetOrCreateActiveEnrollment(ctx, "oc-3")
				ids[i] = enr.ID
				return err
			})
		}
		require.NoError(t, g.Wait())
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}

		var active int
		require.NoError(t, repo.db.GetContext(ctx, &active, `SELECT COUNT(*) FROM enrollments WHERE oc_id = ? AND is_active = ?`, "oc-3", true))
		assert.Equal(t, 1, active)
	})
}

func TestAcademics(t *testing.T) {
	repo, enr := setup(t)
	ctx := context.Background()

	_, err := repo.GetSemesterMarks(ctx, semScope(enr, 1))
	assert.Equal(t, performance.ErrNotFound, err)

	testutil.MustExec(t, repo.db, `INSERT INTO semester_marks (id, oc_id, enrollment_id, semester, sgpa, subjects) VALUES (?, ?, ?, ?, ?, ?)`,
		"sm-1", enr.OCID, enr.ID, 1, 8.5,
		`[{"subject_code":"MA101","subject_name":"Maths","theory":{"final_marks":40,"tutorial":"7"},"meta":{"subject_id":"s-1"}}]`)
	testutil.MustExec(t, repo.db, `INSERT INTO subjects (id, code, name, has_theory, has_practical, default_theory_credits) VALUES (?, ?, ?, ?, ?, ?)`,
		"s-1", "MA101", "Maths", true, false, 3)
	testutil.MustExec(t, repo.db, `INSERT INTO subjects (id, code, name, has_theory, has_practical) VALUES (?, ?, ?, ?, ?)`,
		"s-2", "PH101", "Physics", true, true)
	testutil.MustExec(t, repo.db, `INSERT INTO course_offerings (id, course_id, semester, subject_id, include_theory, include_practical, practical_credits) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"o-2", enr.CourseID, 1, "s-2", true, true, 1.5)
	testutil.MustExec(t, repo.db, `INSERT INTO course_offerings (id, course_id, semester, subject_id, include_theory, include_practical) VALUES (?, ?, ?, ?, ?, ?)`,
		"o-1", enr.CourseID, 1, "s-1", true, false)
	testutil.MustExec(t, repo.db, `INSERT INTO course_offerings (id, course_id, semester, subject_id) VALUES (?, ?, ?, ?)`,
		"o-3", enr.CourseID, 2, "s-2")

	rec, err := repo.GetSemesterMarks(ctx, semScope(enr, 1))
	require.NoError(t, err)
	assert.Equal(t, "sm-1", rec.ID)
	require.NotNil(t, rec.SGPA)
	assert.Equal(t, 8.5, *rec.SGPA)
	assert.Nil(t, rec.CGPA)
	require.Len(t, rec.Subjects, 1)
	assert.Equal(t, "MA101", rec.Subjects[0].SubjectCode)
	require.NotNil(t, rec.Subjects[0].Theory)
	assert.Equal(t, 40.0, *rec.Subjects[0].Theory.FinalMarks)

	offerings, err := repo.QueryCourseOfferings(ctx, core.Where(
		core.Eq(performance.FieldCourseID, enr.CourseID),
		core.Eq(performance.FieldSemester, 1),
	))
	require.NoError(t, err)
	require.Len(t, offerings, 2)
	assert.Equal(t, "MA101", offerings[0].Subject.Code)
	assert.Nil(t, offerings[0].TheoryCredits)
	assert.Equal(t, 3.0, *offerings[0].Subject.DefaultTheoryCredits)
	assert.Equal(t, "PH101", offerings[1].Subject.Code)
	assert.True(t, offerings[1].IncludePractical)
	assert.Equal(t, 1.5, *offerings[1].PracticalCredits)
}

func TestSources(t *testing.T) {
	repo, enr := setup(t)
	ctx := context.Background()
	deleted := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	testutil.MustExec(t, repo.db, `INSERT INTO olq_totals (id, oc_id, enrollment_id, semester, total_marks) VALUES (?, ?, ?, ?, ?)`,
		"olq-1", enr.OCID, enr.ID, 1, 210.5)
	testutil.MustExec(t, repo.db, `INSERT INTO pt_scores (id, oc_id, enrollment_id, semester, task_id, marks) VALUES (?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?)`,
		"pt-1", enr.OCID, enr.ID, 1, "run", 40, "pt-2", enr.OCID, enr.ID, 1, "swim", 35)
	testutil.MustExec(t, repo.db, `INSERT INTO games_marks (id, oc_id, enrollment_id, semester, sport, marks_obtained, deleted_at) VALUES (?, ?, ?, ?, ?, ?, ?), (?, ?, ?, ?, ?, ?, ?)`,
		"g-1", enr.OCID, enr.ID, 1, "hockey", 20, nil, "g-2", enr.OCID, enr.ID, 1, "polo", 15, deleted)
	testutil.MustExec(t, repo.db, `INSERT INTO drill_marks (id, oc_id, enrollment_id, semester, m1, m2, a1c1, a2c2) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		"d-1", enr.OCID, enr.ID, 4, 10, 12, 8, 9)
	testutil.MustExec(t, repo.db, `INSERT INTO cfe_records (id, oc_id, enrollment_id, semester, items) VALUES (?, ?, ?, ?, ?)`,
		"c-1", enr.OCID, enr.ID, 1, `[{"cat":"conduct","marks":12,"remarks":"ok"},{"cat":"turnout","marks":8}]`)
	testutil.MustExec(t, repo.db, `INSERT INTO training_camps (id, name, semester_tag) VALUES (?, ?, ?), (?, ?, ?)`,
		"camp-5", "Basic", performance.CampTagSem5, "camp-6", "Advanced", performance.CampTagSem6A)
	testutil.MustExec(t, repo.db, `INSERT INTO camp_participations (id, oc_id, enrollment_id, camp_id, total_marks_scored) VALUES (?, ?, ?, ?, ?), (?, ?, ?, ?, ?)`,
		"p-1", enr.OCID, enr.ID, "camp-5", 45, "p-2", enr.OCID, enr.ID, "camp-6", 60)

	t.Run("olq", func(t *testing.T) {
		total, err := repo.GetOLQTotal(ctx, semScope(enr, 1))
		require.NoError(t, err)
		assert.Equal(t, 210.5, total)

		_, err = repo.GetOLQTotal(ctx, semScope(enr, 2))
		assert.Equal(t, performance.ErrNotFound, err)
	})

	t.Run("pt", func(t *testing.T) {
		marks, err := repo.QueryPTScores(ctx, semScope(enr, 1))
		require.NoError(t, err)
		assert.ElementsMatch(t, []float64{40, 35}, marks)
	})

	t.Run("games skip deleted", func(t *testing.T) {
		marks, err := repo.QueryGamesMarks(ctx, semScope(enr, 1).And(core.IsNull(performance.FieldDeletedAt)))
		require.NoError(t, err)
		assert.Equal(t, []float64{20}, marks)
	})

	t.Run("drill", func(t *testing.T) {
		rows, err := repo.QueryDrillMarks(ctx, semScope(enr, 4))
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 39.0, rows[0].Total())
		assert.Nil(t, rows[0].DeletedAt)
	})

	t.Run("cfe", func(t *testing.T) {
		records, err := repo.QueryCfeRecords(ctx, semScope(enr, 1))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, []performance.CfeItem{
			{Category: "conduct", Marks: 12, Remarks: "ok"},
			{Category: "turnout", Marks: 8},
		}, records[0].Items)
	})

	t.Run("camps by tag", func(t *testing.T) {
		filter := core.Where(
			core.Eq(performance.FieldOCID, enr.OCID),
			core.Eq(performance.FieldEnrollmentID, enr.ID),
			core.IsNull(performance.FieldDeletedAt),
			core.In(performance.FieldCampSemesterTag, performance.CampTagSem5),
			core.IsNull(performance.FieldCampDeletedAt),
		)
		rows, err := repo.QueryCampParticipations(ctx, filter)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, performance.CampParticipation{
			ID:               "p-1",
			CampID:           "camp-5",
			CampSemesterTag:  performance.CampTagSem5,
			TotalMarksScored: 45,
		}, rows[0])
	})
}

func TestSprRecords(t *testing.T) {
	repo, enr := setup(t)
	ctx := context.Background()

	_, err := repo.GetSprRecord(ctx, semScope(enr, 3))
	assert.Equal(t, performance.ErrNotFound, err)

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rec := performance.SprRecord{
		ID:             "spr-1",
		OCID:           enr.OCID,
		EnrollmentID:   enr.ID,
		Semester:       3,
		CdrMarks:       18.5,
		SubjectRemarks: map[performance.SubjectKey]string{performance.KeyOLQ: "steady"},
		CreatedAt:      created,
		UpdatedAt:      created,
	}
	got, err := repo.UpsertSprRecord(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, rec, got)

	// same key, new id: the stored id and creation stamp survive
	updated := created.Add(time.Hour)
	rec2 := rec
	rec2.ID = "spr-other"
	rec2.CdrMarks = 20
	rec2.SubjectRemarks = nil
	rec2.CommanderRemarks = "promote"
	rec2.CreatedAt = updated
	rec2.UpdatedAt = updated
	got, err = repo.UpsertSprRecord(ctx, rec2)
	require.NoError(t, err)
	assert.Equal(t, "spr-1", got.ID)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, updated, got.UpdatedAt)
	assert.Equal(t, 20.0, got.CdrMarks)
	assert.Equal(t, "promote", got.CommanderRemarks)
	assert.Empty(t, got.SubjectRemarks)

	byID, err := repo.GetSprRecord(ctx, core.Where(core.Eq(performance.FieldID, "spr-1")))
	require.NoError(t, err)
	assert.Equal(t, got, byID)
}
