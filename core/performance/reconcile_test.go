package performance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func float(v float64) *float64 { return &v }

func offering(id, code string, theory, practical bool) CourseOfferingRow {
	return CourseOfferingRow{
		ID:               "off-" + code,
		IncludeTheory:    theory,
		IncludePractical: practical,
		Subject:          Subject{ID: id, Code: code, Name: code, HasTheory: theory, HasPractical: practical},
	}
}

func codes(view AcademicSemesterView) []string {
	out := make([]string, 0, len(view.Subjects))
	for _, subj := range view.Subjects {
		out = append(out, subj.Subject.Code)
	}
	return out
}

func TestBuildAcademicSemesterView(t *testing.T) {
	deleted := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		persisted *SemesterMarksRecord
		offerings []CourseOfferingRow
		wantCodes []string
	}{
		{
			name:      "nothing recorded",
			offerings: []CourseOfferingRow{offering("a", "A", true, false), offering("b", "B", true, false)},
			wantCodes: []string{"A", "B"},
		},
		{
			name: "history preserved",
			persisted: &SemesterMarksRecord{Subjects: []SemesterSubjectRecord{
				{SubjectCode: "A", Meta: SubjectMeta{SubjectID: "a"}},
				{SubjectCode: "C", Meta: SubjectMeta{SubjectID: "c"}},
			}},
			offerings: []CourseOfferingRow{offering("a", "A", true, false), offering("b", "B", true, false)},
			wantCodes: []string{"A", "B", "C"},
		},
		{
			name: "matched by code when ids differ",
			persisted: &SemesterMarksRecord{Subjects: []SemesterSubjectRecord{
				{SubjectCode: "A", Meta: SubjectMeta{SubjectID: "legacy-a"}},
			}},
			offerings: []CourseOfferingRow{offering("a", "A", true, false)},
			wantCodes: []string{"A"},
		},
		{
			name: "deleted leftover skipped",
			persisted: &SemesterMarksRecord{Subjects: []SemesterSubjectRecord{
				{SubjectCode: "C", Meta: SubjectMeta{SubjectID: "c", DeletedAt: &deleted}},
			}},
			offerings: []CourseOfferingRow{offering("a", "A", true, false)},
			wantCodes: []string{"A"},
		},
		{
			name: "leftover emitted once",
			persisted: &SemesterMarksRecord{Subjects: []SemesterSubjectRecord{
				{SubjectCode: "C", Meta: SubjectMeta{SubjectID: "c"}},
				{SubjectCode: "C", Meta: SubjectMeta{SubjectID: "c"}},
			}},
			wantCodes: []string{"C"},
		},
		{
			name:      "duplicate offering skipped",
			offerings: []CourseOfferingRow{offering("a", "A", true, false), offering("a", "A", false, true)},
			wantCodes: []string{"A"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := BuildAcademicSemesterView(1, "E", tt.persisted, tt.offerings)
			assert.Equal(t, 1, view.Semester)
			assert.Equal(t, "E", view.BranchTag)
			assert.Equal(t, tt.wantCodes, codes(view))
		})
	}
}

func TestBuildAcademicSemesterView_marks(t *testing.T) {
	persisted := &SemesterMarksRecord{
		SGPA: float(8.2),
		Subjects: []SemesterSubjectRecord{
			{
				SubjectCode: "A",
				Theory:      &TheoryMarks{PhaseTest1: float(12), PhaseTest2: float(13), Tutorial: " 4.5 ", FinalMarks: float(50), Grade: "A"},
				Practical:   &PracticalMarks{FinalMarks: float(38), Grade: "B"},
				Meta:        SubjectMeta{SubjectID: "a", TheoryCredits: float(3), PracticalCredits: float(1)},
			},
			{
				SubjectCode: "C",
				SubjectName: "Old Subject",
				Theory:      &TheoryMarks{Tutorial: "absent", FinalMarks: float(40)},
				Meta:        SubjectMeta{SubjectID: "c", OfferingID: "off-old"},
			},
		},
	}
	a := offering("a", "A", true, true)
	a.TheoryCredits = float(4)
	a.Subject.DefaultTheoryCredits = float(2)
	a.Subject.DefaultPracticalCredits = float(0.5)

	view := BuildAcademicSemesterView(1, "E", persisted, []CourseOfferingRow{a})
	require.Len(t, view.Subjects, 2)
	assert.Equal(t, 8.2, *view.SGPA)

	got := view.Subjects[0]
	assert.Equal(t, "off-A", got.OfferingID)
	assert.Equal(t, 4.0, *got.TheoryCredits, "offering credits win")
	assert.Equal(t, 1.0, *got.PracticalCredits, "recorded credits before subject defaults")
	require.NotNil(t, got.Theory)
	assert.Equal(t, 29.5, got.Theory.Sessional)
	assert.Equal(t, 79.5, got.Theory.Total)
	assert.Equal(t, "A", got.Theory.Grade)
	require.NotNil(t, got.Practical)
	assert.Equal(t, 38.0, got.Practical.Total)

	old := view.Subjects[1]
	assert.Equal(t, "off-old", old.OfferingID)
	assert.Equal(t, "Old Subject", old.Subject.Name)
	assert.True(t, old.IncludeTheory)
	assert.False(t, old.IncludePractical)
	assert.Nil(t, old.Practical)
	assert.Equal(t, 0.0, old.Theory.Sessional, "non-numeric tutorial counts as 0")
	assert.Equal(t, 40.0, old.Theory.Total)
}

func TestAcademicsScore(t *testing.T) {
	theory := func(total float64) *TheoryView { return &TheoryView{Total: total} }

	tests := []struct {
		name string
		view AcademicSemesterView
		want float64
	}{
		{name: "no subjects", want: 0},
		{
			name: "80 + 60 of 200",
			view: AcademicSemesterView{Subjects: []AcademicSubjectView{
				{IncludeTheory: true, Theory: theory(80)},
				{IncludeTheory: true, Theory: theory(60)},
			}},
			want: 945,
		},
		{
			name: "missing marks still count towards the maximum",
			view: AcademicSemesterView{Subjects: []AcademicSubjectView{
				{IncludeTheory: true, Theory: theory(100)},
				{IncludeTheory: true},
			}},
			want: 675,
		},
		{
			name: "excluded components ignored",
			view: AcademicSemesterView{Subjects: []AcademicSubjectView{
				{IncludeTheory: true, Theory: theory(50), Practical: &PracticalView{Total: 100}},
				{Theory: theory(100)},
			}},
			want: 675,
		},
		{
			name: "clamped to 1350",
			view: AcademicSemesterView{Subjects: []AcademicSubjectView{
				{IncludeTheory: true, Theory: theory(130)},
			}},
			want: 1350,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AcademicsScore(tt.view))
		})
	}
}
