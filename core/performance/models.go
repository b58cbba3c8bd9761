package performance

import (
	"time"

	"github.com/Hexmon/e-dossier-sub006/core"
)

// Filterable fields handed to the storage layer.
const (
	FieldID              core.Field = "id"
	FieldOCID            core.Field = "oc_id"
	FieldEnrollmentID    core.Field = "enrollment_id"
	FieldCourseID        core.Field = "course_id"
	FieldSemester        core.Field = "semester"
	FieldDeletedAt       core.Field = "deleted_at"
	FieldCampSemesterTag core.Field = "camp.semester_tag"
	FieldCampDeletedAt   core.Field = "camp.deleted_at"
)

// Enrollment is the active course registration scoping every per-semester row of a cadet.
type Enrollment struct {
	ID        string    `json:"id"`
	OCID      string    `json:"oc_id"`
	CourseID  string    `json:"course_id"`
	BranchTag string    `json:"branch_tag"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// Academics (read-only)

type TheoryMarks struct {
	PhaseTest1 *float64 `json:"phase_test_1"`
	PhaseTest2 *float64 `json:"phase_test_2"`
	Tutorial   string   `json:"tutorial"` // free text, numeric when graded
	FinalMarks *float64 `json:"final_marks"`
	Grade      string   `json:"grade"`
}

type PracticalMarks struct {
	FinalMarks *float64 `json:"final_marks"`
	Grade      string   `json:"grade"`
}

type SubjectMeta struct {
	SubjectID        string     `json:"subject_id,omitempty"`
	OfferingID       string     `json:"offering_id,omitempty"`
	TheoryCredits    *float64   `json:"theory_credits,omitempty"`
	PracticalCredits *float64   `json:"practical_credits,omitempty"`
	DeletedAt        *time.Time `json:"deleted_at,omitempty"`
}

type SemesterSubjectRecord struct {
	SubjectCode string          `json:"subject_code"`
	SubjectName string          `json:"subject_name"`
	Branch      string          `json:"branch"`
	Theory      *TheoryMarks    `json:"theory,omitempty"`
	Practical   *PracticalMarks `json:"practical,omitempty"`
	Meta        SubjectMeta     `json:"meta"`
}

// SemesterMarksRecord is one (cadet, enrollment, semester) row of recorded academics.
type SemesterMarksRecord struct {
	ID           string                  `json:"id"`
	OCID         string                  `json:"oc_id"`
	EnrollmentID string                  `json:"enrollment_id"`
	Semester     int                     `json:"semester"`
	SGPA         *float64                `json:"sgpa"`
	CGPA         *float64                `json:"cgpa"`
	MarksScored  *float64                `json:"marks_scored"`
	Subjects     []SemesterSubjectRecord `json:"subjects"`
}

type Subject struct {
	ID                      string   `json:"id"`
	Code                    string   `json:"code"`
	Name                    string   `json:"name"`
	Branch                  string   `json:"branch"`
	HasTheory               bool     `json:"has_theory"`
	HasPractical            bool     `json:"has_practical"`
	DefaultTheoryCredits    *float64 `json:"default_theory_credits"`
	DefaultPracticalCredits *float64 `json:"default_practical_credits"`
}

// CourseOfferingRow is a subject offered by a course in a semester.
type CourseOfferingRow struct {
	ID               string   `json:"id"`
	CourseID         string   `json:"course_id"`
	Semester         int      `json:"semester"`
	IncludeTheory    bool     `json:"include_theory"`
	IncludePractical bool     `json:"include_practical"`
	TheoryCredits    *float64 `json:"theory_credits"`
	PracticalCredits *float64 `json:"practical_credits"`
	Subject          Subject  `json:"subject"`
}

// Academics (derived)

type TheoryView struct {
	PhaseTest1 *float64 `json:"phaseTest1Marks"`
	PhaseTest2 *float64 `json:"phaseTest2Marks"`
	Tutorial   string   `json:"tutorial"`
	Sessional  float64  `json:"sessionalMarks"`
	FinalMarks *float64 `json:"finalMarks"`
	Grade      string   `json:"grade"`
	Total      float64  `json:"totalMarks"`
}

type PracticalView struct {
	FinalMarks *float64 `json:"finalMarks"`
	Grade      string   `json:"grade"`
	Total      float64  `json:"totalMarks"`
}

type AcademicSubjectView struct {
	OfferingID       string         `json:"offeringId,omitempty"`
	IncludeTheory    bool           `json:"includeTheory"`
	IncludePractical bool           `json:"includePractical"`
	TheoryCredits    *float64       `json:"theoryCredits"`
	PracticalCredits *float64       `json:"practicalCredits"`
	Subject          Subject        `json:"subject"`
	Theory           *TheoryView    `json:"theory,omitempty"`
	Practical        *PracticalView `json:"practical,omitempty"`
}

type AcademicSemesterView struct {
	Semester    int                   `json:"semester"`
	BranchTag   string                `json:"branchTag"`
	SGPA        *float64              `json:"sgpa,omitempty"`
	CGPA        *float64              `json:"cgpa,omitempty"`
	MarksScored *float64              `json:"marksScored,omitempty"`
	Subjects    []AcademicSubjectView `json:"subjects"`
}

// Subsystem rows (read-only)

type DrillMark struct {
	ID        string     `json:"id"`
	M1        float64    `json:"m1"`
	M2        float64    `json:"m2"`
	A1C1      float64    `json:"a1c1"`
	A2C2      float64    `json:"a2c2"`
	DeletedAt *time.Time `json:"deleted_at"`
}

func (d DrillMark) Total() float64 { return d.M1 + d.M2 + d.A1C1 + d.A2C2 }

type CfeItem struct {
	Category string  `json:"cat"`
	Marks    float64 `json:"marks"`
	Remarks  string  `json:"remarks"`
}

type CfeRecord struct {
	ID        string     `json:"id"`
	Items     []CfeItem  `json:"items"`
	DeletedAt *time.Time `json:"deleted_at"`
}

type CampParticipation struct {
	ID               string  `json:"id"`
	CampID           string  `json:"camp_id"`
	CampSemesterTag  string  `json:"camp_semester_tag"`
	TotalMarksScored float64 `json:"total_marks_scored"`
}

// PerformanceSourceScores are the seven raw per-semester scores in their natural ranges.
type PerformanceSourceScores struct {
	Academics  float64 `json:"academics"`
	OLQ        float64 `json:"olq"`
	PTSwimming float64 `json:"ptSwimming"`
	Games      float64 `json:"games"`
	Drill      float64 `json:"drill"`
	Camp       float64 `json:"camp"`
	CFE        float64 `json:"cfe"`
}

// Get returns the score backing a source key; other keys score 0.
func (s PerformanceSourceScores) Get(key SubjectKey) float64 {
	switch key {
	case KeyAcademics:
		return s.Academics
	case KeyOLQ:
		return s.OLQ
	case KeyPTSwimming:
		return s.PTSwimming
	case KeyGames:
		return s.Games
	case KeyDrill:
		return s.Drill
	case KeyCamp:
		return s.Camp
	case KeyCFE:
		return s.CFE
	default:
		return 0
	}
}

// SprRecord holds the commander's marks and remarks for one semester.
type SprRecord struct {
	ID                      string                `json:"id"`
	OCID                    string                `json:"oc_id"`
	EnrollmentID            string                `json:"enrollment_id"`
	Semester                int                   `json:"semester"`
	CdrMarks                float64               `json:"cdr_marks"`
	SubjectRemarks          map[SubjectKey]string `json:"subject_remarks"`
	PlatoonCommanderRemarks string                `json:"platoon_commander_remarks"`
	DeputyCommanderRemarks  string                `json:"deputy_commander_remarks"`
	CommanderRemarks        string                `json:"commander_remarks"`
	CreatedAt               time.Time             `json:"created_at"` // UTC
	UpdatedAt               time.Time             `json:"updated_at"` // UTC
}

// UpdateSpr defines what may be provided to modify an SprRecord. nil fields keep their stored value.
type UpdateSpr struct {
	CdrMarks                *float64              `json:"cdr_marks" validate:"omitempty,min=0,max=25"`
	SubjectRemarks          map[SubjectKey]string `json:"subject_remarks" validate:"omitempty,dive,keys,remarkkey,endkeys"`
	PlatoonCommanderRemarks *string               `json:"platoon_commander_remarks"`
	DeputyCommanderRemarks  *string               `json:"deputy_commander_remarks"`
	CommanderRemarks        *string               `json:"commander_remarks"`
}

func (us UpdateSpr) Validate() error {
	return core.ValidationErrorFrom(core.Validate.Struct(us))
}

// IsEmpty reports whether no field was supplied.
func (us UpdateSpr) IsEmpty() bool {
	return us.CdrMarks == nil && us.SubjectRemarks == nil && us.PlatoonCommanderRemarks == nil &&
		us.DeputyCommanderRemarks == nil && us.CommanderRemarks == nil
}

// Views

type PerformanceRow struct {
	SubjectKey   SubjectKey `json:"subjectKey"`
	SubjectLabel string     `json:"subjectLabel"`
	MaxMarks     int        `json:"maxMarks"`
	MarksScored  float64    `json:"marksScored"`
	Remarks      string     `json:"remarks"`
}

type PerformanceReportRemarks struct {
	PlatoonCommanderRemarks string `json:"platoonCommanderRemarks"`
	DeputyCommanderRemarks  string `json:"deputyCommanderRemarks"`
	CommanderRemarks        string `json:"commanderRemarks"`
}

type SprView struct {
	Semester                 int                      `json:"semester"`
	Rows                     []PerformanceRow         `json:"rows"`
	PerformanceReportRemarks PerformanceReportRemarks `json:"performanceReportRemarks"`
}

type FprRow struct {
	SubjectKey      SubjectKey           `json:"subjectKey"`
	SubjectLabel    string               `json:"subjectLabel"`
	MaxMarks        int                  `json:"maxMarks"`
	MarksBySemester [MaxSemester]float64 `json:"marksBySemester"`
	MarksScored     float64              `json:"marksScored"`
}

type FprView struct {
	Rows []FprRow `json:"rows"`
}

// AuditEvent is emitted once per SPR upsert.
type AuditEvent struct {
	ActorID       string
	OCID          string
	EnrollmentID  string
	Semester      int
	ChangedFields []string
	Created       bool
}
