package performance

// SubjectKey identifies a report row.
type SubjectKey string

const (
	KeyAcademics  SubjectKey = "academics"
	KeyOLQ        SubjectKey = "olq"
	KeyPTSwimming SubjectKey = "pt_swimming"
	KeyGames      SubjectKey = "games"
	KeyDrill      SubjectKey = "drill"
	KeyCamp       SubjectKey = "camp"
	KeyCFE        SubjectKey = "cfe"
	KeyCdrMarks   SubjectKey = "cdr_marks"
	KeyTotal      SubjectKey = "total"
)

const (
	MinSemester = 1
	MaxSemester = 6

	CdrMaxMarksPerSemester = 25

	// ComponentMaxMarks is the ceiling of a single theory or practical component.
	ComponentMaxMarks = 100
	// AcademicsRawMax is the natural range academics scores are projected onto.
	AcademicsRawMax = 1350
	// CfeRawMax is the natural ceiling of CFE scores, whatever the caller claims.
	CfeRawMax = 50
)

// Camp semester tags.
const (
	CampTagSem5  = "SEM5"
	CampTagSem6A = "SEM6A"
	CampTagSem6B = "SEM6B"
)

var (
	// SubjectKeys is the fixed row order of both reports.
	SubjectKeys = []SubjectKey{
		KeyAcademics, KeyOLQ, KeyPTSwimming, KeyGames, KeyDrill, KeyCamp, KeyCFE, KeyCdrMarks, KeyTotal,
	}

	// SourceKeys are the keys backed by a subsystem score, in row order.
	SourceKeys = []SubjectKey{KeyAcademics, KeyOLQ, KeyPTSwimming, KeyGames, KeyDrill, KeyCamp, KeyCFE}

	SubjectLabels = map[SubjectKey]string{
		KeyAcademics:  "ACADEMICS",
		KeyOLQ:        "OLQ",
		KeyPTSwimming: "PT & SWIMMING",
		KeyGames:      "GAMES",
		KeyDrill:      "DRILL",
		KeyCamp:       "CAMPS",
		KeyCFE:        "CFE",
		KeyCdrMarks:   "CDR MARKS",
		KeyTotal:      "TOTAL",
	}

	FprTotalLabel = "GRAND TOTAL"

	// SprMaxMarks holds each semester's budget per key.
	SprMaxMarks = map[int]map[SubjectKey]int{
		1: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 0, KeyCamp: 0, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 1925},
		2: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 0, KeyCamp: 0, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 1925},
		3: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 0, KeyCamp: 0, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 1925},
		4: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 50, KeyCamp: 0, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 1975},
		5: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 50, KeyCamp: 150, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 2125},
		6: {KeyAcademics: 1350, KeyOLQ: 300, KeyPTSwimming: 150, KeyGames: 50, KeyDrill: 50, KeyCamp: 150, KeyCFE: 50, KeyCdrMarks: 25, KeyTotal: 2125},
	}

	// FprMaxMarks holds the lifetime budgets: the six semesters summed per key.
	FprMaxMarks = map[SubjectKey]int{
		KeyAcademics:  8100,
		KeyOLQ:        1800,
		KeyPTSwimming: 900,
		KeyGames:      300,
		KeyDrill:      150,
		KeyCamp:       300,
		KeyCFE:        300,
		KeyCdrMarks:   150,
		KeyTotal:      12000,
	}

	// campTagsBySemester lists the camp tags counted in a semester; other semesters score no camp.
	campTagsBySemester = map[int][]string{
		5: {CampTagSem5},
		6: {CampTagSem6A, CampTagSem6B},
	}
)

// IsValidSemester reports whether s is within 1..6.
func IsValidSemester(s int) bool {
	return s >= MinSemester && s <= MaxSemester
}

// Semesters returns 1..6.
func Semesters() []int {
	sems := make([]int, 0, MaxSemester)
	for s := MinSemester; s <= MaxSemester; s++ {
		sems = append(sems, s)
	}
	return sems
}
