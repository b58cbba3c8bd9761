package performance

import (
	"strconv"
	"strings"
)

// subjectIndex finds recorded subjects by subject id or code.
type subjectIndex struct {
	byID   map[string]*SemesterSubjectRecord
	byCode map[string]*SemesterSubjectRecord
}

func newSubjectIndex(records []SemesterSubjectRecord) subjectIndex {
	idx := subjectIndex{
		byID:   make(map[string]*SemesterSubjectRecord, len(records)),
		byCode: make(map[string]*SemesterSubjectRecord, len(records)),
	}
	for i := range records {
		rec := &records[i]
		if rec.Meta.SubjectID != "" {
			if _, ok := idx.byID[rec.Meta.SubjectID]; !ok {
				idx.byID[rec.Meta.SubjectID] = rec
			}
		}
		if rec.SubjectCode != "" {
			if _, ok := idx.byCode[rec.SubjectCode]; !ok {
				idx.byCode[rec.SubjectCode] = rec
			}
		}
	}
	return idx
}

func (idx subjectIndex) find(subj Subject) *SemesterSubjectRecord {
	if subj.ID != "" {
		if rec, ok := idx.byID[subj.ID]; ok {
			return rec
		}
	}
	if subj.Code != "" {
		if rec, ok := idx.byCode[subj.Code]; ok {
			return rec
		}
	}
	return nil
}

// consumedSet tracks the subject ids and codes already placed in a view.
type consumedSet map[string]struct{}

func (cs consumedSet) add(id, code string) {
	if id != "" {
		cs["id:"+id] = struct{}{}
	}
	if code != "" {
		cs["code:"+code] = struct{}{}
	}
}

func (cs consumedSet) has(id, code string) bool {
	if id != "" {
		if _, ok := cs["id:"+id]; ok {
			return true
		}
	}
	if code != "" {
		if _, ok := cs["code:"+code]; ok {
			return true
		}
	}
	return false
}

// BuildAcademicSemesterView merges the course's current offerings with the cadet's recorded subjects.
// Offerings are authoritative for flags and credits; recorded subjects the course no longer offers are
// appended afterwards so no historical score is lost. persisted may be nil.
func BuildAcademicSemesterView(
	semester int,
	branchTag string,
	persisted *SemesterMarksRecord,
	offerings []CourseOfferingRow,
) AcademicSemesterView {
	view := AcademicSemesterView{
		Semester:  semester,
		BranchTag: branchTag,
		Subjects:  make([]AcademicSubjectView, 0, len(offerings)),
	}

	var records []SemesterSubjectRecord
	if persisted != nil {
		view.SGPA = persisted.SGPA
		view.CGPA = persisted.CGPA
		view.MarksScored = persisted.MarksScored
		records = persisted.Subjects
	}
	idx := newSubjectIndex(records)
	consumed := make(consumedSet)

	for _, off := range offerings {
		if consumed.has(off.Subject.ID, off.Subject.Code) {
			continue // duplicate offering of a subject already in the view
		}
		rec := idx.find(off.Subject)
		entry := AcademicSubjectView{
			OfferingID:       off.ID,
			IncludeTheory:    off.IncludeTheory,
			IncludePractical: off.IncludePractical,
			Subject:          off.Subject,
		}

		var meta SubjectMeta
		if rec != nil {
			meta = rec.Meta
			consumed.add(rec.Meta.SubjectID, rec.SubjectCode)
			entry.Theory = computeTheory(rec.Theory)
			entry.Practical = computePractical(rec.Practical)
		}
		consumed.add(off.Subject.ID, off.Subject.Code)

		entry.TheoryCredits = firstCredit(off.TheoryCredits, meta.TheoryCredits, off.Subject.DefaultTheoryCredits)
		entry.PracticalCredits = firstCredit(off.PracticalCredits, meta.PracticalCredits, off.Subject.DefaultPracticalCredits)
		view.Subjects = append(view.Subjects, entry)
	}

	// leftovers: recorded but no longer offered
	for _, rec := range records {
		if rec.Meta.DeletedAt != nil || consumed.has(rec.Meta.SubjectID, rec.SubjectCode) {
			continue
		}
		consumed.add(rec.Meta.SubjectID, rec.SubjectCode)
		view.Subjects = append(view.Subjects, fallbackSubject(rec))
	}
	return view
}

func fallbackSubject(rec SemesterSubjectRecord) AcademicSubjectView {
	return AcademicSubjectView{
		OfferingID:       rec.Meta.OfferingID,
		IncludeTheory:    rec.Theory != nil,
		IncludePractical: rec.Practical != nil,
		TheoryCredits:    rec.Meta.TheoryCredits,
		PracticalCredits: rec.Meta.PracticalCredits,
		Subject: Subject{
			ID:           rec.Meta.SubjectID,
			Code:         rec.SubjectCode,
			Name:         rec.SubjectName,
			Branch:       rec.Branch,
			HasTheory:    rec.Theory != nil,
			HasPractical: rec.Practical != nil,
		},
		Theory:    computeTheory(rec.Theory),
		Practical: computePractical(rec.Practical),
	}
}

func computeTheory(t *TheoryMarks) *TheoryView {
	if t == nil {
		return nil
	}
	sessional := valueOf(t.PhaseTest1) + valueOf(t.PhaseTest2) + parseTutorial(t.Tutorial)
	return &TheoryView{
		PhaseTest1: t.PhaseTest1,
		PhaseTest2: t.PhaseTest2,
		Tutorial:   t.Tutorial,
		Sessional:  sessional,
		FinalMarks: t.FinalMarks,
		Grade:      t.Grade,
		Total:      sessional + valueOf(t.FinalMarks),
	}
}

// computePractical has no sessional component: the total is the final mark.
func computePractical(p *PracticalMarks) *PracticalView {
	if p == nil {
		return nil
	}
	return &PracticalView{
		FinalMarks: p.FinalMarks,
		Grade:      p.Grade,
		Total:      valueOf(p.FinalMarks),
	}
}

// parseTutorial reads the numeric part of a tutorial mark; non-numeric values count as 0.
func parseTutorial(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || !isFinite(v) {
		return 0
	}
	return v
}

func firstCredit(credits ...*float64) *float64 {
	for _, c := range credits {
		if c != nil {
			return c
		}
	}
	return nil
}

func valueOf(f *float64) float64 {
	if f == nil || !isFinite(*f) {
		return 0
	}
	return *f
}
