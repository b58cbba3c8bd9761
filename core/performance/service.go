package performance

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Hexmon/e-dossier-sub006/core"
)

var NowFunc = time.Now // mockable

// Service assembles the semester (SPR) and final (FPR) performance reports.
type Service struct {
	repo      Repository
	collector *Collector
	audit     AuditLogger
	logger    core.Logger
}

func NewService(repo Repository, audit AuditLogger, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		collector: NewCollector(repo, repo),
		audit:     audit,
		logger:    logger,
	}
}

func validateSemester(semester int) error {
	if IsValidSemester(semester) {
		return nil
	}
	err := errors.Errorf("semester must be between %d and %d (got %d)", MinSemester, MaxSemester, semester)
	return core.NewValidationError(err, core.FieldError{Field: "semester", Error: err.Error()})
}

func (svc *Service) enrollment(ctx context.Context, ocID string) (Enrollment, error) {
	enr, err := svc.repo.GetOrCreateActiveEnrollment(ctx, ocID)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "resolving active enrollment")
	}
	return enr, nil
}

// getSprRecord returns found == false when the record does not exist yet.
func (svc *Service) getSprRecord(ctx context.Context, enr Enrollment, semester int) (rec SprRecord, found bool, err error) {
	rec, err = svc.repo.GetSprRecord(ctx, semesterScope(enr.OCID, enr.ID, semester))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return SprRecord{}, false, nil
		}
		return SprRecord{}, false, errors.Wrap(err, "getting spr record")
	}
	return rec, true, nil
}

// GetSemesterSourceScores returns the raw source scores of one semester.
func (svc *Service) GetSemesterSourceScores(ctx context.Context, ocID string, semester int) (PerformanceSourceScores, error) {
	if err := validateSemester(semester); err != nil {
		return PerformanceSourceScores{}, err
	}
	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return PerformanceSourceScores{}, err
	}
	return svc.collector.SemesterSourceScores(ctx, enr, semester)
}

// GetAllSemesterSourceMarks returns the raw source scores keyed by semester 1..6.
func (svc *Service) GetAllSemesterSourceMarks(ctx context.Context, ocID string) (map[int]PerformanceSourceScores, error) {
	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return nil, err
	}
	return svc.collector.AllSemesterSourceScores(ctx, enr)
}

// GetAcademicSemesterView returns the reconciled academic subjects of one semester.
func (svc *Service) GetAcademicSemesterView(ctx context.Context, ocID string, semester int) (AcademicSemesterView, error) {
	if err := validateSemester(semester); err != nil {
		return AcademicSemesterView{}, err
	}
	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return AcademicSemesterView{}, err
	}
	return svc.collector.AcademicView(ctx, enr, semester)
}

// GetSprView builds the semester performance report.
func (svc *Service) GetSprView(ctx context.Context, ocID string, semester int) (SprView, error) {
	if err := validateSemester(semester); err != nil {
		return SprView{}, err
	}
	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return SprView{}, err
	}
	return svc.sprView(ctx, enr, semester)
}

func (svc *Service) sprView(ctx context.Context, enr Enrollment, semester int) (SprView, error) {
	var (
		scores PerformanceSourceScores
		rec    SprRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		scores, err = svc.collector.SemesterSourceScores(gctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		rec, _, err = svc.getSprRecord(gctx, enr, semester)
		return err
	})
	if err := g.Wait(); err != nil {
		return SprView{}, err
	}
	return BuildSprView(semester, scores, rec), nil
}

// BuildSprView lays out the SPR rows of a semester. A zero rec stands for "no record yet".
func BuildSprView(semester int, scores PerformanceSourceScores, rec SprRecord) SprView {
	budgets := SprMaxMarks[semester]
	rows := make([]PerformanceRow, 0, len(SubjectKeys))
	scored := make([]float64, 0, len(SubjectKeys)-1)

	addRow := func(key SubjectKey, marks float64) {
		rows = append(rows, PerformanceRow{
			SubjectKey:   key,
			SubjectLabel: SubjectLabels[key],
			MaxMarks:     budgets[key],
			MarksScored:  marks,
			Remarks:      rec.SubjectRemarks[key],
		})
		scored = append(scored, marks)
	}

	for _, key := range SourceKeys {
		budget := float64(budgets[key])
		addRow(key, ConvertSubjectMarks(ConvertInput{
			Semester:   semester,
			SubjectKey: key,
			RawScored:  scores.Get(key),
			RawMax:     budget,
			TargetMax:  budget,
		}))
	}

	cdrCap := budgets[KeyCdrMarks]
	if cdrCap > CdrMaxMarksPerSemester {
		cdrCap = CdrMaxMarksPerSemester
	}
	addRow(KeyCdrMarks, TruncateToOneDecimal(clamp(rec.CdrMarks, 0, float64(cdrCap))))

	rows = append(rows, PerformanceRow{
		SubjectKey:   KeyTotal,
		SubjectLabel: SubjectLabels[KeyTotal],
		MaxMarks:     budgets[KeyTotal],
		MarksScored:  sumMarks(scored...),
		Remarks:      rec.SubjectRemarks[KeyTotal],
	})

	return SprView{
		Semester: semester,
		Rows:     rows,
		PerformanceReportRemarks: PerformanceReportRemarks{
			PlatoonCommanderRemarks: rec.PlatoonCommanderRemarks,
			DeputyCommanderRemarks:  rec.DeputyCommanderRemarks,
			CommanderRemarks:        rec.CommanderRemarks,
		},
	}
}

// UpsertSprView merges us into the stored SprRecord and returns the refreshed report.
// Fields left nil in us keep their stored value. Concurrent upserts of the same semester are
// last-writer-wins: the record is neither versioned nor locked.
func (svc *Service) UpsertSprView(ctx context.Context, actorID, ocID string, semester int, us UpdateSpr) (SprView, error) {
	if err := validateSemester(semester); err != nil {
		return SprView{}, err
	}
	if err := us.Validate(); err != nil {
		return SprView{}, err
	}

	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return SprView{}, err
	}
	existing, found, err := svc.getSprRecord(ctx, enr, semester)
	if err != nil {
		return SprView{}, err
	}

	now := NowFunc().UTC()
	rec, changed := mergeSpr(existing, us)
	if !found {
		rec.ID = uuid.New().String()
		rec.OCID = enr.OCID
		rec.EnrollmentID = enr.ID
		rec.Semester = semester
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	if _, err := svc.repo.UpsertSprRecord(ctx, rec); err != nil {
		return SprView{}, errors.Wrap(err, "upserting spr record")
	}

	if svc.audit != nil {
		svc.audit.LogSprUpsert(ctx, AuditEvent{
			ActorID:       actorID,
			OCID:          enr.OCID,
			EnrollmentID:  enr.ID,
			Semester:      semester,
			ChangedFields: changed,
			Created:       !found,
		})
	}
	if svc.logger != nil {
		svc.logger.Debug(fmt.Sprintf("spr upserted: oc %s, semester %d", enr.OCID, semester), core.Actor{ID: actorID})
	}

	return svc.sprView(ctx, enr, semester)
}

// mergeSpr applies the supplied fields of us onto a copy of rec and lists what changed.
// Supplied subject remarks are merged key by key. Commander marks are stored truncated to one decimal.
func mergeSpr(rec SprRecord, us UpdateSpr) (SprRecord, []string) {
	var changed []string

	remarks := make(map[SubjectKey]string, len(rec.SubjectRemarks)+len(us.SubjectRemarks))
	for k, v := range rec.SubjectRemarks {
		remarks[k] = v
	}
	rec.SubjectRemarks = remarks

	if us.CdrMarks != nil {
		if cdr := TruncateToOneDecimal(*us.CdrMarks); cdr != rec.CdrMarks {
			rec.CdrMarks = cdr
			changed = append(changed, "cdr_marks")
		}
	}
	if len(us.SubjectRemarks) > 0 {
		keys := make([]string, 0, len(us.SubjectRemarks))
		for k, v := range us.SubjectRemarks {
			if old, ok := remarks[k]; ok && old == v {
				continue
			}
			remarks[k] = v
			keys = append(keys, string(k))
		}
		sort.Strings(keys)
		for _, k := range keys {
			changed = append(changed, "subject_remarks."+k)
		}
	}
	if us.PlatoonCommanderRemarks != nil && *us.PlatoonCommanderRemarks != rec.PlatoonCommanderRemarks {
		rec.PlatoonCommanderRemarks = *us.PlatoonCommanderRemarks
		changed = append(changed, "platoon_commander_remarks")
	}
	if us.DeputyCommanderRemarks != nil && *us.DeputyCommanderRemarks != rec.DeputyCommanderRemarks {
		rec.DeputyCommanderRemarks = *us.DeputyCommanderRemarks
		changed = append(changed, "deputy_commander_remarks")
	}
	if us.CommanderRemarks != nil && *us.CommanderRemarks != rec.CommanderRemarks {
		rec.CommanderRemarks = *us.CommanderRemarks
		changed = append(changed, "commander_remarks")
	}
	return rec, changed
}

// GetFprView builds the lifetime performance report.
func (svc *Service) GetFprView(ctx context.Context, ocID string) (FprView, error) {
	enr, err := svc.enrollment(ctx, ocID)
	if err != nil {
		return FprView{}, err
	}

	var all map[int]PerformanceSourceScores
	records := make([]SprRecord, MaxSemester)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		all, err = svc.collector.AllSemesterSourceScores(gctx, enr)
		return err
	})
	for _, sem := range Semesters() {
		sem := sem
		g.Go(func() (err error) {
			records[sem-1], _, err = svc.getSprRecord(gctx, enr, sem)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return FprView{}, err
	}
	return BuildFprView(all, records), nil
}

// BuildFprView sums raw per-semester marks over the course lifetime.
// records is indexed by semester-1; zero records count as no commander marks.
func BuildFprView(all map[int]PerformanceSourceScores, records []SprRecord) FprView {
	rows := make([]FprRow, 0, len(SubjectKeys))
	totals := make([]float64, 0, len(SubjectKeys)-1)
	var semTotals [MaxSemester][]float64

	for _, key := range SubjectKeys {
		if key == KeyTotal {
			continue
		}
		row := FprRow{
			SubjectKey:   key,
			SubjectLabel: SubjectLabels[key],
			MaxMarks:     FprMaxMarks[key],
		}
		for i, sem := range Semesters() {
			if key == KeyCdrMarks {
				if i < len(records) {
					row.MarksBySemester[i] = records[i].CdrMarks
				}
				continue
			}
			row.MarksBySemester[i] = all[sem].Get(key)
		}
		row.MarksScored = sumMarks(row.MarksBySemester[:]...)
		rows = append(rows, row)
		totals = append(totals, row.MarksScored)
		for i, marks := range row.MarksBySemester {
			semTotals[i] = append(semTotals[i], marks)
		}
	}

	grand := FprRow{
		SubjectKey:   KeyTotal,
		SubjectLabel: FprTotalLabel,
		MaxMarks:     FprMaxMarks[KeyTotal],
		MarksScored:  sumMarks(totals...),
	}
	for i, marks := range semTotals {
		grand.MarksBySemester[i] = sumMarks(marks...)
	}
	return FprView{Rows: append(rows, grand)}
}
