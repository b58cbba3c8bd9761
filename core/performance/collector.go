package performance

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/Hexmon/e-dossier-sub006/core"
)

// Collector gathers the raw per-semester score of every performance source.
type Collector struct {
	academics AcademicRepository
	sources   SourceRepository
}

func NewCollector(academics AcademicRepository, sources SourceRepository) *Collector {
	return &Collector{academics: academics, sources: sources}
}

// SemesterSourceScores fetches the seven sources of one semester concurrently.
func (c *Collector) SemesterSourceScores(ctx context.Context, enr Enrollment, semester int) (PerformanceSourceScores, error) {
	var scores PerformanceSourceScores
	g, ctx := errgroup.WithContext(ctx)

	// each goroutine owns exactly one field of scores
	g.Go(func() (err error) {
		scores.Academics, err = c.academicsScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.OLQ, err = c.olqScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.PTSwimming, err = c.ptScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.Games, err = c.gamesScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.Drill, err = c.drillScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.CFE, err = c.cfeScore(ctx, enr, semester)
		return err
	})
	g.Go(func() (err error) {
		scores.Camp, err = c.campScore(ctx, enr, semester)
		return err
	})

	if err := g.Wait(); err != nil {
		return PerformanceSourceScores{}, err
	}
	return scores, nil
}

// AllSemesterSourceScores computes every semester independently and concurrently.
func (c *Collector) AllSemesterSourceScores(ctx context.Context, enr Enrollment) (map[int]PerformanceSourceScores, error) {
	results := make([]PerformanceSourceScores, MaxSemester)
	g, ctx := errgroup.WithContext(ctx)
	for _, sem := range Semesters() {
		sem := sem
		g.Go(func() error {
			scores, err := c.SemesterSourceScores(ctx, enr, sem)
			if err != nil {
				return err
			}
			results[sem-1] = scores
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	all := make(map[int]PerformanceSourceScores, MaxSemester)
	for i, scores := range results {
		all[i+1] = scores
	}
	return all, nil
}

// AcademicView reconciles the semester's offerings with the cadet's recorded subjects.
func (c *Collector) AcademicView(ctx context.Context, enr Enrollment, semester int) (AcademicSemesterView, error) {
	var (
		persisted *SemesterMarksRecord
		offerings []CourseOfferingRow
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rec, err := c.academics.GetSemesterMarks(ctx, semesterScope(enr.OCID, enr.ID, semester))
		if err != nil {
			if errors.Cause(err) == ErrNotFound {
				return nil
			}
			return errors.Wrap(err, "getting semester marks")
		}
		persisted = &rec
		return nil
	})
	g.Go(func() (err error) {
		filter := core.Where(core.Eq(FieldCourseID, enr.CourseID), core.Eq(FieldSemester, semester))
		offerings, err = c.academics.QueryCourseOfferings(ctx, filter)
		return errors.Wrap(err, "querying course offerings")
	})
	if err := g.Wait(); err != nil {
		return AcademicSemesterView{}, err
	}
	return BuildAcademicSemesterView(semester, enr.BranchTag, persisted, offerings), nil
}

func (c *Collector) academicsScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	view, err := c.AcademicView(ctx, enr, semester)
	if err != nil {
		return 0, err
	}
	return AcademicsScore(view), nil
}

// AcademicsScore projects the included theory/practical totals of view onto the 1350-mark academics range.
func AcademicsScore(view AcademicSemesterView) float64 {
	var scored, max float64
	for _, subj := range view.Subjects {
		if !subj.IncludeTheory && !subj.IncludePractical {
			continue
		}
		if subj.IncludeTheory {
			if subj.Theory != nil {
				scored += subj.Theory.Total
			}
			max += ComponentMaxMarks
		}
		if subj.IncludePractical {
			if subj.Practical != nil {
				scored += subj.Practical.Total
			}
			max += ComponentMaxMarks
		}
	}
	if max == 0 {
		return 0
	}
	return TruncateToOneDecimal(clamp(scored/max*AcademicsRawMax, 0, AcademicsRawMax))
}

func (c *Collector) olqScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	total, err := c.sources.GetOLQTotal(ctx, semesterScope(enr.OCID, enr.ID, semester))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return 0, nil
		}
		return 0, errors.Wrap(err, "getting olq total")
	}
	if !isFinite(total) {
		return 0, nil
	}
	return total, nil
}

func (c *Collector) ptScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	scores, err := c.sources.QueryPTScores(ctx, semesterScope(enr.OCID, enr.ID, semester))
	if err != nil {
		return 0, errors.Wrap(err, "querying pt scores")
	}
	return sumMarks(scores...), nil
}

func (c *Collector) gamesScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	marks, err := c.sources.QueryGamesMarks(ctx, live(semesterScope(enr.OCID, enr.ID, semester)))
	if err != nil {
		return 0, errors.Wrap(err, "querying games marks")
	}
	return sumMarks(marks...), nil
}

func (c *Collector) drillScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	rows, err := c.sources.QueryDrillMarks(ctx, live(semesterScope(enr.OCID, enr.ID, semester)))
	if err != nil {
		return 0, errors.Wrap(err, "querying drill marks")
	}
	totals := make([]float64, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, row.Total())
	}
	return sumMarks(totals...), nil
}

func (c *Collector) cfeScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	records, err := c.sources.QueryCfeRecords(ctx, live(semesterScope(enr.OCID, enr.ID, semester)))
	if err != nil {
		return 0, errors.Wrap(err, "querying cfe records")
	}
	var marks []float64
	for _, rec := range records {
		for _, item := range rec.Items {
			marks = append(marks, item.Marks)
		}
	}
	return sumMarks(marks...), nil
}

// campScore only counts camps tagged for semesters 5 and 6.
func (c *Collector) campScore(ctx context.Context, enr Enrollment, semester int) (float64, error) {
	tags, ok := campTagsBySemester[semester]
	if !ok {
		return 0, nil
	}
	tagValues := make([]interface{}, 0, len(tags))
	for _, tag := range tags {
		tagValues = append(tagValues, tag)
	}
	filter := live(scope(enr.OCID, enr.ID)).And(
		core.In(FieldCampSemesterTag, tagValues...),
		core.IsNull(FieldCampDeletedAt),
	)
	rows, err := c.sources.QueryCampParticipations(ctx, filter)
	if err != nil {
		return 0, errors.Wrap(err, "querying camp participations")
	}
	totals := make([]float64, 0, len(rows))
	for _, row := range rows {
		totals = append(totals, row.TotalMarksScored)
	}
	return sumMarks(totals...), nil
}
