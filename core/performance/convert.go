package performance

import (
	"math"

	"github.com/shopspring/decimal"
)

// truncEpsilon absorbs binary representation error (e.g. 944.9999999999999 for 945) before truncating.
var truncEpsilon = decimal.New(1, -9)

// ConvertInput describes a raw score to project onto a target budget.
type ConvertInput struct {
	Semester   int
	SubjectKey SubjectKey
	RawScored  float64
	RawMax     float64
	TargetMax  float64
}

// ConvertSubjectMarks scales in.RawScored from in.RawMax onto in.TargetMax.
// CFE always scales from its fixed 50-mark ceiling. Results are truncated to one decimal.
func ConvertSubjectMarks(in ConvertInput) float64 {
	if in.TargetMax <= 0 || !isFinite(in.RawScored) {
		return 0
	}
	if in.SubjectKey == KeyCFE {
		capped := clamp(in.RawScored, 0, CfeRawMax)
		return TruncateToOneDecimal(capped / CfeRawMax * in.TargetMax)
	}
	if in.RawMax <= 0 {
		return 0
	}
	scaled := in.RawScored / in.RawMax * in.TargetMax
	return TruncateToOneDecimal(clamp(scaled, 0, in.TargetMax))
}

// TruncateToOneDecimal drops everything past the first decimal digit, toward zero.
// It never rounds up: 12.449999999 becomes 12.4, not 12.5. NaN and ±Inf become 0.
func TruncateToOneDecimal(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	d := decimal.NewFromFloat(v)
	if d.Sign() >= 0 {
		d = d.Add(truncEpsilon)
	} else {
		d = d.Sub(truncEpsilon)
	}
	return d.Truncate(1).InexactFloat64()
}

// sumMarks adds one-decimal marks without accumulating float noise.
// Non-finite marks count as 0.
func sumMarks(vals ...float64) float64 {
	total := decimal.Zero
	for _, v := range vals {
		if !isFinite(v) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
