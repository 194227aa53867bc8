/*
report.go - Overall KPI, grade mapping, and SP level resolution

PURPOSE:
  The tail of the scoring pipeline: averages the two composite scores,
  maps the result onto a display grade, and resolves the disciplinary
  warning (SP) level from the score plus the caller-maintained low-score
  streak.

SP ESCALATION LADDER:
  score >= 60            -> level 0, Normal (regardless of history)
  score < 60, years < 2  -> level 1, SP1
  score < 60, years == 2 -> level 2, SP2
  score < 60, years > 2  -> level 3, SP3 (termination warning)

  The ladder never steps down on its own. The caller tracks consecutive
  low-KPI years across reporting cycles and resets the count after a year
  at or above 60.
*/
package kpi

import (
	"github.com/shopspring/decimal"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// OVERALL KPI
// =============================================================================

// OverallKPI averages Hasil Kinerja and Efektivitas Waktu with equal
// weight, rounded to two decimal places. The 50/50 split is a fixed
// policy invariant.
func OverallKPI(hasilKinerja, efektivitasWaktu decimal.Decimal) decimal.Decimal {
	return hasilKinerja.Add(efektivitasWaktu).Div(decimal.NewFromInt(2)).Round(2)
}

// =============================================================================
// SP LEVEL - Disciplinary escalation
// =============================================================================

// spThreshold is the overall score below which warning letters escalate.
const spThreshold = 60

// SPLevel is a resolved disciplinary warning level.
type SPLevel struct {
	Level       int    `json:"level"`
	Description string `json:"description"`
}

// ResolveSPLevel maps an overall score and the count of prior consecutive
// low-KPI years onto a warning level.
func ResolveSPLevel(score float64, yearsLowKpi int) SPLevel {
	if score >= spThreshold {
		return SPLevel{Level: 0, Description: "Normal"}
	}

	switch {
	case yearsLowKpi < 2:
		return SPLevel{Level: 1, Description: "SP1 - Peringatan Pertama"}
	case yearsLowKpi == 2:
		return SPLevel{Level: 2, Description: "SP2 - Peringatan Kedua"}
	default:
		return SPLevel{Level: 3, Description: "SP3 - Peringatan Terakhir (PHK Warning)"}
	}
}

// =============================================================================
// GRADE MAPPER
// =============================================================================

// Grade is the display band for a numeric score. Band lower bounds are
// inclusive.
type Grade struct {
	Letter      string `json:"grade"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

// GradeFor maps a score onto its display grade.
func GradeFor(score float64) Grade {
	switch {
	case score >= 90:
		return Grade{Letter: "A", Color: "green", Description: "Sangat Baik"}
	case score >= 80:
		return Grade{Letter: "B", Color: "blue", Description: "Baik"}
	case score >= 70:
		return Grade{Letter: "C", Color: "yellow", Description: "Cukup"}
	case score >= 60:
		return Grade{Letter: "D", Color: "orange", Description: "Kurang"}
	default:
		return Grade{Letter: "E", Color: "red", Description: "Sangat Kurang"}
	}
}

// =============================================================================
// REPORT ASSEMBLY
// =============================================================================

// ReportInput is everything the engine needs to score one employee for a
// reporting period. All records are supplied by the caller; the engine
// fetches nothing.
type ReportInput struct {
	Periods  []TaxPeriod
	Filings  []AnnualFiling
	Jobdesks []Jobdesk

	WarningLetterCount int
	Sp2dkCount         int

	// Consecutive prior years below the SP threshold, maintained by the
	// caller across cycles.
	YearsLowKpi int

	// The day scores are computed as of. Zero means today.
	Today taxcal.Date
}

// Report is the full KPI result for one employee. Ephemeral: computed
// fresh per request, never persisted by the engine.
type Report struct {
	PajakBulananScore  int             `json:"pajak_bulanan_score"`
	PembukuanScore     int             `json:"pembukuan_score"`
	TahunanScore       int             `json:"tahunan_score"`
	DeadlineCompliance ComplianceStats `json:"deadline_compliance"`

	HasilKinerja     decimal.Decimal `json:"hasil_kinerja"`
	EfektivitasWaktu decimal.Decimal `json:"efektivitas_waktu"`
	Overall          decimal.Decimal `json:"overall"`

	Grade Grade   `json:"grade"`
	SP    SPLevel `json:"sp_level"`
}

// Evaluate runs the whole scoring pipeline over one input set. The
// current day is sampled once and shared by every date comparison.
func Evaluate(in ReportInput) Report {
	today := in.Today
	if today.IsZero() {
		today = taxcal.Today()
	}

	r := Report{
		PajakBulananScore:  PajakBulananScore(in.Periods),
		PembukuanScore:     PembukuanScore(in.Periods),
		TahunanScore:       TahunanScore(in.Filings),
		DeadlineCompliance: DeadlineCompliance(in.Periods, today),
	}

	r.HasilKinerja = HasilKinerja(HasilKinerjaInput{
		PajakBulananScore:  r.PajakBulananScore,
		PembukuanScore:     r.PembukuanScore,
		TahunanScore:       r.TahunanScore,
		WarningLetterCount: in.WarningLetterCount,
		Sp2dkCount:         in.Sp2dkCount,
	})
	r.EfektivitasWaktu = EfektivitasWaktu(JobdeskStats(in.Jobdesks, today))
	r.Overall = OverallKPI(r.HasilKinerja, r.EfektivitasWaktu)

	overall := r.Overall.InexactFloat64()
	r.Grade = GradeFor(overall)
	r.SP = ResolveSPLevel(overall, in.YearsLowKpi)
	return r
}
