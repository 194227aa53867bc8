/*
scores.go - Work-quality score calculators

PURPOSE:
  The three independent completion scores (monthly tax, bookkeeping,
  annual filing) and the weighted Hasil Kinerja composite that combines
  them with penalty deductions.

FORMULAS:
  Pajak bulanan:  completed units / applicable units, as a rounded percent
  Pembukuan:      periods with bookkeeping done / periods
  Tahunan:        filings filed / filings
  Hasil Kinerja:  base  = pajak*0.40 + pembukuan*0.40 + tahunan*0.20
                  minus = 5 points per warning letter and per SP2DK letter
                  final = max(0, base - minus), 2 decimal places

CONVENTIONS:
  Every calculator returns exactly 100 for an empty input collection:
  a client with no obligations has nothing to fail at. An excepted
  obligation counts as satisfied everywhere.
*/
package kpi

import (
	"math"

	"github.com/shopspring/decimal"
)

// percent rounds numerator/denominator to an integer percentage,
// defaulting to 100 when the denominator is zero.
func percent(numerator, denominator int) int {
	if denominator == 0 {
		return 100
	}
	return int(math.Round(float64(numerator) / float64(denominator) * 100))
}

// =============================================================================
// COMPLETION SCORES - Integer percentages
// =============================================================================

// PajakBulananScore scores monthly tax compliance across periods. Each
// period contributes its PPh payment and PPh filing, plus the PPN pair
// when the period carries one; a unit counts when its status is completed
// or excepted.
func PajakBulananScore(periods []TaxPeriod) int {
	if len(periods) == 0 {
		return 100
	}

	total := 0
	completed := 0
	count := func(o Obligation) {
		total++
		if o.Status.Satisfied() {
			completed++
		}
	}

	for _, p := range periods {
		count(p.PphPayment)
		count(p.PphFiling)
		if p.Ppn != nil {
			count(p.Ppn.Payment)
			count(p.Ppn.Filing)
		}
	}

	return percent(completed, total)
}

// PembukuanScore scores bookkeeping: the fraction of periods whose
// bookkeeping obligation is completed or excepted.
func PembukuanScore(periods []TaxPeriod) int {
	if len(periods) == 0 {
		return 100
	}

	completed := 0
	for _, p := range periods {
		if p.Bookkeeping.Status.Satisfied() {
			completed++
		}
	}
	return percent(completed, len(periods))
}

// TahunanScore scores annual filings: the fraction with status filed.
func TahunanScore(filings []AnnualFiling) int {
	if len(filings) == 0 {
		return 100
	}

	filed := 0
	for _, f := range filings {
		if f.Status == FilingFiled {
			filed++
		}
	}
	return percent(filed, len(filings))
}

// =============================================================================
// HASIL KINERJA - Weighted composite with deductions
// =============================================================================

// Score weights. Fixed policy, not configurable.
var (
	weightPajakBulanan = decimal.NewFromFloat(0.40)
	weightPembukuan    = decimal.NewFromFloat(0.40)
	weightTahunan      = decimal.NewFromFloat(0.20)
)

// pointsPerPenalty is the deduction for each warning letter or SP2DK
// letter attributed to the employee in the scoring period. The count is
// uncapped; only the final score is floored at zero.
const pointsPerPenalty = 5

// HasilKinerjaInput collects the component scores and penalty counts for
// the work-results composite.
type HasilKinerjaInput struct {
	PajakBulananScore  int
	PembukuanScore     int
	TahunanScore       int
	WarningLetterCount int
	Sp2dkCount         int
}

// HasilKinerja computes the Work Results score: the weighted base minus
// five points per penalty event, floored at zero and rounded to two
// decimal places.
func HasilKinerja(in HasilKinerjaInput) decimal.Decimal {
	base := decimal.NewFromInt(int64(in.PajakBulananScore)).Mul(weightPajakBulanan).
		Add(decimal.NewFromInt(int64(in.PembukuanScore)).Mul(weightPembukuan)).
		Add(decimal.NewFromInt(int64(in.TahunanScore)).Mul(weightTahunan))

	deduction := decimal.NewFromInt(int64((in.WarningLetterCount + in.Sp2dkCount) * pointsPerPenalty))

	final := base.Sub(deduction)
	if final.IsNegative() {
		return decimal.Zero
	}
	return final.Round(2)
}
