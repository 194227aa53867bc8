package kpi_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/taxdesk/kpi-engine/kpi"
)

// =============================================================================
// OVERALL COMBINER
// =============================================================================

func TestOverallKPI_EqualWeight(t *testing.T) {
	got := kpi.OverallKPI(decimal.NewFromInt(80), decimal.NewFromInt(90))
	requireScore(t, "85", got)

	// Rounded to 2 decimals
	got = kpi.OverallKPI(decimal.RequireFromString("85.55"), decimal.RequireFromString("90.10"))
	requireScore(t, "87.83", got)
}

// =============================================================================
// SP LEVEL RESOLVER
// =============================================================================

func TestResolveSPLevel_EscalationLadder(t *testing.T) {
	tests := []struct {
		name        string
		score       float64
		yearsLowKpi int
		wantLevel   int
	}{
		{"healthy score resets nothing but reports normal", 61, 5, 0},
		{"threshold is inclusive", 60, 3, 0},
		{"first low year", 55, 0, 1},
		{"second low year", 55, 1, 1},
		{"third low year", 55, 2, 2},
		{"beyond third year", 55, 3, 3},
		{"deep streak stays at SP3", 10, 10, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := kpi.ResolveSPLevel(tt.score, tt.yearsLowKpi)
			assert.Equal(t, tt.wantLevel, got.Level)
		})
	}
}

func TestResolveSPLevel_Descriptions(t *testing.T) {
	assert.Equal(t, "Normal", kpi.ResolveSPLevel(75, 0).Description)
	assert.Contains(t, kpi.ResolveSPLevel(40, 0).Description, "SP1")
	assert.Contains(t, kpi.ResolveSPLevel(40, 2).Description, "SP2")
	assert.Contains(t, kpi.ResolveSPLevel(40, 4).Description, "SP3")
}

// =============================================================================
// GRADE MAPPER
// =============================================================================

func TestGradeFor_BoundaryInclusivity(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{95, "A"}, {90, "A"},
		{89.999, "B"}, {80, "B"},
		{79.999, "C"}, {70, "C"},
		{69.999, "D"}, {60, "D"},
		{59.999, "E"}, {0, "E"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, kpi.GradeFor(tt.score).Letter, "score %v", tt.score)
	}
}

func TestGradeFor_Descriptions(t *testing.T) {
	assert.Equal(t, "Sangat Baik", kpi.GradeFor(92).Description)
	assert.Equal(t, "Sangat Kurang", kpi.GradeFor(12).Description)
}

// =============================================================================
// FULL PIPELINE
// =============================================================================

func TestEvaluate_PerfectEmployee(t *testing.T) {
	// GIVEN: A year of perfect periods, filed returns, on-time jobdesks,
	// and no penalty letters
	var periods []kpi.TaxPeriod
	for m := 1; m <= 12; m++ {
		periods = append(periods, completedPeriod(m, 2024, true))
	}
	filings := []kpi.AnnualFiling{{Year: 2024, Status: kpi.FilingFiled}}
	jobdesks := []kpi.Jobdesk{{
		TargetHours: 160, ActualHours: 158,
		DueDate:     date(2025, time.January, 20),
		CompletedAt: datePtr(date(2025, time.January, 18)),
		Status:      kpi.JobdeskCompleted,
	}}

	report := kpi.Evaluate(kpi.ReportInput{
		Periods:  periods,
		Filings:  filings,
		Jobdesks: jobdesks,
		Today:    date(2025, time.June, 1),
	})

	assert.Equal(t, 100, report.PajakBulananScore)
	assert.Equal(t, 100, report.PembukuanScore)
	assert.Equal(t, 100, report.TahunanScore)
	assert.Equal(t, 100, report.DeadlineCompliance.Rate)
	requireScore(t, "100", report.HasilKinerja)
	// hours 158/160 -> 98.75, compliance 100 -> (98.75 + 100) / 2 = 99.38
	requireScore(t, "99.38", report.EfektivitasWaktu)
	requireScore(t, "99.69", report.Overall)
	assert.Equal(t, "A", report.Grade.Letter)
	assert.Equal(t, 0, report.SP.Level)
}

func TestEvaluate_LowScoreEscalates(t *testing.T) {
	// GIVEN: A year of untouched periods long past their deadlines plus
	// penalty letters, and two prior low-KPI years
	var periods []kpi.TaxPeriod
	for m := 1; m <= 12; m++ {
		periods = append(periods, kpi.NewPeriod(m, 2023, false))
	}

	report := kpi.Evaluate(kpi.ReportInput{
		Periods:            periods,
		Filings:            []kpi.AnnualFiling{{Year: 2023, Status: kpi.FilingPending}},
		WarningLetterCount: 2,
		Sp2dkCount:         1,
		YearsLowKpi:        2,
		Today:              date(2025, time.June, 1),
	})

	// Base: 0*0.4 + 0*0.4 + 0*0.2 = 0, floored after 15 points of deductions
	assert.True(t, report.HasilKinerja.IsZero())
	// No jobdesks: efektivitas defaults to 100, overall = 50
	requireScore(t, "100", report.EfektivitasWaktu)
	requireScore(t, "50", report.Overall)
	assert.Equal(t, "E", report.Grade.Letter)
	assert.Equal(t, 2, report.SP.Level)
}

func TestEvaluate_EmptyInputScoresPerfect(t *testing.T) {
	// GIVEN: A brand-new employee with nothing assigned
	report := kpi.Evaluate(kpi.ReportInput{Today: date(2025, time.June, 1)})

	assert.Equal(t, 100, report.PajakBulananScore)
	assert.Equal(t, 100, report.PembukuanScore)
	assert.Equal(t, 100, report.TahunanScore)
	requireScore(t, "100", report.HasilKinerja)
	requireScore(t, "100", report.EfektivitasWaktu)
	requireScore(t, "100", report.Overall)
	assert.Equal(t, "A", report.Grade.Letter)
	assert.Equal(t, 0, report.SP.Level)
}
