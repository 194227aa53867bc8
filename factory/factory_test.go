package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/taxcal"
)

func TestParsePeriod_PkpDerivesDeadlines(t *testing.T) {
	f := New()

	jsonStr := `{
		"month": 5, "year": 2025, "is_pkp": true,
		"pph_payment": {"status": "completed", "completed_at": "2025-06-10"},
		"ppn_filing":  {"status": "excepted"}
	}`

	period, err := f.ParsePeriod(jsonStr)
	require.NoError(t, err)

	// Deadlines derive from the calendar, never from the JSON.
	assert.Equal(t, "2025-06-15", period.PphPayment.Deadline.String())
	assert.Equal(t, "2025-06-20", period.PphFiling.Deadline.String())
	require.True(t, period.HasPpn())
	assert.Equal(t, "2025-06-30", period.Ppn.Payment.Deadline.String())

	assert.Equal(t, taxcal.StatusCompleted, period.PphPayment.Status)
	require.NotNil(t, period.PphPayment.CompletedAt)
	assert.Equal(t, "2025-06-10", period.PphPayment.CompletedAt.String())
	assert.Equal(t, taxcal.StatusExcepted, period.Ppn.Filing.Status)
	assert.Equal(t, taxcal.StatusPending, period.Bookkeeping.Status)
}

func TestParsePeriod_Rejections(t *testing.T) {
	f := New()

	cases := []struct {
		name    string
		jsonStr string
	}{
		{"bad month", `{"month": 13, "year": 2025}`},
		{"ppn on non-pkp", `{"month": 3, "year": 2025, "is_pkp": false, "ppn_payment": {"status": "pending"}}`},
		{"bad status", `{"month": 3, "year": 2025, "pph_payment": {"status": "done"}}`},
		{"bad date", `{"month": 3, "year": 2025, "pph_payment": {"status": "completed", "completed_at": "10/06/2025"}}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.ParsePeriod(tc.jsonStr)
			assert.Error(t, err)
		})
	}
}

func TestPeriodRoundTrip(t *testing.T) {
	f := New()

	original := `{
		"month": 12, "year": 2024, "is_pkp": true,
		"pph_filing": {"status": "completed", "completed_at": "2025-01-18"}
	}`
	period, err := f.ParsePeriod(original)
	require.NoError(t, err)

	pj := f.PeriodToJSON(*period)
	assert.Equal(t, 12, pj.Month)
	assert.True(t, pj.IsPkp)
	assert.Equal(t, "completed", pj.PphFiling.Status)
	assert.Equal(t, "2025-01-18", pj.PphFiling.CompletedAt)

	back, err := f.PeriodFromJSON(pj)
	require.NoError(t, err)
	assert.Equal(t, *period, *back)
}

func TestParseJobdesk_DueDateFromTaskType(t *testing.T) {
	f := New()

	jd, taskType, err := f.ParseJobdesk(`{
		"title": "SPT Masa PPN Mei", "task_type": "ppn",
		"month": 5, "year": 2025, "target_hours": 8
	}`)
	require.NoError(t, err)
	assert.Equal(t, taxcal.TaskPpn, taskType)
	// PPN tasks: day 28 of the next month plus a 7-day buffer.
	assert.Equal(t, "2025-07-05", jd.DueDate.String())
	assert.Equal(t, kpi.JobdeskOpen, jd.Status)
}

func TestParseJobdesk_ExplicitDueDateWins(t *testing.T) {
	f := New()

	jd, _, err := f.ParseJobdesk(`{
		"title": "Rekonsiliasi", "task_type": "pph_21",
		"month": 2, "year": 2025, "target_hours": 4,
		"due_date": "2025-03-10", "status": "completed", "completed_at": "2025-03-08"
	}`)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", jd.DueDate.String())
	assert.Equal(t, kpi.JobdeskCompleted, jd.Status)
	assert.True(t, jd.OnTime(taxcal.NewDate(2025, 3, 20)))
}

func TestParseJobdesk_NeedsDueDateSource(t *testing.T) {
	f := New()

	_, _, err := f.ParseJobdesk(`{"title": "Lain-lain", "month": 4, "year": 2025, "target_hours": 2}`)
	assert.Error(t, err)
}
