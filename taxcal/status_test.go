package taxcal_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// DEADLINE CLASSIFICATION TESTS
// =============================================================================

func TestClassifyDeadline(t *testing.T) {
	today := date(2025, time.June, 10)

	tests := []struct {
		name     string
		deadline taxcal.Date
		status   taxcal.ObligationStatus
		want     taxcal.DeadlineState
	}{
		{"completed wins regardless of date", date(2025, time.January, 1), taxcal.StatusCompleted, taxcal.StateCompleted},
		{"no deadline set", taxcal.Date{}, taxcal.StatusPending, taxcal.StatePending},
		{"past deadline", today.AddDays(-1), taxcal.StatusPending, taxcal.StateOverdue},
		{"due today", today, taxcal.StatusPending, taxcal.StateDueSoon},
		{"due in 2 days", today.AddDays(2), taxcal.StatusPending, taxcal.StateDueSoon},
		{"due in exactly 3 days", today.AddDays(3), taxcal.StatusPending, taxcal.StateDueSoon},
		{"due in 4 days", today.AddDays(4), taxcal.StatusPending, taxcal.StatePending},
		{"excepted but overdue date", today.AddDays(-5), taxcal.StatusExcepted, taxcal.StateOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, taxcal.ClassifyDeadline(tt.deadline, tt.status, today))
		})
	}
}

// =============================================================================
// ON-TIME POLICY TESTS
// =============================================================================

func TestOnTime_OptimisticCredit(t *testing.T) {
	today := date(2025, time.June, 10)
	deadline := date(2025, time.June, 15)

	// GIVEN: An incomplete obligation whose deadline has not passed
	// THEN: It counts as on time so far
	assert.True(t, taxcal.OnTime(taxcal.StatusPending, deadline, nil, today))

	// GIVEN: The deadline has passed without completion
	// THEN: No more credit
	assert.False(t, taxcal.OnTime(taxcal.StatusPending, deadline, nil, date(2025, time.June, 16)))

	// Deadline day itself is no longer "in the future"
	assert.False(t, taxcal.OnTime(taxcal.StatusPending, deadline, nil, deadline))
}

func TestOnTime_CompletedComparesCompletionDay(t *testing.T) {
	today := date(2025, time.July, 1)
	deadline := date(2025, time.June, 15)

	onDeadline := deadline
	lateDay := deadline.AddDays(1)

	assert.True(t, taxcal.OnTime(taxcal.StatusCompleted, deadline, &onDeadline, today))
	assert.False(t, taxcal.OnTime(taxcal.StatusCompleted, deadline, &lateDay, today))
}

func TestOnTime_ExceptedAlwaysOnTime(t *testing.T) {
	today := date(2025, time.July, 1)
	assert.True(t, taxcal.OnTime(taxcal.StatusExcepted, date(2025, time.January, 1), nil, today))
}

// =============================================================================
// LATENESS TESTS
// =============================================================================

func TestLateness(t *testing.T) {
	deadline := date(2025, time.June, 20)

	// Submitted on the deadline day, late in the evening: still on time
	sameDay := time.Date(2025, time.June, 20, 22, 30, 0, 0, time.UTC)
	res := taxcal.Lateness(sameDay, deadline)
	assert.False(t, res.Late)
	assert.Equal(t, 0, res.Deduction)

	// Submitted the next morning: one day late, 5-point deduction
	nextDay := time.Date(2025, time.June, 21, 9, 0, 0, 0, time.UTC)
	res = taxcal.Lateness(nextDay, deadline)
	assert.True(t, res.Late)
	assert.Equal(t, 1, res.LateDays)
	assert.Equal(t, 5, res.Deduction)

	// Three days later
	later := time.Date(2025, time.June, 23, 12, 0, 0, 0, time.UTC)
	res = taxcal.Lateness(later, deadline)
	assert.True(t, res.Late)
	assert.Equal(t, 3, res.LateDays)
}

// =============================================================================
// LABEL TESTS
// =============================================================================

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "Januari 2024", taxcal.PeriodLabel(1, 2024))
	assert.Equal(t, "Desember 2025", taxcal.PeriodLabel(12, 2025))
	assert.Equal(t, "", taxcal.MonthName(13))
}

func TestDaysUntil(t *testing.T) {
	today := date(2025, time.June, 10)
	assert.Equal(t, 5, taxcal.DaysUntil(date(2025, time.June, 15), today))
	assert.Equal(t, -2, taxcal.DaysUntil(date(2025, time.June, 8), today))
}
