/*
status.go - Deadline status classification and lateness checks

PURPOSE:
  Turns a (deadline, completion status) pair into the state shown on the
  monitoring dashboard, and decides whether an individual obligation still
  counts as on time.

ON-TIME POLICY (optimistic credit):
  An obligation is only penalized once its deadline has actually passed
  without completion. Until then it counts as on time, even though nothing
  has been done yet. An excepted obligation always counts as on time.

SEE ALSO:
  - deadlines.go: Where the deadlines come from
  - kpi package: Aggregates per-obligation on-time results into rates
*/
package taxcal

import (
	"math"
	"time"
)

// =============================================================================
// OBLIGATION STATUS - Completion state recorded by staff
// =============================================================================

type ObligationStatus string

const (
	StatusPending   ObligationStatus = "pending"
	StatusCompleted ObligationStatus = "completed"
	StatusExcepted  ObligationStatus = "excepted" // not applicable this period, counts as satisfied
)

// Satisfied reports whether the status counts toward completion scores.
func (s ObligationStatus) Satisfied() bool {
	return s == StatusCompleted || s == StatusExcepted
}

// =============================================================================
// DEADLINE STATE - Display classification
// =============================================================================

type DeadlineState string

const (
	StateCompleted DeadlineState = "completed"
	StateOverdue   DeadlineState = "overdue"
	StateDueSoon   DeadlineState = "due_soon"
	StatePending   DeadlineState = "pending"
)

// dueSoonWindowDays is the inclusive lookahead for the due_soon state.
const dueSoonWindowDays = 3

// ClassifyDeadline determines the display state of one obligation.
// A completed status wins regardless of date. A missing deadline is
// pending. Past deadlines are overdue, deadlines within three calendar
// days (inclusive) are due_soon, everything else is pending.
func ClassifyDeadline(deadline Date, status ObligationStatus, today Date) DeadlineState {
	if status == StatusCompleted {
		return StateCompleted
	}
	if deadline.IsZero() {
		return StatePending
	}
	if deadline.Before(today) {
		return StateOverdue
	}
	if DaysBetween(today, deadline) <= dueSoonWindowDays {
		return StateDueSoon
	}
	return StatePending
}

// DeadlineStatus is ClassifyDeadline against the current day.
func DeadlineStatus(deadline Date, status ObligationStatus) DeadlineState {
	return ClassifyDeadline(deadline, status, Today())
}

// DaysUntil returns the calendar days remaining before a deadline,
// negative once it has passed.
func DaysUntil(deadline, today Date) int {
	return DaysBetween(today, deadline)
}

// =============================================================================
// ON-TIME CHECK
// =============================================================================

// OnTime reports whether one obligation still counts as on time under the
// optimistic-credit policy:
//   - excepted is always on time
//   - completed is on time when the completion day is on or before the deadline
//   - anything not yet due is on time so far
func OnTime(status ObligationStatus, deadline Date, completedAt *Date, today Date) bool {
	if status == StatusExcepted {
		return true
	}
	if status == StatusCompleted && completedAt != nil {
		return completedAt.BeforeOrEqual(deadline)
	}
	return deadline.After(today)
}

// =============================================================================
// SUBMISSION LATENESS - Jobdesk task submissions
// =============================================================================

// lateDeductionPoints is the score penalty per late task type.
const lateDeductionPoints = 5

// LatenessResult describes how late a submission was and the score
// deduction it incurs.
type LatenessResult struct {
	Late      bool `json:"is_late"`
	LateDays  int  `json:"late_days"`
	Deduction int  `json:"deduction"`
}

// Lateness compares a submission timestamp against a deadline day.
// The deadline extends to the end of its calendar day, so a submission at
// any time on the deadline date is on time. Late days round up.
func Lateness(submittedAt time.Time, deadline Date) LatenessResult {
	cutoff := deadline.EndOfDay()
	if !submittedAt.After(cutoff) {
		return LatenessResult{}
	}
	days := int(math.Ceil(submittedAt.Sub(cutoff).Hours() / 24))
	return LatenessResult{Late: true, LateDays: days, Deduction: lateDeductionPoints}
}
