/*
compliance.go - Deadline-compliance rate aggregation

PURPOSE:
  Walks every obligation field present on a set of tax periods and counts
  how many are on time, producing the compliance rate that feeds the
  time-efficiency side of the KPI.

PER-FIELD RULES (deliberately uneven, matching established policy):
  PPh payment / PPh filing:
    Credit requires the recorded completion day to be on or before the
    deadline. A completed obligation missing its timestamp gets no credit
    once the deadline has passed.
  PPN payment / filing (only when the period carries a PPN block):
    Completed or excepted credits outright, without a timestamp check.
  Bookkeeping:
    Completed or excepted credits outright; the employee-side deadline
    governs the optimistic not-yet-due credit.
  Every field:
    Excepted counts as on time. A field whose deadline is still in the
    future counts as on time so far.
*/
package kpi

import (
	"github.com/taxdesk/kpi-engine/taxcal"
)

// ComplianceStats is the result of a deadline-compliance walk.
type ComplianceStats struct {
	OnTime int `json:"on_time"`
	Total  int `json:"total"`
	Rate   int `json:"rate"`
}

// DeadlineCompliance accumulates on-time counts across every obligation
// field present on the given periods, as of the given day. With no
// periods the rate defaults to 100: no obligations means perfect
// compliance by convention, not failure.
func DeadlineCompliance(periods []TaxPeriod, today taxcal.Date) ComplianceStats {
	if len(periods) == 0 {
		return ComplianceStats{Rate: 100}
	}

	stats := ComplianceStats{}

	strict := func(o Obligation) {
		stats.Total++
		switch {
		case o.Status == taxcal.StatusCompleted && o.CompletedAt != nil:
			if o.CompletedAt.BeforeOrEqual(o.Deadline) {
				stats.OnTime++
			}
		case o.Status == taxcal.StatusExcepted:
			stats.OnTime++
		case o.Deadline.After(today):
			stats.OnTime++
		}
	}

	lenient := func(o Obligation) {
		stats.Total++
		if o.Status.Satisfied() || o.Deadline.After(today) {
			stats.OnTime++
		}
	}

	for _, p := range periods {
		strict(p.PphPayment)
		strict(p.PphFiling)

		if p.Ppn != nil {
			lenient(p.Ppn.Payment)
			lenient(p.Ppn.Filing)
		}

		lenient(p.Bookkeeping)
	}

	stats.Rate = percent(stats.OnTime, stats.Total)
	return stats
}
