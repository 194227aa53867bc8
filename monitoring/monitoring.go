/*
Package monitoring builds the compliance-dashboard views over tax periods.

PURPOSE:
  Where the kpi package scores an employee after the fact, this package
  answers the operational questions staff ask mid-period: which
  obligations are overdue, which are about to be, and how a period looks
  at a glance. It is the read-model behind the tax monitoring screen and
  the reminder scheduler.

Everything here is a pure function over supplied records, like the rest
of the engine.
*/
package monitoring

import (
	"sort"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// PER-PERIOD STATUS
// =============================================================================

// ObligationKind names one obligation slot on a period.
type ObligationKind string

const (
	KindPphPayment  ObligationKind = "pph_payment"
	KindPphFiling   ObligationKind = "pph_filing"
	KindPpnPayment  ObligationKind = "ppn_payment"
	KindPpnFiling   ObligationKind = "ppn_filing"
	KindBookkeeping ObligationKind = "bookkeeping"
)

// Label returns the display name for an obligation kind.
func (k ObligationKind) Label() string {
	switch k {
	case KindPphPayment:
		return "Setor PPh"
	case KindPphFiling:
		return "Lapor PPh"
	case KindPpnPayment:
		return "Setor PPN"
	case KindPpnFiling:
		return "Lapor PPN"
	case KindBookkeeping:
		return "Pembukuan"
	default:
		return string(k)
	}
}

// ObligationState is one classified obligation on the dashboard.
type ObligationState struct {
	Kind     ObligationKind          `json:"kind"`
	Status   taxcal.ObligationStatus `json:"status"`
	State    taxcal.DeadlineState    `json:"state"`
	Deadline taxcal.Date             `json:"deadline"`
	DaysLeft int                     `json:"days_left"`
}

// StatusCounts tallies obligation states for a summary badge.
type StatusCounts struct {
	Completed int `json:"completed"`
	Overdue   int `json:"overdue"`
	DueSoon   int `json:"due_soon"`
	Pending   int `json:"pending"`
}

// PeriodStatus is the dashboard view of one period.
type PeriodStatus struct {
	Month       int               `json:"month"`
	Year        int               `json:"year"`
	Label       string            `json:"label"`
	Obligations []ObligationState `json:"obligations"`
	Counts      StatusCounts      `json:"counts"`
}

// StatusOf classifies every obligation on a period as of the given day.
func StatusOf(p kpi.TaxPeriod, today taxcal.Date) PeriodStatus {
	st := PeriodStatus{Month: p.Month, Year: p.Year, Label: p.Label()}

	add := func(kind ObligationKind, o kpi.Obligation) {
		state := o.State(today)
		st.Obligations = append(st.Obligations, ObligationState{
			Kind:     kind,
			Status:   o.Status,
			State:    state,
			Deadline: o.Deadline,
			DaysLeft: taxcal.DaysUntil(o.Deadline, today),
		})
		switch state {
		case taxcal.StateCompleted:
			st.Counts.Completed++
		case taxcal.StateOverdue:
			st.Counts.Overdue++
		case taxcal.StateDueSoon:
			st.Counts.DueSoon++
		default:
			st.Counts.Pending++
		}
	}

	add(KindPphPayment, p.PphPayment)
	add(KindPphFiling, p.PphFiling)
	if p.Ppn != nil {
		add(KindPpnPayment, p.Ppn.Payment)
		add(KindPpnFiling, p.Ppn.Filing)
	}
	add(KindBookkeeping, p.Bookkeeping)

	return st
}

// =============================================================================
// UPCOMING DEADLINE SCAN
// =============================================================================

// ClientPeriods ties a client identifier to its periods for the scan.
type ClientPeriods struct {
	ClientID   string
	ClientName string
	Periods    []kpi.TaxPeriod
}

// UpcomingDeadline is one attention-worthy obligation across the book of
// clients: overdue, or due within the horizon.
type UpcomingDeadline struct {
	ClientID   string               `json:"client_id"`
	ClientName string               `json:"client_name"`
	Period     string               `json:"period"`
	Kind       ObligationKind       `json:"kind"`
	KindLabel  string               `json:"kind_label"`
	State      taxcal.DeadlineState `json:"state"`
	Deadline   taxcal.Date          `json:"deadline"`
	DaysLeft   int                  `json:"days_left"`
}

// UpcomingDeadlines scans every client's periods and returns the
// obligations that are overdue or due within horizonDays, most urgent
// first. Completed and excepted obligations are skipped.
func UpcomingDeadlines(clients []ClientPeriods, today taxcal.Date, horizonDays int) []UpcomingDeadline {
	var out []UpcomingDeadline

	for _, c := range clients {
		for _, p := range c.Periods {
			status := StatusOf(p, today)
			for _, o := range status.Obligations {
				if o.Status.Satisfied() {
					continue
				}
				if o.State != taxcal.StateOverdue && o.DaysLeft > horizonDays {
					continue
				}
				out = append(out, UpcomingDeadline{
					ClientID:   c.ClientID,
					ClientName: c.ClientName,
					Period:     status.Label,
					Kind:       o.Kind,
					KindLabel:  o.Kind.Label(),
					State:      o.State,
					Deadline:   o.Deadline,
					DaysLeft:   o.DaysLeft,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}
