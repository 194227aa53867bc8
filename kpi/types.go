/*
Package kpi implements employee performance scoring for a tax-consulting
practice.

PURPOSE:
  Scores an employee's work quality and time efficiency against the tax
  obligations and jobdesks assigned to them, then maps the result onto a
  letter grade and a disciplinary warning level. Everything in this package
  is a stateless function over already-materialized records: the engine
  owns no storage, performs no I/O, and never mutates its inputs.

KEY CONCEPTS IN THIS FILE (types.go):
  - Obligation: One tax duty with a status, deadline, and completion day
  - TaxPeriod: A client's monthly obligation set; PPN present only for PKP
  - AnnualFiling: One annual return per client per tax year
  - Jobdesk: An employee task with target hours and a due date

DESIGN PRINCIPLES:
  1. Purity: calculators take values, return values, touch nothing else
  2. The PPN pair exists as a unit or not at all - a nil Ppn block is the
     only way to express a non-PKP period, so a "half-PKP" record cannot
     be constructed
  3. Absence is never penalized: empty collections score 100

SEE ALSO:
  - scores.go: Monthly, bookkeeping, and annual score calculators
  - compliance.go: Deadline-compliance rate aggregation
  - efficiency.go: Time-efficiency scoring
  - report.go: Overall KPI, grade mapping, SP level resolution
*/
package kpi

import (
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// OBLIGATIONS
// =============================================================================

// Obligation is one tax duty inside a period: its recorded completion
// status, the generated deadline, and the day staff completed it (nil
// while outstanding).
type Obligation struct {
	Status      taxcal.ObligationStatus `json:"status"`
	Deadline    taxcal.Date             `json:"deadline"`
	CompletedAt *taxcal.Date            `json:"completed_at,omitempty"`
}

// State classifies the obligation for display as of the given day.
func (o Obligation) State(today taxcal.Date) taxcal.DeadlineState {
	return taxcal.ClassifyDeadline(o.Deadline, o.Status, today)
}

// OnTime applies the optimistic-credit policy to this obligation.
func (o Obligation) OnTime(today taxcal.Date) bool {
	return taxcal.OnTime(o.Status, o.Deadline, o.CompletedAt, today)
}

// PpnObligations is the matched PPN payment/filing pair carried only by
// PKP clients.
type PpnObligations struct {
	Payment Obligation `json:"payment"`
	Filing  Obligation `json:"filing"`
}

// =============================================================================
// TAX PERIOD
// =============================================================================

// TaxPeriod is one client's monthly obligation set. Ppn is nil for
// non-PKP clients; when present, payment and filing always exist together.
type TaxPeriod struct {
	Month int `json:"month"`
	Year  int `json:"year"`

	PphPayment  Obligation      `json:"pph_payment"`
	PphFiling   Obligation      `json:"pph_filing"`
	Ppn         *PpnObligations `json:"ppn,omitempty"`
	Bookkeeping Obligation      `json:"bookkeeping"`

	// Owner-side review deadline for the bookkeeping work. Tracked for the
	// dashboard; the bookkeeping score keys off Bookkeeping.Status alone.
	BookkeepingOwnerDeadline taxcal.Date `json:"bookkeeping_owner_deadline"`
}

// HasPpn reports whether this period carries PPN obligations.
func (p TaxPeriod) HasPpn() bool { return p.Ppn != nil }

// Label returns the display label for the period, e.g. "Maret 2025".
func (p TaxPeriod) Label() string { return taxcal.PeriodLabel(p.Month, p.Year) }

// NewPeriod builds a TaxPeriod for (month, year) with freshly generated
// deadlines and every obligation pending. This is what CRUD glue calls
// before persisting a newly opened monthly cycle.
func NewPeriod(month, year int, isPkp bool) TaxPeriod {
	d := taxcal.GeneratePeriodDeadlines(month, year, isPkp)
	p := TaxPeriod{
		Month:                    month,
		Year:                     year,
		PphPayment:               Obligation{Status: taxcal.StatusPending, Deadline: d.PphPayment},
		PphFiling:                Obligation{Status: taxcal.StatusPending, Deadline: d.PphFiling},
		Bookkeeping:              Obligation{Status: taxcal.StatusPending, Deadline: d.BookkeepingEmployee},
		BookkeepingOwnerDeadline: d.BookkeepingOwner,
	}
	if d.Ppn != nil {
		p.Ppn = &PpnObligations{
			Payment: Obligation{Status: taxcal.StatusPending, Deadline: d.Ppn.Payment},
			Filing:  Obligation{Status: taxcal.StatusPending, Deadline: d.Ppn.Filing},
		}
	}
	return p
}

// =============================================================================
// ANNUAL FILING
// =============================================================================

type FilingStatus string

const (
	FilingPending FilingStatus = "pending"
	FilingFiled   FilingStatus = "filed"
)

// AnnualFiling is one client's annual return for a tax year.
type AnnualFiling struct {
	Year   int          `json:"year"`
	Status FilingStatus `json:"status"`
}

// =============================================================================
// JOBDESK
// =============================================================================

type JobdeskStatus string

const (
	JobdeskOpen      JobdeskStatus = "open"
	JobdeskCompleted JobdeskStatus = "completed"
)

// Jobdesk is one assigned task within a reporting period: the hours
// budgeted for it, the hours actually logged, and its deadline.
type Jobdesk struct {
	TargetHours float64       `json:"target_hours"`
	ActualHours float64       `json:"actual_hours"`
	DueDate     taxcal.Date   `json:"due_date"`
	CompletedAt *taxcal.Date  `json:"completed_at,omitempty"`
	Status      JobdeskStatus `json:"status"`
}

// OnTime reports whether the jobdesk counts as on time: completed on or
// before its due date, or not yet due. Same optimistic credit as tax
// obligations.
func (j Jobdesk) OnTime(today taxcal.Date) bool {
	if j.Status == JobdeskCompleted && j.CompletedAt != nil {
		return j.CompletedAt.BeforeOrEqual(j.DueDate)
	}
	return j.DueDate.After(today)
}
