/*
deadlines.go - Deadline generators for monthly and annual tax obligations

PURPOSE:
  Computes the due date of every obligation a client carries for a tax
  period. All monthly deadlines fall in the month following the obligation
  period; a December period rolls over into January of the next year.

RULES:
  PPh payment:            day 15 of the next month
  PPh filing:             day 20 of the next month
  PPN payment + filing:   last calendar day of the next month (PKP only)
  Bookkeeping (employee): day 25 of the next month
  Bookkeeping (owner):    day min(30, last day) of the next month
  PPh Badan (annual):     30 April of the following tax year
  PPh OP (annual):        31 March of the following tax year
  SP2DK response:         14 calendar days after the letter date

INPUT CONTRACT:
  month is 1-12 and year is a 4-digit year, validated by the caller.
  Out-of-range inputs produce normalized-but-meaningless dates rather
  than errors.

SEE ALSO:
  - status.go: Classifies a deadline against today and a completion status
  - kpi package: Consumes the generated deadlines for compliance scoring
*/
package taxcal

import "time"

// nextPeriodMonth rolls (month, year) forward by one month, carrying the
// year when the period is December.
func nextPeriodMonth(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

// =============================================================================
// MONTHLY DEADLINES
// =============================================================================

// PphPaymentDeadline returns day 15 of the month after the period.
func PphPaymentDeadline(month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	return NewDate(y, time.Month(m), 15)
}

// PphFilingDeadline returns day 20 of the month after the period.
func PphFilingDeadline(month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	return NewDate(y, time.Month(m), 20)
}

// PpnDeadline returns the last calendar day of the month after the period.
// Day 0 of the month after next normalizes to that last day regardless of
// month length. Applies to both PPN payment and PPN filing, PKP clients only.
func PpnDeadline(month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	return NewDate(y, time.Month(m)+1, 0)
}

// BookkeepingEmployeeDeadline returns day 25 of the month after the period.
func BookkeepingEmployeeDeadline(month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	return NewDate(y, time.Month(m), 25)
}

// BookkeepingOwnerDeadline returns day 30 of the month after the period,
// or the last day of that month when it is shorter (February yields 28/29).
func BookkeepingOwnerDeadline(month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	lastDay := LastDayOfMonth(y, time.Month(m))
	day := 30
	if lastDay < day {
		day = lastDay
	}
	return NewDate(y, time.Month(m), day)
}

// =============================================================================
// ANNUAL DEADLINES
// =============================================================================

// PphBadanDeadline returns the corporate annual filing deadline,
// 30 April of the year after the tax year.
func PphBadanDeadline(taxYear int) Date {
	return NewDate(taxYear+1, time.April, 30)
}

// PphOpDeadline returns the individual annual filing deadline,
// 31 March of the year after the tax year.
func PphOpDeadline(taxYear int) Date {
	return NewDate(taxYear+1, time.March, 31)
}

// Sp2dkDeadline returns the response deadline for a tax-authority
// clarification letter: 14 calendar days after the letter date.
func Sp2dkDeadline(letterDate Date) Date {
	return letterDate.AddDays(14)
}

// =============================================================================
// PERIOD DEADLINE SET
// =============================================================================

// PpnDeadlines holds the matched payment/filing pair for PKP clients.
// Both dates are always equal today, but the pair is kept explicit so the
// schema matches the per-obligation status fields.
type PpnDeadlines struct {
	Payment Date `json:"payment"`
	Filing  Date `json:"filing"`
}

// PeriodDeadlines is the full deadline set for one monthly tax period.
// Ppn is nil for non-PKP clients; it is never half-populated.
type PeriodDeadlines struct {
	PphPayment          Date          `json:"pph_payment"`
	PphFiling           Date          `json:"pph_filing"`
	BookkeepingEmployee Date          `json:"bookkeeping_employee"`
	BookkeepingOwner    Date          `json:"bookkeeping_owner"`
	Ppn                 *PpnDeadlines `json:"ppn,omitempty"`
}

// GeneratePeriodDeadlines computes every deadline for a (month, year)
// period. PPN deadlines are included only for PKP clients.
func GeneratePeriodDeadlines(month, year int, isPkp bool) PeriodDeadlines {
	d := PeriodDeadlines{
		PphPayment:          PphPaymentDeadline(month, year),
		PphFiling:           PphFilingDeadline(month, year),
		BookkeepingEmployee: BookkeepingEmployeeDeadline(month, year),
		BookkeepingOwner:    BookkeepingOwnerDeadline(month, year),
	}
	if isPkp {
		ppn := PpnDeadline(month, year)
		d.Ppn = &PpnDeadlines{Payment: ppn, Filing: ppn}
	}
	return d
}

// =============================================================================
// TASK-TYPE DEADLINES - Jobdesk submissions
// =============================================================================

// TaskType identifies the kind of filing work inside a jobdesk.
type TaskType string

const (
	TaskPph21        TaskType = "pph_21"
	TaskPphUnifikasi TaskType = "pph_unifikasi"
	TaskPph25        TaskType = "pph_25"
	TaskPpn          TaskType = "ppn"
	TaskPphBadan     TaskType = "pph_badan"
	TaskPph05        TaskType = "pph_05"
)

var taskTypeLabels = map[TaskType]string{
	TaskPph21:        "PPh 21",
	TaskPphUnifikasi: "PPh Unifikasi",
	TaskPph25:        "PPh 25 Angsuran",
	TaskPpn:          "PPN",
	TaskPphBadan:     "PPh Badan",
	TaskPph05:        "PPh 0,5%",
}

// Label returns the display name for a task type, falling back to the raw
// identifier for unknown types.
func (t TaskType) Label() string {
	if label, ok := taskTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// TaskDeadline computes the submission deadline for one task type.
// PPN work is due day 28 of the next month plus 7 days; every PPh task
// type is due day 20 of the next month.
func TaskDeadline(taskType TaskType, month, year int) Date {
	m, y := nextPeriodMonth(month, year)
	if taskType == TaskPpn {
		return NewDate(y, time.Month(m), 28).AddDays(7)
	}
	return NewDate(y, time.Month(m), 20)
}
