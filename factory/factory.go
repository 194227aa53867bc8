/*
Package factory provides JSON to Go domain conversion.

PURPOSE:
  Converts JSON period and jobdesk definitions into kpi domain structs.
  This is the seam between the HTTP/storage edge (strings, nullable
  fields) and the engine (typed dates, matched PPN pairs). Admin staff
  and seed scenarios describe data in JSON; the factory validates it and
  builds the proper Go structs.

JSON SCHEMA (period):
  {
    "month": 5,
    "year": 2025,
    "is_pkp": true,
    "pph_payment":  {"status": "completed", "completed_at": "2025-06-10"},
    "pph_filing":   {"status": "pending"},
    "ppn_payment":  {"status": "completed", "completed_at": "2025-06-28"},
    "ppn_filing":   {"status": "excepted"},
    "bookkeeping":  {"status": "pending"}
  }

KEY FEATURES:
  - Validates month range, statuses, and date formats
  - Derives every deadline from (month, year, is_pkp); callers never
    supply deadlines
  - Rejects PPN entries on non-PKP periods, keeping the matched-pair
    rule intact
  - Round-trips back to JSON for API responses

USAGE:
  f := factory.New()
  period, err := f.ParsePeriod(jsonString)

SEE ALSO:
  - kpi/types.go: TaxPeriod and Jobdesk definitions
  - taxcal/deadlines.go: Deadline derivation rules
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ObligationJSON is the JSON representation of one obligation slot.
// Deadlines are derived, never supplied.
type ObligationJSON struct {
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// PeriodJSON is the JSON representation of a monthly tax period.
type PeriodJSON struct {
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	IsPkp       bool            `json:"is_pkp"`
	PphPayment  *ObligationJSON `json:"pph_payment,omitempty"`
	PphFiling   *ObligationJSON `json:"pph_filing,omitempty"`
	PpnPayment  *ObligationJSON `json:"ppn_payment,omitempty"`
	PpnFiling   *ObligationJSON `json:"ppn_filing,omitempty"`
	Bookkeeping *ObligationJSON `json:"bookkeeping,omitempty"`
}

// JobdeskJSON is the JSON representation of an employee task.
type JobdeskJSON struct {
	Title       string  `json:"title"`
	TaskType    string  `json:"task_type,omitempty"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	TargetHours float64 `json:"target_hours"`
	ActualHours float64 `json:"actual_hours,omitempty"`
	DueDate     string  `json:"due_date,omitempty"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// =============================================================================
// FACTORY
// =============================================================================

// Factory converts JSON domain definitions to Go structs.
type Factory struct{}

// New creates a factory.
func New() *Factory {
	return &Factory{}
}

// ParsePeriod parses a JSON string into a TaxPeriod.
func (f *Factory) ParsePeriod(jsonStr string) (*kpi.TaxPeriod, error) {
	var pj PeriodJSON
	if err := json.Unmarshal([]byte(jsonStr), &pj); err != nil {
		return nil, fmt.Errorf("failed to parse period JSON: %w", err)
	}
	return f.PeriodFromJSON(pj)
}

// PeriodFromJSON converts PeriodJSON to a kpi.TaxPeriod. All deadlines
// come from the calendar rules; the JSON only carries statuses and
// completion days.
func (f *Factory) PeriodFromJSON(pj PeriodJSON) (*kpi.TaxPeriod, error) {
	if pj.Month < 1 || pj.Month > 12 {
		return nil, fmt.Errorf("month must be 1-12, got %d", pj.Month)
	}
	if pj.Year < 2000 || pj.Year > 2100 {
		return nil, fmt.Errorf("year out of range: %d", pj.Year)
	}
	if !pj.IsPkp && (pj.PpnPayment != nil || pj.PpnFiling != nil) {
		return nil, fmt.Errorf("ppn obligations not allowed on non-PKP period")
	}

	period := kpi.NewPeriod(pj.Month, pj.Year, pj.IsPkp)

	if err := applyObligation(&period.PphPayment, pj.PphPayment, "pph_payment"); err != nil {
		return nil, err
	}
	if err := applyObligation(&period.PphFiling, pj.PphFiling, "pph_filing"); err != nil {
		return nil, err
	}
	if period.Ppn != nil {
		if err := applyObligation(&period.Ppn.Payment, pj.PpnPayment, "ppn_payment"); err != nil {
			return nil, err
		}
		if err := applyObligation(&period.Ppn.Filing, pj.PpnFiling, "ppn_filing"); err != nil {
			return nil, err
		}
	}
	if err := applyObligation(&period.Bookkeeping, pj.Bookkeeping, "bookkeeping"); err != nil {
		return nil, err
	}

	return &period, nil
}

func applyObligation(dst *kpi.Obligation, oj *ObligationJSON, name string) error {
	if oj == nil {
		return nil
	}
	status, err := parseStatus(oj.Status)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	dst.Status = status

	if oj.CompletedAt != "" {
		d, err := taxcal.ParseDate(oj.CompletedAt)
		if err != nil {
			return fmt.Errorf("%s: invalid completed_at: %w", name, err)
		}
		dst.CompletedAt = &d
	}
	return nil
}

func parseStatus(s string) (taxcal.ObligationStatus, error) {
	switch s {
	case "", string(taxcal.StatusPending):
		return taxcal.StatusPending, nil
	case string(taxcal.StatusCompleted):
		return taxcal.StatusCompleted, nil
	case string(taxcal.StatusExcepted):
		return taxcal.StatusExcepted, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// PeriodToJSON converts a TaxPeriod back to its JSON representation.
func (f *Factory) PeriodToJSON(p kpi.TaxPeriod) PeriodJSON {
	pj := PeriodJSON{
		Month:       p.Month,
		Year:        p.Year,
		IsPkp:       p.HasPpn(),
		PphPayment:  obligationToJSON(p.PphPayment),
		PphFiling:   obligationToJSON(p.PphFiling),
		Bookkeeping: obligationToJSON(p.Bookkeeping),
	}
	if p.Ppn != nil {
		pj.PpnPayment = obligationToJSON(p.Ppn.Payment)
		pj.PpnFiling = obligationToJSON(p.Ppn.Filing)
	}
	return pj
}

func obligationToJSON(o kpi.Obligation) *ObligationJSON {
	oj := &ObligationJSON{Status: string(o.Status)}
	if o.CompletedAt != nil {
		oj.CompletedAt = o.CompletedAt.String()
	}
	return oj
}

// ParseJobdesk parses a JSON string into a Jobdesk plus its task type.
func (f *Factory) ParseJobdesk(jsonStr string) (*kpi.Jobdesk, taxcal.TaskType, error) {
	var jj JobdeskJSON
	if err := json.Unmarshal([]byte(jsonStr), &jj); err != nil {
		return nil, "", fmt.Errorf("failed to parse jobdesk JSON: %w", err)
	}
	return f.JobdeskFromJSON(jj)
}

// JobdeskFromJSON converts JobdeskJSON to a kpi.Jobdesk. A missing due
// date is derived from the task type; an explicit due date wins.
func (f *Factory) JobdeskFromJSON(jj JobdeskJSON) (*kpi.Jobdesk, taxcal.TaskType, error) {
	if jj.Month < 1 || jj.Month > 12 {
		return nil, "", fmt.Errorf("month must be 1-12, got %d", jj.Month)
	}
	if jj.TargetHours < 0 || jj.ActualHours < 0 {
		return nil, "", fmt.Errorf("hours must not be negative")
	}

	taskType, err := parseTaskType(jj.TaskType)
	if err != nil {
		return nil, "", err
	}

	jd := &kpi.Jobdesk{
		TargetHours: jj.TargetHours,
		ActualHours: jj.ActualHours,
		Status:      kpi.JobdeskOpen,
	}

	switch jj.Status {
	case "", string(kpi.JobdeskOpen):
	case string(kpi.JobdeskCompleted):
		jd.Status = kpi.JobdeskCompleted
	default:
		return nil, "", fmt.Errorf("unknown jobdesk status %q", jj.Status)
	}

	if jj.DueDate != "" {
		d, err := taxcal.ParseDate(jj.DueDate)
		if err != nil {
			return nil, "", fmt.Errorf("invalid due_date: %w", err)
		}
		jd.DueDate = d
	} else if taskType != "" {
		jd.DueDate = taxcal.TaskDeadline(taskType, jj.Month, jj.Year)
	} else {
		return nil, "", fmt.Errorf("jobdesk needs either due_date or task_type")
	}

	if jj.CompletedAt != "" {
		d, err := taxcal.ParseDate(jj.CompletedAt)
		if err != nil {
			return nil, "", fmt.Errorf("invalid completed_at: %w", err)
		}
		jd.CompletedAt = &d
	}

	return jd, taskType, nil
}

func parseTaskType(s string) (taxcal.TaskType, error) {
	switch taxcal.TaskType(s) {
	case "", taxcal.TaskPph21, taxcal.TaskPphUnifikasi, taxcal.TaskPph25,
		taxcal.TaskPpn, taxcal.TaskPphBadan, taxcal.TaskPph05:
		return taxcal.TaskType(s), nil
	default:
		return "", fmt.Errorf("unknown task type %q", s)
	}
}
