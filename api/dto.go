/*
dto.go - Request and response data structures

PURPOSE:
  Defines the JSON shapes exchanged with the frontend. DTOs keep the
  wire format decoupled from domain structs: dates become strings,
  derived values are flattened, and internal fields stay internal.

CONVENTIONS:
  - Dates are "YYYY-MM-DD" strings
  - Timestamps are RFC3339
  - Scores are JSON numbers with two decimals (shopspring/decimal)

SEE ALSO:
  - handlers.go: Where these DTOs are populated
  - factory/factory.go: JSON to domain conversion for periods/jobdesks
*/
package api

import (
	"github.com/taxdesk/kpi-engine/factory"
	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/monitoring"
)

// =============================================================================
// RESPONSE DTOs
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// EmployeeDTO represents an employee in API responses.
type EmployeeDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	JoinDate  string `json:"join_date,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Npwp       string `json:"npwp,omitempty"`
	IsPkp      bool   `json:"is_pkp"`
	Type       string `json:"type"`
	AssignedTo string `json:"assigned_to,omitempty"`
}

// PeriodDTO is a stored tax period: row identity plus the period JSON
// shape the factory produces.
type PeriodDTO struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Label    string `json:"label"`
	Archived bool   `json:"archived"`
	factory.PeriodJSON
}

// JobdeskDTO represents an employee task in API responses.
type JobdeskDTO struct {
	ID          string  `json:"id"`
	EmployeeID  string  `json:"employee_id"`
	ClientID    string  `json:"client_id,omitempty"`
	Title       string  `json:"title"`
	TaskType    string  `json:"task_type,omitempty"`
	Month       int     `json:"month"`
	Year        int     `json:"year"`
	TargetHours float64 `json:"target_hours"`
	ActualHours float64 `json:"actual_hours"`
	DueDate     string  `json:"due_date"`
	CompletedAt string  `json:"completed_at,omitempty"`
	Status      string  `json:"status"`
}

// FilingDTO represents an annual filing in API responses.
type FilingDTO struct {
	ID       string `json:"id"`
	ClientID string `json:"client_id"`
	Year     int    `json:"year"`
	Status   string `json:"status"`
	FiledAt  string `json:"filed_at,omitempty"`
}

// KPIReportDTO wraps the engine report with employee identity and the
// evaluation window.
type KPIReportDTO struct {
	EmployeeID   string `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	Year         int    `json:"year"`
	AsOf         string `json:"as_of"`

	kpi.Report
}

// ClientMonitoringDTO is the per-client deadline dashboard.
type ClientMonitoringDTO struct {
	ClientID   string                    `json:"client_id"`
	ClientName string                    `json:"client_name"`
	IsPkp      bool                      `json:"is_pkp"`
	Periods    []monitoring.PeriodStatus `json:"periods"`
}

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// REQUEST DTOs
// =============================================================================

// CreateEmployeeRequest creates an employee.
type CreateEmployeeRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	JoinDate string `json:"join_date,omitempty"`
}

// CreateClientRequest creates a client.
type CreateClientRequest struct {
	Name       string `json:"name"`
	Npwp       string `json:"npwp,omitempty"`
	IsPkp      bool   `json:"is_pkp"`
	Type       string `json:"type,omitempty"` // badan (default) or op
	AssignedTo string `json:"assigned_to,omitempty"`
}

// GeneratePeriodsRequest creates the twelve monthly periods of a year
// for one client.
type GeneratePeriodsRequest struct {
	Year int `json:"year"`
}

// UpdateObligationRequest marks one obligation slot on a period.
type UpdateObligationRequest struct {
	Status      string `json:"status"`
	CompletedAt string `json:"completed_at,omitempty"`
}

// UpsertFilingRequest records a client's annual return for a tax year.
type UpsertFilingRequest struct {
	Year    int    `json:"year"`
	Status  string `json:"status"`
	FiledAt string `json:"filed_at,omitempty"`
}

// CreateWarningLetterRequest records a warning letter for an employee.
type CreateWarningLetterRequest struct {
	EmployeeID string `json:"employee_id"`
	ClientID   string `json:"client_id,omitempty"`
	LetterDate string `json:"letter_date"`
	Reason     string `json:"reason,omitempty"`
}

// CreateSp2dkRequest records an SP2DK letter against a client.
type CreateSp2dkRequest struct {
	ClientID   string `json:"client_id"`
	EmployeeID string `json:"employee_id,omitempty"`
	LetterDate string `json:"letter_date"`
}

// LoadScenarioRequest selects a demo scenario to load.
type LoadScenarioRequest struct {
	Scenario string `json:"scenario"`
}
