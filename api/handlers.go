/*
handlers.go - HTTP API handlers for the KPI dashboard

PURPOSE:
  Exposes the scoring engine and deadline calendar via REST API. Handles
  HTTP request/response, JSON serialization, and delegates to domain
  logic.

ENDPOINTS:
  Employees:
    GET    /api/employees                 List all employees
    POST   /api/employees                 Create employee
    GET    /api/employees/{id}            Get employee details
    GET    /api/employees/{id}/kpi        Full KPI report for a year
    GET    /api/employees/{id}/jobdesks   List jobdesks
    POST   /api/employees/{id}/jobdesks   Create jobdesk

  Clients:
    GET    /api/clients                   List all clients
    POST   /api/clients                   Create client
    GET    /api/clients/{id}              Get client details
    GET    /api/clients/{id}/periods      List tax periods
    POST   /api/clients/{id}/periods      Create one period from JSON
    POST   /api/clients/{id}/periods/generate  Create a full year
    GET    /api/clients/{id}/filings      List annual filings
    PUT    /api/clients/{id}/filings      Upsert an annual filing

  Periods:
    PUT    /api/periods/{id}/obligations/{slot}  Mark an obligation
    POST   /api/periods/{id}/archive             Freeze a period

  Letters:
    POST   /api/warning-letters           Record a warning letter
    POST   /api/sp2dk-letters             Record an SP2DK letter

  Monitoring:
    GET    /api/monitoring/clients        Per-client deadline dashboard
    GET    /api/monitoring/upcoming       Cross-client upcoming deadlines

  Scenarios:
    GET    /api/scenarios                 List demo scenarios
    POST   /api/scenarios/load            Load a demo scenario

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SECURITY NOTE:
  Currently NO authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/taxdesk/kpi-engine/factory"
	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/monitoring"
	"github.com/taxdesk/kpi-engine/store/sqlite"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Factory *factory.Factory
	Log     zerolog.Logger

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger) *Handler {
	return &Handler{
		Store:   store,
		Factory: factory.New(),
		Log:     log,
	}
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns all employees.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, err := h.Store.GetEmployee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// CreateEmployee creates a new employee.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	emp := sqlite.Employee{Name: req.Name, Email: req.Email}
	if req.JoinDate != "" {
		d, err := taxcal.ParseDate(req.JoinDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid join_date", err)
			return
		}
		emp.JoinDate = d
	}

	if err := h.Store.SaveEmployee(r.Context(), &emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

func toEmployeeDTO(e sqlite.Employee) EmployeeDTO {
	dto := EmployeeDTO{ID: e.ID, Name: e.Name, Email: e.Email, JoinDate: e.JoinDate.String()}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients, optionally filtered by assignee.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	var clients []sqlite.Client
	var err error

	if employeeID := r.URL.Query().Get("employee_id"); employeeID != "" {
		clients, err = h.Store.ListClientsByEmployee(r.Context(), employeeID)
	} else {
		clients, err = h.Store.ListClients(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	client, err := h.Store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTO(*client))
}

// CreateClient creates a new client.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	clientType := sqlite.ClientType(req.Type)
	switch clientType {
	case "", sqlite.ClientBadan, sqlite.ClientOp:
	default:
		writeError(w, http.StatusBadRequest, "Type must be badan or op", nil)
		return
	}

	client := sqlite.Client{
		Name:       req.Name,
		Npwp:       req.Npwp,
		IsPkp:      req.IsPkp,
		Type:       clientType,
		AssignedTo: req.AssignedTo,
	}
	if err := h.Store.SaveClient(r.Context(), &client); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save client", err)
		return
	}
	writeJSON(w, http.StatusCreated, toClientDTO(client))
}

func toClientDTO(c sqlite.Client) ClientDTO {
	return ClientDTO{
		ID:         c.ID,
		Name:       c.Name,
		Npwp:       c.Npwp,
		IsPkp:      c.IsPkp,
		Type:       string(c.Type),
		AssignedTo: c.AssignedTo,
	}
}

// =============================================================================
// PERIOD HANDLERS
// =============================================================================

// ListPeriods returns a client's tax periods, optionally one year.
func (h *Handler) ListPeriods(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")
	year := queryInt(r, "year", 0)

	records, err := h.Store.ListPeriodsByClient(r.Context(), clientID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}

	dtos := make([]PeriodDTO, len(records))
	for i, rec := range records {
		dtos[i] = h.toPeriodDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePeriod creates one tax period from its JSON definition. The
// client's PKP flag decides whether PPN obligations exist; the body may
// not contradict it.
func (h *Handler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	client, err := h.Store.GetClient(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	var pj factory.PeriodJSON
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	pj.IsPkp = client.IsPkp

	period, err := h.Factory.PeriodFromJSON(pj)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	rec := sqlite.PeriodRecord{ClientID: clientID, Period: *period}
	if err := h.Store.SavePeriod(r.Context(), &rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save period", err)
		return
	}
	writeJSON(w, http.StatusCreated, h.toPeriodDTO(rec))
}

// GeneratePeriods creates all twelve monthly periods of a year for a
// client, every obligation pending and every deadline derived.
func (h *Handler) GeneratePeriods(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req GeneratePeriodsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Year < 2000 || req.Year > 2100 {
		writeError(w, http.StatusBadRequest, "Year out of range", nil)
		return
	}

	client, err := h.Store.GetClient(r.Context(), clientID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get client", err)
		return
	}
	if client == nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	dtos := make([]PeriodDTO, 0, 12)
	for month := 1; month <= 12; month++ {
		rec := sqlite.PeriodRecord{
			ClientID: clientID,
			Period:   kpi.NewPeriod(month, req.Year, client.IsPkp),
		}
		if err := h.Store.SavePeriod(r.Context(), &rec); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save period", err)
			return
		}
		dtos = append(dtos, h.toPeriodDTO(rec))
	}

	h.Log.Info().
		Str("client_id", clientID).
		Int("year", req.Year).
		Bool("is_pkp", client.IsPkp).
		Msg("generated tax periods")

	writeJSON(w, http.StatusCreated, dtos)
}

// UpdateObligation marks one obligation slot on a period.
func (h *Handler) UpdateObligation(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")
	slot := chi.URLParam(r, "slot")

	var req UpdateObligationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := taxcal.ObligationStatus(req.Status)
	switch status {
	case taxcal.StatusPending, taxcal.StatusCompleted, taxcal.StatusExcepted:
	default:
		writeError(w, http.StatusBadRequest, "Status must be pending, completed, or excepted", nil)
		return
	}

	var completedAt *taxcal.Date
	if req.CompletedAt != "" {
		d, err := taxcal.ParseDate(req.CompletedAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid completed_at", err)
			return
		}
		completedAt = &d
	}

	if err := h.Store.UpdateObligation(r.Context(), periodID, slot, status, completedAt); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to update obligation", err)
		return
	}

	rec, err := h.Store.GetPeriod(r.Context(), periodID)
	if err != nil || rec == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload period", err)
		return
	}
	writeJSON(w, http.StatusOK, h.toPeriodDTO(*rec))
}

// ArchivePeriod freezes a period against further updates.
func (h *Handler) ArchivePeriod(w http.ResponseWriter, r *http.Request) {
	periodID := chi.URLParam(r, "id")

	rec, err := h.Store.GetPeriod(r.Context(), periodID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get period", err)
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "Period not found", nil)
		return
	}

	if err := h.Store.ArchivePeriod(r.Context(), periodID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to archive period", err)
		return
	}
	rec.Archived = true
	writeJSON(w, http.StatusOK, h.toPeriodDTO(*rec))
}

func (h *Handler) toPeriodDTO(rec sqlite.PeriodRecord) PeriodDTO {
	return PeriodDTO{
		ID:         rec.ID,
		ClientID:   rec.ClientID,
		Label:      rec.Period.Label(),
		Archived:   rec.Archived,
		PeriodJSON: h.Factory.PeriodToJSON(rec.Period),
	}
}

// =============================================================================
// ANNUAL FILING HANDLERS
// =============================================================================

// ListFilings returns a client's annual filings.
func (h *Handler) ListFilings(w http.ResponseWriter, r *http.Request) {
	records, err := h.Store.ListFilingsByClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list filings", err)
		return
	}

	dtos := make([]FilingDTO, len(records))
	for i, rec := range records {
		dtos[i] = toFilingDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpsertFiling records a client's annual return for a tax year.
func (h *Handler) UpsertFiling(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "id")

	var req UpsertFilingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	status := kpi.FilingStatus(req.Status)
	switch status {
	case kpi.FilingPending, kpi.FilingFiled:
	default:
		writeError(w, http.StatusBadRequest, "Status must be pending or filed", nil)
		return
	}

	rec := sqlite.FilingRecord{
		ClientID: clientID,
		Filing:   kpi.AnnualFiling{Year: req.Year, Status: status},
	}
	if req.FiledAt != "" {
		d, err := taxcal.ParseDate(req.FiledAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid filed_at", err)
			return
		}
		rec.FiledAt = &d
	}

	if err := h.Store.UpsertAnnualFiling(r.Context(), &rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save filing", err)
		return
	}
	writeJSON(w, http.StatusOK, toFilingDTO(rec))
}

func toFilingDTO(rec sqlite.FilingRecord) FilingDTO {
	dto := FilingDTO{
		ID:       rec.ID,
		ClientID: rec.ClientID,
		Year:     rec.Filing.Year,
		Status:   string(rec.Filing.Status),
	}
	if rec.FiledAt != nil {
		dto.FiledAt = rec.FiledAt.String()
	}
	return dto
}

// =============================================================================
// JOBDESK HANDLERS
// =============================================================================

// ListJobdesks returns an employee's jobdesks, optionally one year.
func (h *Handler) ListJobdesks(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	year := queryInt(r, "year", 0)

	records, err := h.Store.ListJobdesksByEmployee(r.Context(), employeeID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobdesks", err)
		return
	}

	dtos := make([]JobdeskDTO, len(records))
	for i, rec := range records {
		dtos[i] = toJobdeskDTO(rec)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateJobdesk creates a jobdesk for an employee.
func (h *Handler) CreateJobdesk(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	var jj struct {
		factory.JobdeskJSON
		ClientID string `json:"client_id,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&jj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if jj.Title == "" {
		writeError(w, http.StatusBadRequest, "Title is required", nil)
		return
	}

	jd, taskType, err := h.Factory.JobdeskFromJSON(jj.JobdeskJSON)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid jobdesk", err)
		return
	}

	rec := sqlite.JobdeskRecord{
		EmployeeID: employeeID,
		ClientID:   jj.ClientID,
		Title:      jj.Title,
		TaskType:   taskType,
		Month:      jj.Month,
		Year:       jj.Year,
		Jobdesk:    *jd,
	}
	if err := h.Store.SaveJobdesk(r.Context(), &rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save jobdesk", err)
		return
	}
	writeJSON(w, http.StatusCreated, toJobdeskDTO(rec))
}

func toJobdeskDTO(rec sqlite.JobdeskRecord) JobdeskDTO {
	dto := JobdeskDTO{
		ID:          rec.ID,
		EmployeeID:  rec.EmployeeID,
		ClientID:    rec.ClientID,
		Title:       rec.Title,
		TaskType:    string(rec.TaskType),
		Month:       rec.Month,
		Year:        rec.Year,
		TargetHours: rec.Jobdesk.TargetHours,
		ActualHours: rec.Jobdesk.ActualHours,
		DueDate:     rec.Jobdesk.DueDate.String(),
		Status:      string(rec.Jobdesk.Status),
	}
	if rec.Jobdesk.CompletedAt != nil {
		dto.CompletedAt = rec.Jobdesk.CompletedAt.String()
	}
	return dto
}

// =============================================================================
// LETTER HANDLERS
// =============================================================================

// CreateWarningLetter records a warning letter for an employee.
func (h *Handler) CreateWarningLetter(w http.ResponseWriter, r *http.Request) {
	var req CreateWarningLetterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required", nil)
		return
	}
	letterDate, err := taxcal.ParseDate(req.LetterDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid letter_date", err)
		return
	}

	letter := sqlite.WarningLetter{
		EmployeeID: req.EmployeeID,
		ClientID:   req.ClientID,
		LetterDate: letterDate,
		Reason:     req.Reason,
	}
	if err := h.Store.SaveWarningLetter(r.Context(), &letter); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save warning letter", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": letter.ID})
}

// CreateSp2dkLetter records an SP2DK letter against a client. The
// 14-day response deadline is derived from the letter date.
func (h *Handler) CreateSp2dkLetter(w http.ResponseWriter, r *http.Request) {
	var req CreateSp2dkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.ClientID == "" {
		writeError(w, http.StatusBadRequest, "client_id is required", nil)
		return
	}
	letterDate, err := taxcal.ParseDate(req.LetterDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid letter_date", err)
		return
	}

	letter := sqlite.Sp2dkLetter{
		ClientID:   req.ClientID,
		EmployeeID: req.EmployeeID,
		LetterDate: letterDate,
	}
	if err := h.Store.SaveSp2dkLetter(r.Context(), &letter); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save SP2DK letter", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{
		"id":                letter.ID,
		"response_deadline": letter.ResponseDeadline.String(),
	})
}

// =============================================================================
// KPI REPORT
// =============================================================================

// GetKPIReport computes the full KPI report for one employee and year.
// GET /api/employees/{id}/kpi?year=2025&years_low_kpi=0
func (h *Handler) GetKPIReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	employeeID := chi.URLParam(r, "id")

	emp, err := h.Store.GetEmployee(ctx, employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get employee", err)
		return
	}
	if emp == nil {
		writeError(w, http.StatusNotFound, "Employee not found", nil)
		return
	}

	today := taxcal.Today()
	if asOf := r.URL.Query().Get("as_of"); asOf != "" {
		d, err := taxcal.ParseDate(asOf)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid as_of", err)
			return
		}
		today = d
	}
	year := queryInt(r, "year", today.Year())

	periodRecords, err := h.Store.ListPeriodsByEmployee(ctx, employeeID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
		return
	}
	periods := make([]kpi.TaxPeriod, len(periodRecords))
	for i, rec := range periodRecords {
		periods[i] = rec.Period
	}

	// An annual return for tax year N is filed during N+1, so the
	// filings scored in an evaluation year are the previous tax year's.
	filingRecords, err := h.Store.ListFilingsByEmployee(ctx, employeeID, year-1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list filings", err)
		return
	}
	filings := make([]kpi.AnnualFiling, len(filingRecords))
	for i, rec := range filingRecords {
		filings[i] = rec.Filing
	}

	jobdeskRecords, err := h.Store.ListJobdesksByEmployee(ctx, employeeID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list jobdesks", err)
		return
	}
	jobdesks := make([]kpi.Jobdesk, len(jobdeskRecords))
	for i, rec := range jobdeskRecords {
		jobdesks[i] = rec.Jobdesk
	}

	warningCount, err := h.Store.CountWarningLetters(ctx, employeeID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count warning letters", err)
		return
	}
	sp2dkCount, err := h.Store.CountSp2dkLetters(ctx, employeeID, year)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count SP2DK letters", err)
		return
	}

	report := kpi.Evaluate(kpi.ReportInput{
		Periods:            periods,
		Filings:            filings,
		Jobdesks:           jobdesks,
		WarningLetterCount: warningCount,
		Sp2dkCount:         sp2dkCount,
		YearsLowKpi:        queryInt(r, "years_low_kpi", 0),
		Today:              today,
	})

	h.Log.Info().
		Str("employee_id", employeeID).
		Int("year", year).
		Str("overall", report.Overall.String()).
		Str("grade", report.Grade.Letter).
		Int("sp_level", report.SP.Level).
		Msg("computed KPI report")

	writeJSON(w, http.StatusOK, KPIReportDTO{
		EmployeeID:   emp.ID,
		EmployeeName: emp.Name,
		Year:         year,
		AsOf:         today.String(),
		Report:       report,
	})
}

// =============================================================================
// MONITORING
// =============================================================================

// MonitorClients returns the per-client deadline dashboard for a year.
// GET /api/monitoring/clients?year=2025
func (h *Handler) MonitorClients(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := taxcal.Today()
	year := queryInt(r, "year", today.Year())

	clients, err := h.Store.ListClients(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	dtos := make([]ClientMonitoringDTO, 0, len(clients))
	for _, c := range clients {
		records, err := h.Store.ListPeriodsByClient(ctx, c.ID, year)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
			return
		}

		dto := ClientMonitoringDTO{ClientID: c.ID, ClientName: c.Name, IsPkp: c.IsPkp}
		for _, rec := range records {
			dto.Periods = append(dto.Periods, monitoring.StatusOf(rec.Period, today))
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// UpcomingDeadlines returns obligations that are overdue or due within
// the horizon, across every client.
// GET /api/monitoring/upcoming?days=30
func (h *Handler) UpcomingDeadlines(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := taxcal.Today()
	horizon := queryInt(r, "days", 30)

	clients, err := h.Store.ListClients(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list clients", err)
		return
	}

	book := make([]monitoring.ClientPeriods, 0, len(clients))
	for _, c := range clients {
		records, err := h.Store.ListPeriodsByClient(ctx, c.ID, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to list periods", err)
			return
		}
		cp := monitoring.ClientPeriods{ClientID: c.ID, ClientName: c.Name}
		for _, rec := range records {
			cp.Periods = append(cp.Periods, rec.Period)
		}
		book = append(book, cp)
	}

	deadlines := monitoring.UpcomingDeadlines(book, today, horizon)
	if deadlines == nil {
		deadlines = []monitoring.UpcomingDeadline{}
	}
	writeJSON(w, http.StatusOK, deadlines)
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func queryInt(r *http.Request, key string, fallback int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
