/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the database with ready-made office states so the dashboard can
  be demoed and the scoring behavior inspected without hand-entering
  data. Each scenario wipes the database first.

SCENARIOS:
  fresh-year:       A new evaluation year, everything pending
  compliant-office: Every obligation completed before its deadline
  overdue-risk:     Missed deadlines, penalty letters, low scores

DATES:
  Scenarios are seeded relative to the current date so deadlines land
  in plausible past/future positions no matter when they are loaded.

SEE ALSO:
  - handlers.go: Scenario endpoints
  - store/sqlite: Reset and record types
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/store/sqlite"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// scenarios lists every loadable demo state.
var scenarios = []ScenarioDTO{
	{
		ID:          "fresh-year",
		Name:        "Awal Tahun",
		Description: "A new evaluation year: two employees, four clients, all obligations pending.",
	},
	{
		ID:          "compliant-office",
		Name:        "Kantor Patuh",
		Description: "Every obligation completed before its deadline; scores near 100, grade A.",
	},
	{
		ID:          "overdue-risk",
		Name:        "Risiko Keterlambatan",
		Description: "Missed deadlines, a warning letter, and an SP2DK; deductions and SP escalation visible.",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the most recently loaded scenario.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario": h.currentScenario})
}

// ResetDatabase wipes all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	h.Log.Info().Msg("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario wipes the database and seeds the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.Scenario {
	case "fresh-year":
		err = h.loadFreshYear(ctx)
	case "compliant-office":
		err = h.loadCompliantOffice(ctx)
	case "overdue-risk":
		err = h.loadOverdueRisk(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.Scenario), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.Scenario
	h.Log.Info().Str("scenario", req.Scenario).Msg("scenario loaded")
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario": req.Scenario})
}

// seedOffice creates the base staff and client book shared by every
// scenario: two employees, two PKP corporates, one non-PKP corporate,
// one individual.
func (h *Handler) seedOffice(ctx context.Context) (employees []sqlite.Employee, clients []sqlite.Client, err error) {
	employees = []sqlite.Employee{
		{Name: "Dewi Lestari", Email: "dewi@kantor.example", JoinDate: taxcal.NewDate(2021, 6, 1)},
		{Name: "Budi Santoso", Email: "budi@kantor.example", JoinDate: taxcal.NewDate(2023, 2, 13)},
	}
	for i := range employees {
		if err = h.Store.SaveEmployee(ctx, &employees[i]); err != nil {
			return
		}
	}

	clients = []sqlite.Client{
		{Name: "PT Maju Jaya", Npwp: "01.234.567.8-901.000", IsPkp: true, Type: sqlite.ClientBadan, AssignedTo: employees[0].ID},
		{Name: "PT Sinar Abadi", Npwp: "02.345.678.9-012.000", IsPkp: true, Type: sqlite.ClientBadan, AssignedTo: employees[0].ID},
		{Name: "CV Berkah Sentosa", Npwp: "03.456.789.0-123.000", IsPkp: false, Type: sqlite.ClientBadan, AssignedTo: employees[1].ID},
		{Name: "Hartono", Npwp: "04.567.890.1-234.000", IsPkp: false, Type: sqlite.ClientOp, AssignedTo: employees[1].ID},
	}
	for i := range clients {
		if err = h.Store.SaveClient(ctx, &clients[i]); err != nil {
			return
		}
	}
	return
}

// loadFreshYear seeds the current year with every obligation pending.
func (h *Handler) loadFreshYear(ctx context.Context) error {
	_, clients, err := h.seedOffice(ctx)
	if err != nil {
		return err
	}

	year := taxcal.Today().Year()
	for _, c := range clients {
		for month := 1; month <= 12; month++ {
			rec := sqlite.PeriodRecord{ClientID: c.ID, Period: kpi.NewPeriod(month, year, c.IsPkp)}
			if err := h.Store.SavePeriod(ctx, &rec); err != nil {
				return err
			}
		}
		if err := h.Store.UpsertAnnualFiling(ctx, &sqlite.FilingRecord{
			ClientID: c.ID,
			Filing:   kpi.AnnualFiling{Year: year - 1, Status: kpi.FilingPending},
		}); err != nil {
			return err
		}
	}
	return nil
}

// loadCompliantOffice seeds the months of the current year that are
// already past, every obligation completed a few days early.
func (h *Handler) loadCompliantOffice(ctx context.Context) error {
	employees, clients, err := h.seedOffice(ctx)
	if err != nil {
		return err
	}

	today := taxcal.Today()
	year := today.Year()

	complete := func(o *kpi.Obligation) {
		done := o.Deadline.AddDays(-3)
		o.Status = taxcal.StatusCompleted
		o.CompletedAt = &done
	}

	for _, c := range clients {
		for month := 1; month <= 12; month++ {
			period := kpi.NewPeriod(month, year, c.IsPkp)
			if period.PphPayment.Deadline.Before(today) {
				complete(&period.PphPayment)
				complete(&period.PphFiling)
				complete(&period.Bookkeeping)
				if period.Ppn != nil {
					complete(&period.Ppn.Payment)
					complete(&period.Ppn.Filing)
				}
			}
			rec := sqlite.PeriodRecord{ClientID: c.ID, Period: period}
			if err := h.Store.SavePeriod(ctx, &rec); err != nil {
				return err
			}
		}

		filedAt := taxcal.NewDate(year, 3, 20)
		if err := h.Store.UpsertAnnualFiling(ctx, &sqlite.FilingRecord{
			ClientID: c.ID,
			Filing:   kpi.AnnualFiling{Year: year - 1, Status: kpi.FilingFiled},
			FiledAt:  &filedAt,
		}); err != nil {
			return err
		}
	}

	// On-time jobdesks with hours close to target.
	for _, emp := range employees {
		for month := 1; month <= 3; month++ {
			due := taxcal.TaskDeadline(taxcal.TaskPph21, month, year)
			done := due.AddDays(-2)
			rec := sqlite.JobdeskRecord{
				EmployeeID: emp.ID,
				Title:      fmt.Sprintf("SPT Masa PPh 21 %s", taxcal.PeriodLabel(month, year)),
				TaskType:   taxcal.TaskPph21,
				Month:      month,
				Year:       year,
				Jobdesk: kpi.Jobdesk{
					TargetHours: 8,
					ActualHours: 7.5,
					CompletedAt: &done,
					Status:      kpi.JobdeskCompleted,
				},
			}
			if err := h.Store.SaveJobdesk(ctx, &rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// loadOverdueRisk seeds a troubled book: several past obligations left
// pending or completed late, plus penalty letters against the first
// employee.
func (h *Handler) loadOverdueRisk(ctx context.Context) error {
	employees, clients, err := h.seedOffice(ctx)
	if err != nil {
		return err
	}

	today := taxcal.Today()
	year := today.Year()

	for ci, c := range clients {
		for month := 1; month <= 12; month++ {
			period := kpi.NewPeriod(month, year, c.IsPkp)
			if period.PphPayment.Deadline.Before(today) {
				// Alternate between late completion and nothing at all.
				if (month+ci)%2 == 0 {
					late := period.PphPayment.Deadline.AddDays(4)
					period.PphPayment.Status = taxcal.StatusCompleted
					period.PphPayment.CompletedAt = &late
				}
				// PPh filing and bookkeeping stay pending past due.
			}
			rec := sqlite.PeriodRecord{ClientID: c.ID, Period: period}
			if err := h.Store.SavePeriod(ctx, &rec); err != nil {
				return err
			}
		}

		if err := h.Store.UpsertAnnualFiling(ctx, &sqlite.FilingRecord{
			ClientID: c.ID,
			Filing:   kpi.AnnualFiling{Year: year - 1, Status: kpi.FilingPending},
		}); err != nil {
			return err
		}
	}

	// Overdue jobdesks with hours far under target.
	for month := 1; month <= 2; month++ {
		rec := sqlite.JobdeskRecord{
			EmployeeID: employees[0].ID,
			Title:      fmt.Sprintf("SPT Masa PPN %s", taxcal.PeriodLabel(month, year)),
			TaskType:   taxcal.TaskPpn,
			Month:      month,
			Year:       year,
			Jobdesk:    kpi.Jobdesk{TargetHours: 10, ActualHours: 3},
		}
		if err := h.Store.SaveJobdesk(ctx, &rec); err != nil {
			return err
		}
	}

	if err := h.Store.SaveWarningLetter(ctx, &sqlite.WarningLetter{
		EmployeeID: employees[0].ID,
		ClientID:   clients[0].ID,
		LetterDate: taxcal.NewDate(year, 3, 5),
		Reason:     "SPT Masa Februari terlambat",
	}); err != nil {
		return err
	}

	return h.Store.SaveSp2dkLetter(ctx, &sqlite.Sp2dkLetter{
		ClientID:   clients[0].ID,
		EmployeeID: employees[0].ID,
		LetterDate: taxcal.NewDate(year, 4, 10),
	})
}
