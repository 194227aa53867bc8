package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdesk/kpi-engine/monitoring"
	"github.com/taxdesk/kpi-engine/store/sqlite"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	handler := NewHandler(store, zerolog.Nop())
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, method, url string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createEmployee(t *testing.T, server *httptest.Server, name string) EmployeeDTO {
	t.Helper()
	var dto EmployeeDTO
	resp := doJSON(t, http.MethodPost, server.URL+"/api/employees",
		CreateEmployeeRequest{Name: name, JoinDate: "2022-01-10"}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto
}

func createClient(t *testing.T, server *httptest.Server, name, assignedTo string, isPkp bool) ClientDTO {
	t.Helper()
	var dto ClientDTO
	resp := doJSON(t, http.MethodPost, server.URL+"/api/clients",
		CreateClientRequest{Name: name, IsPkp: isPkp, AssignedTo: assignedTo}, &dto)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return dto
}

func TestEmployeeLifecycle(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Dewi Lestari")
	assert.NotEmpty(t, emp.ID)
	assert.Equal(t, "2022-01-10", emp.JoinDate)

	var list []EmployeeDTO
	resp := doJSON(t, http.MethodGet, server.URL+"/api/employees", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 1)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/employees/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGeneratePeriods_PkpGetsMatchedPpnPair(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Dewi")
	client := createClient(t, server, "PT Maju Jaya", emp.ID, true)

	var periods []PeriodDTO
	resp := doJSON(t, http.MethodPost,
		server.URL+"/api/clients/"+client.ID+"/periods/generate",
		GeneratePeriodsRequest{Year: 2025}, &periods)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Len(t, periods, 12)

	may := periods[4]
	assert.Equal(t, "Mei 2025", may.Label)
	require.NotNil(t, may.PpnPayment)
	require.NotNil(t, may.PpnFiling)
	assert.Equal(t, "pending", may.PpnPayment.Status)
}

func TestGeneratePeriods_NonPkpHasNoPpn(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Budi")
	client := createClient(t, server, "CV Berkah", emp.ID, false)

	var periods []PeriodDTO
	resp := doJSON(t, http.MethodPost,
		server.URL+"/api/clients/"+client.ID+"/periods/generate",
		GeneratePeriodsRequest{Year: 2025}, &periods)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	for _, p := range periods {
		assert.Nil(t, p.PpnPayment)
		assert.Nil(t, p.PpnFiling)
	}
}

func TestUpdateObligation(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Dewi")
	client := createClient(t, server, "PT Maju Jaya", emp.ID, true)

	var periods []PeriodDTO
	doJSON(t, http.MethodPost,
		server.URL+"/api/clients/"+client.ID+"/periods/generate",
		GeneratePeriodsRequest{Year: 2025}, &periods)
	january := periods[0]

	var updated PeriodDTO
	resp := doJSON(t, http.MethodPut,
		server.URL+"/api/periods/"+january.ID+"/obligations/pph_payment",
		UpdateObligationRequest{Status: "completed", CompletedAt: "2025-02-12"}, &updated)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", updated.PphPayment.Status)
	assert.Equal(t, "2025-02-12", updated.PphPayment.CompletedAt)

	// Unknown slot
	resp = doJSON(t, http.MethodPut,
		server.URL+"/api/periods/"+january.ID+"/obligations/pph_weird",
		UpdateObligationRequest{Status: "completed"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Archived periods reject updates.
	resp = doJSON(t, http.MethodPost, server.URL+"/api/periods/"+january.ID+"/archive", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPut,
		server.URL+"/api/periods/"+january.ID+"/obligations/pph_filing",
		UpdateObligationRequest{Status: "completed"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestKPIReport(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Dewi Lestari")
	client := createClient(t, server, "PT Maju Jaya", emp.ID, true)

	var periods []PeriodDTO
	doJSON(t, http.MethodPost,
		server.URL+"/api/clients/"+client.ID+"/periods/generate",
		GeneratePeriodsRequest{Year: 2025}, &periods)

	// Complete January fully and on time.
	january := periods[0]
	for slot, done := range map[string]string{
		"pph_payment": "2025-02-12",
		"pph_filing":  "2025-02-18",
		"ppn_payment": "2025-02-25",
		"ppn_filing":  "2025-02-25",
		"bookkeeping": "2025-02-20",
	} {
		resp := doJSON(t, http.MethodPut,
			server.URL+"/api/periods/"+january.ID+"/obligations/"+slot,
			UpdateObligationRequest{Status: "completed", CompletedAt: done}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	var report KPIReportDTO
	url := fmt.Sprintf("%s/api/employees/%s/kpi?year=2025&as_of=2025-03-01", server.URL, emp.ID)
	resp := doJSON(t, http.MethodGet, url, nil, &report)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "Dewi Lestari", report.EmployeeName)
	assert.Equal(t, 2025, report.Year)
	assert.Equal(t, "2025-03-01", report.AsOf)

	// January done on time, every other deadline still in the future:
	// full compliance credit as of March 1.
	assert.Equal(t, 100, report.DeadlineCompliance.Rate)
	assert.Equal(t, 60, report.DeadlineCompliance.Total)
	assert.NotEmpty(t, report.Grade.Letter)

	resp = doJSON(t, http.MethodGet, server.URL+"/api/employees/nope/kpi", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMonitoringUpcoming(t *testing.T) {
	server := newTestServer(t)

	emp := createEmployee(t, server, "Dewi")
	client := createClient(t, server, "PT Maju Jaya", emp.ID, true)
	doJSON(t, http.MethodPost,
		server.URL+"/api/clients/"+client.ID+"/periods/generate",
		GeneratePeriodsRequest{Year: 2020}, nil)

	// A 2020 book viewed today: everything is overdue, so every unmet
	// obligation shows up regardless of horizon.
	var deadlines []monitoring.UpcomingDeadline
	resp := doJSON(t, http.MethodGet, server.URL+"/api/monitoring/upcoming?days=0", nil, &deadlines)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, deadlines, 60)
	assert.Equal(t, "PT Maju Jaya", deadlines[0].ClientName)
}

func TestScenarios(t *testing.T) {
	server := newTestServer(t)

	var list []ScenarioDTO
	resp := doJSON(t, http.MethodGet, server.URL+"/api/scenarios", nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, list, 3)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/scenarios/load",
		LoadScenarioRequest{Scenario: "overdue-risk"}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var current map[string]string
	resp = doJSON(t, http.MethodGet, server.URL+"/api/scenarios/current", nil, &current)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "overdue-risk", current["scenario"])

	var employees []EmployeeDTO
	doJSON(t, http.MethodGet, server.URL+"/api/employees", nil, &employees)
	assert.Len(t, employees, 2)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/scenarios/load",
		LoadScenarioRequest{Scenario: "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, server.URL+"/api/scenarios/reset", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var after []EmployeeDTO
	doJSON(t, http.MethodGet, server.URL+"/api/employees", nil, &after)
	assert.Empty(t, after)
}
