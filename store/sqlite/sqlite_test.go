package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/taxcal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedClientAndEmployee(t *testing.T, store *Store, isPkp bool) (clientID, employeeID string) {
	t.Helper()
	ctx := context.Background()

	emp := &Employee{Name: "Dewi", Email: "dewi@example.com", JoinDate: taxcal.NewDate(2022, 3, 1)}
	require.NoError(t, store.SaveEmployee(ctx, emp))

	client := &Client{Name: "PT Maju Jaya", Npwp: "01.234.567.8-901.000", IsPkp: isPkp, AssignedTo: emp.ID}
	require.NoError(t, store.SaveClient(ctx, client))

	return client.ID, emp.ID
}

func TestClientRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, employeeID := seedClientAndEmployee(t, store, true)

	got, err := store.GetClient(ctx, clientID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PT Maju Jaya", got.Name)
	assert.True(t, got.IsPkp)
	assert.Equal(t, ClientBadan, got.Type)
	assert.Equal(t, employeeID, got.AssignedTo)

	missing, err := store.GetClient(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assigned, err := store.ListClientsByEmployee(ctx, employeeID)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
}

func TestPeriodRoundTrip_PkpKeepsPpnPair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, employeeID := seedClientAndEmployee(t, store, true)

	rec := &PeriodRecord{ClientID: clientID, Period: kpi.NewPeriod(5, 2025, true)}
	require.NoError(t, store.SavePeriod(ctx, rec))
	require.NotEmpty(t, rec.ID)

	got, err := store.GetPeriod(ctx, rec.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, rec.Period, got.Period)
	require.True(t, got.Period.HasPpn())
	assert.Equal(t, "2025-06-30", got.Period.Ppn.Payment.Deadline.String())

	byEmployee, err := store.ListPeriodsByEmployee(ctx, employeeID, 2025)
	require.NoError(t, err)
	require.Len(t, byEmployee, 1)
}

func TestPeriodRoundTrip_NonPkpHasNoPpn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, _ := seedClientAndEmployee(t, store, false)

	rec := &PeriodRecord{ClientID: clientID, Period: kpi.NewPeriod(2, 2024, false)}
	require.NoError(t, store.SavePeriod(ctx, rec))

	got, err := store.GetPeriod(ctx, rec.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Period.Ppn)
}

func TestUpdateObligation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, _ := seedClientAndEmployee(t, store, true)
	rec := &PeriodRecord{ClientID: clientID, Period: kpi.NewPeriod(5, 2025, true)}
	require.NoError(t, store.SavePeriod(ctx, rec))

	done := taxcal.NewDate(2025, 6, 12)
	require.NoError(t, store.UpdateObligation(ctx, rec.ID, "pph_payment", taxcal.StatusCompleted, &done))

	got, err := store.GetPeriod(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, taxcal.StatusCompleted, got.Period.PphPayment.Status)
	require.NotNil(t, got.Period.PphPayment.CompletedAt)
	assert.Equal(t, "2025-06-12", got.Period.PphPayment.CompletedAt.String())

	// Unknown slot names are rejected before touching SQL.
	err = store.UpdateObligation(ctx, rec.ID, "pph_payment_status; DROP TABLE clients", taxcal.StatusCompleted, nil)
	assert.Error(t, err)
}

func TestUpdateObligation_ArchivedPeriodRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, _ := seedClientAndEmployee(t, store, false)
	rec := &PeriodRecord{ClientID: clientID, Period: kpi.NewPeriod(1, 2025, false)}
	require.NoError(t, store.SavePeriod(ctx, rec))
	require.NoError(t, store.ArchivePeriod(ctx, rec.ID))

	err := store.UpdateObligation(ctx, rec.ID, "bookkeeping", taxcal.StatusCompleted, nil)
	assert.Error(t, err)
}

func TestUpdateObligation_PpnOnNonPkpRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, _ := seedClientAndEmployee(t, store, false)
	rec := &PeriodRecord{ClientID: clientID, Period: kpi.NewPeriod(1, 2025, false)}
	require.NoError(t, store.SavePeriod(ctx, rec))

	err := store.UpdateObligation(ctx, rec.ID, "ppn_payment", taxcal.StatusCompleted, nil)
	assert.Error(t, err)
}

func TestAnnualFilingUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, employeeID := seedClientAndEmployee(t, store, false)

	rec := &FilingRecord{
		ClientID: clientID,
		Filing:   kpi.AnnualFiling{Year: 2024, Status: kpi.FilingPending},
	}
	require.NoError(t, store.UpsertAnnualFiling(ctx, rec))

	filedAt := taxcal.NewDate(2025, 4, 20)
	rec.Filing.Status = kpi.FilingFiled
	rec.FiledAt = &filedAt
	require.NoError(t, store.UpsertAnnualFiling(ctx, rec))

	filings, err := store.ListFilingsByEmployee(ctx, employeeID, 2024)
	require.NoError(t, err)
	require.Len(t, filings, 1)
	assert.Equal(t, kpi.FilingFiled, filings[0].Filing.Status)
	require.NotNil(t, filings[0].FiledAt)
	assert.Equal(t, "2025-04-20", filings[0].FiledAt.String())
}

func TestJobdeskDerivesDueDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, employeeID := seedClientAndEmployee(t, store, true)

	rec := &JobdeskRecord{
		EmployeeID: employeeID,
		ClientID:   clientID,
		Title:      "SPT Masa PPN Mei",
		TaskType:   taxcal.TaskPpn,
		Month:      5,
		Year:       2025,
		Jobdesk:    kpi.Jobdesk{TargetHours: 8},
	}
	require.NoError(t, store.SaveJobdesk(ctx, rec))

	jobdesks, err := store.ListJobdesksByEmployee(ctx, employeeID, 2025)
	require.NoError(t, err)
	require.Len(t, jobdesks, 1)
	assert.Equal(t, "2025-07-05", jobdesks[0].Jobdesk.DueDate.String())
	assert.Equal(t, kpi.JobdeskOpen, jobdesks[0].Jobdesk.Status)
}

func TestLetterCountsByYear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	clientID, employeeID := seedClientAndEmployee(t, store, false)

	for _, d := range []taxcal.Date{
		taxcal.NewDate(2025, 2, 10),
		taxcal.NewDate(2025, 8, 3),
		taxcal.NewDate(2024, 11, 30),
	} {
		require.NoError(t, store.SaveWarningLetter(ctx, &WarningLetter{
			EmployeeID: employeeID, ClientID: clientID, LetterDate: d, Reason: "telat lapor",
		}))
	}

	sp2dk := &Sp2dkLetter{ClientID: clientID, EmployeeID: employeeID, LetterDate: taxcal.NewDate(2025, 6, 1)}
	require.NoError(t, store.SaveSp2dkLetter(ctx, sp2dk))
	assert.Equal(t, "2025-06-15", sp2dk.ResponseDeadline.String())

	warnings, err := store.CountWarningLetters(ctx, employeeID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 2, warnings)

	sp2dkCount, err := store.CountSp2dkLetters(ctx, employeeID, 2025)
	require.NoError(t, err)
	assert.Equal(t, 1, sp2dkCount)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedClientAndEmployee(t, store, true)
	require.NoError(t, store.Reset(ctx))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)
}
