/*
Package sqlite provides SQLite-backed persistence for the KPI dashboard.

PURPOSE:
  Stores the CRUD-side records the pure engine consumes: clients and
  their monthly tax periods, annual filings, employee jobdesks, and the
  penalty letters that feed score deductions. The engine packages
  (taxcal, kpi, monitoring) never touch this store; only the API layer
  reads records here and hands them to the calculators as plain values.

KEY TABLES:
  clients:         Client master data, PKP flag, assigned employee
  employees:       Staff records
  tax_periods:     One row per client per (month, year); per-obligation
                   status/deadline/completion columns, PPN columns NULL
                   for non-PKP clients
  annual_filings:  One row per client per tax year
  jobdesks:        Employee tasks with target/actual hours and due dates
  warning_letters: Penalty events against an employee
  sp2dk_letters:   Tax-authority clarification letters per client

DATE ENCODING:
  Calendar dates are TEXT in "YYYY-MM-DD"; timestamps are RFC3339.
  NULL marks an absent completion day or PPN column.

CONCURRENCY:
  sync.RWMutex on top of WAL mode, same trade-off as the rest of the
  system: plenty for a single office server.
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/taxdesk/kpi-engine/kpi"
	"github.com/taxdesk/kpi-engine/taxcal"
)

// Store implements persistence for the dashboard records.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store backed by the database at dbPath.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		npwp TEXT,
		is_pkp INTEGER NOT NULL DEFAULT 0,
		client_type TEXT NOT NULL DEFAULT 'badan',
		assigned_to TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		join_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS tax_periods (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,

		pph_payment_status TEXT NOT NULL DEFAULT 'pending',
		pph_payment_deadline TEXT NOT NULL,
		pph_payment_completed_at TEXT,

		pph_filing_status TEXT NOT NULL DEFAULT 'pending',
		pph_filing_deadline TEXT NOT NULL,
		pph_filing_completed_at TEXT,

		ppn_payment_status TEXT,
		ppn_payment_deadline TEXT,
		ppn_payment_completed_at TEXT,

		ppn_filing_status TEXT,
		ppn_filing_deadline TEXT,
		ppn_filing_completed_at TEXT,

		bookkeeping_status TEXT NOT NULL DEFAULT 'pending',
		bookkeeping_deadline TEXT NOT NULL,
		bookkeeping_completed_at TEXT,
		bookkeeping_owner_deadline TEXT NOT NULL,

		archived INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,

		UNIQUE(client_id, month, year),
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);
	CREATE INDEX IF NOT EXISTS idx_tax_periods_client ON tax_periods(client_id, year, month);

	CREATE TABLE IF NOT EXISTS annual_filings (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		filed_at TEXT,
		UNIQUE(client_id, year),
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);

	CREATE TABLE IF NOT EXISTS jobdesks (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		client_id TEXT,
		title TEXT NOT NULL,
		task_type TEXT,
		month INTEGER NOT NULL,
		year INTEGER NOT NULL,
		target_hours REAL NOT NULL DEFAULT 0,
		actual_hours REAL NOT NULL DEFAULT 0,
		due_date TEXT NOT NULL,
		completed_at TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		FOREIGN KEY(employee_id) REFERENCES employees(id)
	);
	CREATE INDEX IF NOT EXISTS idx_jobdesks_employee ON jobdesks(employee_id, year);

	CREATE TABLE IF NOT EXISTS warning_letters (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		client_id TEXT,
		letter_date TEXT NOT NULL,
		reason TEXT,
		FOREIGN KEY(employee_id) REFERENCES employees(id)
	);

	CREATE TABLE IF NOT EXISTS sp2dk_letters (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL,
		employee_id TEXT,
		letter_date TEXT NOT NULL,
		response_deadline TEXT NOT NULL,
		FOREIGN KEY(client_id) REFERENCES clients(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DATE HELPERS
// =============================================================================

func dateStr(d taxcal.Date) string { return d.String() }

func dateNull(d *taxcal.Date) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

func parseDate(s string) taxcal.Date {
	d, err := taxcal.ParseDate(s)
	if err != nil {
		return taxcal.Date{}
	}
	return d
}

func parseDateNull(s sql.NullString) *taxcal.Date {
	if !s.Valid || s.String == "" {
		return nil
	}
	d := parseDate(s.String)
	return &d
}

func newID() string { return uuid.NewString() }

// =============================================================================
// CLIENTS
// =============================================================================

// ClientType distinguishes corporate (badan) from individual (op)
// clients; it selects which annual deadline applies.
type ClientType string

const (
	ClientBadan ClientType = "badan"
	ClientOp    ClientType = "op"
)

// Client is a tax-consulting client.
type Client struct {
	ID         string
	Name       string
	Npwp       string
	IsPkp      bool
	Type       ClientType
	AssignedTo string
	CreatedAt  time.Time
}

// SaveClient inserts or updates a client. A missing ID is generated.
func (s *Store) SaveClient(ctx context.Context, c *Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == "" {
		c.ID = newID()
	}
	if c.Type == "" {
		c.Type = ClientBadan
	}

	query := `
		INSERT INTO clients (id, name, npwp, is_pkp, client_type, assigned_to, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			npwp = excluded.npwp,
			is_pkp = excluded.is_pkp,
			client_type = excluded.client_type,
			assigned_to = excluded.assigned_to
	`
	_, err := s.db.ExecContext(ctx, query,
		c.ID, c.Name, c.Npwp, boolInt(c.IsPkp), string(c.Type), c.AssignedTo,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetClient retrieves a client by ID, nil when absent.
func (s *Store) GetClient(ctx context.Context, id string) (*Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, npwp, is_pkp, client_type, assigned_to, created_at FROM clients WHERE id = ?`, id)
	c, err := scanClient(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

// ListClients returns all clients ordered by name.
func (s *Store) ListClients(ctx context.Context) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClients(ctx,
		`SELECT id, name, npwp, is_pkp, client_type, assigned_to, created_at FROM clients ORDER BY name`)
}

// ListClientsByEmployee returns the clients assigned to one employee.
func (s *Store) ListClientsByEmployee(ctx context.Context, employeeID string) ([]Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryClients(ctx,
		`SELECT id, name, npwp, is_pkp, client_type, assigned_to, created_at FROM clients WHERE assigned_to = ? ORDER BY name`,
		employeeID)
}

func (s *Store) queryClients(ctx context.Context, query string, args ...any) ([]Client, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, *c)
	}
	return clients, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*Client, error) {
	var c Client
	var isPkp int
	var npwp, clientType, assignedTo, createdAt sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &npwp, &isPkp, &clientType, &assignedTo, &createdAt); err != nil {
		return nil, err
	}
	c.Npwp = npwp.String
	c.IsPkp = isPkp != 0
	c.Type = ClientType(clientType.String)
	c.AssignedTo = assignedTo.String
	if createdAt.Valid {
		c.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
	}
	return &c, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// Employee is a staff record. JoinDate feeds the SP escalation ladder
// via years of service.
type Employee struct {
	ID        string
	Name      string
	Email     string
	JoinDate  taxcal.Date
	CreatedAt time.Time
}

// SaveEmployee inserts or updates an employee. A missing ID is generated.
func (s *Store) SaveEmployee(ctx context.Context, e *Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID()
	}
	query := `
		INSERT INTO employees (id, name, email, join_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			join_date = excluded.join_date
	`
	_, err := s.db.ExecContext(ctx, query,
		e.ID, e.Name, e.Email, dateStr(e.JoinDate),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// GetEmployee retrieves an employee by ID, nil when absent.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, join_date, created_at FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

// ListEmployees returns all employees ordered by name.
func (s *Store) ListEmployees(ctx context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, email, join_date, created_at FROM employees ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var e Employee
	var email, joinDate, createdAt sql.NullString
	if err := row.Scan(&e.ID, &e.Name, &email, &joinDate, &createdAt); err != nil {
		return nil, err
	}
	e.Email = email.String
	if joinDate.Valid {
		e.JoinDate = parseDate(joinDate.String)
	}
	if createdAt.Valid {
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
	}
	return &e, nil
}

// =============================================================================
// TAX PERIODS
// =============================================================================

// PeriodRecord is a persisted tax period plus its row identity.
type PeriodRecord struct {
	ID       string
	ClientID string
	Archived bool
	Period   kpi.TaxPeriod
}

// obligationColumns whitelists the updatable obligation slots.
var obligationColumns = map[string]struct{}{
	"pph_payment": {}, "pph_filing": {},
	"ppn_payment": {}, "ppn_filing": {},
	"bookkeeping": {},
}

// SavePeriod inserts a period row. A missing ID is generated. The caller
// is expected to have filled deadlines already (see kpi.NewPeriod).
func (s *Store) SavePeriod(ctx context.Context, rec *PeriodRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newID()
	}
	p := rec.Period

	var ppnPayStatus, ppnFileStatus sql.NullString
	var ppnPayDeadline, ppnFileDeadline sql.NullString
	var ppnPayDone, ppnFileDone sql.NullString
	if p.Ppn != nil {
		ppnPayStatus = sql.NullString{String: string(p.Ppn.Payment.Status), Valid: true}
		ppnFileStatus = sql.NullString{String: string(p.Ppn.Filing.Status), Valid: true}
		ppnPayDeadline = sql.NullString{String: dateStr(p.Ppn.Payment.Deadline), Valid: true}
		ppnFileDeadline = sql.NullString{String: dateStr(p.Ppn.Filing.Deadline), Valid: true}
		ppnPayDone = dateNull(p.Ppn.Payment.CompletedAt)
		ppnFileDone = dateNull(p.Ppn.Filing.CompletedAt)
	}

	query := `
		INSERT INTO tax_periods (
			id, client_id, month, year,
			pph_payment_status, pph_payment_deadline, pph_payment_completed_at,
			pph_filing_status, pph_filing_deadline, pph_filing_completed_at,
			ppn_payment_status, ppn_payment_deadline, ppn_payment_completed_at,
			ppn_filing_status, ppn_filing_deadline, ppn_filing_completed_at,
			bookkeeping_status, bookkeeping_deadline, bookkeeping_completed_at,
			bookkeeping_owner_deadline, archived, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.ClientID, p.Month, p.Year,
		string(p.PphPayment.Status), dateStr(p.PphPayment.Deadline), dateNull(p.PphPayment.CompletedAt),
		string(p.PphFiling.Status), dateStr(p.PphFiling.Deadline), dateNull(p.PphFiling.CompletedAt),
		ppnPayStatus, ppnPayDeadline, ppnPayDone,
		ppnFileStatus, ppnFileDeadline, ppnFileDone,
		string(p.Bookkeeping.Status), dateStr(p.Bookkeeping.Deadline), dateNull(p.Bookkeeping.CompletedAt),
		dateStr(p.BookkeepingOwnerDeadline), boolInt(rec.Archived),
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

const periodColumns = `
	id, client_id, month, year,
	pph_payment_status, pph_payment_deadline, pph_payment_completed_at,
	pph_filing_status, pph_filing_deadline, pph_filing_completed_at,
	ppn_payment_status, ppn_payment_deadline, ppn_payment_completed_at,
	ppn_filing_status, ppn_filing_deadline, ppn_filing_completed_at,
	bookkeeping_status, bookkeeping_deadline, bookkeeping_completed_at,
	bookkeeping_owner_deadline, archived
`

func scanPeriod(row rowScanner) (*PeriodRecord, error) {
	var rec PeriodRecord
	var p kpi.TaxPeriod
	var archived int

	var pphPayStatus, pphPayDeadline string
	var pphPayDone sql.NullString
	var pphFileStatus, pphFileDeadline string
	var pphFileDone sql.NullString
	var ppnPayStatus, ppnPayDeadline, ppnPayDone sql.NullString
	var ppnFileStatus, ppnFileDeadline, ppnFileDone sql.NullString
	var bookStatus, bookDeadline string
	var bookDone sql.NullString
	var ownerDeadline string

	err := row.Scan(
		&rec.ID, &rec.ClientID, &p.Month, &p.Year,
		&pphPayStatus, &pphPayDeadline, &pphPayDone,
		&pphFileStatus, &pphFileDeadline, &pphFileDone,
		&ppnPayStatus, &ppnPayDeadline, &ppnPayDone,
		&ppnFileStatus, &ppnFileDeadline, &ppnFileDone,
		&bookStatus, &bookDeadline, &bookDone,
		&ownerDeadline, &archived,
	)
	if err != nil {
		return nil, err
	}

	p.PphPayment = kpi.Obligation{
		Status:      taxcal.ObligationStatus(pphPayStatus),
		Deadline:    parseDate(pphPayDeadline),
		CompletedAt: parseDateNull(pphPayDone),
	}
	p.PphFiling = kpi.Obligation{
		Status:      taxcal.ObligationStatus(pphFileStatus),
		Deadline:    parseDate(pphFileDeadline),
		CompletedAt: parseDateNull(pphFileDone),
	}
	if ppnPayDeadline.Valid {
		p.Ppn = &kpi.PpnObligations{
			Payment: kpi.Obligation{
				Status:      taxcal.ObligationStatus(ppnPayStatus.String),
				Deadline:    parseDate(ppnPayDeadline.String),
				CompletedAt: parseDateNull(ppnPayDone),
			},
			Filing: kpi.Obligation{
				Status:      taxcal.ObligationStatus(ppnFileStatus.String),
				Deadline:    parseDate(ppnFileDeadline.String),
				CompletedAt: parseDateNull(ppnFileDone),
			},
		}
	}
	p.Bookkeeping = kpi.Obligation{
		Status:      taxcal.ObligationStatus(bookStatus),
		Deadline:    parseDate(bookDeadline),
		CompletedAt: parseDateNull(bookDone),
	}
	p.BookkeepingOwnerDeadline = parseDate(ownerDeadline)

	rec.Archived = archived != 0
	rec.Period = p
	return &rec, nil
}

// GetPeriod retrieves one period row, nil when absent.
func (s *Store) GetPeriod(ctx context.Context, id string) (*PeriodRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT `+periodColumns+` FROM tax_periods WHERE id = ?`, id)
	rec, err := scanPeriod(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

// ListPeriodsByClient returns a client's periods for a year (all years
// when year is 0), oldest first.
func (s *Store) ListPeriodsByClient(ctx context.Context, clientID string, year int) ([]PeriodRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT ` + periodColumns + ` FROM tax_periods WHERE client_id = ?`
	args := []any{clientID}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY year, month`

	return s.queryPeriods(ctx, query, args...)
}

// ListPeriodsByEmployee returns every period belonging to the clients
// assigned to one employee, for a year (all years when 0).
func (s *Store) ListPeriodsByEmployee(ctx context.Context, employeeID string, year int) ([]PeriodRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT ` + periodColumns + ` FROM tax_periods
		WHERE client_id IN (SELECT id FROM clients WHERE assigned_to = ?)`
	args := []any{employeeID}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY year, month`

	return s.queryPeriods(ctx, query, args...)
}

func (s *Store) queryPeriods(ctx context.Context, query string, args ...any) ([]PeriodRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PeriodRecord
	for rows.Next() {
		rec, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// UpdateObligation sets the status (and optional completion day) of one
// obligation slot on a period. Archived periods reject updates, and the
// PPN slots stay NULL for non-PKP clients.
func (s *Store) UpdateObligation(ctx context.Context, periodID, obligation string, status taxcal.ObligationStatus, completedAt *taxcal.Date) error {
	if _, ok := obligationColumns[obligation]; !ok {
		return fmt.Errorf("unknown obligation %q", obligation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		UPDATE tax_periods
		SET %[1]s_status = ?, %[1]s_completed_at = ?
		WHERE id = ? AND archived = 0 AND %[1]s_status IS NOT NULL
	`, obligation)

	res, err := s.db.ExecContext(ctx, query, string(status), dateNull(completedAt), periodID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("period %s: obligation %q not updatable", periodID, obligation)
	}
	return nil
}

// ArchivePeriod freezes a period against further obligation updates.
func (s *Store) ArchivePeriod(ctx context.Context, periodID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE tax_periods SET archived = 1 WHERE id = ?`, periodID)
	return err
}

// =============================================================================
// ANNUAL FILINGS
// =============================================================================

// FilingRecord is a persisted annual filing.
type FilingRecord struct {
	ID       string
	ClientID string
	Filing   kpi.AnnualFiling
	FiledAt  *taxcal.Date
}

// UpsertAnnualFiling creates or updates the filing row for (client, year).
func (s *Store) UpsertAnnualFiling(ctx context.Context, rec *FilingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newID()
	}
	query := `
		INSERT INTO annual_filings (id, client_id, year, status, filed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(client_id, year) DO UPDATE SET
			status = excluded.status,
			filed_at = excluded.filed_at
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.ClientID, rec.Filing.Year, string(rec.Filing.Status), dateNull(rec.FiledAt))
	return err
}

// ListFilingsByEmployee returns the annual filings of every client
// assigned to one employee, for a year (all years when 0).
func (s *Store) ListFilingsByEmployee(ctx context.Context, employeeID string, year int) ([]FilingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, client_id, year, status, filed_at FROM annual_filings
		WHERE client_id IN (SELECT id FROM clients WHERE assigned_to = ?)`
	args := []any{employeeID}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}

	return s.queryFilings(ctx, query, args...)
}

// ListFilingsByClient returns a client's annual filings, oldest first.
func (s *Store) ListFilingsByClient(ctx context.Context, clientID string) ([]FilingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.queryFilings(ctx,
		`SELECT id, client_id, year, status, filed_at FROM annual_filings WHERE client_id = ? ORDER BY year`,
		clientID)
}

func (s *Store) queryFilings(ctx context.Context, query string, args ...any) ([]FilingRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []FilingRecord
	for rows.Next() {
		var rec FilingRecord
		var status string
		var filedAt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ClientID, &rec.Filing.Year, &status, &filedAt); err != nil {
			return nil, err
		}
		rec.Filing.Status = kpi.FilingStatus(status)
		rec.FiledAt = parseDateNull(filedAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// JOBDESKS
// =============================================================================

// JobdeskRecord is a persisted jobdesk plus its assignment metadata.
type JobdeskRecord struct {
	ID         string
	EmployeeID string
	ClientID   string
	Title      string
	TaskType   taxcal.TaskType
	Month      int
	Year       int
	Jobdesk    kpi.Jobdesk
}

// SaveJobdesk inserts or updates a jobdesk. A missing ID is generated;
// a missing due date is derived from the task type and period.
func (s *Store) SaveJobdesk(ctx context.Context, rec *JobdeskRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = newID()
	}
	if rec.Jobdesk.DueDate.IsZero() && rec.TaskType != "" {
		rec.Jobdesk.DueDate = taxcal.TaskDeadline(rec.TaskType, rec.Month, rec.Year)
	}
	if rec.Jobdesk.Status == "" {
		rec.Jobdesk.Status = kpi.JobdeskOpen
	}

	query := `
		INSERT INTO jobdesks (id, employee_id, client_id, title, task_type, month, year,
			target_hours, actual_hours, due_date, completed_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			target_hours = excluded.target_hours,
			actual_hours = excluded.actual_hours,
			due_date = excluded.due_date,
			completed_at = excluded.completed_at,
			status = excluded.status
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.EmployeeID, rec.ClientID, rec.Title, string(rec.TaskType), rec.Month, rec.Year,
		rec.Jobdesk.TargetHours, rec.Jobdesk.ActualHours,
		dateStr(rec.Jobdesk.DueDate), dateNull(rec.Jobdesk.CompletedAt), string(rec.Jobdesk.Status))
	return err
}

// ListJobdesksByEmployee returns an employee's jobdesks for a year
// (all years when 0).
func (s *Store) ListJobdesksByEmployee(ctx context.Context, employeeID string, year int) ([]JobdeskRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, employee_id, client_id, title, task_type, month, year,
			target_hours, actual_hours, due_date, completed_at, status
		FROM jobdesks WHERE employee_id = ?`
	args := []any{employeeID}
	if year != 0 {
		query += ` AND year = ?`
		args = append(args, year)
	}
	query += ` ORDER BY year, month`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []JobdeskRecord
	for rows.Next() {
		var rec JobdeskRecord
		var clientID, taskType, dueDate, status, completedAt sql.NullString
		if err := rows.Scan(&rec.ID, &rec.EmployeeID, &clientID, &rec.Title, &taskType,
			&rec.Month, &rec.Year, &rec.Jobdesk.TargetHours, &rec.Jobdesk.ActualHours,
			&dueDate, &completedAt, &status); err != nil {
			return nil, err
		}
		rec.ClientID = clientID.String
		rec.TaskType = taxcal.TaskType(taskType.String)
		rec.Jobdesk.DueDate = parseDate(dueDate.String)
		rec.Jobdesk.CompletedAt = parseDateNull(completedAt)
		rec.Jobdesk.Status = kpi.JobdeskStatus(status.String)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// =============================================================================
// PENALTY LETTERS
// =============================================================================

// WarningLetter is a disciplinary penalty event against an employee.
type WarningLetter struct {
	ID         string
	EmployeeID string
	ClientID   string
	LetterDate taxcal.Date
	Reason     string
}

// SaveWarningLetter records a warning letter.
func (s *Store) SaveWarningLetter(ctx context.Context, w *WarningLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.ID == "" {
		w.ID = newID()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO warning_letters (id, employee_id, client_id, letter_date, reason) VALUES (?, ?, ?, ?, ?)`,
		w.ID, w.EmployeeID, w.ClientID, dateStr(w.LetterDate), w.Reason)
	return err
}

// CountWarningLetters counts an employee's warning letters in a year.
func (s *Store) CountWarningLetters(ctx context.Context, employeeID string, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM warning_letters WHERE employee_id = ? AND letter_date LIKE ?`,
		employeeID, fmt.Sprintf("%04d-%%", year)).Scan(&n)
	return n, err
}

// Sp2dkLetter is a tax-authority clarification letter for a client. The
// response deadline is the letter date plus 14 calendar days.
type Sp2dkLetter struct {
	ID               string
	ClientID         string
	EmployeeID       string
	LetterDate       taxcal.Date
	ResponseDeadline taxcal.Date
}

// SaveSp2dkLetter records an SP2DK letter, deriving the response
// deadline when unset.
func (s *Store) SaveSp2dkLetter(ctx context.Context, l *Sp2dkLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == "" {
		l.ID = newID()
	}
	if l.ResponseDeadline.IsZero() {
		l.ResponseDeadline = taxcal.Sp2dkDeadline(l.LetterDate)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sp2dk_letters (id, client_id, employee_id, letter_date, response_deadline) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.ClientID, l.EmployeeID, dateStr(l.LetterDate), dateStr(l.ResponseDeadline))
	return err
}

// CountSp2dkLetters counts SP2DK letters attributed to an employee in a year.
func (s *Store) CountSp2dkLetters(ctx context.Context, employeeID string, year int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sp2dk_letters WHERE employee_id = ? AND letter_date LIKE ?`,
		employeeID, fmt.Sprintf("%04d-%%", year)).Scan(&n)
	return n, err
}

// =============================================================================
// RESET
// =============================================================================

// Reset wipes every table. Used by demo scenario loading and tests.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{
		"sp2dk_letters", "warning_letters", "jobdesks",
		"annual_filings", "tax_periods", "employees", "clients",
	}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	return nil
}
