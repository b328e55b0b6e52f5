/*
Package sqlite provides a SQLite-backed implementation of leave.Store.

PURPOSE:
  Implements the persistence boundary for the leave engine using SQLite.
  In production the same patterns apply to PostgreSQL - only minor SQL
  dialect differences (SELECT ... FOR UPDATE instead of the store-level
  write lock).

KEY TABLES:
  leave_balances:  One row per (org, employee, leave type, year). The
                   UNIQUE index on that key makes lazy get-or-create
                   race-safe: insert-or-ignore, then re-read.
  leave_requests:  Requests across the approval workflow. Never deleted;
                   cancellation is a status, not a removal.
  accrual_marks:   One row per credited accrual period, so scheduler
                   sweeps stay idempotent.
  employees:       Directory slice (identity + manager relationship).
  leave_types:     Policy records.

CONCURRENCY:
  WithTx holds the store write lock plus a database transaction for the
  whole read-validate-write sequence, so lifecycle transitions against
  the same balance row serialize. Readers take the read lock.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/leave.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := leave.NewService(store)

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - leave/store.go: Interface definitions and transactional contract
  - leave/service.go: Lifecycle service built on WithTx
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/Toumasadio2/PME-SI/leave"
)

const (
	dateFormat = "2006-01-02"
	timeFormat = time.RFC3339
)

// Store implements leave.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: a fresh pooled connection to ":memory:" would be a
	// separate empty database, and the store serializes writes anyway.
	db.SetMaxOpenConns(1)

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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT,
		manager_id TEXT,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_org
		ON employees(org_id);
	CREATE INDEX IF NOT EXISTS idx_employees_manager
		ON employees(org_id, manager_id);

	CREATE TABLE IF NOT EXISTS leave_types (
		id TEXT NOT NULL,
		org_id TEXT NOT NULL,
		code TEXT NOT NULL,
		name TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT TRUE,
		requires_approval BOOLEAN NOT NULL DEFAULT TRUE,
		max_days_per_year TEXT,
		accrual_rate TEXT NOT NULL DEFAULT '0',
		color TEXT NOT NULL DEFAULT '#3B82F6',
		PRIMARY KEY (org_id, id)
	);

	-- Ledger entries. The unique key is what makes lazy get-or-create
	-- race-safe under concurrent first access.
	CREATE TABLE IF NOT EXISTS leave_balances (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		acquired TEXT NOT NULL DEFAULT '0',
		carried_over TEXT NOT NULL DEFAULT '0',
		taken TEXT NOT NULL DEFAULT '0',
		pending TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(org_id, employee_id, leave_type_id, year)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		start_half_day BOOLEAN NOT NULL DEFAULT FALSE,
		end_half_day BOOLEAN NOT NULL DEFAULT FALSE,
		days_count TEXT NOT NULL,
		reason TEXT,
		status TEXT NOT NULL DEFAULT 'DRAFT',
		approver_id TEXT,
		approved_at TEXT,
		rejection_reason TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(org_id, employee_id);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(org_id, status);
	CREATE INDEX IF NOT EXISTS idx_requests_period
		ON leave_requests(org_id, start_date, end_date);

	-- One row per credited accrual period, for idempotent sweeps.
	CREATE TABLE IF NOT EXISTS accrual_marks (
		id TEXT PRIMARY KEY,
		org_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		leave_type_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(org_id, employee_id, leave_type_id, year, month)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONAL BOUNDARY
// =============================================================================

// WithTx executes fn within a database transaction, holding the store
// write lock for the entire read-validate-write sequence.
func (s *Store) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{q: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// querier is the common query surface of *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// txStore is the transaction-bound view handed to WithTx callbacks.
// It takes no locks: the enclosing WithTx already holds the write lock.
type txStore struct {
	q *sql.Tx
}

// WithTx on a transaction-bound view joins the enclosing transaction.
func (ts *txStore) WithTx(ctx context.Context, fn func(leave.Store) error) error {
	return fn(ts)
}

// =============================================================================
// BALANCES
// =============================================================================

func (s *Store) GetOrCreateBalance(ctx context.Context, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int) (*leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return getOrCreateBalance(ctx, s.db, org, employee, leaveType, year)
}

func (ts *txStore) GetOrCreateBalance(ctx context.Context, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int) (*leave.Balance, error) {
	return getOrCreateBalance(ctx, ts.q, org, employee, leaveType, year)
}

func getOrCreateBalance(ctx context.Context, q querier, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int) (*leave.Balance, error) {
	// Insert-or-ignore then re-read: concurrent first accesses converge
	// on the single row the unique key admits.
	now := time.Now().UTC().Format(timeFormat)
	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_balances
			(id, org_id, employee_id, leave_type_id, year, acquired, carried_over, taken, pending, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, '0', '0', '0', '0', ?, ?)
		ON CONFLICT(org_id, employee_id, leave_type_id, year) DO NOTHING
	`, uuid.NewString(), org, employee, leaveType, year, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create balance: %w", err)
	}

	row := q.QueryRowContext(ctx, `
		SELECT id, org_id, employee_id, leave_type_id, year,
		       acquired, carried_over, taken, pending, created_at, updated_at
		FROM leave_balances
		WHERE org_id = ? AND employee_id = ? AND leave_type_id = ? AND year = ?
	`, org, employee, leaveType, year)

	var (
		b                                 leave.Balance
		acquired, carried, taken, pending string
		createdAt, updatedAt              string
	)
	if err := row.Scan(&b.ID, &b.OrgID, &b.EmployeeID, &b.LeaveTypeID, &b.Year,
		&acquired, &carried, &taken, &pending, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to load balance: %w", err)
	}

	b.Acquired = mustDecimal(acquired)
	b.CarriedOver = mustDecimal(carried)
	b.Taken = mustDecimal(taken)
	b.Pending = mustDecimal(pending)
	b.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	b.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return &b, nil
}

func (s *Store) UpdateBalance(ctx context.Context, b *leave.Balance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateBalance(ctx, s.db, b)
}

func (ts *txStore) UpdateBalance(ctx context.Context, b *leave.Balance) error {
	return updateBalance(ctx, ts.q, b)
}

func updateBalance(ctx context.Context, q querier, b *leave.Balance) error {
	b.UpdatedAt = time.Now().UTC()
	res, err := q.ExecContext(ctx, `
		UPDATE leave_balances
		SET acquired = ?, carried_over = ?, taken = ?, pending = ?, updated_at = ?
		WHERE id = ?
	`, b.Acquired.String(), b.CarriedOver.String(), b.Taken.String(), b.Pending.String(),
		b.UpdatedAt.Format(timeFormat), b.ID)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("balance %s does not exist", b.ID)
	}
	return nil
}

func (s *Store) MarkAccrual(ctx context.Context, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int, month time.Month) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markAccrual(ctx, s.db, org, employee, leaveType, year, month)
}

func (ts *txStore) MarkAccrual(ctx context.Context, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int, month time.Month) (bool, error) {
	return markAccrual(ctx, ts.q, org, employee, leaveType, year, month)
}

func markAccrual(ctx context.Context, q querier, org leave.OrgID, employee leave.EmployeeID, leaveType leave.LeaveTypeID, year int, month time.Month) (bool, error) {
	res, err := q.ExecContext(ctx, `
		INSERT INTO accrual_marks (id, org_id, employee_id, leave_type_id, year, month, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, employee_id, leave_type_id, year, month) DO NOTHING
	`, uuid.NewString(), org, employee, leaveType, year, int(month),
		time.Now().UTC().Format(timeFormat))
	if err != nil {
		return false, fmt.Errorf("failed to mark accrual: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// REQUESTS
// =============================================================================

const requestColumns = `id, org_id, employee_id, leave_type_id, start_date, end_date,
	start_half_day, end_half_day, days_count, reason, status,
	approver_id, approved_at, rejection_reason, created_at, updated_at`

func (s *Store) SaveRequest(ctx context.Context, r *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRequest(ctx, s.db, r)
}

func (ts *txStore) SaveRequest(ctx context.Context, r *leave.Request) error {
	return saveRequest(ctx, ts.q, r)
}

func saveRequest(ctx context.Context, q querier, r *leave.Request) error {
	var approvedAt any
	if r.ApprovedAt != nil {
		approvedAt = r.ApprovedAt.UTC().Format(timeFormat)
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_requests (`+requestColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			approver_id = excluded.approver_id,
			approved_at = excluded.approved_at,
			rejection_reason = excluded.rejection_reason,
			updated_at = excluded.updated_at
	`,
		r.ID, r.OrgID, r.EmployeeID, r.LeaveTypeID,
		r.StartDate.Format(dateFormat), r.EndDate.Format(dateFormat),
		r.StartHalfDay, r.EndHalfDay, r.DaysCount.String(),
		nullString(r.Reason), r.Status,
		nullString(r.ApproverID), approvedAt, nullString(r.RejectionReason),
		r.CreatedAt.UTC().Format(timeFormat), r.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to save request: %w", err)
	}
	return nil
}

func (s *Store) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getRequest(ctx, s.db, id)
}

func (ts *txStore) GetRequest(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	return getRequest(ctx, ts.q, id)
}

func getRequest(ctx context.Context, q querier, id leave.RequestID) (*leave.Request, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT `+requestColumns+` FROM leave_requests WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query request: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, leave.ErrRequestNotFound
	}
	r, err := scanRequest(rows)
	if err != nil {
		return nil, err
	}
	return &r, rows.Err()
}

func (s *Store) ListRequestsByEmployee(ctx context.Context, org leave.OrgID, employee leave.EmployeeID) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, listByEmployeeQuery, org, employee)
}

func (ts *txStore) ListRequestsByEmployee(ctx context.Context, org leave.OrgID, employee leave.EmployeeID) ([]leave.Request, error) {
	return queryRequests(ctx, ts.q, listByEmployeeQuery, org, employee)
}

const listByEmployeeQuery = `SELECT ` + requestColumns + ` FROM leave_requests
	WHERE org_id = ? AND employee_id = ?
	ORDER BY created_at DESC, id DESC`

func (s *Store) ListPendingRequests(ctx context.Context, org leave.OrgID) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRequests(ctx, s.db, listPendingQuery, org, leave.StatusPending)
}

func (ts *txStore) ListPendingRequests(ctx context.Context, org leave.OrgID) ([]leave.Request, error) {
	return queryRequests(ctx, ts.q, listPendingQuery, org, leave.StatusPending)
}

const listPendingQuery = `SELECT ` + requestColumns + ` FROM leave_requests
	WHERE org_id = ? AND status = ?
	ORDER BY created_at ASC, id ASC`

func (s *Store) ListRequestsOverlapping(ctx context.Context, org leave.OrgID, employees []leave.EmployeeID, from, to time.Time, statuses []leave.RequestStatus) ([]leave.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listRequestsOverlapping(ctx, s.db, org, employees, from, to, statuses)
}

func (ts *txStore) ListRequestsOverlapping(ctx context.Context, org leave.OrgID, employees []leave.EmployeeID, from, to time.Time, statuses []leave.RequestStatus) ([]leave.Request, error) {
	return listRequestsOverlapping(ctx, ts.q, org, employees, from, to, statuses)
}

func listRequestsOverlapping(ctx context.Context, q querier, org leave.OrgID, employees []leave.EmployeeID, from, to time.Time, statuses []leave.RequestStatus) ([]leave.Request, error) {
	if len(employees) == 0 || len(statuses) == 0 {
		return nil, nil
	}

	args := []any{org}
	for _, e := range employees {
		args = append(args, e)
	}
	for _, st := range statuses {
		args = append(args, st)
	}
	// Interval overlap: start <= to AND end >= from.
	args = append(args, to.Format(dateFormat), from.Format(dateFormat))

	query := `SELECT ` + requestColumns + ` FROM leave_requests
		WHERE org_id = ?
		  AND employee_id IN (` + placeholders(len(employees)) + `)
		  AND status IN (` + placeholders(len(statuses)) + `)
		  AND start_date <= ? AND end_date >= ?
		ORDER BY start_date ASC, id ASC`

	return queryRequests(ctx, q, query, args...)
}

func queryRequests(ctx context.Context, q querier, query string, args ...any) ([]leave.Request, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func scanRequest(rows *sql.Rows) (leave.Request, error) {
	var (
		r                                   leave.Request
		startDate, endDate, daysCount       string
		reason, approverID, rejectionReason sql.NullString
		approvedAt                          sql.NullString
		createdAt, updatedAt                string
	)

	err := rows.Scan(
		&r.ID, &r.OrgID, &r.EmployeeID, &r.LeaveTypeID,
		&startDate, &endDate, &r.StartHalfDay, &r.EndHalfDay,
		&daysCount, &reason, &r.Status,
		&approverID, &approvedAt, &rejectionReason,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return r, fmt.Errorf("failed to scan request: %w", err)
	}

	r.StartDate, _ = time.Parse(dateFormat, startDate)
	r.EndDate, _ = time.Parse(dateFormat, endDate)
	r.DaysCount = mustDecimal(daysCount)
	r.Reason = reason.String
	r.ApproverID = approverID.String
	r.RejectionReason = rejectionReason.String
	if approvedAt.Valid {
		t, _ := time.Parse(timeFormat, approvedAt.String)
		r.ApprovedAt = &t
	}
	r.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	r.UpdatedAt, _ = time.Parse(timeFormat, updatedAt)
	return r, nil
}

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEmployee(ctx, s.db, e)
}

func (ts *txStore) SaveEmployee(ctx context.Context, e leave.Employee) error {
	return saveEmployee(ctx, ts.q, e)
}

func saveEmployee(ctx context.Context, q querier, e leave.Employee) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO employees (id, org_id, name, email, manager_id, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			manager_id = excluded.manager_id,
			active = excluded.active
	`, e.ID, e.OrgID, e.Name, nullString(e.Email), nullString(string(e.ManagerID)),
		e.Active, time.Now().UTC().Format(timeFormat))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) GetEmployee(ctx context.Context, org leave.OrgID, id leave.EmployeeID) (*leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEmployee(ctx, s.db, org, id)
}

func (ts *txStore) GetEmployee(ctx context.Context, org leave.OrgID, id leave.EmployeeID) (*leave.Employee, error) {
	return getEmployee(ctx, ts.q, org, id)
}

func getEmployee(ctx context.Context, q querier, org leave.OrgID, id leave.EmployeeID) (*leave.Employee, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, org_id, name, email, manager_id, active, created_at
		FROM employees WHERE org_id = ? AND id = ?
	`, org, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query employee: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, leave.ErrEmployeeNotFound
	}
	e, err := scanEmployee(rows)
	if err != nil {
		return nil, err
	}
	return &e, rows.Err()
}

func (s *Store) ListEmployees(ctx context.Context, org leave.OrgID) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEmployees(ctx, s.db, `
		SELECT id, org_id, name, email, manager_id, active, created_at
		FROM employees WHERE org_id = ? ORDER BY name
	`, org)
}

func (ts *txStore) ListEmployees(ctx context.Context, org leave.OrgID) ([]leave.Employee, error) {
	return queryEmployees(ctx, ts.q, `
		SELECT id, org_id, name, email, manager_id, active, created_at
		FROM employees WHERE org_id = ? ORDER BY name
	`, org)
}

func (s *Store) ListDirectReports(ctx context.Context, org leave.OrgID, manager leave.EmployeeID) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEmployees(ctx, s.db, `
		SELECT id, org_id, name, email, manager_id, active, created_at
		FROM employees WHERE org_id = ? AND manager_id = ? ORDER BY name
	`, org, manager)
}

func (ts *txStore) ListDirectReports(ctx context.Context, org leave.OrgID, manager leave.EmployeeID) ([]leave.Employee, error) {
	return queryEmployees(ctx, ts.q, `
		SELECT id, org_id, name, email, manager_id, active, created_at
		FROM employees WHERE org_id = ? AND manager_id = ? ORDER BY name
	`, org, manager)
}

func queryEmployees(ctx context.Context, q querier, query string, args ...any) ([]leave.Employee, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var employees []leave.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func scanEmployee(rows *sql.Rows) (leave.Employee, error) {
	var (
		e                leave.Employee
		email, managerID sql.NullString
		createdAt        string
	)
	if err := rows.Scan(&e.ID, &e.OrgID, &e.Name, &email, &managerID, &e.Active, &createdAt); err != nil {
		return e, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.Email = email.String
	e.ManagerID = leave.EmployeeID(managerID.String)
	e.CreatedAt, _ = time.Parse(timeFormat, createdAt)
	return e, nil
}

func (s *Store) SaveLeaveType(ctx context.Context, org leave.OrgID, p leave.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLeaveType(ctx, s.db, org, p)
}

func (ts *txStore) SaveLeaveType(ctx context.Context, org leave.OrgID, p leave.Policy) error {
	return saveLeaveType(ctx, ts.q, org, p)
}

func saveLeaveType(ctx context.Context, q querier, org leave.OrgID, p leave.Policy) error {
	var maxDays any
	if p.MaxDaysPerYear != nil {
		maxDays = p.MaxDaysPerYear.String()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_types (id, org_id, code, name, is_paid, requires_approval, max_days_per_year, accrual_rate, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(org_id, id) DO UPDATE SET
			code = excluded.code,
			name = excluded.name,
			is_paid = excluded.is_paid,
			requires_approval = excluded.requires_approval,
			max_days_per_year = excluded.max_days_per_year,
			accrual_rate = excluded.accrual_rate,
			color = excluded.color
	`, p.ID, org, p.Code, p.Name, p.IsPaid, p.RequiresApproval, maxDays,
		p.AccrualRate.String(), p.Color)
	if err != nil {
		return fmt.Errorf("failed to save leave type: %w", err)
	}
	return nil
}

func (s *Store) GetLeaveType(ctx context.Context, org leave.OrgID, id leave.LeaveTypeID) (*leave.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLeaveType(ctx, s.db, org, id)
}

func (ts *txStore) GetLeaveType(ctx context.Context, org leave.OrgID, id leave.LeaveTypeID) (*leave.Policy, error) {
	return getLeaveType(ctx, ts.q, org, id)
}

func getLeaveType(ctx context.Context, q querier, org leave.OrgID, id leave.LeaveTypeID) (*leave.Policy, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, code, name, is_paid, requires_approval, max_days_per_year, accrual_rate, color
		FROM leave_types WHERE org_id = ? AND id = ?
	`, org, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave type: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, leave.ErrLeaveTypeNotFound
	}
	p, err := scanLeaveType(rows)
	if err != nil {
		return nil, err
	}
	return &p, rows.Err()
}

func (s *Store) ListLeaveTypes(ctx context.Context, org leave.OrgID) ([]leave.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listLeaveTypes(ctx, s.db, org)
}

func (ts *txStore) ListLeaveTypes(ctx context.Context, org leave.OrgID) ([]leave.Policy, error) {
	return listLeaveTypes(ctx, ts.q, org)
}

func listLeaveTypes(ctx context.Context, q querier, org leave.OrgID) ([]leave.Policy, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, code, name, is_paid, requires_approval, max_days_per_year, accrual_rate, color
		FROM leave_types WHERE org_id = ? ORDER BY name
	`, org)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave types: %w", err)
	}
	defer rows.Close()

	var policies []leave.Policy
	for rows.Next() {
		p, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

func scanLeaveType(rows *sql.Rows) (leave.Policy, error) {
	var (
		p           leave.Policy
		maxDays     sql.NullString
		accrualRate string
	)
	if err := rows.Scan(&p.ID, &p.Code, &p.Name, &p.IsPaid, &p.RequiresApproval,
		&maxDays, &accrualRate, &p.Color); err != nil {
		return p, fmt.Errorf("failed to scan leave type: %w", err)
	}
	if maxDays.Valid {
		v := mustDecimal(maxDays.String)
		p.MaxDaysPerYear = &v
	}
	p.AccrualRate = mustDecimal(accrualRate)
	return p, nil
}

// =============================================================================
// SEED
// =============================================================================

// Seed loads a small demo organization: three employees reporting to a
// manager and two leave types. Idempotent.
func (s *Store) Seed(ctx context.Context, org leave.OrgID) error {
	twentyFive := decimal.NewFromInt(25)

	types := []leave.Policy{
		{
			ID: "pto", Code: "CP", Name: "Congés payés",
			IsPaid: true, RequiresApproval: true,
			MaxDaysPerYear: &twentyFive,
			AccrualRate:    decimal.RequireFromString("2.08"),
			Color:          "#3B82F6",
		},
		{
			ID: "sick", Code: "MAL", Name: "Arrêt maladie",
			IsPaid: true, RequiresApproval: false,
			AccrualRate: decimal.Zero,
			Color:       "#EF4444",
		},
	}
	for _, p := range types {
		if err := s.SaveLeaveType(ctx, org, p); err != nil {
			return err
		}
	}

	employees := []leave.Employee{
		{ID: "emp-claire", OrgID: org, Name: "Claire Fontaine", Email: "claire@example.com", Active: true},
		{ID: "emp-ahmed", OrgID: org, Name: "Ahmed Ziani", Email: "ahmed@example.com", ManagerID: "emp-claire", Active: true},
		{ID: "emp-ines", OrgID: org, Name: "Inès Laurent", Email: "ines@example.com", ManagerID: "emp-claire", Active: true},
		{ID: "emp-marc", OrgID: org, Name: "Marc Dubois", Email: "marc@example.com", ManagerID: "emp-claire", Active: true},
	}
	for _, e := range employees {
		if err := s.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
