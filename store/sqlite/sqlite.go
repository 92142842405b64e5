/*
Package sqlite provides the SQLite-backed persistence layer.

PURPOSE:
  Implements vacation.Store plus the simple CRUD surfaces (users,
  departments, policy assignments, work logs) on database/sql with the
  mattn/go-sqlite3 driver. The same patterns port to PostgreSQL with only
  dialect changes.

KEY TABLES:
  vacation_policies:  Leave-type configurations
  users, departments: Organization records
  user_policies:      Policy-to-user assignments
  vacation_grants:    Requests and manual grants
  approvals:          Ordered approver slots per grant
  work_logs:          Work-history entries

IDEMPOTENCY:
  vacation_grants.idempotency_key carries a UNIQUE index; a replayed
  submission is resolved to the original row before insert.

WAL MODE:
  The database is opened with WAL journaling: multiple readers don't
  block, single writer at a time, better crash recovery.

CONCURRENCY:
  A sync.RWMutex serializes writers. With PostgreSQL the database's own
  concurrency control would take over.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil { ... }
  defer store.Close()

SEE ALSO:
  - vacation/types.go: The Store interface this implements
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warden/hr-engine/approval"
	"github.com/warden/hr-engine/granttime"
	"github.com/warden/hr-engine/policy"
	"github.com/warden/hr-engine/vacation"
)

// Store implements the persistence interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
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
	-- Vacation policies
	CREATE TABLE IF NOT EXISTS vacation_policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		vacation_type TEXT NOT NULL,
		grant_method TEXT NOT NULL,
		grant_time TEXT,
		is_flexible_grant TEXT NOT NULL DEFAULT 'N',
		minute_grant_yn TEXT NOT NULL DEFAULT 'N',
		approval_required_count INTEGER NOT NULL DEFAULT 0,
		effective_type TEXT,
		expiration_type TEXT,
		repeat_unit TEXT,
		repeat_interval INTEGER,
		specific_months INTEGER,
		specific_days INTEGER,
		first_grant_date TEXT,
		is_recurring TEXT,
		max_grant_count INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_policies_grant_method
		ON vacation_policies(grant_method);

	-- Departments
	CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id TEXT,
		created_at TEXT NOT NULL
	);

	-- Users
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department_id TEXT,
		approver_yn TEXT NOT NULL DEFAULT 'N',
		auto_approval_yn TEXT NOT NULL DEFAULT 'N',
		hire_date TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_department
		ON users(department_id);

	-- Policy assignments
	CREATE TABLE IF NOT EXISTS user_policies (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(user_id, policy_id)
	);

	CREATE INDEX IF NOT EXISTS idx_user_policies_user
		ON user_policies(user_id);

	-- Vacation grants (requests and manual grants)
	CREATE TABLE IF NOT EXISTS vacation_grants (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		policy_id TEXT NOT NULL,
		grant_time TEXT,
		grant_date TEXT,
		expiry_date TEXT,
		request_start_time TEXT,
		request_end_time TEXT,
		description TEXT,
		request_desc TEXT,
		grant_status TEXT NOT NULL,
		idempotency_key TEXT,
		create_date TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_grants_user
		ON vacation_grants(user_id);
	CREATE INDEX IF NOT EXISTS idx_grants_status
		ON vacation_grants(grant_status);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_grants_idempotency
		ON vacation_grants(idempotency_key) WHERE idempotency_key IS NOT NULL;

	-- Approver slots, evaluated strictly by approval_order
	CREATE TABLE IF NOT EXISTS approvals (
		approval_id TEXT PRIMARY KEY,
		grant_id TEXT NOT NULL,
		approver_id TEXT NOT NULL,
		approval_order INTEGER NOT NULL,
		approval_status TEXT NOT NULL DEFAULT 'PENDING',
		approval_date TEXT,
		rejection_reason TEXT,
		UNIQUE(grant_id, approval_order)
	);

	CREATE INDEX IF NOT EXISTS idx_approvals_grant
		ON approvals(grant_id);
	CREATE INDEX IF NOT EXISTS idx_approvals_approver
		ON approvals(approver_id);

	-- Company holidays
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		holiday_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(holiday_date, name)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_date
		ON holidays(holiday_date);

	-- Work-history entries
	CREATE TABLE IF NOT EXISTS work_logs (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		work_code TEXT NOT NULL,
		work_date TEXT NOT NULL,
		start_time TEXT,
		end_time TEXT,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_work_logs_user_date
		ON work_logs(user_id, work_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// POLICIES
// =============================================================================

// SavePolicy inserts or replaces a policy.
func (s *Store) SavePolicy(ctx context.Context, p *policy.Policy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var (
		repeatUnit     sql.NullString
		repeatInterval sql.NullInt64
		specificMonths sql.NullInt64
		specificDays   sql.NullInt64
		maxGrantCount  sql.NullInt64
		firstGrantDate sql.NullString
		isRecurring    sql.NullString
	)
	if p.Repeat != nil {
		repeatUnit = sql.NullString{String: string(p.Repeat.Unit), Valid: true}
		repeatInterval = sql.NullInt64{Int64: int64(p.Repeat.Interval), Valid: true}
		specificMonths = sql.NullInt64{Int64: int64(p.Repeat.SpecificMonths), Valid: true}
		specificDays = sql.NullInt64{Int64: int64(p.Repeat.SpecificDays), Valid: true}
		maxGrantCount = sql.NullInt64{Int64: int64(p.Repeat.MaxGrantCount), Valid: true}
		isRecurring = sql.NullString{String: policy.YN(p.Repeat.Recurring), Valid: true}
		if p.Repeat.FirstGrantDate != nil {
			firstGrantDate = sql.NullString{String: p.Repeat.FirstGrantDate.Format(vacation.DateFormat), Valid: true}
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO vacation_policies
		(id, name, description, vacation_type, grant_method, grant_time,
		 is_flexible_grant, minute_grant_yn, approval_required_count,
		 effective_type, expiration_type, repeat_unit, repeat_interval,
		 specific_months, specific_days, first_grant_date, is_recurring,
		 max_grant_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.Name, p.Desc, string(p.VacationType), string(p.GrantMethod),
		nullGrantTime(p.GrantTime), policy.YN(p.FlexibleGrant), policy.YN(p.MinuteGrant),
		p.ApprovalRequiredCount, p.EffectiveType, p.ExpirationType,
		repeatUnit, repeatInterval, specificMonths, specificDays,
		firstGrantDate, isRecurring, maxGrantCount,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save policy: %w", err)
	}
	return nil
}

// GetPolicy loads one policy. Returns nil when not found.
func (s *Store) GetPolicy(ctx context.Context, id string) (*policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, policySelect+` WHERE id = ?`, id)
	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListPolicies returns all policies, newest first.
func (s *Store) ListPolicies(ctx context.Context) ([]policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, policySelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer rows.Close()

	var out []policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeletePolicy removes a policy.
func (s *Store) DeletePolicy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM vacation_policies WHERE id = ?`, id)
	return err
}

const policySelect = `
	SELECT id, name, description, vacation_type, grant_method, grant_time,
	       is_flexible_grant, minute_grant_yn, approval_required_count,
	       effective_type, expiration_type, repeat_unit, repeat_interval,
	       specific_months, specific_days, first_grant_date, is_recurring,
	       max_grant_count, created_at
	FROM vacation_policies`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPolicy(row rowScanner) (*policy.Policy, error) {
	var (
		p              policy.Policy
		desc           sql.NullString
		grantTime      sql.NullString
		flexible       string
		minuteGrant    string
		effectiveType  sql.NullString
		expirationType sql.NullString
		repeatUnit     sql.NullString
		firstGrantDate sql.NullString
		isRecurring    sql.NullString
		repeatInterval sql.NullInt64
		specificMonths sql.NullInt64
		specificDays   sql.NullInt64
		maxGrantCount  sql.NullInt64
		createdAt      string
		vacationType   string
		grantMethod    string
	)

	err := row.Scan(&p.ID, &p.Name, &desc, &vacationType, &grantMethod, &grantTime,
		&flexible, &minuteGrant, &p.ApprovalRequiredCount,
		&effectiveType, &expirationType, &repeatUnit, &repeatInterval,
		&specificMonths, &specificDays, &firstGrantDate, &isRecurring,
		&maxGrantCount, &createdAt)
	if err != nil {
		return nil, err
	}

	p.Desc = desc.String
	p.VacationType = policy.VacationType(vacationType)
	p.GrantMethod = policy.GrantMethod(grantMethod)
	p.GrantTime = parseGrantTime(grantTime)
	p.FlexibleGrant = policy.IsYes(flexible)
	p.MinuteGrant = policy.IsYes(minuteGrant)
	p.EffectiveType = effectiveType.String
	p.ExpirationType = expirationType.String
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		p.CreatedAt = t
	}

	if repeatUnit.Valid {
		rc := &policy.RepeatConfig{
			Unit:           policy.RepeatUnit(repeatUnit.String),
			Interval:       int(repeatInterval.Int64),
			SpecificMonths: int(specificMonths.Int64),
			SpecificDays:   int(specificDays.Int64),
			Recurring:      policy.IsYes(isRecurring.String),
			MaxGrantCount:  int(maxGrantCount.Int64),
		}
		if firstGrantDate.Valid {
			if t, err := time.Parse(vacation.DateFormat, firstGrantDate.String); err == nil {
				rc.FirstGrantDate = &t
			}
		}
		p.Repeat = rc
	}

	return &p, nil
}

// =============================================================================
// USERS & DEPARTMENTS
// =============================================================================

// User is an organization member.
type User struct {
	ID           string
	Name         string
	Email        string
	DepartmentID string
	Approver     bool // may appear in approver chains
	AutoApproval bool // this user's requests skip human approval
	HireDate     *time.Time
	CreatedAt    time.Time
}

// Department is an organizational unit.
type Department struct {
	ID        string
	Name      string
	ParentID  string
	CreatedAt time.Time
}

// SaveUser inserts or replaces a user.
func (s *Store) SaveUser(ctx context.Context, u User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := u.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	var hireDate sql.NullString
	if u.HireDate != nil {
		hireDate = sql.NullString{String: u.HireDate.Format(vacation.DateFormat), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO users
		(id, name, email, department_id, approver_yn, auto_approval_yn, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, nullString(u.DepartmentID),
		policy.YN(u.Approver), policy.YN(u.AutoApproval),
		hireDate, createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetUser loads one user. Returns nil when not found.
func (s *Store) GetUser(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, department_id, approver_yn, auto_approval_yn, hire_date, created_at
		FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return u, err
}

// ListUsers returns all users ordered by name.
func (s *Store) ListUsers(ctx context.Context) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, department_id, approver_yn, auto_approval_yn, hire_date, created_at
		FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

// DeleteUser removes a user.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// UserExists reports whether a user id is known.
func (s *Store) UserExists(ctx context.Context, id string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM users WHERE id = ?`, id).Scan(&n)
	return n > 0, err
}

// GetApprovalContext resolves the requester's approver situation: the
// size of the eligible-approver pool (approver-flagged users other than
// the requester) and whether the requester's submissions are
// auto-approved.
func (s *Store) GetApprovalContext(ctx context.Context, userID string) (*vacation.ApprovalContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var autoApproval string
	err := s.db.QueryRowContext(ctx,
		`SELECT auto_approval_yn FROM users WHERE id = ?`, userID).Scan(&autoApproval)
	if err == sql.ErrNoRows {
		autoApproval = "N"
	} else if err != nil {
		return nil, err
	}

	var pool int
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM users WHERE approver_yn = 'Y' AND id != ?`, userID).Scan(&pool)
	if err != nil {
		return nil, err
	}

	return &vacation.ApprovalContext{
		MaxAvailable: pool,
		AutoApproval: policy.IsYes(autoApproval),
	}, nil
}

// ListEligibleApprovers returns approver-flagged users other than the
// requester, ordered by name.
func (s *Store) ListEligibleApprovers(ctx context.Context, userID string) ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, department_id, approver_yn, auto_approval_yn, hire_date, created_at
		FROM users WHERE approver_yn = 'Y' AND id != ? ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvers: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (*User, error) {
	var (
		u            User
		email        sql.NullString
		department   sql.NullString
		approver     string
		autoApproval string
		hireDate     sql.NullString
		createdAt    string
	)
	err := row.Scan(&u.ID, &u.Name, &email, &department, &approver, &autoApproval, &hireDate, &createdAt)
	if err != nil {
		return nil, err
	}
	u.Email = email.String
	u.DepartmentID = department.String
	u.Approver = policy.IsYes(approver)
	u.AutoApproval = policy.IsYes(autoApproval)
	if hireDate.Valid {
		if t, err := time.Parse(vacation.DateFormat, hireDate.String); err == nil {
			u.HireDate = &t
		}
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		u.CreatedAt = t
	}
	return &u, nil
}

// SaveDepartment inserts or replaces a department.
func (s *Store) SaveDepartment(ctx context.Context, d Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO departments (id, name, parent_id, created_at)
		VALUES (?, ?, ?, ?)`,
		d.ID, d.Name, nullString(d.ParentID), createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save department: %w", err)
	}
	return nil
}

// ListDepartments returns all departments ordered by name.
func (s *Store) ListDepartments(ctx context.Context) ([]Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, parent_id, created_at FROM departments ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var out []Department
	for rows.Next() {
		var (
			d         Department
			parentID  sql.NullString
			createdAt string
		)
		if err := rows.Scan(&d.ID, &d.Name, &parentID, &createdAt); err != nil {
			return nil, err
		}
		d.ParentID = parentID.String
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			d.CreatedAt = t
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDepartment removes a department.
func (s *Store) DeleteDepartment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM departments WHERE id = ?`, id)
	return err
}

// =============================================================================
// POLICY ASSIGNMENTS
// =============================================================================

// AssignPolicy links a policy to a user. Re-assigning is a no-op.
func (s *Store) AssignPolicy(ctx context.Context, id, userID, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_policies (id, user_id, policy_id, created_at)
		VALUES (?, ?, ?, ?)`,
		id, userID, policyID, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// RevokePolicy unlinks a policy from a user.
func (s *Store) RevokePolicy(ctx context.Context, userID, policyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM user_policies WHERE user_id = ? AND policy_id = ?`, userID, policyID)
	return err
}

// ListUserPolicies returns the policies assigned to a user, optionally
// filtered by grant method.
func (s *Store) ListUserPolicies(ctx context.Context, userID string, method policy.GrantMethod) ([]policy.Policy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := policySelect + `
		WHERE id IN (SELECT policy_id FROM user_policies WHERE user_id = ?)`
	args := []any{userID}
	if method != "" {
		query += ` AND grant_method = ?`
		args = append(args, string(method))
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user policies: %w", err)
	}
	defer rows.Close()

	var out []policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// =============================================================================
// GRANTS (vacation.Store)
// =============================================================================

// SaveGrant inserts a grant and its approver slots atomically.
func (s *Store) SaveGrant(ctx context.Context, g *vacation.Grant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO vacation_grants
		(id, user_id, policy_id, grant_time, grant_date, expiry_date,
		 request_start_time, request_end_time, description, request_desc,
		 grant_status, idempotency_key, create_date)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.UserID, g.PolicyID, nullGrantTime(g.GrantTime),
		nullDate(g.GrantDate), nullDate(g.ExpiryDate),
		nullTimestamp(g.RequestStartTime), nullTimestamp(g.RequestEndTime),
		g.Desc, g.RequestDesc, string(g.Status),
		nullString(g.IdempotencyKey),
		g.CreateDate.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert grant: %w", err)
	}

	for _, a := range g.Approvers {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO approvals
			(approval_id, grant_id, approver_id, approval_order, approval_status,
			 approval_date, rejection_reason)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ApprovalID, g.ID, a.ApproverID, a.Order, string(a.Status),
			nullTimestamp(a.ApprovalDate), nullString(a.RejectionReason),
		)
		if err != nil {
			return fmt.Errorf("failed to insert approver: %w", err)
		}
	}

	return tx.Commit()
}

// GetGrant loads a grant with its approver chain. Returns nil when not
// found.
func (s *Store) GetGrant(ctx context.Context, id string) (*vacation.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getGrantWhere(ctx, `id = ?`, id)
}

// GetGrantByApprovalID resolves a grant through one of its approver
// slots.
func (s *Store) GetGrantByApprovalID(ctx context.Context, approvalID string) (*vacation.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getGrantWhere(ctx,
		`id = (SELECT grant_id FROM approvals WHERE approval_id = ?)`, approvalID)
}

// GetGrantByIdempotencyKey resolves a replayed submission to its original
// grant.
func (s *Store) GetGrantByIdempotencyKey(ctx context.Context, key string) (*vacation.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getGrantWhere(ctx, `idempotency_key = ?`, key)
}

const grantSelect = `
	SELECT id, user_id, policy_id, grant_time, grant_date, expiry_date,
	       request_start_time, request_end_time, description, request_desc,
	       grant_status, idempotency_key, create_date
	FROM vacation_grants`

func (s *Store) getGrantWhere(ctx context.Context, where string, args ...any) (*vacation.Grant, error) {
	row := s.db.QueryRowContext(ctx, grantSelect+` WHERE `+where, args...)
	g, err := scanGrant(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadApprovers(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func scanGrant(row rowScanner) (*vacation.Grant, error) {
	var (
		g           vacation.Grant
		grantTime   sql.NullString
		grantDate   sql.NullString
		expiryDate  sql.NullString
		startTime   sql.NullString
		endTime     sql.NullString
		desc        sql.NullString
		requestDesc sql.NullString
		idemKey     sql.NullString
		status      string
		createDate  string
	)
	err := row.Scan(&g.ID, &g.UserID, &g.PolicyID, &grantTime,
		&grantDate, &expiryDate, &startTime, &endTime,
		&desc, &requestDesc, &status, &idemKey, &createDate)
	if err != nil {
		return nil, err
	}

	g.GrantTime = parseGrantTime(grantTime)
	g.GrantDate = parseDate(grantDate)
	g.ExpiryDate = parseDate(expiryDate)
	g.RequestStartTime = parseTimestamp(startTime)
	g.RequestEndTime = parseTimestamp(endTime)
	g.Desc = desc.String
	g.RequestDesc = requestDesc.String
	g.Status = approval.GrantStatus(status)
	g.IdempotencyKey = idemKey.String
	if t, err := time.Parse(time.RFC3339, createDate); err == nil {
		g.CreateDate = t
	}
	return &g, nil
}

func (s *Store) loadApprovers(ctx context.Context, g *vacation.Grant) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.approval_id, a.approver_id, COALESCE(u.name, ''),
		       a.approval_order, a.approval_status, a.approval_date, a.rejection_reason
		FROM approvals a
		LEFT JOIN users u ON u.id = a.approver_id
		WHERE a.grant_id = ?
		ORDER BY a.approval_order`, g.ID)
	if err != nil {
		return fmt.Errorf("failed to load approvers: %w", err)
	}
	defer rows.Close()

	var chain approval.Chain
	for rows.Next() {
		var (
			a            approval.Approver
			status       string
			approvalDate sql.NullString
			reason       sql.NullString
		)
		if err := rows.Scan(&a.ApprovalID, &a.ApproverID, &a.ApproverName,
			&a.Order, &status, &approvalDate, &reason); err != nil {
			return err
		}
		a.Status = approval.Status(status)
		a.ApprovalDate = parseTimestamp(approvalDate)
		a.RejectionReason = reason.String
		chain = append(chain, a)
	}
	g.Approvers = chain
	return rows.Err()
}

// UpdateGrantStatus sets a grant's status.
func (s *Store) UpdateGrantStatus(ctx context.Context, grantID string, status approval.GrantStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE vacation_grants SET grant_status = ? WHERE id = ?`, string(status), grantID)
	if err != nil {
		return fmt.Errorf("failed to update grant status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return vacation.ErrGrantNotFound
	}
	return nil
}

// UpdateApprover persists one approver slot's state.
func (s *Store) UpdateApprover(ctx context.Context, grantID string, a approval.Approver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		UPDATE approvals
		SET approval_status = ?, approval_date = ?, rejection_reason = ?
		WHERE grant_id = ? AND approval_id = ?`,
		string(a.Status), nullTimestamp(a.ApprovalDate), nullString(a.RejectionReason),
		grantID, a.ApprovalID,
	)
	if err != nil {
		return fmt.Errorf("failed to update approver: %w", err)
	}
	return nil
}

// DeleteGrant removes a grant and its approver slots.
func (s *Store) DeleteGrant(ctx context.Context, grantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM approvals WHERE grant_id = ?`, grantID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vacation_grants WHERE id = ?`, grantID); err != nil {
		return err
	}
	return tx.Commit()
}

// ListGrantsByUser returns a user's grants, newest first, chains loaded.
func (s *Store) ListGrantsByUser(ctx context.Context, userID string) ([]vacation.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.listGrants(ctx, grantSelect+` WHERE user_id = ? ORDER BY create_date DESC`, userID)
}

// ListGrantsByApprover returns grants whose chain includes the approver,
// optionally filtered by grant status.
func (s *Store) ListGrantsByApprover(ctx context.Context, approverID string, status approval.GrantStatus) ([]vacation.Grant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := grantSelect + `
		WHERE id IN (SELECT grant_id FROM approvals WHERE approver_id = ?)`
	args := []any{approverID}
	if status != "" {
		query += ` AND grant_status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY create_date DESC`

	return s.listGrants(ctx, query, args...)
}

func (s *Store) listGrants(ctx context.Context, query string, args ...any) ([]vacation.Grant, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list grants: %w", err)
	}
	defer rows.Close()

	var out []vacation.Grant
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		if err := s.loadApprovers(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is one company holiday.
type Holiday struct {
	ID        string
	Name      string
	Date      time.Time
	CreatedAt time.Time
}

// SaveHoliday inserts or replaces a holiday.
func (s *Store) SaveHoliday(ctx context.Context, h Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := h.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO holidays (id, name, holiday_date, created_at)
		VALUES (?, ?, ?, ?)`,
		h.ID, h.Name, h.Date.Format(vacation.DateFormat),
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}
	return nil
}

// ListHolidays returns holidays ordered by date. A non-zero year narrows
// the result to that calendar year.
func (s *Store) ListHolidays(ctx context.Context, year int) ([]Holiday, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, name, holiday_date, created_at FROM holidays`
	var args []any
	if year > 0 {
		query += ` WHERE holiday_date >= ? AND holiday_date <= ?`
		args = append(args, fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year))
	}
	query += ` ORDER BY holiday_date`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer rows.Close()

	var out []Holiday
	for rows.Next() {
		var (
			h         Holiday
			date      string
			createdAt string
		)
		if err := rows.Scan(&h.ID, &h.Name, &date, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(vacation.DateFormat, date); err == nil {
			h.Date = t
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			h.CreatedAt = t
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// DeleteHoliday removes a holiday.
func (s *Store) DeleteHoliday(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM holidays WHERE id = ?`, id)
	return err
}

// =============================================================================
// WORK LOGS
// =============================================================================

// WorkLog is one work-history entry.
type WorkLog struct {
	ID        string
	UserID    string
	WorkCode  string
	WorkDate  time.Time
	StartTime string // "HH:mm", optional
	EndTime   string // "HH:mm", optional
	Desc      string
	CreatedAt time.Time
}

// SaveWorkLog inserts or replaces a work-history entry.
func (s *Store) SaveWorkLog(ctx context.Context, w WorkLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := w.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO work_logs
		(id, user_id, work_code, work_date, start_time, end_time, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.WorkCode, w.WorkDate.Format(vacation.DateFormat),
		nullString(w.StartTime), nullString(w.EndTime), w.Desc,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save work log: %w", err)
	}
	return nil
}

// ListWorkLogs returns a user's entries in [from, to], oldest first.
func (s *Store) ListWorkLogs(ctx context.Context, userID string, from, to time.Time) ([]WorkLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, work_code, work_date, start_time, end_time, description, created_at
		FROM work_logs
		WHERE user_id = ? AND work_date >= ? AND work_date <= ?
		ORDER BY work_date`,
		userID, from.Format(vacation.DateFormat), to.Format(vacation.DateFormat))
	if err != nil {
		return nil, fmt.Errorf("failed to list work logs: %w", err)
	}
	defer rows.Close()

	var out []WorkLog
	for rows.Next() {
		var (
			w         WorkLog
			workDate  string
			startTime sql.NullString
			endTime   sql.NullString
			desc      sql.NullString
			createdAt string
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.WorkCode, &workDate,
			&startTime, &endTime, &desc, &createdAt); err != nil {
			return nil, err
		}
		if t, err := time.Parse(vacation.DateFormat, workDate); err == nil {
			w.WorkDate = t
		}
		w.StartTime = startTime.String
		w.EndTime = endTime.String
		w.Desc = desc.String
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			w.CreatedAt = t
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWorkLog removes a work-history entry.
func (s *Store) DeleteWorkLog(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM work_logs WHERE id = ?`, id)
	return err
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

func nullGrantTime(v granttime.Value) sql.NullString {
	if !v.IsSet() {
		return sql.NullString{}
	}
	return sql.NullString{String: v.Decimal().String(), Valid: true}
}

func parseGrantTime(ns sql.NullString) granttime.Value {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return granttime.None()
	}
	d, err := decimal.NewFromString(ns.String)
	if err != nil {
		return granttime.None()
	}
	return granttime.FromDecimal(d)
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(vacation.DateFormat), Valid: true}
}

func parseDate(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(vacation.DateFormat, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullTimestamp(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(vacation.TimestampFormat), Valid: true}
}

func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(vacation.TimestampFormat, ns.String)
	if err != nil {
		return nil
	}
	return &t
}
