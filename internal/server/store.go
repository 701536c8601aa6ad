// Package server is the embedded demo backend: a chi HTTP server over a
// SQLite store implementing the collaborator contract the client
// consumes. It exists so crewcal runs self-contained; a real deployment
// points the client at the production planning service instead.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mvilla/crewcal/internal/dateutil"
	"github.com/mvilla/crewcal/internal/plan"
)

// Store is the SQLite persistence layer behind the demo server.
type Store struct {
	db *sql.DB
}

// OpenStore opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSubject inserts a subject and assigns its id.
func (s *Store) CreateSubject(ctx context.Context, sub *plan.Subject) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO subjects (name, color, kind) VALUES (?, ?, ?)`,
		sub.Name, sub.Color, string(sub.Kind),
	)
	if err != nil {
		return fmt.Errorf("inserting subject: %w", err)
	}
	sub.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	return nil
}

// Subjects returns every subject ordered by name.
func (s *Store) Subjects(ctx context.Context) ([]*plan.Subject, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, kind FROM subjects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying subjects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var subjects []*plan.Subject
	for rows.Next() {
		var (
			sub  plan.Subject
			kind string
		)
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Color, &kind); err != nil {
			return nil, fmt.Errorf("scanning subject: %w", err)
		}
		sub.Kind = plan.SubjectKind(kind)
		subjects = append(subjects, &sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subjects: %w", err)
	}
	return subjects, nil
}

// CreateProject inserts a project and assigns its id.
func (s *Store) CreateProject(ctx context.Context, p *plan.Project) error {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (name, color, status) VALUES (?, ?, ?)`,
		p.Name, p.Color, string(p.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	p.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	return nil
}

// Projects returns every project ordered by status then name.
func (s *Store) Projects(ctx context.Context) ([]*plan.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, color, status FROM projects ORDER BY status, name`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []*plan.Project
	for rows.Next() {
		var (
			p      plan.Project
			status string
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &status); err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		p.Status = plan.ProjectStatus(status)
		projects = append(projects, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// CreateAllocation inserts an allocation and assigns its id.
func (s *Store) CreateAllocation(ctx context.Context, a *plan.Allocation) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO allocations (
			subject_id, project_id, kind, title, start_date, end_date,
			days_per_week, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SubjectID, nullID(a.ProjectID), string(a.Kind), a.Title,
		dateutil.FormatDate(a.StartDate), dateutil.FormatDate(a.EndDate),
		a.DaysPerWeek, a.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting allocation: %w", err)
	}
	a.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	return nil
}

// GetAllocation retrieves an allocation by id. Returns plan.ErrNotFound
// when the row does not exist.
func (s *Store) GetAllocation(ctx context.Context, id int64) (*plan.Allocation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, project_id, kind, title, start_date, end_date,
		       days_per_week, notes
		FROM allocations WHERE id = ?`, id)

	a, err := scanAllocation(row.Scan)
	if err == sql.ErrNoRows {
		return nil, plan.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying allocation: %w", err)
	}
	return a, nil
}

// UpdateAllocation rewrites an allocation. Returns plan.ErrNotFound
// when the row does not exist.
func (s *Store) UpdateAllocation(ctx context.Context, a *plan.Allocation) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE allocations SET
			subject_id = ?, project_id = ?, kind = ?, title = ?,
			start_date = ?, end_date = ?, days_per_week = ?, notes = ?
		WHERE id = ?`,
		a.SubjectID, nullID(a.ProjectID), string(a.Kind), a.Title,
		dateutil.FormatDate(a.StartDate), dateutil.FormatDate(a.EndDate),
		a.DaysPerWeek, a.Notes, a.ID,
	)
	if err != nil {
		return fmt.Errorf("updating allocation: %w", err)
	}
	return requireRow(result)
}

// DeleteAllocation removes an allocation.
func (s *Store) DeleteAllocation(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting allocation: %w", err)
	}
	return requireRow(result)
}

// AllocationsOverlapping returns allocations sharing at least one day
// with [start, end], optionally filtered by subject and project.
func (s *Store) AllocationsOverlapping(ctx context.Context, start, end time.Time, subjectID, projectID int64) ([]*plan.Allocation, error) {
	query := `
		SELECT id, subject_id, project_id, kind, title, start_date, end_date,
		       days_per_week, notes
		FROM allocations
		WHERE start_date <= ? AND end_date >= ?`
	args := []any{dateutil.FormatDate(end), dateutil.FormatDate(start)}
	if subjectID != 0 {
		query += ` AND subject_id = ?`
		args = append(args, subjectID)
	}
	if projectID != 0 {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying allocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var allocations []*plan.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		allocations = append(allocations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocations: %w", err)
	}
	return allocations, nil
}

// CreateLeave inserts a leave entry and assigns its id.
func (s *Store) CreateLeave(ctx context.Context, l *plan.LeaveEntry) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_entries (subject_id, start_date, end_date, days_count, status)
		VALUES (?, ?, ?, ?, ?)`,
		l.SubjectID, dateutil.FormatDate(l.StartDate), dateutil.FormatDate(l.EndDate),
		l.DaysCount, string(l.Status),
	)
	if err != nil {
		return fmt.Errorf("inserting leave entry: %w", err)
	}
	l.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	return nil
}

// GetLeave retrieves a leave entry by id.
func (s *Store) GetLeave(ctx context.Context, id int64) (*plan.LeaveEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, start_date, end_date, days_count, status
		FROM leave_entries WHERE id = ?`, id)

	l, err := scanLeave(row.Scan)
	if err == sql.ErrNoRows {
		return nil, plan.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying leave entry: %w", err)
	}
	return l, nil
}

// UpdateLeave rewrites a leave entry.
func (s *Store) UpdateLeave(ctx context.Context, l *plan.LeaveEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE leave_entries SET
			subject_id = ?, start_date = ?, end_date = ?, days_count = ?, status = ?
		WHERE id = ?`,
		l.SubjectID, dateutil.FormatDate(l.StartDate), dateutil.FormatDate(l.EndDate),
		l.DaysCount, string(l.Status), l.ID,
	)
	if err != nil {
		return fmt.Errorf("updating leave entry: %w", err)
	}
	return requireRow(result)
}

// DeleteLeave removes a leave entry.
func (s *Store) DeleteLeave(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM leave_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting leave entry: %w", err)
	}
	return requireRow(result)
}

// LeaveOverlapping returns leave entries sharing at least one day with
// [start, end], optionally filtered by subject.
func (s *Store) LeaveOverlapping(ctx context.Context, start, end time.Time, subjectID int64) ([]*plan.LeaveEntry, error) {
	query := `
		SELECT id, subject_id, start_date, end_date, days_count, status
		FROM leave_entries
		WHERE start_date <= ? AND end_date >= ?`
	args := []any{dateutil.FormatDate(end), dateutil.FormatDate(start)}
	if subjectID != 0 {
		query += ` AND subject_id = ?`
		args = append(args, subjectID)
	}
	query += ` ORDER BY start_date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying leave entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []*plan.LeaveEntry
	for rows.Next() {
		l, err := scanLeave(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning leave entry: %w", err)
		}
		entries = append(entries, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating leave entries: %w", err)
	}
	return entries, nil
}

// CreateMarker inserts a marker and assigns its id.
func (s *Store) CreateMarker(ctx context.Context, m *plan.Marker) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO markers (subject_id, date, title, description, color, kind)
		VALUES (?, ?, ?, ?, ?, ?)`,
		nullID(m.SubjectID), dateutil.FormatDate(m.Date), m.Title,
		m.Description, m.Color, string(m.Kind),
	)
	if err != nil {
		return fmt.Errorf("inserting marker: %w", err)
	}
	m.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	return nil
}

// UpdateMarker rewrites a marker.
func (s *Store) UpdateMarker(ctx context.Context, m *plan.Marker) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE markers SET
			subject_id = ?, date = ?, title = ?, description = ?, color = ?, kind = ?
		WHERE id = ?`,
		nullID(m.SubjectID), dateutil.FormatDate(m.Date), m.Title,
		m.Description, m.Color, string(m.Kind), m.ID,
	)
	if err != nil {
		return fmt.Errorf("updating marker: %w", err)
	}
	return requireRow(result)
}

// DeleteMarker removes a marker.
func (s *Store) DeleteMarker(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM markers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting marker: %w", err)
	}
	return requireRow(result)
}

// MarkersOverlapping returns markers dated within [start, end].
func (s *Store) MarkersOverlapping(ctx context.Context, start, end time.Time, subjectID int64) ([]*plan.Marker, error) {
	query := `
		SELECT id, subject_id, date, title, description, color, kind
		FROM markers
		WHERE date >= ? AND date <= ?`
	args := []any{dateutil.FormatDate(start), dateutil.FormatDate(end)}
	if subjectID != 0 {
		// Subject filters keep global markers visible.
		query += ` AND (subject_id = ? OR subject_id IS NULL)`
		args = append(args, subjectID)
	}
	query += ` ORDER BY date, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying markers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var markers []*plan.Marker
	for rows.Next() {
		var (
			m         plan.Marker
			subjectID sql.NullInt64
			date      string
			kind      string
		)
		if err := rows.Scan(&m.ID, &subjectID, &date, &m.Title, &m.Description, &m.Color, &kind); err != nil {
			return nil, fmt.Errorf("scanning marker: %w", err)
		}
		if subjectID.Valid {
			m.SubjectID = subjectID.Int64
		}
		m.Kind = plan.MarkerKind(kind)
		m.Date, err = dateutil.ParseDate(date)
		if err != nil {
			return nil, fmt.Errorf("parsing marker date: %w", err)
		}
		markers = append(markers, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating markers: %w", err)
	}
	return markers, nil
}

// scanAllocation reads one allocation row through any Scan function.
func scanAllocation(scan func(...any) error) (*plan.Allocation, error) {
	var (
		a         plan.Allocation
		projectID sql.NullInt64
		kind      string
		start     string
		end       string
	)
	err := scan(&a.ID, &a.SubjectID, &projectID, &kind, &a.Title, &start, &end,
		&a.DaysPerWeek, &a.Notes)
	if err != nil {
		return nil, err
	}
	if projectID.Valid {
		a.ProjectID = projectID.Int64
	}
	a.Kind = plan.AllocationKind(kind)
	if a.StartDate, err = dateutil.ParseDate(start); err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	if a.EndDate, err = dateutil.ParseDate(end); err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	return &a, nil
}

// scanLeave reads one leave row through any Scan function.
func scanLeave(scan func(...any) error) (*plan.LeaveEntry, error) {
	var (
		l      plan.LeaveEntry
		start  string
		end    string
		status string
	)
	err := scan(&l.ID, &l.SubjectID, &start, &end, &l.DaysCount, &status)
	if err != nil {
		return nil, err
	}
	l.Status = plan.LeaveStatus(status)
	if l.StartDate, err = dateutil.ParseDate(start); err != nil {
		return nil, fmt.Errorf("parsing start date: %w", err)
	}
	if l.EndDate, err = dateutil.ParseDate(end); err != nil {
		return nil, fmt.Errorf("parsing end date: %w", err)
	}
	return &l, nil
}

// nullID maps a zero id to NULL so foreign keys stay honest.
func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

// requireRow converts a zero-row write into plan.ErrNotFound.
func requireRow(result sql.Result) error {
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return plan.ErrNotFound
	}
	return nil
}
