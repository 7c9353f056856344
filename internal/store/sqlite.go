package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/openrelief/fieldsync/internal/models"
)

// SQLiteStores bundles the per-kind stores sharing one database
// handle.
type SQLiteStores struct {
	Incidents    *SQLiteIncidentStore
	AidRequests  *SQLiteAidRequestStore
	ShelterSites *SQLiteShelterSiteStore
	Volunteers   *SQLiteVolunteerStore
}

// NewSQLiteStores wires all kind stores onto db.
func NewSQLiteStores(db *sql.DB) *SQLiteStores {
	return &SQLiteStores{
		Incidents:    NewSQLiteIncidentStore(db),
		AidRequests:  NewSQLiteAidRequestStore(db),
		ShelterSites: NewSQLiteShelterSiteStore(db),
		Volunteers:   NewSQLiteVolunteerStore(db),
	}
}

// statusPlaceholders builds the "sync_status IN (...)" argument list.
func statusPlaceholders(statuses []models.SyncStatus) (string, []any) {
	marks := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, s := range statuses {
		marks[i] = "?"
		args[i] = string(s)
	}
	return strings.Join(marks, ", "), args
}

// updateStatus flips sync_status for a batch of ids in one statement.
func updateStatus(ctx context.Context, db *sql.DB, table string, ids []string, status models.SyncStatus) error {
	if len(ids) == 0 {
		return nil
	}
	marks := make([]string, len(ids))
	args := make([]any, 0, len(ids)+1)
	args = append(args, string(status))
	for i, id := range ids {
		marks[i] = "?"
		args = append(args, id)
	}
	query := fmt.Sprintf("UPDATE %s SET sync_status = ? WHERE id IN (%s)", table, strings.Join(marks, ", "))
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update %s status: %w", table, err)
	}
	return nil
}

// updateFields writes exactly the given columns for one row. Callers
// own the semantics: a local author edit includes updated_at and
// sync_status in fields; applying a remote admin-field change does
// not, so pull never flips a record back to pending.
func updateFields(ctx context.Context, db *sql.DB, table string, allowed map[string]bool, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	cols := make([]string, 0, len(fields))
	for col := range fields {
		if !allowed[col] {
			return fmt.Errorf("column %q is not updatable on %s", col, table)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = col + " = ?"
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", table, strings.Join(sets, ", "))
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s fields: %w", table, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s fields: %w", table, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
