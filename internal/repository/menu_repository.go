package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// MenuRepo is the MySQL-backed catalog.Lookup.  It reads the menu_items
// table maintained by the catalog system; this service only ever reads
// from it, and only at order submission time.
type MenuRepo struct {
	db *sql.DB
}

// NewMenuRepo returns a new MenuRepo bound to the given database.
func NewMenuRepo(db *sql.DB) *MenuRepo { return &MenuRepo{db: db} }

// ItemsByIDs returns the active catalog entries for the given ids,
// keyed by id.  Unknown or inactive ids are simply absent from the
// result.
func (r *MenuRepo) ItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error) {
	byID := make(map[uint64]model.MenuItem)
	if len(ids) == 0 {
		return byID, nil
	}
	placeholders := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	query := `SELECT id, name, department, price, is_active, updated_at
	          FROM menu_items
	          WHERE is_active = 1 AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var m model.MenuItem
		if err := rows.Scan(&m.ID, &m.Name, &m.Department, &m.Price, &m.IsActive, &m.UpdatedAt); err != nil {
			return nil, err
		}
		byID[m.ID] = m
	}
	return byID, rows.Err()
}
