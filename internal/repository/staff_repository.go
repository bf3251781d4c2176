package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/restaurant-table-service/internal/model"
	"github.com/iliyamo/restaurant-table-service/internal/utils"
)

// StaffRepo persists staff accounts.  Passwords are stored as bcrypt
// hashes; the raw password never leaves the Create call.
type StaffRepo struct{ DB *sql.DB }

// NewStaffRepo returns a new StaffRepo bound to the given database.
func NewStaffRepo(db *sql.DB) *StaffRepo { return &StaffRepo{DB: db} }

// Create inserts a staff account and returns its id.  ErrEmailExists is
// returned when the email is already registered.
func (r *StaffRepo) Create(ctx context.Context, email, password, role string, bcryptCost int) (uint64, error) {
	hash, err := utils.HashPassword(password, bcryptCost)
	if err != nil {
		return 0, err
	}
	const q = `INSERT INTO staff (email, password_hash, role, is_active) VALUES (?, ?, ?, 1)`
	result, err := r.DB.ExecContext(ctx, q, email, hash, role)
	if err != nil {
		// the unique index on email surfaces as a duplicate-entry error
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail returns the staff account for a login attempt.
// sql.ErrNoRows is returned when no active account matches.
func (r *StaffRepo) GetByEmail(ctx context.Context, email string) (*model.Staff, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM staff WHERE email = ? AND is_active = 1`
	var s model.Staff
	err := r.DB.QueryRowContext(ctx, q, email).Scan(
		&s.ID, &s.Email, &s.PasswordHash, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetByID returns a staff account by id.
func (r *StaffRepo) GetByID(ctx context.Context, id uint64) (*model.Staff, error) {
	const q = `SELECT id, email, password_hash, role, is_active, created_at, updated_at
	           FROM staff WHERE id = ?`
	var s model.Staff
	err := r.DB.QueryRowContext(ctx, q, id).Scan(
		&s.ID, &s.Email, &s.PasswordHash, &s.Role, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
