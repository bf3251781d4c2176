// Package repository is the persistence layer: hand-written SQL over a
// shared *sql.DB pool, with Tx variants for every operation that takes
// part in a multi-step mutation.  Missing rows surface as sql.ErrNoRows
// and are translated to not-found at the handler boundary; domain
// violations the database is in the best position to detect (an
// occupied table, a duplicate staff email) come back as wrapped apperr
// kinds so handlers can map them without string matching.
package repository

import "errors"

// ErrEmailExists is returned by StaffRepo.Create when the email is
// already registered.  Handlers translate this into an HTTP 409
// response.
var ErrEmailExists = errors.New("email already exists")
