package model

import "time"

// Session records one customer party's occupancy of the restaurant from
// check-in to checkout.  A session starts WAITING without a table and is
// assigned one at seat time.  At most one session with an active status
// may reference a given table at any moment; that invariant is enforced
// in the repository within the seating transaction.  COMPLETED sessions
// are archived and never mutated again.
//
// Fields:
//  ID           – primary key identifier.
//  CustomerName – optional name given at check-in.
//  Phone        – optional contact number.
//  Notes        – optional free-text notes (allergies, celebrations).
//  PartySize    – number of guests, always >= 1.
//  Status       – lifecycle state (WAITING, SEATED, ORDERING, ORDERED,
//                 DINING, BILLING, COMPLETED).
//  TableID      – table currently occupied (nil while WAITING).
//  CheckedInAt  – when the party checked in.
//  SeatedAt     – when the party was seated (nil while WAITING).
//  CreatedAt    – creation timestamp.
//  UpdatedAt    – last update timestamp.
type Session struct {
	ID           uint64     // sessions.id
	CustomerName *string    // sessions.customer_name (nullable)
	Phone        *string    // sessions.phone (nullable)
	Notes        *string    // sessions.notes (nullable)
	PartySize    uint32     // sessions.party_size
	Status       string     // sessions.status
	TableID      *uint64    // sessions.table_id (nullable)
	CheckedInAt  time.Time  // sessions.checked_in_at
	SeatedAt     *time.Time // sessions.seated_at (nullable)
	CreatedAt    time.Time  // sessions.created_at
	UpdatedAt    time.Time  // sessions.updated_at
}
