package model

import "time"

// Table represents a physical dining table in the restaurant.  Tables
// are long-lived and owned by the restaurant.  Capacity is advisory:
// seating a party larger than the capacity is allowed but flagged with
// a warning at seat time.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – human-readable label printed on the floor plan (e.g. "T1").
//  Capacity  – advisory number of seats.
//  IsActive  – whether the table is currently in service.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Table struct {
	ID        uint64    // restaurant_tables.id
	Name      string    // restaurant_tables.name
	Capacity  uint32    // restaurant_tables.capacity
	IsActive  bool      // restaurant_tables.is_active
	CreatedAt time.Time // restaurant_tables.created_at
	UpdatedAt time.Time // restaurant_tables.updated_at
}
