// Package catalog is the narrow view this service has of the menu.
// Catalog content management (names, images, availability) lives in a
// separate system; the lifecycle engine only ever needs an item's
// current price, name and fulfillment department, and only at order
// submission time.  Prices resolved here are snapshotted onto order
// items and never re-read.
package catalog

import (
	"context"

	"github.com/iliyamo/restaurant-table-service/internal/model"
)

// Lookup resolves menu item ids to their current catalog entries.  The
// production implementation is repository.MenuRepo; tests substitute a
// map-backed fake.
type Lookup interface {
	// ItemsByIDs returns the active catalog entries for the given ids,
	// keyed by id.  Ids that do not exist or are inactive are simply
	// absent from the result; the caller decides whether that is fatal.
	ItemsByIDs(ctx context.Context, ids []uint64) (map[uint64]model.MenuItem, error)
}
