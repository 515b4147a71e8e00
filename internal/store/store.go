// Package store contains the port to the backing key-value store and its
// adapters. The store holds one record per contact addressed by id and
// maintains a secondary index from tag values to contact ids. It knows
// nothing about business rules such as email uniqueness.
package store

import (
	"context"

	"gitlab.com/dirk.krummacker/contacts-api/internal/model"
)

// Store is the contract every storage adapter fulfills.
//
// ScanPage implements cursor-based pagination: the first call passes cursor
// 0, each response carries the cursor for the next page, and a returned
// cursor of 0 means the scan is exhausted. A page may be empty even though
// more pages remain, so callers must loop until the cursor comes back as 0.
type Store interface {
	// Initialize verifies that the store is reachable. It is called once at
	// startup so that a missing or misconfigured backend fails fast instead
	// of surfacing on the first request.
	Initialize(ctx context.Context) error

	// Get returns the contact stored under id, or nil if there is none.
	Get(ctx context.Context, id string) (*model.Contact, error)

	// Put stores the full contact record under its id, overwriting any
	// previous version, and keeps the tag index in sync.
	Put(ctx context.Context, contact model.Contact) error

	// DeleteReturning removes the contact stored under id and returns the
	// removed record, or nil if there was none.
	DeleteReturning(ctx context.Context, id string) (*model.Contact, error)

	// ScanPage returns one page of up to count contacts together with the
	// continuation cursor for the next page.
	ScanPage(ctx context.Context, cursor uint64, count int64) ([]model.Contact, uint64, error)

	// QueryTag returns all contacts whose tag equals the given value, using
	// the secondary index rather than a scan.
	QueryTag(ctx context.Context, tag string) ([]model.Contact, error)
}
