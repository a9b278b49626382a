/*
store.go - Persistence interfaces for the catalog and the sale ledger

PURPOSE:
  Defines the interface between the engine and the database. The Catalog
  holds members and books (read-only except for stock decrement), the
  SaleLedger holds sale rows (append-mostly with one update path).
  Different implementations can use SQLite or in-memory storage.

KEY INTERFACES:
  Catalog:    Member/book lookup plus the guarded stock decrement
  SaleLedger: Sale persistence and the joined report read
  Store:      Catalog + SaleLedger, the full surface the engine consumes
  TxStore:    Store with atomic multi-write units

ATOMIC UNITS:
  WithTx() ensures all-or-nothing semantics. Recording a sale writes a
  sale row AND decrements the book's stock; either both commit or
  neither does. No intermediate state is ever observable by a
  concurrent reader.

DEFENSE IN DEPTH:
  DecrementStock must itself refuse to drive stock negative, even when
  the engine's pre-check was bypassed. Two concurrent sales whose
  quantities individually fit but jointly exceed stock must not both
  succeed: the decrement is conditional on the resulting stock staying
  >= 0.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store
  - bookstore/store: In-memory store for tests and dev
*/
package bookstore

import "context"

// =============================================================================
// CATALOG - Members and books
// =============================================================================

// Catalog provides member/book lookup and the guarded stock decrement.
// Absent records are reported as a nil pointer with a nil error.
type Catalog interface {
	// GetMember returns the member, or nil when the id is unknown.
	GetMember(ctx context.Context, id MemberID) (*Member, error)

	// GetBook returns the book, or nil when the id is unknown.
	GetBook(ctx context.Context, id BookID) (*Book, error)

	// DecrementStock reduces the book's stock by qty. It must only be
	// called inside the same atomic unit as the matching sale insert.
	// Returns *InsufficientStockError if the decrement would drive
	// stock negative, and *InvalidReferenceError for an unknown book.
	DecrementStock(ctx context.Context, id BookID, qty int) error
}

// =============================================================================
// SALE LEDGER - Sale rows and the joined report read
// =============================================================================

// SaleLedger persists sale rows. Inserts assign ascending ids; the only
// update path is the discount revision.
type SaleLedger interface {
	// InsertSale persists a sale and returns its assigned id.
	// The Sale.ID field of the argument is ignored.
	InsertSale(ctx context.Context, s Sale) (SaleID, error)

	// GetSale returns the sale, or nil when the id is unknown.
	GetSale(ctx context.Context, id SaleID) (*Sale, error)

	// UpdateDiscount sets a sale's discount and total in one row update.
	// Returns ErrSaleNotFound for an unknown id.
	UpdateDiscount(ctx context.Context, id SaleID, discount, total int64) error

	// EachSaleJoined streams the joined sale report in ascending sale id
	// order, one row at a time. fn returning an error stops the scan and
	// propagates the error. Re-calling re-queries current state.
	EachSaleJoined(ctx context.Context, fn func(ReportRow) error) error

	// ListSalesJoined is the slice convenience over EachSaleJoined.
	// An empty ledger yields an empty result and a nil error.
	ListSalesJoined(ctx context.Context) ([]ReportRow, error)

	// ListSaleSummaries returns the short sale listing (id, date, member
	// name) in ascending id order.
	ListSaleSummaries(ctx context.Context) ([]SaleSummary, error)
}

// =============================================================================
// STORE - Full persistence surface
// =============================================================================

// Store is the full surface the engine consumes.
type Store interface {
	Catalog
	SaleLedger
}

// TxStore wraps Store with atomic multi-write units.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error,
	// every write fn performed is rolled back; otherwise all commit
	// together. Reads inside fn observe the transaction's own writes.
	WithTx(ctx context.Context, fn func(Store) error) error
}
