/*
errors.go - Centralized error types for the sale-transaction engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Every failure path returns one of these as a typed result; the engine
  never panics and never partially commits.

ERROR CATEGORIES:
  1. Reference errors  - Unknown member/book/sale ids
  2. Input errors      - Non-positive quantity, negative discount
  3. Stock errors      - Quantity exceeds current stock
  4. Store errors      - Underlying database failures inside the atomic unit

USAGE:
  Callers match with errors.Is / errors.As:

    _, _, err := engine.RecordSale(ctx, draft)
    var stockErr *bookstore.InsufficientStockError
    if errors.As(err, &stockErr) {
        fmt.Printf("only %d in stock\n", stockErr.Available)
    }

SEE ALSO:
  - engine.go: Producers of these errors
  - store.go: DecrementStock's defense-in-depth contract
*/
package bookstore

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidReference is returned when a sale references a member or
	// book that does not exist. Checked before any write.
	ErrInvalidReference = errors.New("invalid member or book reference")

	// ErrInvalidInput is returned for a non-positive quantity or a
	// negative discount. The engine re-validates even when the caller
	// layer already did.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientStock is returned when the requested quantity
	// exceeds the book's current stock. No writes happen.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrSaleNotFound is returned when a discount revision targets an
	// unknown sale id.
	ErrSaleNotFound = errors.New("sale not found")

	// ErrPersistence is returned when the underlying store fails during
	// an atomic unit. Both effects of the unit are rolled back.
	ErrPersistence = errors.New("persistence failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidReferenceError reports which reference failed to resolve.
type InvalidReferenceError struct {
	Kind string // "member" or "book"
	ID   string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("unknown %s id: %s", e.Kind, e.ID)
}

func (e *InvalidReferenceError) Unwrap() error {
	return ErrInvalidReference
}

// InvalidInputError reports which input field was rejected and why.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InsufficientStockError reports the stock available at check time.
type InsufficientStockError struct {
	BookID    BookID
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.BookID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// PersistenceError wraps a store-level failure with the operation that hit it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return ErrPersistence
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input
// rather than a store failure.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrSaleNotFound)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrInvalidReference) ||
		errors.Is(err, ErrSaleNotFound)
}
