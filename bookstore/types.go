/*
Package bookstore provides the core sale-transaction engine.

PURPOSE:
  This package contains the domain types and the transactional logic for
  recording retail book sales: validating a prospective sale, computing
  its total, persisting the sale record, and decrementing book stock as
  one atomic unit. It also carries the edit path (discount revision) and
  the joined report query.

KEY CONCEPTS IN THIS FILE (types.go):
  - Member/Book: Catalog entities, immutable from the core's perspective
    except for Book.Stock
  - Sale: A persisted sale row with its transaction-time total
  - SaleDraft: Caller input for a prospective sale, validated by Engine
  - ReportRow: A joined projection row for reporting

DESIGN PRINCIPLES:
  1. Typed identifiers: MemberID/BookID/SaleID cannot be mixed up
  2. Integer money: prices, discounts, and totals are integer currency
     units; arithmetic stays exact without floating point
  3. Transaction-time truth: Sale.Total is fixed at sale time and is
     never recomputed from the book's current price

SEE ALSO:
  - engine.go: RecordSale / ReviseSaleDiscount contracts
  - store.go: Persistence interfaces
  - report.go: Joined report query and summary
*/
package bookstore

// =============================================================================
// IDENTIFIERS
// =============================================================================

type MemberID string

type BookID string

// SaleID is assigned by the ledger on insert, ascending and stable.
type SaleID int64

// =============================================================================
// CATALOG ENTITIES
// =============================================================================

// Member is a registered customer. Created at bootstrap, never mutated
// by the engine.
type Member struct {
	ID    MemberID
	Name  string
	Phone string
	Email string // optional, empty when not provided
}

// Book is a catalog item. Stock is the only field the engine mutates.
type Book struct {
	ID    BookID
	Title string
	Price int64 // unit price, integer currency units, >= 0
	Stock int   // on-hand quantity, >= 0
}

// =============================================================================
// SALE
// =============================================================================

// Sale is a persisted sale row.
//
// INVARIANT: Total = price-at-sale-time * Quantity - Discount.
// The transaction-time price is not stored separately, so discount
// revisions recompute Total via the identity
// newTotal = oldTotal + oldDiscount - newDiscount
// rather than re-reading the book's current price.
type Sale struct {
	ID       SaleID
	Date     string // calendar date as stored, no core-side validation
	MemberID MemberID
	BookID   BookID
	Quantity int   // > 0
	Discount int64 // >= 0, same currency unit as price
	Total    int64 // may be negative when discount exceeds price*quantity
}

// SaleDraft is the caller's input to Engine.RecordSale.
type SaleDraft struct {
	Date     string
	MemberID MemberID
	BookID   BookID
	Quantity int
	Discount int64
}

// =============================================================================
// REPORT PROJECTIONS
// =============================================================================

// ReportRow is one row of the joined sale report, ordered by SaleID
// ascending. UnitPrice is the book's price at read time, not at sale time.
type ReportRow struct {
	SaleID     SaleID
	Date       string
	MemberName string
	BookTitle  string
	UnitPrice  int64
	Quantity   int
	Discount   int64
	Total      int64
}

// SaleSummary is the short listing used to pick a sale for revision.
type SaleSummary struct {
	ID         SaleID
	Date       string
	MemberName string
}
