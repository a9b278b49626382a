/*
engine.go - The sale-transaction engine

PURPOSE:
  Orchestrates validate -> compute -> persist -> adjust-stock as one
  atomic unit. This is the only place where referential validity,
  arithmetic consistency, and atomicity of the dependent writes are
  enforced.

CREATE PATH (RecordSale):
  1. Re-validate quantity > 0 and discount >= 0
  2. Resolve member, then book (fail fast, no writes)
  3. Read price and stock as of the start of the unit
  4. total = price * quantity - discount (negative totals permitted,
     stored as-is; callers needing a floor enforce it before calling)
  5. Reject quantity > stock BEFORE any write
  6. Insert sale + decrement stock as one committed unit

  The stock check happens before the insert, never after it. The
  decrement is additionally conditional at the store level, so two
  concurrent sales against the same book cannot jointly overdraw it.

EDIT PATH (ReviseSaleDiscount):
  Recomputes the total from the arithmetic identity
     newTotal = oldTotal + oldDiscount - newDiscount
  rather than from the book's current price. The book's price may have
  changed since the sale; the identity preserves the transaction-time
  price without storing it separately. Stock is never touched.

ERROR CONTRACT:
  Every failure path leaves stored state exactly as it was before the
  call. Client errors (bad ids, bad input, insufficient stock) pass
  through typed; unexpected store failures surface as PersistenceError.

SEE ALSO:
  - store.go: TxStore.WithTx atomic-unit contract
  - errors.go: Error taxonomy
*/
package bookstore

import "context"

// =============================================================================
// ENGINE
// =============================================================================

// Engine is the sale-transaction engine. It owns no connection state of
// its own: every operation acquires its atomic unit from the injected
// store and releases it on every exit path.
type Engine struct {
	store TxStore
}

func NewEngine(store TxStore) *Engine {
	return &Engine{store: store}
}

// =============================================================================
// CREATE PATH
// =============================================================================

// RecordSale validates and persists a sale, decrementing the book's
// stock in the same atomic unit. On success it returns the assigned
// sale id and the computed total. On any failure, nothing is written.
func (e *Engine) RecordSale(ctx context.Context, draft SaleDraft) (SaleID, int64, error) {
	if draft.Quantity <= 0 {
		return 0, 0, &InvalidInputError{Field: "quantity", Reason: "must be a positive integer"}
	}
	if draft.Discount < 0 {
		return 0, 0, &InvalidInputError{Field: "discount", Reason: "must not be negative"}
	}

	var (
		id    SaleID
		total int64
	)
	err := e.store.WithTx(ctx, func(s Store) error {
		member, err := s.GetMember(ctx, draft.MemberID)
		if err != nil {
			return &PersistenceError{Op: "resolve member", Err: err}
		}
		if member == nil {
			return &InvalidReferenceError{Kind: "member", ID: string(draft.MemberID)}
		}

		book, err := s.GetBook(ctx, draft.BookID)
		if err != nil {
			return &PersistenceError{Op: "resolve book", Err: err}
		}
		if book == nil {
			return &InvalidReferenceError{Kind: "book", ID: string(draft.BookID)}
		}

		// Price and stock as of the start of the unit.
		total = book.Price*int64(draft.Quantity) - draft.Discount

		// Stock check BEFORE any write.
		if draft.Quantity > book.Stock {
			return &InsufficientStockError{
				BookID:    book.ID,
				Requested: draft.Quantity,
				Available: book.Stock,
			}
		}

		id, err = s.InsertSale(ctx, Sale{
			Date:     draft.Date,
			MemberID: draft.MemberID,
			BookID:   draft.BookID,
			Quantity: draft.Quantity,
			Discount: draft.Discount,
			Total:    total,
		})
		if err != nil {
			return &PersistenceError{Op: "insert sale", Err: err}
		}

		// The store-level decrement is conditional on stock staying
		// >= 0, which guards against a concurrent sale committing
		// between our read and this write.
		if err := s.DecrementStock(ctx, draft.BookID, draft.Quantity); err != nil {
			if IsClientError(err) {
				return err
			}
			return &PersistenceError{Op: "decrement stock", Err: err}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return id, total, nil
}

// =============================================================================
// EDIT PATH
// =============================================================================

// ReviseSaleDiscount replaces a sale's discount and recomputes its
// total, preserving the transaction-time price. Returns the new total.
// Book stock is never touched by this path.
func (e *Engine) ReviseSaleDiscount(ctx context.Context, id SaleID, discount int64) (int64, error) {
	if discount < 0 {
		return 0, &InvalidInputError{Field: "discount", Reason: "must not be negative"}
	}

	var newTotal int64
	err := e.store.WithTx(ctx, func(s Store) error {
		sale, err := s.GetSale(ctx, id)
		if err != nil {
			return &PersistenceError{Op: "resolve sale", Err: err}
		}
		if sale == nil {
			return ErrSaleNotFound
		}

		newTotal = sale.Total + sale.Discount - discount

		if err := s.UpdateDiscount(ctx, id, discount, newTotal); err != nil {
			if IsClientError(err) {
				return err
			}
			return &PersistenceError{Op: "update discount", Err: err}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newTotal, nil
}
