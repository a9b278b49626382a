package bookstore_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
	memstore "github.com/hugohongkipan/bookstore-manager/bookstore/store"
	"github.com/hugohongkipan/bookstore-manager/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// testStore wraps a TxStore with catalog mutators, so the same engine
// tests run against every implementation.
type testStore struct {
	bookstore.TxStore
	putMember func(bookstore.Member)
	putBook   func(bookstore.Book)
}

func newMemoryStore(t *testing.T) testStore {
	m := memstore.NewMemory()
	return testStore{
		TxStore:   m,
		putMember: m.PutMember,
		putBook:   m.PutBook,
	}
}

func newSQLiteStore(t *testing.T) testStore {
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	ctx := context.Background()
	return testStore{
		TxStore: s,
		putMember: func(m bookstore.Member) {
			require.NoError(t, s.SaveMember(ctx, m))
		},
		putBook: func(b bookstore.Book) {
			require.NoError(t, s.SaveBook(ctx, b))
		},
	}
}

var storeImpls = []struct {
	name string
	make func(t *testing.T) testStore
}{
	{"memory", newMemoryStore},
	{"sqlite", newSQLiteStore},
}

// seedCatalog installs the standard catalog fixtures.
func seedCatalog(ts testStore) {
	ts.putMember(bookstore.Member{ID: "M001", Name: "Alice", Phone: "0912-345678", Email: "alice@example.com"})
	ts.putMember(bookstore.Member{ID: "M002", Name: "Bob", Phone: "0923-456789", Email: "bob@example.com"})
	ts.putBook(bookstore.Book{ID: "B001", Title: "Python Programming", Price: 600, Stock: 50})
	ts.putBook(bookstore.Book{ID: "B002", Title: "Data Science Basics", Price: 800, Stock: 30})
}

func forEachStore(t *testing.T, fn func(t *testing.T, ts testStore, engine *bookstore.Engine)) {
	for _, impl := range storeImpls {
		impl := impl
		t.Run(impl.name, func(t *testing.T) {
			ts := impl.make(t)
			seedCatalog(ts)
			fn(t, ts, bookstore.NewEngine(ts))
		})
	}
}

func draft(member, book string, qty int, discount int64) bookstore.SaleDraft {
	return bookstore.SaleDraft{
		Date:     "2024-01-15",
		MemberID: bookstore.MemberID(member),
		BookID:   bookstore.BookID(book),
		Quantity: qty,
		Discount: discount,
	}
}

func bookStock(t *testing.T, ts testStore, id bookstore.BookID) int {
	book, err := ts.GetBook(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, book)
	return book.Stock
}

func saleCount(t *testing.T, ts testStore) int {
	rows, err := ts.ListSalesJoined(context.Background())
	require.NoError(t, err)
	return len(rows)
}

// =============================================================================
// CREATE PATH
// =============================================================================

func TestRecordSale_Success(t *testing.T) {
	// GIVEN: B001 priced 600 with 50 in stock
	// WHEN: Recording 2 copies with a 100 discount
	// THEN: total = 600*2 - 100 = 1100 and stock drops to 48

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		id, total, err := engine.RecordSale(ctx, draft("M001", "B001", 2, 100))
		require.NoError(t, err)

		assert.Equal(t, int64(1100), total)
		assert.Equal(t, 48, bookStock(t, ts, "B001"))

		sale, err := ts.GetSale(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.Equal(t, bookstore.MemberID("M001"), sale.MemberID)
		assert.Equal(t, bookstore.BookID("B001"), sale.BookID)
		assert.Equal(t, 2, sale.Quantity)
		assert.Equal(t, int64(100), sale.Discount)
		assert.Equal(t, int64(1100), sale.Total)
	})
}

func TestRecordSale_SequentialIDs(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		first, _, err := engine.RecordSale(ctx, draft("M001", "B001", 1, 0))
		require.NoError(t, err)
		second, _, err := engine.RecordSale(ctx, draft("M002", "B002", 1, 0))
		require.NoError(t, err)

		assert.Greater(t, second, first, "sale ids should ascend")
	})
}

func TestRecordSale_InsufficientStock(t *testing.T) {
	// GIVEN: B001 stock already reduced to 48
	// WHEN: Recording a sale for 60 copies
	// THEN: InsufficientStock(48), and neither a sale row nor a stock
	//       change is observable afterward

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		_, _, err := engine.RecordSale(ctx, draft("M001", "B001", 2, 100))
		require.NoError(t, err)
		require.Equal(t, 48, bookStock(t, ts, "B001"))
		salesBefore := saleCount(t, ts)

		_, _, err = engine.RecordSale(ctx, draft("M001", "B001", 60, 0))

		var stockErr *bookstore.InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, 48, stockErr.Available)
		assert.Equal(t, 60, stockErr.Requested)
		assert.ErrorIs(t, err, bookstore.ErrInsufficientStock)

		assert.Equal(t, 48, bookStock(t, ts, "B001"), "failed sale must not touch stock")
		assert.Equal(t, salesBefore, saleCount(t, ts), "failed sale must not be persisted")
	})
}

func TestRecordSale_ExactStockAllowed(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		_, _, err := engine.RecordSale(context.Background(), draft("M001", "B002", 30, 0))
		require.NoError(t, err)
		assert.Equal(t, 0, bookStock(t, ts, "B002"))
	})
}

func TestRecordSale_UnknownMember(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		_, _, err := engine.RecordSale(context.Background(), draft("M999", "B001", 1, 0))

		assert.ErrorIs(t, err, bookstore.ErrInvalidReference)
		var refErr *bookstore.InvalidReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "member", refErr.Kind)

		assert.Equal(t, 50, bookStock(t, ts, "B001"))
		assert.Equal(t, 0, saleCount(t, ts))
	})
}

func TestRecordSale_UnknownBook(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		_, _, err := engine.RecordSale(context.Background(), draft("M001", "B999", 1, 0))

		assert.ErrorIs(t, err, bookstore.ErrInvalidReference)
		var refErr *bookstore.InvalidReferenceError
		require.ErrorAs(t, err, &refErr)
		assert.Equal(t, "book", refErr.Kind)

		assert.Equal(t, 0, saleCount(t, ts))
	})
}

func TestRecordSale_InvalidInput(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		_, _, err := engine.RecordSale(ctx, draft("M001", "B001", 0, 0))
		assert.ErrorIs(t, err, bookstore.ErrInvalidInput)

		_, _, err = engine.RecordSale(ctx, draft("M001", "B001", -3, 0))
		assert.ErrorIs(t, err, bookstore.ErrInvalidInput)

		_, _, err = engine.RecordSale(ctx, draft("M001", "B001", 1, -50))
		assert.ErrorIs(t, err, bookstore.ErrInvalidInput)

		assert.Equal(t, 50, bookStock(t, ts, "B001"))
		assert.Equal(t, 0, saleCount(t, ts))
	})
}

func TestRecordSale_NegativeTotalStoredAsIs(t *testing.T) {
	// A discount larger than price*quantity is permitted; the negative
	// total is stored without clamping.

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		id, total, err := engine.RecordSale(ctx, draft("M001", "B001", 1, 700))
		require.NoError(t, err)
		assert.Equal(t, int64(-100), total)

		sale, err := ts.GetSale(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.Equal(t, int64(-100), sale.Total)
	})
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestRecordSale_ConcurrentOverdraw(t *testing.T) {
	// GIVEN: B001 with 50 in stock
	// WHEN: Two concurrent sales of 30 each (individually fit, jointly don't)
	// THEN: Exactly one succeeds; stock ends at 20, never negative

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, errs[i] = engine.RecordSale(ctx, draft("M001", "B001", 30, 0))
			}(i)
		}
		wg.Wait()

		var ok, failed int
		for _, err := range errs {
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, bookstore.ErrInsufficientStock)
				failed++
			}
		}
		assert.Equal(t, 1, ok, "exactly one sale should succeed")
		assert.Equal(t, 1, failed, "the other should fail on stock")

		assert.Equal(t, 20, bookStock(t, ts, "B001"))
		assert.Equal(t, 1, saleCount(t, ts))
	})
}

// =============================================================================
// EDIT PATH
// =============================================================================

func TestReviseSaleDiscount_Identity(t *testing.T) {
	// GIVEN: A sale with discount 100 and total 1100
	// WHEN: Revising the discount to 50
	// THEN: newTotal = 1100 + 100 - 50 = 1150, stock untouched

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		id, total, err := engine.RecordSale(ctx, draft("M001", "B001", 2, 100))
		require.NoError(t, err)
		require.Equal(t, int64(1100), total)
		stockAfterSale := bookStock(t, ts, "B001")

		newTotal, err := engine.ReviseSaleDiscount(ctx, id, 50)
		require.NoError(t, err)
		assert.Equal(t, int64(1150), newTotal)

		sale, err := ts.GetSale(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.Equal(t, int64(50), sale.Discount)
		assert.Equal(t, int64(1150), sale.Total)

		assert.Equal(t, stockAfterSale, bookStock(t, ts, "B001"),
			"discount revision must never touch stock")
	})
}

func TestReviseSaleDiscount_UsesTransactionTimePrice(t *testing.T) {
	// The book's price changes after the sale. Revision must recompute
	// from the sale-time arithmetic, not the current price.

	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		id, _, err := engine.RecordSale(ctx, draft("M001", "B001", 2, 100))
		require.NoError(t, err)

		// Price hike after the sale.
		ts.putBook(bookstore.Book{ID: "B001", Title: "Python Programming", Price: 900, Stock: 48})

		newTotal, err := engine.ReviseSaleDiscount(ctx, id, 0)
		require.NoError(t, err)

		// 600*2 - 0, not 900*2 - 0.
		assert.Equal(t, int64(1200), newTotal)
	})
}

func TestReviseSaleDiscount_NotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		_, err := engine.ReviseSaleDiscount(context.Background(), 9999, 50)
		assert.ErrorIs(t, err, bookstore.ErrSaleNotFound)
	})
}

func TestReviseSaleDiscount_NegativeDiscountRejected(t *testing.T) {
	forEachStore(t, func(t *testing.T, ts testStore, engine *bookstore.Engine) {
		ctx := context.Background()

		id, _, err := engine.RecordSale(ctx, draft("M001", "B001", 2, 100))
		require.NoError(t, err)

		_, err = engine.ReviseSaleDiscount(ctx, id, -10)
		assert.ErrorIs(t, err, bookstore.ErrInvalidInput)

		sale, err := ts.GetSale(ctx, id)
		require.NoError(t, err)
		require.NotNil(t, sale)
		assert.Equal(t, int64(100), sale.Discount, "rejected revision must not change the row")
	})
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

func TestIsClientError(t *testing.T) {
	assert.True(t, bookstore.IsClientError(&bookstore.InvalidReferenceError{Kind: "member", ID: "M999"}))
	assert.True(t, bookstore.IsClientError(&bookstore.InsufficientStockError{BookID: "B001", Requested: 9, Available: 3}))
	assert.True(t, bookstore.IsClientError(bookstore.ErrSaleNotFound))
	assert.False(t, bookstore.IsClientError(bookstore.ErrPersistence))
	assert.False(t, bookstore.IsClientError(&bookstore.PersistenceError{Op: "insert sale", Err: assert.AnError}))
}

func TestInsufficientStockError_Message(t *testing.T) {
	err := &bookstore.InsufficientStockError{BookID: "B001", Requested: 60, Available: 48}
	msg := err.Error()
	assert.Contains(t, msg, "B001")
	assert.Contains(t, msg, "60")
	assert.Contains(t, msg, "48")
}
