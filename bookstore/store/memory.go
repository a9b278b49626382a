// Package store provides an in-memory Store implementation for tests and dev.
package store

import (
	"context"
	"sync"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements bookstore.TxStore with plain maps and a slice.
// WithTx is simulated with a snapshot + restore on error, which gives
// the same all-or-nothing semantics as a database transaction under the
// store's single writer lock.
type Memory struct {
	mu      sync.RWMutex
	members map[bookstore.MemberID]bookstore.Member
	books   map[bookstore.BookID]bookstore.Book
	sales   []bookstore.Sale // ordered by ID ascending
	nextID  bookstore.SaleID
}

func NewMemory() *Memory {
	return &Memory{
		members: make(map[bookstore.MemberID]bookstore.Member),
		books:   make(map[bookstore.BookID]bookstore.Book),
		nextID:  1,
	}
}

// PutMember adds or replaces a member (bootstrap/seed only).
func (m *Memory) PutMember(member bookstore.Member) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[member.ID] = member
}

// PutBook adds or replaces a book (bootstrap/seed only).
func (m *Memory) PutBook(book bookstore.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.books[book.ID] = book
}

// =============================================================================
// CATALOG
// =============================================================================

func (m *Memory) GetMember(_ context.Context, id bookstore.MemberID) (*bookstore.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getMemberLocked(id), nil
}

func (m *Memory) GetBook(_ context.Context, id bookstore.BookID) (*bookstore.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getBookLocked(id), nil
}

func (m *Memory) DecrementStock(_ context.Context, id bookstore.BookID, qty int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.decrementStockLocked(id, qty)
}

func (m *Memory) getMemberLocked(id bookstore.MemberID) *bookstore.Member {
	if member, ok := m.members[id]; ok {
		return &member
	}
	return nil
}

func (m *Memory) getBookLocked(id bookstore.BookID) *bookstore.Book {
	if book, ok := m.books[id]; ok {
		return &book
	}
	return nil
}

func (m *Memory) decrementStockLocked(id bookstore.BookID, qty int) error {
	book, ok := m.books[id]
	if !ok {
		return &bookstore.InvalidReferenceError{Kind: "book", ID: string(id)}
	}
	// Conditional decrement: refuse to drive stock negative even when
	// the caller's pre-check was bypassed.
	if qty > book.Stock {
		return &bookstore.InsufficientStockError{
			BookID:    id,
			Requested: qty,
			Available: book.Stock,
		}
	}
	book.Stock -= qty
	m.books[id] = book
	return nil
}

// =============================================================================
// SALE LEDGER
// =============================================================================

func (m *Memory) InsertSale(_ context.Context, s bookstore.Sale) (bookstore.SaleID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.insertSaleLocked(s), nil
}

func (m *Memory) GetSale(_ context.Context, id bookstore.SaleID) (*bookstore.Sale, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getSaleLocked(id), nil
}

func (m *Memory) UpdateDiscount(_ context.Context, id bookstore.SaleID, discount, total int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateDiscountLocked(id, discount, total)
}

func (m *Memory) EachSaleJoined(_ context.Context, fn func(bookstore.ReportRow) error) error {
	m.mu.RLock()
	rows := m.joinedRowsLocked()
	m.mu.RUnlock()

	for _, row := range rows {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) ListSalesJoined(ctx context.Context) ([]bookstore.ReportRow, error) {
	rows := []bookstore.ReportRow{}
	err := m.EachSaleJoined(ctx, func(row bookstore.ReportRow) error {
		rows = append(rows, row)
		return nil
	})
	return rows, err
}

func (m *Memory) ListSaleSummaries(_ context.Context) ([]bookstore.SaleSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	summaries := []bookstore.SaleSummary{}
	for _, s := range m.sales {
		member, ok := m.members[s.MemberID]
		if !ok {
			continue
		}
		summaries = append(summaries, bookstore.SaleSummary{
			ID:         s.ID,
			Date:       s.Date,
			MemberName: member.Name,
		})
	}
	return summaries, nil
}

func (m *Memory) insertSaleLocked(s bookstore.Sale) bookstore.SaleID {
	s.ID = m.nextID
	m.nextID++
	m.sales = append(m.sales, s)
	return s.ID
}

func (m *Memory) getSaleLocked(id bookstore.SaleID) *bookstore.Sale {
	for i := range m.sales {
		if m.sales[i].ID == id {
			sale := m.sales[i]
			return &sale
		}
	}
	return nil
}

func (m *Memory) updateDiscountLocked(id bookstore.SaleID, discount, total int64) error {
	for i := range m.sales {
		if m.sales[i].ID == id {
			m.sales[i].Discount = discount
			m.sales[i].Total = total
			return nil
		}
	}
	return bookstore.ErrSaleNotFound
}

// joinedRowsLocked mirrors the SQL inner join: sales whose member or
// book is missing are skipped. Sales are already id-ordered.
func (m *Memory) joinedRowsLocked() []bookstore.ReportRow {
	rows := []bookstore.ReportRow{}
	for _, s := range m.sales {
		member, ok := m.members[s.MemberID]
		if !ok {
			continue
		}
		book, ok := m.books[s.BookID]
		if !ok {
			continue
		}
		rows = append(rows, bookstore.ReportRow{
			SaleID:     s.ID,
			Date:       s.Date,
			MemberName: member.Name,
			BookTitle:  book.Title,
			UnitPrice:  book.Price,
			Quantity:   s.Quantity,
			Discount:   s.Discount,
			Total:      s.Total,
		})
	}
	return rows
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes fn against a view of the store, holding the writer
// lock for the whole unit. On error the pre-unit state is restored, so
// no partial unit is ever observable.
func (m *Memory) WithTx(_ context.Context, fn func(bookstore.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshotLocked()

	if err := fn(&txMemoryView{parent: m}); err != nil {
		m.restoreLocked(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	books  map[bookstore.BookID]bookstore.Book
	sales  []bookstore.Sale
	nextID bookstore.SaleID
}

func (m *Memory) snapshotLocked() memorySnapshot {
	booksCopy := make(map[bookstore.BookID]bookstore.Book, len(m.books))
	for id, b := range m.books {
		booksCopy[id] = b
	}
	return memorySnapshot{
		books:  booksCopy,
		sales:  append([]bookstore.Sale{}, m.sales...),
		nextID: m.nextID,
	}
}

func (m *Memory) restoreLocked(s memorySnapshot) {
	m.books = s.books
	m.sales = s.sales
	m.nextID = s.nextID
}

// txMemoryView routes calls to the locked helpers; the parent holds the
// lock for the duration of WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) GetMember(_ context.Context, id bookstore.MemberID) (*bookstore.Member, error) {
	return tv.parent.getMemberLocked(id), nil
}

func (tv *txMemoryView) GetBook(_ context.Context, id bookstore.BookID) (*bookstore.Book, error) {
	return tv.parent.getBookLocked(id), nil
}

func (tv *txMemoryView) DecrementStock(_ context.Context, id bookstore.BookID, qty int) error {
	return tv.parent.decrementStockLocked(id, qty)
}

func (tv *txMemoryView) InsertSale(_ context.Context, s bookstore.Sale) (bookstore.SaleID, error) {
	return tv.parent.insertSaleLocked(s), nil
}

func (tv *txMemoryView) GetSale(_ context.Context, id bookstore.SaleID) (*bookstore.Sale, error) {
	return tv.parent.getSaleLocked(id), nil
}

func (tv *txMemoryView) UpdateDiscount(_ context.Context, id bookstore.SaleID, discount, total int64) error {
	return tv.parent.updateDiscountLocked(id, discount, total)
}

func (tv *txMemoryView) EachSaleJoined(_ context.Context, fn func(bookstore.ReportRow) error) error {
	for _, row := range tv.parent.joinedRowsLocked() {
		if err := fn(row); err != nil {
			return err
		}
	}
	return nil
}

func (tv *txMemoryView) ListSalesJoined(ctx context.Context) ([]bookstore.ReportRow, error) {
	return tv.parent.joinedRowsLocked(), nil
}

func (tv *txMemoryView) ListSaleSummaries(ctx context.Context) ([]bookstore.SaleSummary, error) {
	summaries := []bookstore.SaleSummary{}
	for _, s := range tv.parent.sales {
		member, ok := tv.parent.members[s.MemberID]
		if !ok {
			continue
		}
		summaries = append(summaries, bookstore.SaleSummary{
			ID:         s.ID,
			Date:       s.Date,
			MemberName: member.Name,
		})
	}
	return summaries, nil
}
