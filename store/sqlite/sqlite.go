/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements bookstore.TxStore using SQLite. The same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  member: Registered customers (created at bootstrap)
  book:   Catalog items; stock mutated only via DecrementStock
  sale:   Sale rows; append-mostly with the discount update path

ATOMIC UNITS:
  WithTx wraps a database/sql transaction. The sale insert and the
  stock decrement commit together or roll back together; a concurrent
  reader never observes one without the other.

CONDITIONAL DECREMENT:
  DecrementStock issues
    UPDATE book SET stock = stock - ? WHERE id = ? AND stock >= ?
  and checks the affected row count, so stock can never go negative
  even under concurrent writers or when the engine's pre-check was
  bypassed. The schema-level CHECK(stock >= 0) is a second backstop.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety on top of SQLite's own locking.
  WAL mode keeps readers unblocked while a writer commits.

USAGE:
  store, err := sqlite.New("./bookstore.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  engine := bookstore.NewEngine(store)

SEE ALSO:
  - bookstore/store.go: Interface definitions
  - bookstore/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
)

// Store implements bookstore.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite allows a single writer anyway, and a
	// ":memory:" database exists per connection.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS member (
		id    TEXT PRIMARY KEY,
		name  TEXT NOT NULL,
		phone TEXT NOT NULL,
		email TEXT
	);

	CREATE TABLE IF NOT EXISTS book (
		id    TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		price INTEGER NOT NULL CHECK (price >= 0),
		stock INTEGER NOT NULL CHECK (stock >= 0)
	);

	CREATE TABLE IF NOT EXISTS sale (
		id        INTEGER PRIMARY KEY AUTOINCREMENT,
		date      TEXT NOT NULL,
		member_id TEXT NOT NULL REFERENCES member(id),
		book_id   TEXT NOT NULL REFERENCES book(id),
		quantity  INTEGER NOT NULL,
		discount  INTEGER NOT NULL,
		total     INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sale_member ON sale(member_id);
	CREATE INDEX IF NOT EXISTS idx_sale_book ON sale(book_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// dbtx is the subset of *sql.DB and *sql.Tx the row helpers need, so
// the same code serves both direct calls and calls inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// CATALOG (bookstore.Catalog interface)
// =============================================================================

// GetMember returns the member, or nil when the id is unknown.
func (s *Store) GetMember(ctx context.Context, id bookstore.MemberID) (*bookstore.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMember(ctx, s.db, id)
}

// GetBook returns the book, or nil when the id is unknown.
func (s *Store) GetBook(ctx context.Context, id bookstore.BookID) (*bookstore.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBook(ctx, s.db, id)
}

// DecrementStock reduces a book's stock, refusing to drive it negative.
func (s *Store) DecrementStock(ctx context.Context, id bookstore.BookID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return decrementStock(ctx, s.db, id, qty)
}

func getMember(ctx context.Context, db dbtx, id bookstore.MemberID) (*bookstore.Member, error) {
	var (
		m     bookstore.Member
		email sql.NullString
	)
	err := db.QueryRowContext(ctx,
		"SELECT id, name, phone, email FROM member WHERE id = ?", id,
	).Scan(&m.ID, &m.Name, &m.Phone, &email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query member: %w", err)
	}
	m.Email = email.String
	return &m, nil
}

func getBook(ctx context.Context, db dbtx, id bookstore.BookID) (*bookstore.Book, error) {
	var b bookstore.Book
	err := db.QueryRowContext(ctx,
		"SELECT id, title, price, stock FROM book WHERE id = ?", id,
	).Scan(&b.ID, &b.Title, &b.Price, &b.Stock)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query book: %w", err)
	}
	return &b, nil
}

func decrementStock(ctx context.Context, db dbtx, id bookstore.BookID, qty int) error {
	res, err := db.ExecContext(ctx,
		"UPDATE book SET stock = stock - ? WHERE id = ? AND stock >= ?",
		qty, id, qty,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if affected == 1 {
		return nil
	}

	// The conditional update matched nothing: either the book does not
	// exist or the decrement would drive stock negative.
	book, err := getBook(ctx, db, id)
	if err != nil {
		return err
	}
	if book == nil {
		return &bookstore.InvalidReferenceError{Kind: "book", ID: string(id)}
	}
	return &bookstore.InsufficientStockError{
		BookID:    id,
		Requested: qty,
		Available: book.Stock,
	}
}

// =============================================================================
// SALE LEDGER (bookstore.SaleLedger interface)
// =============================================================================

// InsertSale persists a sale row and returns its autoincrement id.
func (s *Store) InsertSale(ctx context.Context, sale bookstore.Sale) (bookstore.SaleID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertSale(ctx, s.db, sale)
}

// GetSale returns the sale, or nil when the id is unknown.
func (s *Store) GetSale(ctx context.Context, id bookstore.SaleID) (*bookstore.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getSale(ctx, s.db, id)
}

// UpdateDiscount sets a sale's discount and total in one row update.
func (s *Store) UpdateDiscount(ctx context.Context, id bookstore.SaleID, discount, total int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return updateDiscount(ctx, s.db, id, discount, total)
}

// EachSaleJoined streams the joined sale report in ascending id order.
func (s *Store) EachSaleJoined(ctx context.Context, fn func(bookstore.ReportRow) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return eachSaleJoined(ctx, s.db, fn)
}

// ListSalesJoined is the slice convenience over EachSaleJoined.
func (s *Store) ListSalesJoined(ctx context.Context) ([]bookstore.ReportRow, error) {
	rows := []bookstore.ReportRow{}
	err := s.EachSaleJoined(ctx, func(row bookstore.ReportRow) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListSaleSummaries returns the short sale listing in ascending id order.
func (s *Store) ListSaleSummaries(ctx context.Context) ([]bookstore.SaleSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listSaleSummaries(ctx, s.db)
}

func insertSale(ctx context.Context, db dbtx, sale bookstore.Sale) (bookstore.SaleID, error) {
	res, err := db.ExecContext(ctx,
		`INSERT INTO sale (date, member_id, book_id, quantity, discount, total)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sale.Date, sale.MemberID, sale.BookID, sale.Quantity, sale.Discount, sale.Total,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert sale: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read sale id: %w", err)
	}
	return bookstore.SaleID(id), nil
}

func getSale(ctx context.Context, db dbtx, id bookstore.SaleID) (*bookstore.Sale, error) {
	var sale bookstore.Sale
	err := db.QueryRowContext(ctx,
		`SELECT id, date, member_id, book_id, quantity, discount, total
		 FROM sale WHERE id = ?`, id,
	).Scan(&sale.ID, &sale.Date, &sale.MemberID, &sale.BookID,
		&sale.Quantity, &sale.Discount, &sale.Total)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sale: %w", err)
	}
	return &sale, nil
}

func updateDiscount(ctx context.Context, db dbtx, id bookstore.SaleID, discount, total int64) error {
	res, err := db.ExecContext(ctx,
		"UPDATE sale SET discount = ?, total = ? WHERE id = ?",
		discount, total, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if affected == 0 {
		return bookstore.ErrSaleNotFound
	}
	return nil
}

func eachSaleJoined(ctx context.Context, db dbtx, fn func(bookstore.ReportRow) error) error {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.date, m.name, b.title, b.price, s.quantity, s.discount, s.total
		FROM sale AS s
		INNER JOIN member AS m ON s.member_id = m.id
		INNER JOIN book AS b ON s.book_id = b.id
		ORDER BY s.id ASC
	`)
	if err != nil {
		return fmt.Errorf("failed to query sale report: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row bookstore.ReportRow
		if err := rows.Scan(&row.SaleID, &row.Date, &row.MemberName, &row.BookTitle,
			&row.UnitPrice, &row.Quantity, &row.Discount, &row.Total); err != nil {
			return fmt.Errorf("failed to scan sale report row: %w", err)
		}
		if err := fn(row); err != nil {
			return err
		}
	}
	return rows.Err()
}

func listSaleSummaries(ctx context.Context, db dbtx) ([]bookstore.SaleSummary, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT s.id, s.date, m.name
		FROM sale AS s
		INNER JOIN member AS m ON s.member_id = m.id
		ORDER BY s.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sale list: %w", err)
	}
	defer rows.Close()

	summaries := []bookstore.SaleSummary{}
	for rows.Next() {
		var sum bookstore.SaleSummary
		if err := rows.Scan(&sum.ID, &sum.Date, &sum.MemberName); err != nil {
			return nil, fmt.Errorf("failed to scan sale list row: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (bookstore.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The writer lock is
// held for the whole unit, so no other writer can interleave between
// the unit's reads and its commit.
func (s *Store) WithTx(ctx context.Context, fn func(store bookstore.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// txStore routes Store calls through an open *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) GetMember(ctx context.Context, id bookstore.MemberID) (*bookstore.Member, error) {
	return getMember(ctx, ts.tx, id)
}

func (ts *txStore) GetBook(ctx context.Context, id bookstore.BookID) (*bookstore.Book, error) {
	return getBook(ctx, ts.tx, id)
}

func (ts *txStore) DecrementStock(ctx context.Context, id bookstore.BookID, qty int) error {
	return decrementStock(ctx, ts.tx, id, qty)
}

func (ts *txStore) InsertSale(ctx context.Context, sale bookstore.Sale) (bookstore.SaleID, error) {
	return insertSale(ctx, ts.tx, sale)
}

func (ts *txStore) GetSale(ctx context.Context, id bookstore.SaleID) (*bookstore.Sale, error) {
	return getSale(ctx, ts.tx, id)
}

func (ts *txStore) UpdateDiscount(ctx context.Context, id bookstore.SaleID, discount, total int64) error {
	return updateDiscount(ctx, ts.tx, id, discount, total)
}

func (ts *txStore) EachSaleJoined(ctx context.Context, fn func(bookstore.ReportRow) error) error {
	return eachSaleJoined(ctx, ts.tx, fn)
}

func (ts *txStore) ListSalesJoined(ctx context.Context) ([]bookstore.ReportRow, error) {
	rows := []bookstore.ReportRow{}
	err := eachSaleJoined(ctx, ts.tx, func(row bookstore.ReportRow) error {
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (ts *txStore) ListSaleSummaries(ctx context.Context) ([]bookstore.SaleSummary, error) {
	return listSaleSummaries(ctx, ts.tx)
}

// =============================================================================
// BOOTSTRAP
// =============================================================================

// SaveMember adds or replaces a member (bootstrap only).
func (s *Store) SaveMember(ctx context.Context, m bookstore.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO member (id, name, phone, email)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone = excluded.phone,
			email = excluded.email
	`
	_, err := s.db.ExecContext(ctx, query, m.ID, m.Name, m.Phone, nullString(m.Email))
	return err
}

// SaveBook adds or replaces a book (bootstrap only).
func (s *Store) SaveBook(ctx context.Context, b bookstore.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO book (id, title, price, stock)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			price = excluded.price,
			stock = excluded.stock
	`
	_, err := s.db.ExecContext(ctx, query, b.ID, b.Title, b.Price, b.Stock)
	return err
}

// Seed inserts the sample members, books, and historical sales.
// Idempotent: existing rows are left untouched.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seed := `
	INSERT OR IGNORE INTO member (id, name, phone, email) VALUES
		('M001', 'Alice', '0912-345678', 'alice@example.com'),
		('M002', 'Bob', '0923-456789', 'bob@example.com'),
		('M003', 'Cathy', '0934-567890', 'cathy@example.com');

	INSERT OR IGNORE INTO book (id, title, price, stock) VALUES
		('B001', 'Python Programming', 600, 50),
		('B002', 'Data Science Basics', 800, 30),
		('B003', 'Machine Learning Guide', 1200, 20);

	INSERT OR IGNORE INTO sale (id, date, member_id, book_id, quantity, discount, total) VALUES
		(1, '2024-01-15', 'M001', 'B001', 2, 100, 1100),
		(2, '2024-01-16', 'M002', 'B002', 1, 50, 750),
		(3, '2024-01-17', 'M001', 'B003', 3, 200, 3400),
		(4, '2024-01-18', 'M003', 'B001', 1, 0, 600);
	`

	_, err := s.db.ExecContext(ctx, seed)
	if err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
