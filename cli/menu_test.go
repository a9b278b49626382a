package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
	memstore "github.com/hugohongkipan/bookstore-manager/bookstore/store"
)

// runMenuScript feeds scripted keystrokes to the menu against a fresh
// in-memory store and returns everything it printed.
func runMenuScript(t *testing.T, input string) (string, *memstore.Memory) {
	m := memstore.NewMemory()
	m.PutMember(bookstore.Member{ID: "M001", Name: "Alice", Phone: "0912-345678", Email: "alice@example.com"})
	m.PutBook(bookstore.Book{ID: "B001", Title: "Python Programming", Price: 600, Stock: 50})

	engine := bookstore.NewEngine(m)
	report := bookstore.NewReport(m)

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.SetIn(strings.NewReader(input))
	out := &bytes.Buffer{}
	cmd.SetOut(out)

	require.NoError(t, runMenu(cmd, engine, report, m))
	return out.String(), m
}

func TestMenu_QuitOnEnter(t *testing.T) {
	out, _ := runMenuScript(t, "\n")
	assert.Contains(t, out, "***************** Menu *****************")
}

func TestMenu_RecordSaleThenReport(t *testing.T) {
	// GIVEN: Scripted input recording 2 copies of B001 with discount 100
	// WHEN: Showing the report and quitting
	// THEN: The sale is confirmed and appears in the report

	script := strings.Join([]string{
		"1",          // record a sale
		"2024-01-15", // date
		"M001",       // member
		"B001",       // book
		"2",          // quantity
		"100",        // discount
		"2",          // show report
		"5",          // quit
	}, "\n") + "\n"

	out, m := runMenuScript(t, script)

	assert.Contains(t, out, "=> Sale 1 recorded (total: 1100)")
	assert.Contains(t, out, "Sale Report")
	assert.Contains(t, out, "Alice")
	assert.Contains(t, out, "Python Programming")

	book, err := m.GetBook(context.Background(), "B001")
	require.NoError(t, err)
	assert.Equal(t, 48, book.Stock)
}

func TestMenu_BadQuantityReprompts(t *testing.T) {
	script := strings.Join([]string{
		"1",
		"2024-01-15",
		"M001",
		"B001",
		"zero", // not an integer
		"-1",   // not positive
		"1",    // accepted
		"0",
		"5",
	}, "\n") + "\n"

	out, _ := runMenuScript(t, script)

	assert.Contains(t, out, "=> Error: please enter a whole number")
	assert.Contains(t, out, "=> Error: quantity must be a positive integer")
	assert.Contains(t, out, "=> Sale 1 recorded (total: 600)")
}

func TestMenu_UnknownMemberMessage(t *testing.T) {
	script := strings.Join([]string{
		"1",
		"2024-01-15",
		"M999",
		"B001",
		"1",
		"0",
		"5",
	}, "\n") + "\n"

	out, _ := runMenuScript(t, script)
	assert.Contains(t, out, "=> Error: invalid member or book id")
}

func TestMenu_InsufficientStockMessage(t *testing.T) {
	script := strings.Join([]string{
		"1",
		"2024-01-15",
		"M001",
		"B001",
		"60", // only 50 in stock
		"0",
		"5",
	}, "\n") + "\n"

	out, m := runMenuScript(t, script)
	assert.Contains(t, out, "=> Error: insufficient stock (available: 50)")

	book, err := m.GetBook(context.Background(), "B001")
	require.NoError(t, err)
	assert.Equal(t, 50, book.Stock, "failed sale must not touch stock")
}

func TestMenu_DeleteUnsupported(t *testing.T) {
	out, _ := runMenuScript(t, "4\n5\n")
	assert.Contains(t, out, "=> Deleting a sale is not supported")
}

func TestMenu_ReportEmpty(t *testing.T) {
	out, _ := runMenuScript(t, "2\n5\n")
	assert.Contains(t, out, "=> No sales recorded yet")
}

func TestMenu_ReviseSale(t *testing.T) {
	script := strings.Join([]string{
		"1",
		"2024-01-15",
		"M001",
		"B001",
		"2",
		"100",
		"3",  // revise
		"1",  // sale id
		"50", // new discount
		"5",
	}, "\n") + "\n"

	out, m := runMenuScript(t, script)

	assert.Contains(t, out, "======== Recorded sales ========")
	assert.Contains(t, out, "=> Sale 1 updated (total: 1150)")

	sale, err := m.GetSale(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, sale)
	assert.Equal(t, int64(50), sale.Discount)
	assert.Equal(t, int64(1150), sale.Total)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Error: insufficient stock (available: 3)",
		errorMessage(&bookstore.InsufficientStockError{BookID: "B001", Requested: 9, Available: 3}))
	assert.Equal(t, "Error: invalid member or book id",
		errorMessage(&bookstore.InvalidReferenceError{Kind: "member", ID: "M999"}))
	assert.Equal(t, "Error: invalid sale id", errorMessage(bookstore.ErrSaleNotFound))
}
