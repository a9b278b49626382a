/*
report.go - Read-only joined report over the ledger and the catalog

PURPOSE:
  Produces the per-sale report rows (sale joined with member name and
  book title) and an aggregate summary. Pure reads: no side effects,
  re-querying yields current state rather than a frozen snapshot, and
  an empty ledger is a valid non-error outcome.

SEE ALSO:
  - store.go: SaleLedger.EachSaleJoined, the streaming read this wraps
*/
package bookstore

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REPORT QUERY
// =============================================================================

// Report is the read-only joined query over the sale ledger.
type Report struct {
	ledger SaleLedger
}

func NewReport(ledger SaleLedger) *Report {
	return &Report{ledger: ledger}
}

// Rows returns all report rows, ordered by sale id ascending.
func (r *Report) Rows(ctx context.Context) ([]ReportRow, error) {
	return r.ledger.ListSalesJoined(ctx)
}

// Each streams report rows one at a time without materializing the
// full result. Each call re-queries, so rows added since a previous
// call are included.
func (r *Report) Each(ctx context.Context, fn func(ReportRow) error) error {
	return r.ledger.EachSaleJoined(ctx, fn)
}

// =============================================================================
// SUMMARY
// =============================================================================

// Summary aggregates the ledger: gross is price*quantity before
// discount (at read-time prices), net is the sum of stored totals.
// DiscountRate is discount/gross rounded to 4 decimal places, zero for
// an empty or zero-gross ledger.
type Summary struct {
	Sales        int
	Gross        int64
	Discount     int64
	Net          int64
	DiscountRate decimal.Decimal
}

// Summary computes the aggregate in a single streaming pass.
func (r *Report) Summary(ctx context.Context) (Summary, error) {
	var sum Summary
	err := r.ledger.EachSaleJoined(ctx, func(row ReportRow) error {
		sum.Sales++
		sum.Gross += row.UnitPrice * int64(row.Quantity)
		sum.Discount += row.Discount
		sum.Net += row.Total
		return nil
	})
	if err != nil {
		return Summary{}, err
	}

	if sum.Gross != 0 {
		sum.DiscountRate = decimal.NewFromInt(sum.Discount).
			Div(decimal.NewFromInt(sum.Gross)).
			Round(4)
	}
	return sum, nil
}
