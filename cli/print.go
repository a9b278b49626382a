/*
print.go - Report formatting and error translation

PURPOSE:
  Renders the joined sale report as text and maps the core's typed
  errors to user-facing messages. The presentation-only counterpart of
  bookstore/report.go.
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
)

// printSaleReport streams the joined report, one block per sale.
func printSaleReport(ctx context.Context, out io.Writer, report *bookstore.Report) error {
	n := 0
	err := report.Each(ctx, func(row bookstore.ReportRow) error {
		n++
		if n == 1 {
			fmt.Fprintln(out, "\n==================== Sale Report ====================")
		}
		fmt.Fprintf(out, "Sale #%d\n", n)
		fmt.Fprintf(out, "Sale id:     %d\n", row.SaleID)
		fmt.Fprintf(out, "Date:        %s\n", row.Date)
		fmt.Fprintf(out, "Member:      %s\n", row.MemberName)
		fmt.Fprintf(out, "Book:        %s\n", row.BookTitle)
		fmt.Fprintln(out, "-----------------------------------------------------")
		fmt.Fprintf(out, "%-10s %-10s %-10s %-10s\n", "Price", "Qty", "Discount", "Subtotal")
		fmt.Fprintf(out, "%-10d %-10d %-10d %-10d\n", row.UnitPrice, row.Quantity, row.Discount, row.Total)
		fmt.Fprintln(out, "-----------------------------------------------------")
		fmt.Fprintf(out, "Sale total: %d\n", row.Total)
		fmt.Fprintln(out, "=====================================================")
		return nil
	})
	if err != nil {
		return err
	}
	if n == 0 {
		fmt.Fprintln(out, "=> No sales recorded yet")
	}
	return nil
}

// printSummary renders the aggregate sales summary.
func printSummary(out io.Writer, sum bookstore.Summary) {
	fmt.Fprintln(out, "=============== Sales Summary ===============")
	fmt.Fprintf(out, "Sales:          %d\n", sum.Sales)
	fmt.Fprintf(out, "Gross:          %d\n", sum.Gross)
	fmt.Fprintf(out, "Total discount: %d\n", sum.Discount)
	fmt.Fprintf(out, "Net revenue:    %d\n", sum.Net)
	fmt.Fprintf(out, "Discount rate:  %s\n", sum.DiscountRate.String())
	fmt.Fprintln(out, "=============================================")
}

// errorMessage maps core errors to the messages the menu prints.
func errorMessage(err error) string {
	var stockErr *bookstore.InsufficientStockError
	if errors.As(err, &stockErr) {
		return fmt.Sprintf("Error: insufficient stock (available: %d)", stockErr.Available)
	}
	switch {
	case errors.Is(err, bookstore.ErrInvalidReference):
		return "Error: invalid member or book id"
	case errors.Is(err, bookstore.ErrSaleNotFound):
		return "Error: invalid sale id"
	case errors.Is(err, bookstore.ErrInvalidInput):
		return fmt.Sprintf("Error: %v", err)
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}
