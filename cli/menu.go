/*
menu.go - Interactive menu loop

PURPOSE:
  The classic numbered menu over the engine. An ordinary loop: bad
  input re-prompts, it never re-invokes itself recursively, and Enter
  or option 5 exits cleanly.
*/
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
)

func runMenu(cmd *cobra.Command, engine *bookstore.Engine, report *bookstore.Report, ledger bookstore.SaleLedger) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(cmd.InOrStdin())

	for {
		fmt.Fprintln(out, "***************** Menu *****************")
		fmt.Fprintln(out, "1. Record a sale")
		fmt.Fprintln(out, "2. Show sale report")
		fmt.Fprintln(out, "3. Revise a sale's discount")
		fmt.Fprintln(out, "4. Delete a sale")
		fmt.Fprintln(out, "5. Quit")
		fmt.Fprintln(out, "****************************************")
		choice, ok := prompt(scanner, out, "Choose an option (Enter to quit): ")
		if !ok || choice == "" || choice == "5" {
			return nil
		}

		switch choice {
		case "1":
			menuRecordSale(ctx, scanner, out, engine)
		case "2":
			menuReport(ctx, out, report)
		case "3":
			menuReviseSale(ctx, scanner, out, engine, ledger)
		case "4":
			// Restock-on-delete semantics are undefined, so deletion
			// stays unsupported rather than guessing.
			fmt.Fprintln(out, "=> Deleting a sale is not supported")
		default:
			fmt.Fprintln(out, "=> Please choose a valid option (1-5)")
		}
	}
}

func menuRecordSale(ctx context.Context, scanner *bufio.Scanner, out io.Writer, engine *bookstore.Engine) {
	date, ok := prompt(scanner, out, "Sale date (YYYY-MM-DD): ")
	if !ok {
		return
	}
	memberID, ok := prompt(scanner, out, "Member id: ")
	if !ok {
		return
	}
	bookID, ok := prompt(scanner, out, "Book id: ")
	if !ok {
		return
	}

	qty, ok := promptInt(scanner, out, "Quantity: ", func(n int64) (bool, string) {
		if n <= 0 {
			return false, "=> Error: quantity must be a positive integer"
		}
		return true, ""
	})
	if !ok {
		return
	}

	discount, ok := promptInt(scanner, out, "Discount: ", func(n int64) (bool, string) {
		if n < 0 {
			return false, "=> Error: discount must not be negative"
		}
		return true, ""
	})
	if !ok {
		return
	}

	id, total, err := engine.RecordSale(ctx, bookstore.SaleDraft{
		Date:     date,
		MemberID: bookstore.MemberID(memberID),
		BookID:   bookstore.BookID(bookID),
		Quantity: int(qty),
		Discount: discount,
	})
	if err != nil {
		fmt.Fprintf(out, "=> %s\n", errorMessage(err))
		return
	}
	fmt.Fprintf(out, "=> Sale %d recorded (total: %d)\n", id, total)
}

func menuReport(ctx context.Context, out io.Writer, report *bookstore.Report) {
	if err := printSaleReport(ctx, out, report); err != nil {
		fmt.Fprintf(out, "=> %s\n", errorMessage(err))
	}
}

func menuReviseSale(ctx context.Context, scanner *bufio.Scanner, out io.Writer, engine *bookstore.Engine, ledger bookstore.SaleLedger) {
	summaries, err := ledger.ListSaleSummaries(ctx)
	if err != nil {
		fmt.Fprintf(out, "=> %s\n", errorMessage(err))
		return
	}
	if len(summaries) == 0 {
		fmt.Fprintln(out, "=> No sales recorded yet")
		return
	}

	fmt.Fprintln(out, "======== Recorded sales ========")
	for i, sum := range summaries {
		fmt.Fprintf(out, "%d. Sale %d - %s - %s\n", i+1, sum.ID, sum.MemberName, sum.Date)
	}
	fmt.Fprintln(out, "================================")

	id, ok := promptInt(scanner, out, "Sale id to revise (Enter to cancel): ", func(n int64) (bool, string) {
		return true, ""
	})
	if !ok {
		return
	}

	discount, ok := promptInt(scanner, out, "New discount: ", func(n int64) (bool, string) {
		if n < 0 {
			return false, "=> Error: discount must not be negative"
		}
		return true, ""
	})
	if !ok {
		return
	}

	total, err := engine.ReviseSaleDiscount(ctx, bookstore.SaleID(id), discount)
	if err != nil {
		fmt.Fprintf(out, "=> %s\n", errorMessage(err))
		return
	}
	fmt.Fprintf(out, "=> Sale %d updated (total: %d)\n", id, total)
}

func prompt(scanner *bufio.Scanner, out io.Writer, label string) (string, bool) {
	fmt.Fprint(out, label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

// promptInt re-prompts until the input parses as an integer accepted
// by valid. Returns false when input is exhausted.
func promptInt(scanner *bufio.Scanner, out io.Writer, label string, valid func(int64) (bool, string)) (int64, bool) {
	for {
		text, ok := prompt(scanner, out, label)
		if !ok || text == "" {
			return 0, false
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			fmt.Fprintln(out, "=> Error: please enter a whole number")
			continue
		}
		if accepted, msg := valid(n); !accepted {
			fmt.Fprintln(out, msg)
			continue
		}
		return n, true
	}
}
