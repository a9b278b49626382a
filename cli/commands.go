/*
commands.go - Non-interactive subcommands

PURPOSE:
  Scriptable counterparts of the menu options: add-sale, report,
  revise, and summary. Each opens the store, runs one engine
  operation, prints the result, and exits.
*/
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
)

// NewAddSaleCommand creates the add-sale command.
func NewAddSaleCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date     string
		memberID string
		bookID   string
		quantity int
		discount int64
	)

	cmd := &cobra.Command{
		Use:   "add-sale",
		Short: "Record one sale",
		Example: `  bookstore add-sale --date 2024-01-15 --member M001 --book B001 --qty 2 --discount 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			id, total, err := engine.RecordSale(cmd.Context(), bookstore.SaleDraft{
				Date:     date,
				MemberID: bookstore.MemberID(memberID),
				BookID:   bookstore.BookID(bookID),
				Quantity: quantity,
				Discount: discount,
			})
			if err != nil {
				return fmt.Errorf("%s", errorMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sale %d recorded (total: %d)\n", id, total)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "sale date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&memberID, "member", "", "member id")
	cmd.Flags().StringVar(&bookID, "book", "", "book id")
	cmd.Flags().IntVar(&quantity, "qty", 0, "quantity")
	cmd.Flags().Int64Var(&discount, "discount", 0, "discount")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("member")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("qty")

	return cmd
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the joined sale report",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			return printSaleReport(cmd.Context(), cmd.OutOrStdout(), bookstore.NewReport(store))
		},
	}
}

// NewReviseCommand creates the revise command.
func NewReviseCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		saleID   int64
		discount int64
	)

	cmd := &cobra.Command{
		Use:   "revise",
		Short: "Revise a sale's discount",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			total, err := engine.ReviseSaleDiscount(cmd.Context(), bookstore.SaleID(saleID), discount)
			if err != nil {
				return fmt.Errorf("%s", errorMessage(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sale %d updated (total: %d)\n", saleID, total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&saleID, "sale", 0, "sale id")
	cmd.Flags().Int64Var(&discount, "discount", 0, "new discount")
	_ = cmd.MarkFlagRequired("sale")
	_ = cmd.MarkFlagRequired("discount")

	return cmd
}

// NewSummaryCommand creates the summary command.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print the aggregate sales summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, _, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer store.Close()

			sum, err := bookstore.NewReport(store).Summary(cmd.Context())
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		},
	}
}
