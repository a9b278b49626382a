/*
Package cli is the thin interactive shim around the sale-transaction engine.

PURPOSE:
  Owns everything the core deliberately does not: the menu loop,
  keyboard input parsing, schema bootstrap and seed data, and the
  formatting of report text. It translates the core's typed errors
  into user-facing messages and contains no business logic.

COMMANDS:
  bookstore              Interactive menu (the default)
  bookstore add-sale     Record one sale non-interactively
  bookstore report       Print the joined sale report
  bookstore revise       Revise a sale's discount
  bookstore summary      Print the aggregate sales summary

SEE ALSO:
  - bookstore/engine.go: The operations these commands call
  - store/sqlite: The store the root command opens
*/
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hugohongkipan/bookstore-manager/bookstore"
	"github.com/hugohongkipan/bookstore-manager/store/sqlite"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Database string
	Seed     bool
}

// NewRootCommand creates the root command for the bookstore CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "bookstore",
		Short:         "Bookstore sale manager",
		Long:          "Records retail book sales against a SQLite store, keeping book stock consistent with recorded sales.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, engine, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			return runMenu(cmd, engine, bookstore.NewReport(store), store)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.Database, "db", "bookstore.db", "SQLite database path")
	cmd.PersistentFlags().BoolVar(&opts.Seed, "seed", true, "insert sample members, books, and sales")

	cmd.AddCommand(NewAddSaleCommand(opts))
	cmd.AddCommand(NewReportCommand(opts))
	cmd.AddCommand(NewReviseCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))

	return cmd
}

// openStore opens the database, migrates the schema, and optionally
// seeds it, returning the store and an engine bound to it.
func openStore(opts *RootOptions) (*sqlite.Store, *bookstore.Engine, error) {
	store, err := sqlite.New(opts.Database)
	if err != nil {
		return nil, nil, err
	}
	if opts.Seed {
		if err := store.Seed(context.Background()); err != nil {
			store.Close()
			return nil, nil, err
		}
	}
	return store, bookstore.NewEngine(store), nil
}
