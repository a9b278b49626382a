/*
main.go - Application entry point

PURPOSE:
  Runs the bookstore CLI. All wiring lives in the cli package; this
  file only executes the root command and sets the exit code.

EXAMPLES:
  # Interactive menu against the default database
  ./bookstore

  # In-memory database, no seed data
  ./bookstore --db=":memory:" --seed=false

  # Scripted use
  ./bookstore add-sale --date 2024-01-15 --member M001 --book B001 --qty 2 --discount 100
  ./bookstore report
*/
package main

import (
	"fmt"
	"os"

	"github.com/hugohongkipan/bookstore-manager/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
