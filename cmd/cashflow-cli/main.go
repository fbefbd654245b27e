// Command cashflow-cli projects workbooks from the command line and inspects
// the run log.
package main

import (
	"os"

	"cashflow/cmd/cashflow-cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
