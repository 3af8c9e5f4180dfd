// Command assetimport imports category and asset spreadsheets into the
// inventory from the terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"assetimport/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
