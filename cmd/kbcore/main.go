// Command kbcore runs the KB-Unified client-side state engine against a
// live transport. See internal/cli for the command tree.
package main

import (
	"fmt"
	"os"

	"github.com/mraspaud/kb-solaria/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
