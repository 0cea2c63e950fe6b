// Command framecheck checks relational specs for missing frame conditions.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/framecheck/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	var exitErr *cli.ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// Commands report their own failures; anything else comes from cobra.
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(cli.GetExitCode(err))
}
