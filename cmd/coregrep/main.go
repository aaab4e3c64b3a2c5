// Command coregrep is the search tool's entry point: parse flags, compile a
// plan, run the search, and map the outcome to the exit-code contract of
// spec §7 (0 = match found, 1 = ran cleanly with no match, >1 = usage or
// runtime error).
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/coregx/coregrep/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	err := cli.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, cli.ErrNoMatch):
		return 1
	default:
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
}
