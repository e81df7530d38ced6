// Command traitkit evaluates type-trait predicates and rewrites from the
// command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/traitkit/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	cmd := cli.NewRootCommand()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	stop()
	os.Exit(cli.GetExitCode(err))
}
