// Package main is the loom command: it compiles wiring harness documents
// into Graphviz diagrams and bills of materials.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/loom/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := cli.NewRootCommand().ExecuteContext(ctx)
	stop()

	// Commands report coded errors themselves; anything else (bad flags,
	// wrong argument count, write failures) is printed here.
	var exitErr *cli.ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
