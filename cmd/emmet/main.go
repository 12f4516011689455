// Package main is the entry point for the emmet build tool.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/grindlemire/graft"
	"go.trai.ch/emmet/cmd/emmet/commands"
	"go.trai.ch/emmet/internal/app"
	_ "go.trai.ch/emmet/internal/wiring"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a, _, err := graft.ExecuteFor[*app.App](ctx)
	if err != nil {
		// The logger is not available when initialization failed.
		_, _ = os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return app.ExitInternal
	}

	cli := commands.New(a)
	cli.SetArgs(args)
	return cli.Execute(ctx)
}
