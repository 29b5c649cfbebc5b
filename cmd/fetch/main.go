package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/botsandus/retryfetch/internal/commands"
)

var version = "dev" // Will be set during build

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := commands.NewFetchCommand(version).ExecuteContext(ctx)
	stop()

	if err != nil {
		if !commands.Logged(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}

		os.Exit(1)
	}
}
