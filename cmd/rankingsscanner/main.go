package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"RankingsScanner/cmd/rankingsscanner/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
