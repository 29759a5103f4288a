package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ui_flow_runner/presentation/terminal"
)

func main() {
	termInterface, err := terminal.NewTerminalInterface()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = termInterface.Run(ctx, os.Args[1:])
	stop()

	if closeErr := termInterface.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close browser: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
