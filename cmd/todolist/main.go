package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/Makepad-fr/todolist/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Run(ctx, os.Args, os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
