package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/idlsdk/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
