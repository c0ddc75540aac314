package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Endromia-9027/CodeRefactorGPT/internal/domain"
	"github.com/Endromia-9027/CodeRefactorGPT/internal/infrastructure/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.NewRootCmd(cli.Options{}).ExecuteContext(ctx)
	stop()

	if err != nil {
		var exitErr *domain.ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(domain.ExitCodeOf(err))
	}
}
