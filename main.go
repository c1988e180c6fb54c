package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/devreg/devreg/internal/cli"
	"github.com/devreg/devreg/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx, os.Stdout, nil, nil)
	stop()
	if err != nil {
		logger.Errorf("%v", err)
	}
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
