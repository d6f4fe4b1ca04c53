package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"gitsync.dev/gitsync/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, fmt.Sprintf("%s (%s, %s)", version, commit, date), os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
