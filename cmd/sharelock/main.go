package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bashhack/sharelock/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	versionInfo := config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	}

	app := NewDefaultApp(versionInfo)

	// Cancelling the context interrupts a pending acquire and is forwarded
	// to the guarded command.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	code := app.Execute(ctx, os.Args[1:])
	stop()

	app.exit(code)
}
