// Command neosctl talks to the Neos VR API from the command line.
//
// Usage:
//
//	neosctl [global flags] <command> [flags] [args]
//
// Run "neosctl help" for the list of commands.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
