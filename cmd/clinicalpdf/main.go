// SPDX-License-Identifier: Apache-2.0

// Command clinicalpdf classifies clinical documents, extracts structured
// fields and chunks them for vector indexing.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
