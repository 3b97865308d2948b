// Package testutil holds helpers shared by test code across packages.
package testutil

import (
	"io"
	"log/slog"
)

// DiscardLogger returns a logger that drops everything. Tests use it so
// engine diagnostics never clutter test output.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
