// Package errors renders command failures for the terminal.
package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/julianstephens/detoxscan/internal/analyzer"
	"github.com/julianstephens/detoxscan/internal/history"
	"github.com/julianstephens/detoxscan/internal/keyring"
	"github.com/julianstephens/detoxscan/internal/logger"
	"github.com/julianstephens/detoxscan/internal/scanner"
	"github.com/julianstephens/detoxscan/internal/storage"
)

var hints = []struct {
	target error
	hint   string
}{
	{storage.ErrNotInitialized, "Run 'detoxscan init' to create the database."},
	{storage.ErrLockTimeout, "Another detoxscan process may be holding the store; retry in a moment."},
	{analyzer.ErrMissingAPIKey, "Store a key with 'detoxscan keyring set' or export DETOXSCAN_API_KEY."},
	{scanner.ErrQuotaExhausted, "Run 'detoxscan trial start' for unlimited scans, or come back tomorrow."},
	{history.ErrNotFound, "Run 'detoxscan history list' to see saved scan ids."},
	{keyring.ErrKeyringUnavailable, "Use the DETOXSCAN_API_KEY environment variable instead."},
}

// Hint returns a suggested next step for well-known errors, or "".
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix.
// Analysis failures show only the user-facing message; the cause is in the log.
func Format(err error) string {
	if err == nil {
		return ""
	}
	if stderrors.Is(err, analyzer.ErrAnalysisFailed) {
		return fmt.Sprintf("Error: %v", analyzer.ErrAnalysisFailed)
	}
	return fmt.Sprintf("Error: %v", err)
}

// Print writes the formatted error and any hint to w.
func Print(w io.Writer, err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(w, Format(err))
	if hint := Hint(err); hint != "" {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}

// Fatal logs err, prints it to stderr and exits with status 1.
func Fatal(err error) {
	if err == nil {
		return
	}
	logger.Error("Command execution failed", "error", err)
	Print(os.Stderr, err)
	os.Exit(1)
}
