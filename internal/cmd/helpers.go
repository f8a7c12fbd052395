package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
	"github.com/hubofallthings/hat-cli/internal/iocontext"
	"github.com/hubofallthings/hat-cli/internal/outfmt"
	"github.com/hubofallthings/hat-cli/internal/validation"
)

// printJSON outputs data as JSON with optional query filtering
func printJSON(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut).Output(v)
}

// printJSONErr writes a JSON value to stderr.
func printJSONErr(cmd *cobra.Command, v any) error {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.WriteJSONMaybeCompact(ioStreams.ErrOut, v, outfmt.IsCompact(cmd.Context()))
}

// isJSON checks if the command context wants JSON output
func isJSON(cmd *cobra.Command) bool {
	return outfmt.IsJSON(cmd.Context())
}

func newFormatter(cmd *cobra.Command) *outfmt.Formatter {
	ioStreams := iocontext.GetIO(cmd.Context())
	return outfmt.NewFormatter(cmd.Context(), ioStreams.Out, ioStreams.ErrOut)
}

func printText(cmd *cobra.Command, format string, args ...any) {
	_, _ = fmt.Fprintf(iocontext.GetIO(cmd.Context()).Out, format, args...)
}

// errAlreadyHandled is a sentinel error indicating the error was already printed to stderr.
// Commands using RunE return this to signal Cobra that an error occurred (for exit code)
// without Cobra printing it again (since SilenceErrors is true on root command).
var errAlreadyHandled = errors.New("error already handled")

type handledError struct {
	err      error
	exitCode int
}

func (e *handledError) Error() string {
	return e.err.Error()
}

func (e *handledError) Unwrap() error {
	return errAlreadyHandled
}

func (e *handledError) ExitCode() int {
	return e.exitCode
}

// Cause returns the original command error.
func (e *handledError) Cause() error {
	return e.err
}

// RunE wraps a command function with enhanced error handling
func RunE(fn func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		if isJSON(cmd) {
			_ = printJSONErr(cmd, map[string]any{"error": api.StructuredErrorFromError(err)})
		} else {
			_, _ = fmt.Fprint(iocontext.GetIO(cmd.Context()).ErrOut, HandleError(err))
		}
		return &handledError{err: err, exitCode: ExitCode(err)}
	}
}

// maybeDryRun prints preview and reports true when --dry-run is set; the
// caller then returns without calling the HAT.
func maybeDryRun(cmd *cobra.Command, preview *dryrun.Preview) (bool, error) {
	if !dryrun.IsEnabled(cmd.Context()) {
		return false, nil
	}
	if isJSON(cmd) {
		return true, printJSON(cmd, map[string]any{"dry_run": true, "preview": preview})
	}
	preview.Write(iocontext.GetIO(cmd.Context()).Out)
	return true, nil
}

// readPayload resolves a --data value: inline JSON, @path for a file, or "-"
// for stdin. The result is checked to be valid JSON within size limits.
func readPayload(cmd *cobra.Command, value string) ([]byte, error) {
	value = strings.TrimSpace(value)
	var data []byte
	switch {
	case value == "":
		return nil, fmt.Errorf("--data is required")
	case value == "-":
		raw, err := io.ReadAll(io.LimitReader(iocontext.GetIO(cmd.Context()).In, validation.MaxJSONPayload+1))
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		data = raw
	case strings.HasPrefix(value, "@"):
		raw, err := os.ReadFile(strings.TrimPrefix(value, "@"))
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		data = raw
	default:
		data = []byte(value)
	}
	if err := validation.ValidateJSONPayload(string(data)); err != nil {
		return nil, fmt.Errorf("invalid --data: %w", err)
	}
	return data, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
