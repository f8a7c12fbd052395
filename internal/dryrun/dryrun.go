// Package dryrun previews HAT writes without sending them.
package dryrun

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
)

type contextKey string

const dryRunKey contextKey = "dry_run_enabled"

// WithDryRun returns a context with dry-run mode enabled/disabled.
func WithDryRun(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, dryRunKey, enabled)
}

// IsEnabled returns true if dry-run mode is enabled.
func IsEnabled(ctx context.Context) bool {
	if v, ok := ctx.Value(dryRunKey).(bool); ok {
		return v
	}
	return false
}

// Preview describes a request that would have been sent to the HAT.
type Preview struct {
	// Operation is a verb such as "create" or "delete".
	Operation string `json:"operation"`
	// Resource names what is written, e.g. "records in myapp/notes".
	Resource string `json:"resource"`
	// Method and Path are the HAT call, relative to /api/<version>.
	Method   string         `json:"method"`
	Path     string         `json:"path"`
	Details  map[string]any `json:"details,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Write prints the preview as text. Details are listed in key order.
func (p *Preview) Write(w io.Writer) {
	_, _ = fmt.Fprintf(w, "[DRY-RUN] Would %s %s\n", p.Operation, p.Resource)
	if p.Method != "" {
		_, _ = fmt.Fprintf(w, "  %s %s\n", p.Method, p.Path)
	}

	if len(p.Details) > 0 {
		keys := make([]string, 0, len(p.Details))
		for k := range p.Details {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", k, p.Details[k])
		}
	}

	for _, warning := range p.Warnings {
		_, _ = fmt.Fprintf(w, "  ! %s\n", strings.TrimSpace(warning))
	}
	_, _ = fmt.Fprintln(w, "No changes made (dry-run mode)")
}
