package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log <action-code> [message]",
		Short: "Send a client log entry to the HAT",
		Example: strings.TrimSpace(`
  hat log app_opened
  hat log sync_failed "timeout talking to the HAT"
`),
		Args: cobra.RangeArgs(1, 2),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			entry := api.LogEntry{ActionCode: args[0]}
			if len(args) == 2 {
				entry.Message = &args[1]
			}
			preview := &dryrun.Preview{
				Operation: "log",
				Resource:  strings.TrimSpace(entry.ActionCode),
				Method:    "POST",
				Path:      "/log",
			}
			if entry.Message != nil {
				preview.Details = map[string]any{"message": *entry.Message}
			}
			if ok, err := maybeDryRun(cmd, preview); ok {
				return err
			}
			s, err := getSession()
			if err != nil {
				return err
			}
			ack, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.Ack, *string), onFailure func(*api.StructuredError)) {
				s.client.Log().Log(ctx, s.domain(), s.token(), entry, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, ack)
			}
			if ack.Message != "" {
				printText(cmd, "%s\n", ack.Message)
			} else {
				printText(cmd, "Logged %s\n", strings.TrimSpace(entry.ActionCode))
			}
			return nil
		}),
	}
}
