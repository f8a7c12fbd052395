package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/config"
	"github.com/hubofallthings/hat-cli/internal/debug"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
	"github.com/hubofallthings/hat-cli/internal/iocontext"
	"github.com/hubofallthings/hat-cli/internal/outfmt"
	"github.com/hubofallthings/hat-cli/internal/validation"
)

// rootFlags holds global CLI flags
type rootFlags struct {
	Profile        string
	Output         string
	JSON           bool
	Debug          bool
	Query          string
	Compact        bool
	Timeout        time.Duration
	CompatDelivery bool
	AllowPrivate   bool
	DryRun         bool
}

// flags holds the global command flags. It is package-level mutable state
// that is reset at the start of every Execute call; tests rely on that reset.
var flags = rootFlags{Output: defaultOutput()}

// settings are loaded once per Execute in PersistentPreRunE.
var settings config.Settings

func defaultOutput() string {
	if value := strings.TrimSpace(os.Getenv("HAT_OUTPUT")); value != "" {
		return value
	}
	return "text"
}

func parseBoolEnv(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

// Execute runs the root command
func Execute(ctx context.Context, args []string) error {
	// .env runs first so HAT_OUTPUT and friends feed the flag defaults.
	dotEnvErr := config.LoadDotEnv()

	flags = rootFlags{
		Output:       defaultOutput(),
		AllowPrivate: parseBoolEnv("HAT_ALLOW_PRIVATE"),
	}
	settings = config.Settings{}
	shutdownLogger := debug.ShutdownFunc(func() error { return nil })

	root := &cobra.Command{
		Use:           "hat",
		Short:         "CLI for a HAT (Hub of All Things) personal data server",
		Long:          "Read the she feed, manage data records and tools, and write logs on a HAT personal data server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			shutdownLogger = debug.SetupLogger(flags.Debug)
			ctx = debug.WithDebug(ctx, flags.Debug)
			ctx = dryrun.WithDryRun(ctx, flags.DryRun)
			if dotEnvErr != nil {
				slog.Warn("ignoring .env file", "error", dotEnvErr)
			}

			loaded, err := config.LoadSettings(slog.Default())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("timeout") {
				if flags.Timeout <= 0 {
					return fmt.Errorf("--timeout must be positive")
				}
				loaded.Timeout = flags.Timeout
			}
			if flags.CompatDelivery {
				loaded.Delivery = config.DeliveryCompat
			}
			settings = loaded

			allowPrivate := settings.AllowPrivate || flags.AllowPrivate
			validation.SetAllowPrivate(allowPrivate)

			if flags.JSON {
				if cmd.Flags().Changed("output") && flags.Output != "json" {
					return fmt.Errorf("--json conflicts with --output %s", flags.Output)
				}
				flags.Output = "json"
			}
			mode, err := outfmt.Parse(flags.Output)
			if err != nil {
				return err
			}
			if flags.Query != "" && mode == outfmt.Text {
				if cmd.Flags().Changed("output") {
					return fmt.Errorf("--query requires --output json or jsonl (or --json)")
				}
				mode = outfmt.JSON
			}
			ctx = outfmt.WithMode(ctx, mode)
			ctx = outfmt.WithCompact(ctx, flags.Compact)
			if flags.Query != "" {
				ctx = outfmt.WithQuery(ctx, flags.Query)
			}

			ioStreams := iocontext.GetIO(ctx)
			ctx = iocontext.WithIO(ctx, ioStreams)
			cmd.SetOut(ioStreams.Out)
			cmd.SetErr(ioStreams.ErrOut)

			if allowPrivate {
				_, _ = fmt.Fprintln(ioStreams.ErrOut, "Warning: allowing private/localhost HAT domains (use only with trusted targets).")
			}

			cmd.SetContext(ctx)
			return nil
		},
	}

	root.SetContext(ctx)
	root.SetArgs(args)
	root.PersistentFlags().StringVar(&flags.Profile, "profile", "", "Credential profile to use (env HAT_PROFILE)")
	root.PersistentFlags().StringVarP(&flags.Output, "output", "o", flags.Output, "Output format: text|json|jsonl (env HAT_OUTPUT)")
	root.PersistentFlags().BoolVarP(&flags.JSON, "json", "j", false, "Shorthand for --output json")
	root.PersistentFlags().BoolVar(&flags.Debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().StringVarP(&flags.Query, "query", "q", "", "jq expression to filter JSON output")
	root.PersistentFlags().BoolVar(&flags.Compact, "compact", false, "Compact JSON output (no indentation)")
	root.PersistentFlags().DurationVar(&flags.Timeout, "timeout", 0, "HTTP request timeout, e.g. 30s (default from settings)")
	root.PersistentFlags().BoolVar(&flags.CompatDelivery, "compat-delivery", false, "Drop accepted 401 and empty responses without a callback")
	root.PersistentFlags().BoolVar(&flags.DryRun, "dry-run", false, "Preview writes without sending them")
	root.PersistentFlags().BoolVar(&flags.AllowPrivate, "allow-private", flags.AllowPrivate, "Allow private/localhost HAT domains (unsafe)")

	root.AddCommand(newAuthCmd())
	root.AddCommand(newFeedCmd())
	root.AddCommand(newDataCmd())
	root.AddCommand(newToolsCmd())
	root.AddCommand(newLogCmd())
	root.AddCommand(newFilesCmd())
	root.AddCommand(newVersionCmd())

	err := root.Execute()
	_ = shutdownLogger()
	if err != nil {
		if !errors.Is(err, errAlreadyHandled) {
			_, _ = fmt.Fprintln(root.ErrOrStderr(), err)
		}
		return err
	}
	return nil
}
