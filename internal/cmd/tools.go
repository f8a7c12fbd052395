package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/dryrun"
	"github.com/hubofallthings/hat-cli/internal/resolve"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Manage HAT tools",
		Long:  "List HAT tools (she functions) and turn them on or off. Tools can be named by ID or by a fuzzy name.",
	}

	cmd.AddCommand(newToolsListCmd())
	cmd.AddCommand(newToolsGetCmd())
	cmd.AddCommand(newToolsToggleCmd(true))
	cmd.AddCommand(newToolsToggleCmd(false))

	return cmd
}

func listTools(ctx context.Context, s *session) ([]api.Tool, error) {
	return do(ctx, s, func(ctx context.Context, onSuccess func([]api.Tool, *string), onFailure func(*api.StructuredError)) {
		s.client.Tools().List(ctx, s.domain(), s.token(), onSuccess, onFailure)
	})
}

func toolNames(tools []api.Tool) []resolve.Named {
	named := make([]resolve.Named, len(tools))
	for i, t := range tools {
		name := t.Info.Name
		if name == "" {
			name = t.ID
		}
		named[i] = resolve.Named{ID: t.ID, Name: name}
	}
	return named
}

// resolveTool turns a tool ID or name into an ID using the tool list.
func resolveTool(ctx context.Context, s *session, query string) (string, error) {
	tools, err := listTools(ctx, s)
	if err != nil {
		return "", err
	}
	id, err := resolve.FuzzyMatch(query, toolNames(tools))
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", query, err)
	}
	return id, nil
}

func newToolsListCmd() *cobra.Command {
	var (
		search  string
		enabled bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tools",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			s, err := getSession()
			if err != nil {
				return err
			}
			tools, err := listTools(cmd.Context(), s)
			if err != nil {
				return err
			}

			if search = strings.TrimSpace(search); search != "" {
				byID := make(map[string]api.Tool, len(tools))
				for _, t := range tools {
					byID[t.ID] = t
				}
				matches := resolve.FuzzyMatchAll(search, toolNames(tools), len(tools))
				tools = tools[:0:0]
				for _, m := range matches {
					tools = append(tools, byID[m.ID])
				}
			}
			if enabled {
				kept := tools[:0:0]
				for _, t := range tools {
					if t.Status.Enabled {
						kept = append(kept, t)
					}
				}
				tools = kept
			}

			if isJSON(cmd) {
				return printJSON(cmd, tools)
			}
			f := newFormatter(cmd)
			if len(tools) == 0 {
				f.Empty("No tools found")
				return nil
			}
			f.StartTable([]string{"ID", "NAME", "ENABLED", "AVAILABLE", "HEADLINE"})
			for _, t := range tools {
				f.Row(t.ID, orDash(t.Info.Name), yesNo(t.Status.Enabled), yesNo(t.Status.Available), orDash(truncate(t.Info.Headline, 50)))
			}
			return f.EndTable()
		}),
	}

	cmd.Flags().StringVar(&search, "search", "", "Fuzzy filter on tool names")
	cmd.Flags().BoolVar(&enabled, "enabled", false, "Only enabled tools")
	return cmd
}

func newToolsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <tool>",
		Short: "Show one tool",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, err := getSession()
			if err != nil {
				return err
			}
			id, err := resolveTool(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			tool, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.Tool, *string), onFailure func(*api.StructuredError)) {
				s.client.Tools().Get(ctx, s.domain(), s.token(), id, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, tool)
			}
			printTool(cmd, tool)
			return nil
		}),
	}
}

func newToolsToggleCmd(enable bool) *cobra.Command {
	action, short, verb := "disable", "Disable a tool", "Disabled"
	if enable {
		action, short, verb = "enable", "Enable a tool", "Enabled"
	}

	return &cobra.Command{
		Use:   action + " <tool>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			s, err := getSession()
			if err != nil {
				return err
			}
			id, err := resolveTool(cmd.Context(), s, args[0])
			if err != nil {
				return err
			}
			if ok, err := maybeDryRun(cmd, &dryrun.Preview{
				Operation: action,
				Resource:  "tool " + id,
				Method:    "GET",
				Path:      "/she/function/" + id + "/" + action,
			}); ok {
				return err
			}
			tool, err := do(cmd.Context(), s, func(ctx context.Context, onSuccess func(api.Tool, *string), onFailure func(*api.StructuredError)) {
				s.client.Tools().SetEnabled(ctx, s.domain(), s.token(), id, enable, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, tool)
			}
			printText(cmd, "%s tool %s\n", verb, tool.ID)
			return nil
		}),
	}
}

func printTool(cmd *cobra.Command, t api.Tool) {
	printText(cmd, "ID: %s\n", t.ID)
	printText(cmd, "Name: %s\n", orDash(t.Info.Name))
	if t.Info.Version != "" {
		printText(cmd, "Version: %s\n", t.Info.Version)
	}
	if t.Info.Headline != "" {
		printText(cmd, "Headline: %s\n", t.Info.Headline)
	}
	if t.Info.Description.Text != "" {
		printText(cmd, "Description: %s\n", t.Info.Description.Text)
	}
	printText(cmd, "Enabled: %s\n", yesNo(t.Status.Enabled))
	printText(cmd, "Available: %s\n", yesNo(t.Status.Available))
	if t.Status.LastExec != "" {
		printText(cmd, "Last execution: %s\n", t.Status.LastExec)
	}
	if t.DataBundle != nil && len(t.DataBundle.Bundle) > 0 {
		printText(cmd, "Reads:\n")
		for key, b := range t.DataBundle.Bundle {
			for _, e := range b.Endpoints {
				printText(cmd, "  %s: %s\n", key, e.Endpoint)
			}
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
