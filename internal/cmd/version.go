package cmd

import "github.com/spf13/cobra"

// version is set at build time via ldflags
var version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Print version information",
		Args:    cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{
					"version":     version,
					"api_version": settings.APIVersion,
					"delivery":    settings.Delivery,
				})
			}
			printText(cmd, "hat-cli version %s (HAT API %s)\n", version, settings.APIVersion)
			return nil
		}),
	}
}
