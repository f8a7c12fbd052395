package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/config"
	"github.com/hubofallthings/hat-cli/internal/iocontext"
)

// newAuthCmd returns the auth command with subcommands
func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage HAT credentials",
		Long:  "Log in to a HAT and manage the credential profiles stored in your OS keychain.",
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())
	cmd.AddCommand(newAuthSwitchCmd())
	cmd.AddCommand(newAuthPublicKeyCmd())
	cmd.AddCommand(newAuthTokenFromURLCmd())

	return cmd
}

func targetProfile() (string, error) {
	if name := strings.TrimSpace(flags.Profile); name != "" {
		return name, nil
	}
	if name := strings.TrimSpace(os.Getenv("HAT_PROFILE")); name != "" {
		return name, nil
	}
	return config.CurrentProfile()
}

func newAuthLoginCmd() *cobra.Command {
	var (
		domain        string
		username      string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with a username and password",
		Long: strings.TrimSpace(`
Exchange a HAT username and password for an access token and store it in
the OS keychain under a profile (--profile, default "default").

The password is read from HAT_PASSWORD, or from the first line of stdin
with --password-stdin.
`),
		Example: strings.TrimSpace(`
  HAT_PASSWORD=... hat auth login --domain alice.hubofallthings.net --username alice
  pass hat | hat auth login --domain alice.hubofallthings.net --username alice --password-stdin
`),
		Args: cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			domain = strings.TrimSpace(domain)
			if domain == "" {
				return fmt.Errorf("--domain is required")
			}
			if username = strings.TrimSpace(username); username == "" {
				return fmt.Errorf("--username is required")
			}

			password := os.Getenv("HAT_PASSWORD")
			if passwordStdin {
				line, err := iocontext.GetIO(cmd.Context()).ReadLine()
				if err != nil {
					return fmt.Errorf("failed to read password from stdin: %w", err)
				}
				password = line
			}
			if password == "" {
				return fmt.Errorf("password is required (set HAT_PASSWORD or use --password-stdin)")
			}

			factory := newClientFactory()
			client := factory.newClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), factory.callTimeout())
			defer cancel()

			token, rotated, err := await(ctx, func(ctx context.Context, onSuccess func(api.AccessToken, *string), onFailure func(*api.StructuredError)) {
				client.Auth().Authenticate(ctx, domain, username, password, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			accessToken := token.AccessToken
			if accessToken == "" && rotated != nil {
				accessToken = *rotated
			}

			name, err := targetProfile()
			if err != nil {
				return err
			}
			if err := config.SaveProfile(name, config.Profile{Domain: domain, Token: accessToken, Username: username}); err != nil {
				return err
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":  name,
					"domain":   domain,
					"username": username,
					"user_id":  token.UserID,
				})
			}
			printText(cmd, "Logged in to %s as %s (profile %q)\n", domain, username, name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&domain, "domain", "", "HAT domain, e.g. alice.hubofallthings.net (required)")
	cmd.Flags().StringVar(&username, "username", "", "HAT username (required)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the active credentials",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.ResolveClientConfig(flags.Profile)
			if err != nil {
				return err
			}
			profiles, err := config.ListProfiles()
			if err != nil {
				return err
			}
			source := "profile"
			if cfg.Profile == "" {
				source = "environment"
			}

			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{
					"profile":  cfg.Profile,
					"source":   source,
					"domain":   cfg.Domain,
					"token":    maskToken(cfg.Token),
					"profiles": profiles,
				})
			}

			if cfg.Profile == "" {
				printText(cmd, "Credentials: environment (HAT_DOMAIN/HAT_TOKEN)\n")
			} else {
				printText(cmd, "Profile: %s\n", cfg.Profile)
			}
			printText(cmd, "Domain: %s\n", cfg.Domain)
			printText(cmd, "Token: %s\n", maskToken(cfg.Token))
			if len(profiles) > 0 {
				printText(cmd, "Profiles: %s\n", strings.Join(profiles, ", "))
			}
			return nil
		}),
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove a stored profile",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			name, err := targetProfile()
			if err != nil {
				return err
			}
			if _, err := config.LoadProfile(name); err != nil {
				return err
			}
			if err := config.DeleteProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "removed": true})
			}
			printText(cmd, "Removed profile %q\n", name)
			return nil
		}),
	}
}

func newAuthSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "switch <profile>",
		Short: "Make a stored profile the current one",
		Args:  cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])
			if _, err := config.LoadProfile(name); err != nil {
				if errors.Is(err, config.ErrNotConfigured) {
					return fmt.Errorf("profile %q not found: %w", name, err)
				}
				return err
			}
			if err := config.SetCurrentProfile(name); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "current": true})
			}
			printText(cmd, "Switched to profile %q\n", name)
			return nil
		}),
	}
}

func newAuthPublicKeyCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "publickey",
		Short: "Print the HAT's token signing key",
		Args:  cobra.NoArgs,
		RunE: RunE(func(cmd *cobra.Command, _ []string) error {
			target, err := config.ResolveDomain(flags.Profile, domain)
			if err != nil {
				return err
			}
			factory := newClientFactory()
			client := factory.newClient()
			ctx, cancel := context.WithTimeout(cmd.Context(), factory.callTimeout())
			defer cancel()

			key, _, err := await(ctx, func(ctx context.Context, onSuccess func(string, *string), onFailure func(*api.StructuredError)) {
				client.Auth().PublicKey(ctx, target, onSuccess, onFailure)
			})
			if err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]string{"domain": target, "public_key": key})
			}
			printText(cmd, "%s\n", strings.TrimRight(key, "\n"))
			return nil
		}),
	}

	cmd.Flags().StringVar(&domain, "domain", "", "HAT domain (default: the active profile's)")
	return cmd
}

func newAuthTokenFromURLCmd() *cobra.Command {
	var (
		save   bool
		domain string
	)

	cmd := &cobra.Command{
		Use:   "token-from-url <url>",
		Short: "Extract the token from a HAT login redirect URL",
		Long: strings.TrimSpace(`
After a browser login the HAT redirects to your app with ?token=... in the
URL. This prints that token, or stores it in a profile with --save.
`),
		Args: cobra.ExactArgs(1),
		RunE: RunE(func(cmd *cobra.Command, args []string) error {
			token := api.QueryParam(args[0], "token")
			if token == "" {
				return fmt.Errorf("invalid argument: URL has no token parameter")
			}
			if !save {
				if isJSON(cmd) {
					return printJSON(cmd, map[string]string{"token": token})
				}
				printText(cmd, "%s\n", token)
				return nil
			}

			name, err := targetProfile()
			if err != nil {
				return err
			}
			profile, err := config.LoadProfile(name)
			if err != nil && !errors.Is(err, config.ErrNotConfigured) {
				return err
			}
			if domain != "" {
				profile.Domain = domain
			}
			if profile.Domain == "" {
				return fmt.Errorf("--domain is required when profile %q has no domain", name)
			}
			profile.Token = token
			if err := config.SaveProfile(name, profile); err != nil {
				return err
			}
			if isJSON(cmd) {
				return printJSON(cmd, map[string]any{"profile": name, "domain": profile.Domain, "saved": true})
			}
			printText(cmd, "Saved token to profile %q\n", name)
			return nil
		}),
	}

	cmd.Flags().BoolVar(&save, "save", false, "Store the token in the target profile")
	cmd.Flags().StringVar(&domain, "domain", "", "HAT domain for the saved profile")
	return cmd
}

// maskToken shows enough of a token to tell tokens apart.
func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}
