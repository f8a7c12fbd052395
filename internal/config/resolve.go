package config

import (
	"fmt"
	"os"
	"strings"
)

// ClientConfig contains resolved API client settings.
type ClientConfig struct {
	// Profile is the keyring profile the credentials came from, or "" when
	// they came from the environment. Rotated tokens are written back to it.
	Profile string
	Domain  string
	Token   string
}

// ResolveClientConfig resolves credentials. A non-empty profileOverride (the
// --profile flag) wins over the environment and the current profile.
func ResolveClientConfig(profileOverride string) (ClientConfig, error) {
	if name := strings.TrimSpace(profileOverride); name != "" {
		profile, err := LoadProfile(name)
		if err != nil {
			return ClientConfig{}, err
		}
		return clientConfig(name, profile)
	}

	if CredentialsFromEnv() {
		profile, err := LoadCredentials()
		if err != nil {
			return ClientConfig{}, err
		}
		return clientConfig("", profile)
	}

	name := strings.TrimSpace(os.Getenv(envProfile))
	if name == "" {
		current, err := CurrentProfile()
		if err != nil {
			return ClientConfig{}, err
		}
		name = current
	}
	profile, err := LoadProfile(name)
	if err != nil {
		return ClientConfig{}, err
	}
	return clientConfig(name, profile)
}

// ResolveDomain resolves only the domain, for unauthenticated calls such as
// fetching the public key. domainOverride wins when set.
func ResolveDomain(profileOverride, domainOverride string) (string, error) {
	if d := normalizeDomain(domainOverride); d != "" {
		return d, nil
	}
	cfg, err := ResolveClientConfig(profileOverride)
	if err != nil {
		return "", fmt.Errorf("HAT domain not configured (pass --domain or run 'hat auth login'): %w", err)
	}
	return cfg.Domain, nil
}

func clientConfig(name string, profile Profile) (ClientConfig, error) {
	if profile.Domain == "" {
		return ClientConfig{}, fmt.Errorf("profile %q has no domain", name)
	}
	if profile.Token == "" {
		return ClientConfig{}, fmt.Errorf("profile %q has no token - run 'hat auth login'", name)
	}
	return ClientConfig{Profile: name, Domain: profile.Domain, Token: profile.Token}, nil
}
