package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/mod/semver"
)

// MinAPIVersion is the oldest HAT API version the client speaks.
const MinAPIVersion = "v2.6"

// Delivery mode names accepted in settings.
const (
	DeliveryAll    = "all"
	DeliveryCompat = "compat"
)

// Settings are the non-secret client settings.
type Settings struct {
	APIVersion   string        `mapstructure:"api_version"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PostTimeout  time.Duration `mapstructure:"post_timeout"`
	Delivery     string        `mapstructure:"delivery"`
	AllowPrivate bool          `mapstructure:"allow_private"`
	UserAgent    string        `mapstructure:"user_agent"`
}

// Dir returns the hat-cli config directory.
func Dir() string {
	if dir, err := userConfigDir(); err == nil && strings.TrimSpace(dir) != "" {
		return filepath.Join(dir, serviceName)
	}
	if home, err := os.UserHomeDir(); err == nil && strings.TrimSpace(home) != "" {
		return filepath.Join(home, ".config", serviceName)
	}
	return filepath.Join(os.TempDir(), serviceName)
}

// LoadDotEnv loads <config dir>/.env into the process environment. Variables
// already set are kept. A missing file is not an error.
func LoadDotEnv() error {
	path := filepath.Join(Dir(), ".env")
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func defaultSettings(v *viper.Viper) {
	v.SetDefault("api_version", MinAPIVersion)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("post_timeout", 35*time.Second)
	v.SetDefault("delivery", DeliveryAll)
	v.SetDefault("allow_private", false)
	v.SetDefault("user_agent", "")
}

// LoadSettings reads config.yaml from dirs (first match wins; none is fine)
// and applies HAT_* environment overrides, e.g. HAT_API_VERSION.
func LoadSettings(logger *slog.Logger, dirs ...string) (Settings, error) {
	if len(dirs) == 0 {
		dirs = []string{Dir()}
	}
	v := viper.New()
	defaultSettings(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("HAT")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("failed to read config file: %w", err)
		}
		logger.Debug("no config file found, using defaults", "dirs", fmt.Sprintf("%v", dirs))
	} else {
		logger.Debug("read the configuration file", "file", v.ConfigFileUsed())
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks and normalizes the settings in place.
func (s *Settings) Validate() error {
	version := strings.TrimSpace(s.APIVersion)
	if version == "" {
		version = MinAPIVersion
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return fmt.Errorf("invalid api_version %q", s.APIVersion)
	}
	if semver.Compare(version, MinAPIVersion) < 0 {
		return fmt.Errorf("api_version %s is older than the minimum supported %s", version, MinAPIVersion)
	}
	s.APIVersion = semver.MajorMinor(version)

	if s.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", s.Timeout)
	}
	if s.PostTimeout <= 0 {
		return fmt.Errorf("post_timeout must be positive, got %s", s.PostTimeout)
	}

	s.Delivery = strings.ToLower(strings.TrimSpace(s.Delivery))
	switch s.Delivery {
	case "":
		s.Delivery = DeliveryAll
	case DeliveryAll, DeliveryCompat:
	default:
		return fmt.Errorf("delivery must be %q or %q, got %q", DeliveryAll, DeliveryCompat, s.Delivery)
	}
	return nil
}
