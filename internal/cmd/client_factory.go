package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/config"
)

type clientFactory struct {
	settings  config.Settings
	userAgent string
}

func newClientFactory() *clientFactory {
	return &clientFactory{
		settings:  settings,
		userAgent: fmt.Sprintf("hat-cli/%s", version),
	}
}

func (f *clientFactory) newClient() *api.Client {
	client := api.New()
	if f.settings.Timeout > 0 {
		client.HTTP.Timeout = f.settings.Timeout
	}
	if f.settings.PostTimeout > 0 {
		client.PostTimeouts = api.Timeouts{Connect: f.settings.PostTimeout, Read: f.settings.PostTimeout}
	}
	if f.settings.APIVersion != "" {
		client.APIVersion = f.settings.APIVersion
	}
	client.UserAgent = f.userAgent
	if f.settings.UserAgent != "" {
		client.UserAgent = f.settings.UserAgent
	}
	if f.settings.Delivery == config.DeliveryCompat {
		client.Delivery = api.DeliverCompat
	}
	return client
}

// callTimeout bounds how long a command waits for a callback. Under compat
// delivery no callback may ever arrive, so the wait must end on its own.
func (f *clientFactory) callTimeout() time.Duration {
	timeout := f.settings.Timeout
	if post := 2 * f.settings.PostTimeout; post > timeout {
		timeout = post
	}
	if timeout <= 0 {
		timeout = api.DefaultPostConnectTimeout + api.DefaultPostReadTimeout
	}
	return timeout + time.Second
}

// session is an authenticated client plus where its credentials came from.
type session struct {
	client  *api.Client
	timeout time.Duration

	mu  sync.Mutex
	cfg config.ClientConfig
}

func (f *clientFactory) session() (*session, error) {
	cfg, err := config.ResolveClientConfig(flags.Profile)
	if err != nil {
		return nil, err
	}
	return &session{client: f.newClient(), cfg: cfg, timeout: f.callTimeout()}, nil
}

func getSession() (*session, error) {
	return newClientFactory().session()
}

func (s *session) domain() string {
	return s.cfg.Domain
}

// token is the newest token seen; concurrent calls may rotate it.
func (s *session) token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.Token
}

// context returns a context bounded by the session's call timeout.
func (s *session) context(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, s.timeout)
}

// rotate keeps the newest token the HAT handed back. Later calls in the same
// command use it, and a stored profile is updated so the next run does too.
func (s *session) rotate(token *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token == nil || *token == "" || *token == s.cfg.Token {
		return
	}
	s.cfg.Token = *token
	if s.cfg.Profile == "" {
		slog.Debug("token rotated; credentials came from the environment, not persisting")
		return
	}
	if err := config.UpdateToken(s.cfg.Profile, *token); err != nil {
		slog.Warn("failed to persist rotated token", "profile", s.cfg.Profile, "error", err)
	}
}
