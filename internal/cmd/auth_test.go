package cmd

import (
	"context"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hubofallthings/hat-cli/internal/config"
)

func TestAuthLogin(t *testing.T) {
	var username, password, authToken string
	handler := newRouteHandler().
		On("GET", "/users/access_token", func(w http.ResponseWriter, r *http.Request) {
			username = r.Header.Get("username")
			password = r.Header.Get("password")
			authToken = r.Header.Get("x-auth-token")
			jsonResponse(200, `{"accessToken":"fresh-token","userId":"u-1"}`)(w, r)
		})
	env := setupTestEnvWithHandler(t, handler)
	t.Setenv("HAT_TOKEN", "")
	t.Setenv("HAT_DOMAIN", "")
	t.Setenv("HAT_PASSWORD", "s3cret")

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"auth", "login", "--domain", env.domain, "--username", "alice", "--profile", "home", "--json",
		}))
	})

	got := decodeJSON[map[string]any](t, output)
	assert.Equal(t, "home", got["profile"])
	assert.Equal(t, "u-1", got["user_id"])
	assert.Equal(t, "alice", username)
	assert.Equal(t, "s3cret", password)
	assert.Empty(t, authToken)

	profile, err := config.LoadProfile("home")
	require.NoError(t, err)
	assert.Equal(t, env.domain, profile.Domain)
	assert.Equal(t, "fresh-token", profile.Token)
	assert.Equal(t, "alice", profile.Username)

	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "home", current)
}

func TestAuthLogin_PasswordFromStdin(t *testing.T) {
	var password string
	handler := newRouteHandler().
		On("GET", "/users/access_token", func(w http.ResponseWriter, r *http.Request) {
			password = r.Header.Get("password")
			jsonResponse(200, `{"accessToken":"fresh-token"}`)(w, r)
		})
	env := setupTestEnvWithHandler(t, handler)

	oldStdin := os.Stdin
	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, _ = w.WriteString("piped-password\nignored\n")
	_ = w.Close()
	os.Stdin = r
	t.Cleanup(func() { os.Stdin = oldStdin })

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"auth", "login", "--domain", env.domain, "--username", "alice", "--password-stdin",
		}))
	})
	assert.Equal(t, "piped-password", password)
	assert.Contains(t, output, "as alice (profile \"default\")")
}

func TestAuthLogin_Failures(t *testing.T) {
	handler := newRouteHandler().
		On("GET", "/users/access_token", jsonResponse(http.StatusUnauthorized, `{"message":"Wrong credentials"}`))
	env := setupTestEnvWithHandler(t, handler)

	tests := []struct {
		name     string
		args     []string
		password string
		wantCode int
		wantMsg  string
	}{
		{"missing domain", []string{"auth", "login", "--username", "alice"}, "pw", exitUsage, "--domain is required"},
		{"missing password", []string{"auth", "login", "--domain", env.domain, "--username", "alice"}, "", exitUsage, "password is required"},
		{"wrong password", []string{"auth", "login", "--domain", env.domain, "--username", "alice"}, "pw", exitAuth, "Wrong credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HAT_PASSWORD", tt.password)
			var err error
			stderr := captureStderr(t, func() {
				err = Execute(context.Background(), tt.args)
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.Contains(t, stderr, tt.wantMsg)
		})
	}
}

func TestAuthStatus(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "status"}))
	})
	assert.Contains(t, output, "Credentials: environment")
	assert.Contains(t, output, "Domain: "+env.domain)
	assert.Contains(t, output, "Token: test********oken")

	env.useStoredProfile(t, "work", "abcdefghijkl")
	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "status", "--json"}))
	})
	got := decodeJSON[map[string]any](t, output)
	assert.Equal(t, "work", got["profile"])
	assert.Equal(t, "profile", got["source"])
	assert.Equal(t, "abcd********ijkl", got["token"])
	assert.Equal(t, []any{"work"}, got["profiles"])
}

func TestAuthStatus_NotConfigured(t *testing.T) {
	setupTestEnvWithHandler(t, newRouteHandler())
	t.Setenv("HAT_DOMAIN", "")
	t.Setenv("HAT_TOKEN", "")

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"auth", "status"})
	})
	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))
	assert.Contains(t, stderr, "No HAT credentials configured")
}

func TestAuthSwitchAndLogout(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())
	env.useStoredProfile(t, "work", "work-token")
	require.NoError(t, config.SaveProfile("home", config.Profile{Domain: env.domain, Token: "home-token"}))

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "switch", "work"}))
	})
	assert.Equal(t, "Switched to profile \"work\"\n", output)
	current, err := config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "work", current)

	var switchErr error
	_ = captureStderr(t, func() {
		switchErr = Execute(context.Background(), []string{"auth", "switch", "nope"})
	})
	require.Error(t, switchErr)
	assert.Equal(t, exitAuth, ExitCode(switchErr))

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "logout"}))
	})
	assert.Equal(t, "Removed profile \"work\"\n", output)
	_, err = config.LoadProfile("work")
	assert.ErrorIs(t, err, config.ErrNotConfigured)

	profiles, err := config.ListProfiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"home"}, profiles)
	current, err = config.CurrentProfile()
	require.NoError(t, err)
	assert.Equal(t, "home", current)
}

func TestAuthPublicKey(t *testing.T) {
	const pem = "-----BEGIN PUBLIC KEY-----\nMIIB\n-----END PUBLIC KEY-----\n"
	handler := newRouteHandler().
		On("GET", "/publickey", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(pem))
		})
	env := setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "publickey"}))
	})
	assert.Equal(t, pem, output)

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "publickey", "--domain", "http://" + env.domain + "/", "--json"}))
	})
	got := decodeJSON[map[string]string](t, output)
	assert.Equal(t, env.domain, got["domain"])
	assert.Equal(t, pem, got["public_key"])

	reqs := handler.seen()
	require.Len(t, reqs, 2)
	assert.Empty(t, reqs[0].Header.Get("x-auth-token"))
}

func TestAuthTokenFromURL(t *testing.T) {
	env := setupTestEnvWithHandler(t, newRouteHandler())
	redirect := "https://myapp.example.com/callback?token=url-token&other=1"

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"auth", "token-from-url", redirect}))
	})
	assert.Equal(t, "url-token\n", output)

	output = captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{
			"auth", "token-from-url", redirect, "--save", "--profile", "app", "--domain", env.domain,
		}))
	})
	assert.Equal(t, "Saved token to profile \"app\"\n", output)
	profile, err := config.LoadProfile("app")
	require.NoError(t, err)
	assert.Equal(t, "url-token", profile.Token)
	assert.Equal(t, env.domain, profile.Domain)

	var missingErr error
	_ = captureStderr(t, func() {
		missingErr = Execute(context.Background(), []string{"auth", "token-from-url", "https://myapp.example.com/callback"})
	})
	require.Error(t, missingErr)
	assert.Equal(t, exitUsage, ExitCode(missingErr))
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", maskToken(""))
	assert.Equal(t, "*****", maskToken("short"))
	assert.Equal(t, "abcd********wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
}
