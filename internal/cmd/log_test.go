package cmd

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogCommand(t *testing.T) {
	var sent map[string]any
	handler := newRouteHandler().
		On("POST", "/api/v2.6/log", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &sent)
			jsonResponse(200, `{"message":"logged"}`)(w, r)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"log", "sync_failed", "timeout talking to the HAT"}))
	})

	assert.Equal(t, "logged\n", output)
	assert.Equal(t, map[string]any{"actionCode": "sync_failed", "message": "timeout talking to the HAT"}, sent)
}

func TestLogCommand_EmptyBody(t *testing.T) {
	var sent map[string]any
	handler := newRouteHandler().
		On("POST", "/api/v2.6/log", func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &sent)
			w.WriteHeader(http.StatusOK)
		})
	setupTestEnvWithHandler(t, handler)

	output := captureStdout(t, func() {
		require.NoError(t, Execute(context.Background(), []string{"log", "app_opened"}))
	})

	assert.Equal(t, "Logged app_opened\n", output)
	assert.Equal(t, map[string]any{"actionCode": "app_opened"}, sent)
}

func TestLogCommand_CompatDeliveryDropsEmptyBody(t *testing.T) {
	handler := newRouteHandler().
		On("POST", "/api/v2.6/log", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	setupTestEnvWithHandler(t, handler)
	t.Setenv("HAT_TIMEOUT", "100ms")
	t.Setenv("HAT_POST_TIMEOUT", "100ms")

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"log", "app_opened", "--compat-delivery"})
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errAlreadyHandled)
	assert.Equal(t, exitNetwork, ExitCode(err))
	assert.Contains(t, stderr, "compat delivery drops")
	assert.Len(t, handler.seen(), 1)
}

func TestLogCommand_BlankActionCode(t *testing.T) {
	handler := newRouteHandler()
	setupTestEnvWithHandler(t, handler)

	var err error
	stderr := captureStderr(t, func() {
		err = Execute(context.Background(), []string{"log", "  "})
	})

	require.Error(t, err)
	assert.Contains(t, stderr, "actionCode")
	assert.Empty(t, handler.seen())
}
