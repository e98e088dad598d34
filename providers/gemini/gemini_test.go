package gemini

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medscan-ai/medgate/providers"
	"github.com/medscan-ai/medgate/run/mockserver"
	"github.com/medscan-ai/medgate/types"
)

var testRetry = providers.RetryPolicy{
	MaxAttempts:  3,
	InitialDelay: time.Millisecond,
	Multiplier:   1,
}

func newTestAdapter(t *testing.T, mockCfg mockserver.Config) (providers.Adapter, *mockserver.MockServer) {
	t.Helper()
	mockCfg.Provider = "gemini"
	mock := mockserver.NewMockServer(mockCfg)
	handler, err := mock.Handler()
	require.NoError(t, err)
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	adapter, err := New(providers.Options{
		Credential: "test-key",
		BaseURL:    server.URL,
		Retry:      testRetry,
	})
	require.NoError(t, err)
	return adapter, mock
}

func TestGenerate(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{Reply: "Hi"})

	resp, err := adapter.Generate(context.Background(), types.Request{
		Prompt: "Describe this scan",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi", resp.Text)
	assert.Equal(t, "gemini", resp.Provider)
	assert.Equal(t, "gemini-2.0-flash-exp", resp.Model)
	assert.False(t, resp.EstimatedUsage)
	assert.Equal(t, int64(5), resp.Usage.Input)
	assert.Equal(t, int64(2), resp.Usage.Output)

	// The experimental flash model is free but still priced.
	require.NotNil(t, resp.Cost)
	assert.Equal(t, "0", resp.Cost.TotalUSD)

	assert.Equal(t, int64(1), mock.Requests())
}

func TestGenerateWithImage(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{})

	resp, err := adapter.Generate(context.Background(), types.Request{
		Prompt: "what does this scan show",
		Images: []types.Image{{Data: []byte{0x89, 0x50}, MIME: "image/png"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hi", resp.Text)
	assert.Equal(t, int64(1), mock.Requests())
}

func TestGenerateRetriesTransientFailures(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{FailFirst: 2})

	_, err := adapter.Generate(context.Background(), types.Request{Prompt: "ping"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), mock.Requests())
}

func TestGenerateRetryExhaustion(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{FailFirst: 100})

	_, err := adapter.Generate(context.Background(), types.Request{Prompt: "ping"})
	assert.ErrorIs(t, err, types.ErrProviderUnavailable)
	assert.Equal(t, int64(3), mock.Requests())
}

func TestGenerateEmptyPromptNoNetwork(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{})

	_, err := adapter.Generate(context.Background(), types.Request{Prompt: " "})
	assert.ErrorIs(t, err, types.ErrEmptyPrompt)
	assert.Equal(t, int64(0), mock.Requests())
}

func TestCapabilities(t *testing.T) {
	adapter, _ := newTestAdapter(t, mockserver.Config{})

	caps := adapter.Capabilities("gemini-1.5-pro")
	assert.True(t, caps.Vision)
	assert.True(t, caps.Priced())
	assert.Equal(t, "0.00125", caps.InputUSDPer1K)

	assert.Equal(t, types.Capabilities{}, adapter.Capabilities("unknown"))
}

func TestNewMissingKey(t *testing.T) {
	_, err := New(providers.Options{})
	assert.ErrorIs(t, err, types.ErrMissingCredential)
}
