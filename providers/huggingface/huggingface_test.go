package huggingface

import (
	"context"
	"net/http"
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
	mockCfg.Provider = "huggingface"
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
		Prompt: "Summarize this finding",
	})
	require.NoError(t, err)

	assert.Equal(t, "Hi", resp.Text)
	assert.Equal(t, "huggingface", resp.Provider)
	assert.Equal(t, "meta-llama/Meta-Llama-3-8B-Instruct", resp.Model)

	// The inference API reports no usage; accounting is always a
	// local estimate and unpriced models carry no cost.
	assert.True(t, resp.EstimatedUsage)
	assert.Greater(t, resp.Usage.Input, int64(0))
	assert.Greater(t, resp.Usage.Output, int64(0))
	assert.Nil(t, resp.Cost)

	assert.Equal(t, int64(1), mock.Requests())
}

func TestGenerateWarmupRetried(t *testing.T) {
	// 503 while the model container warms up.
	adapter, mock := newTestAdapter(t, mockserver.Config{
		FailFirst:  2,
		FailStatus: http.StatusServiceUnavailable,
	})

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

func TestGenerateImagesRejectedNoNetwork(t *testing.T) {
	adapter, mock := newTestAdapter(t, mockserver.Config{})

	_, err := adapter.Generate(context.Background(), types.Request{
		Prompt: "what is in this image",
		Images: []types.Image{{Data: []byte{1}, MIME: "image/png"}},
	})
	assert.ErrorIs(t, err, types.ErrUnsupportedModality)
	assert.Equal(t, int64(0), mock.Requests())
}

func TestGenerateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	t.Cleanup(server.Close)

	adapter, err := New(providers.Options{
		Credential: "test-key",
		BaseURL:    server.URL,
		Retry:      testRetry,
	})
	require.NoError(t, err)

	_, err = adapter.Generate(context.Background(), types.Request{Prompt: "ping"})
	assert.ErrorIs(t, err, types.ErrMalformedResponse)
}

func TestNewMissingKey(t *testing.T) {
	_, err := New(providers.Options{})
	assert.ErrorIs(t, err, types.ErrMissingCredential)
}
