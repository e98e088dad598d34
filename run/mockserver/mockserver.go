// Package mockserver implements a local stand-in for every upstream
// API dialect the adapters speak. Responses are deterministic (fixed
// reply text and token counts) so tests can assert on exact values,
// and the server can be told to fail the first N requests to exercise
// retry behavior.
package mockserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

// geminiAPIRequest is the minimal Gemini request shape for parsing
// (the SDK only ships response types).
type geminiAPIRequest struct {
	Contents []*genai.Content `json:"contents"`
}

// Config holds the configuration for the mock server.
type Config struct {
	Port     int
	Provider string // "openai", "anthropic", "gemini", "cohere", "huggingface", "all"

	// Reply is the assistant text every successful response carries.
	Reply string

	// InputTokens and OutputTokens are reported as usage on every
	// successful response.
	InputTokens  int64
	OutputTokens int64

	// FailFirst makes the server answer the first N requests with
	// FailStatus before succeeding.
	FailFirst  int
	FailStatus int
}

func (c Config) withDefaults() Config {
	if c.Reply == "" {
		c.Reply = "Hi"
	}
	if c.InputTokens == 0 {
		c.InputTokens = 5
	}
	if c.OutputTokens == 0 {
		c.OutputTokens = 2
	}
	if c.FailStatus == 0 {
		c.FailStatus = http.StatusInternalServerError
	}
	return c
}

type MockServer struct {
	config   Config
	requests atomic.Int64
}

func NewMockServer(config Config) *MockServer {
	return &MockServer{config: config.withDefaults()}
}

// Requests returns how many requests the server has seen, including
// injected failures.
func (m *MockServer) Requests() int64 {
	return m.requests.Load()
}

// Handler returns the routing mux for the configured provider. Unknown
// providers return an error so misconfiguration fails loudly.
func (m *MockServer) Handler() (http.Handler, error) {
	mux := http.NewServeMux()
	switch strings.ToLower(m.config.Provider) {
	case "openai":
		mux.HandleFunc("/chat/completions", m.HandleOpenAI)
	case "anthropic":
		mux.HandleFunc("/v1/messages", m.HandleAnthropic)
	case "gemini":
		mux.HandleFunc("/v1beta/models/", m.HandleGemini)
	case "cohere":
		mux.HandleFunc("/v2/chat", m.HandleCohere)
	case "huggingface":
		mux.HandleFunc("/models/", m.HandleHuggingFace)
	case "all", "":
		mux.HandleFunc("/chat/completions", m.HandleOpenAI)
		mux.HandleFunc("/v1/messages", m.HandleAnthropic)
		mux.HandleFunc("/v1beta/models/", m.HandleGemini)
		mux.HandleFunc("/v2/chat", m.HandleCohere)
		mux.HandleFunc("/models/", m.HandleHuggingFace)
	default:
		return nil, fmt.Errorf("unsupported provider: %s (supported: openai, anthropic, gemini, cohere, huggingface, all)", m.config.Provider)
	}
	return mux, nil
}

// Start runs the mock HTTP server until it fails.
func Start(config Config) error {
	m := NewMockServer(config)
	handler, err := m.Handler()
	if err != nil {
		return err
	}
	addr := ":" + strconv.Itoa(config.Port)
	fmt.Printf("Starting mock server on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, handler)
}

// admit applies failure injection and counts the request. It reports
// whether the handler should proceed to a successful response.
func (m *MockServer) admit(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	n := m.requests.Add(1)
	if int(n) <= m.config.FailFirst {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(m.config.FailStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				// Gemini's SDK reads the status code from the error
				// body, not the HTTP response, so it must be present.
				"code":    m.config.FailStatus,
				"message": "mock failure injection",
				"type":    "server_error",
			},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, fmt.Sprintf("Failed to encode response: %v", err), http.StatusInternalServerError)
	}
}

// HandleOpenAI serves the OpenAI chat-completions dialect, which also
// covers Groq, OpenRouter, Azure and custom endpoints.
func (m *MockServer) HandleOpenAI(w http.ResponseWriter, r *http.Request) {
	if !m.admit(w, r) {
		return
	}

	var request openai.ChatCompletionNewParams
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	model := string(request.Model)
	if model == "" {
		model = "gpt-4o"
	}
	writeJSON(w, &openai.ChatCompletion{
		ID:     "chatcmpl-mock-" + uuid.NewString(),
		Object: "chat.completion",
		Model:  model,
		Choices: []openai.ChatCompletionChoice{
			{
				Index: 0,
				Message: openai.ChatCompletionMessage{
					Role:    "assistant",
					Content: m.config.Reply,
				},
				FinishReason: "stop",
			},
		},
		Usage: openai.CompletionUsage{
			PromptTokens:     m.config.InputTokens,
			CompletionTokens: m.config.OutputTokens,
			TotalTokens:      m.config.InputTokens + m.config.OutputTokens,
		},
	})
}

// HandleAnthropic serves the Anthropic messages dialect.
func (m *MockServer) HandleAnthropic(w http.ResponseWriter, r *http.Request) {
	if !m.admit(w, r) {
		return
	}

	var request anthropic.MessageNewParams
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	model := string(request.Model)
	if model == "" {
		model = "claude-3-5-sonnet-20241022"
	}
	// Build via map and round-trip through the SDK type: the SDK's
	// response structs are awkward to construct directly.
	responseMap := map[string]any{
		"id":    "msg_mock_" + uuid.NewString(),
		"type":  "message",
		"role":  "assistant",
		"model": model,
		"content": []map[string]any{
			{"type": "text", "text": m.config.Reply},
		},
		"stop_reason": "end_turn",
		"usage": map[string]any{
			"input_tokens":  m.config.InputTokens,
			"output_tokens": m.config.OutputTokens,
		},
	}
	responseBytes, _ := json.Marshal(responseMap)
	var response anthropic.Message
	if err := json.Unmarshal(responseBytes, &response); err != nil {
		http.Error(w, fmt.Sprintf("Internal server error: %v", err), http.StatusInternalServerError)
		return
	}
	writeJSON(w, &response)
}

// HandleGemini serves the Gemini generateContent dialect.
func (m *MockServer) HandleGemini(w http.ResponseWriter, r *http.Request) {
	if !m.admit(w, r) {
		return
	}

	var request geminiAPIRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	writeJSON(w, &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{{Text: m.config.Reply}},
					Role:  "model",
				},
				FinishReason: genai.FinishReasonStop,
			},
		},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     int32(m.config.InputTokens),
			CandidatesTokenCount: int32(m.config.OutputTokens),
			TotalTokenCount:      int32(m.config.InputTokens + m.config.OutputTokens),
		},
	})
}

// HandleCohere serves the Cohere v2 chat dialect.
func (m *MockServer) HandleCohere(w http.ResponseWriter, r *http.Request) {
	if !m.admit(w, r) {
		return
	}

	var request map[string]any
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	writeJSON(w, map[string]any{
		"id":   "mock_" + uuid.NewString(),
		"role": "assistant",
		"message": map[string]any{
			"role": "assistant",
			"content": []map[string]any{
				{"type": "text", "text": m.config.Reply},
			},
		},
		"finish_reason": "COMPLETE",
		"usage": map[string]any{
			"billed_units": map[string]any{
				"input_tokens":  m.config.InputTokens,
				"output_tokens": m.config.OutputTokens,
			},
			"tokens": map[string]any{
				"input_tokens":  m.config.InputTokens,
				"output_tokens": m.config.OutputTokens,
			},
		},
	})
}

// HandleHuggingFace serves the Hugging Face Inference API dialect.
// Responses carry no usage, matching the real API.
func (m *MockServer) HandleHuggingFace(w http.ResponseWriter, r *http.Request) {
	if !m.admit(w, r) {
		return
	}

	var request map[string]any
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	writeJSON(w, []map[string]any{
		{"generated_text": m.config.Reply},
	})
}
