package server_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
	"github.com/nulzo/prompt-gateway/internal/server"
	"github.com/nulzo/prompt-gateway/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockGateway is a mock implementation of v1.Gateway
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Generate(ctx context.Context, provider, prompt string) (string, error) {
	args := m.Called(ctx, provider, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGateway) Providers() []api.ProviderInfo {
	args := m.Called()
	return args.Get(0).([]api.ProviderInfo)
}

var providerInfos = []api.ProviderInfo{
	{ID: "gpt-4", Provider: "openai", Name: "OpenAI GPT-4", Model: "gpt-4", Demo: true},
	{ID: "claude", Provider: "anthropic", Name: "Anthropic Claude", Model: "claude-3-sonnet-20240229"},
}

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Env: "test"},
		RateLimit: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
}

func setupServer(cfg *config.Config, gw *MockGateway) http.Handler {
	return server.New(cfg, zap.NewNop(), gw).Handler()
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGenerate_Success(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Generate", mock.Anything, "claude", "Hello").Return("Hi there", nil)
	gw.On("Providers").Return(providerInfos)

	w := do(setupServer(testConfig(), gw), "POST", "/v1/generate", `{"provider": "claude", "prompt": "Hello"}`, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp api.GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "claude", resp.Provider)
	assert.Equal(t, "Hi there", resp.Text)
	assert.Equal(t, "claude-3-sonnet-20240229", resp.Model)
	assert.False(t, resp.Demo)
	gw.AssertExpectations(t)
}

func TestGenerate_ValidationError(t *testing.T) {
	gw := new(MockGateway)

	w := do(setupServer(testConfig(), gw), "POST", "/v1/generate", `{"prompt": "Hello"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Validation Error", body["title"])
	errs, ok := body["errors"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, errs, "provider")
	gw.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, w *httptest.ResponseRecorder, body map[string]interface{})
	}{
		{
			name:   "rate limited",
			err:    &llm.RateLimitError{Provider: llm.OpenAI, RetryAfter: time.Second},
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]interface{}) {
				assert.Equal(t, "1", w.Header().Get("Retry-After"))
				assert.Equal(t, "gpt-4", body["provider"])
				assert.Equal(t, "rate limit exceeded for openai, please wait", body["detail"])
			},
		},
		{
			name:   "unknown provider",
			err:    &llm.UnknownProviderError{ID: "gpt-4"},
			status: http.StatusBadRequest,
			check: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]interface{}) {
				assert.Equal(t, llm.PublicIDs(), body["supported"])
			},
		},
		{
			name:   "upstream failure",
			err:    &llm.APIError{Provider: llm.OpenAI, StatusCode: 500, Status: "Internal Server Error"},
			status: http.StatusBadGateway,
			check: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]interface{}) {
				assert.EqualValues(t, 500, body["upstream_status"])
				assert.Contains(t, body["detail"], "Internal Server Error")
			},
		},
		{
			name:   "poll exhausted",
			err:    &llm.PollTimeoutError{Provider: llm.Replicate, Attempts: 120},
			status: http.StatusGatewayTimeout,
		},
		{
			name:   "unexpected",
			err:    errors.New("connection reset by peer"),
			status: http.StatusInternalServerError,
			check: func(t *testing.T, w *httptest.ResponseRecorder, body map[string]interface{}) {
				assert.NotContains(t, w.Body.String(), "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := new(MockGateway)
			gw.On("Generate", mock.Anything, "gpt-4", "Hello").Return("", tt.err)

			w := do(setupServer(testConfig(), gw), "POST", "/v1/generate", `{"provider": "gpt-4", "prompt": "Hello"}`, nil)

			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			assert.EqualValues(t, tt.status, body["status"])
			assert.Equal(t, "/v1/generate", body["instance"])
			if tt.check != nil {
				tt.check(t, w, body)
			}
		})
	}
}

func TestListProviders(t *testing.T) {
	gw := new(MockGateway)
	gw.On("Providers").Return(providerInfos)

	w := do(setupServer(testConfig(), gw), "GET", "/v1/providers", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var list api.ProviderList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, "list", list.Object)
	assert.Equal(t, providerInfos, list.Data)
}

func TestAuth(t *testing.T) {
	cfg := testConfig()
	cfg.Server.APIKeys = []string{"sk-gateway-key"}

	gw := new(MockGateway)
	gw.On("Providers").Return(providerInfos)
	h := setupServer(cfg, gw)

	w := do(h, "GET", "/v1/providers", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, "GET", "/v1/providers", "", map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(h, "GET", "/v1/providers", "", map[string]string{"Authorization": "Bearer wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid API Key", decode(t, w)["detail"])

	w = do(h, "GET", "/v1/providers", "", map[string]string{"Authorization": "Bearer sk-gateway-key"})
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	w = do(h, "GET", "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClientRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}

	gw := new(MockGateway)
	gw.On("Providers").Return(providerInfos)
	h := setupServer(cfg, gw)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, do(h, "GET", "/v1/providers", "", nil).Code)
	}

	w := do(h, "GET", "/v1/providers", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRequestID(t *testing.T) {
	h := setupServer(testConfig(), new(MockGateway))

	w := do(h, "GET", "/health", "", map[string]string{"X-Request-ID": "req-123"})
	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))

	w = do(h, "GET", "/health", "", nil)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestCORSPreflight(t *testing.T) {
	h := setupServer(testConfig(), new(MockGateway))

	w := do(h, "OPTIONS", "/v1/generate", "", map[string]string{"Origin": "http://localhost:3000"})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealth(t *testing.T) {
	w := do(setupServer(testConfig(), new(MockGateway)), "GET", "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode(t, w)["status"])
}
