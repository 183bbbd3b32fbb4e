package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicerecon/internal/config"
	"invoicerecon/internal/parser"
	"invoicerecon/internal/parser/gemini"
	"invoicerecon/internal/port"
)

func newTestExtractor(serverURL string) *gemini.Extractor {
	cfg := &config.ParserProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-gemini-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
	}
	return gemini.NewExtractorWithEndpoint(cfg, serverURL)
}

func successResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role":  "model",
					"parts": []map[string]interface{}{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func jpegInput() port.ExtractInput {
	return port.ExtractInput{FileName: "inv.jpg", FileBytes: []byte("fake-jpeg"), ContentType: "image/jpeg"}
}

func TestExtractor_Extract_Success(t *testing.T) {
	llmJSON := `{"invoiceNumber":"INV-001","items":[]}`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))

		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		assert.Len(t, parts, 2)

		inlineData := parts[0].(map[string]interface{})["inline_data"].(map[string]interface{})
		assert.Equal(t, "image/jpeg", inlineData["mime_type"])
		assert.NotEmpty(t, inlineData["data"])
		assert.Contains(t, parts[1].(map[string]interface{})["text"], "invoiceNumber")

		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genConfig["responseMimeType"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(successResponse(llmJSON))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	require.NoError(t, err)
	assert.JSONEq(t, llmJSON, string(out.Raw))
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
	assert.NotEmpty(t, out.PromptUsed)
}

func TestExtractor_Extract_JoinsParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": `{"a":`}, {"text": `1}`}}}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out.Raw))
}

func TestExtractor_Extract_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "15")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"quota"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	var rlErr *parser.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)
}

func TestExtractor_Extract_ClientErrorIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API key"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrProviderRejected)
	assert.Contains(t, err.Error(), "400")
	assert.False(t, parser.IsRetryable(err))
}

func TestExtractor_Extract_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("internal"))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	require.Error(t, err)
	assert.True(t, parser.IsRetryable(err))
}

func TestExtractor_Extract_EmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"candidates": []interface{}{}})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), jpegInput())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestExtractor_Extract_UnsupportedContentType(t *testing.T) {
	e := newTestExtractor("http://unused")

	_, err := e.Extract(context.Background(), port.ExtractInput{FileBytes: []byte("x"), ContentType: "text/plain"})

	assert.ErrorIs(t, err, parser.ErrUnsupportedContent)
}

func TestRegisteredWithFactory(t *testing.T) {
	ex, err := parser.NewExtractor(&config.ParserProviderConfig{Provider: "gemini", APIKey: "k"})

	require.NoError(t, err)
	assert.IsType(t, &gemini.Extractor{}, ex)
}
