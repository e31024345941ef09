package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{"species":"carioca","classification":{"summary":{"type":2,"defect_percentage":4.1,"explanation":"grãos partidos"},"defects":{"grave":{"moldy":0,"burned":0.2,"germinated":0,"insect_damaged":0.4},"light":{"crushed":1,"damaged":0.5,"immature":0,"broken":2}}},"colorimetry":{"average_l":48.2,"std_dev":2.9,"classification":"intermediate","final_score":8}}`

func geminiServer(t *testing.T, status int, text string, inspect func(map[string]interface{})) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-test:generateContent"))
		assert.Equal(t, "k", r.URL.Query().Get("key"))

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if inspect != nil {
			inspect(body)
		}

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{{"text": text}}}},
			},
		})
	}))
}

func TestGeminiClassifierParsesStructuredOutput(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, sampleResponse, func(body map[string]interface{}) {
		cfg := body["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", cfg["responseMimeType"])
		assert.NotNil(t, cfg["responseSchema"])

		parts := body["contents"].([]interface{})[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 3)
		assert.Contains(t, parts[1], "file_data")
		assert.Contains(t, parts[2], "inline_data")
	})
	defer srv.Close()

	c := NewGeminiClassifier(GeminiConfig{
		APIKey:        "k",
		Model:         "gemini-test",
		BaseURL:       srv.URL,
		ReferenceURIs: []string{"https://files.example.com/in-12-2008.pdf"},
	})
	res, err := c.Classify(context.Background(), pngSample, "image/png")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Classification.Summary.Type)
	assert.Equal(t, "intermediate", res.Colorimetry.Classification)
	assert.Equal(t, 2.0, res.Classification.Defects.Light.Broken)
}

func TestGeminiClassifierStripsFences(t *testing.T) {
	srv := geminiServer(t, http.StatusOK, "```json\n"+sampleResponse+"\n```", nil)
	defer srv.Close()

	res, err := NewGeminiClassifier(GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: srv.URL}).
		Classify(context.Background(), pngSample, "image/png")
	require.NoError(t, err)
	assert.Equal(t, "carioca", res.Species)
}

func TestGeminiClassifierErrors(t *testing.T) {
	_, err := NewGeminiClassifier(GeminiConfig{Model: "gemini-test"}).Classify(context.Background(), pngSample, "image/png")
	assert.ErrorIs(t, err, ErrGeminiNotConfigured)

	failing := geminiServer(t, http.StatusServiceUnavailable, "", nil)
	defer failing.Close()
	_, err = NewGeminiClassifier(GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: failing.URL}).
		Classify(context.Background(), pngSample, "image/png")
	assert.ErrorContains(t, err, "503")

	garbage := geminiServer(t, http.StatusOK, "não sei", nil)
	defer garbage.Close()
	_, err = NewGeminiClassifier(GeminiConfig{APIKey: "k", Model: "gemini-test", BaseURL: garbage.URL}).
		Classify(context.Background(), pngSample, "image/png")
	assert.ErrorContains(t, err, "failed to parse classification")
}

func TestParseClassificationRejectsOutOfRangeType(t *testing.T) {
	_, err := parseClassification(`{"classification":{"summary":{"type":7}}}`)
	assert.Error(t, err)

	res, err := parseClassification(`{"classification":{"summary":{"type":-1}}}`)
	require.NoError(t, err)
	assert.True(t, res.IsNotABean())
}
