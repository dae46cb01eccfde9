package vision

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLabelerConfig(url string) config.LabelerConfig {
	return config.LabelerConfig{
		Provider: ProviderClarifai,
		BaseURL:  url,
		APIKey:   "test-pat",
		ModelID:  "food-item-recognition",
		Timeout:  5 * time.Second,
	}
}

func TestClarifaiDetectLabels(t *testing.T) {
	image := []byte("fake-image-bytes")
	var calls int

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/food-item-recognition/outputs", r.URL.Path)
		assert.Equal(t, "Key test-pat", r.Header.Get("Authorization"))

		var body clarifaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Inputs, 1)
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), body.Inputs[0].Data.Image.Base64)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":{"code":10000,"description":"Ok"},
			"outputs":[{"data":{"concepts":[{"name":"tomato","value":0.93},{"name":"sauce","value":0.41}]}}]}`))
	}))
	defer srv.Close()

	labels, err := NewClarifaiClient(testLabelerConfig(srv.URL)).DetectLabels(context.Background(), image)
	require.NoError(t, err)

	require.Len(t, labels, 2)
	assert.Equal(t, "tomato", labels[0].Name)
	assert.InDelta(t, 93.0, labels[0].Confidence, 0.001)
	assert.InDelta(t, 41.0, labels[1].Confidence, 0.001)
	assert.Equal(t, 1, calls)
}

func TestClarifaiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, `{}`, ErrUnauthorized},
		{"server error", http.StatusInternalServerError, `boom`, ErrUpstream},
		{"bad json", http.StatusOK, `not json`, ErrUpstream},
		{"status failure", http.StatusOK, `{"status":{"code":21200,"description":"Model does not exist"}}`, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClarifaiClient(testLabelerConfig(srv.URL)).DetectLabels(context.Background(), []byte("x"))
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, calls, "no retries")
		})
	}
}

func TestClarifaiEmptyOutputs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"code":10000},"outputs":[]}`))
	}))
	defer srv.Close()

	labels, err := NewClarifaiClient(testLabelerConfig(srv.URL)).DetectLabels(context.Background(), []byte("x"))
	require.NoError(t, err)
	assert.Empty(t, labels)
}

func TestNewLabelerWithoutKey(t *testing.T) {
	l, err := NewLabeler(config.LabelerConfig{Provider: ProviderClarifai})
	require.NoError(t, err)

	_, err = l.DetectLabels(context.Background(), []byte("x"))
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = NewLabeler(config.LabelerConfig{Provider: "rekognition"})
	assert.Error(t, err)
}
