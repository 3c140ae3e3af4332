// Exercises the Ollama embedding provider against a local server.
// Requires Ollama running with the nomic-embed-text model pulled,
// skips otherwise.

package integration

import (
	"context"
	"math"
	"net/http"
	"os"
	"testing"
	"time"

	"banking-assistant-be/pkg/embedding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ollamaBaseURL() string {
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		return v
	}
	return "http://localhost:11434"
}

func skipUnlessOllama(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", ollamaBaseURL(), nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		t.Skipf("Skipping integration test: Ollama not running at %s", ollamaBaseURL())
	}
	res.Body.Close()
}

func cosine(a, b []float32) float64 {
	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func TestOllamaEmbeddingGeneration(t *testing.T) {
	skipUnlessOllama(t)

	provider := embedding.NewOllamaProvider(ollamaBaseURL(), "")
	ctx := context.Background()

	res, err := provider.Generate(ctx, "What is the monthly fee for a checking account?", "RETRIEVAL_QUERY")
	require.NoError(t, err)
	require.NotEmpty(t, res.Embedding.Values)
	t.Logf("Embedding dimensions: %d", len(res.Embedding.Values))

	// The provider normalizes vectors so pgvector cosine distance is exact
	var magnitude float64
	for _, v := range res.Embedding.Values {
		magnitude += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(magnitude), 0.001)
}

func TestOllamaEmbeddingSimilarityOrdering(t *testing.T) {
	skipUnlessOllama(t)

	provider := embedding.NewOllamaProvider(ollamaBaseURL(), "")
	ctx := context.Background()

	query, err := provider.Generate(ctx, "How much does a wire transfer cost?", "RETRIEVAL_QUERY")
	require.NoError(t, err)

	related, err := provider.Generate(ctx, "Wire transfer fees are $25 for domestic and $45 for international transfers.", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)

	unrelated, err := provider.Generate(ctx, "The cafeteria serves lunch between noon and 2pm on weekdays.", "RETRIEVAL_DOCUMENT")
	require.NoError(t, err)

	simRelated := cosine(query.Embedding.Values, related.Embedding.Values)
	simUnrelated := cosine(query.Embedding.Values, unrelated.Embedding.Values)
	t.Logf("related=%.4f unrelated=%.4f", simRelated, simUnrelated)

	assert.Greater(t, simRelated, simUnrelated)
}

func TestOllamaEmbeddingTransientErrorOnConnectFailure(t *testing.T) {
	// Port 1 refuses connections immediately, no live server needed
	provider := embedding.NewOllamaProvider("http://127.0.0.1:1", "")

	_, err := provider.Generate(context.Background(), "ping", "RETRIEVAL_QUERY")
	require.Error(t, err)
	assert.True(t, embedding.IsTransient(err))
}
