package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/pkg/database"
	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/rag/search"
	"banking-assistant-be/pkg/vectorindex"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("DB_CONNECTION_STRING not set")
	}

	// Initialize embedding provider (Ollama local by default, Gemini if keyed)
	var embeddingProvider embedding.EmbeddingProvider
	if apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY"); apiKey != "" && os.Getenv("EMBEDDING_PROVIDER") != "ollama" {
		embeddingProvider = embedding.NewGeminiProvider(apiKey)
	} else {
		ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
		if ollamaBaseURL == "" {
			ollamaBaseURL = "http://localhost:11434"
		}
		ollamaModel := os.Getenv("OLLAMA_EMBEDDING_MODEL")
		if ollamaModel == "" {
			ollamaModel = "nomic-embed-text"
		}
		embeddingProvider = embedding.NewOllamaProvider(ollamaBaseURL, ollamaModel)
	}

	// Connect to DB
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Failed to connect to DB:", err)
	}

	logger := log.New(os.Stdout, "", 0)
	uowFactory := unitofwork.NewRepositoryFactory(db)
	index := vectorindex.NewPgvectorIndex(uowFactory, logger)
	orchestrator := search.NewOrchestrator(embeddingProvider, index, logger)

	// === THRESHOLDS TO TEST ===
	thresholds := []float64{0.35, 0.30, 0.25, 0.20}

	// === TEST QUERIES ===
	queries := []string{
		"What is the interest rate on a savings account?",
		"wire transfer fee",
		"overdraft protection limits",
		"SAR filing deadline",
	}
	if len(os.Args) > 1 {
		queries = os.Args[1:]
	}

	ctx := context.Background()

	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println("RETRIEVAL DIAGNOSTIC TOOL")
	fmt.Println("=" + strings.Repeat("=", 79))
	fmt.Println()

	for _, query := range queries {
		fmt.Println("-" + strings.Repeat("-", 79))
		fmt.Printf("QUERY: %q\n", query)
		fmt.Println("-" + strings.Repeat("-", 79))

		vector, err := orchestrator.EmbedQuery(ctx, query)
		if err != nil {
			log.Printf("Embedding failed for query %q: %v", query, err)
			continue
		}

		for _, threshold := range thresholds {
			config := search.DefaultConfig()
			config.ScoreThreshold = threshold

			result, err := orchestrator.Retrieve(ctx, query, vector, config)
			if err != nil {
				log.Printf("Retrieval failed at threshold %.2f: %v", threshold, err)
				continue
			}

			if !result.Sufficient {
				fmt.Printf("  threshold %.2f: INSUFFICIENT (no passage cleared)\n", threshold)
				continue
			}

			fmt.Printf("  threshold %.2f: %d passages, confidence %.4f (top=%.4f margin=%.4f coverage=%.4f)\n",
				threshold, len(result.Passages), result.Confidence, result.Top, result.Margin, result.Coverage)
			for i, p := range result.Passages {
				preview := p.Content
				if len(preview) > 60 {
					preview = preview[:60]
				}
				fmt.Printf("    %d. [%.4f] %s (%s) %q\n", i+1, p.Score, p.DocumentName, p.Kind, preview)
			}
		}
		fmt.Println()
	}
}
