package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Keys      APIKeys
	Ai        AIConfig
	Retrieval RetrievalConfig
	Chunking  ChunkingConfig
	Cache     CacheConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	RagLogFilePath     string
	AuditLogFilePath   string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	GoogleGemini string
	Jina         string
	IngestTopic  string // Document ingest topic
}

type AIConfig struct {
	EmbeddingProvider string // "gemini" or "ollama"
	OllamaBaseURL     string
	OllamaModel       string
	LLMProvider       string // "gemini" or "ollama"
	LightModel        string // fast tier, e.g. "gemini-2.0-flash-lite" or "llama3"
	HeavyModel        string // reasoning tier, e.g. "gemini-2.0-flash" or "qwen2.5"
}

type RetrievalConfig struct {
	TopK                int
	ScoreThreshold      float64
	RouterThreshold     float64
	EscalationThreshold float64
	RetryAttempts       int
	MemoryWindow        int // conversation exchanges kept per session
}

type ChunkingConfig struct {
	MaxTokens     int
	OverlapTokens int
}

type CacheConfig struct {
	Backend    string // "memory", "redis" or "file"
	FilePath   string
	TTLMinutes int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			RagLogFilePath:     getEnv("RAG_LOG_FILE_PATH", "logs/llm_rag.log"),
			AuditLogFilePath:   getEnv("AUDIT_LOG_FILE_PATH", "logs/audit.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			GoogleGemini: getEnv("GOOGLE_GEMINI_API_KEY", ""),
			Jina:         getEnv("JINA_API_KEY", ""),
			IngestTopic:  getEnv("INGEST_DOCUMENT_TOPIC_NAME", "INGEST_DOCUMENT"),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "gemini"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaModel:       getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			LLMProvider:       getEnv("LLM_PROVIDER", "gemini"),
			LightModel:        getEnv("LLM_LIGHT_MODEL", "gemini-2.0-flash-lite"),
			HeavyModel:        getEnv("LLM_HEAVY_MODEL", "gemini-2.0-flash"),
		},
		Retrieval: RetrievalConfig{
			TopK:                getEnvAsInt("RETRIEVAL_TOP_K", 5),
			ScoreThreshold:      getEnvAsFloat("RETRIEVAL_SCORE_THRESHOLD", 0.35),
			RouterThreshold:     getEnvAsFloat("ROUTER_COMPLEXITY_THRESHOLD", 0.35),
			EscalationThreshold: getEnvAsFloat("ESCALATION_CONFIDENCE_THRESHOLD", 0.4),
			RetryAttempts:       getEnvAsInt("PROVIDER_RETRY_ATTEMPTS", 3),
			MemoryWindow:        getEnvAsInt("MEMORY_WINDOW", 5),
		},
		Chunking: ChunkingConfig{
			MaxTokens:     getEnvAsInt("CHUNK_MAX_TOKENS", 250),
			OverlapTokens: getEnvAsInt("CHUNK_OVERLAP_TOKENS", 50),
		},
		Cache: CacheConfig{
			Backend:    getEnv("EMBEDDING_CACHE_BACKEND", "memory"),
			FilePath:   getEnv("EMBEDDING_CACHE_FILE", "cache/embeddings.jsonl"),
			TTLMinutes: getEnvAsInt("EMBEDDING_CACHE_TTL_MINUTES", 1440),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
