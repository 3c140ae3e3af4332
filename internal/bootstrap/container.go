package bootstrap

import (
	"context"
	"log"
	"time"

	"banking-assistant-be/internal/config"
	"banking-assistant-be/internal/controller"
	"banking-assistant-be/internal/pkg/logger"
	"banking-assistant-be/internal/repository/unitofwork"
	"banking-assistant-be/internal/service"
	"banking-assistant-be/pkg/chunking"
	"banking-assistant-be/pkg/embedding"
	"banking-assistant-be/pkg/embedding/cache"
	"banking-assistant-be/pkg/embedding/jina"
	"banking-assistant-be/pkg/llm"
	"banking-assistant-be/pkg/llm/factory"

	pktNats "banking-assistant-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController  controller.IDocumentController
	AssistantController controller.IAssistantController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
	AuditLogService *service.AuditLogService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		sysLogger.Info("Bootstrap", "Using Embedding Provider: OLLAMA", map[string]interface{}{"model": cfg.Ai.OllamaModel})
	case "jina":
		embeddingProvider = jina.NewJinaProvider(cfg.Keys.Jina)
		sysLogger.Info("Bootstrap", "Using Embedding Provider: JINA", nil)
	default:
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		sysLogger.Info("Bootstrap", "Using Embedding Provider: GEMINI", nil)
	}

	// Every embedding call goes through the content-addressed cache
	cacheStore := newCacheStore(cfg, sysLogger)
	cachedEmbeddings := cache.NewCachingProvider(embeddingProvider, cacheStore)

	// Initialize the tiered answer model
	lightProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LightModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize light LLM provider: %v", err)
	}
	heavyProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.HeavyModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Keys.GoogleGemini,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize heavy LLM provider: %v", err)
	}
	answerModel := llm.NewTieredModel(lightProvider, heavyProvider)
	sysLogger.Info("Bootstrap", "Using LLM Provider", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"light":    cfg.Ai.LightModel,
		"heavy":    cfg.Ai.HeavyModel,
	})

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		sysLogger.Warn("Bootstrap", "Failed to connect to NATS Subscriber", map[string]interface{}{"error": err.Error()})
	}

	// 4. Services
	chunker := chunking.NewChunker(chunking.Config{
		MaxTokens:     cfg.Chunking.MaxTokens,
		OverlapTokens: cfg.Chunking.OverlapTokens,
	})

	publisherService := service.NewPublisherService(cfg.Keys.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.IngestTopic,
		uowFactory,
		cachedEmbeddings,
		chunker,
		natsPub,
	)

	documentService := service.NewDocumentService(uowFactory, publisherService)
	assistantService := service.NewAssistantService(
		uowFactory,
		cachedEmbeddings,
		answerModel,
		natsPub,
		cfg.App.RagLogFilePath,
		cfg.Retrieval,
	)

	// Audit trail worker, writes the rotated audit file
	var auditLogService *service.AuditLogService
	if natsSub != nil {
		auditLogger := logger.NewIsolatedLogger(cfg.App.AuditLogFilePath)
		auditLogService = service.NewAuditLogService(natsSub, auditLogger)
	}

	// 5. Controllers
	return &Container{
		DocumentController:  controller.NewDocumentController(documentService),
		AssistantController: controller.NewAssistantController(assistantService),

		ConsumerService: consumerService,
		AuditLogService: auditLogService,
	}
}

// newCacheStore picks the embedding cache backend from config. Redis keeps
// vectors shared across replicas, the file store keeps them across restarts,
// memory is the zero-dependency default.
func newCacheStore(cfg *config.Config, sysLogger logger.ILogger) cache.Store {
	ttl := time.Duration(cfg.Cache.TTLMinutes) * time.Minute

	switch cfg.Cache.Backend {
	case "redis":
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to parse Redis URL. Using direct Addr", map[string]interface{}{"error": err.Error()})
			opt = &redis.Options{
				Addr: cfg.App.RedisURL,
			}
		}
		rdb := redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			sysLogger.Warn("Bootstrap", "Failed to connect to Redis, falling back to memory cache", map[string]interface{}{"error": err.Error()})
			return cache.NewMemoryStore(ttl)
		}
		sysLogger.Info("Bootstrap", "Embedding cache: REDIS", nil)
		return cache.NewRedisStore(rdb, ttl)

	case "file":
		store, err := cache.NewFileStore(cfg.Cache.FilePath)
		if err != nil {
			sysLogger.Warn("Bootstrap", "Failed to open file cache, falling back to memory cache", map[string]interface{}{"error": err.Error()})
			return cache.NewMemoryStore(ttl)
		}
		sysLogger.Info("Bootstrap", "Embedding cache: FILE", map[string]interface{}{"path": cfg.Cache.FilePath})
		return store

	default:
		sysLogger.Info("Bootstrap", "Embedding cache: MEMORY", nil)
		return cache.NewMemoryStore(ttl)
	}
}
