package bootstrap

import (
	"log"
	"time"

	"neuro-chat-be/internal/config"
	"neuro-chat-be/internal/controller"
	"neuro-chat-be/internal/pkg/logger"
	"neuro-chat-be/internal/pkg/ratelimit"
	"neuro-chat-be/internal/repository/unitofwork"
	"neuro-chat-be/internal/service"
	"neuro-chat-be/pkg/embedding"
	"neuro-chat-be/pkg/llm/factory"
	"neuro-chat-be/pkg/pipeline"
	"neuro-chat-be/pkg/queue"
	"neuro-chat-be/pkg/response"
	"neuro-chat-be/pkg/vectorindex"

	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Background services (exposed for the worker binary to run)
	WorkerService service.IWorkerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Task queue
	taskQueue := newTaskQueue(cfg, sysLogger)

	// 3. AI collaborators
	// The embedding model loads on first use; concurrent first calls share
	// one initialization.
	embeddingProvider := embedding.NewLazyProvider(func() (embedding.EmbeddingProvider, error) {
		if cfg.Ai.EmbeddingProvider == "ollama" {
			log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
			return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel), nil
		}
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
		return embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey), nil
	})

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.HuggingFaceAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Retrieval pipeline
	index := vectorindex.NewPgVectorIndex(db)
	generator := response.NewGenerator(llmProvider, sysLogger)
	processor := pipeline.NewProcessor(
		uowFactory,
		embeddingProvider,
		index,
		generator,
		cfg.Chat.RetrievalTopK,
		sysLogger,
	)

	// 5. Request-facing services
	limiter := ratelimit.NewLimiter(
		cfg.Chat.GlobalRateLimit,
		cfg.Chat.UserRateLimit,
		time.Duration(cfg.Chat.RateWindowSeconds)*time.Second,
	)
	chatService := service.NewChatService(uowFactory, taskQueue, limiter, cfg.Chat.MessagesPerPage, sysLogger)
	workerService := service.NewWorkerService(taskQueue, processor, sysLogger)

	return &Container{
		ChatController: controller.NewChatController(chatService),
		WorkerService:  workerService,
		Logger:         sysLogger,
	}
}

// taskQueue is both ends of the queue; the REST binary only dispatches and
// the worker binary only consumes, but dev setups run both in one process.
type taskQueue interface {
	queue.Dispatcher
	queue.Consumer
	Close() error
}

func newTaskQueue(cfg *config.Config, sysLogger logger.ILogger) taskQueue {
	if cfg.Queue.Driver == "jetstream" {
		q, err := queue.NewJetStreamQueue(
			cfg.Queue.NatsURL,
			cfg.Queue.TopicName,
			cfg.Queue.WorkerConcurrency,
			sysLogger,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to connect task queue to NATS: %v", err)
		}
		log.Printf("[INFO] Using Task Queue: JETSTREAM (%s)", cfg.Queue.NatsURL)
		return q
	}
	log.Printf("[INFO] Using Task Queue: IN-PROCESS CHANNEL")
	return queue.NewChannelQueue(cfg.Queue.TopicName, cfg.Queue.WorkerConcurrency, sysLogger)
}
