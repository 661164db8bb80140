package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Queue    QueueConfig
	Chat     ChatConfig
	Ai       AIConfig
}

type AppConfig struct {
	Name               string
	Version            string
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
}

type DatabaseConfig struct {
	Connection string
}

type QueueConfig struct {
	// Driver selects the task queue backing: "jetstream" for the durable
	// cross-process queue, "channel" for the in-process watermill channel.
	Driver            string
	NatsURL           string
	TopicName         string
	WorkerConcurrency int
}

type ChatConfig struct {
	MessagesPerPage   int
	RetrievalTopK     int
	GlobalRateLimit   int
	UserRateLimit     int
	RateWindowSeconds int
}

type AIConfig struct {
	EmbeddingProvider string // "ollama" or "gemini"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	GeminiAPIKey      string
	LLMProvider       string // "ollama" or "huggingface"
	LLMModel          string
	HuggingFaceAPIKey string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Name:               getEnv("APP_NAME", "Neuro Chat is online"),
			Version:            getEnv("APP_VERSION", "0.1.0"),
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Queue: QueueConfig{
			Driver:            getEnv("QUEUE_DRIVER", "jetstream"),
			NatsURL:           getEnv("NATS_URL", "nats://localhost:4222"),
			TopicName:         getEnv("PROCESS_MESSAGE_TOPIC_NAME", "PROCESS_CHAT_MESSAGE"),
			WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 1),
		},
		Chat: ChatConfig{
			MessagesPerPage:   getEnvAsInt("MESSAGES_PER_PAGE", 10),
			RetrievalTopK:     getEnvAsInt("RETRIEVAL_TOP_K", 5),
			GlobalRateLimit:   getEnvAsInt("GLOBAL_RATE_LIMIT", 1000),
			UserRateLimit:     getEnvAsInt("USER_RATE_LIMIT", 30),
			RateWindowSeconds: getEnvAsInt("RATE_WINDOW_SECONDS", 60),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:      getEnv("GOOGLE_GEMINI_API_KEY", ""),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:          getEnv("LLM_MODEL", "llama3"),
			HuggingFaceAPIKey: getEnv("HUGGINGFACE_API_KEY", ""),
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
