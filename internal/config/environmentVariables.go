package config

import (
	"log/slog"
	"os"
	"time"
)

const (
	IS_PROD                         = false
	LOG_LEVEL_PROD                  = slog.LevelInfo
	FALLBACK_REDIS_TO_INTERNALSTORE = true //if redis init fails, it falls back to the in-memory stores
	TRACE_ID_KEY                    = "traceId"
	RATE_LIMIT_PER_SECOND           = 2
	BURST_RATE_LIMIT_PER_SECOND     = 5
	NoAuthBypass                    = true //local dev only, set false before deploying
	AuthToken                       = ""
	CacheSimilarityCutoff           = 0.97

	//chunker - the boundary search can push a chunk past MaxChunkSize by up to
	//BoundarySearchWindow chars, that overshoot is deliberate (clean sentence breaks)
	DefaultMaxChunkSize  = 1000
	DefaultChunkOverlap  = 200
	MaxChunkSize         = 8000
	BoundarySearchWindow = 100
	MinTailForBoundary   = 10

	//embedding generator
	EmbeddingBatchSize                  = 20
	EmbeddingBatchDelay                 = 200 * time.Millisecond
	EmbeddingOutputDimensionality int32 = 1536
	OpenAIEmbeddingModel                = "text-embedding-3-small"
	GoogleEmbeddingModel                = "gemini-embedding-001"

	//document store
	ChunkedStorageThreshold = 8000 //full text above this is stored as chunks
	DocumentReadRetries     = 2
	DocumentReadBackoff     = 500 * time.Millisecond
	ContentPreviewLength    = 500

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantConnectionTimeout = 30 * time.Second
	QdrantHost              = ""
	QdrantPort              = 6333 //http
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false
	QdrantPoolSize          = 1
	QdrantKeepAliveTimeout  = 30 * time.Second
	DefaultCollectionName   = "documents"
	SearchResultLimit       = 5

	//llm
	BackendCallTimeout = 30 * time.Second
	OpenAIChatModel    = "gpt-4o-mini"
	GeminiModelName    = "gemini-2.5-flash-lite-preview-09-2025"

	ModelTemperature     float64 = 0.7
	SynthesizerMaxTokens int64   = 1024

	//synthesizer conversation window
	MaxHistoryTurns = 8

	//context assembler
	MaxKeyPhrases        = 5
	MaxExtractedSections = 5

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis
	redisHost     = "127.0.0.1"
	redisPort     = "6379"
	RedisAddr     = redisHost + ":" + redisPort
	RedisPassword = ""

	//redis has 16 DB we can use
	RedisDocumentStore     = 0
	RedisJobStore          = 1
	RedisConversationStore = 2

	//redis timeouts - documents never expire, jobs and chats do
	RedisDocumentStoreTTL     = 0 * time.Second
	RedisJobStoreTTL          = 24 * time.Hour
	RedisConversationStoreTTL = 24 * time.Hour
)

// keys are read from the environment so they never land in the repo
func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func GoogleAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

// LLMProviderName picks the chat/embedding vendor, "openai" is the default
func LLMProviderName() string {
	p := os.Getenv("LLM_PROVIDER")
	if p == "" {
		return "openai"
	}
	return p
}

func DocDetailBaseURL() string {
	return os.Getenv("DOC_DETAIL_BASE_URL")
}
