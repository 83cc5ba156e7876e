// @title           Document Analysis & RAG API
// @version         1.0
// @description     This API handles asynchronous document ingestion and retrieval-augmented question answering.
// @termsOfService  http://swagger.io/terms/

// @contact.name    me lol
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/data/store"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	jobmodel "github.com/akolanti/DocsAPI/internal/domain/jobModel"
	"github.com/akolanti/DocsAPI/internal/handlers"
	"github.com/akolanti/DocsAPI/internal/job"
	"github.com/akolanti/DocsAPI/internal/mcpserver"
	"github.com/akolanti/DocsAPI/internal/rag"
	"github.com/akolanti/DocsAPI/internal/rag/assemble"
	"github.com/akolanti/DocsAPI/internal/rag/docdetail"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/DocsAPI/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/internal/rag/llm/gemini"
	"github.com/akolanti/DocsAPI/internal/rag/llm/openaiChat"
	"github.com/akolanti/DocsAPI/internal/rag/retrieve"
	"github.com/akolanti/DocsAPI/internal/rag/synthesize"
	"github.com/akolanti/DocsAPI/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/DocsAPI/internal/server"
	"github.com/akolanti/DocsAPI/internal/worker"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

var (
	listenAddr        string
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	//config
	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.Parse()

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and job store
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	logger.Info("Starting job service")

	redisJobStore := store.GetRedisJobStore(serviceContext)
	redisDocStore := store.GetRedisDocumentStore(serviceContext)
	redisConvStore := store.GetRedisConversationStore(serviceContext)

	var docStore docModel.DocumentStore
	var convStore docModel.ConversationStore
	if redisJobStore == nil || redisDocStore == nil || redisConvStore == nil {
		logger.Error("Redis stores are offline")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		docStore = store.InitInMemoryDocumentStore()
		convStore = store.InitInMemoryConversationStore()
	} else {
		serviceConfig.JobStore = redisJobStore
		docStore = redisDocStore
		convStore = redisConvStore
	}
	service := job.InitJobService(serviceConfig)

	vectorDB := qdrantDB.GetQuadrantClient(serviceContext)

	var embeddingService embedding.Embedder
	var llmProvider llm.Provider
	if config.LLMProviderName() == "openai" {
		embeddingService = openaiEmbedding.GetOpenAIEmbeddingClient(serviceContext, config.OpenAIEmbeddingModel, config.OpenAIAPIKey())
		llmProvider = openaiChat.GetOpenAIChatClient(config.OpenAIChatModel, config.OpenAIAPIKey())
	} else {
		embeddingService = googleEmbedding.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, config.GoogleAPIKey())
		llmProvider = gemini.GetGeminiClient(serviceContext, config.GeminiModelName, config.GoogleAPIKey())
	}

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services : ", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		return
	}

	ragService := rag.NewService(rag.ServiceConfig{
		VectorDB:    vectorDB,
		Retriever:   retrieve.NewRetriever(embeddingService, vectorDB),
		Assembler:   assemble.New(docdetail.NewClient(config.DocDetailBaseURL())),
		Synthesizer: synthesize.New(llmProvider),
		Generator:   embedding.NewGenerator(embeddingService),
		DocStore:    docStore,
		ConvStore:   convStore,
		LLM:         llmProvider,
	})

	handlers.InitJobHandler(service, ragService, convStore)

	mcpServer := mcpserver.NewServer(ragService)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr, mcpServer)

	<-stopExecution
	logger.Info("Server stopped")
}
