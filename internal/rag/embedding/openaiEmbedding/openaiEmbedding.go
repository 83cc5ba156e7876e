package openaiEmbedding

import (
	"context"
	"sync"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/rag/embedding"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client
var dimension = int64(config.EmbeddingOutputDimensionality)

type client struct {
	api   openai.Client
	model string
}

func GetOpenAIEmbeddingClient(ctx context.Context, modelName string, apikey string) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("openai_embedding")
		newOpenAIEmbedder(modelName, apikey)
	})

	//if init still fails
	if embeddingClient == nil {
		return nil
	}
	return &client{api: embeddingClient.api, model: embeddingClient.model}
}

func newOpenAIEmbedder(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key missing, embedding client not created")
		return
	}
	embeddingClient = &client{
		api:   openai.NewClient(option.WithAPIKey(apikey)),
		model: modelName,
	}
	logger.Debug("OpenAI Embedding model name: " + modelName)
	logger.Info("OpenAI Embedding client created")
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	res, err := c.doCall(ctx, []string{query})
	if err != nil {
		logger.Error("Error getting query embedding from OpenAI", "error", err.Error())
		return nil, err
	}
	return res[0], nil
}

func (c *client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	res, err := c.doCall(ctx, texts)
	if err != nil {
		logger.Error("Error getting batch embeddings from OpenAI", "error", err.Error())
		return nil, err
	}
	return res, nil
}

func (c *client) doCall(ctx context.Context, texts []string) ([][]float32, error) {
	result, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:      openai.EmbeddingModel(c.model),
		Input:      openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Dimensions: openai.Int(dimension),
	})
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, len(result.Data))
	for _, d := range result.Data {
		vec := make([]float32, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float32(v)
		}
		//the API reports the position explicitly, pair by it
		vectors[d.Index] = vec
	}
	return vectors, nil
}
