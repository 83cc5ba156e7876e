package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{client: geminiClient.client, modelName: geminiClient.modelName}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string) {

	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}

}

func (c *llmClient) ChatCompletion(ctx context.Context, messages []docModel.ConversationTurn, temperature float64, maxTokens int64) (string, error) {
	temp := float32(temperature)
	tokens := int32(maxTokens)
	contentConfig := &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: tokens,
	}

	//gemini takes system turns separately from the chat contents
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case docModel.RoleSystem:
			if contentConfig.SystemInstruction == nil {
				contentConfig.SystemInstruction = &genai.Content{}
			}
			contentConfig.SystemInstruction.Parts = append(contentConfig.SystemInstruction.Parts, &genai.Part{Text: m.Content})
		case docModel.RoleAssistant:
			contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
		default:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		}
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		logger.Error("Gemini generation failed", "error", err)
		return "", err
	}
	if result == nil {
		return "", errors.New("empty gemini response")
	}
	return result.Text(), nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
	llm.modelName = ""
}
