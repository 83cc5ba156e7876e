package openaiChat

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type llmClient struct {
	api       openai.Client
	modelName string
}

var logger *logger_i.Logger
var openaiClient *llmClient
var once sync.Once

func GetOpenAIChatClient(modelName string, apikey string) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openai")
		newOpenAIChatClient(modelName, apikey)
	})

	if openaiClient == nil {
		return nil
	}
	return &llmClient{api: openaiClient.api, modelName: openaiClient.modelName}
}

func newOpenAIChatClient(modelName string, apikey string) {
	if apikey == "" {
		logger.Error("OpenAI API key missing, chat client not created")
		return
	}
	openaiClient = &llmClient{
		api:       openai.NewClient(option.WithAPIKey(apikey)),
		modelName: modelName,
	}
	logger.Info("OpenAI chat client created", "model", modelName)
}

func (c *llmClient) ChatCompletion(ctx context.Context, messages []docModel.ConversationTurn, temperature float64, maxTokens int64) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.modelName),
		Messages:    toOpenAIMessages(messages),
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	}

	result, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI chat completion failed", "error", err)
		return "", err
	}
	if len(result.Choices) == 0 {
		return "", errors.New("no choices in chat completion response")
	}
	return result.Choices[0].Message.Content, nil
}

func toOpenAIMessages(messages []docModel.ConversationTurn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case docModel.RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case docModel.RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
