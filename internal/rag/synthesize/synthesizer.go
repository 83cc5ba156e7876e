package synthesize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/akolanti/DocsAPI/internal/config"
	"github.com/akolanti/DocsAPI/internal/domain/docModel"
	"github.com/akolanti/DocsAPI/internal/rag/llm"
	"github.com/akolanti/DocsAPI/pkg/logger_i"
)

// NoInformationAnswer is returned without touching the LLM when retrieval
// produced nothing to ground an answer on.
const NoInformationAnswer = "I could not find relevant information in the selected collection to answer this question."

const groundingInstruction = "You are a document analysis assistant. Answer the user's question using ONLY the supplied context below. " +
	"Cite the sources you used by their listed name. When several sources support the same point, merge them into one citation. " +
	"If the context does not contain the answer, say so plainly.\n\nContext:\n%s"

const thoughtsInstruction = "Respond with a single JSON object of the form {\"answer\": \"...\", \"thoughts\": [\"...\"]} " +
	"where answer is your cited answer and thoughts is a short list of reasoning steps. Output nothing besides the JSON object."

// Result is the synthesizer output. Thoughts is nil unless they were
// requested; Structured records whether the model's JSON was honored or the
// heuristic fallback kicked in.
type Result struct {
	Answer     string
	Thoughts   []string
	Structured bool
}

type Synthesizer struct {
	provider llm.Provider
	logger   *logger_i.Logger
}

func New(provider llm.Provider) *Synthesizer {
	return &Synthesizer{
		provider: provider,
		logger:   logger_i.NewLogger("Synthesizer"),
	}
}

// Synthesize turns assembled context plus recent conversation into an answer.
// resultCount is the retriever's hit count: zero short-circuits to the fixed
// no-information answer with no LLM call at all.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, promptContext string, resultCount int, recentTurns []docModel.ConversationTurn, wantThoughts bool) (Result, error) {
	if resultCount == 0 {
		s.logger.Debug("No search results, skipping LLM call")
		return Result{Answer: NoInformationAnswer}, nil
	}

	if s.provider == nil {
		return Result{}, errors.New("no llm provider configured")
	}

	messages := s.buildMessages(query, promptContext, recentTurns, wantThoughts)

	callCtx, cancel := context.WithTimeout(ctx, config.BackendCallTimeout)
	defer cancel()

	raw, err := s.provider.ChatCompletion(callCtx, messages, config.ModelTemperature, config.SynthesizerMaxTokens)
	if err != nil {
		return Result{}, err
	}

	if !wantThoughts {
		return Result{Answer: raw}, nil
	}

	if parsed, ok := parseStructured(raw); ok {
		return Result{Answer: parsed.answer, Thoughts: parsed.thoughts, Structured: true}, nil
	}

	s.logger.Warn("Model ignored the JSON format, using raw text with heuristic thoughts")
	return Result{Answer: raw, Thoughts: heuristicThoughts(resultCount)}, nil
}

func (s *Synthesizer) buildMessages(query string, promptContext string, recentTurns []docModel.ConversationTurn, wantThoughts bool) []docModel.ConversationTurn {
	messages := []docModel.ConversationTurn{
		{Role: docModel.RoleSystem, Content: fmt.Sprintf(groundingInstruction, promptContext)},
	}
	if wantThoughts {
		messages = append(messages, docModel.ConversationTurn{Role: docModel.RoleSystem, Content: thoughtsInstruction})
	}
	messages = append(messages, recentWindow(recentTurns)...)
	messages = append(messages, docModel.ConversationTurn{Role: docModel.RoleUser, Content: query})
	return messages
}

// recentWindow keeps at most the last MaxHistoryTurns valid turns. Turns with
// an unknown role or empty content are dropped before the window is taken.
func recentWindow(turns []docModel.ConversationTurn) []docModel.ConversationTurn {
	valid := make([]docModel.ConversationTurn, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case docModel.RoleUser, docModel.RoleAssistant, docModel.RoleSystem:
		default:
			continue
		}
		if t.Content == "" {
			continue
		}
		valid = append(valid, t)
	}
	if len(valid) > config.MaxHistoryTurns {
		valid = valid[len(valid)-config.MaxHistoryTurns:]
	}
	return valid
}

// structuredAnswer is the decided-once parse of a thoughts-requested reply.
// Either the model produced strict JSON with both fields, or the caller falls
// back to plain text - there is no in-between.
type structuredAnswer struct {
	answer   string
	thoughts []string
}

func parseStructured(raw string) (structuredAnswer, bool) {
	var body struct {
		Answer   *string  `json:"answer"`
		Thoughts []string `json:"thoughts"`
	}
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return structuredAnswer{}, false
	}
	if body.Answer == nil || body.Thoughts == nil {
		return structuredAnswer{}, false
	}
	return structuredAnswer{answer: *body.Answer, thoughts: body.Thoughts}, true
}

func heuristicThoughts(sourceCount int) []string {
	return []string{
		fmt.Sprintf("Analyzed %d retrieved sources for passages relevant to the question", sourceCount),
		"Cross-checked the question against the assembled context blocks",
		"Composed the answer from the strongest supporting passages",
	}
}
