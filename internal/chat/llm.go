package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"portfolio-backend/internal/config"
	"portfolio-backend/internal/database"
)

// ErrMissingAPIKey is returned when the hosted provider is selected without
// a credential. The caller degrades to an apology envelope instead of
// crashing.
var ErrMissingAPIKey = errors.New("hosted LLM provider selected but no API key configured")

// ErrAuthentication marks a credential rejected by the inference backend.
var ErrAuthentication = errors.New("inference backend rejected credentials")

// Generator is the single capability the dispatcher needs from an inference
// backend. The provider is chosen once at configuration time, not re-checked
// per call.
type Generator interface {
	Generate(ctx context.Context, messages []llms.MessageContent) (string, error)
}

type langchainGenerator struct {
	model llms.Model
}

// NewGenerator builds the configured inference backend: the hosted OpenAI
// API (credential required) or a locally addressed Ollama server (base URL,
// no key).
func NewGenerator(cfg config.Config) (Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrMissingAPIKey
		}
		model, err := openai.New(openai.WithToken(cfg.OpenAIAPIKey), openai.WithModel(cfg.OpenAIModel))
		if err != nil {
			return nil, fmt.Errorf("could not create OpenAI client: %w", err)
		}
		return &langchainGenerator{model: model}, nil

	case config.ProviderOllama:
		model, err := ollama.New(ollama.WithServerURL(cfg.OllamaBaseURL), ollama.WithModel(cfg.OllamaModel))
		if err != nil {
			return nil, fmt.Errorf("could not create Ollama client: %w", err)
		}
		return &langchainGenerator{model: model}, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.LLMProvider)
	}
}

func (g *langchainGenerator) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	resp, err := g.model.GenerateContent(ctx, messages, llms.WithTemperature(0.7))
	if err != nil {
		if isAuthError(err) {
			return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("inference backend returned no choices")
	}
	return resp.Choices[0].Content, nil
}

func isAuthError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") ||
		strings.Contains(msg, "invalid_api_key") ||
		strings.Contains(msg, "incorrect api key") ||
		strings.Contains(msg, "unauthorized")
}

const systemPrompt = "You are a helpful AI assistant for a personal portfolio website. Your owner is a developer. " +
	"Please answer the user's questions based on the persona of an assistant who knows the developer well. " +
	"Use the provided project context to answer questions about projects accurately. " +
	"**You must always answer in Korean.**"

// ProjectContext flattens visible projects into the textual dump attached to
// the prompt as a second system message.
func ProjectContext(projects []database.Project) string {
	parts := make([]string, len(projects))
	for i, p := range projects {
		parts[i] = fmt.Sprintf("Project Title: %s\nDescription: %s\nTechnologies: %s", p.Title, p.Description, p.Technologies)
	}
	return strings.Join(parts, "\n\n")
}

// BuildMessages assembles the ordered prompt: persona instruction, project
// context, alternating history turns, then the current user turn.
func BuildMessages(projectContext string, history []Exchange, userMessage string) []llms.MessageContent {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeSystem, "## 포트폴리오 프로젝트 정보:\n"+projectContext),
	}
	for _, exchange := range history {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, exchange.User))
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeAI, exchange.AI))
	}
	messages = append(messages, llms.TextParts(schema.ChatMessageTypeHuman, userMessage))
	return messages
}
