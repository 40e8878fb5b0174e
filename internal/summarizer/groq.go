package summarizer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"papersum/internal/config"
	"papersum/internal/domain"
	"papersum/internal/prompt"
)

const (
	temperature = 0.7
	topP        = 0.9
)

// GroqSummarizer calls Groq's OpenAI-compatible chat-completions endpoint.
// Retries are disabled: one user action is one completion request.
type GroqSummarizer struct {
	client   openai.Client
	model    string
	template config.PromptTemplate
	log      *slog.Logger
}

func NewGroqSummarizer(
	cfg config.Config,
	template config.PromptTemplate,
	log *slog.Logger,
) *GroqSummarizer {
	return &GroqSummarizer{
		client: openai.NewClient(
			option.WithAPIKey(cfg.GroqAPIKey),
			option.WithBaseURL(cfg.GroqBaseURL),
			option.WithMaxRetries(0),
		),
		model:    cfg.Model,
		template: template,
		log:      log,
	}
}

// Summarize builds the prompt from the loaded template and requests one chat
// completion. Every failure mode comes back as a returned error; callers fold
// it into the page via DisplayText.
func (s *GroqSummarizer) Summarize(
	ctx context.Context,
	req domain.SummaryRequest,
) (string, error) {
	userPrompt, err := prompt.ForSummary(s.template.PromptTemplate, req)
	if err != nil {
		return "", fmt.Errorf("build prompt: %w", err)
	}

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(s.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(s.template.SystemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(temperature),
		TopP:        openai.Float(topP),
	})
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion has no choices")
	}

	summary := strings.TrimSpace(resp.Choices[0].Message.Content)
	if summary == "" {
		return "", errors.New("completion content is empty")
	}

	s.log.InfoContext(ctx, "Summary is generated",
		"audience", req.Audience,
		"lengthSentences", req.Length,
		"summaryChars", len(summary))

	return summary, nil
}
