package llm

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Service adapts a gollem LLM client to the CompletionClient interface.
// Generation parameters are pinned on the gollem client at construction
// (see cli/config.Gemini), so Complete rejects requests asking for more
// than the client was built with instead of silently under-delivering.
type Service struct {
	llmClient   gollem.LLMClient
	model       string
	maxTokens   int
	temperature float64
}

var _ interfaces.CompletionClient = &Service{}

type Option func(*Service)

// WithModel sets the model name reported in completion results
func WithModel(model string) Option {
	return func(s *Service) {
		s.model = model
	}
}

// WithMaxTokens declares the token budget the underlying client was
// configured with
func WithMaxTokens(maxTokens int) Option {
	return func(s *Service) {
		s.maxTokens = maxTokens
	}
}

// WithTemperature declares the sampling temperature the underlying
// client was configured with
func WithTemperature(temperature float64) Option {
	return func(s *Service) {
		s.temperature = temperature
	}
}

// New creates a completion service. A nil client is allowed; every
// Complete call then fails with ErrCapability so task kinds that need
// generation degrade cleanly.
func New(llmClient gollem.LLMClient, opts ...Option) *Service {
	s := &Service{
		llmClient:   llmClient,
		model:       "gemini-2.0-flash",
		maxTokens:   2000,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Complete(ctx context.Context, req *interfaces.CompletionRequest) (*interfaces.CompletionResult, error) {
	if req.Temperature < 0 || req.Temperature > 2 {
		return nil, goerr.Wrap(types.ErrValidation, "temperature out of range",
			goerr.V("temperature", req.Temperature))
	}
	if req.MaxTokens < 0 {
		return nil, goerr.Wrap(types.ErrValidation, "max tokens must not be negative",
			goerr.V("max_tokens", req.MaxTokens))
	}
	if req.MaxTokens > s.maxTokens {
		return nil, goerr.Wrap(types.ErrCapability, "requested token budget exceeds client configuration",
			goerr.V("requested", req.MaxTokens), goerr.V("configured", s.maxTokens))
	}

	if s.llmClient == nil {
		return nil, goerr.Wrap(types.ErrCapability, "completion provider not configured")
	}

	var sessionOpts []gollem.SessionOption
	if req.SystemPrompt != "" {
		sessionOpts = append(sessionOpts, gollem.WithSessionSystemPrompt(req.SystemPrompt))
	}

	session, err := s.llmClient.NewSession(ctx, sessionOpts...)
	if err != nil {
		return nil, goerr.Wrap(types.ErrCapability, "failed to create LLM session", goerr.V("cause", err))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(req.Prompt))
	if err != nil {
		return nil, goerr.Wrap(types.ErrCapability, "failed to generate content",
			goerr.V("cause", err),
			goerr.V("max_tokens", req.MaxTokens),
			goerr.V("temperature", req.Temperature),
		)
	}

	if len(resp.Texts) == 0 {
		return nil, goerr.Wrap(types.ErrCapability, "empty completion response")
	}

	return &interfaces.CompletionResult{
		Text:         strings.Join(resp.Texts, "\n"),
		Model:        s.model,
		InputTokens:  resp.InputToken,
		OutputTokens: resp.OutputToken,
	}, nil
}
