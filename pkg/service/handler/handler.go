package handler

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

// Result is the outcome of one handler invocation. Data becomes the
// ticket's result_data as-is.
type Result struct {
	Data       map[string]any
	ModelUsed  string
	TokensUsed int
}

// Func processes one ticket of a specific task kind
type Func func(ctx context.Context, ticket *model.Ticket) (*Result, error)

// Capabilities holds the external integrations handlers may use. Any
// field can be nil; handlers that need a missing capability fail with
// ErrCapability instead of panicking.
type Capabilities struct {
	Completion   interfaces.CompletionClient
	PullRequests interfaces.PullRequestReader
	Documents    interfaces.DocumentExtractor
	Query        interfaces.QueryClient
}

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
)

// Registry maps task kinds to handlers. The mapping is a fixed switch
// so adding a kind is an explicit code change, not a runtime mutation.
type Registry struct {
	repo interfaces.Repository
	caps Capabilities

	// per-kind extra instructions appended to prompts, from config
	instructions map[types.TaskKind]string

	// generation parameters stamped on every completion request
	maxTokens   int
	temperature float64
}

type Option func(*Registry)

// WithInstructions appends operator-supplied instructions to the
// prompt of one task kind
func WithInstructions(kind types.TaskKind, text string) Option {
	return func(r *Registry) {
		r.instructions[kind] = text
	}
}

// WithGenerationParams overrides the default completion token budget
// and temperature. Zero values keep the defaults.
func WithGenerationParams(maxTokens int, temperature float64) Option {
	return func(r *Registry) {
		if maxTokens > 0 {
			r.maxTokens = maxTokens
		}
		if temperature > 0 {
			r.temperature = temperature
		}
	}
}

func New(repo interfaces.Repository, caps Capabilities, opts ...Option) *Registry {
	r := &Registry{
		repo:         repo,
		caps:         caps,
		instructions: make(map[types.TaskKind]string),
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the handler for a task kind. An unknown kind fails
// with ErrDispatch; nothing falls through to a default handler.
func (r *Registry) Resolve(kind types.TaskKind) (Func, error) {
	switch kind {
	case types.TaskKindDocAnalysis:
		return r.docAnalysis, nil
	case types.TaskKindPRReview:
		return r.prReview, nil
	case types.TaskKindPaperWriting:
		return r.paperWriting, nil
	case types.TaskKindDataQuery:
		return r.dataQuery, nil
	case types.TaskKindCustom:
		return r.customTask, nil
	default:
		return nil, goerr.Wrap(types.ErrDispatch, "no handler for task kind", goerr.V("kind", kind))
	}
}

// stringField reads an optional string from task_data
func stringField(data map[string]any, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// requireString reads a mandatory string from task_data
func requireString(data map[string]any, key string, kind types.TaskKind) (string, error) {
	v := stringField(data, key)
	if v == "" {
		return "", goerr.Wrap(types.ErrValidation, key+" is required for "+string(kind)+" task",
			goerr.V("field", key), goerr.V("kind", kind))
	}
	return v, nil
}
