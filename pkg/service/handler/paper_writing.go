package handler

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

func (r *Registry) paperWriting(ctx context.Context, ticket *model.Ticket) (*Result, error) {
	topic, err := requireString(ticket.TaskData, "topic", types.TaskKindPaperWriting)
	if err != nil {
		return nil, err
	}

	paperType := stringField(ticket.TaskData, "paper_type")
	if paperType == "" {
		paperType = "report"
	}
	audience := stringField(ticket.TaskData, "target_audience")
	if audience == "" {
		audience = "General"
	}
	length := stringField(ticket.TaskData, "length")
	if length == "" {
		length = "Medium"
	}

	instructions := stringField(ticket.TaskData, "instructions")
	if extra := r.instructions[types.TaskKindPaperWriting]; extra != "" {
		if instructions != "" {
			instructions += "\n"
		}
		instructions += extra
	}

	prompt, err := renderPrompt(paperWritingPrompt, map[string]any{
		"PaperType":      paperType,
		"Topic":          topic,
		"Requirements":   stringField(ticket.TaskData, "requirements"),
		"TargetAudience": audience,
		"Length":         length,
		"Instructions":   instructions,
	})
	if err != nil {
		return nil, err
	}

	completion, err := r.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Data: map[string]any{
			"paper_content": completion.Text,
			"tokens_used":   completion.TotalTokens(),
			"model_used":    completion.Model,
		},
		ModelUsed:  completion.Model,
		TokensUsed: completion.TotalTokens(),
	}, nil
}
