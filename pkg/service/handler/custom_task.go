package handler

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

func (r *Registry) customTask(ctx context.Context, ticket *model.Ticket) (*Result, error) {
	description, err := requireString(ticket.TaskData, "task_description", types.TaskKindCustom)
	if err != nil {
		return nil, err
	}

	instructions := stringField(ticket.TaskData, "instructions")
	if extra := r.instructions[types.TaskKindCustom]; extra != "" {
		if instructions != "" {
			instructions += "\n"
		}
		instructions += extra
	}

	prompt, err := renderPrompt(customTaskPrompt, map[string]any{
		"TaskDescription": description,
		"Instructions":    instructions,
		"Context":         stringField(ticket.TaskData, "context"),
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
			"task_result": completion.Text,
			"tokens_used": completion.TotalTokens(),
			"model_used":  completion.Model,
		},
		ModelUsed:  completion.Model,
		TokensUsed: completion.TotalTokens(),
	}, nil
}
