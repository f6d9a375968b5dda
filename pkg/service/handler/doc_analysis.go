package handler

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

type documentInput struct {
	Filename string
	Content  string
}

func (r *Registry) docAnalysis(ctx context.Context, ticket *model.Ticket) (*Result, error) {
	if r.caps.Documents == nil {
		return nil, goerr.Wrap(types.ErrCapability, "document extractor not configured")
	}

	attachments, err := r.repo.Attachment().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list attachments", goerr.V("ticket_id", ticket.ID))
	}
	if len(attachments) == 0 {
		return nil, goerr.Wrap(types.ErrValidation, "at least one attachment is required for doc_analysis task",
			goerr.V("ticket_id", ticket.ID))
	}

	documents := make([]documentInput, 0, len(attachments))
	for _, attachment := range attachments {
		content, err := r.caps.Documents.ExtractText(ctx, attachment.StoragePath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to extract document text",
				goerr.V("ticket_id", ticket.ID),
				goerr.V("filename", attachment.Filename),
			)
		}
		documents = append(documents, documentInput{
			Filename: attachment.Filename,
			Content:  content,
		})
	}

	analysisType := stringField(ticket.TaskData, "analysis_type")
	if analysisType == "" {
		analysisType = "general"
	}
	instructions := stringField(ticket.TaskData, "instructions")
	if instructions == "" {
		instructions = "Provide a comprehensive analysis"
	}
	if extra := r.instructions[types.TaskKindDocAnalysis]; extra != "" {
		instructions += "\n" + extra
	}

	prompt, err := renderPrompt(docAnalysisPrompt, map[string]any{
		"Documents":    documents,
		"AnalysisType": analysisType,
		"Instructions": instructions,
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
			"documents_analyzed": len(documents),
			"analysis":           completion.Text,
			"tokens_used":        completion.TotalTokens(),
			"model_used":         completion.Model,
		},
		ModelUsed:  completion.Model,
		TokensUsed: completion.TotalTokens(),
	}, nil
}

func (r *Registry) complete(ctx context.Context, prompt string) (*interfaces.CompletionResult, error) {
	if r.caps.Completion == nil {
		return nil, goerr.Wrap(types.ErrCapability, "completion provider not configured")
	}

	result, err := r.caps.Completion.Complete(ctx, &interfaces.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   r.maxTokens,
		Temperature: r.temperature,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "completion failed")
	}
	return result, nil
}
