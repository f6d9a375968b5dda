package handler

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/domain/model"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

func (r *Registry) prReview(ctx context.Context, ticket *model.Ticket) (*Result, error) {
	prURL, err := requireString(ticket.TaskData, "pr_url", types.TaskKindPRReview)
	if err != nil {
		return nil, err
	}

	if r.caps.PullRequests == nil {
		return nil, goerr.Wrap(types.ErrCapability, "pull request reader not configured")
	}

	pr, err := r.caps.PullRequests.FetchPullRequest(ctx, prURL)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch pull request", goerr.V("pr_url", prURL))
	}

	instructions := stringField(ticket.TaskData, "additional_instructions")
	if extra := r.instructions[types.TaskKindPRReview]; extra != "" {
		if instructions != "" {
			instructions += "\n"
		}
		instructions += extra
	}

	prompt, err := renderPrompt(prReviewPrompt, map[string]any{
		"Title":        pr.Title,
		"Description":  pr.Description,
		"Author":       pr.Author,
		"ChangedFiles": pr.ChangedFiles,
		"Additions":    pr.Additions,
		"Deletions":    pr.Deletions,
		"Diff":         pr.Diff,
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
			"pr_url":          prURL,
			"review_analysis": completion.Text,
			"tokens_used":     completion.TotalTokens(),
			"model_used":      completion.Model,
		},
		ModelUsed:  completion.Model,
		TokensUsed: completion.TotalTokens(),
	}, nil
}
