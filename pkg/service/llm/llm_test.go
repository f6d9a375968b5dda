package llm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
	"github.com/opsforge-io/ticketd/pkg/service/llm"
)

func TestCompleteWithoutClientFailsCapability(t *testing.T) {
	svc := llm.New(nil)

	_, err := svc.Complete(context.Background(), &interfaces.CompletionRequest{
		Prompt:      "hello",
		MaxTokens:   2000,
		Temperature: 0.7,
	})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrCapability)).True()
}

func TestCompleteRejectsInvalidGenerationParams(t *testing.T) {
	svc := llm.New(nil)
	ctx := context.Background()

	_, err := svc.Complete(ctx, &interfaces.CompletionRequest{Prompt: "x", Temperature: 3.5})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()

	_, err = svc.Complete(ctx, &interfaces.CompletionRequest{Prompt: "x", MaxTokens: -1})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}

func TestCompleteRejectsBudgetBeyondClientConfig(t *testing.T) {
	svc := llm.New(nil, llm.WithMaxTokens(100))

	_, err := svc.Complete(context.Background(), &interfaces.CompletionRequest{
		Prompt:    "x",
		MaxTokens: 200,
	})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrCapability)).True()
	gt.String(t, err.Error()).Contains("token budget")
}
