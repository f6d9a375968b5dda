package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Gemini holds CLI flags for the Gemini completion backend
type Gemini struct {
	projectID string
	location  string
	model     string

	maxTokens   int
	temperature float64
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project-id",
			Usage:       "Google Cloud Project ID for Gemini",
			Sources:     cli.EnvVars("TICKETD_GEMINI_PROJECT_ID"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("TICKETD_GEMINI_LOCATION"),
			Destination: &g.location,
		},
		&cli.StringFlag{
			Name:        "gemini-model",
			Usage:       "Gemini model name",
			Value:       "gemini-2.0-flash",
			Sources:     cli.EnvVars("TICKETD_GEMINI_MODEL"),
			Destination: &g.model,
		},
	}
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.model
}

// MaxTokens returns the configured generation token budget.
func (g *Gemini) MaxTokens() int {
	return g.maxTokens
}

// Temperature returns the configured sampling temperature.
func (g *Gemini) Temperature() float64 {
	return g.temperature
}

// ApplyAppConfig merges generation settings from the TOML application
// configuration over the flag values.
func (g *Gemini) ApplyAppConfig(llm LLMConfig) {
	if llm.Model != "" {
		g.model = llm.Model
	}
	if llm.MaxTokens > 0 {
		g.maxTokens = llm.MaxTokens
	}
	if llm.Temperature > 0 {
		g.temperature = llm.Temperature
	}
}

// Configure builds a Gemini LLM client. It returns nil without error
// when no project is configured; completion-backed task kinds then fail
// at dispatch time instead of at startup.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		logging.Default().Warn("Gemini project ID is not set, completion tasks are disabled")
		return nil, nil
	}

	opts := []gemini.Option{
		gemini.WithModel(g.model),
	}
	if g.maxTokens > 0 {
		opts = append(opts, gemini.WithMaxTokens(int32(g.maxTokens)))
	}
	if g.temperature > 0 {
		opts = append(opts, gemini.WithTemperature(float32(g.temperature)))
	}

	client, err := gemini.New(ctx, g.projectID, g.location, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gemini client",
			goerr.V("projectID", g.projectID), goerr.V("location", g.location))
	}

	logging.Default().Info("Gemini client configured",
		"project_id", g.projectID,
		"location", g.location,
		"model", g.model,
		"max_tokens", g.maxTokens,
		"temperature", g.temperature,
	)
	return client, nil
}
