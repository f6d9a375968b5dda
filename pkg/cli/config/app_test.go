package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/opsforge-io/ticketd/pkg/cli/config"
	"github.com/opsforge-io/ticketd/pkg/domain/types"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ticketd.toml")
	gt.NoError(t, os.WriteFile(path, []byte(body), 0600))
	return path
}

func TestLoadAppConfiguration(t *testing.T) {
	path := writeConfig(t, `
[llm]
model = "gemini-2.0-flash"
max_tokens = 4096
temperature = 0.2

[query_service]
url = "http://query.internal:8080"

[tasks.doc_analysis]
instructions = "Always cite the source document."

[tasks.pr_review]
instructions = "Focus on security issues."
`)

	cfg := gt.R1(config.LoadAppConfiguration(path)).NoError(t)
	gt.Value(t, cfg.LLM.Model).Equal("gemini-2.0-flash")
	gt.Value(t, cfg.LLM.MaxTokens).Equal(4096)
	gt.Value(t, cfg.QueryService.URL).Equal("http://query.internal:8080")

	instructions := cfg.Instructions()
	gt.Value(t, instructions[types.TaskKindDocAnalysis]).Equal("Always cite the source document.")
	gt.Value(t, instructions[types.TaskKindPRReview]).Equal("Focus on security issues.")
}

func TestLoadAppConfigurationEmptyPath(t *testing.T) {
	cfg := gt.R1(config.LoadAppConfiguration("")).NoError(t)
	gt.Value(t, cfg.LLM.Model).Equal("")
	gt.Value(t, len(cfg.Instructions())).Equal(0)
}

func TestLoadAppConfigurationRejectsUnknownTaskKind(t *testing.T) {
	path := writeConfig(t, `
[tasks.mystery]
instructions = "nope"
`)

	_, err := config.LoadAppConfiguration(path)
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("invalid task kind")
}

func TestLoadAppConfigurationRejectsNegativeMaxTokens(t *testing.T) {
	path := writeConfig(t, `
[llm]
max_tokens = -1
`)

	_, err := config.LoadAppConfiguration(path)
	gt.Error(t, err)
}
