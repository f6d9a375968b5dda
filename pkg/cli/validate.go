package cli

import (
	"context"

	"github.com/opsforge-io/ticketd/pkg/cli/config"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdValidate() *cli.Command {
	var configPath string

	return &cli.Command{
		Name:  "validate",
		Usage: "Validate the TOML application configuration",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Usage:       "Path to TOML application configuration",
				Required:    true,
				Sources:     cli.EnvVars("TICKETD_CONFIG"),
				Destination: &configPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadAppConfiguration(configPath)
			if err != nil {
				return err
			}

			logging.Default().Info("Configuration is valid",
				"path", configPath,
				"llm_model", cfg.LLM.Model,
				"query_service_url", cfg.QueryService.URL,
				"task_instructions", len(cfg.Instructions()),
			)
			return nil
		},
	}
}
