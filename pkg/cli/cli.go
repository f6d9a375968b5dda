package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/cli/config"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Run executes the ticketd CLI with the given arguments
func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var closeLogger func()

	cmd := &cli.Command{
		Name:    "ticketd",
		Usage:   "Ticket orchestration engine",
		Version: version,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			closer, err := loggerCfg.Configure()
			if err != nil {
				return ctx, goerr.Wrap(err, "failed to configure logger")
			}
			closeLogger = closer

			logging.Default().Info("Starting ticketd",
				"version", version,
				"logger", loggerCfg,
			)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closeLogger != nil {
				closeLogger()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(version),
			cmdMigrate(),
			cmdValidate(),
		},
	}

	if err := cmd.Run(ctx, args); err != nil {
		logging.Default().Error("Command failed", "error", err)
		return err
	}
	return nil
}
