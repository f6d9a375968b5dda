package config

import (
	"github.com/opsforge-io/ticketd/pkg/domain/interfaces"
	"github.com/opsforge-io/ticketd/pkg/service/github"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// GitHub holds CLI flags for GitHub App authentication
type GitHub struct {
	appID          int64
	installationID int64
	privateKey     string
}

// Flags returns CLI flags for GitHub configuration
func (g *GitHub) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "github-app-id",
			Usage:       "GitHub App ID",
			Sources:     cli.EnvVars("TICKETD_GITHUB_APP_ID"),
			Destination: &g.appID,
		},
		&cli.Int64Flag{
			Name:        "github-installation-id",
			Usage:       "GitHub App Installation ID",
			Sources:     cli.EnvVars("TICKETD_GITHUB_INSTALLATION_ID"),
			Destination: &g.installationID,
		},
		&cli.StringFlag{
			Name:        "github-private-key",
			Usage:       "GitHub App private key (PEM string or file path)",
			Sources:     cli.EnvVars("TICKETD_GITHUB_PRIVATE_KEY"),
			Destination: &g.privateKey,
		},
	}
}

// Configure builds a pull request reader. It returns nil without error
// when the App credentials are not set; pr_review tasks then fail at
// dispatch time instead of at startup.
func (g *GitHub) Configure() (interfaces.PullRequestReader, error) {
	if g.appID == 0 || g.installationID == 0 || g.privateKey == "" {
		logging.Default().Warn("GitHub App credentials are not set, pr_review tasks are disabled")
		return nil, nil
	}

	client, err := github.New(g.appID, g.installationID, g.privateKey)
	if err != nil {
		return nil, err
	}

	logging.Default().Info("GitHub client configured",
		"app_id", g.appID,
		"installation_id", g.installationID,
	)
	return client, nil
}
