package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/opsforge-io/ticketd/pkg/cli/config"
	httpctrl "github.com/opsforge-io/ticketd/pkg/controller/http"
	"github.com/opsforge-io/ticketd/pkg/service/audit"
	"github.com/opsforge-io/ticketd/pkg/service/executor"
	"github.com/opsforge-io/ticketd/pkg/service/extract"
	"github.com/opsforge-io/ticketd/pkg/service/handler"
	"github.com/opsforge-io/ticketd/pkg/service/hub"
	"github.com/opsforge-io/ticketd/pkg/service/llm"
	"github.com/opsforge-io/ticketd/pkg/service/query"
	"github.com/opsforge-io/ticketd/pkg/service/queue"
	"github.com/opsforge-io/ticketd/pkg/usecase"
	"github.com/opsforge-io/ticketd/pkg/utils/logging"
	"github.com/opsforge-io/ticketd/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var (
		addr            string
		configPath      string
		queueSize       int64
		workers         int64
		queryServiceURL string
		enableGCS       bool

		repoCfg   config.Repository
		geminiCfg config.Gemini
		githubCfg config.GitHub
		sentryCfg config.Sentry
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("TICKETD_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML application configuration",
			Sources:     cli.EnvVars("TICKETD_CONFIG"),
			Destination: &configPath,
		},
		&cli.Int64Flag{
			Name:        "queue-size",
			Usage:       "Job queue buffer size",
			Value:       128,
			Sources:     cli.EnvVars("TICKETD_QUEUE_SIZE"),
			Destination: &queueSize,
		},
		&cli.Int64Flag{
			Name:        "workers",
			Usage:       "Number of job workers",
			Value:       4,
			Sources:     cli.EnvVars("TICKETD_WORKERS"),
			Destination: &workers,
		},
		&cli.StringFlag{
			Name:        "query-service-url",
			Usage:       "Base URL of the external query service (overrides config file)",
			Sources:     cli.EnvVars("TICKETD_QUERY_SERVICE_URL"),
			Destination: &queryServiceURL,
		},
		&cli.BoolFlag{
			Name:        "enable-gcs",
			Usage:       "Enable gs:// attachment paths via Cloud Storage",
			Sources:     cli.EnvVars("TICKETD_ENABLE_GCS"),
			Destination: &enableGCS,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the ticket orchestration server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			closeSentry, err := sentryCfg.Configure(version)
			if err != nil {
				return err
			}
			defer closeSentry()

			appCfg, err := config.LoadAppConfiguration(configPath)
			if err != nil {
				return err
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return err
			}
			defer safe.Close(ctx, repo)

			geminiCfg.ApplyAppConfig(appCfg.LLM)
			geminiClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return err
			}
			llmOpts := []llm.Option{llm.WithModel(geminiCfg.Model())}
			if geminiCfg.MaxTokens() > 0 {
				llmOpts = append(llmOpts, llm.WithMaxTokens(geminiCfg.MaxTokens()))
			}
			if geminiCfg.Temperature() > 0 {
				llmOpts = append(llmOpts, llm.WithTemperature(geminiCfg.Temperature()))
			}
			completion := llm.New(geminiClient, llmOpts...)

			prReader, err := githubCfg.Configure()
			if err != nil {
				return err
			}

			var extractOpts []extract.Option
			if enableGCS {
				gcs, err := storage.NewClient(ctx)
				if err != nil {
					return goerr.Wrap(err, "failed to create cloud storage client")
				}
				defer safe.Close(ctx, gcs)
				extractOpts = append(extractOpts, extract.WithGCS(gcs))
			}
			documents := extract.New(extractOpts...)

			queryURL := appCfg.QueryService.URL
			if queryServiceURL != "" {
				queryURL = queryServiceURL
			}
			caps := handler.Capabilities{
				Completion:   completion,
				PullRequests: prReader,
				Documents:    documents,
			}
			if queryURL != "" {
				caps.Query = query.New(queryURL)
				logger.Info("Query service configured", "url", queryURL)
			} else {
				logger.Warn("Query service URL is not set, data_query tasks are disabled")
			}

			var handlerOpts []handler.Option
			for kind, text := range appCfg.Instructions() {
				handlerOpts = append(handlerOpts, handler.WithInstructions(kind, text))
			}
			if appCfg.LLM.MaxTokens > 0 || appCfg.LLM.Temperature > 0 {
				handlerOpts = append(handlerOpts, handler.WithGenerationParams(appCfg.LLM.MaxTokens, appCfg.LLM.Temperature))
			}
			registry := handler.New(repo, caps, handlerOpts...)

			connections := hub.New()
			recorder := audit.New(repo)
			jobs := queue.New(int(queueSize))

			exec := executor.New(repo, registry, recorder, connections)
			pool := executor.NewPool(exec, jobs, int(workers))
			pool.Start(ctx)

			ucs := usecase.New(repo, jobs, recorder)
			srv := httpctrl.New(ucs, connections)

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           srv,
				ReadHeaderTimeout: 30 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr, "workers", workers)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- goerr.Wrap(err, "http server failed")
				}
			}()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case sig := <-sigCh:
				logger.Info("Received signal, shutting down", "signal", sig.String())
			case err := <-errCh:
				return err
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("Failed to shutdown HTTP server gracefully", "error", err)
			}

			// Close the queue first so workers drain the remaining
			// buffered jobs before the pool stops.
			jobs.Close()
			pool.Stop()

			logger.Info("Server stopped")
			return nil
		},
	}
}
