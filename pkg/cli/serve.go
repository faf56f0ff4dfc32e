package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/cli/config"
	httpctrl "github.com/obligo-lab/obligo/pkg/controller/http"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/types"
	"github.com/obligo-lab/obligo/pkg/service/attachment"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var noAuthSub string
	var jwksURL string
	var jwtIssuer string
	var jwtAudience string
	var attachmentBucket string
	var attachmentPrefix string
	var appCfg config.AppConfig
	var repoCfg config.Repository

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("OBLIGO_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "no-auth",
			Usage:       "Skip authentication and act as the given responsible ID (development only). Example: --no-auth=resp-admin",
			Category:    "Authentication",
			Sources:     cli.EnvVars("OBLIGO_NO_AUTH"),
			Destination: &noAuthSub,
		},
		&cli.StringFlag{
			Name:        "jwks-url",
			Usage:       "JWKS endpoint of the identity provider",
			Category:    "Authentication",
			Sources:     cli.EnvVars("OBLIGO_JWKS_URL"),
			Destination: &jwksURL,
		},
		&cli.StringFlag{
			Name:        "jwt-issuer",
			Usage:       "Expected issuer of identity tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("OBLIGO_JWT_ISSUER"),
			Destination: &jwtIssuer,
		},
		&cli.StringFlag{
			Name:        "jwt-audience",
			Usage:       "Expected audience of identity tokens",
			Category:    "Authentication",
			Sources:     cli.EnvVars("OBLIGO_JWT_AUDIENCE"),
			Destination: &jwtAudience,
		},
		&cli.StringFlag{
			Name:        "attachment-bucket",
			Usage:       "GCS bucket for attachment bytes (in-memory store when empty)",
			Category:    "Attachments",
			Sources:     cli.EnvVars("OBLIGO_ATTACHMENT_BUCKET"),
			Destination: &attachmentBucket,
		},
		&cli.StringFlag{
			Name:        "attachment-prefix",
			Usage:       "Object name prefix inside the attachment bucket",
			Category:    "Attachments",
			Sources:     cli.EnvVars("OBLIGO_ATTACHMENT_PREFIX"),
			Destination: &attachmentPrefix,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			if err := appCfg.Load(); err != nil {
				return goerr.Wrap(err, "failed to load workflow configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			if err := seedThemes(ctx, repo, &appCfg); err != nil {
				return goerr.Wrap(err, "failed to register configured themes")
			}

			var authUC usecase.AuthUseCaseInterface
			switch {
			case noAuthSub != "":
				logger.Warn("Running in no-auth mode (development only)", "responsible_id", noAuthSub)
				authUC = usecase.NewNoAuthnUseCase(repo, types.ResponsibleID(noAuthSub))
			case jwksURL != "":
				logger.Info("JWT authentication enabled", "jwks_url", jwksURL, "issuer", jwtIssuer)
				authUC = usecase.NewAuthUseCase(repo, jwksURL, jwtIssuer, jwtAudience)
			default:
				return goerr.New("either --jwks-url or --no-auth is required")
			}

			var store interfaces.AttachmentStore
			if attachmentBucket != "" {
				gcs, err := attachment.NewGCS(ctx, attachmentBucket, attachmentPrefix)
				if err != nil {
					return goerr.Wrap(err, "failed to initialize GCS attachment store")
				}
				defer func() {
					if err := gcs.Close(); err != nil {
						logger.Error("failed to close attachment store", "error", err.Error())
					}
				}()
				store = gcs
				logger.Info("GCS attachment store enabled", "bucket", attachmentBucket, "prefix", attachmentPrefix)
			} else {
				store = attachment.NewMemory()
				logger.Warn("No attachment bucket configured, attachment bytes are held in memory")
			}

			uc := usecase.New(repo,
				usecase.WithAuth(authUC),
				usecase.WithDeadlineCalculator(appCfg.Calculator()),
				usecase.WithAttachmentStore(store),
			)

			server := &http.Server{
				Addr:              addr,
				Handler:           httpctrl.New(uc),
				ReadHeaderTimeout: 30 * time.Second,
			}

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logger.Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logger.Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logger.Info("Server shutdown completed")
				return nil
			}
		},
	}
}

// seedThemes upserts the configured theme catalog so SLA lookups during
// routing see the file's tables.
func seedThemes(ctx context.Context, repo interfaces.Repository, appCfg *config.AppConfig) error {
	for _, theme := range appCfg.ThemeModels() {
		if err := repo.Theme().Put(ctx, theme); err != nil {
			return goerr.Wrap(err, "failed to store theme", goerr.V("id", theme.ID))
		}
		logging.Default().Info("theme registered", "id", theme.ID, "name", theme.Name)
	}
	return nil
}
