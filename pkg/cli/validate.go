package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/cli/config"
	"github.com/obligo-lab/obligo/pkg/domain/interfaces"
	"github.com/obligo-lab/obligo/pkg/domain/model"
	"github.com/obligo-lab/obligo/pkg/repository/firestore"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var (
	markOK   = color.New(color.FgGreen).Sprint("OK")
	markFail = color.New(color.FgRed).Sprint("FAIL")
)

func cmdValidate() *cli.Command {
	var appCfg config.AppConfig
	var firestoreProjectID string
	var firestoreDatabaseID string

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (if specified, stored data is checked too)",
			Sources:     cli.EnvVars("OBLIGO_FIRESTORE_PROJECT_ID"),
			Destination: &firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Sources:     cli.EnvVars("OBLIGO_FIRESTORE_DATABASE_ID"),
			Destination: &firestoreDatabaseID,
		},
	)

	return &cli.Command{
		Name:    "validate",
		Aliases: []string{"v"},
		Usage:   "Validate the workflow configuration and optionally the stored data",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if appCfg.Path() == "" {
				return goerr.New("--config is required")
			}

			if err := appCfg.Load(); err != nil {
				fmt.Printf("%s %s\n", markFail, appCfg.Path())
				return goerr.Wrap(err, "configuration validation failed")
			}

			fmt.Printf("%s %s\n", markOK, appCfg.Path())
			fmt.Printf("%s default SLA table (%d overrides)\n", markOK, len(appCfg.DefaultSLADays))
			for _, theme := range appCfg.Themes {
				fmt.Printf("%s theme %s (%d SLA entries)\n", markOK, theme.ID, len(theme.SLADays))
			}

			if firestoreProjectID == "" {
				return nil
			}

			repo, err := firestore.New(ctx, firestoreProjectID, firestoreDatabaseID)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize Firestore repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			issues, err := checkStoredObligations(ctx, repo)
			if err != nil {
				return goerr.Wrap(err, "stored data check failed")
			}
			if issues > 0 {
				fmt.Printf("%s stored data (%d issue(s))\n", markFail, issues)
				return goerr.New("stored data check found issues", goerr.V("count", issues))
			}

			fmt.Printf("%s stored data\n", markOK)
			return nil
		},
	}
}

// checkStoredObligations verifies that every stored obligation still holds
// its structural invariants and that its routing history is gapless.
func checkStoredObligations(ctx context.Context, repo interfaces.Repository) (int, error) {
	obligations, err := repo.Obligation().List(ctx, interfaces.ListObligationOptions{IncludeInactive: true})
	if err != nil {
		return 0, err
	}

	logger := logging.Default()
	issues := 0

	for _, o := range obligations {
		if err := o.Validate(); err != nil {
			logger.Warn("invalid stored obligation", "id", o.ID, "code", o.Code, "error", err.Error())
			issues++
		}
		if bad := checkRoutingHistory(ctx, repo, o); bad != "" {
			logger.Warn("broken routing history", "id", o.ID, "code", o.Code, "issue", bad)
			issues++
		}
	}
	return issues, nil
}

func checkRoutingHistory(ctx context.Context, repo interfaces.Repository, o *model.Obligation) string {
	actions, err := repo.RoutingAction().List(ctx, o.ID)
	if err != nil {
		return fmt.Sprintf("failed to list routing actions: %s", err)
	}

	for i, a := range actions {
		if a.Level != i+1 {
			return fmt.Sprintf("level gap at position %d: got %d", i, a.Level)
		}
		if !a.Action.IsRouting() {
			return fmt.Sprintf("non-routing action %s at level %d", a.Action, a.Level)
		}
	}
	return ""
}
