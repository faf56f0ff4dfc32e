package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/obligo-lab/obligo/pkg/cli/config"
	"github.com/obligo-lab/obligo/pkg/usecase"
	"github.com/obligo-lab/obligo/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// cmdSweep flips overdue obligations to Late in bulk. Intended to be run
// periodically by an external scheduler.
func cmdSweep() *cli.Command {
	var repoCfg config.Repository

	return &cli.Command{
		Name:  "sweep",
		Usage: "Mark overdue obligations as late",
		Flags: repoCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			flipped, err := uc.Obligation.SweepOverdue(ctx)
			if err != nil {
				return goerr.Wrap(err, "overdue sweep failed")
			}

			logger.Info("overdue sweep completed", "flipped", flipped)
			return nil
		},
	}
}
