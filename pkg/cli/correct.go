package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/cli/config"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/usecase"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdCorrect() *cli.Command {
	var repoCfg config.Repository
	var correction model.Correction

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "question",
			Usage:       "Original question of the reviewed run",
			Required:    true,
			Destination: &correction.OriginalQuestion,
		},
		&cli.StringFlag{
			Name:        "answer",
			Usage:       "Answer proposed by the solver",
			Required:    true,
			Destination: &correction.AIAnswer,
		},
		&cli.StringFlag{
			Name:        "corrected-question",
			Usage:       "Question as corrected by the reviewer",
			Destination: &correction.HumanCorrectedQuestion,
		},
		&cli.StringFlag{
			Name:        "corrected-answer",
			Usage:       "Answer as corrected by the reviewer",
			Destination: &correction.HumanCorrectedAnswer,
		},
		&cli.StringFlag{
			Name:        "comment",
			Usage:       "Reviewer comment",
			Destination: &correction.Comment,
		},
		&cli.BoolFlag{
			Name:        "approve",
			Usage:       "Approve the correction (required for it to be stored)",
			Destination: &correction.Approved,
		},
	}
	flags = append(flags, repoCfg.Flags()...)

	return &cli.Command{
		Name:  "correct",
		Usage: "Submit a human correction for a run that required review",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			uc := usecase.New(repo)
			created, err := uc.Review.SubmitCorrection(ctx, &correction)
			if err != nil {
				return err
			}

			_, _ = okColor.Fprintln(os.Stdout, "Correction stored.")
			renderField(os.Stdout, "ID", string(created.ID))
			renderField(os.Stdout, "Timestamp", fmt.Sprint(created.Timestamp))
			return nil
		},
	}
}
