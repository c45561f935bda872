package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/repository/memory"
	"github.com/secmon-lab/ganit/pkg/usecase"
)

func TestReviewSubmitCorrection(t *testing.T) {
	ctx := context.Background()

	t.Run("approved correction is stored", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewReviewUseCase(repo)

		created, err := uc.SubmitCorrection(ctx, &model.Correction{
			OriginalQuestion:       "Solve x^2 = 4 for x > 0",
			AIAnswer:               "Solve the quadratic equation using standard methods.",
			HumanCorrectedQuestion: "Solve x^2 = 4 for x > 0",
			HumanCorrectedAnswer:   "x = 2",
			Comment:                "only the positive root satisfies the constraint",
			Approved:               true,
		})
		gt.NoError(t, err).Required()
		gt.String(t, string(created.ID)).NotEqual("")

		corrections, err := uc.ListCorrections(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, corrections).Length(1).Required()
		gt.Value(t, corrections[0].HumanCorrectedAnswer).Equal("x = 2")
	})

	t.Run("unapproved correction is rejected", func(t *testing.T) {
		repo := memory.New()
		uc := usecase.NewReviewUseCase(repo)

		_, err := uc.SubmitCorrection(ctx, &model.Correction{
			OriginalQuestion: "q",
			AIAnswer:         "a",
		})
		gt.Bool(t, errors.Is(err, usecase.ErrCorrectionNotApproved)).True()

		corrections, err := uc.ListCorrections(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, corrections).Length(0)
	})

	t.Run("nil correction is rejected", func(t *testing.T) {
		_, err := usecase.NewReviewUseCase(memory.New()).SubmitCorrection(ctx, nil)
		gt.Error(t, err)
	})
}
