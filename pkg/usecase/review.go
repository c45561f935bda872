package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/utils/metrics"
)

// ReviewUseCase stores human corrections of runs that needed review
type ReviewUseCase struct {
	repo interfaces.Repository
}

func NewReviewUseCase(repo interfaces.Repository) *ReviewUseCase {
	return &ReviewUseCase{repo: repo}
}

// SubmitCorrection appends an approved correction. Unapproved corrections are rejected
// with ErrCorrectionNotApproved and nothing is written.
func (uc *ReviewUseCase) SubmitCorrection(ctx context.Context, correction *model.Correction) (*model.Correction, error) {
	if correction == nil {
		return nil, goerr.New("correction is required")
	}
	if !correction.Approved {
		return nil, goerr.Wrap(ErrCorrectionNotApproved, "correction rejected",
			goerr.V("original_question", correction.OriginalQuestion))
	}

	created, err := uc.repo.Memory().AppendCorrection(ctx, correction)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to append correction")
	}
	metrics.RecordAppend(metrics.KindCorrection)

	return created, nil
}

// ListCorrections returns every stored correction in write order
func (uc *ReviewUseCase) ListCorrections(ctx context.Context) ([]*model.Correction, error) {
	corrections, err := uc.repo.Memory().ListCorrections(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list corrections")
	}
	return corrections, nil
}
