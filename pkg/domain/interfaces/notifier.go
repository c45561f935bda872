package interfaces

import (
	"context"

	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// ReviewNotifier tells human reviewers that a run needs review
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, run *model.Run) error
}
