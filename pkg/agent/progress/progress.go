package progress

import "context"

// Stage names a pipeline step reported to the caller
type Stage string

const (
	StageParse    Stage = "parse"
	StageRecall   Stage = "recall"
	StageRetrieve Stage = "retrieve"
	StageRoute    Stage = "route"
	StageSolve    Stage = "solve"
	StageVerify   Stage = "verify"
	StageReview   Stage = "review"
	StageExplain  Stage = "explain"
	StagePersist  Stage = "persist"
)

// Event is one progress notification
type Event struct {
	Stage   Stage
	Message string
}

// Reporter receives progress events while a run executes. It is called synchronously
// from the pipeline goroutines and must be safe for concurrent use.
type Reporter func(ctx context.Context, ev Event)

type ctxReporterKey struct{}

// WithReporter returns a context whose runs report progress to r
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, ctxReporterKey{}, r)
}

// Report sends an event to the reporter in ctx. Without a reporter it does nothing.
func Report(ctx context.Context, stage Stage, message string) {
	if r, ok := ctx.Value(ctxReporterKey{}).(Reporter); ok && r != nil {
		r(ctx, Event{Stage: stage, Message: message})
	}
}
