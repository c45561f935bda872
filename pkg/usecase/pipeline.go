package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/secmon-lab/ganit/pkg/agent/progress"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/model/config"
	"github.com/secmon-lab/ganit/pkg/domain/types"
	"github.com/secmon-lab/ganit/pkg/utils/async"
	"github.com/secmon-lab/ganit/pkg/utils/errutil"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/secmon-lab/ganit/pkg/utils/metrics"
	"golang.org/x/sync/errgroup"
)

// PipelineUseCase runs a problem through parse, recall, retrieve, route, solve, verify
// and then either suspends it for human review or explains and persists it.
type PipelineUseCase struct {
	memory     *MemoryUseCase
	retriever  interfaces.KnowledgeRetriever
	solver     *agent.Solver
	notifier   interfaces.ReviewNotifier
	dispatcher *async.Dispatcher
	cfg        config.Pipeline
}

func NewPipelineUseCase(
	memory *MemoryUseCase,
	retriever interfaces.KnowledgeRetriever,
	solver *agent.Solver,
	notifier interfaces.ReviewNotifier,
	dispatcher *async.Dispatcher,
	cfg config.Pipeline,
) *PipelineUseCase {
	if dispatcher == nil {
		dispatcher = async.NewDispatcher()
	}
	return &PipelineUseCase{
		memory:     memory,
		retriever:  retriever,
		solver:     solver,
		notifier:   notifier,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

type solveOptions struct {
	feedback     *string
	strictGround bool
}

type SolveOption func(*solveOptions)

// WithFeedback attaches user feedback to the verified solve record if the run is persisted
func WithFeedback(feedback string) SolveOption {
	return func(o *solveOptions) {
		if feedback != "" {
			o.feedback = &feedback
		}
	}
}

// WithStrictGrounding makes Solve return ErrNoGrounding instead of a no_grounding run
func WithStrictGrounding() SolveOption {
	return func(o *solveOptions) {
		o.strictGround = true
	}
}

// Solve executes one run for raw. A run that ends in review_required or no_grounding
// is not an error; the returned Run.Status tells the caller what happened.
func (uc *PipelineUseCase) Solve(ctx context.Context, raw string, opts ...SolveOption) (*model.Run, error) {
	var o solveOptions
	for _, opt := range opts {
		opt(&o)
	}

	if strings.TrimSpace(raw) == "" {
		metrics.RecordRun(metrics.StatusError)
		return nil, goerr.Wrap(ErrEmptyProblem, "cannot solve problem")
	}

	run := &model.Run{
		ID:        model.NewRunID(),
		Input:     raw,
		StartedAt: time.Now().UTC(),
	}
	ctx = logging.With(ctx, logging.From(ctx).With(RunIDKey, run.ID))

	if err := uc.execute(ctx, run, &o); err != nil {
		metrics.RecordRun(metrics.StatusError)
		return nil, err
	}

	metrics.RecordRun(string(run.Status))
	logging.From(ctx).Info("run finished",
		"status", run.Status,
		"persisted", run.Persisted,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)

	if run.Status == types.RunStatusNoGrounding && o.strictGround {
		return nil, goerr.Wrap(ErrNoGrounding, "knowledge base returned nothing", goerr.V(RunIDKey, run.ID))
	}
	return run, nil
}

// Clarify re-runs raw with the user's answers to the clarification questions appended
func (uc *PipelineUseCase) Clarify(ctx context.Context, raw string, answers []string, opts ...SolveOption) (*model.Run, error) {
	normalized := agent.Parse(raw).Text
	if normalized == "" {
		return nil, goerr.Wrap(ErrEmptyProblem, "cannot clarify problem")
	}
	return uc.Solve(ctx, agent.AppendClarifications(normalized, answers), opts...)
}

func (uc *PipelineUseCase) execute(ctx context.Context, run *model.Run, o *solveOptions) error {
	start := time.Now()
	run.Parsed = agent.Parse(run.Input)
	metrics.ObserveStage(string(progress.StageParse), start)
	progress.Report(ctx, progress.StageParse, fmt.Sprintf("topic %s, %d variable(s)", run.Parsed.Topic, len(run.Parsed.Variables)))

	recalled, chunks, err := uc.gather(ctx, run.Parsed.Text)
	if err != nil {
		return err
	}
	run.Recalled = recalled
	run.Retrieved = chunks

	if len(chunks) == 0 {
		run.Status = types.RunStatusNoGrounding
		run.FinishedAt = time.Now().UTC()
		return nil
	}

	run.Bias = agent.ExtractBias(recalled)

	run.Route = agent.Route(run.Parsed)
	metrics.RecordRoute(run.Route.RuleID)
	progress.Report(ctx, progress.StageRoute, fmt.Sprintf("%s (%s)", run.Route.SolutionStyle, run.Route.RuleID))

	start = time.Now()
	run.Solution = uc.solver.Solve(ctx, run.Parsed, chunks, run.Route, run.Bias)
	metrics.ObserveStage(string(progress.StageSolve), start)
	progress.Report(ctx, progress.StageSolve, fmt.Sprintf("%s strategy, confidence %.3f", run.Solution.StrategyUsed, run.Solution.Confidence))

	run.Verification = agent.Verify(run.Parsed, run.Solution, chunks)
	metrics.ObserveConfidence(run.Verification.Confidence)
	progress.Report(ctx, progress.StageVerify, fmt.Sprintf("confidence %.3f, %d issue(s)", run.Verification.Confidence, len(run.Verification.Issues)))

	if run.Verification.NeedsHumanReview {
		uc.suspend(ctx, run)
		return nil
	}

	run.Explanation = agent.Explain(run.Parsed, run.Solution, run.Verification, chunks)
	run.Status = types.RunStatusCompleted
	progress.Report(ctx, progress.StageExplain, fmt.Sprintf("%d step(s)", len(run.Explanation.ExplanationSteps)))

	if run.Verification.Confidence >= uc.cfg.PersistThreshold {
		if _, err := uc.memory.RecordSolve(ctx, run, o.feedback); err != nil {
			errutil.Handle(ctx, err, "failed to persist verified solve")
		} else {
			run.Persisted = true
			progress.Report(ctx, progress.StagePersist, "stored as verified solve")
		}
	}

	run.FinishedAt = time.Now().UTC()
	return nil
}

// gather runs memory recall and knowledge retrieval concurrently. A recall failure only
// loses the bias; a retrieval failure fails the run.
func (uc *PipelineUseCase) gather(ctx context.Context, text string) ([]*model.RecalledMemory, []*model.Chunk, error) {
	var (
		recalled []*model.RecalledMemory
		chunks   []*model.Chunk
	)

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		start := time.Now()
		defer metrics.ObserveStage(string(progress.StageRecall), start)

		mems, err := uc.memory.Recall(egCtx, text, 0)
		if err != nil {
			errutil.Handle(egCtx, err, "memory recall failed, continuing without bias")
			return nil
		}
		recalled = mems
		progress.Report(egCtx, progress.StageRecall, fmt.Sprintf("%d similar solve(s)", len(mems)))
		return nil
	})

	eg.Go(func() error {
		if uc.retriever == nil {
			progress.Report(egCtx, progress.StageRetrieve, "no knowledge base configured")
			return nil
		}

		start := time.Now()
		defer metrics.ObserveStage(string(progress.StageRetrieve), start)

		found, err := uc.retriever.Retrieve(egCtx, text)
		if err != nil {
			return goerr.Wrap(err, "failed to retrieve knowledge")
		}
		chunks = found
		progress.Report(egCtx, progress.StageRetrieve, fmt.Sprintf("%d chunk(s)", len(found)))
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, nil, err
	}
	if recalled == nil {
		recalled = []*model.RecalledMemory{}
	}
	if chunks == nil {
		chunks = []*model.Chunk{}
	}
	return recalled, chunks, nil
}

func (uc *PipelineUseCase) suspend(ctx context.Context, run *model.Run) {
	run.Status = types.RunStatusReviewRequired
	run.Draft = &model.CorrectionDraft{
		Question: run.Parsed.Text,
		Answer:   run.Solution.FinalAnswer,
	}
	run.FinishedAt = time.Now().UTC()
	progress.Report(ctx, progress.StageReview, "human review required")

	if uc.notifier == nil {
		return
	}

	snapshot := *run
	notifier := uc.notifier
	uc.dispatcher.Dispatch(ctx, "notify_review", func(ctx context.Context) error {
		return notifier.NotifyReview(ctx, &snapshot)
	})
}
