package usecase

import (
	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model/config"
	"github.com/secmon-lab/ganit/pkg/service/embedding"
	"github.com/secmon-lab/ganit/pkg/utils/async"
)

type UseCases struct {
	repo             interfaces.Repository
	retriever        interfaces.KnowledgeRetriever
	embedder         interfaces.Embedder
	notifier         interfaces.ReviewNotifier
	imageReader      interfaces.ImageReader
	audioTranscriber interfaces.AudioTranscriber
	pipelineConfig   config.Pipeline
	dispatcher       *async.Dispatcher
	solverOpts       []agent.SolverOption

	Pipeline *PipelineUseCase
	Memory   *MemoryUseCase
	Review   *ReviewUseCase
	Input    *InputUseCase
}

type Option func(*UseCases)

// WithRetriever sets the knowledge retriever. Without one every run ends as no_grounding.
func WithRetriever(r interfaces.KnowledgeRetriever) Option {
	return func(uc *UseCases) {
		uc.retriever = r
	}
}

// WithEmbedder sets the embedder used for memory recall. Defaults to the hashing embedder.
func WithEmbedder(e interfaces.Embedder) Option {
	return func(uc *UseCases) {
		uc.embedder = e
	}
}

func WithCalculator(calc interfaces.Calculator) Option {
	return func(uc *UseCases) {
		uc.solverOpts = append(uc.solverOpts, agent.WithCalculator(calc))
	}
}

func WithSolverOptions(opts ...agent.SolverOption) Option {
	return func(uc *UseCases) {
		uc.solverOpts = append(uc.solverOpts, opts...)
	}
}

func WithNotifier(n interfaces.ReviewNotifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

func WithImageReader(r interfaces.ImageReader) Option {
	return func(uc *UseCases) {
		uc.imageReader = r
	}
}

func WithAudioTranscriber(t interfaces.AudioTranscriber) Option {
	return func(uc *UseCases) {
		uc.audioTranscriber = t
	}
}

func WithPipelineConfig(cfg config.Pipeline) Option {
	return func(uc *UseCases) {
		uc.pipelineConfig = cfg
	}
}

// WithDispatcher sets the dispatcher that runs review notifications in the background
func WithDispatcher(d *async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatcher = d
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:           repo,
		pipelineConfig: config.DefaultPipeline(),
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.embedder == nil {
		uc.embedder = embedding.NewHashing()
	}
	if uc.dispatcher == nil {
		uc.dispatcher = async.NewDispatcher()
	}

	uc.Memory = NewMemoryUseCase(repo, uc.embedder, uc.pipelineConfig)
	uc.Review = NewReviewUseCase(repo)
	uc.Input = NewInputUseCase(uc.imageReader, uc.audioTranscriber)
	uc.Pipeline = NewPipelineUseCase(uc.Memory, uc.retriever, agent.NewSolver(uc.solverOpts...), uc.notifier, uc.dispatcher, uc.pipelineConfig)

	return uc
}

// Wait blocks until background work started by the use cases has finished
func (uc *UseCases) Wait() {
	uc.dispatcher.Wait()
}
