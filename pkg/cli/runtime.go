package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/cli/config"
	"github.com/secmon-lab/ganit/pkg/service/recognition"
	"github.com/secmon-lab/ganit/pkg/usecase"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// runtimeConfig bundles the flag groups every pipeline command needs
type runtimeConfig struct {
	repo      config.Repository
	gemini    config.Gemini
	knowledge config.Knowledge
	slack     config.Slack
	pipeline  config.Pipeline
}

func (x *runtimeConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.repo.Flags()...)
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.knowledge.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	flags = append(flags, x.pipeline.Flags()...)
	return flags
}

// build wires the configured backends into use cases. The returned cleanup waits for
// pending notifications and closes the repository.
func (x *runtimeConfig) build(ctx context.Context) (*usecase.UseCases, func(), error) {
	pipelineCfg, err := x.pipeline.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to load pipeline configuration")
	}

	llmClient, err := x.gemini.Client(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure Gemini")
	}

	embedder, err := x.gemini.Configure(llmClient)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure embedder")
	}

	var imageReader *recognition.Vision
	if llmClient != nil {
		if imageReader, err = recognition.NewVision(llmClient); err != nil {
			return nil, nil, goerr.Wrap(err, "failed to configure image reader")
		}
	}

	retriever, err := x.knowledge.Configure(ctx, embedder)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure knowledge base")
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to configure review notifier")
	}

	repo, err := x.repo.Configure(ctx)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to initialize repository")
	}

	opts := []usecase.Option{
		usecase.WithEmbedder(embedder),
		usecase.WithPipelineConfig(pipelineCfg),
		usecase.WithAudioTranscriber(recognition.NewWhisperTranscript()),
	}
	if imageReader != nil {
		opts = append(opts, usecase.WithImageReader(imageReader))
	}
	if retriever != nil {
		opts = append(opts, usecase.WithRetriever(retriever))
	}
	if notifier != nil {
		opts = append(opts, usecase.WithNotifier(notifier))
		logging.Default().Info("Slack review notifications enabled", "slack", x.slack)
	}

	uc := usecase.New(repo, opts...)

	cleanup := func() {
		uc.Wait()
		if err := repo.Close(); err != nil {
			logging.Default().Error("failed to close repository", "error", err.Error())
		}
	}

	logging.Default().Debug("Runtime configured",
		"repository", x.repo,
		"knowledge", x.knowledge,
		"pipeline", pipelineCfg,
	)
	return uc, cleanup, nil
}
