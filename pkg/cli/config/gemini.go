package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/service/embedding"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Gemini holds configuration for the Gemini embedding client
type Gemini struct {
	projectID string
	location  string
}

// Flags returns CLI flags for Gemini configuration
func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini embeddings (hashing embedder if empty)",
			Category:    "Embedding",
			Sources:     cli.EnvVars("GANIT_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini API",
			Category:    "Embedding",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GANIT_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

// LogAttrs returns log attributes for the Gemini configuration
func (g *Gemini) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	}
}

// Client returns the Gemini LLM client, or nil when no project is configured
func (g *Gemini) Client(ctx context.Context) (gollem.LLMClient, error) {
	if g.projectID == "" {
		return nil, nil
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client")
	}
	return client, nil
}

// Configure returns the embedder used for memory recall and knowledge retrieval.
// Without a client the offline hashing embedder is used.
func (g *Gemini) Configure(client gollem.LLMClient) (interfaces.Embedder, error) {
	if client == nil {
		logging.Default().Info("Gemini project not configured, using hashing embedder")
		return embedding.NewHashing(), nil
	}

	embedder, err := embedding.NewLLM(client)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM embedder")
	}

	logging.Default().Info("Using Gemini embedder", "project_id", g.projectID, "location", g.location)
	return embedder, nil
}
