package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	domainConfig "github.com/secmon-lab/ganit/pkg/domain/model/config"
	"github.com/urfave/cli/v3"
)

// Pipeline holds the path of the optional TOML file with pipeline thresholds
type Pipeline struct {
	path string
}

// PipelineFile is the TOML layout of the pipeline configuration. Missing keys keep defaults.
type PipelineFile struct {
	PersistThreshold *float64 `toml:"persist_threshold"`
	RecallThreshold  *float64 `toml:"recall_threshold"`
	RecallTopK       *int     `toml:"recall_top_k"`
}

func (x *Pipeline) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to pipeline TOML configuration",
			Category:    "Pipeline",
			Sources:     cli.EnvVars("GANIT_CONFIG"),
			Destination: &x.path,
		},
	}
}

func (x Pipeline) LogValue() slog.Value {
	return slog.GroupValue(slog.String("path", x.path))
}

// Configure returns the pipeline thresholds, defaults when no file is given
func (x *Pipeline) Configure() (domainConfig.Pipeline, error) {
	if x.path == "" {
		return domainConfig.DefaultPipeline(), nil
	}
	return LoadPipelineConfiguration(x.path)
}

// LoadPipelineConfiguration loads pipeline thresholds from a TOML file
func LoadPipelineConfiguration(path string) (domainConfig.Pipeline, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return domainConfig.Pipeline{}, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file PipelineFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return domainConfig.Pipeline{}, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}

	cfg := file.ToDomain()
	if err := cfg.Validate(); err != nil {
		return domainConfig.Pipeline{}, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}

	return cfg, nil
}

// ToDomain applies the file values on top of the defaults
func (f *PipelineFile) ToDomain() domainConfig.Pipeline {
	cfg := domainConfig.DefaultPipeline()
	if f.PersistThreshold != nil {
		cfg.PersistThreshold = *f.PersistThreshold
	}
	if f.RecallThreshold != nil {
		cfg.RecallThreshold = *f.RecallThreshold
	}
	if f.RecallTopK != nil {
		cfg.RecallTopK = *f.RecallTopK
	}
	return cfg
}
