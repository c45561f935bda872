package config

import "github.com/m-mizutani/goerr/v2"

const (
	DefaultPersistThreshold = 0.75
	DefaultRecallThreshold  = 0.75
	DefaultRecallTopK       = 1
)

// Pipeline holds the thresholds that gate recall and persistence of verified solves
type Pipeline struct {
	// PersistThreshold is the minimum verifier confidence for a run to be stored as a verified solve
	PersistThreshold float64
	// RecallThreshold is the similarity a stored solve must strictly exceed to be recalled
	RecallThreshold float64
	RecallTopK      int
}

func DefaultPipeline() Pipeline {
	return Pipeline{
		PersistThreshold: DefaultPersistThreshold,
		RecallThreshold:  DefaultRecallThreshold,
		RecallTopK:       DefaultRecallTopK,
	}
}

func (p Pipeline) Validate() error {
	if p.PersistThreshold < 0 || p.PersistThreshold > 1 {
		return goerr.New("persist threshold must be between 0 and 1", goerr.V("persist_threshold", p.PersistThreshold))
	}
	if p.RecallThreshold < 0 || p.RecallThreshold > 1 {
		return goerr.New("recall threshold must be between 0 and 1", goerr.V("recall_threshold", p.RecallThreshold))
	}
	if p.RecallTopK < 1 {
		return goerr.New("recall top-k must be at least 1", goerr.V("recall_top_k", p.RecallTopK))
	}
	return nil
}
