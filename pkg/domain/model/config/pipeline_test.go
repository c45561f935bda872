package config_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/model/config"
)

func TestPipelineValidate(t *testing.T) {
	gt.NoError(t, config.DefaultPipeline().Validate())

	testCases := []struct {
		name   string
		modify func(p *config.Pipeline)
	}{
		{"negative persist threshold", func(p *config.Pipeline) { p.PersistThreshold = -0.1 }},
		{"persist threshold above one", func(p *config.Pipeline) { p.PersistThreshold = 1.5 }},
		{"recall threshold above one", func(p *config.Pipeline) { p.RecallThreshold = 2 }},
		{"zero top-k", func(p *config.Pipeline) { p.RecallTopK = 0 }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := config.DefaultPipeline()
			tc.modify(&p)
			gt.Error(t, p.Validate())
		})
	}
}

func TestDefaultPipeline(t *testing.T) {
	p := config.DefaultPipeline()
	gt.Value(t, p.PersistThreshold).Equal(0.75)
	gt.Value(t, p.RecallThreshold).Equal(0.75)
	gt.Value(t, p.RecallTopK).Equal(1)
}
