package cli

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/model"
)

func TestGetIndexConfig(t *testing.T) {
	t.Run("default collection", func(t *testing.T) {
		cfg := getIndexConfig("")
		gt.Array(t, cfg.Collections).Length(1).Required()
		gt.Value(t, cfg.Collections[0].Name).Equal("solves")

		gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()
		fields := cfg.Collections[0].Indexes[0].Fields
		gt.Array(t, fields).Length(1).Required()
		gt.Value(t, fields[0].Path).Equal("Embedding")
		gt.Value(t, fields[0].Vector).NotNil()
		gt.Value(t, fields[0].Vector.Dimension).Equal(model.EmbeddingDimension)
	})

	t.Run("prefixed collection", func(t *testing.T) {
		cfg := getIndexConfig("staging")
		gt.Value(t, cfg.Collections[0].Name).Equal("staging_solves")
	})
}
