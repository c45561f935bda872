package agent

import (
	"fmt"
	"maps"
	"slices"

	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// ExtractBias turns recalled memories into solver hints: one hint per distinct topic and
// one warning per distinct assumption. It returns nil when nothing was recalled.
func ExtractBias(memories []*model.RecalledMemory) *model.SolverBias {
	if len(memories) == 0 {
		return nil
	}

	strategies := map[string]struct{}{}
	warnings := map[string]struct{}{}

	for _, mem := range memories {
		if mem == nil || mem.ParsedProblem == nil {
			continue
		}
		if mem.ParsedProblem.Topic != "" {
			strategies[fmt.Sprintf("Previously solved a %s problem using verified approach.", mem.ParsedProblem.Topic)] = struct{}{}
		}
		for _, a := range mem.ParsedProblem.Assumptions {
			warnings["Assume: "+a] = struct{}{}
		}
	}

	return &model.SolverBias{
		PreferredStrategies: slices.Sorted(maps.Keys(strategies)),
		Warnings:            slices.Sorted(maps.Keys(warnings)),
	}
}
