package agent_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

func TestRoute(t *testing.T) {
	tests := []struct {
		name     string
		topic    types.Topic
		text     string
		ruleID   string
		style    types.SolutionStyle
		hasCalcu bool
	}{
		{name: "algebra evaluate", topic: types.TopicAlgebra, text: "Evaluate 3 * (4 + 5)", ruleID: agent.RuleAlgebraNumeric, style: types.SolutionStyleNumeric, hasCalcu: true},
		{name: "algebra approx", topic: types.TopicAlgebra, text: "Approximate the root", ruleID: agent.RuleAlgebraNumeric, style: types.SolutionStyleNumeric, hasCalcu: true},
		{name: "algebra symbolic", topic: types.TopicAlgebra, text: "Solve x^2 = 4", ruleID: agent.RuleAlgebraSymbolic, style: types.SolutionStyleSymbolic},
		{name: "calculus limit wins over value", topic: types.TopicCalculus, text: "Find the limit value", ruleID: agent.RuleCalculusLimit, style: types.SolutionStyleSymbolic},
		{name: "calculus numeric", topic: types.TopicCalculus, text: "Approximate the integral", ruleID: agent.RuleCalculusNumeric, style: types.SolutionStyleNumeric, hasCalcu: true},
		{name: "calculus symbolic default", topic: types.TopicCalculus, text: "Differentiate sin x", ruleID: agent.RuleCalculusSymbolic, style: types.SolutionStyleSymbolic},
		{name: "probability always symbolic", topic: types.TopicProbability, text: "Evaluate the chance value", ruleID: agent.RuleProbabilitySymbolic, style: types.SolutionStyleSymbolic},
		{name: "linear algebra determinant", topic: types.TopicLinearAlgebra, text: "Compute the determinant", ruleID: agent.RuleLinearAlgebraNumeric, style: types.SolutionStyleNumeric, hasCalcu: true},
		{name: "linear algebra inverse", topic: types.TopicLinearAlgebra, text: "Find the INVERSE matrix", ruleID: agent.RuleLinearAlgebraNumeric, style: types.SolutionStyleNumeric, hasCalcu: true},
		{name: "linear algebra symbolic", topic: types.TopicLinearAlgebra, text: "Are these vectors independent", ruleID: agent.RuleLinearAlgebraSymbolic, style: types.SolutionStyleSymbolic},
		{name: "unknown", topic: types.TopicUnknown, text: "Evaluate this", ruleID: agent.RuleUnknown, style: types.SolutionStyleSymbolic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := agent.Route(&model.ParsedProblem{Topic: tt.topic, Text: tt.text})

			gt.Value(t, plan.RuleID).Equal(tt.ruleID)
			gt.Value(t, plan.Domain).Equal(tt.topic)
			gt.Value(t, plan.SolutionStyle).Equal(tt.style)
			gt.Value(t, plan.HasTool(types.ToolCalculator)).Equal(tt.hasCalcu)
			gt.String(t, plan.Reason).NotEqual("")
			if !tt.hasCalcu {
				gt.Array(t, plan.Tools).Length(0)
			}
		})
	}
}

func TestRouteNilProblem(t *testing.T) {
	plan := agent.Route(nil)
	gt.Value(t, plan.RuleID).Equal(agent.RuleUnknown)
	gt.Value(t, plan.Domain).Equal(types.TopicUnknown)
	gt.Value(t, plan.Reason).Equal("Unable to classify problem confidently")
}

func TestRoutePlansAreIndependent(t *testing.T) {
	p := &model.ParsedProblem{Topic: types.TopicAlgebra, Text: "Evaluate 1 + 1"}
	first := agent.Route(p)
	first.Tools[0] = "tampered"

	second := agent.Route(p)
	gt.Bool(t, second.HasTool(types.ToolCalculator)).True()
}
