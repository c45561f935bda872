package agent

import (
	"strings"

	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// Route rule identifiers recorded in RoutePlan.RuleID
const (
	RuleAlgebraNumeric        = "algebra.numeric"
	RuleAlgebraSymbolic       = "algebra.symbolic"
	RuleCalculusLimit         = "calculus.limit"
	RuleCalculusNumeric       = "calculus.numeric"
	RuleCalculusSymbolic      = "calculus.symbolic"
	RuleProbabilitySymbolic   = "probability.symbolic"
	RuleLinearAlgebraNumeric  = "linear_algebra.numeric"
	RuleLinearAlgebraSymbolic = "linear_algebra.symbolic"
	RuleUnknown               = "unknown"
)

// routeRule is one row of the routing table. Keywords empty means the rule always matches its domain.
type routeRule struct {
	ID       string
	Domain   types.Topic
	Keywords []string
	Style    types.SolutionStyle
	Tools    []types.ToolID
	Reason   string
}

// routeRules is evaluated top to bottom; the first rule for the problem's domain whose
// keywords match fires. Each domain ends with a catch-all row.
var routeRules = []routeRule{
	{
		ID:       RuleAlgebraNumeric,
		Domain:   types.TopicAlgebra,
		Keywords: []string{"approx", "value", "evaluate"},
		Style:    types.SolutionStyleNumeric,
		Tools:    []types.ToolID{types.ToolCalculator},
		Reason:   "Algebraic problem requiring numeric evaluation",
	},
	{
		ID:     RuleAlgebraSymbolic,
		Domain: types.TopicAlgebra,
		Style:  types.SolutionStyleSymbolic,
		Reason: "Algebraic equation suitable for symbolic solving",
	},
	{
		ID:       RuleCalculusLimit,
		Domain:   types.TopicCalculus,
		Keywords: []string{"limit"},
		Style:    types.SolutionStyleSymbolic,
		Reason:   "Limit evaluation using known calculus rules",
	},
	{
		ID:       RuleCalculusNumeric,
		Domain:   types.TopicCalculus,
		Keywords: []string{"approx", "value"},
		Style:    types.SolutionStyleNumeric,
		Tools:    []types.ToolID{types.ToolCalculator},
		Reason:   "Calculus problem requiring numeric approximation",
	},
	{
		ID:     RuleCalculusSymbolic,
		Domain: types.TopicCalculus,
		Style:  types.SolutionStyleSymbolic,
		Reason: "Derivative/integral solvable symbolically",
	},
	{
		ID:     RuleProbabilitySymbolic,
		Domain: types.TopicProbability,
		Style:  types.SolutionStyleSymbolic,
		Reason: "Probability problems solved using formula-based reasoning",
	},
	{
		ID:       RuleLinearAlgebraNumeric,
		Domain:   types.TopicLinearAlgebra,
		Keywords: []string{"determinant", "inverse"},
		Style:    types.SolutionStyleNumeric,
		Tools:    []types.ToolID{types.ToolCalculator},
		Reason:   "Matrix computation requires numeric calculation",
	},
	{
		ID:     RuleLinearAlgebraSymbolic,
		Domain: types.TopicLinearAlgebra,
		Style:  types.SolutionStyleSymbolic,
		Reason: "Linear algebra reasoning without heavy computation",
	},
}

var unknownRoute = routeRule{
	ID:     RuleUnknown,
	Domain: types.TopicUnknown,
	Style:  types.SolutionStyleSymbolic,
	Reason: "Unable to classify problem confidently",
}

// Route decides the solution style and allowed tools for a parsed problem.
// A nil problem routes as unknown.
func Route(p *model.ParsedProblem) *model.RoutePlan {
	if p == nil {
		return unknownRoute.plan()
	}

	text := strings.ToLower(p.Text)
	for _, rule := range routeRules {
		if rule.Domain != p.Topic {
			continue
		}
		if len(rule.Keywords) == 0 || containsAny(text, rule.Keywords...) {
			return rule.plan()
		}
	}
	return unknownRoute.plan()
}

func (r routeRule) plan() *model.RoutePlan {
	tools := make([]types.ToolID, len(r.Tools))
	copy(tools, r.Tools)
	return &model.RoutePlan{
		Domain:        r.Domain,
		SolutionStyle: r.Style,
		Tools:         tools,
		Reason:        r.Reason,
		RuleID:        r.ID,
	}
}
