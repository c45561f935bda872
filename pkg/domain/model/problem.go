package model

import (
	"slices"

	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// DefaultAssumption seeds every parsed problem's assumption list
const DefaultAssumption = "variables are real unless specified"

// ParsedProblem is the structured form of a raw math question.
// It is never mutated after parsing; clarified input yields a new ParsedProblem.
type ParsedProblem struct {
	Text                   string      `json:"problem_text" firestore:"problem_text"`
	Topic                  types.Topic `json:"topic" firestore:"topic"`
	Variables              []string    `json:"variables" firestore:"variables"`
	Constraints            []string    `json:"constraints" firestore:"constraints"`
	Assumptions            []string    `json:"assumptions" firestore:"assumptions"`
	NeedsClarification     bool        `json:"needs_clarification" firestore:"needs_clarification"`
	ClarificationQuestions []string    `json:"clarification_questions" firestore:"clarification_questions"`
}

// Clone returns a deep copy so that downstream records own their snapshot
func (p *ParsedProblem) Clone() *ParsedProblem {
	if p == nil {
		return nil
	}
	return &ParsedProblem{
		Text:                   p.Text,
		Topic:                  p.Topic,
		Variables:              cloneStrings(p.Variables),
		Constraints:            cloneStrings(p.Constraints),
		Assumptions:            cloneStrings(p.Assumptions),
		NeedsClarification:     p.NeedsClarification,
		ClarificationQuestions: cloneStrings(p.ClarificationQuestions),
	}
}

// cloneStrings copies s, keeping empty slices non-nil for stable JSON output
func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return slices.Clone(s)
}

// RoutePlan is the routing decision for a parsed problem
type RoutePlan struct {
	Domain        types.Topic         `json:"domain"`
	SolutionStyle types.SolutionStyle `json:"solution_style"`
	Tools         []types.ToolID      `json:"tools"`
	Reason        string              `json:"reason"`
	// RuleID names the routing rule that fired
	RuleID string `json:"rule_id"`
}

// HasTool reports whether the plan allows the given tool
func (r *RoutePlan) HasTool(id types.ToolID) bool {
	if r == nil {
		return false
	}
	return slices.Contains(r.Tools, id)
}
