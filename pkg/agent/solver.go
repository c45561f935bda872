package agent

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
	"github.com/secmon-lab/ganit/pkg/utils/logging"
)

// Sentinel answers emitted when no strategy produced a concrete answer
const (
	AnswerInsufficientInformation = "insufficient information"
	AnswerNoSymbolicSolution      = "unable to derive a symbolic solution"
	AnswerNoNumericSolution       = "unable to compute a numeric solution"
)

const (
	numericConfidence    = 0.6
	maxExpressionLength  = 256
	symbolicTraceOpening = "Using retrieved formulas and standard solution templates."
	numericTraceOpening  = "Evaluating numerically using calculator tool."
)

var (
	sinLimitPattern = regexp.MustCompile(`(?i)sin\s*\(?\s*x\s*\)?\s*/\s*x\b`)

	expressionPattern = regexp.MustCompile(`[\d(][\d+\-*/(). ]*`)
	operatorPattern   = regexp.MustCompile(`[\d)]\s*[+\-*/]\s*[\d(]`)
)

// IsCanonicalSinLimit reports whether text contains the sin(x)/x limit in any common spelling
func IsCanonicalSinLimit(text string) bool {
	return sinLimitPattern.MatchString(text)
}

// SymbolicRule is one entry of the symbolic strategy registry
type SymbolicRule struct {
	Name   string
	Domain types.Topic
	// Match receives the normalized problem text
	Match      func(text string) bool
	Answer     string
	Confidence float64
}

// DefaultSymbolicRules returns the built-in symbolic rules in evaluation order
func DefaultSymbolicRules() []SymbolicRule {
	return []SymbolicRule{
		{
			Name:       "calculus.sin_limit",
			Domain:     types.TopicCalculus,
			Match:      IsCanonicalSinLimit,
			Answer:     "The limit is 1.",
			Confidence: 0.9,
		},
		{
			Name:   "algebra.quadratic",
			Domain: types.TopicAlgebra,
			Match: func(text string) bool {
				return strings.Contains(text, "x^2") || strings.Contains(strings.ToLower(text), "quadratic")
			},
			Answer:     "Solve the quadratic equation using standard methods.",
			Confidence: 0.7,
		},
	}
}

// Solver produces a candidate answer by running competing strategies
type Solver struct {
	calculator interfaces.Calculator
	rules      []SymbolicRule
}

type SolverOption func(*Solver)

// WithCalculator sets the calculator used by the numeric strategy
func WithCalculator(calc interfaces.Calculator) SolverOption {
	return func(s *Solver) {
		s.calculator = calc
	}
}

// WithSymbolicRule appends a rule after the built-in ones
func WithSymbolicRule(rule SymbolicRule) SolverOption {
	return func(s *Solver) {
		s.rules = append(s.rules, rule)
	}
}

func NewSolver(opts ...SolverOption) *Solver {
	s := &Solver{
		rules: DefaultSymbolicRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve never fails. Missing inputs yield a zero-confidence "none" output and a
// strategy that errors or panics contributes a trace line with zero confidence.
func (s *Solver) Solve(ctx context.Context, p *model.ParsedProblem, chunks []*model.Chunk, plan *model.RoutePlan, bias *model.SolverBias) *model.SolverOutput {
	if p == nil || plan == nil {
		return &model.SolverOutput{
			FinalAnswer:       AnswerInsufficientInformation,
			Confidence:        0,
			StrategyUsed:      types.StrategyNone,
			InternalReasoning: []string{"Parsed problem or route plan is missing; no strategy attempted."},
		}
	}

	trace := []string{
		fmt.Sprintf("Route %s: %s", plan.RuleID, plan.Reason),
		fmt.Sprintf("Grounded on %d retrieved knowledge chunk(s).", len(chunks)),
	}

	if bias != nil {
		for _, hint := range bias.PreferredStrategies {
			trace = append(trace, "hint: "+hint)
		}
		for _, warning := range bias.Warnings {
			trace = append(trace, "warning: "+warning)
		}
	}

	symbolic := runStrategy(ctx, types.StrategySymbolic, func() (*model.StrategyResult, error) {
		return s.solveSymbolic(p, plan)
	})
	trace = append(trace, symbolic.Trace...)

	numeric := &model.StrategyResult{Strategy: types.StrategyNumeric}
	if plan.HasTool(types.ToolCalculator) {
		numeric = runStrategy(ctx, types.StrategyNumeric, func() (*model.StrategyResult, error) {
			return s.solveNumeric(p)
		})
		trace = append(trace, numeric.Trace...)
	}

	chosen, sentinel := symbolic, AnswerNoSymbolicSolution
	if numeric.Confidence > symbolic.Confidence {
		chosen, sentinel = numeric, AnswerNoNumericSolution
	}

	answer := chosen.Answer
	if !chosen.OK || answer == "" {
		answer = sentinel
	}
	trace = append(trace, fmt.Sprintf("Selected %s strategy (symbolic %.3f, numeric %.3f).",
		chosen.Strategy, symbolic.Confidence, numeric.Confidence))

	return &model.SolverOutput{
		FinalAnswer:       answer,
		Confidence:        model.NormalizeConfidence(chosen.Confidence),
		StrategyUsed:      chosen.Strategy,
		InternalReasoning: trace,
	}
}

// runStrategy converts an error or panic into a zero-confidence result carrying a trace line
func runStrategy(ctx context.Context, strategy types.Strategy, fn func() (*model.StrategyResult, error)) (result *model.StrategyResult) {
	failed := func(reason any) *model.StrategyResult {
		logging.From(ctx).Warn("solver strategy failed", "strategy", strategy, "reason", reason)
		return &model.StrategyResult{
			Strategy: strategy,
			Trace:    []string{fmt.Sprintf("%s strategy failed: %v", strategy, reason)},
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = failed(r)
		}
	}()

	res, err := fn()
	if err != nil {
		return failed(err)
	}
	res.Strategy = strategy
	if !res.OK {
		res.Answer = ""
		res.Confidence = 0
	}
	return res
}

func (s *Solver) solveSymbolic(p *model.ParsedProblem, plan *model.RoutePlan) (*model.StrategyResult, error) {
	result := &model.StrategyResult{
		Trace: []string{symbolicTraceOpening},
	}

	for _, rule := range s.rules {
		if rule.Domain != plan.Domain || rule.Match == nil {
			continue
		}
		if !rule.Match(p.Text) {
			continue
		}
		result.Answer = rule.Answer
		result.Confidence = rule.Confidence
		result.OK = rule.Answer != ""
		result.Trace = append(result.Trace, fmt.Sprintf("Symbolic rule %s matched.", rule.Name))
		return result, nil
	}

	result.Trace = append(result.Trace, "No symbolic rule matched.")
	return result, nil
}

func (s *Solver) solveNumeric(p *model.ParsedProblem) (*model.StrategyResult, error) {
	result := &model.StrategyResult{
		Trace: []string{numericTraceOpening},
	}

	if s.calculator == nil {
		result.Trace = append(result.Trace, "Calculator tool is not available.")
		return result, nil
	}

	expr, ok := ExtractExpression(p.Text)
	if !ok {
		result.Trace = append(result.Trace, "No arithmetic expression found in problem text.")
		return result, nil
	}

	value, err := s.calculator.Evaluate(expr)
	if err != nil {
		return nil, goerr.Wrap(err, "calculator rejected expression", goerr.V("expression", expr))
	}

	result.Answer = fmt.Sprintf("Numeric evaluation gives %s.", strconv.FormatFloat(value, 'g', -1, 64))
	result.Confidence = numericConfidence
	result.OK = true
	result.Trace = append(result.Trace, fmt.Sprintf("Evaluated %q.", expr))
	return result, nil
}

// ExtractExpression returns the first arithmetic expression in text that holds at least
// one binary operator and is no longer than the calculator accepts.
func ExtractExpression(text string) (string, bool) {
	for _, candidate := range expressionPattern.FindAllString(text, -1) {
		expr := strings.TrimRight(strings.TrimSpace(candidate), " .+-*/(")
		if expr == "" || len(expr) > maxExpressionLength {
			continue
		}
		if !operatorPattern.MatchString(expr) {
			continue
		}
		if strings.Count(expr, "(") != strings.Count(expr, ")") {
			continue
		}
		return expr, true
	}
	return "", false
}
