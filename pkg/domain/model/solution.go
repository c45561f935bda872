package model

import (
	"math"

	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// ReviewConfidenceThreshold is the verifier confidence below which a human must review the answer
const ReviewConfidenceThreshold = 0.6

// SolverOutput is the candidate answer produced by the solver
type SolverOutput struct {
	FinalAnswer       string         `json:"final_answer"`
	Confidence        float64        `json:"confidence"`
	StrategyUsed      types.Strategy `json:"strategy_used"`
	InternalReasoning []string       `json:"internal_reasoning"`
}

// StrategyResult is the outcome of a single solver strategy attempt.
// OK is false when the strategy produced no answer; Confidence is then zero.
type StrategyResult struct {
	Strategy   types.Strategy
	Answer     string
	Confidence float64
	Trace      []string
	OK         bool
}

// VerifierOutput is the verification verdict on a SolverOutput
type VerifierOutput struct {
	IsCorrect        bool     `json:"is_correct"`
	Confidence       float64  `json:"confidence"`
	Issues           []string `json:"issues"`
	NeedsHumanReview bool     `json:"needs_human_review"`
	SelfCheckNotes   string   `json:"self_check_notes"`
}

// NeedsReview applies the review rule to a confidence and an issue list
func NeedsReview(confidence float64, issues []string) bool {
	return confidence < ReviewConfidenceThreshold || len(issues) > 0
}

// Explanation is the student-facing explanation of a verified answer
type Explanation struct {
	ExplanationSteps []string `json:"explanation_steps"`
	FinalAnswer      string   `json:"final_answer"`
	CommonMistakes   []string `json:"common_mistakes"`
}

// NormalizeConfidence clamps v into [0, 1] and rounds it to 3 decimals
func NormalizeConfidence(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*1000) / 1000
}
