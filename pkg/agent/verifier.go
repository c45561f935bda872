package agent

import (
	"fmt"
	"math"
	"strings"

	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// Verifier findings and self-check notes
const (
	IssueNoConcreteAnswer   = "Solver did not produce a concrete answer"
	IssueOneSidedLimits     = "Left-hand and right-hand limits not discussed"
	IssueInvalidProbability = "Invalid probability value"

	NoteTrigLimitIdentity = "Verified using standard trigonometric limit identity"
	NoteSubstitutionCheck = "Checked by substituting solution back into original equation"
	NoteNoAlternative     = "No alternative method applied"
)

const (
	penaltyNoAnswer           = 0.3
	penaltyUnaddressed        = 0.1
	penaltyOneSidedLimit      = 0.15
	penaltyInvalidProbability = 0.4
	bonusTrigLimit            = 0.1
	bonusSubstitution         = 0.05
)

// Verify scores a solver answer against domain sanity checks. Checks run in a fixed
// order on a running confidence, so later checks see earlier penalties. Verify is pure;
// nil inputs are treated as empty values.
func Verify(p *model.ParsedProblem, s *model.SolverOutput, chunks []*model.Chunk) *model.VerifierOutput {
	if p == nil {
		p = &model.ParsedProblem{Topic: types.TopicUnknown}
	}
	if s == nil {
		s = &model.SolverOutput{}
	}

	var (
		issues     = []string{}
		confidence = s.Confidence
		answer     = s.FinalAnswer
		domain     = p.Topic
		text       = strings.ToLower(p.Text)
	)

	if answer == "" || strings.Contains(strings.ToLower(answer), "unable") {
		issues = append(issues, IssueNoConcreteAnswer)
		confidence -= penaltyNoAnswer
	}

	// Constraints are matched literally against the answer text.
	if domain == types.TopicAlgebra || domain == types.TopicCalculus {
		for _, c := range p.Constraints {
			if !strings.Contains(answer, c) {
				issues = append(issues, fmt.Sprintf("Constraint '%s' not explicitly addressed in solution", c))
				confidence -= penaltyUnaddressed
			}
		}
	}

	if domain == types.TopicCalculus && strings.Contains(text, "limit") &&
		strings.Contains(text, "approaches") && !strings.Contains(answer, "side") {
		issues = append(issues, IssueOneSidedLimits)
		confidence -= penaltyOneSidedLimit
	}

	if domain == types.TopicProbability {
		lowered := strings.ToLower(answer)
		if strings.Contains(lowered, "greater than 1") || strings.Contains(lowered, "negative") {
			issues = append(issues, IssueInvalidProbability)
			confidence -= penaltyInvalidProbability
		}
	}

	notes := NoteNoAlternative
	switch {
	case domain == types.TopicCalculus && IsCanonicalSinLimit(p.Text):
		notes = NoteTrigLimitIdentity
		confidence = math.Min(confidence+bonusTrigLimit, 1.0)
	case domain == types.TopicAlgebra && strings.Contains(text, "^2"):
		notes = NoteSubstitutionCheck
		confidence = math.Min(confidence+bonusSubstitution, 1.0)
	}

	confidence = model.NormalizeConfidence(confidence)

	return &model.VerifierOutput{
		IsCorrect:        len(issues) == 0,
		Confidence:       confidence,
		Issues:           issues,
		NeedsHumanReview: model.NeedsReview(confidence, issues),
		SelfCheckNotes:   notes,
	}
}
