package agent

import (
	"strings"

	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// reviewRequiredSteps is the only explanation given for an unverified answer
var reviewRequiredSteps = []string{
	"The solution could not be confidently verified.",
	"A human review is required before explanation.",
}

type explanationTemplate struct {
	Steps    []string
	Mistakes []string
}

var (
	calculusLimitTemplate = explanationTemplate{
		Steps: []string{
			"First, observe the given limit expression.",
			"Check whether direct substitution leads to an indeterminate form.",
			"Apply standard trigonometric limit identities if applicable.",
			"Evaluate the simplified expression.",
		},
		Mistakes: []string{
			"Directly substituting without checking if the form is indeterminate.",
			"Applying L'Hôpital's Rule when it is not required.",
			"Ignoring the domain near the point of approach.",
		},
	}

	calculusTemplate = explanationTemplate{
		Steps: []string{
			"Identify whether the problem asks for a derivative or an integral.",
			"Rewrite the expression into a form where standard rules apply.",
			"Apply the relevant differentiation or integration rules step by step.",
			"Simplify the result and check it by reversing the operation.",
		},
		Mistakes: []string{
			"Forgetting the chain rule on composite functions.",
			"Dropping the constant of integration.",
			"Mixing up signs when differentiating trigonometric functions.",
		},
	}

	topicTemplates = map[types.Topic]explanationTemplate{
		types.TopicAlgebra: {
			Steps: []string{
				"Identify the type of algebraic equation given.",
				"Rearrange the equation into a standard form.",
				"Apply the appropriate solving method.",
				"Verify the obtained solution in the original equation.",
			},
			Mistakes: []string{
				"Forgetting to check all possible solutions.",
				"Ignoring restrictions like division by zero.",
				"Missing the ± sign when taking square roots.",
			},
		},
		types.TopicProbability: {
			Steps: []string{
				"Clearly define the sample space.",
				"Count the number of favorable outcomes.",
				"Apply the relevant probability formula.",
				"Ensure the final probability lies between 0 and 1.",
			},
			Mistakes: []string{
				"Assuming events are independent without justification.",
				"Counting the same outcome more than once.",
				"Forgetting to divide by total possible outcomes.",
			},
		},
		types.TopicCalculus: calculusTemplate,
		types.TopicLinearAlgebra: {
			Steps: []string{
				"Identify the matrix or vector operation involved.",
				"Check dimensional compatibility.",
				"Apply the appropriate linear algebra formula.",
				"Verify results using determinant or substitution if applicable.",
			},
			Mistakes: []string{
				"Attempting to invert a matrix with zero determinant.",
				"Confusing matrix multiplication with element-wise multiplication.",
				"Ignoring matrix dimensions.",
			},
		},
	}

	fallbackTemplate = explanationTemplate{
		Steps: []string{
			"Understand the problem statement carefully.",
			"Apply known mathematical principles.",
			"Verify the final result logically.",
		},
		Mistakes: []string{
			"Jumping to conclusions without justification.",
			"Applying formulas without checking conditions.",
		},
	}
)

// Explain produces a student-facing explanation. An answer that needs human review
// never receives a domain explanation.
func Explain(p *model.ParsedProblem, s *model.SolverOutput, v *model.VerifierOutput, chunks []*model.Chunk) *model.Explanation {
	answer := ""
	if s != nil {
		answer = s.FinalAnswer
	}

	if v == nil || v.NeedsHumanReview {
		return &model.Explanation{
			ExplanationSteps: cloneLines(reviewRequiredSteps),
			FinalAnswer:      answer,
			CommonMistakes:   []string{},
		}
	}

	tmpl := selectTemplate(p)
	return &model.Explanation{
		ExplanationSteps: cloneLines(tmpl.Steps),
		FinalAnswer:      answer,
		CommonMistakes:   cloneLines(tmpl.Mistakes),
	}
}

func selectTemplate(p *model.ParsedProblem) explanationTemplate {
	if p == nil {
		return fallbackTemplate
	}
	if p.Topic == types.TopicCalculus && strings.Contains(strings.ToLower(p.Text), "limit") {
		return calculusLimitTemplate
	}
	if tmpl, ok := topicTemplates[p.Topic]; ok {
		return tmpl
	}
	return fallbackTemplate
}

func cloneLines(lines []string) []string {
	out := make([]string, len(lines))
	copy(out, lines)
	return out
}
