package agent

import (
	"regexp"
	"slices"
	"strings"

	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

const (
	questionWhatToFind = "What exactly needs to be found?"
	questionRealDomain = "Should variables be assumed real numbers?"

	clarificationSeparator = " | Clarifications: "
)

// topicRule maps a topic to the keywords that select it
type topicRule struct {
	Topic    types.Topic
	Keywords []string
}

// topicRules is evaluated in order; the first topic with a keyword hit wins.
// A text mentioning both "solve" and "matrix" is therefore algebra.
var topicRules = []topicRule{
	{Topic: types.TopicAlgebra, Keywords: []string{"solve", "equation", "root", "polynomial"}},
	{Topic: types.TopicProbability, Keywords: []string{"probability", "chance", "random", "dice", "coin"}},
	{Topic: types.TopicCalculus, Keywords: []string{"limit", "derivative", "integral", "differentiate"}},
	{Topic: types.TopicLinearAlgebra, Keywords: []string{"matrix", "determinant", "vector", "eigen"}},
}

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	variablePattern   = regexp.MustCompile(`\b[a-z]\b`)
	// single-variable sign constraint such as "x > 0" or "y≤0"
	constraintPattern = regexp.MustCompile(`[a-z]\s*(?:>|<|≥|≤)\s*0`)
)

// Parse normalizes raw problem text into a ParsedProblem. It accepts any string.
func Parse(raw string) *model.ParsedProblem {
	text := normalizeText(raw)
	variables := extractVariables(text)
	questions := detectAmbiguity(text, variables)

	return &model.ParsedProblem{
		Text:                   text,
		Topic:                  InferTopic(text),
		Variables:              variables,
		Constraints:            extractConstraints(text),
		Assumptions:            []string{model.DefaultAssumption},
		NeedsClarification:     len(questions) > 0,
		ClarificationQuestions: questions,
	}
}

// AppendClarifications builds the text to re-parse after the user answered clarification questions.
// The original ParsedProblem is left untouched; parsing the result yields a new one.
func AppendClarifications(text string, answers []string) string {
	var filled []string
	for _, a := range answers {
		if a = strings.TrimSpace(a); a != "" {
			filled = append(filled, a)
		}
	}
	if len(filled) == 0 {
		return text
	}
	return text + clarificationSeparator + strings.Join(filled, "; ")
}

// InferTopic classifies text by the first matching topic rule
func InferTopic(text string) types.Topic {
	lowered := strings.ToLower(text)
	for _, rule := range topicRules {
		if containsAny(lowered, rule.Keywords...) {
			return rule.Topic
		}
	}
	return types.TopicUnknown
}

func normalizeText(raw string) string {
	return whitespacePattern.ReplaceAllString(strings.TrimSpace(raw), " ")
}

func extractVariables(text string) []string {
	matches := variablePattern.FindAllString(text, -1)
	slices.Sort(matches)
	variables := slices.Compact(matches)
	if variables == nil {
		return []string{}
	}
	return variables
}

func extractConstraints(text string) []string {
	matches := constraintPattern.FindAllString(text, -1)
	if matches == nil {
		return []string{}
	}
	return matches
}

func detectAmbiguity(text string, variables []string) []string {
	lowered := strings.ToLower(text)
	questions := []string{}

	if strings.Contains(lowered, "find") && !strings.Contains(text, "?") {
		questions = append(questions, questionWhatToFind)
	}
	if len(variables) > 0 && !strings.Contains(lowered, "real") {
		questions = append(questions, questionRealDomain)
	}
	return questions
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
