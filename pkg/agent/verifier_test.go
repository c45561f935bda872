package agent_test

import (
	"math/rand/v2"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

func TestVerifyNoConcreteAnswer(t *testing.T) {
	for _, answer := range []string{"", "Unable to solve symbolically.", agent.AnswerNoNumericSolution} {
		t.Run(answer, func(t *testing.T) {
			p := &model.ParsedProblem{Topic: types.TopicUnknown, Text: "anything"}
			out := agent.Verify(p, &model.SolverOutput{FinalAnswer: answer, Confidence: 0.9}, nil)

			gt.Value(t, out.Issues).Equal([]string{agent.IssueNoConcreteAnswer})
			gt.Value(t, out.Confidence).Equal(0.6)
			gt.Bool(t, out.IsCorrect).False()
			gt.Bool(t, out.NeedsHumanReview).True()
		})
	}
}

func TestVerifyConstraintSubstringCheck(t *testing.T) {
	p := &model.ParsedProblem{
		Topic:       types.TopicAlgebra,
		Text:        "Solve 2x = 4 with x > 0 and y<0",
		Constraints: []string{"x > 0", "y<0"},
	}

	t.Run("each unaddressed constraint costs 0.1", func(t *testing.T) {
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "x = 2", Confidence: 0.9}, nil)
		gt.Value(t, out.Issues).Equal([]string{
			"Constraint 'x > 0' not explicitly addressed in solution",
			"Constraint 'y<0' not explicitly addressed in solution",
		})
		gt.Value(t, out.Confidence).Equal(0.7)
		gt.Bool(t, out.NeedsHumanReview).True()
	})

	t.Run("literal mention satisfies the check", func(t *testing.T) {
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "x = 2 since x > 0, y<0", Confidence: 0.9}, nil)
		gt.Array(t, out.Issues).Length(0)
		gt.Value(t, out.Confidence).Equal(0.9)
		gt.Bool(t, out.NeedsHumanReview).False()
	})

	t.Run("whitespace variant does not match", func(t *testing.T) {
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "x = 2 since x>0 and y < 0", Confidence: 0.9}, nil)
		gt.Array(t, out.Issues).Length(2)
	})

	t.Run("ignored outside algebra and calculus", func(t *testing.T) {
		prob := &model.ParsedProblem{Topic: types.TopicProbability, Text: p.Text, Constraints: p.Constraints}
		out := agent.Verify(prob, &model.SolverOutput{FinalAnswer: "1/2", Confidence: 0.9}, nil)
		gt.Array(t, out.Issues).Length(0)
	})
}

func TestVerifyOneSidedLimit(t *testing.T) {
	p := &model.ParsedProblem{Topic: types.TopicCalculus, Text: "Find the limit of 1/x as x approaches 0"}

	out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "The limit does not exist.", Confidence: 0.9}, nil)
	gt.Value(t, out.Issues).Equal([]string{agent.IssueOneSidedLimits})
	gt.Value(t, out.Confidence).Equal(0.75)

	out = agent.Verify(p, &model.SolverOutput{FinalAnswer: "Each side diverges differently.", Confidence: 0.9}, nil)
	gt.Array(t, out.Issues).Length(0)
}

func TestVerifyInvalidProbability(t *testing.T) {
	p := &model.ParsedProblem{Topic: types.TopicProbability, Text: "What is the probability of rain?"}

	for _, answer := range []string{"The probability is negative.", "It is Greater Than 1"} {
		t.Run(answer, func(t *testing.T) {
			out := agent.Verify(p, &model.SolverOutput{FinalAnswer: answer, Confidence: 0.9}, nil)
			gt.Value(t, out.Issues).Equal([]string{agent.IssueInvalidProbability})
			gt.Value(t, out.Confidence).Equal(0.5)
			gt.Bool(t, out.NeedsHumanReview).True()
		})
	}
}

func TestVerifySelfChecks(t *testing.T) {
	t.Run("trig limit bonus caps at 1", func(t *testing.T) {
		p := &model.ParsedProblem{Topic: types.TopicCalculus, Text: "Find the limit of sin x / x at 0"}
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "The limit is 1.", Confidence: 0.95}, nil)
		gt.Value(t, out.Confidence).Equal(1.0)
		gt.Value(t, out.SelfCheckNotes).Equal(agent.NoteTrigLimitIdentity)
	})

	t.Run("substitution bonus", func(t *testing.T) {
		p := &model.ParsedProblem{Topic: types.TopicAlgebra, Text: "Solve x^2 = 4"}
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "x = 2 or x = -2", Confidence: 0.7}, nil)
		gt.Value(t, out.Confidence).Equal(0.75)
		gt.Value(t, out.SelfCheckNotes).Equal(agent.NoteSubstitutionCheck)
	})

	t.Run("no self check", func(t *testing.T) {
		p := &model.ParsedProblem{Topic: types.TopicLinearAlgebra, Text: "Is the matrix invertible?"}
		out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "Yes", Confidence: 0.7}, nil)
		gt.Value(t, out.SelfCheckNotes).Equal(agent.NoteNoAlternative)
		gt.Value(t, out.Confidence).Equal(0.7)
	})
}

func TestVerifyReviewBoundary(t *testing.T) {
	p := &model.ParsedProblem{Topic: types.TopicLinearAlgebra, Text: "Is the matrix invertible?"}

	out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "Yes", Confidence: 0.6}, nil)
	gt.Value(t, out.Confidence).Equal(0.6)
	gt.Bool(t, out.NeedsHumanReview).False()
	gt.Bool(t, out.IsCorrect).True()

	out = agent.Verify(p, &model.SolverOutput{FinalAnswer: "Yes", Confidence: 0.599}, nil)
	gt.Bool(t, out.NeedsHumanReview).True()
	gt.Bool(t, out.IsCorrect).True()
}

func TestVerifyClampsConfidence(t *testing.T) {
	p := &model.ParsedProblem{
		Topic:       types.TopicCalculus,
		Text:        "Find the limit of sin x / x as x approaches 0 for x > 0",
		Constraints: []string{"x > 0", "x > 0"},
	}
	out := agent.Verify(p, &model.SolverOutput{FinalAnswer: "", Confidence: 0.1}, nil)
	gt.Value(t, out.Confidence).Equal(0.0)
	gt.Bool(t, out.NeedsHumanReview).True()
}

func TestVerifyInvariants(t *testing.T) {
	texts := []string{
		"Find the limit of sin x / x as x approaches 0 for x > 0",
		"Solve x^2 = 4 where x > 0",
		"What is the probability of heads?",
		"Compute the determinant",
		"",
	}
	answers := []string{"", "x > 0", "negative", "The limit is 1.", "unable", "side"}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 500; i++ {
		p := agent.Parse(texts[rng.IntN(len(texts))])
		s := &model.SolverOutput{
			FinalAnswer: answers[rng.IntN(len(answers))],
			Confidence:  rng.Float64()*1.4 - 0.2,
		}
		out := agent.Verify(p, s, nil)

		gt.Number(t, out.Confidence).GreaterOrEqual(0)
		gt.Number(t, out.Confidence).LessOrEqual(1)
		gt.Value(t, out.NeedsHumanReview).Equal(out.Confidence < 0.6 || len(out.Issues) > 0)
		gt.Value(t, out.IsCorrect).Equal(len(out.Issues) == 0)
	}
}

func TestVerifyNilInputs(t *testing.T) {
	out := agent.Verify(nil, nil, nil)
	gt.Value(t, out.Issues).Equal([]string{agent.IssueNoConcreteAnswer})
	gt.Value(t, out.Confidence).Equal(0.0)
	gt.Bool(t, out.NeedsHumanReview).True()
}
