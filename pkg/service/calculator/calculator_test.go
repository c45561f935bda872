package calculator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/service/calculator"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want float64
	}{
		{name: "addition", expr: "1 + 1", want: 2},
		{name: "precedence", expr: "2 + 3 * 4", want: 14},
		{name: "parentheses", expr: "(2 + 3) * 4", want: 20},
		{name: "left associative subtraction", expr: "10 - 4 - 3", want: 3},
		{name: "left associative division", expr: "100 / 10 / 5", want: 2},
		{name: "unary minus", expr: "-3 + 5", want: 2},
		{name: "nested unary", expr: "-(-(2))", want: 2},
		{name: "decimals", expr: "0.5 * 4", want: 2},
		{name: "no spaces", expr: "3*(4+5)", want: 27},
		{name: "single number", expr: " 42 ", want: 42},
	}

	calc := calculator.New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.Evaluate(tt.expr)
			gt.NoError(t, err).Required()
			gt.Value(t, got).Equal(tt.want)
		})
	}
}

func TestEvaluateRejectsUnsafeInput(t *testing.T) {
	calc := calculator.New()

	for _, expr := range []string{
		"__import__('os')",
		"x + 1",
		"1 + 1; rm -rf /",
		"2^3",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := calc.Evaluate(expr)
			gt.Error(t, err)
			gt.Bool(t, errors.Is(err, calculator.ErrUnsafeExpression)).True()
		})
	}
}

func TestEvaluateRejectsLongExpression(t *testing.T) {
	expr := strings.Repeat("1+", calculator.MaxExpressionLength) + "1"
	_, err := calculator.New().Evaluate(expr)
	gt.Bool(t, errors.Is(err, calculator.ErrUnsafeExpression)).True()
}

func TestEvaluateErrors(t *testing.T) {
	calc := calculator.New()

	t.Run("division by zero", func(t *testing.T) {
		_, err := calc.Evaluate("1 / (2 - 2)")
		gt.Bool(t, errors.Is(err, calculator.ErrDivisionByZero)).True()
	})

	t.Run("empty", func(t *testing.T) {
		_, err := calc.Evaluate("   ")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})

	t.Run("unbalanced parenthesis", func(t *testing.T) {
		_, err := calc.Evaluate("(1 + 2")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})

	t.Run("trailing operator", func(t *testing.T) {
		_, err := calc.Evaluate("1 +")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})

	t.Run("dangling close", func(t *testing.T) {
		_, err := calc.Evaluate("1 + 2)")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})

	t.Run("double operator", func(t *testing.T) {
		_, err := calc.Evaluate("2 ** 3")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})

	t.Run("malformed number", func(t *testing.T) {
		_, err := calc.Evaluate("1.2.3 + 1")
		gt.Bool(t, errors.Is(err, calculator.ErrInvalidExpression)).True()
	})
}
