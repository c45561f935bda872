package interfaces

// Calculator evaluates a bounded arithmetic expression.
// Expressions containing characters outside "0-9 + - * / ( ) . space" are rejected.
type Calculator interface {
	Evaluate(expression string) (float64, error)
}
