package types

// SolutionStyle tells the solver whether symbolic reasoning or numeric computation is preferred
type SolutionStyle string

const (
	SolutionStyleSymbolic SolutionStyle = "symbolic"
	SolutionStyleNumeric  SolutionStyle = "numeric"
)

func (s SolutionStyle) String() string {
	return string(s)
}

// Strategy identifies which solver strategy produced an answer
type Strategy string

const (
	StrategySymbolic Strategy = "symbolic"
	StrategyNumeric  Strategy = "numeric"
	// StrategyNone is used only when required solver inputs are missing
	StrategyNone Strategy = "none"
)

func (s Strategy) String() string {
	return string(s)
}

// ToolID identifies an external tool a route plan allows the solver to use
type ToolID string

const (
	ToolCalculator ToolID = "calculator"
)

func (t ToolID) String() string {
	return string(t)
}
