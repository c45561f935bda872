package types

import "fmt"

// RunStatus is the terminal state of a single pipeline run
type RunStatus string

const (
	// RunStatusCompleted means the answer was verified and explained
	RunStatusCompleted RunStatus = "completed"
	// RunStatusReviewRequired means automatic output was suspended for human review
	RunStatusReviewRequired RunStatus = "review_required"
	// RunStatusNoGrounding means the knowledge retriever returned nothing
	RunStatusNoGrounding RunStatus = "no_grounding"
)

// AllRunStatuses returns all valid run statuses
func AllRunStatuses() []RunStatus {
	return []RunStatus{
		RunStatusCompleted,
		RunStatusReviewRequired,
		RunStatusNoGrounding,
	}
}

// IsValid checks if the run status is valid
func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusCompleted, RunStatusReviewRequired, RunStatusNoGrounding:
		return true
	default:
		return false
	}
}

func (s RunStatus) String() string {
	return string(s)
}

// ParseRunStatus parses a string into a RunStatus
func ParseRunStatus(s string) (RunStatus, error) {
	status := RunStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid run status: %s", s)
	}
	return status, nil
}

// OCRType distinguishes printed from handwritten text recognition
type OCRType string

const (
	OCRTypePrinted     OCRType = "printed"
	OCRTypeHandwritten OCRType = "handwritten"
)
