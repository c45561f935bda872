package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// ErrEmptyProblem is returned when the raw problem text is blank
	ErrEmptyProblem = errors.New("problem text is empty")

	// ErrNoGrounding is returned by strict runs when the knowledge base has nothing relevant
	ErrNoGrounding = errors.New("no grounding available")

	// ErrCorrectionNotApproved is returned when a correction is submitted without approval
	ErrCorrectionNotApproved = errors.New("correction is not approved")

	ErrImageReaderNotConfigured      = errors.New("image reader is not configured")
	ErrAudioTranscriberNotConfigured = errors.New("audio transcriber is not configured")
)

// Context keys for error values
const (
	RunIDKey = "run_id"
	PathKey  = "path"
)
