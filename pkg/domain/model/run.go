package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

// RunID is a UUID-based identifier for a pipeline run
type RunID string

// NewRunID generates a new UUID v4 RunID
func NewRunID() RunID {
	return RunID(uuid.New().String())
}

// CorrectionDraft is the pre-filled correction form shown when review is required
type CorrectionDraft struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Run is the request-scoped state of one pipeline execution.
// It is owned by the caller that started the run and discarded after use.
type Run struct {
	ID     RunID           `json:"id"`
	Input  string          `json:"input"`
	Status types.RunStatus `json:"status"`

	Parsed       *ParsedProblem    `json:"parsed_problem"`
	Retrieved    []*Chunk          `json:"retrieved_chunks"`
	Recalled     []*RecalledMemory `json:"recalled_memories"`
	Bias         *SolverBias       `json:"bias,omitempty"`
	Route        *RoutePlan        `json:"route_plan,omitempty"`
	Solution     *SolverOutput     `json:"solution,omitempty"`
	Verification *VerifierOutput   `json:"verification,omitempty"`
	Explanation  *Explanation      `json:"explanation,omitempty"`
	Draft        *CorrectionDraft  `json:"correction_draft,omitempty"`

	// Persisted is true when the run was stored as a verified solve
	Persisted bool `json:"persisted"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
