package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SolveRecordID is a UUID-based identifier for SolveRecord
type SolveRecordID string

// NewSolveRecordID generates a new UUID v4 SolveRecordID
func NewSolveRecordID() SolveRecordID {
	return SolveRecordID(uuid.New().String())
}

// CorrectionID is a UUID-based identifier for Correction
type CorrectionID string

// NewCorrectionID generates a new UUID v4 CorrectionID
func NewCorrectionID() CorrectionID {
	return CorrectionID(uuid.New().String())
}

// SolveRecord is a persisted verified solve. Records are append-only:
// once written they are never updated or deleted.
type SolveRecord struct {
	ID                 SolveRecordID  `json:"id"`
	OriginalInput      string         `json:"original_input"`
	ParsedProblem      *ParsedProblem `json:"parsed_problem"`
	RetrievedContext   []*Chunk       `json:"retrieved_context"`
	FinalAnswer        string         `json:"final_answer"`
	VerifierConfidence float64        `json:"verifier_confidence"`
	UserFeedback       *string        `json:"user_feedback"`
	// Embedding of OriginalInput, used for similarity recall
	Embedding []float32 `json:"embedding,omitempty"`
	// Timestamp is assigned by the repository at write time (UTC)
	Timestamp time.Time `json:"timestamp"`
}

// Clone returns a deep copy of the record
func (r *SolveRecord) Clone() *SolveRecord {
	if r == nil {
		return nil
	}
	copied := *r
	copied.ParsedProblem = r.ParsedProblem.Clone()
	if r.RetrievedContext != nil {
		copied.RetrievedContext = make([]*Chunk, len(r.RetrievedContext))
		for i, c := range r.RetrievedContext {
			if c != nil {
				chunk := *c
				copied.RetrievedContext[i] = &chunk
			}
		}
	}
	if r.UserFeedback != nil {
		feedback := *r.UserFeedback
		copied.UserFeedback = &feedback
	}
	if r.Embedding != nil {
		copied.Embedding = make([]float32, len(r.Embedding))
		copy(copied.Embedding, r.Embedding)
	}
	return &copied
}

// Correction is a human-approved correction of an AI answer (HITL signal).
// Only approved corrections are ever persisted.
type Correction struct {
	ID                     CorrectionID `json:"id"`
	OriginalQuestion       string       `json:"original_question"`
	AIAnswer               string       `json:"ai_answer"`
	HumanCorrectedQuestion string       `json:"human_corrected_question"`
	HumanCorrectedAnswer   string       `json:"human_corrected_answer"`
	Comment                string       `json:"comment"`
	Approved               bool         `json:"approved"`
	Timestamp              time.Time    `json:"timestamp"`
}

// UnmarshalJSON accepts timestamps without a zone offset (as written by older logs) as UTC
func (r *SolveRecord) UnmarshalJSON(data []byte) error {
	type plain SolveRecord
	aux := struct {
		*plain
		Timestamp logTime `json:"timestamp"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.Timestamp = time.Time(aux.Timestamp)
	return nil
}

// UnmarshalJSON accepts timestamps without a zone offset (as written by older logs) as UTC
func (c *Correction) UnmarshalJSON(data []byte) error {
	type plain Correction
	aux := struct {
		*plain
		Timestamp logTime `json:"timestamp"`
	}{plain: (*plain)(c)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	c.Timestamp = time.Time(aux.Timestamp)
	return nil
}

// naiveTimeLayouts are ISO-8601 forms without an offset, read as UTC
var naiveTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// logTime decodes RFC 3339 timestamps and offset-less ISO-8601 timestamps
type logTime time.Time

func (t *logTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = logTime(time.Time{})
		return nil
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		*t = logTime(parsed)
		return nil
	}
	for _, layout := range naiveTimeLayouts {
		if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			*t = logTime(parsed)
			return nil
		}
	}
	return &time.ParseError{Layout: time.RFC3339Nano, Value: s, Message: ": unsupported timestamp format"}
}

// RecalledMemory is a past verified solve similar to the current question
type RecalledMemory struct {
	Similarity    float64        `json:"similarity"`
	FinalAnswer   string         `json:"final_answer"`
	ParsedProblem *ParsedProblem `json:"parsed_problem"`
}

// SolverBias holds hints derived from recalled memories.
// Both lists are de-duplicated and sorted.
type SolverBias struct {
	PreferredStrategies []string `json:"preferred_strategies"`
	Warnings            []string `json:"warnings"`
}
