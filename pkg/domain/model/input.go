package model

import "github.com/secmon-lab/ganit/pkg/domain/types"

// OCRResult is the text recognized from an image of a problem
type OCRResult struct {
	Text       string        `json:"text"`
	Confidence float64       `json:"confidence"`
	Type       types.OCRType `json:"ocr_type"`
}

// ASRResult is the transcription of a spoken problem.
// HighlightedHTML marks low-confidence words for the user to check.
type ASRResult struct {
	RawText         string  `json:"raw_text"`
	HighlightedHTML string  `json:"highlighted_html"`
	Confidence      float64 `json:"confidence"`
}

// ExtractedInput is raw problem text recovered from a non-text input, pending user edit
type ExtractedInput struct {
	Text              string  `json:"text"`
	Confidence        float64 `json:"confidence"`
	NeedsConfirmation bool    `json:"needs_confirmation"`
	// Highlighted is set only for audio input
	Highlighted string `json:"highlighted,omitempty"`
}
