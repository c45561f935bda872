package recognition

import (
	"context"
	"encoding/json"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// LowConfidenceWord is the word probability below which a transcribed word is highlighted
const LowConfidenceWord = 0.75

const highlightOpen = `<span style="background-color:#FFF3A3">`

// WhisperTranscript reads the full JSON output of whisper.cpp (`whisper-cli -ojf`) that
// sits next to the audio file as `<audio>.json`. Passing the JSON file itself also works.
type WhisperTranscript struct{}

var _ interfaces.AudioTranscriber = &WhisperTranscript{}

func NewWhisperTranscript() *WhisperTranscript {
	return &WhisperTranscript{}
}

type whisperToken struct {
	Text string   `json:"text"`
	P    *float64 `json:"p"`
}

type whisperSegment struct {
	Text   string         `json:"text"`
	Tokens []whisperToken `json:"tokens"`
}

type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type transcribedWord struct {
	text  string
	probs []float64
}

func (w *transcribedWord) probability() float64 {
	if len(w.probs) == 0 {
		return lineFallbackConfidence
	}
	var sum float64
	for _, p := range w.probs {
		sum += p
	}
	return sum / float64(len(w.probs))
}

// TranscriptPath returns the whisper.cpp JSON path for an audio file
func TranscriptPath(audioPath string) string {
	if strings.EqualFold(filepath.Ext(audioPath), ".json") {
		return audioPath
	}
	return audioPath + ".json"
}

func (t *WhisperTranscript) Transcribe(ctx context.Context, audioPath string) (*model.ASRResult, error) {
	path := TranscriptPath(audioPath)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read whisper transcript", goerr.V("path", path))
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, goerr.Wrap(err, "failed to parse whisper transcript", goerr.V("path", path))
	}

	return out.toResult(), nil
}

// words regroups sub-word tokens into words. A token starting with a space opens a new
// word and control tokens such as [_BEG_] or <|endoftext|> are dropped.
func (o *whisperOutput) words() []*transcribedWord {
	var words []*transcribedWord
	for _, seg := range o.Transcription {
		if len(seg.Tokens) == 0 {
			for _, field := range strings.Fields(seg.Text) {
				words = append(words, &transcribedWord{text: field})
			}
			continue
		}

		var current *transcribedWord
		for _, tok := range seg.Tokens {
			if strings.HasPrefix(tok.Text, "[_") || strings.HasPrefix(tok.Text, "<|") {
				continue
			}
			if current == nil || strings.HasPrefix(tok.Text, " ") {
				current = &transcribedWord{}
				words = append(words, current)
			}
			current.text += tok.Text
			if tok.P != nil {
				current.probs = append(current.probs, clamp01(*tok.P))
			}
		}
	}
	return words
}

func (o *whisperOutput) toResult() *model.ASRResult {
	var raw, highlighted []string
	var sum float64
	for _, w := range o.words() {
		text := strings.TrimSpace(w.text)
		if text == "" {
			continue
		}
		p := w.probability()
		sum += p
		raw = append(raw, text)
		if p < LowConfidenceWord {
			highlighted = append(highlighted, highlightOpen+html.EscapeString(text)+"</span>")
		} else {
			highlighted = append(highlighted, html.EscapeString(text))
		}
	}

	result := &model.ASRResult{
		RawText:         strings.Join(raw, " "),
		HighlightedHTML: strings.Join(highlighted, " "),
	}
	if len(raw) > 0 {
		result.Confidence = round3(sum / float64(len(raw)))
	}
	return result
}
