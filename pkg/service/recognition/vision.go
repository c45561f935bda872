package recognition

import (
	"context"
	"encoding/json"
	"math"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/domain/types"
)

const visionSystemPrompt = `You transcribe photographed or scanned math problems.
Return JSON only, in the form:
{"handwritten": bool, "lines": [{"text": string, "confidence": number}]}
One entry per line of text, top to bottom. Keep math notation as plain text (x^2, sqrt(x), sin(x)/x).
confidence is your certainty from 0 to 1 that the line was read correctly.
Return an empty lines array when the image holds no text.`

// lineFallbackConfidence applies to lines the model returned without a confidence
const lineFallbackConfidence = 0.5

// Vision reads problem text from an image with a multimodal LLM through gollem
type Vision struct {
	client gollem.LLMClient
}

var _ interfaces.ImageReader = &Vision{}

func NewVision(client gollem.LLMClient) (*Vision, error) {
	if client == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Vision{client: client}, nil
}

type visionLine struct {
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence"`
}

type visionResponse struct {
	Handwritten bool         `json:"handwritten"`
	Lines       []visionLine `json:"lines"`
}

func (v *Vision) Run(ctx context.Context, imagePath string) (*model.OCRResult, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image file", goerr.V("path", imagePath))
	}

	img, err := gollem.NewImage(data)
	if err != nil {
		return nil, goerr.Wrap(err, "unsupported image", goerr.V("path", imagePath))
	}

	session, err := v.client.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionSystemPrompt(visionSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	resp, err := session.Generate(ctx, []gollem.Input{img, gollem.Text("Transcribe the problem in this image.")})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transcribe image", goerr.V("path", imagePath))
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty response from vision model", goerr.V("path", imagePath))
	}

	var parsed visionResponse
	if err := json.Unmarshal([]byte(strings.Join(resp.Texts, "")), &parsed); err != nil {
		return nil, goerr.Wrap(err, "failed to parse vision response", goerr.V("response", resp.Texts))
	}

	return parsed.toResult(), nil
}

// toResult joins non-empty lines and averages their confidence. No text yields
// confidence 0.
func (r *visionResponse) toResult() *model.OCRResult {
	var lines []string
	var sum float64
	for _, line := range r.Lines {
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		conf := lineFallbackConfidence
		if line.Confidence != nil {
			conf = clamp01(*line.Confidence)
		}
		lines = append(lines, text)
		sum += conf
	}

	result := &model.OCRResult{
		Text: strings.Join(lines, "\n"),
		Type: types.OCRTypePrinted,
	}
	if r.Handwritten {
		result.Type = types.OCRTypeHandwritten
	}
	if len(lines) > 0 {
		result.Confidence = round3(sum / float64(len(lines)))
	}
	return result
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
