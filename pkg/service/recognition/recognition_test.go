package recognition_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/mock"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/ganit/pkg/domain/types"
	"github.com/secmon-lab/ganit/pkg/service/recognition"
)

// pngHeader is enough for gollem to detect image/png
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

type mockLLMClient struct {
	session *mock.SessionMock
}

func (m *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	return m.session, nil
}

func (m *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, errors.New("not supported")
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	gt.NoError(t, os.WriteFile(path, data, 0o600)).Required()
	return path
}

func newVision(t *testing.T, response string) (*recognition.Vision, *mock.SessionMock) {
	t.Helper()
	session := &mock.SessionMock{
		GenerateFunc: func(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
			return &gollem.Response{Texts: []string{response}}, nil
		},
	}
	v, err := recognition.NewVision(&mockLLMClient{session: session})
	gt.NoError(t, err).Required()
	return v, session
}

func TestVisionRun(t *testing.T) {
	img := writeFile(t, "problem.png", pngHeader)

	t.Run("averages line confidence", func(t *testing.T) {
		v, session := newVision(t, `{"handwritten": false, "lines": [
			{"text": "Solve for x:", "confidence": 0.9},
			{"text": "2x + 3 = 7", "confidence": 0.8},
			{"text": "   ", "confidence": 0.1}
		]}`)

		result, err := v.Run(context.Background(), img)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Text).Equal("Solve for x:\n2x + 3 = 7")
		gt.Value(t, result.Confidence).Equal(0.85)
		gt.Value(t, result.Type).Equal(types.OCRTypePrinted)

		calls := session.GenerateCalls()
		gt.Array(t, calls).Length(1).Required()
		gt.Array(t, calls[0].Input).Length(2)
	})

	t.Run("handwritten line without confidence", func(t *testing.T) {
		v, _ := newVision(t, `{"handwritten": true, "lines": [{"text": "x^2 = 9"}]}`)

		result, err := v.Run(context.Background(), img)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Type).Equal(types.OCRTypeHandwritten)
		gt.Value(t, result.Confidence).Equal(0.5)
	})

	t.Run("no text yields zero confidence", func(t *testing.T) {
		v, _ := newVision(t, `{"handwritten": false, "lines": []}`)

		result, err := v.Run(context.Background(), img)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Text).Equal("")
		gt.Value(t, result.Confidence).Equal(0.0)
	})

	t.Run("malformed response", func(t *testing.T) {
		v, _ := newVision(t, `not json`)
		_, err := v.Run(context.Background(), img)
		gt.Error(t, err)
	})

	t.Run("not an image", func(t *testing.T) {
		v, session := newVision(t, `{}`)
		_, err := v.Run(context.Background(), writeFile(t, "notes.txt", []byte("just some plain text")))
		gt.Error(t, err)
		gt.Array(t, session.GenerateCalls()).Length(0)
	})

	t.Run("missing file", func(t *testing.T) {
		v, _ := newVision(t, `{}`)
		_, err := v.Run(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
		gt.Error(t, err)
	})
}

func TestNewVisionRequiresClient(t *testing.T) {
	_, err := recognition.NewVision(nil)
	gt.Error(t, err)
}

const whisperJSON = `{
  "result": {"language": "en"},
  "transcription": [
    {
      "text": " What is the derivative of x squared?",
      "tokens": [
        {"text": "[_BEG_]", "p": 0.99},
        {"text": " What", "p": 0.98},
        {"text": " is", "p": 0.97},
        {"text": " the", "p": 0.99},
        {"text": " deriv", "p": 0.6},
        {"text": "ative", "p": 0.7},
        {"text": " of", "p": 0.95},
        {"text": " x", "p": 0.9},
        {"text": " squared", "p": 0.92},
        {"text": "?", "p": 0.9},
        {"text": "[_TT_150]", "p": 0.5}
      ]
    }
  ]
}`

func TestWhisperTranscript(t *testing.T) {
	dir := t.TempDir()
	audio := filepath.Join(dir, "question.wav")
	gt.NoError(t, os.WriteFile(audio+".json", []byte(whisperJSON), 0o600)).Required()

	tr := recognition.NewWhisperTranscript()

	t.Run("reads sidecar next to audio", func(t *testing.T) {
		result, err := tr.Transcribe(context.Background(), audio)
		gt.NoError(t, err).Required()
		gt.Value(t, result.RawText).Equal("What is the derivative of x squared?")
		gt.String(t, result.HighlightedHTML).Contains(`<span style="background-color:#FFF3A3">derivative</span>`)
		gt.String(t, result.HighlightedHTML).Contains("What is the")
		gt.Number(t, result.Confidence).Greater(0.85)
		gt.Number(t, result.Confidence).Less(0.95)
	})

	t.Run("accepts the JSON file itself", func(t *testing.T) {
		result, err := tr.Transcribe(context.Background(), audio+".json")
		gt.NoError(t, err).Required()
		gt.Value(t, result.RawText).Equal("What is the derivative of x squared?")
	})

	t.Run("missing transcript", func(t *testing.T) {
		_, err := tr.Transcribe(context.Background(), filepath.Join(dir, "other.wav"))
		gt.Error(t, err)
	})

	t.Run("segment without tokens falls back to text", func(t *testing.T) {
		path := writeFile(t, "plain.json", []byte(`{"transcription": [{"text": " roll two dice"}]}`))
		result, err := tr.Transcribe(context.Background(), path)
		gt.NoError(t, err).Required()
		gt.Value(t, result.RawText).Equal("roll two dice")
		gt.Value(t, result.Confidence).Equal(0.5)
		gt.String(t, result.HighlightedHTML).Contains("<span")
	})

	t.Run("escapes markup in words", func(t *testing.T) {
		path := writeFile(t, "markup.json", []byte(`{"transcription": [{"tokens": [{"text": " x", "p": 0.9}, {"text": " <", "p": 0.9}, {"text": " 3", "p": 0.9}]}]}`))
		result, err := tr.Transcribe(context.Background(), path)
		gt.NoError(t, err).Required()
		gt.Value(t, result.RawText).Equal("x < 3")
		gt.Value(t, result.HighlightedHTML).Equal("x &lt; 3")
	})
}

func TestTranscriptPath(t *testing.T) {
	gt.Value(t, recognition.TranscriptPath("a/q.wav")).Equal("a/q.wav.json")
	gt.Value(t, recognition.TranscriptPath("a/q.wav.JSON")).Equal("a/q.wav.JSON")
}
