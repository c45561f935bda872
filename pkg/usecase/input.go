package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// InputConfidenceThreshold is the recognition confidence below which extracted text
// must be confirmed by the user before solving
const InputConfidenceThreshold = 0.75

// InputUseCase turns images and audio into editable problem text
type InputUseCase struct {
	imageReader      interfaces.ImageReader
	audioTranscriber interfaces.AudioTranscriber
}

func NewInputUseCase(imageReader interfaces.ImageReader, audioTranscriber interfaces.AudioTranscriber) *InputUseCase {
	return &InputUseCase{
		imageReader:      imageReader,
		audioTranscriber: audioTranscriber,
	}
}

func (uc *InputUseCase) FromImage(ctx context.Context, path string) (*model.ExtractedInput, error) {
	if uc.imageReader == nil {
		return nil, goerr.Wrap(ErrImageReaderNotConfigured, "cannot read image", goerr.V(PathKey, path))
	}

	result, err := uc.imageReader.Run(ctx, path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read image", goerr.V(PathKey, path))
	}

	return &model.ExtractedInput{
		Text:              result.Text,
		Confidence:        result.Confidence,
		NeedsConfirmation: result.Confidence < InputConfidenceThreshold,
	}, nil
}

func (uc *InputUseCase) FromAudio(ctx context.Context, path string) (*model.ExtractedInput, error) {
	if uc.audioTranscriber == nil {
		return nil, goerr.Wrap(ErrAudioTranscriberNotConfigured, "cannot transcribe audio", goerr.V(PathKey, path))
	}

	result, err := uc.audioTranscriber.Transcribe(ctx, path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to transcribe audio", goerr.V(PathKey, path))
	}

	return &model.ExtractedInput{
		Text:              result.RawText,
		Confidence:        result.Confidence,
		NeedsConfirmation: result.Confidence < InputConfidenceThreshold,
		Highlighted:       result.HighlightedHTML,
	}, nil
}
