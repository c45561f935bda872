package interfaces

import (
	"context"

	"github.com/secmon-lab/ganit/pkg/domain/model"
)

// ImageReader recognizes problem text from an image file
type ImageReader interface {
	Run(ctx context.Context, imagePath string) (*model.OCRResult, error)
}

// AudioTranscriber transcribes a spoken problem from an audio file
type AudioTranscriber interface {
	Transcribe(ctx context.Context, audioPath string) (*model.ASRResult, error)
}
