package extraction

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/soocke/score-ocr-go/domain/region"
)

// Recognizer is the OCR collaborator: image in, text out, may fail.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) (string, error)
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(ctx context.Context, img image.Image) (string, error)

func (f RecognizerFunc) Recognize(ctx context.Context, img image.Image) (string, error) {
	return f(ctx, img)
}

// Extractor runs one batch: crop, classify and recognize every region in order.
type Extractor struct {
	recognizer Recognizer
	logger     *slog.Logger
}

func NewExtractor(recognizer Recognizer, logger *slog.Logger) *Extractor {
	return &Extractor{recognizer: recognizer, logger: logger}
}

// Extract processes one region. It never returns an error: failures are
// encoded in the Result status.
func (e *Extractor) Extract(ctx context.Context, frame image.Image, reg region.Region) Result {
	res := Result{RegionID: reg.ID}
	if reg.ZeroArea() {
		res.Status = StatusEmptyRegion
		return res
	}
	crop, _, ok := CropRegion(frame, reg.Rect())
	if !ok {
		res.Status = StatusEmptyRegion
		return res
	}
	text, err := e.recognize(ctx, crop)
	if err != nil {
		res.Status = StatusRecognitionError
		res.Err = err
		return res
	}
	res.Status = StatusOK
	res.Text = strings.TrimSpace(text)
	return res
}

// ExtractAll processes regions sequentially in the given order and calls emit
// after each one. A failing region never stops the batch.
func (e *Extractor) ExtractAll(ctx context.Context, frame image.Image, regions []region.Region, emit func(Result)) []Result {
	out := make([]Result, 0, len(regions))
	for _, reg := range regions {
		res := e.Extract(ctx, frame, reg)
		if res.Status == StatusRecognitionError && e.logger != nil {
			e.logger.Warn("recognition failed", "region", reg.ID, "error", res.Err)
		}
		if emit != nil {
			emit(res)
		}
		out = append(out, res)
	}
	return out
}

func (e *Extractor) recognize(ctx context.Context, img image.Image) (text string, err error) {
	if e.recognizer == nil {
		return "", fmt.Errorf("no recognizer configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("recognizer panic: %v", r)
		}
	}()
	return e.recognizer.Recognize(ctx, img)
}
