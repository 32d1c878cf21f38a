package extraction

import (
	"context"
	"errors"
	"image"
	"image/color"
	"log/slog"
	"testing"

	"github.com/soocke/score-ocr-go/domain/region"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// stubRecognizer returns per-call results keyed by crop width and counts calls.
type stubRecognizer struct {
	calls  int
	sizes  []image.Point
	failOn map[int]error
	panics map[int]bool
	text   string
}

func (s *stubRecognizer) Recognize(_ context.Context, img image.Image) (string, error) {
	s.calls++
	s.sizes = append(s.sizes, img.Bounds().Size())
	if s.panics[s.calls] {
		panic("engine exploded")
	}
	if err := s.failOn[s.calls]; err != nil {
		return "", err
	}
	return "  " + s.text + "\n", nil
}

func solidFrame(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{200, 200, 200, 255})
		}
	}
	return img
}

func TestExtract_ZeroAreaNeverCallsRecognizer(t *testing.T) {
	rec := &stubRecognizer{text: "x"}
	e := NewExtractor(rec, discardLogger)
	for _, reg := range []region.Region{
		{ID: 1, X1: 10, Y1: 10, X2: 10, Y2: 40},
		{ID: 2, X1: 10, Y1: 10, X2: 40, Y2: 10},
	} {
		res := e.Extract(context.Background(), solidFrame(100, 100), reg)
		if res.Status != StatusEmptyRegion {
			t.Fatalf("region %d: expected empty region, got %v", reg.ID, res.Status)
		}
		if res.SlotText() != EmptyRegionText {
			t.Fatalf("unexpected slot text %q", res.SlotText())
		}
	}
	if rec.calls != 0 {
		t.Fatalf("recognizer called %d times for zero-area regions", rec.calls)
	}
}

func TestExtract_OutOfFrameIsEmpty(t *testing.T) {
	rec := &stubRecognizer{text: "x"}
	e := NewExtractor(rec, discardLogger)
	res := e.Extract(context.Background(), solidFrame(50, 50), region.Region{ID: 1, X1: 60, Y1: 60, X2: 90, Y2: 90})
	if res.Status != StatusEmptyRegion || rec.calls != 0 {
		t.Fatalf("expected empty without OCR, got %v calls=%d", res.Status, rec.calls)
	}
}

func TestExtract_PartiallyOutOfFrameIsClipped(t *testing.T) {
	rec := &stubRecognizer{text: "12"}
	e := NewExtractor(rec, discardLogger)
	res := e.Extract(context.Background(), solidFrame(50, 50), region.Region{ID: 1, X1: 40, Y1: 40, X2: 90, Y2: 90})
	if res.Status != StatusOK || res.Text != "12" {
		t.Fatalf("unexpected result %+v", res)
	}
	if rec.sizes[0] != image.Pt(10, 10) {
		t.Fatalf("expected clipped 10x10 crop, got %v", rec.sizes[0])
	}
}

func TestExtractAll_FailureIsIsolated(t *testing.T) {
	rec := &stubRecognizer{
		text:   "GOAL",
		failOn: map[int]error{1: errors.New("tesseract busy")},
		panics: map[int]bool{2: true},
	}
	e := NewExtractor(rec, discardLogger)
	regions := []region.Region{
		{ID: 1, X1: 0, Y1: 0, X2: 10, Y2: 10},
		{ID: 2, X1: 10, Y1: 0, X2: 20, Y2: 10},
		{ID: 3, X1: 20, Y1: 0, X2: 30, Y2: 10},
	}
	var order []int
	results := e.ExtractAll(context.Background(), solidFrame(40, 40), regions, func(r Result) {
		order = append(order, r.RegionID)
	})
	if len(results) != 3 || len(order) != 3 {
		t.Fatalf("expected 3 results, got %d (emitted %d)", len(results), len(order))
	}
	for i, id := range order {
		if id != i+1 {
			t.Fatalf("results out of order: %v", order)
		}
	}
	if results[0].Status != StatusRecognitionError || results[0].SlotText() != "Error: tesseract busy" {
		t.Fatalf("region 1: %+v (%q)", results[0], results[0].SlotText())
	}
	if results[1].Status != StatusRecognitionError {
		t.Fatalf("panic should be converted to recognition error: %+v", results[1])
	}
	if results[2].Status != StatusOK || results[2].Text != "GOAL" {
		t.Fatalf("region 3 should still be recognized: %+v", results[2])
	}
}

func TestCropRegion_RebasedAtOrigin(t *testing.T) {
	frame := solidFrame(20, 20)
	frame.SetRGBA(5, 6, color.RGBA{255, 0, 0, 255})
	crop, clipped, ok := CropRegion(frame, image.Rect(5, 6, 10, 12))
	if !ok {
		t.Fatalf("expected crop")
	}
	if clipped != image.Rect(5, 6, 10, 12) {
		t.Fatalf("unexpected clip %v", clipped)
	}
	if crop.Bounds() != image.Rect(0, 0, 5, 6) {
		t.Fatalf("crop not rebased: %v", crop.Bounds())
	}
	r, _, _, _ := crop.At(0, 0).RGBA()
	if r>>8 != 255 {
		t.Fatalf("expected red pixel at crop origin")
	}
}
