package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// PreprocessOptions tune the crop before it reaches the engine. Scoreboard
// digits are often small and light-on-dark, so upscaling and inversion help.
type PreprocessOptions struct {
	// Upscale multiplies width and height; values <= 1 leave size unchanged.
	Upscale float64
	// Grayscale drops color before recognition.
	Grayscale bool
	// Invert swaps light and dark.
	Invert bool
	// Threshold binarizes at this level (1-255); 0 disables.
	Threshold uint8
}

// Enabled reports whether Preprocess would change the image.
func (o PreprocessOptions) Enabled() bool {
	return o.Upscale > 1 || o.Grayscale || o.Invert || o.Threshold > 0
}

// Preprocess applies the configured steps in a fixed order:
// upscale, grayscale, invert, threshold.
func Preprocess(img image.Image, o PreprocessOptions) image.Image {
	if img == nil || !o.Enabled() {
		return img
	}
	out := img
	if o.Upscale > 1 {
		b := out.Bounds()
		w := int(float64(b.Dx()) * o.Upscale)
		if w > 0 {
			out = imaging.Resize(out, w, 0, imaging.Lanczos)
		}
	}
	if o.Grayscale {
		out = imaging.Grayscale(out)
	}
	if o.Invert {
		out = effect.Invert(out)
	}
	if o.Threshold > 0 {
		out = segment.Threshold(out, o.Threshold)
	}
	return out
}
