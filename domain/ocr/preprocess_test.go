package ocr

import (
	"image"
	"image/color"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// scoreImage draws white digits on black, like a broadcast score bug.
func scoreImage(text string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 60, 20))
	for i := range img.Pix {
		if i%4 == 3 {
			img.Pix[i] = 255
		}
	}
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, 15),
	}
	d.DrawString(text)
	return img
}

func TestPreprocess_DisabledReturnsInput(t *testing.T) {
	img := scoreImage("12")
	if got := Preprocess(img, PreprocessOptions{}); got != image.Image(img) {
		t.Fatalf("expected identical image when no step is enabled")
	}
}

func TestPreprocess_UpscaleKeepsAspect(t *testing.T) {
	out := Preprocess(scoreImage("12"), PreprocessOptions{Upscale: 2})
	if out.Bounds().Dx() != 120 || out.Bounds().Dy() != 40 {
		t.Fatalf("unexpected size %v", out.Bounds())
	}
}

func TestPreprocess_InvertThenThresholdIsBinary(t *testing.T) {
	out := Preprocess(scoreImage("7"), PreprocessOptions{Invert: true, Threshold: 128})
	gray, ok := out.(*image.Gray)
	if !ok {
		t.Fatalf("expected *image.Gray after threshold, got %T", out)
	}
	var black, white int
	for _, p := range gray.Pix {
		switch p {
		case 0:
			black++
		case 255:
			white++
		default:
			t.Fatalf("non-binary pixel %d", p)
		}
	}
	// background was black, after inversion it dominates as white
	if white <= black {
		t.Fatalf("expected inverted background to be white: white=%d black=%d", white, black)
	}
}

func TestEncodePNG_Nil(t *testing.T) {
	if _, err := EncodePNG(nil); err == nil {
		t.Fatalf("expected error for nil image")
	}
}
