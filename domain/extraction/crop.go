package extraction

import (
	"image"

	"github.com/disintegration/imaging"
)

// CropRegion cuts rect out of frame. The rectangle is intersected with the
// frame bounds first, so regions that drifted outside a resized frame are
// clipped rather than rejected. ok is false when nothing is left to crop.
// The returned image is re-based at (0,0).
func CropRegion(frame image.Image, rect image.Rectangle) (img image.Image, clipped image.Rectangle, ok bool) {
	if frame == nil {
		return nil, image.Rectangle{}, false
	}
	clipped = rect.Canon().Intersect(frame.Bounds())
	if clipped.Empty() {
		return nil, clipped, false
	}
	if rgba, isRGBA := frame.(*image.RGBA); isRGBA {
		sub := rgba.SubImage(clipped).(*image.RGBA)
		out := &image.RGBA{
			Pix:    sub.Pix,
			Stride: sub.Stride,
			Rect:   image.Rect(0, 0, clipped.Dx(), clipped.Dy()),
		}
		return out, clipped, true
	}
	return imaging.Crop(frame, clipped), clipped, true
}
