package capture

import (
	"fmt"
	"image"
)

// ScreenSource grabs the screen (or a fixed rectangle of it) on every read.
// It never ends on its own.
type ScreenSource struct {
	rect image.Rectangle
}

func openScreen(desc Descriptor) (*ScreenSource, error) {
	// Probe once so a headless session fails at open time, not on the first read.
	if _, err := grab(desc.Rect); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, desc, err)
	}
	return &ScreenSource{rect: desc.Rect}, nil
}

func (s *ScreenSource) ReadFrame() (image.Image, error) {
	img, err := grab(s.rect)
	if err != nil {
		return nil, fmt.Errorf("%w: screen: %v", ErrEndOfStream, err)
	}
	return img, nil
}

func (s *ScreenSource) Close() error { return nil }

func grab(rect image.Rectangle) (*image.RGBA, error) {
	if rect.Empty() {
		return grabScreen()
	}
	return grabRect(rect)
}
