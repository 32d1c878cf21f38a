package capture

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

var stillExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// IsStillImage reports whether path names a single image rather than a video.
func IsStillImage(path string) bool {
	return stillExtensions[strings.ToLower(filepath.Ext(path))]
}

// StillSource repeats one decoded image forever. It is useful for laying out
// regions against a screenshot of the broadcast graphics.
type StillSource struct {
	img image.Image
}

func openStill(path string) (*StillSource, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: file:%s: %v", ErrSourceUnavailable, path, err)
	}
	return &StillSource{img: imaging.Clone(img)}, nil
}

// NewStillSource wraps an in-memory image.
func NewStillSource(img image.Image) *StillSource { return &StillSource{img: img} }

func (s *StillSource) ReadFrame() (image.Image, error) {
	if s.img == nil {
		return nil, ErrEndOfStream
	}
	return s.img, nil
}

func (s *StillSource) Close() error {
	s.img = nil
	return nil
}
