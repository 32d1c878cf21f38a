package capture

import (
	"errors"
	"image"
)

var (
	// ErrSourceUnavailable is returned by Open when the device cannot be opened.
	ErrSourceUnavailable = errors.New("video source unavailable")
	// ErrEndOfStream is returned by ReadFrame when no further frame can be read.
	ErrEndOfStream = errors.New("end of stream")
)

// Source yields frames one at a time. ReadFrame blocks until a frame is
// available and returns ErrEndOfStream (possibly wrapped) when the stream is
// exhausted or the device stopped delivering.
type Source interface {
	ReadFrame() (image.Image, error)
	Close() error
}
