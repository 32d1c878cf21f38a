package session

import (
	"errors"
	"image"
	"time"

	"github.com/soocke/score-ocr-go/domain/interaction"
	"github.com/soocke/score-ocr-go/domain/region"
)

// State enumerates the phases of a capture session.
type State int

const (
	StateDefining State = iota
	StateExtracting
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateDefining:
		return "defining"
	case StateExtracting:
		return "extracting"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Listener is called synchronously on each state transition.
type Listener func(prev, next State)

var (
	// ErrNoRegions rejects a commit while no region has been drawn.
	ErrNoRegions = errors.New("no regions defined")
	// ErrFrameUnavailable terminates the session when the source stops delivering.
	ErrFrameUnavailable = errors.New("frame unavailable")
)

// Source yields frames; capture.Source satisfies it.
type Source interface {
	ReadFrame() (image.Image, error)
	Close() error
}

// Display shows frames and delivers operator input. Poll waits at most
// timeout and returns whatever events arrived.
type Display interface {
	Show(img image.Image) error
	Poll(timeout time.Duration) ([]interaction.Event, error)
	Close() error
}

// Painter composes the frame with region outlines, their IDs and the
// in-progress preview rectangle.
type Painter func(frame image.Image, regions []region.Region, preview *image.Rectangle) image.Image

// Stats summarise extraction activity for diagnostics.
type Stats struct {
	Batches         uint64
	Recognized      uint64
	Empty           uint64
	Errors          uint64
	PublishFailures uint64
	SkippedTicks    uint64
	LastBatch       time.Duration
	LastBatchAt     time.Time
}
