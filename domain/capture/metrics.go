package capture

import (
	"image"
	"log/slog"
	"time"
)

const statsLogInterval = 5 * time.Second

// Stats summarises frame reads for instrumentation.
type Stats struct {
	Frames   uint64
	Failures uint64
	AvgRead  time.Duration
	LastSize image.Point
}

// Metered wraps a Source and records read timings. Only the session loop
// reads from it, so the counters are plain fields.
type Metered struct {
	src       Source
	logger    *slog.Logger
	frames    uint64
	failures  uint64
	readNanos uint64
	lastSize  image.Point
	lastLog   time.Time
}

func NewMetered(src Source, logger *slog.Logger) *Metered {
	return &Metered{src: src, logger: logger}
}

func (m *Metered) ReadFrame() (image.Image, error) {
	start := time.Now()
	img, err := m.src.ReadFrame()
	if err != nil {
		m.failures++
		return nil, err
	}
	m.readNanos += uint64(time.Since(start).Nanoseconds())
	m.frames++
	now := time.Now()
	m.lastSize = img.Bounds().Size()
	if m.logger != nil && now.Sub(m.lastLog) >= statsLogInterval {
		m.lastLog = now
		s := m.Stats()
		m.logger.Debug("capture.stats",
			"frames", s.Frames,
			"failures", s.Failures,
			"avg_read", s.AvgRead,
			"size", s.LastSize,
		)
	}
	return img, nil
}

func (m *Metered) Stats() Stats {
	var avg time.Duration
	if m.frames > 0 {
		avg = time.Duration(m.readNanos / m.frames)
	}
	return Stats{
		Frames:   m.frames,
		Failures: m.failures,
		AvgRead:  avg,
		LastSize: m.lastSize,
	}
}

func (m *Metered) Close() error { return m.src.Close() }
