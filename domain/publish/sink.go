package publish

import (
	"context"
	"errors"
	"time"

	"github.com/soocke/score-ocr-go/domain/extraction"
)

// Record is one published slot value.
type Record struct {
	Slot   int
	Text   string
	Status string
	At     time.Time
}

// RecordFromResult converts an extraction result into the record written to
// the region's slot.
func RecordFromResult(res extraction.Result, at time.Time) Record {
	return Record{
		Slot:   res.RegionID,
		Text:   res.SlotText(),
		Status: res.Status.String(),
		At:     at,
	}
}

// Sink publishes the latest text for a slot. Each call replaces the previous
// value for that slot; failures are returned and never retried.
type Sink interface {
	Publish(ctx context.Context, rec Record) error
}

// BatchFlusher is implemented by sinks that buffer a batch and persist it at
// once (for example a workbook rewritten per batch).
type BatchFlusher interface {
	Flush(ctx context.Context) error
}

// Multi fans a record out to several sinks. Every sink is attempted; the
// returned error joins the individual failures.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, rec Record) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Flush(ctx context.Context) error {
	var errs []error
	for _, s := range m {
		if f, ok := s.(BatchFlusher); ok {
			if err := f.Flush(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Close closes every sink that holds resources.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		if c, ok := s.(interface{ Close() error }); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
