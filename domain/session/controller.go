package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"github.com/soocke/score-ocr-go/domain/extraction"
	"github.com/soocke/score-ocr-go/domain/interaction"
	"github.com/soocke/score-ocr-go/domain/publish"
	"github.com/soocke/score-ocr-go/domain/region"
)

const defaultPollTimeout = 30 * time.Millisecond

// Deps are the collaborators a session drives. Source and Display are owned
// by the session and closed when it terminates.
type Deps struct {
	Source     Source
	Display    Display
	Recognizer extraction.Recognizer
	Sink       publish.Sink
	Painter    Painter
}

// Options tune timing and operator output.
type Options struct {
	Interval    time.Duration
	Policy      extraction.Policy
	PollTimeout time.Duration
	Clock       extraction.Clock
	// OutputDir is named in operator messages.
	OutputDir string
	// SnapshotPath, when set, receives an annotated PNG of the frame at commit.
	SnapshotPath string
	// Out receives operator guidance; nil discards it.
	Out io.Writer
	// SessionID names the session in logs and history; zero assigns a new one.
	SessionID uuid.UUID
}

// Controller runs one session: region definition, then periodic extraction,
// until quit, cancellation or end of stream. All work happens on the
// goroutine that calls Run.
type Controller struct {
	id     uuid.UUID
	deps   Deps
	opts   Options
	logger *slog.Logger

	registry    *region.Registry
	interaction *interaction.Controller
	scheduler   *extraction.Scheduler
	extractor   *extraction.Extractor

	state     State
	listeners []Listener
	frame     image.Image
	preview   *image.Rectangle
	closed    bool

	mu    sync.Mutex // guards stats, read by diagnostics goroutines
	stats Stats
}

func New(deps Deps, opts Options, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = defaultPollTimeout
	}
	if opts.Clock == nil {
		opts.Clock = extraction.SystemClock
	}
	if opts.OutputDir == "" {
		opts.OutputDir = publish.DefaultDir
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	id := opts.SessionID
	if id == uuid.Nil {
		id = uuid.New()
	}
	logger = logger.With("session_id", id.String())
	c := &Controller{
		id:        id,
		deps:      deps,
		opts:      opts,
		logger:    logger,
		registry:  region.NewRegistry(),
		scheduler: extraction.NewScheduler(opts.Interval, opts.Policy, opts.Clock),
		extractor: extraction.NewExtractor(deps.Recognizer, logger),
		state:     StateDefining,
	}
	c.interaction = interaction.NewController(c.registry, c, logger)
	return c
}

func (c *Controller) ID() uuid.UUID              { return c.id }
func (c *Controller) State() State               { return c.state }
func (c *Controller) Registry() *region.Registry { return c.registry }

// Stats is safe to call from any goroutine.
func (c *Controller) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// AddListener registers l for subsequent transitions.
func (c *Controller) AddListener(l Listener) { c.listeners = append(c.listeners, l) }

// Redraw implements interaction.Renderer. The frame is composed on the next
// render step of the loop.
func (c *Controller) Redraw(_ []region.Region, preview *image.Rectangle) {
	if preview == nil {
		c.preview = nil
		return
	}
	p := *preview
	c.preview = &p
}

// Run drives the session loop until it terminates. It returns nil on quit or
// cancellation and an error wrapping ErrFrameUnavailable when the source
// stops delivering frames.
func (c *Controller) Run(ctx context.Context) error {
	defer c.closeResources()
	fmt.Fprintln(c.opts.Out, "Draw boxes by clicking and dragging. Each box will be numbered in the top-right corner. Press 'd' when done. Press 'q' to quit.")
	c.logger.Info("session started", "interval", c.scheduler.Interval(), "policy", string(c.scheduler.Policy()))

	for {
		if ctx.Err() != nil {
			c.logger.Info("session cancelled")
			c.terminate()
			return nil
		}
		frame, rerr := c.deps.Source.ReadFrame()
		if rerr != nil {
			c.logger.Warn("failed to grab frame", "error", rerr)
			fmt.Fprintln(c.opts.Out, "Error: Failed to capture image. Check video source.")
			c.terminate()
			return fmt.Errorf("%w: %w", ErrFrameUnavailable, rerr)
		}
		c.frame = frame

		if c.state == StateExtracting && c.scheduler.Due() {
			c.runBatch(ctx, frame)
		}

		events, perr := c.deps.Display.Poll(c.pollTimeout())
		if perr != nil {
			c.logger.Error("display poll failed", "error", perr)
			c.terminate()
			return perr
		}
		if quit := c.dispatch(events); quit {
			c.terminate()
			return nil
		}
		c.render()
	}
}

// pollTimeout shortens the input wait when the next batch is due sooner.
func (c *Controller) pollTimeout() time.Duration {
	if c.state != StateExtracting {
		return c.opts.PollTimeout
	}
	if until := c.scheduler.Until(); until > 0 && until < c.opts.PollTimeout {
		return until
	}
	return c.opts.PollTimeout
}

// dispatch applies input events; it reports whether quit was requested.
func (c *Controller) dispatch(events []interaction.Event) bool {
	for _, ev := range events {
		if ev.Pointer != nil {
			if c.state == StateDefining {
				c.interaction.HandlePointer(*ev.Pointer)
			}
			continue
		}
		switch ev.Key {
		case interaction.KeyQuit:
			c.logger.Info("quit requested")
			return true
		case interaction.KeyCommit:
			if err := c.Commit(); err != nil && !errors.Is(err, ErrNoRegions) {
				c.logger.Warn("commit ignored", "error", err)
			}
		}
	}
	return false
}

// Commit ends the definition phase. It fails with ErrNoRegions when nothing
// was drawn and leaves the session in StateDefining.
func (c *Controller) Commit() error {
	if c.state != StateDefining {
		return fmt.Errorf("commit in state %s", c.state)
	}
	if c.registry.IsEmpty() {
		fmt.Fprintln(c.opts.Out, "No boxes drawn. Draw at least one box.")
		c.logger.Info("commit rejected", "error", ErrNoRegions)
		return ErrNoRegions
	}
	c.registry.Freeze()
	c.interaction.Disable()
	c.preview = nil
	c.transition(StateExtracting)
	fmt.Fprintln(c.opts.Out, "Drawing done. Now extracting text...")
	c.writeSnapshot()
	return nil
}

func (c *Controller) runBatch(ctx context.Context, frame image.Image) {
	c.scheduler.BatchStarted()
	start := c.opts.Clock.Now()
	regions := c.registry.List()

	var batch Stats
	c.extractor.ExtractAll(ctx, frame, regions, func(res extraction.Result) {
		switch res.Status {
		case extraction.StatusOK:
			batch.Recognized++
		case extraction.StatusEmptyRegion:
			batch.Empty++
		case extraction.StatusRecognitionError:
			batch.Errors++
		}
		if c.deps.Sink == nil {
			return
		}
		rec := publish.RecordFromResult(res, c.opts.Clock.Now())
		if err := c.deps.Sink.Publish(ctx, rec); err != nil {
			batch.PublishFailures++
			c.logger.Error("publish failed", "slot", rec.Slot, "error", err)
		}
	})
	if f, ok := c.deps.Sink.(publish.BatchFlusher); ok {
		if err := f.Flush(ctx); err != nil {
			batch.PublishFailures++
			c.logger.Error("flush failed", "error", err)
		}
	}
	fmt.Fprintf(c.opts.Out, "Updated text files in %s/\n", c.opts.OutputDir)

	c.scheduler.BatchDone()
	end := c.opts.Clock.Now()
	elapsed := end.Sub(start)

	c.mu.Lock()
	c.stats.Batches++
	c.stats.Recognized += batch.Recognized
	c.stats.Empty += batch.Empty
	c.stats.Errors += batch.Errors
	c.stats.PublishFailures += batch.PublishFailures
	c.stats.LastBatch = elapsed
	c.stats.LastBatchAt = end
	c.stats.SkippedTicks = c.scheduler.Skipped()
	c.mu.Unlock()

	c.logger.Debug("batch done",
		"regions", len(regions),
		"elapsed", elapsed,
		"next_due", c.scheduler.NextDue(),
	)
}

func (c *Controller) render() {
	if c.frame == nil {
		return
	}
	img := c.compose(c.frame)
	if err := c.deps.Display.Show(img); err != nil {
		c.logger.Warn("display show failed", "error", err)
	}
}

func (c *Controller) compose(frame image.Image) image.Image {
	if c.deps.Painter == nil {
		return frame
	}
	return c.deps.Painter(frame, c.registry.List(), c.preview)
}

func (c *Controller) writeSnapshot() {
	if c.opts.SnapshotPath == "" || c.frame == nil {
		return
	}
	if err := imaging.Save(c.compose(c.frame), c.opts.SnapshotPath); err != nil {
		c.logger.Warn("region snapshot not written", "path", c.opts.SnapshotPath, "error", err)
		return
	}
	c.logger.Info("region snapshot written", "path", c.opts.SnapshotPath)
}

func (c *Controller) terminate() {
	if c.state == StateTerminated {
		return
	}
	wasExtracting := c.state == StateExtracting
	c.transition(StateTerminated)
	if wasExtracting {
		fmt.Fprintf(c.opts.Out, "Final output written to %s/ (box1.txt, box2.txt, etc.)\n", c.opts.OutputDir)
	}
}

func (c *Controller) transition(next State) {
	prev := c.state
	if prev == next {
		return
	}
	c.state = next
	c.logger.Debug("session state transition", "from", prev.String(), "to", next.String())
	for _, l := range c.listeners {
		l(prev, next)
	}
}

func (c *Controller) closeResources() {
	if c.closed {
		return
	}
	c.closed = true
	if c.deps.Display != nil {
		if err := c.deps.Display.Close(); err != nil {
			c.logger.Warn("display close", "error", err)
		}
	}
	if c.deps.Source != nil {
		if err := c.deps.Source.Close(); err != nil {
			c.logger.Warn("source close", "error", err)
		}
	}
}
