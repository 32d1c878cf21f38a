package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/score-ocr-go/config"
	"github.com/soocke/score-ocr-go/domain/capture"
	"github.com/soocke/score-ocr-go/domain/extraction"
	"github.com/soocke/score-ocr-go/domain/ocr"
	"github.com/soocke/score-ocr-go/domain/publish"
	"github.com/soocke/score-ocr-go/domain/session"
	"github.com/soocke/score-ocr-go/ui/overlay"
	"github.com/soocke/score-ocr-go/ui/view"
)

// SnapshotName is the region layout image written to the output directory.
const SnapshotName = "regions.png"

// ErrInvalidConfig marks settings that cannot be turned into a session.
var ErrInvalidConfig = errors.New("invalid configuration")

// Container assembles the source, engine, sinks, display and session.
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	SessionID  uuid.UUID
	Descriptor capture.Descriptor
	Source     capture.Source
	Recognizer *ocr.Tesseract
	Sinks      publish.Multi
	Display    *view.HighGUIWindow
	Session    *session.Controller
}

// SessionOptions derives the session timing and output options from cfg.
func SessionOptions(cfg *config.Config, id uuid.UUID, out io.Writer) (session.Options, error) {
	policy, err := extraction.ParsePolicy(cfg.SchedulePolicy)
	if err != nil {
		return session.Options{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	opts := session.Options{
		Interval:    time.Duration(cfg.IntervalSeconds) * time.Second,
		Policy:      policy,
		PollTimeout: time.Duration(cfg.PollMillis) * time.Millisecond,
		OutputDir:   cfg.OutputDir,
		Out:         out,
		SessionID:   id,
	}
	if cfg.Snapshot {
		opts.SnapshotPath = filepath.Join(cfg.OutputDir, SnapshotName)
	}
	return opts, nil
}

// OCROptions maps the OCR section of cfg to engine options.
func OCROptions(cfg *config.Config) ocr.Options {
	return ocr.Options{
		Language:       cfg.OCRLanguage,
		PageSegMode:    cfg.OCRPageSegMode,
		Whitelist:      cfg.OCRWhitelist,
		TessdataPrefix: cfg.TessdataPrefix,
		Preprocess: ocr.PreprocessOptions{
			Upscale:   cfg.OCRUpscale,
			Grayscale: cfg.OCRGrayscale,
			Invert:    cfg.OCRInvert,
			Threshold: uint8(cfg.OCRThreshold),
		},
	}
}

// BuildSinks opens the slot files plus the optional workbook and history
// database.
func BuildSinks(ctx context.Context, cfg *config.Config, id uuid.UUID, logger *slog.Logger) (publish.Multi, error) {
	sinks := publish.Multi{publish.NewFileSink(cfg.OutputDir, cfg.OutputPrefix)}
	if cfg.ExcelPath != "" {
		sinks = append(sinks, publish.NewExcelSink(cfg.ExcelPath, logger))
	}
	if cfg.HistoryDSN != "" {
		dialect, err := publish.ParseDialect(cfg.HistoryDialect)
		if err != nil {
			_ = sinks.Close()
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		h, err := publish.OpenHistory(ctx, dialect, cfg.HistoryDSN, id, logger)
		if err != nil {
			_ = sinks.Close()
			return nil, err
		}
		sinks = append(sinks, h)
	}
	return sinks, nil
}

// BuildContainer opens every collaborator of one session. On failure anything
// already opened is closed again.
func BuildContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*Container, error) {
	desc, err := capture.ParseDescriptor(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	c := &Container{Config: cfg, Logger: logger, SessionID: uuid.New(), Descriptor: desc}
	opts, err := SessionOptions(cfg, c.SessionID, out)
	if err != nil {
		return nil, err
	}
	style, err := overlay.ParseStyle(cfg.BoxColor, cfg.PreviewColor, cfg.BoxThickness)
	if err != nil {
		logger.Warn("invalid box style, using default", "error", err)
		style = overlay.DefaultStyle()
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	if err := c.open(ctx, opts, style); err != nil {
		c.closePartial()
		return nil, err
	}
	return c, nil
}

func (c *Container) open(ctx context.Context, opts session.Options, style overlay.Style) error {
	var err error
	if c.Source, err = capture.Open(c.Descriptor, c.Logger); err != nil {
		return err
	}
	if c.Recognizer, err = ocr.NewTesseract(OCROptions(c.Config), c.Logger); err != nil {
		return fmt.Errorf("%w: ocr engine: %w", ErrInvalidConfig, err)
	}
	if c.Sinks, err = BuildSinks(ctx, c.Config, c.SessionID, c.Logger); err != nil {
		return err
	}
	c.Display = view.NewHighGUIWindow(c.Config.WindowTitle, view.DefaultKeyMap(), c.Logger)
	c.Session = session.New(session.Deps{
		Source:     c.Source,
		Display:    c.Display,
		Recognizer: c.Recognizer,
		Sink:       c.Sinks,
		Painter:    style.Painter(),
	}, opts, c.Logger)
	return nil
}

// closePartial releases what a failed build opened.
func (c *Container) closePartial() {
	if c.Display != nil {
		_ = c.Display.Close()
	}
	if c.Source != nil {
		_ = c.Source.Close()
	}
	c.Close()
}

// Close releases the engine and sinks. The session closes source and display
// itself when Run returns.
func (c *Container) Close() {
	if c.Sinks != nil {
		if err := c.Sinks.Close(); err != nil {
			c.Logger.Warn("closing sinks", "error", err)
		}
	}
	if c.Recognizer != nil {
		if err := c.Recognizer.Close(); err != nil {
			c.Logger.Warn("closing ocr engine", "error", err)
		}
	}
}
