// Package app wires configuration, operator setup and the capture session.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/score-ocr-go/config"
	"github.com/soocke/score-ocr-go/debug"
	"github.com/soocke/score-ocr-go/domain/capture"
	"github.com/soocke/score-ocr-go/domain/session"
	"github.com/soocke/score-ocr-go/ui/prompt"
)

const runtimeLogInterval = 5 * time.Second

// SetupFunc asks the operator for session settings. ok is false when the
// operator cancelled.
type SetupFunc func(cfg *config.Config) (res prompt.Result, ok bool)

// Preset marks answers already given on the command line.
type Preset struct {
	Interval bool
	Source   bool
}

// ConsoleSetup asks the startup questions on the console. Questions covered
// by preset are answered from cfg instead.
func ConsoleSetup(in io.Reader, out io.Writer, logger *slog.Logger, preset Preset) SetupFunc {
	return func(cfg *config.Config) (prompt.Result, bool) {
		c := prompt.NewConsole(in, out, logger)
		res := prompt.Result{
			Interval:  time.Duration(cfg.IntervalSeconds) * time.Second,
			OutputDir: cfg.OutputDir,
		}
		if !preset.Interval {
			res.Interval = c.Interval()
		}
		if preset.Source {
			desc, err := capture.ParseDescriptor(cfg.Source)
			if err == nil {
				res.Source = desc
				return res, true
			}
			logger.Warn("ignoring -source", "source", cfg.Source, "error", err)
		}
		res.Source = c.Source()
		return res, true
	}
}

// ApplySetup copies the operator's answers into cfg.
func ApplySetup(cfg *config.Config, res prompt.Result) {
	if res.Interval > 0 {
		cfg.IntervalSeconds = int(res.Interval / time.Second)
	}
	cfg.Source = res.Source.String()
	if res.OutputDir != "" {
		cfg.OutputDir = res.OutputDir
	}
	_ = cfg.Validate()
}

type App struct {
	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
	setup  SetupFunc
}

// NewApp returns an App; a nil setup runs straight from cfg.
func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer, setup SetupFunc) *App {
	if out == nil {
		out = io.Discard
	}
	return &App{cfg: cfg, logger: logger, out: out, setup: setup}
}

// Run executes one session. It returns nil on quit, cancellation, end of
// stream or a cancelled setup.
func (a *App) Run(ctx context.Context) error {
	if a.setup != nil {
		res, ok := a.setup(a.cfg)
		if !ok {
			a.logger.Info("setup cancelled")
			return nil
		}
		ApplySetup(a.cfg, res)
	}
	a.logger.Info("starting session",
		"source", a.cfg.Source,
		"interval_seconds", a.cfg.IntervalSeconds,
		"output_dir", a.cfg.OutputDir,
	)

	c, err := BuildContainer(ctx, a.cfg, a.logger, a.out)
	if err != nil {
		if errors.Is(err, capture.ErrSourceUnavailable) {
			desc, _ := capture.ParseDescriptor(a.cfg.Source)
			fmt.Fprint(a.out, capture.Diagnostic(desc))
		}
		return err
	}
	defer c.Close()

	if a.cfg.Debug {
		debug.StartRuntimeLogger(ctx, runtimeLogInterval, a.logger, func() []slog.Attr {
			return StatsAttrs(c.Session.Stats())
		})
	}

	err = c.Session.Run(ctx)
	if errors.Is(err, capture.ErrEndOfStream) {
		a.logger.Info("video stream ended")
		return nil
	}
	return err
}

// StatsAttrs flattens session counters for the runtime log.
func StatsAttrs(s session.Stats) []slog.Attr {
	return []slog.Attr{
		slog.Uint64("batches", s.Batches),
		slog.Uint64("recognized", s.Recognized),
		slog.Uint64("empty", s.Empty),
		slog.Uint64("errors", s.Errors),
		slog.Uint64("publish_failures", s.PublishFailures),
		slog.Uint64("skipped_ticks", s.SkippedTicks),
		slog.Duration("last_batch", s.LastBatch),
	}
}

// Exit codes returned by the command.
const (
	ExitOK     = 0
	ExitSource = 1
	ExitConfig = 2
)

// ExitCode maps a Run error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidConfig):
		return ExitConfig
	default:
		return ExitSource
	}
}
