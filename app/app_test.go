package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/soocke/score-ocr-go/config"
	"github.com/soocke/score-ocr-go/domain/capture"
	"github.com/soocke/score-ocr-go/domain/extraction"
	"github.com/soocke/score-ocr-go/domain/publish"
	"github.com/soocke/score-ocr-go/domain/session"
	"github.com/soocke/score-ocr-go/ui/prompt"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestApplySetup(t *testing.T) {
	cfg := config.DefaultConfig()
	ApplySetup(cfg, prompt.Result{
		Interval:  10 * time.Second,
		Source:    capture.Descriptor{Kind: capture.KindDeckLink, Device: 1, Connection: capture.ConnectionSDI},
		OutputDir: "scores",
	})
	if cfg.IntervalSeconds != 10 || cfg.OutputDir != "scores" {
		t.Fatalf("settings not applied: %+v", cfg)
	}
	desc, err := capture.ParseDescriptor(cfg.Source)
	if err != nil || desc.Kind != capture.KindDeckLink || desc.Device != 1 || desc.Connection != capture.ConnectionSDI {
		t.Fatalf("source did not round trip: %q %+v %v", cfg.Source, desc, err)
	}
}

func TestApplySetup_EmptyOutputKeepsConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	ApplySetup(cfg, prompt.Result{Interval: 5 * time.Second, Source: capture.DefaultCamera()})
	if cfg.OutputDir != "outputs" || cfg.IntervalSeconds != 5 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestConsoleSetup(t *testing.T) {
	out := &bytes.Buffer{}
	setup := ConsoleSetup(strings.NewReader("2\n4\n0,0,640,360\n"), out, discardLogger, Preset{})
	res, ok := setup(config.DefaultConfig())
	if !ok || res.Interval != 5*time.Second || res.Source.Kind != capture.KindScreen || res.OutputDir != "outputs" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestConsoleSetup_PresetSkipsQuestions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source = "decklink:1:0"
	cfg.IntervalSeconds = 10

	out := &bytes.Buffer{}
	setup := ConsoleSetup(strings.NewReader("2\n"), out, discardLogger, Preset{Source: true})
	res, ok := setup(cfg)
	if !ok || res.Interval != 5*time.Second {
		t.Fatalf("interval should still be asked: %+v", res)
	}
	if res.Source.Kind != capture.KindDeckLink || res.Source.Device != 1 || res.Source.Connection != capture.ConnectionSDI {
		t.Fatalf("source from the command line was replaced: %+v", res.Source)
	}
	if strings.Contains(out.String(), "Select video source") {
		t.Fatalf("source question asked anyway:\n%s", out.String())
	}

	out.Reset()
	setup = ConsoleSetup(strings.NewReader(""), out, discardLogger, Preset{Source: true, Interval: true})
	res, _ = setup(cfg)
	if res.Interval != 10*time.Second || out.Len() != 0 {
		t.Fatalf("nothing should be asked: %+v\n%s", res, out.String())
	}
	ApplySetup(cfg, res)
	if cfg.Source != "decklink:1:0" || cfg.IntervalSeconds != 10 {
		t.Fatalf("flag values lost: %+v", cfg)
	}
}

func TestRun_CancelledSetup(t *testing.T) {
	a := NewApp(config.DefaultConfig(), discardLogger, nil, func(*config.Config) (prompt.Result, bool) {
		return prompt.Result{}, false
	})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("cancelled setup should exit cleanly: %v", err)
	}
}

func TestSessionOptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IntervalSeconds = 5
	cfg.SchedulePolicy = "aligned"
	cfg.OutputDir = "out"
	id := uuid.New()
	opts, err := SessionOptions(cfg, id, nil)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Interval != 5*time.Second || opts.Policy != extraction.PolicyAligned || opts.SessionID != id {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.PollTimeout != 30*time.Millisecond {
		t.Fatalf("unexpected poll timeout %v", opts.PollTimeout)
	}
	if opts.SnapshotPath != filepath.Join("out", SnapshotName) {
		t.Fatalf("unexpected snapshot path %q", opts.SnapshotPath)
	}

	cfg.Snapshot = false
	cfg.SchedulePolicy = "hourly"
	if _, err := SessionOptions(cfg, id, nil); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config, got %v", err)
	}
}

func TestOCROptions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OCRWhitelist = "0123456789:"
	cfg.OCRPageSegMode = 7
	cfg.OCRThreshold = 128
	cfg.OCRInvert = true
	o := OCROptions(cfg)
	if o.Language != "eng" || o.PageSegMode != 7 || o.Whitelist != "0123456789:" {
		t.Fatalf("unexpected engine options %+v", o)
	}
	if o.Preprocess.Threshold != 128 || !o.Preprocess.Invert || o.Preprocess.Upscale != 1 {
		t.Fatalf("unexpected preprocess options %+v", o.Preprocess)
	}
}

func TestBuildSinks(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.OutputDir = dir
	cfg.ExcelPath = filepath.Join(dir, "scores.xlsx")
	cfg.HistoryDSN = filepath.Join(dir, "history.db")
	sinks, err := BuildSinks(context.Background(), cfg, uuid.New(), discardLogger)
	if err != nil {
		t.Fatal(err)
	}
	defer sinks.Close()
	if len(sinks) != 3 {
		t.Fatalf("expected file, excel and history sinks, got %d", len(sinks))
	}
	if _, ok := sinks[0].(*publish.FileSink); !ok {
		t.Fatalf("first sink should be the slot files, got %T", sinks[0])
	}

	cfg.HistoryDialect = "mysql"
	if _, err := BuildSinks(context.Background(), cfg, uuid.New(), discardLogger); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected invalid config for unknown dialect, got %v", err)
	}
}

func TestStatsAttrs(t *testing.T) {
	attrs := StatsAttrs(session.Stats{Batches: 3, Errors: 1})
	got := map[string]string{}
	for _, a := range attrs {
		got[a.Key] = a.Value.String()
	}
	if got["batches"] != "3" || got["errors"] != "1" {
		t.Fatalf("unexpected attrs %v", got)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{fmt.Errorf("%w: bad policy", ErrInvalidConfig), ExitConfig},
		{fmt.Errorf("%w: camera:3", capture.ErrSourceUnavailable), ExitSource},
		{fmt.Errorf("%w: %w", session.ErrFrameUnavailable, errors.New("usb unplugged")), ExitSource},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type trackedSource struct{ closed bool }

func (s *trackedSource) ReadFrame() (image.Image, error) { return nil, capture.ErrEndOfStream }
func (s *trackedSource) Close() error                    { s.closed = true; return nil }

func TestRun_SourceOpenFailurePrintsDiagnostic(t *testing.T) {
	capture.RegisterDevice(func(d capture.Descriptor) (capture.Source, error) {
		return nil, fmt.Errorf("%w: %s", capture.ErrSourceUnavailable, d)
	})
	t.Cleanup(func() { capture.RegisterDevice(nil) })

	cfg := config.DefaultConfig()
	cfg.Source = "camera:7"
	cfg.OutputDir = t.TempDir()
	out := &bytes.Buffer{}
	err := NewApp(cfg, discardLogger, out, nil).Run(context.Background())
	if !errors.Is(err, capture.ErrSourceUnavailable) {
		t.Fatalf("expected source error, got %v", err)
	}
	if ExitCode(err) != ExitSource {
		t.Fatalf("exit code %d", ExitCode(err))
	}
	if !strings.Contains(out.String(), "Error: Could not open video source camera:7.") {
		t.Fatalf("diagnostic missing:\n%s", out.String())
	}
}

func TestBuildContainer_LaterFailureClosesSource(t *testing.T) {
	src := &trackedSource{}
	capture.RegisterDevice(func(capture.Descriptor) (capture.Source, error) { return src, nil })
	t.Cleanup(func() { capture.RegisterDevice(nil) })

	cfg := config.DefaultConfig()
	cfg.Source = "camera:0"
	cfg.OutputDir = t.TempDir()
	cfg.HistoryDSN = "scores.db"
	cfg.HistoryDialect = "oracle"
	c, err := BuildContainer(context.Background(), cfg, discardLogger, nil)
	if c != nil || !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected config error, got %v %v", c, err)
	}
	if !src.closed {
		t.Fatal("source left open after a failed build")
	}
}
