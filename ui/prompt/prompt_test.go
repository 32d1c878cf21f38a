package prompt

import (
	"bytes"
	"image"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/soocke/score-ocr-go/domain/capture"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func console(input string) (*Console, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewConsole(strings.NewReader(input), out, discardLogger), out
}

func TestInterval(t *testing.T) {
	tests := []struct {
		in       string
		want     time.Duration
		warnings bool
	}{
		{"1\n", time.Second, false},
		{"2\n", 5 * time.Second, false},
		{"3\n", 10 * time.Second, false},
		{"9\n", time.Second, true},
		{"\n", time.Second, true},
		{"", time.Second, true},
	}
	for _, tt := range tests {
		c, out := console(tt.in)
		if got := c.Interval(); got != tt.want {
			t.Errorf("Interval(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if warned := strings.Contains(out.String(), "Invalid choice"); warned != tt.warnings {
			t.Errorf("Interval(%q) warning=%v, want %v", tt.in, warned, tt.warnings)
		}
	}
}

func TestSource(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want capture.Descriptor
		warn bool
	}{
		{"default", "1\n", capture.DefaultCamera(), false},
		{"index", "2\n3\n", capture.Descriptor{Kind: capture.KindCamera, Index: 3}, false},
		{"bad index", "2\nabc\n", capture.DefaultCamera(), true},
		{"decklink defaults", "3\n\n\n", capture.Descriptor{Kind: capture.KindDeckLink, Device: 0, Connection: capture.ConnectionHDMI}, false},
		{"decklink sdi", "3\n1\n0\n", capture.Descriptor{Kind: capture.KindDeckLink, Device: 1, Connection: capture.ConnectionSDI}, false},
		{"decklink bad", "3\nx\n", capture.DefaultCamera(), true},
		{"screen full", "4\n\n", capture.Descriptor{Kind: capture.KindScreen}, false},
		{"file", "5\nmatch.mp4\n", capture.Descriptor{Kind: capture.KindFile, Path: "match.mp4"}, false},
		{"unknown", "7\n", capture.DefaultCamera(), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := console(tt.in)
			if got := c.Source(); got != tt.want {
				t.Fatalf("Source() = %+v, want %+v", got, tt.want)
			}
			if warned := strings.Contains(out.String(), "Invalid") || strings.Contains(out.String(), "No file"); warned != tt.warn {
				t.Fatalf("warning=%v, want %v\n%s", warned, tt.warn, out.String())
			}
		})
	}
}

func TestDeckLinkPipelineFromPrompt(t *testing.T) {
	c, _ := console("3\n\n\n")
	d := c.Source()
	want := "decklinksrc device-number=0 connection=1 mode=auto ! videoconvert ! video/x-raw,format=BGR ! appsink"
	if got := capture.DeckLinkPipeline(d.Device, d.Connection); got != want {
		t.Fatalf("pipeline %q", got)
	}
}

func TestResolveSource_FallbacksCarryWarning(t *testing.T) {
	d, warn := ResolveSource("3", SourceAnswers{Device: "", Connection: "HDMI"})
	if d != capture.DefaultCamera() || warn == "" {
		t.Fatalf("non-numeric connection should fall back with a warning: %+v %q", d, warn)
	}
	d, warn = ResolveSource("4", SourceAnswers{ScreenRect: "0,0,1920,1080"})
	if warn != "" || d.Kind != capture.KindScreen || d.Rect.Dx() != 1920 {
		t.Fatalf("unexpected screen descriptor %+v %q", d, warn)
	}
	if _, warn := ResolveSource("1", SourceAnswers{CameraIndex: "junk"}); warn != "" {
		t.Fatalf("unrelated answers must be ignored, got %q", warn)
	}
}

func TestForm_Resolve(t *testing.T) {
	tests := []struct {
		name     string
		form     Form
		interval time.Duration
		source   capture.Descriptor
		warns    int
	}{
		{"defaults", Form{IntervalIndex: 0, SourceIndex: 0}, time.Second, capture.DefaultCamera(), 0},
		{"five seconds decklink", Form{IntervalIndex: 1, SourceIndex: 2, ConnectionIndex: 1}, 5 * time.Second,
			capture.Descriptor{Kind: capture.KindDeckLink, Connection: capture.ConnectionHDMI}, 0},
		{"no selection", Form{IntervalIndex: -1, SourceIndex: -1}, time.Second, capture.DefaultCamera(), 2},
		{"bad camera index", Form{IntervalIndex: 2, SourceIndex: 1, CameraIndex: "abc"}, 10 * time.Second, capture.DefaultCamera(), 1},
		{"file", Form{SourceIndex: 4, FilePath: " game.mp4 "}, time.Second, capture.Descriptor{Kind: capture.KindFile, Path: "game.mp4"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.form.Resolve()
			if res.Interval != tt.interval || res.Source != tt.source || len(res.Warnings) != tt.warns {
				t.Fatalf("got %+v", res)
			}
		})
	}
}

func TestFormFor_ResolvesBack(t *testing.T) {
	sources := []capture.Descriptor{
		capture.DefaultCamera(),
		{Kind: capture.KindCamera, Index: 3},
		{Kind: capture.KindDeckLink, Device: 2, Connection: capture.ConnectionSDI},
		{Kind: capture.KindScreen},
		{Kind: capture.KindScreen, Rect: image.Rect(10, 20, 650, 380)},
		{Kind: capture.KindFile, Path: "match.mp4"},
	}
	for _, src := range sources {
		t.Run(src.String(), func(t *testing.T) {
			res := FormFor(src, 10*time.Second, "scores").Resolve()
			if res.Source != src || res.Interval != 10*time.Second || res.OutputDir != "scores" || len(res.Warnings) != 0 {
				t.Fatalf("got %+v", res)
			}
		})
	}
}
