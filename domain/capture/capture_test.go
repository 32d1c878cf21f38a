package capture

import (
	"errors"
	"image"
	"log/slog"
	"strings"
	"testing"
)

var discardLogger = slog.New(slog.NewTextHandler(&discardWriter{}, nil))

type discardWriter struct{}

func (d *discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func TestDeckLinkPipeline(t *testing.T) {
	got := DeckLinkPipeline(0, 1)
	want := "decklinksrc device-number=0 connection=1 mode=auto ! videoconvert ! video/x-raw,format=BGR ! appsink"
	if got != want {
		t.Fatalf("pipeline mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestParseDescriptor(t *testing.T) {
	tests := []struct {
		in      string
		want    Descriptor
		wantErr bool
	}{
		{"", Descriptor{Kind: KindCamera}, false},
		{"camera", Descriptor{Kind: KindCamera}, false},
		{"camera:2", Descriptor{Kind: KindCamera, Index: 2}, false},
		{"camera:abc", DefaultCamera(), true},
		{"decklink", Descriptor{Kind: KindDeckLink, Connection: ConnectionHDMI}, false},
		{"decklink:1", Descriptor{Kind: KindDeckLink, Device: 1, Connection: ConnectionHDMI}, false},
		{"decklink:1:0", Descriptor{Kind: KindDeckLink, Device: 1, Connection: ConnectionSDI}, false},
		{"decklink:x", DefaultCamera(), true},
		{"screen", Descriptor{Kind: KindScreen}, false},
		{"screen:10,20,300,100", Descriptor{Kind: KindScreen, Rect: image.Rect(10, 20, 310, 120)}, false},
		{"screen:1,2,3", DefaultCamera(), true},
		{"file:match.mp4", Descriptor{Kind: KindFile, Path: "match.mp4"}, false},
		{"file:", DefaultCamera(), true},
		{"ndi", DefaultCamera(), true},
	}
	for _, tt := range tests {
		got, err := ParseDescriptor(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDescriptor(%q) err=%v wantErr=%v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDescriptor(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDescriptorStringRoundTrip(t *testing.T) {
	for _, s := range []string{"camera:3", "decklink:2:0", "screen:0,0,640,480", "file:clip.mov"} {
		d, err := ParseDescriptor(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		if d.String() != s {
			t.Errorf("String() = %q, want %q", d.String(), s)
		}
	}
}

func TestDiagnosticMentionsDeckLinkChecks(t *testing.T) {
	msg := Diagnostic(Descriptor{Kind: KindDeckLink, Device: 0, Connection: ConnectionHDMI})
	for _, want := range []string{"Desktop Video", "GStreamer", "HDMI"} {
		if !strings.Contains(msg, want) {
			t.Errorf("diagnostic missing %q:\n%s", want, msg)
		}
	}
}

type scriptedSource struct {
	frames []image.Image
	closed bool
}

func (s *scriptedSource) ReadFrame() (image.Image, error) {
	if len(s.frames) == 0 {
		return nil, ErrEndOfStream
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

func (s *scriptedSource) Close() error { s.closed = true; return nil }

func TestMetered_CountsFramesAndFailures(t *testing.T) {
	inner := &scriptedSource{frames: []image.Image{
		image.NewRGBA(image.Rect(0, 0, 4, 3)),
		image.NewRGBA(image.Rect(0, 0, 4, 3)),
	}}
	m := NewMetered(inner, discardLogger)
	for i := 0; i < 2; i++ {
		if _, err := m.ReadFrame(); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	if _, err := m.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("expected end of stream, got %v", err)
	}
	st := m.Stats()
	if st.Frames != 2 || st.Failures != 1 || st.LastSize != image.Pt(4, 3) {
		t.Fatalf("unexpected stats %+v", st)
	}
	_ = m.Close()
	if !inner.closed {
		t.Fatalf("close not forwarded")
	}
}

func TestStillSource_RepeatsUntilClosed(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	s := NewStillSource(img)
	for i := 0; i < 3; i++ {
		got, err := s.ReadFrame()
		if err != nil || got != image.Image(img) {
			t.Fatalf("read %d: %v", i, err)
		}
	}
	_ = s.Close()
	if _, err := s.ReadFrame(); !errors.Is(err, ErrEndOfStream) {
		t.Fatalf("expected end of stream after close, got %v", err)
	}
}

func TestIsStillImage(t *testing.T) {
	if !IsStillImage("board.PNG") || IsStillImage("match.mp4") {
		t.Fatalf("extension detection wrong")
	}
}

func TestOpen_DeviceBackend(t *testing.T) {
	prev := deviceOpener
	defer func() { deviceOpener = prev }()

	RegisterDevice(nil)
	if _, err := Open(Descriptor{Kind: KindCamera, Index: 2}, discardLogger); !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("expected unavailable without a backend, got %v", err)
	}

	var opened []Descriptor
	RegisterDevice(func(d Descriptor) (Source, error) {
		opened = append(opened, d)
		return &scriptedSource{}, nil
	})
	src, err := Open(Descriptor{Kind: KindDeckLink, Device: 1, Connection: ConnectionSDI}, discardLogger)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := src.(*Metered); !ok {
		t.Fatalf("expected metered source, got %T", src)
	}
	if len(opened) != 1 || opened[0].Kind != KindDeckLink || opened[0].Device != 1 {
		t.Fatalf("backend not called with descriptor: %+v", opened)
	}
	if _, err := Open(Descriptor{Kind: KindFile, Path: "match.mp4"}, discardLogger); err != nil || len(opened) != 2 {
		t.Fatalf("video files should go through the device backend: %v %+v", err, opened)
	}
}
