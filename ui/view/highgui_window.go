package view

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"gocv.io/x/gocv"

	"github.com/soocke/score-ocr-go/domain/interaction"
)

// OpenCV mouse event codes delivered to the mouse handler.
const (
	cvEventMouseMove   = 0
	cvEventLButtonDown = 1
	cvEventLButtonUp   = 4
)

// HighGUIWindow shows frames in an OpenCV window and collects mouse drags and
// key presses. The mouse handler runs inside WaitKey on the calling
// goroutine, so the pending queue needs no locking.
type HighGUIWindow struct {
	win     *gocv.Window
	logger  *slog.Logger
	pending []interaction.Event
	mat     gocv.Mat
	keys    KeyMap
}

// KeyMap assigns keyboard characters to operator signals.
type KeyMap struct {
	Commit rune
	Quit   rune
}

// DefaultKeyMap is 'd' to commit regions and 'q' to quit.
func DefaultKeyMap() KeyMap { return KeyMap{Commit: 'd', Quit: 'q'} }

// Translate maps a WaitKey code to a key signal.
func (k KeyMap) Translate(code int) interaction.Key {
	if code < 0 {
		return interaction.KeyNone
	}
	switch rune(code & 0xFF) {
	case k.Commit:
		return interaction.KeyCommit
	case k.Quit:
		return interaction.KeyQuit
	}
	return interaction.KeyNone
}

// TranslateMouse maps an OpenCV mouse event to a pointer event; ok is false
// for events the session does not use (right button, wheel, double click).
func TranslateMouse(event, x, y int) (interaction.Event, bool) {
	switch event {
	case cvEventLButtonDown:
		return interaction.PointerAt(interaction.PointerDown, x, y), true
	case cvEventMouseMove:
		return interaction.PointerAt(interaction.PointerMove, x, y), true
	case cvEventLButtonUp:
		return interaction.PointerAt(interaction.PointerUp, x, y), true
	}
	return interaction.Event{}, false
}

func NewHighGUIWindow(title string, keys KeyMap, logger *slog.Logger) *HighGUIWindow {
	if logger == nil {
		logger = slog.Default()
	}
	w := &HighGUIWindow{win: gocv.NewWindow(title), logger: logger, mat: gocv.NewMat(), keys: keys}
	w.win.SetMouseHandler(func(event, x, y, _ int, _ interface{}) {
		if ev, ok := TranslateMouse(event, x, y); ok {
			w.pending = append(w.pending, ev)
		}
	}, nil)
	return w
}

// Show converts img to BGR and displays it.
func (w *HighGUIWindow) Show(img image.Image) error {
	rgba, err := gocv.ImageToMatRGBA(img)
	if err != nil {
		return fmt.Errorf("convert frame: %w", err)
	}
	defer rgba.Close()
	gocv.CvtColor(rgba, &w.mat, gocv.ColorRGBAToBGR)
	w.win.IMShow(w.mat)
	return nil
}

// Poll pumps the HighGUI event loop for up to timeout and returns queued
// mouse events followed by at most one key event. Closing the window counts
// as quit.
func (w *HighGUIWindow) Poll(timeout time.Duration) ([]interaction.Event, error) {
	ms := int(timeout / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	code := w.win.WaitKey(ms)
	events := w.pending
	w.pending = nil
	if k := w.keys.Translate(code); k != interaction.KeyNone {
		events = append(events, interaction.KeyEvent(k))
	}
	if !w.win.IsOpen() {
		w.logger.Info("display window closed")
		events = append(events, interaction.KeyEvent(interaction.KeyQuit))
	}
	return events, nil
}

func (w *HighGUIWindow) Close() error {
	_ = w.mat.Close()
	return w.win.Close()
}
