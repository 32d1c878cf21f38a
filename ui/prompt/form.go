package prompt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/score-ocr-go/domain/capture"
)

// Form holds the raw answers collected by a graphical setup form. Indexes
// are zero-based menu positions; -1 means nothing was selected.
type Form struct {
	IntervalIndex   int
	SourceIndex     int
	CameraIndex     string
	Device          string
	ConnectionIndex int
	ScreenRect      string
	FilePath        string
	OutputDir       string
}

// Result is the session configuration chosen in a setup form.
type Result struct {
	Interval  time.Duration
	Source    capture.Descriptor
	OutputDir string
	Warnings  []string
}

// Resolve applies the same fallbacks as the console prompts.
func (f Form) Resolve() Result {
	var res Result
	interval, ok := ParseInterval(strconv.Itoa(f.IntervalIndex + 1))
	if !ok {
		res.Warnings = append(res.Warnings, "Invalid choice, defaulting to 1 second.")
	}
	res.Interval = interval
	conn := ""
	if f.ConnectionIndex >= 0 {
		conn = strconv.Itoa(f.ConnectionIndex)
	}
	src, warning := ResolveSource(strconv.Itoa(f.SourceIndex+1), SourceAnswers{
		CameraIndex: f.CameraIndex,
		Device:      f.Device,
		Connection:  conn,
		ScreenRect:  f.ScreenRect,
		FilePath:    f.FilePath,
	})
	if warning != "" {
		res.Warnings = append(res.Warnings, warning)
	}
	res.Source = src
	res.OutputDir = strings.TrimSpace(f.OutputDir)
	return res
}

// FormFor fills a form with the answers that reproduce desc, interval and
// outputDir, so a form can start from the current config.
func FormFor(desc capture.Descriptor, interval time.Duration, outputDir string) Form {
	f := Form{
		CameraIndex:     "0",
		Device:          "0",
		ConnectionIndex: capture.ConnectionHDMI,
		OutputDir:       outputDir,
	}
	switch interval {
	case 5 * time.Second:
		f.IntervalIndex = 1
	case 10 * time.Second:
		f.IntervalIndex = 2
	}
	switch desc.Kind {
	case capture.KindCamera:
		if desc.Index != 0 {
			f.SourceIndex = 1
			f.CameraIndex = strconv.Itoa(desc.Index)
		}
	case capture.KindDeckLink:
		f.SourceIndex = 2
		f.Device = strconv.Itoa(desc.Device)
		f.ConnectionIndex = desc.Connection
	case capture.KindScreen:
		f.SourceIndex = 3
		if !desc.Rect.Empty() {
			r := desc.Rect
			f.ScreenRect = fmt.Sprintf("%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
		}
	case capture.KindFile:
		f.SourceIndex = 4
		f.FilePath = desc.Path
	}
	return f
}
