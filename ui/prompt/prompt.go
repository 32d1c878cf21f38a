// Package prompt asks the operator for session settings on the console.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/score-ocr-go/domain/capture"
)

// Intervals maps menu choices to batch intervals.
var Intervals = map[string]time.Duration{
	"1": 1 * time.Second,
	"2": 5 * time.Second,
	"3": 10 * time.Second,
}

// DefaultInterval is used for any unrecognised interval choice.
const DefaultInterval = time.Second

// ParseInterval maps a menu choice to an interval. ok is false when the
// choice was not recognised and the default was used.
func ParseInterval(choice string) (d time.Duration, ok bool) {
	if d, ok := Intervals[strings.TrimSpace(choice)]; ok {
		return d, true
	}
	return DefaultInterval, false
}

// Console reads answers line by line. A closed input is treated as an empty
// answer so every question falls back to its default.
type Console struct {
	in     *bufio.Scanner
	out    io.Writer
	logger *slog.Logger
}

func NewConsole(in io.Reader, out io.Writer, logger *slog.Logger) *Console {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{in: bufio.NewScanner(in), out: out, logger: logger}
}

func (c *Console) ask(question string) string {
	fmt.Fprint(c.out, question)
	if !c.in.Scan() {
		return ""
	}
	return strings.TrimSpace(c.in.Text())
}

func (c *Console) warn(msg string) {
	fmt.Fprintln(c.out, msg)
	c.logger.Warn("invalid operator input", "detail", msg)
}

// Interval asks for the refresh rate.
func (c *Console) Interval() time.Duration {
	fmt.Fprintln(c.out, "\nSelect refresh rate for text extraction:")
	fmt.Fprintln(c.out, "1. 1 second")
	fmt.Fprintln(c.out, "2. 5 seconds")
	fmt.Fprintln(c.out, "3. 10 seconds")
	d, ok := ParseInterval(c.ask("Enter choice (1/2/3): "))
	if !ok {
		c.warn("Invalid choice, defaulting to 1 second.")
	}
	return d
}

// SourceAnswers are the follow-up answers for a source choice. Only the
// fields relevant to the choice are read.
type SourceAnswers struct {
	CameraIndex string
	Device      string
	Connection  string
	ScreenRect  string
	FilePath    string
}

// ResolveSource turns a menu choice ("1" to "5") and its follow-up answers
// into a descriptor. Invalid input falls back to the default camera and
// returns the warning to show the operator.
func ResolveSource(choice string, a SourceAnswers) (capture.Descriptor, string) {
	switch strings.TrimSpace(choice) {
	case "1":
		return capture.DefaultCamera(), ""
	case "2":
		index, err := strconv.Atoi(strings.TrimSpace(a.CameraIndex))
		if err != nil || index < 0 {
			return capture.DefaultCamera(), "Invalid camera index. Defaulting to webcam (index 0)."
		}
		return capture.Descriptor{Kind: capture.KindCamera, Index: index}, ""
	case "3":
		d := capture.Descriptor{Kind: capture.KindDeckLink, Connection: capture.ConnectionHDMI}
		const invalid = "Invalid input for device number or connection. Defaulting to webcam (index 0)."
		if s := strings.TrimSpace(a.Device); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return capture.DefaultCamera(), invalid
			}
			d.Device = n
		}
		if s := strings.TrimSpace(a.Connection); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil || n < 0 {
				return capture.DefaultCamera(), invalid
			}
			d.Connection = n
		}
		return d, ""
	case "4":
		rect := strings.TrimSpace(a.ScreenRect)
		if rect == "" {
			return capture.Descriptor{Kind: capture.KindScreen}, ""
		}
		d, err := capture.ParseDescriptor("screen:" + rect)
		if err != nil {
			return capture.DefaultCamera(), "Invalid screen area. Defaulting to webcam (index 0)."
		}
		return d, ""
	case "5":
		path := strings.TrimSpace(a.FilePath)
		if path == "" {
			return capture.DefaultCamera(), "No file given. Defaulting to webcam (index 0)."
		}
		return capture.Descriptor{Kind: capture.KindFile, Path: path}, ""
	default:
		return capture.DefaultCamera(), "Invalid choice, defaulting to default webcam."
	}
}

// Source asks for the video source, with follow-up questions for camera
// index, DeckLink addressing, screen area or file path.
func (c *Console) Source() capture.Descriptor {
	fmt.Fprintln(c.out, "\nSelect video source:")
	fmt.Fprintln(c.out, "1. Default webcam (index 0)")
	fmt.Fprintln(c.out, "2. Specify webcam index")
	fmt.Fprintln(c.out, "3. Blackmagic device (DeckLink/WebPresenter)")
	fmt.Fprintln(c.out, "4. Screen capture")
	fmt.Fprintln(c.out, "5. Video or image file")
	choice := c.ask("Enter choice (1/2/3/4/5): ")
	var a SourceAnswers
	switch choice {
	case "2":
		a.CameraIndex = c.ask("Enter camera index: ")
	case "3":
		a.Device = c.ask("Enter device number (default 0): ")
		if _, err := strconv.Atoi(a.Device); a.Device == "" || err == nil {
			a.Connection = c.ask("Enter connection (0=SDI, 1=HDMI, 2=Optical SDI, 3=Component, 4=Composite, 5=S-Video, default 1=HDMI): ")
		}
	case "4":
		a.ScreenRect = c.ask("Enter screen area as x,y,w,h (empty for full screen): ")
	case "5":
		a.FilePath = c.ask("Enter file path: ")
	}
	d, warning := ResolveSource(choice, a)
	if warning != "" {
		c.warn(warning)
	}
	return d
}
