package capture

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Kind selects the frame source implementation.
type Kind int

const (
	KindCamera Kind = iota
	KindDeckLink
	KindScreen
	KindFile
)

func (k Kind) String() string {
	switch k {
	case KindCamera:
		return "camera"
	case KindDeckLink:
		return "decklink"
	case KindScreen:
		return "screen"
	case KindFile:
		return "file"
	default:
		return "unknown"
	}
}

// DeckLink connection codes accepted by decklinksrc.
const (
	ConnectionSDI        = 0
	ConnectionHDMI       = 1
	ConnectionOpticalSDI = 2
	ConnectionComponent  = 3
	ConnectionComposite  = 4
	ConnectionSVideo     = 5
)

var connectionNames = map[int]string{
	ConnectionSDI:        "SDI",
	ConnectionHDMI:       "HDMI",
	ConnectionOpticalSDI: "Optical SDI",
	ConnectionComponent:  "Component",
	ConnectionComposite:  "Composite",
	ConnectionSVideo:     "S-Video",
}

// ConnectionName returns a human label for a DeckLink connection code.
func ConnectionName(c int) string {
	if n, ok := connectionNames[c]; ok {
		return n
	}
	return "connection " + strconv.Itoa(c)
}

// Descriptor identifies a frame source. It is immutable once a session starts.
type Descriptor struct {
	Kind Kind
	// Index is the camera index for KindCamera.
	Index int
	// Device and Connection address a DeckLink input.
	Device     int
	Connection int
	// Rect limits a screen capture; empty means the full primary screen.
	Rect image.Rectangle
	// Path is a video or image file for KindFile.
	Path string
}

// DefaultCamera is the fallback source for invalid input.
func DefaultCamera() Descriptor { return Descriptor{Kind: KindCamera} }

// DeckLinkPipeline returns the GStreamer pipeline used to read a DeckLink or
// Web Presenter input through OpenCV.
func DeckLinkPipeline(device, connection int) string {
	return fmt.Sprintf("decklinksrc device-number=%d connection=%d mode=auto ! videoconvert ! video/x-raw,format=BGR ! appsink", device, connection)
}

func (d Descriptor) String() string {
	switch d.Kind {
	case KindCamera:
		return "camera:" + strconv.Itoa(d.Index)
	case KindDeckLink:
		return fmt.Sprintf("decklink:%d:%d", d.Device, d.Connection)
	case KindScreen:
		if d.Rect.Empty() {
			return "screen"
		}
		r := d.Rect
		return fmt.Sprintf("screen:%d,%d,%d,%d", r.Min.X, r.Min.Y, r.Dx(), r.Dy())
	case KindFile:
		return "file:" + d.Path
	}
	return "unknown"
}

// ParseDescriptor reads the textual form used on the command line and in the
// config file:
//
//	camera | camera:<index>
//	decklink | decklink:<device> | decklink:<device>:<connection>
//	screen | screen:<x>,<y>,<w>,<h>
//	file:<path>
func ParseDescriptor(s string) (Descriptor, error) {
	s = strings.TrimSpace(s)
	kind, arg, hasArg := strings.Cut(s, ":")
	switch strings.ToLower(kind) {
	case "", "camera":
		d := DefaultCamera()
		if hasArg {
			n, err := strconv.Atoi(strings.TrimSpace(arg))
			if err != nil || n < 0 {
				return DefaultCamera(), fmt.Errorf("invalid camera index %q", arg)
			}
			d.Index = n
		}
		return d, nil
	case "decklink":
		d := Descriptor{Kind: KindDeckLink, Connection: ConnectionHDMI}
		if !hasArg {
			return d, nil
		}
		dev, conn, hasConn := strings.Cut(arg, ":")
		if strings.TrimSpace(dev) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(dev))
			if err != nil || n < 0 {
				return DefaultCamera(), fmt.Errorf("invalid decklink device %q", dev)
			}
			d.Device = n
		}
		if hasConn && strings.TrimSpace(conn) != "" {
			n, err := strconv.Atoi(strings.TrimSpace(conn))
			if err != nil || n < 0 {
				return DefaultCamera(), fmt.Errorf("invalid decklink connection %q", conn)
			}
			d.Connection = n
		}
		return d, nil
	case "screen":
		d := Descriptor{Kind: KindScreen}
		if !hasArg {
			return d, nil
		}
		r, err := parseRect(arg)
		if err != nil {
			return DefaultCamera(), err
		}
		d.Rect = r
		return d, nil
	case "file":
		if strings.TrimSpace(arg) == "" {
			return DefaultCamera(), fmt.Errorf("file source needs a path")
		}
		return Descriptor{Kind: KindFile, Path: strings.TrimSpace(arg)}, nil
	}
	return DefaultCamera(), fmt.Errorf("unknown source kind %q", kind)
}

func parseRect(s string) (image.Rectangle, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return image.Rectangle{}, fmt.Errorf("screen rect must be x,y,w,h: %q", s)
	}
	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return image.Rectangle{}, fmt.Errorf("screen rect: %w", err)
		}
		v[i] = n
	}
	if v[2] <= 0 || v[3] <= 0 {
		return image.Rectangle{}, fmt.Errorf("screen rect needs positive size: %q", s)
	}
	return image.Rect(v[0], v[1], v[0]+v[2], v[1]+v[3]), nil
}
