package capture

import (
	"fmt"
	"log/slog"
	"strings"
)

// DeviceOpener opens the OpenCV-backed kinds: cameras, DeckLink pipelines and
// video files.
type DeviceOpener func(desc Descriptor) (Source, error)

var deviceOpener DeviceOpener

// RegisterDevice installs the device backend; the opencv subpackage calls it
// from init.
func RegisterDevice(open DeviceOpener) { deviceOpener = open }

func openDevice(desc Descriptor) (Source, error) {
	if deviceOpener == nil {
		return nil, fmt.Errorf("%w: %s: no video device backend linked", ErrSourceUnavailable, desc)
	}
	return deviceOpener(desc)
}

// Open constructs the source named by desc. Failures wrap ErrSourceUnavailable.
func Open(desc Descriptor, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var (
		src Source
		err error
	)
	switch desc.Kind {
	case KindScreen:
		src, err = openScreen(desc)
	case KindFile:
		if IsStillImage(desc.Path) {
			src, err = openStill(desc.Path)
		} else {
			src, err = openDevice(desc)
		}
	case KindDeckLink:
		logger.Info("opening decklink input",
			"device", desc.Device,
			"connection", ConnectionName(desc.Connection),
			"pipeline", DeckLinkPipeline(desc.Device, desc.Connection),
		)
		src, err = openDevice(desc)
	default:
		src, err = openDevice(desc)
	}
	if err != nil {
		return nil, err
	}
	logger.Info("video source opened", "source", desc.String())
	return NewMetered(src, logger), nil
}

// Diagnostic returns operator guidance for a source that failed to open.
func Diagnostic(desc Descriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: Could not open video source %s.\n", desc)
	switch desc.Kind {
	case KindDeckLink:
		b.WriteString("Make sure:\n")
		b.WriteString("  1. The DeckLink / Web Presenter device is connected and has a signal\n")
		fmt.Fprintf(&b, "  2. Device %d is correct and the input is on %s\n", desc.Device, ConnectionName(desc.Connection))
		b.WriteString("  3. Blackmagic Desktop Video drivers are installed\n")
		b.WriteString("  4. OpenCV was built with GStreamer support (decklinksrc plugin available)\n")
	case KindCamera:
		b.WriteString("Check that the camera is connected and not in use by another application.\n")
	case KindScreen:
		b.WriteString("Screen capture needs an active desktop session.\n")
	case KindFile:
		b.WriteString("Check that the file exists and is a supported video or image format.\n")
	}
	return b.String()
}
