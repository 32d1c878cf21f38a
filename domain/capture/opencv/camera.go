// Package opencv provides camera, DeckLink and video file sources through
// gocv. Importing it registers the backend with the capture package:
//
//	import _ "github.com/soocke/score-ocr-go/domain/capture/opencv"
package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/soocke/score-ocr-go/domain/capture"
)

func init() { capture.RegisterDevice(Open) }

// CameraSource reads frames through OpenCV: local cameras, GStreamer
// pipelines (DeckLink) and video files.
type CameraSource struct {
	vc    *gocv.VideoCapture
	mat   gocv.Mat
	label string
}

// Open opens the device named by desc. Failures wrap capture.ErrSourceUnavailable.
func Open(desc capture.Descriptor) (capture.Source, error) {
	var (
		vc  *gocv.VideoCapture
		err error
	)
	switch desc.Kind {
	case capture.KindDeckLink:
		vc, err = gocv.OpenVideoCaptureWithAPI(capture.DeckLinkPipeline(desc.Device, desc.Connection), gocv.VideoCaptureGstreamer)
	case capture.KindFile:
		vc, err = gocv.VideoCaptureFile(desc.Path)
	default:
		vc, err = gocv.VideoCaptureDevice(desc.Index)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", capture.ErrSourceUnavailable, desc, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("%w: %s", capture.ErrSourceUnavailable, desc)
	}
	return &CameraSource{vc: vc, mat: gocv.NewMat(), label: desc.String()}, nil
}

func (c *CameraSource) ReadFrame() (image.Image, error) {
	if ok := c.vc.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, fmt.Errorf("%w: %s", capture.ErrEndOfStream, c.label)
	}
	img, err := c.mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: convert frame: %v", capture.ErrEndOfStream, c.label, err)
	}
	return img, nil
}

func (c *CameraSource) Close() error {
	_ = c.mat.Close()
	return c.vc.Close()
}
