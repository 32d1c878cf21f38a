package interaction

import (
	"image"
	"log/slog"

	"github.com/soocke/score-ocr-go/domain/region"
)

// State of the drawing sub-machine.
type State int

const (
	StateIdle State = iota
	StateDrawing
)

func (s State) String() string {
	if s == StateDrawing {
		return "drawing"
	}
	return "idle"
}

// Renderer redraws the committed regions and, while dragging, the preview
// rectangle over the latest frame.
type Renderer interface {
	Redraw(committed []region.Region, preview *image.Rectangle)
}

// RegionAdder is the slice of the registry the controller mutates.
type RegionAdder interface {
	Add(p1, p2 image.Point) (region.Region, error)
	List() []region.Region
}

// Controller turns a pointer event stream into registry mutations. It is only
// active during the definition phase; once disabled every event is ignored.
type Controller struct {
	registry RegionAdder
	renderer Renderer
	logger   *slog.Logger

	state    State
	anchor   image.Point
	current  image.Point
	disabled bool
}

// NewController returns an enabled controller in StateIdle.
func NewController(registry RegionAdder, renderer Renderer, logger *slog.Logger) *Controller {
	return &Controller{registry: registry, renderer: renderer, logger: logger}
}

func (c *Controller) State() State { return c.state }

// Disable stops the controller from reacting to further events and drops any
// in-progress drag.
func (c *Controller) Disable() {
	c.disabled = true
	c.state = StateIdle
}

func (c *Controller) Disabled() bool { return c.disabled }

// Preview returns the in-progress rectangle while drawing.
func (c *Controller) Preview() (image.Rectangle, bool) {
	if c.state != StateDrawing {
		return image.Rectangle{}, false
	}
	return previewRect(c.anchor, c.current), true
}

// HandlePointer advances the Idle/Drawing machine.
func (c *Controller) HandlePointer(ev PointerEvent) {
	if c.disabled {
		return
	}
	switch ev.Kind {
	case PointerDown:
		c.state = StateDrawing
		c.anchor, c.current = ev.Pos, ev.Pos
	case PointerMove:
		if c.state != StateDrawing {
			return
		}
		c.current = ev.Pos
		p := previewRect(c.anchor, c.current)
		c.redraw(&p)
	case PointerUp:
		if c.state != StateDrawing {
			return
		}
		c.state = StateIdle
		reg, err := c.registry.Add(c.anchor, ev.Pos)
		if err != nil {
			if c.logger != nil {
				c.logger.Warn("region not added", "error", err)
			}
			return
		}
		if c.logger != nil {
			c.logger.Info("region added", "id", reg.ID, "x1", reg.X1, "y1", reg.Y1, "x2", reg.X2, "y2", reg.Y2)
		}
		c.redraw(nil)
	}
}

func (c *Controller) redraw(preview *image.Rectangle) {
	if c.renderer == nil {
		return
	}
	c.renderer.Redraw(c.registry.List(), preview)
}

func previewRect(a, b image.Point) image.Rectangle {
	n := region.Normalize(a, b)
	return n.Rect()
}
