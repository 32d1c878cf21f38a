package region

import (
	"errors"
	"image"
	"strconv"
)

// ErrFrozen is returned by Add once the registry has been frozen for extraction.
var ErrFrozen = errors.New("region registry is frozen")

// LabelOffset is the position of a region's numeric label relative to its
// top-right corner.
var LabelOffset = image.Pt(-15, 15)

// Region is an operator-drawn rectangle in frame coordinates. X1<=X2 and Y1<=Y2
// always hold. ID is 1-based and stable for the lifetime of the session.
type Region struct {
	ID     int
	X1, Y1 int
	X2, Y2 int
}

// Rect returns the region as an image.Rectangle (Max exclusive).
func (r Region) Rect() image.Rectangle {
	return image.Rectangle{Min: image.Pt(r.X1, r.Y1), Max: image.Pt(r.X2, r.Y2)}
}

// ZeroArea reports whether the rectangle is degenerate.
func (r Region) ZeroArea() bool { return r.X1 == r.X2 || r.Y1 == r.Y2 }

// Label is the text drawn next to the region.
func (r Region) Label() string { return strconv.Itoa(r.ID) }

// LabelAnchor is the baseline origin of the region label.
func (r Region) LabelAnchor() image.Point {
	return image.Pt(r.X2, r.Y1).Add(LabelOffset)
}

// Normalize orders two arbitrary corner points into a Region without an ID.
func Normalize(p1, p2 image.Point) Region {
	r := Region{X1: p1.X, Y1: p1.Y, X2: p2.X, Y2: p2.Y}
	if r.X1 > r.X2 {
		r.X1, r.X2 = r.X2, r.X1
	}
	if r.Y1 > r.Y2 {
		r.Y1, r.Y2 = r.Y2, r.Y1
	}
	return r
}

// Registry owns the ordered set of regions of one session. It is not safe for
// concurrent use; the session loop is its only mutator.
type Registry struct {
	regions []Region
	frozen  bool
}

// NewRegistry returns an empty, open registry.
func NewRegistry() *Registry { return &Registry{} }

// Add normalizes the corners, assigns the next sequential ID and appends the
// region. Zero-area input is accepted.
func (r *Registry) Add(p1, p2 image.Point) (Region, error) {
	if r.frozen {
		return Region{}, ErrFrozen
	}
	reg := Normalize(p1, p2)
	reg.ID = len(r.regions) + 1
	r.regions = append(r.regions, reg)
	return reg, nil
}

// List returns a copy of the regions in creation order.
func (r *Registry) List() []Region {
	out := make([]Region, len(r.regions))
	copy(out, r.regions)
	return out
}

func (r *Registry) IsEmpty() bool { return len(r.regions) == 0 }
func (r *Registry) Len() int      { return len(r.regions) }

// Freeze makes the registry read-only. It cannot be undone.
func (r *Registry) Freeze()      { r.frozen = true }
func (r *Registry) Frozen() bool { return r.frozen }
