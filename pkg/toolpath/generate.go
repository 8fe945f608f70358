package toolpath

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Side selects where the tool runs relative to a contour
type Side int

const (
	SideOn Side = iota
	SideOutside
	SideInside
	SideLeft
	SideRight
)

var sideNames = map[Side]string{
	SideOn:      "on",
	SideOutside: "outside",
	SideInside:  "inside",
	SideLeft:    "left",
	SideRight:   "right",
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// ParseSide converts a side name as used in configuration and flags
func ParseSide(name string) (Side, error) {
	for side, n := range sideNames {
		if strings.EqualFold(n, name) {
			return side, nil
		}
	}
	return SideOn, fmt.Errorf("unknown side %q (expected on, outside, inside, left or right)", name)
}

// Options control tool radius compensation
type Options struct {
	ToolRadius float64
	Side       Side
}

// Result holds the ordered source contours of a layer and the compensated
// toolpaths derived from them
type Result struct {
	Name      string
	Contours  []*Path
	Toolpaths []*Path
}

// SignedOffset returns the offset distance for a contour. Outside and
// inside follow the winding of closed contours; open contours treat outside
// as left.
func SignedOffset(contour *Path, radius float64, side Side) float64 {
	dir := float64(contour.Direction())
	if dir == 0 {
		dir = 1
	}
	switch side {
	case SideOutside:
		return radius * dir
	case SideInside:
		return -radius * dir
	case SideLeft:
		return radius
	case SideRight:
		return -radius
	}
	return 0
}

// Generate turns the primitives of one layer into ordered contours and
// their compensated toolpaths
func Generate(name string, entities []Entity, opts Options) *Result {
	start := time.Now()
	result := &Result{
		Name:     name,
		Contours: FromLayer(name, entities).Order(),
	}

	for _, contour := range result.Contours {
		result.Toolpaths = append(result.Toolpaths, Compensate(contour, opts)...)
	}

	Logger().Debug("generate", "layer", name, "entities", len(entities),
		"contours", len(result.Contours), "toolpaths", len(result.Toolpaths),
		"elapsed", time.Since(start))
	return result
}

// Compensate offsets one ordered contour for the tool radius, removes the
// folded back parts and splices closed islands back into the main loop.
// The contour itself is left untouched.
func Compensate(contour *Path, opts Options) []*Path {
	d := SignedOffset(contour, opts.ToolRadius, opts.Side)
	if d == 0 {
		return []*Path{contour.Clone()}
	}

	offset := contour.Offset(d)
	offset.RemoveZeroLength()
	offset.Intersect()
	offset.RemoveExcluded(contour, d)

	pieces := offset.Order()
	if len(pieces) == 0 {
		Logger().Warn("toolpath vanished", "path", contour.Name, "offset", d)
		return nil
	}

	slices.SortStableFunc(pieces, func(a, b *Path) int {
		return cmp.Compare(b.Length(), a.Length())
	})
	main := pieces[0]
	rest, _ := main.MergeLoops(pieces[1:])
	return append([]*Path{main}, rest...)
}
