package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gotoolpath/pkg/geometry"
	"github.com/philipparndt/gotoolpath/pkg/toolpath"
)

// SegmentInfo contains information about a segment of a path
type SegmentInfo struct {
	Kind   toolpath.Kind
	Start  geometry.Vector2
	End    geometry.Vector2
	Length float64
	Path   string
	Index  int
}

// PathInfo summarizes a single ordered path
type PathInfo struct {
	Name        string
	Segments    int
	Closed      bool
	Direction   int
	Length      float64
	Area        float64
	BoundingBox geometry.BoundingBox
}

// MeasurementResult contains various measurements of a set of paths
type MeasurementResult struct {
	BoundingBox      geometry.BoundingBox
	Dimensions       geometry.Vector2
	TotalLength      float64
	PathCount        int
	ClosedCount      int
	SegmentCount     int
	LineCount        int
	ArcCount         int
	MinSegmentLength float64
	MaxSegmentLength float64
	AvgSegmentLength float64
	Paths            []PathInfo
	AllSegments      []SegmentInfo
}

// AnalyzePaths performs comprehensive analysis on ordered paths
func AnalyzePaths(paths []*toolpath.Path) *MeasurementResult {
	result := &MeasurementResult{
		BoundingBox: geometry.NewBoundingBox(),
		PathCount:   len(paths),
		AllSegments: make([]SegmentInfo, 0),
	}

	minLength := math.MaxFloat64
	maxLength := 0.0

	for _, p := range paths {
		info := PathInfo{
			Name:        p.Name,
			Segments:    p.Len(),
			Closed:      p.IsClosed(),
			Direction:   p.Direction(),
			Length:      p.Length(),
			BoundingBox: p.Bounds(),
		}
		if info.Closed {
			info.Area = math.Abs(p.SignedArea())
			result.ClosedCount++
		}
		result.Paths = append(result.Paths, info)
		result.BoundingBox.Merge(info.BoundingBox)
		result.TotalLength += info.Length

		for i, s := range p.Segments() {
			length := s.Length()
			result.AllSegments = append(result.AllSegments, SegmentInfo{
				Kind:   s.Kind,
				Start:  s.Start,
				End:    s.End,
				Length: length,
				Path:   p.Name,
				Index:  i,
			})

			if s.Kind.IsArc() {
				result.ArcCount++
			} else {
				result.LineCount++
			}
			minLength = math.Min(minLength, length)
			maxLength = math.Max(maxLength, length)
		}
	}

	result.SegmentCount = len(result.AllSegments)
	if result.SegmentCount > 0 {
		result.MinSegmentLength = minLength
		result.MaxSegmentLength = maxLength
		result.AvgSegmentLength = result.TotalLength / float64(result.SegmentCount)
		result.Dimensions = result.BoundingBox.Size()
	}

	return result
}

// FindSegmentsByLength finds all segments within a length range
func FindSegmentsByLength(result *MeasurementResult, minLength, maxLength float64) []SegmentInfo {
	var segments []SegmentInfo
	for _, s := range result.AllSegments {
		if s.Length >= minLength && s.Length <= maxLength {
			segments = append(segments, s)
		}
	}
	return segments
}

// FindLongestSegments returns the N longest segments
func FindLongestSegments(result *MeasurementResult, count int) []SegmentInfo {
	return sortedSegments(result, count, func(a, b SegmentInfo) bool {
		return a.Length > b.Length
	})
}

// FindShortestSegments returns the N shortest segments
func FindShortestSegments(result *MeasurementResult, count int) []SegmentInfo {
	return sortedSegments(result, count, func(a, b SegmentInfo) bool {
		return a.Length < b.Length
	})
}

func sortedSegments(result *MeasurementResult, count int, less func(a, b SegmentInfo) bool) []SegmentInfo {
	segments := make([]SegmentInfo, len(result.AllSegments))
	copy(segments, result.AllSegments)

	sort.SliceStable(segments, func(i, j int) bool {
		return less(segments[i], segments[j])
	})

	if count > len(segments) {
		count = len(segments)
	}
	return segments[:count]
}

// FindNearestVertex finds the segment endpoint nearest to a given point
func FindNearestVertex(paths []*toolpath.Path, point geometry.Vector2) (geometry.Vector2, float64) {
	var nearest geometry.Vector2
	minDistance := math.MaxFloat64

	for _, p := range paths {
		for _, s := range p.Segments() {
			for _, vertex := range []geometry.Vector2{s.Start, s.End} {
				if d := point.Distance(vertex); d < minDistance {
					minDistance = d
					nearest = vertex
				}
			}
		}
	}

	return nearest, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "mm"
	}
	return fmt.Sprintf("%.4f %s", value, unit)
}

// FormatVector formats a 2D vector
func FormatVector(v geometry.Vector2) string {
	return fmt.Sprintf("(%.4f, %.4f)", v.X, v.Y)
}

// FormatDirection names the winding returned by Path.Direction
func FormatDirection(direction int) string {
	switch {
	case direction > 0:
		return "clockwise"
	case direction < 0:
		return "counter-clockwise"
	}
	return "open"
}
