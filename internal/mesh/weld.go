package mesh

import (
	gomath "math"

	"github.com/Faultbox/brickyard/pkg/math"
)

// DefaultWeldDigits is the number of decimal digits vertices are rounded to
// when deciding whether they coincide.
const DefaultWeldDigits = 4

// Weld merges vertices that round to the same position at digits decimal
// places and remaps every index list.
//
// The first occurrence of a position keeps its original, unrounded value and
// output vertices keep first-occurrence order. Index lists keep their length
// and order; only the referenced vertices change.
func Weld(vertices []math.Vec3, lists [][]uint32, digits int) ([]math.Vec3, [][]uint32) {
	scale := gomath.Pow(10, float64(digits))
	quantize := func(v float64) int64 {
		return int64(gomath.Round(v * scale))
	}

	// Group vertices by quantized position for O(n) lookup
	seen := make(map[[3]int64]uint32, len(vertices))
	remap := make([]uint32, len(vertices))
	welded := make([]math.Vec3, 0, len(vertices))
	for i, v := range vertices {
		key := [3]int64{quantize(v.X), quantize(v.Y), quantize(v.Z)}
		if idx, ok := seen[key]; ok {
			remap[i] = idx
			continue
		}
		idx := uint32(len(welded))
		seen[key] = idx
		remap[i] = idx
		welded = append(welded, v)
	}

	out := make([][]uint32, len(lists))
	for i, list := range lists {
		out[i] = make([]uint32, len(list))
		for j, idx := range list {
			out[i][j] = remap[idx]
		}
	}
	return welded, out
}
