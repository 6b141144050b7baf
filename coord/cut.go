package coord

import "math"

// EndPosition returns where a cut across a tube of the given width ends.
//
// X travels the full width plus overshoot, to the right when cutRight is set.
// For a zero angle Y stays at start.Y. Otherwise Y is set to
// (tubeWidth+overshoot)/tan(angle) as an absolute value, not an offset from
// start.Y. Angles where tan has no finite value (±90, ±270) are treated like a
// zero angle.
func EndPosition(start Point, tubeWidth, cutAngleDeg, overshoot float64, cutRight bool) Point {
	travel := tubeWidth + overshoot

	end := start
	if cutRight {
		end.X += travel
	} else {
		end.X -= travel
	}

	if cutAngleDeg == 0 || noFiniteTan(cutAngleDeg) {
		return end
	}

	end.Y = travel / math.Tan(radians(cutAngleDeg))
	return end
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

// noFiniteTan reports whether deg is an odd multiple of 90 degrees.
func noFiniteTan(deg float64) bool {
	r := math.Mod(math.Abs(deg), 180)
	return r == 90
}
