package layout

import (
	"math"
	"math/rand"

	"github.com/coreman2200/funtimes-evergreen/internal/geom"
)

const (
	ringLow   = 0.15
	ringHigh  = 0.85
	ringTwist = 0.45 // radians added per ring so rings read as a spiral
)

// RingCapacity is the number of photo slots per ring for a given total.
func RingCapacity(total int) int {
	return max(6, int(math.Ceil(float64(total)/5)))
}

// RingCount is the number of rings needed for total photos (at least one).
func RingCount(total int) int {
	total = max(total, 1)
	c := RingCapacity(total)
	return (total + c - 1) / c
}

// Ring places photo index of total on the tree. Positions depend on total, so adding a
// photo can reflow every existing card.
func Ring(t Tree, index, total int) geom.Vec3 {
	total = max(total, 1)
	index = max(index, 0)

	capacity := RingCapacity(total)
	rings := RingCount(total)
	ring := index / capacity
	slot := index % capacity
	occupancy := max(min(capacity, total-ring*capacity), 1)

	angle := 2*math.Pi*float64(slot)/float64(occupancy) + float64(ring)*ringTwist

	h := ringLow + (ringHigh-ringLow)*float64(ring)/float64(max(rings-1, 1))
	h = math.Max(ringLow, math.Min(ringHigh, h))
	y := h * t.Height
	r := t.RadiusAt(y) + t.CardOffset
	return geom.V(r*math.Sin(angle), y, r*math.Cos(angle))
}

// PhotoChaos is a scattered resting position for a card.
func PhotoChaos(t Tree, rng *rand.Rand) geom.Vec3 {
	return inSphere(rng, t.ChaosCenter, t.ChaosRadius*0.8)
}
