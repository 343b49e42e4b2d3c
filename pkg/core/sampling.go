package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// XorShiftSampler is a 32-bit xorshift generator. One instance is created per
// pixel, seeded from the pixel's linear index, so a render is reproducible
// regardless of how pixels are scheduled across workers.
type XorShiftSampler struct {
	state uint32
}

// NewXorShiftSampler creates a sampler for the given seed. A zero seed is
// replaced by 1 since xorshift never leaves the zero state.
func NewXorShiftSampler(seed uint32) *XorShiftSampler {
	if seed == 0 {
		seed = 1
	}
	return &XorShiftSampler{state: seed}
}

// Next advances the generator and returns the raw 32-bit state
func (x *XorShiftSampler) Next() uint32 {
	s := x.state
	s ^= s << 13
	s ^= s >> 17
	s ^= s << 5
	x.state = s
	return s
}

// Get1D returns a float64 in [0, 1)
func (x *XorShiftSampler) Get1D() float64 {
	return float64(x.Next()) / (1 << 32)
}

// Get2D returns two float64 values in [0, 1)
func (x *XorShiftSampler) Get2D() Vec2 {
	return NewVec2(x.Get1D(), x.Get1D())
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SampleCosineHemisphere generates a cosine-weighted direction in the hemisphere
// around the unit vector w. sample.X picks the azimuth, sample.Y the squared
// radius of the projected disk point.
func SampleCosineHemisphere(w Vec3, sample Vec2) Vec3 {
	r1 := 2.0 * math.Pi * sample.X
	r2 := sample.Y
	r2s := math.Sqrt(r2)

	// w, u, v form an orthonormal basis
	u := w.Orthogonal()
	v := w.Cross(u)

	return u.Multiply(math.Cos(r1) * r2s).
		Add(v.Multiply(math.Sin(r1) * r2s)).
		Add(w.Multiply(math.Sqrt(1.0 - r2)))
}

// TentOffset maps a uniform sample in [0, 1) to an offset in [-1, 1) drawn
// from a triangular (tent) distribution centred on zero.
func TentOffset(u float64) float64 {
	r := 2.0 * u
	if r < 1.0 {
		return math.Sqrt(r) - 1.0
	}
	return 1.0 - math.Sqrt(2.0-r)
}
