package core

// DefaultEpsilon is the intersection tolerance used when a scene does not set one.
// Hits closer than this are rejected to avoid self-intersection.
const DefaultEpsilon = 1e-3

// Logger interface for raytracer logging
type Logger interface {
	Printf(format string, args ...interface{})
}
