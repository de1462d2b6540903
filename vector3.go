package geosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// fallbackNormal is used when no direction can be derived at all.
var fallbackNormal = mgl64.Vec3{0, 0, 1}

// lerp returns the point a fraction t of the way from a to b.
func lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// GetLength returns the euclidean length of v.
func GetLength(v mgl64.Vec3) float64 {
	return math.Sqrt(math.Abs(v[0]*v[0] + v[1]*v[1] + v[2]*v[2]))
}

// normalizeOr returns v scaled to unit length, or fallback when v has no
// usable length. mgl64's Normalize divides by zero on a zero vector.
func normalizeOr(v, fallback mgl64.Vec3) mgl64.Vec3 {
	length := GetLength(v)
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return fallback
	}
	return v.Mul(1 / length)
}

// projectToSphere pushes p out (or in) along its direction from the origin
// until it sits on the sphere of the given radius.
func projectToSphere(p mgl64.Vec3, radius float64) mgl64.Vec3 {
	return normalizeOr(p, fallbackNormal).Mul(radius)
}
