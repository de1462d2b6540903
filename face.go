package geosphere

import "github.com/go-gl/mathgl/mgl64"

// Triangle references three vertices of a Solid by index. Winding follows the
// right-hand rule: the face normal is (B-A) x (C-A).
type Triangle struct {
	A, B, C int
}

// Indices returns the vertex indices in winding order.
func (t Triangle) Indices() [3]int {
	return [3]int{t.A, t.B, t.C}
}

// FaceNormal returns the unit normal of the triangle a, b, c. Collinear or
// coincident points have no orientation and yield the zero vector, which
// contributes nothing when accumulated into vertex normals.
func FaceNormal(a, b, c mgl64.Vec3) mgl64.Vec3 {
	ab := b.Sub(a)
	ac := c.Sub(a)
	return normalizeOr(ab.Cross(ac), mgl64.Vec3{})
}

// GetMidPoint returns the centroid of the triangle.
func GetMidPoint(a, b, c mgl64.Vec3) mgl64.Vec3 {
	return a.Add(b).Add(c).Mul(1.0 / 3.0)
}
