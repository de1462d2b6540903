package geosphere

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Phi is the golden ratio used to place the icosahedron corners.
var Phi = (1 + math.Sqrt(5)) / 2

// icosahedronVertices are the 12 corners of a regular icosahedron centred on
// the origin: the three cyclic permutations of (±1, ±phi, 0).
var icosahedronVertices = [12]mgl64.Vec3{
	{-1, Phi, 0},
	{1, Phi, 0},
	{-1, -Phi, 0},
	{1, -Phi, 0},
	{0, -1, Phi},
	{0, 1, Phi},
	{0, -1, -Phi},
	{0, 1, -Phi},
	{Phi, 0, -1},
	{Phi, 0, 1},
	{-Phi, 0, -1},
	{-Phi, 0, 1},
}

// icosahedronFaces wind counter-clockwise when seen from outside, so the
// cross product of (b-a) and (c-a) points away from the origin.
var icosahedronFaces = [20]Triangle{
	{0, 11, 5},
	{0, 5, 1},
	{0, 1, 7},
	{0, 7, 10},
	{0, 10, 11},
	{1, 5, 9},
	{5, 11, 4},
	{11, 10, 2},
	{10, 7, 6},
	{7, 1, 8},
	{3, 9, 4},
	{3, 4, 2},
	{3, 2, 6},
	{3, 6, 8},
	{3, 8, 9},
	{4, 9, 5},
	{2, 4, 11},
	{6, 2, 10},
	{8, 6, 7},
	{9, 8, 1},
}

const (
	BaseVertexCount   = len(icosahedronVertices)
	BaseTriangleCount = len(icosahedronFaces)
)

// Icosahedron returns copies of the base solid's corner positions and face
// table. Callers may modify the returned slices freely.
func Icosahedron() ([]mgl64.Vec3, []Triangle) {
	verts := make([]mgl64.Vec3, BaseVertexCount)
	copy(verts, icosahedronVertices[:])
	faces := make([]Triangle, BaseTriangleCount)
	copy(faces, icosahedronFaces[:])
	return verts, faces
}
