package geosphere

import "github.com/go-gl/mathgl/mgl64"

// VertexNormals returns one unit normal per vertex of s: the normalized sum of
// the face normals of every triangle that uses the vertex, each face weighted
// equally.
//
// A vertex whose sum vanishes (no incident triangles, or only degenerate
// ones) falls back to its radial direction, and to +Z at the origin.
func VertexNormals[A Attribute](s *Solid[A]) []mgl64.Vec3 {
	positions := make([]mgl64.Vec3, len(s.vertices))
	for i, v := range s.vertices {
		positions[i] = v.Position
	}
	return accumulateNormals(positions, s.triangles)
}

func accumulateNormals(positions []mgl64.Vec3, triangles []Triangle) []mgl64.Vec3 {
	sums := make([]mgl64.Vec3, len(positions))

	for _, t := range triangles {
		n := FaceNormal(positions[t.A], positions[t.B], positions[t.C])
		sums[t.A] = sums[t.A].Add(n)
		sums[t.B] = sums[t.B].Add(n)
		sums[t.C] = sums[t.C].Add(n)
	}

	for i, sum := range sums {
		radial := normalizeOr(positions[i], fallbackNormal)
		sums[i] = normalizeOr(sum, radial)
	}
	return sums
}

// FaceNormals returns one unit normal per triangle, flattened as
// [nx0,ny0,nz0, nx1,...] for flat shading. Each normal is turned to face away
// from the origin; degenerate triangles get the zero vector.
func (m *Mesh) FaceNormals() []float32 {
	out := make([]float32, 0, m.TriangleCount()*3)
	for t := 0; t < m.TriangleCount(); t++ {
		a := m.Position(int(m.Indices[t*3]))
		b := m.Position(int(m.Indices[t*3+1]))
		c := m.Position(int(m.Indices[t*3+2]))

		n := FaceNormal(a, b, c)
		if n.Dot(b) < 0 {
			n = n.Mul(-1)
		}
		out = append(out, float32(n[0]), float32(n[1]), float32(n[2]))
	}
	return out
}

// computeNormals fills Normals from the positions and indices, the same way
// Build does.
func (m *Mesh) computeNormals() {
	positions := make([]mgl64.Vec3, m.VertexCount())
	for i := range positions {
		positions[i] = m.Position(i)
	}
	triangles := make([]Triangle, m.TriangleCount())
	for t := range triangles {
		triangles[t] = Triangle{int(m.Indices[t*3]), int(m.Indices[t*3+1]), int(m.Indices[t*3+2])}
	}

	m.Normals = make([]float32, 0, len(positions)*3)
	for _, n := range accumulateNormals(positions, triangles) {
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}
}
