package geosphere

import "github.com/go-gl/mathgl/mgl64"

// faceGridSize returns how many vertices and triangles one base face turns
// into when split into cols segments per edge.
func faceGridSize(cols int) (vertices, triangles int) {
	return (cols + 1) * (cols + 2) / 2, cols * cols
}

// gridIndex maps grid point (i, j) of a face to its offset in the face's
// vertex block. Row i holds cols-i+1 points.
func gridIndex(cols, i, j int) int {
	return i*(cols+1) - i*(i-1)/2 + j
}

// subdivideFace fills verts and tris with the geodesic grid of the face a, b,
// c, using c as the apex. verts must hold exactly faceGridSize(cols) vertices
// and tris exactly cols*cols triangles; base is the global index of verts[0].
func subdivideFace[A Attribute](a, b, c mgl64.Vec3, radius float64, cols int, attr A, verts []Vertex[A], tris []Triangle, base int) {
	n := 0
	for i := 0; i <= cols; i++ {
		t := float64(i) / float64(cols)
		aj := lerp(a, c, t)
		bj := lerp(b, c, t)
		rows := cols - i

		for j := 0; j <= rows; j++ {
			p := aj
			if rows > 0 {
				p = lerp(aj, bj, float64(j)/float64(rows))
			}
			verts[n] = Vertex[A]{Position: projectToSphere(p, radius), Attribute: attr}
			n++
		}
	}

	at := func(i, j int) int {
		return base + gridIndex(cols, i, j)
	}

	n = 0
	for i := 0; i < cols; i++ {
		for j := 0; j <= 2*(cols-i)-2; j++ {
			k := j / 2
			if j%2 == 0 {
				tris[n] = Triangle{A: at(i, k+1), B: at(i+1, k), C: at(i, k)}
			} else {
				tris[n] = Triangle{A: at(i, k+1), B: at(i+1, k+1), C: at(i+1, k)}
			}
			n++
		}
	}
}
