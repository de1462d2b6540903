package geosphere

import (
	"fmt"
	"math"

	"github.com/alitto/pond/v2"
)

// Counts returns the number of vertices and triangles a build at the given
// detail level produces. Level 0 is the base icosahedron itself; higher
// levels give every base face its own grid, so points on shared edges are
// counted once per face.
func Counts(detail int) (vertices, triangles int64) {
	if detail <= 0 {
		return int64(BaseVertexCount), int64(BaseTriangleCount)
	}
	cols := int64(1) << uint(detail)
	vertices = int64(BaseTriangleCount) * (cols + 1) * (cols + 2) / 2
	triangles = int64(BaseTriangleCount) * cols * cols
	return vertices, triangles
}

// readLimits bounds what the mesh readers accept: the vertex and triangle
// counts of a build at the configured maximum detail.
func readLimits(o Options) (vertices, triangles int64) {
	vertices, triangles = Counts(clamp(o.MaxDetail, 0, hardMaxDetail))
	if vertices > math.MaxUint32 {
		vertices = math.MaxUint32
	}
	return vertices, triangles
}

func validateParams(detail int, radius float64, o Options) error {
	if detail < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeDetail, detail)
	}
	if radius <= 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidRadius, radius)
	}
	if detail > o.MaxDetail {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrDetailTooLarge, detail, o.MaxDetail)
	}
	if detail > hardMaxDetail {
		return fmt.Errorf("%w: %d", ErrDetailTooLarge, detail)
	}
	if v, _ := Counts(detail); v > math.MaxUint32 {
		return fmt.Errorf("%w: %d needs %d vertices", ErrDetailTooLarge, detail, v)
	}
	return nil
}

// Subdivide builds the geodesic solid: each of the 20 icosahedron faces is
// replaced by 4^detail triangles whose vertices lie on the sphere of the
// given radius, and every vertex carries attr.
func Subdivide[A Attribute](attr A, radius float64, detail int, opts ...Option) (*Solid[A], error) {
	o := buildOptions(opts)
	if any(attr) == nil {
		return nil, ErrNilAttribute
	}
	if err := validateParams(detail, radius, o); err != nil {
		return nil, err
	}
	return subdivide(attr, radius, detail, o), nil
}

func subdivide[A Attribute](attr A, radius float64, detail int, o Options) *Solid[A] {
	corners, faces := Icosahedron()

	if detail == 0 {
		s := NewSolid(attr, radius, detail)
		for _, p := range corners {
			s.AddVertex(projectToSphere(p, radius))
		}
		for _, f := range faces {
			s.AddTriangle(f)
		}
		return s
	}

	cols := 1 << uint(detail)
	faceVerts, faceTris := faceGridSize(cols)

	// The base faces are only read; the output lists are separate and each
	// face owns a disjoint block of them.
	s := &Solid[A]{
		vertices:  make([]Vertex[A], faceVerts*len(faces)),
		triangles: make([]Triangle, faceTris*len(faces)),
		attribute: attr,
		radius:    radius,
		detail:    detail,
	}

	fill := func(f int) {
		face := faces[f]
		vBase := f * faceVerts
		tBase := f * faceTris
		subdivideFace(
			corners[face.A], corners[face.B], corners[face.C],
			radius, cols, attr,
			s.vertices[vBase:vBase+faceVerts],
			s.triangles[tBase:tBase+faceTris],
			vBase,
		)
	}

	if o.Workers < 2 {
		for f := range faces {
			fill(f)
		}
		return s
	}

	pool := pond.NewPool(o.Workers)
	for f := range faces {
		pool.Submit(func() {
			fill(f)
		})
	}
	pool.StopAndWait()

	return s
}
