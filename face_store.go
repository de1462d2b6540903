package geosphere

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Vertex is a position on the solid plus its shading attribute.
type Vertex[A Attribute] struct {
	Position  mgl64.Vec3
	Attribute A
}

// Solid is the working vertex and triangle lists of one construction. It is
// created fresh for every build and discarded once serialized.
type Solid[A Attribute] struct {
	vertices  []Vertex[A]
	triangles []Triangle
	attribute A
	radius    float64
	detail    int
}

// NewSolid returns an empty solid whose vertices will all carry attr.
func NewSolid[A Attribute](attr A, radius float64, detail int) *Solid[A] {
	return &Solid[A]{
		vertices:  make([]Vertex[A], 0, 16),
		triangles: make([]Triangle, 0, 16),
		attribute: attr,
		radius:    radius,
		detail:    detail,
	}
}

// AddVertex appends a vertex at p carrying the solid's attribute and returns
// its index. Positions are never merged.
func (s *Solid[A]) AddVertex(p mgl64.Vec3) int {
	s.vertices = append(s.vertices, Vertex[A]{Position: p, Attribute: s.attribute})
	return len(s.vertices) - 1
}

func (s *Solid[A]) AddTriangle(t Triangle) {
	s.triangles = append(s.triangles, t)
}

func (s *Solid[A]) GetVertex(i int) Vertex[A] {
	return s.vertices[i]
}

func (s *Solid[A]) GetTriangle(i int) Triangle {
	return s.triangles[i]
}

func (s *Solid[A]) VertexCount() int {
	return len(s.vertices)
}

func (s *Solid[A]) TriangleCount() int {
	return len(s.triangles)
}

func (s *Solid[A]) Attribute() A {
	return s.attribute
}

func (s *Solid[A]) Radius() float64 {
	return s.radius
}

func (s *Solid[A]) Detail() int {
	return s.detail
}

// Positions returns the vertex positions in index order.
func (s *Solid[A]) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = v.Position
	}
	return out
}

// Triangles returns a copy of the triangle list.
func (s *Solid[A]) Triangles() []Triangle {
	out := make([]Triangle, len(s.triangles))
	copy(out, s.triangles)
	return out
}

// checkIndices reports the first triangle referencing a vertex that does not exist.
func (s *Solid[A]) checkIndices() error {
	n := len(s.vertices)
	for i, t := range s.triangles {
		if t.A < 0 || t.A >= n || t.B < 0 || t.B >= n || t.C < 0 || t.C >= n {
			return fmt.Errorf("%w: triangle %d %v references vertex beyond %d", ErrInconsistentMesh, i, t, n)
		}
	}
	return nil
}
