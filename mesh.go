package geosphere

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// Channel is one flat per-vertex attribute buffer holding Size floats for
// every vertex, in vertex index order.
type Channel struct {
	Name string    `json:"name"`
	Size int       `json:"size"`
	Data []float32 `json:"data"`
}

// Mesh is the flattened, backend-agnostic form of a solid. All buffers are in
// vertex index order except Indices, which holds three entries per triangle
// in creation order. A Mesh is never modified after it is built and may be
// read from any number of goroutines.
type Mesh struct {
	Positions  []float32 `json:"positions"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals    []float32 `json:"normals"`   // [nx0,ny0,nz0, ...]
	Indices    []uint32  `json:"indices"`   // [a0,b0,c0, a1,b1,c1, ...]
	Channels   []Channel `json:"channels"`
	IndexCount int       `json:"indexCount"`
	Detail     int       `json:"detail"`
	Radius     float64   `json:"radius"`
}

// Serialize flattens s and its per-vertex normals into a new Mesh. The
// buffers are fresh copies; later changes to s do not reach the Mesh.
func Serialize[A Attribute](s *Solid[A], normals []mgl64.Vec3) *Mesh {
	m := &Mesh{
		Positions:  make([]float32, 0, len(s.vertices)*3),
		Normals:    make([]float32, 0, len(normals)*3),
		Indices:    make([]uint32, 0, len(s.triangles)*3),
		IndexCount: len(s.triangles) * 3,
		Detail:     s.detail,
		Radius:     s.radius,
	}

	for _, v := range s.vertices {
		m.Positions = append(m.Positions, float32(v.Position[0]), float32(v.Position[1]), float32(v.Position[2]))
	}

	for _, t := range s.triangles {
		m.Indices = append(m.Indices, uint32(t.A), uint32(t.B), uint32(t.C))
	}

	for _, n := range normals {
		m.Normals = append(m.Normals, float32(n[0]), float32(n[1]), float32(n[2]))
	}

	layout := s.attribute.Layout()
	buffers := make([][]float32, len(layout))
	for i, l := range layout {
		buffers[i] = make([]float32, 0, len(s.vertices)*l.Size)
	}
	for _, v := range s.vertices {
		v.Attribute.AppendComponents(buffers)
	}
	m.Channels = make([]Channel, len(layout))
	for i, l := range layout {
		m.Channels[i] = Channel{Name: l.Name, Size: l.Size, Data: buffers[i]}
	}

	return m
}

func (m *Mesh) VertexCount() int {
	return len(m.Positions) / 3
}

func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

func (m *Mesh) IsEmpty() bool {
	return len(m.Positions) == 0
}

// Channel returns the attribute buffer with the given name.
func (m *Mesh) Channel(name string) (Channel, bool) {
	for _, c := range m.Channels {
		if c.Name == name {
			return c, true
		}
	}
	return Channel{}, false
}

// Position returns vertex i's position.
func (m *Mesh) Position(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(m.Positions[i*3]), float64(m.Positions[i*3+1]), float64(m.Positions[i*3+2])}
}

// Normal returns vertex i's normal.
func (m *Mesh) Normal(i int) mgl64.Vec3 {
	return mgl64.Vec3{float64(m.Normals[i*3]), float64(m.Normals[i*3+1]), float64(m.Normals[i*3+2])}
}

// Validate checks the buffer invariants: positions and normals hold three
// floats per vertex, every channel holds Size floats per vertex, the index
// count matches, and every index addresses an existing vertex.
func (m *Mesh) Validate() error {
	if len(m.Positions)%3 != 0 {
		return fmt.Errorf("%w: %d position floats is not a multiple of 3", ErrInconsistentMesh, len(m.Positions))
	}
	n := m.VertexCount()
	if len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normal floats for %d vertices", ErrInconsistentMesh, len(m.Normals), n)
	}
	for _, c := range m.Channels {
		if c.Size <= 0 || len(c.Data) != n*c.Size {
			return fmt.Errorf("%w: channel %q holds %d floats for %d vertices of size %d", ErrInconsistentMesh, c.Name, len(c.Data), n, c.Size)
		}
	}
	if len(m.Indices)%3 != 0 || m.IndexCount != len(m.Indices) {
		return fmt.Errorf("%w: index count %d with %d indices", ErrInconsistentMesh, m.IndexCount, len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= n {
			return fmt.Errorf("%w: index %d at %d out of range for %d vertices", ErrInconsistentMesh, idx, i, n)
		}
	}
	return nil
}
