package geosphere

import "fmt"

// Build constructs the geodesic sphere of the given detail level and radius,
// every vertex carrying attr, and returns its serialized Mesh.
//
// Build is synchronous and deterministic: the same arguments always yield
// identical buffers, whatever the worker count.
func Build[A Attribute](detail int, radius float64, attr A, opts ...Option) (*Mesh, error) {
	o := buildOptions(opts)
	return build(detail, radius, attr, o)
}

func build[A Attribute](detail int, radius float64, attr A, o Options) (*Mesh, error) {
	if any(attr) == nil {
		return nil, ErrNilAttribute
	}
	if err := validateParams(detail, radius, o); err != nil {
		return nil, err
	}

	s := subdivide(attr, radius, detail, o)
	if err := s.checkIndices(); err != nil {
		return nil, err
	}

	normals := VertexNormals(s)
	m := Serialize(s, normals)
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("detail %d: %w", detail, err)
	}

	o.logf("Built geosphere detail %d radius %.3f: %d vertices, %d triangles", detail, radius, m.VertexCount(), m.TriangleCount())
	return m, nil
}
