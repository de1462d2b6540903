package geosphere

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangles3 converts the mesh into sdfx triangles, one per index triple.
func (m *Mesh) Triangles3() []*sdf.Triangle3 {
	out := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for t := 0; t < m.TriangleCount(); t++ {
		var tri sdf.Triangle3
		for k := 0; k < 3; k++ {
			i := int(m.Indices[t*3+k])
			tri[k] = v3.Vec{
				X: float64(m.Positions[i*3]),
				Y: float64(m.Positions[i*3+1]),
				Z: float64(m.Positions[i*3+2]),
			}
		}
		out = append(out, &tri)
	}
	return out
}

// SaveSTL writes the mesh to fileName as a binary STL. STL stores facet
// normals only, so the smooth vertex normals and attributes are dropped.
func (m *Mesh) SaveSTL(fileName string) error {
	if err := render.SaveSTL(fileName, m.Triangles3()); err != nil {
		return fmt.Errorf("could not write STL file %s: %w", fileName, err)
	}
	return nil
}
