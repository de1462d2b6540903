package viewer

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/smasonuk/geosphere"
)

// maxBatchVertices is the most vertices one DrawTriangles call can address
// with uint16 indices.
const maxBatchVertices = math.MaxUint16

var whiteSub *ebiten.Image

// solidSource returns a 1x1 white source image for untextured triangles.
func solidSource() *ebiten.Image {
	if whiteSub == nil {
		whiteImage := ebiten.NewImage(3, 3)
		whiteImage.Fill(color.White)
		whiteSub = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whiteSub
}

// screenTriangle is one lit, projected triangle waiting to be painted.
type screenTriangle struct {
	vertices [3]ebiten.Vertex
	depth    float64
}

// drawable is a mesh placed in the world.
type drawable struct {
	mesh   *geosphere.Mesh
	offset mgl64.Vec3
}

// assemble projects and lights the front-facing triangles of every drawable.
// Triangles touching the near plane are dropped rather than clipped.
func assemble(items []drawable, cam *Camera, light Light, width, height int, out []screenTriangle) []screenTriangle {
	proj := cam.projector(width, height)
	eye := cam.Eye()

	for _, it := range items {
		m := it.mesh
		if m == nil || m.IsEmpty() {
			continue
		}
		surfaceAt := newSurfaceReader(m)

		for t := 0; t < m.TriangleCount(); t++ {
			var idx [3]int
			var world [3]mgl64.Vec3
			for k := 0; k < 3; k++ {
				idx[k] = int(m.Indices[t*3+k])
				world[k] = m.Position(idx[k]).Add(it.offset)
			}

			// back-face cull
			n := geosphere.FaceNormal(world[0], world[1], world[2])
			if n.Dot(eye.Sub(world[0])) <= 0 {
				continue
			}

			var tri screenTriangle
			visible := true
			for k := 0; k < 3; k++ {
				x, y, w, ok := proj.project(world[k])
				if !ok {
					visible = false
					break
				}
				tri.depth += w

				normal := m.Normal(idx[k])
				c := shade(surfaceAt(idx[k]), world[k], normal, eye, light)
				tri.vertices[k] = ebiten.Vertex{
					DstX:   x,
					DstY:   y,
					SrcX:   1,
					SrcY:   1,
					ColorR: c[0],
					ColorG: c[1],
					ColorB: c[2],
					ColorA: c[3],
				}
			}
			if !visible {
				continue
			}
			tri.depth /= 3
			out = append(out, tri)
		}
	}
	return out
}

// sortByDepth orders triangles farthest first, so painting in order leaves
// the nearest surface on top.
func sortByDepth(tris []screenTriangle) {
	sort.SliceStable(tris, func(i, j int) bool {
		return tris[i].depth > tris[j].depth
	})
}

// triangleBatch is one DrawTriangles call.
type triangleBatch struct {
	vertices []ebiten.Vertex
	indices  []uint16
}

// batchTriangles packs tris, in order, into as few batches as the uint16
// index range allows.
func batchTriangles(tris []screenTriangle) []triangleBatch {
	var batches []triangleBatch
	var cur triangleBatch
	for _, t := range tris {
		if len(cur.vertices)+3 > maxBatchVertices {
			batches = append(batches, cur)
			cur = triangleBatch{}
		}
		base := uint16(len(cur.vertices))
		cur.vertices = append(cur.vertices, t.vertices[:]...)
		cur.indices = append(cur.indices, base, base+1, base+2)
	}
	if len(cur.vertices) > 0 {
		batches = append(batches, cur)
	}
	return batches
}

func drawBatches(screen *ebiten.Image, batches []triangleBatch) {
	op := &ebiten.DrawTrianglesOptions{AntiAlias: true}
	src := solidSource()
	for _, b := range batches {
		screen.DrawTriangles(b.vertices, b.indices, src, op)
	}
}
