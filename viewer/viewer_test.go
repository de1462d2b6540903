package viewer

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/smasonuk/geosphere"
	"github.com/smasonuk/geosphere/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const float64EqualityThreshold = 1e-6

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) <= float64EqualityThreshold
}

func TestCameraEye(t *testing.T) {
	c := NewCamera(mgl64.Vec3{1, 2, 3}, 10)
	eye := c.Eye()
	assert.True(t, almostEqual(eye[0], 1) && almostEqual(eye[1], 2) && almostEqual(eye[2], 13), "eye %v", eye)

	c.AddAngle(math.Pi/2, 0)
	eye = c.Eye()
	assert.True(t, almostEqual(eye[0], 11) && almostEqual(eye[2], 3), "eye %v", eye)
	assert.True(t, almostEqual(eye.Sub(c.Target).Len(), 10))
}

func TestCameraPitchClamp(t *testing.T) {
	c := NewCamera(mgl64.Vec3{}, 5)
	c.AddAngle(0, 10)
	assert.Less(t, c.Pitch, math.Pi/2)
	c.AddAngle(0, -20)
	assert.Greater(t, c.Pitch, -math.Pi/2)

	c.Zoom(0)
	assert.Equal(t, minDistance, c.Distance)
}

func TestProjectCentre(t *testing.T) {
	c := NewCamera(mgl64.Vec3{}, 5)
	p := c.projector(800, 600)

	x, y, w, ok := p.project(mgl64.Vec3{})
	require.True(t, ok)
	assert.InDelta(t, 400, x, 1e-3)
	assert.InDelta(t, 300, y, 1e-3)
	assert.InDelta(t, 5, w, 1e-6)

	// Up on screen is smaller y.
	_, yUp, _, ok := p.project(mgl64.Vec3{0, 1, 0})
	require.True(t, ok)
	assert.Less(t, yUp, y)

	_, _, _, ok = p.project(mgl64.Vec3{0, 0, 10})
	assert.False(t, ok, "a point behind the camera must not project")
}

func TestShade(t *testing.T) {
	light := Light{
		Position: mgl64.Vec3{0, 0, 10},
		Ambient:  mgl32.Vec3{0, 0, 0},
		Diffuse:  mgl32.Vec3{1, 1, 1},
		Specular: mgl32.Vec3{1, 1, 1},
	}
	s := surface{
		diffuse:   mgl32.Vec3{0.5, 0.25, 0},
		specular:  mgl32.Vec3{0.5, 0.5, 0.5},
		shininess: 16,
		alpha:     1,
	}
	normal := mgl64.Vec3{0, 0, 1}
	p := mgl64.Vec3{0, 0, 1}

	// Light and eye straight along the normal: full diffuse and full highlight.
	c := shade(s, p, normal, mgl64.Vec3{0, 0, 5}, light)
	assert.InDelta(t, 1.0, c[0], 1e-5)
	assert.InDelta(t, 0.75, c[1], 1e-5)
	assert.InDelta(t, 0.5, c[2], 1e-5)
	assert.Equal(t, float32(1), c[3])

	// Facing away from the light leaves only ambient, which is zero here.
	c = shade(s, p, mgl64.Vec3{0, 0, -1}, mgl64.Vec3{0, 0, 5}, light)
	assert.Equal(t, mgl32.Vec4{0, 0, 0, 1}, c)
}

func TestSurfaceReader(t *testing.T) {
	mat := geosphere.Material{
		Ambient:   mgl32.Vec3{0.1, 0.2, 0.3},
		Diffuse:   mgl32.Vec3{0.4, 0.5, 0.6},
		Specular:  mgl32.Vec3{1, 1, 1},
		Shininess: 8,
	}
	m, err := geosphere.Build(0, 1, mat, geosphere.WithLogger(nil))
	require.NoError(t, err)
	s := newSurfaceReader(m)(5)
	assert.Equal(t, mat.Ambient, s.ambient)
	assert.Equal(t, mat.Diffuse, s.diffuse)
	assert.Equal(t, float32(8), s.shininess)

	m, err = geosphere.Build(0, 1, geosphere.RGBA(1, 0, 0, 0.5), geosphere.WithLogger(nil))
	require.NoError(t, err)
	s = newSurfaceReader(m)(0)
	assert.InDelta(t, ambientLight, s.ambient[0], 1e-6)
	assert.InDelta(t, diffuseLight, s.diffuse[0], 1e-6)
	assert.Equal(t, float32(0), s.ambient[1])
	assert.Equal(t, float32(0.5), s.alpha)
}

func TestAssembleCullsAndSorts(t *testing.T) {
	m, err := geosphere.Build(2, 1, geosphere.RGBA(1, 1, 1, 1), geosphere.WithLogger(nil))
	require.NoError(t, err)

	cam := NewCamera(mgl64.Vec3{}, 6)
	tris := assemble([]drawable{{mesh: m}}, cam, DefaultLight(), 640, 480, nil)

	// Roughly the half facing the camera survives.
	assert.Greater(t, len(tris), m.TriangleCount()/3)
	assert.Less(t, len(tris), m.TriangleCount()*2/3)

	for _, tri := range tris {
		for _, v := range tri.vertices {
			assert.True(t, v.DstX >= 0 && v.DstX <= 640 && v.DstY >= 0 && v.DstY <= 480, "vertex off screen: %v", v)
		}
	}

	sortByDepth(tris)
	for i := 1; i < len(tris); i++ {
		assert.GreaterOrEqual(t, tris[i-1].depth, tris[i].depth)
	}
}

func TestAssembleOffsetsBodies(t *testing.T) {
	m, err := geosphere.Build(1, 1, geosphere.RGBA(1, 1, 1, 1), geosphere.WithLogger(nil))
	require.NoError(t, err)

	cam := NewCamera(mgl64.Vec3{}, 6)
	near := assemble([]drawable{{mesh: m, offset: mgl64.Vec3{0, 0, 2}}}, cam, DefaultLight(), 640, 480, nil)
	far := assemble([]drawable{{mesh: m, offset: mgl64.Vec3{0, 0, -2}}}, cam, DefaultLight(), 640, 480, nil)
	require.NotEmpty(t, near)
	require.NotEmpty(t, far)
	assert.Less(t, near[0].depth, far[0].depth)

	// Nothing is drawn for a body that sits behind the camera.
	behind := assemble([]drawable{{mesh: m, offset: mgl64.Vec3{0, 0, 20}}}, cam, DefaultLight(), 640, 480, nil)
	assert.Empty(t, behind)
}

func TestBatchTriangles(t *testing.T) {
	assert.Empty(t, batchTriangles(nil))

	tris := make([]screenTriangle, 30000)
	for i := range tris {
		tris[i].vertices = [3]ebiten.Vertex{{DstX: float32(i)}, {DstX: float32(i)}, {DstX: float32(i)}}
	}
	batches := batchTriangles(tris)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0].vertices, maxBatchVertices)
	assert.Len(t, batches[1].vertices, 90000-maxBatchVertices)

	for _, b := range batches {
		assert.Len(t, b.indices, len(b.vertices))
		for _, idx := range b.indices {
			assert.Less(t, int(idx), len(b.vertices))
		}
	}
	// Order survives batching.
	assert.Equal(t, float32(maxBatchVertices/3), batches[1].vertices[0].DstX)
}

func TestNewGameFramesScene(t *testing.T) {
	bodies, err := scene.Evaluate(`(sphere :name "a" :detail 1) (sphere :name "b" :detail 0 :radius 0.5 :at (vec3 4 0 0))`)
	require.NoError(t, err)

	g, err := NewGame(bodies, geosphere.WithLogger(nil))
	require.NoError(t, err)
	assert.Len(t, g.bodies, 2)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, g.Camera().Target)
	assert.InDelta(t, 9, g.Camera().Distance, 1e-9)

	w, h := g.Layout(320, 200)
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)

	assert.Contains(t, g.hud(), "detail 1")

	_, err = NewGame(nil)
	assert.Error(t, err)
}

func TestChangeDetailRebuilds(t *testing.T) {
	bodies, err := scene.Evaluate(`(sphere :name "a" :detail 1)`)
	require.NoError(t, err)
	g, err := NewGame(bodies, geosphere.WithLogger(nil))
	require.NoError(t, err)

	b := g.bodies[0]
	g.changeDetail(1)
	assert.Eventually(t, func() bool {
		return !b.pending.Load() && b.controller.Detail() == 2
	}, 5*time.Second, time.Millisecond)
	assert.Equal(t, int64(1), b.swaps.Load())

	g.changeDetail(-5)
	assert.Equal(t, 2, b.controller.Detail())
}
