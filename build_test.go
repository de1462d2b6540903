package geosphere

import (
	"bytes"
	"log"
	"math"
	"strings"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var white = RGBA(1, 1, 1, 1)

func quiet() Option {
	return WithLogger(nil)
}

func TestCounts(t *testing.T) {
	testCases := []struct {
		detail    int
		vertices  int64
		triangles int64
	}{
		{detail: 0, vertices: 12, triangles: 20},
		{detail: 1, vertices: 120, triangles: 80},
		{detail: 2, vertices: 300, triangles: 320},
		{detail: 3, vertices: 900, triangles: 1280},
		{detail: 8, vertices: 20 * 257 * 258 / 2, triangles: 1310720},
	}

	for _, tc := range testCases {
		v, tr := Counts(tc.detail)
		assert.Equal(t, tc.vertices, v, "detail %d vertices", tc.detail)
		assert.Equal(t, tc.triangles, tr, "detail %d triangles", tc.detail)
	}
}

func TestBuildBaseSolid(t *testing.T) {
	red := RGBA(1, 0, 0, 1)
	m, err := Build(0, 2.0, red, quiet())
	require.NoError(t, err)

	assert.Equal(t, 12, m.VertexCount())
	assert.Equal(t, 20, m.TriangleCount())
	assert.Equal(t, 60, m.IndexCount)
	assert.Equal(t, 0, m.Detail)
	assert.Equal(t, 2.0, m.Radius)

	for i := 0; i < m.VertexCount(); i++ {
		assert.InDelta(t, 2.0, GetLength(m.Position(i)), float32EqualityThreshold, "vertex %d", i)
	}

	c, ok := m.Channel(ChannelColor)
	require.True(t, ok)
	assert.Equal(t, 4, c.Size)
	require.Len(t, c.Data, 48)
	for i := 0; i < 12; i++ {
		assert.Equal(t, []float32{1, 0, 0, 1}, c.Data[i*4:i*4+4])
	}
}

func TestBuildDetailLevels(t *testing.T) {
	sphere, err := sdf.Sphere3D(1.5)
	require.NoError(t, err)

	for detail := 0; detail <= 3; detail++ {
		m, err := Build(detail, 1.5, white, quiet())
		require.NoError(t, err, "detail %d", detail)

		wantV, wantT := Counts(detail)
		assert.Equal(t, int(wantV), m.VertexCount(), "detail %d", detail)
		assert.Equal(t, int(wantT), m.TriangleCount(), "detail %d", detail)
		assert.Equal(t, len(m.Indices), m.IndexCount)
		require.NoError(t, m.Validate())

		for i := 0; i < m.VertexCount(); i++ {
			p := m.Position(i)
			n := m.Normal(i)
			assert.InDelta(t, 0, sphere.Evaluate(v3.Vec{X: p[0], Y: p[1], Z: p[2]}), float32EqualityThreshold, "detail %d vertex %d off the sphere", detail, i)
			assert.InDelta(t, 1, GetLength(n), float32EqualityThreshold, "detail %d normal %d", detail, i)
			assert.Greater(t, n.Dot(p), 0.0, "detail %d normal %d points inward", detail, i)
		}

		for i, tri := range m.Triangles3() {
			assert.Greater(t, tri.Normal().Dot(tri[0]), 0.0, "detail %d triangle %d winds inward", detail, i)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, err := Build(2, 1, white, quiet())
	require.NoError(t, err)
	b, err := Build(2, 1, white, quiet())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuildParallelMatchesSerial(t *testing.T) {
	serial, err := Build(3, 1, white, quiet())
	require.NoError(t, err)

	for _, workers := range []int{2, 4, 20, 64} {
		parallel, err := Build(3, 1, white, quiet(), WithWorkers(workers))
		require.NoError(t, err)
		assert.Equal(t, serial, parallel, "workers %d", workers)
	}
}

func TestBuildHigherDetailGrows(t *testing.T) {
	prev, err := Build(0, 1, white, quiet())
	require.NoError(t, err)
	for detail := 1; detail <= 4; detail++ {
		m, err := Build(detail, 1, white, quiet())
		require.NoError(t, err)
		assert.Greater(t, m.VertexCount(), prev.VertexCount())
		assert.Greater(t, m.TriangleCount(), prev.TriangleCount())
		prev = m
	}
}

func TestBuildErrors(t *testing.T) {
	testCases := []struct {
		name   string
		detail int
		radius float64
		opts   []Option
		want   error
	}{
		{name: "negative detail", detail: -1, radius: 1, want: ErrNegativeDetail},
		{name: "above default maximum", detail: DefaultMaxDetail + 1, radius: 1, want: ErrDetailTooLarge},
		{name: "above configured maximum", detail: 3, radius: 1, opts: []Option{WithMaxDetail(2)}, want: ErrDetailTooLarge},
		{name: "past uint32 indices", detail: 16, radius: 1, opts: []Option{WithMaxDetail(64)}, want: ErrDetailTooLarge},
		{name: "zero radius", detail: 1, radius: 0, want: ErrInvalidRadius},
		{name: "negative radius", detail: 1, radius: -2, want: ErrInvalidRadius},
		{name: "NaN radius", detail: 1, radius: math.NaN(), want: ErrInvalidRadius},
		{name: "infinite radius", detail: 1, radius: math.Inf(1), want: ErrInvalidRadius},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Build(tc.detail, tc.radius, white, append(tc.opts, quiet())...)
			require.ErrorIs(t, err, tc.want)
			assert.Nil(t, m)
		})
	}
}

func TestBuildNilAttribute(t *testing.T) {
	var attr Attribute
	m, err := Build(1, 1, attr, quiet())
	require.ErrorIs(t, err, ErrNilAttribute)
	assert.Nil(t, m)

	s, err := Subdivide(attr, 1, 1, quiet())
	require.ErrorIs(t, err, ErrNilAttribute)
	assert.Nil(t, s)
}

func TestBuildMaterialChannels(t *testing.T) {
	mat := Material{
		Ambient:   mgl32.Vec3{0.1, 0.1, 0.1},
		Diffuse:   mgl32.Vec3{0.2, 0.4, 0.8},
		Specular:  mgl32.Vec3{1, 1, 1},
		Shininess: 32,
	}
	m, err := Build(1, 1, mat, quiet())
	require.NoError(t, err)

	n := m.VertexCount()
	require.Len(t, m.Channels, 4)
	for i, want := range mat.Layout() {
		assert.Equal(t, want.Name, m.Channels[i].Name)
		assert.Equal(t, want.Size, m.Channels[i].Size)
		assert.Len(t, m.Channels[i].Data, n*want.Size)
	}

	diffuse, ok := m.Channel(ChannelDiffuse)
	require.True(t, ok)
	assert.Equal(t, []float32{0.2, 0.4, 0.8}, diffuse.Data[(n-1)*3:])

	shininess, ok := m.Channel(ChannelShininess)
	require.True(t, ok)
	for _, s := range shininess.Data {
		assert.Equal(t, float32(32), s)
	}

	_, ok = m.Channel(ChannelColor)
	assert.False(t, ok)
}

func TestBuildLogs(t *testing.T) {
	var buf bytes.Buffer
	_, err := Build(1, 1, white, WithLogger(log.New(&buf, "", 0)))
	require.NoError(t, err)
	assert.True(t, strings.Contains(buf.String(), "detail 1"), buf.String())
	assert.True(t, strings.Contains(buf.String(), "80 triangles"), buf.String())
}

func TestSubdivideSolid(t *testing.T) {
	s, err := Subdivide(white, 1, 2, quiet())
	require.NoError(t, err)
	assert.Equal(t, 320, s.TriangleCount())
	assert.Equal(t, 300, s.VertexCount())
	assert.Equal(t, 2, s.Detail())
	assert.Equal(t, 1.0, s.Radius())
	assert.Equal(t, white, s.Attribute())

	for i := 0; i < s.VertexCount(); i++ {
		assert.Equal(t, white, s.GetVertex(i).Attribute)
	}
	require.NoError(t, s.checkIndices())
	assert.Len(t, s.Positions(), s.VertexCount())
	tris := s.Triangles()
	assert.Equal(t, tris[319], s.GetTriangle(319))
	tris[0] = Triangle{}
	assert.NotEqual(t, Triangle{}, s.GetTriangle(0))

	// The first base face's corners sit at the ends of its grid.
	corners, faces := Icosahedron()
	first := faces[0]
	cols := 4
	assert.True(t, vecAlmostEqual(s.GetVertex(gridIndex(cols, 0, 0)).Position, corners[first.A].Normalize()))
	assert.True(t, vecAlmostEqual(s.GetVertex(gridIndex(cols, 0, cols)).Position, corners[first.B].Normalize()))
	assert.True(t, vecAlmostEqual(s.GetVertex(gridIndex(cols, cols, 0)).Position, corners[first.C].Normalize()))
}

func TestVertexNormalsDegenerate(t *testing.T) {
	s := NewSolid(white, 1, 0)
	a := s.AddVertex(mgl64.Vec3{1, 0, 0})
	b := s.AddVertex(mgl64.Vec3{2, 0, 0})
	c := s.AddVertex(mgl64.Vec3{3, 0, 0})
	s.AddTriangle(Triangle{A: a, B: b, C: c})
	origin := s.AddVertex(mgl64.Vec3{})
	lonely := s.AddVertex(mgl64.Vec3{0, -4, 0})
	s.AddTriangle(Triangle{A: origin, B: origin, C: origin})

	normals := VertexNormals(s)
	require.Len(t, normals, 5)
	for i := 0; i < 3; i++ {
		assert.True(t, vecAlmostEqual(normals[i], mgl64.Vec3{1, 0, 0}), "vertex %d: %v", i, normals[i])
	}
	assert.True(t, vecAlmostEqual(normals[origin], mgl64.Vec3{0, 0, 1}), "origin: %v", normals[origin])
	assert.True(t, vecAlmostEqual(normals[lonely], mgl64.Vec3{0, -1, 0}), "lonely: %v", normals[lonely])
}

func TestFaceNormals(t *testing.T) {
	m, err := Build(2, 1, white, quiet())
	require.NoError(t, err)

	normals := m.FaceNormals()
	require.Len(t, normals, m.TriangleCount()*3)
	for tri := 0; tri < m.TriangleCount(); tri++ {
		a := m.Position(int(m.Indices[tri*3]))
		b := m.Position(int(m.Indices[tri*3+1]))
		c := m.Position(int(m.Indices[tri*3+2]))
		want := FaceNormal(a, b, c)
		got := mgl64.Vec3{float64(normals[tri*3]), float64(normals[tri*3+1]), float64(normals[tri*3+2])}
		assert.True(t, vecAlmostEqual(got, want), "triangle %d: %v != %v", tri, got, want)
		assert.Greater(t, got.Dot(GetMidPoint(a, b, c)), 0.0)
	}

	// Inward winding and degenerate triangles.
	flipped := &Mesh{
		Positions: []float32{1, 0, 0, 0, 1, 0, 0, 0, 1, 2, 0, 0},
		Indices:   []uint32{0, 2, 1, 0, 3, 0},
	}
	assert.InDeltaSlice(t, []float32{
		float32(1 / math.Sqrt(3)), float32(1 / math.Sqrt(3)), float32(1 / math.Sqrt(3)),
		0, 0, 0,
	}, flipped.FaceNormals(), 1e-6)
}

func TestCheckIndices(t *testing.T) {
	s := NewSolid(white, 1, 0)
	s.AddVertex(mgl64.Vec3{1, 0, 0})
	s.AddTriangle(Triangle{A: 0, B: 0, C: 1})
	require.ErrorIs(t, s.checkIndices(), ErrInconsistentMesh)
}

func TestMeshValidate(t *testing.T) {
	m, err := Build(1, 1, white, quiet())
	require.NoError(t, err)
	require.NoError(t, m.Validate())

	broken := *m
	broken.Indices = append([]uint32(nil), m.Indices...)
	broken.Indices[5] = uint32(m.VertexCount())
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentMesh)

	broken = *m
	broken.IndexCount++
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentMesh)

	broken = *m
	broken.Normals = m.Normals[:len(m.Normals)-3]
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentMesh)

	broken = *m
	broken.Channels = []Channel{{Name: ChannelColor, Size: 4, Data: []float32{1, 1, 1, 1}}}
	assert.ErrorIs(t, broken.Validate(), ErrInconsistentMesh)
}

func TestSerializeCopiesBuffers(t *testing.T) {
	s, err := Subdivide(white, 1, 1, quiet())
	require.NoError(t, err)
	m := Serialize(s, VertexNormals(s))

	before := m.Position(0)
	s.vertices[0].Position = mgl64.Vec3{9, 9, 9}
	assert.Equal(t, before, m.Position(0))
}

func TestColorConversions(t *testing.T) {
	c := RGBA(1, 0.5, 0, 1)
	rgba := c.RGBA()
	assert.Equal(t, uint8(255), rgba.R)
	assert.Equal(t, uint8(128), rgba.G)
	assert.Equal(t, uint8(0), rgba.B)

	over := RGBA(2, -1, 0, 1).RGBA()
	assert.Equal(t, uint8(255), over.R)
	assert.Equal(t, uint8(0), over.G)

	back := ColorFromRGBA(rgba)
	assert.InDelta(t, 0.5, back.G, 0.01)
	assert.Equal(t, mgl32.Vec4{1, 0.5, 0, 1}, c.Vec4())
}
