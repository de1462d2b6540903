package geosphere

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// plyColor picks the channel written as per-vertex PLY color: a flat color
// as red/green/blue/alpha, or a material's diffuse term as diffuse_red/...
func (m *Mesh) plyColor() (props []string, ch Channel, ok bool) {
	if c, found := m.Channel(ChannelColor); found {
		return []string{"red", "green", "blue", "alpha"}, c, true
	}
	if c, found := m.Channel(ChannelDiffuse); found {
		return []string{"diffuse_red", "diffuse_green", "diffuse_blue"}, c, true
	}
	return nil, Channel{}, false
}

// WritePLY writes the mesh as an ASCII PLY file with per-vertex normals and,
// when the mesh carries one, per-vertex color.
func (m *Mesh) WritePLY(w io.Writer) error {
	writer := bufio.NewWriter(w)

	colorProps, colorCh, hasColor := m.plyColor()
	numVertices := m.VertexCount()

	_, _ = fmt.Fprintln(writer, "ply")
	_, _ = fmt.Fprintln(writer, "format ascii 1.0")
	_, _ = fmt.Fprintf(writer, "comment Generated by geosphere detail %d radius %g\n", m.Detail, m.Radius)
	_, _ = fmt.Fprintf(writer, "element vertex %d\n", numVertices)
	_, _ = fmt.Fprintln(writer, "property float x")
	_, _ = fmt.Fprintln(writer, "property float y")
	_, _ = fmt.Fprintln(writer, "property float z")
	_, _ = fmt.Fprintln(writer, "property float nx")
	_, _ = fmt.Fprintln(writer, "property float ny")
	_, _ = fmt.Fprintln(writer, "property float nz")
	for _, p := range colorProps {
		_, _ = fmt.Fprintf(writer, "property uchar %s\n", p)
	}
	_, _ = fmt.Fprintf(writer, "element face %d\n", m.TriangleCount())
	_, _ = fmt.Fprintln(writer, "property list uchar int vertex_indices")
	_, _ = fmt.Fprintln(writer, "end_header")

	for i := 0; i < numVertices; i++ {
		_, _ = fmt.Fprintf(writer, "%f %f %f %f %f %f",
			m.Positions[i*3], m.Positions[i*3+1], m.Positions[i*3+2],
			m.Normals[i*3], m.Normals[i*3+1], m.Normals[i*3+2])
		if hasColor {
			for k := range colorProps {
				v := colorCh.Data[i*colorCh.Size+k]
				_, _ = fmt.Fprintf(writer, " %d", clamp(int(v*255+0.5), 0, 255))
			}
		}
		_, _ = fmt.Fprintln(writer)
	}

	for t := 0; t < m.TriangleCount(); t++ {
		_, _ = fmt.Fprintf(writer, "3 %d %d %d\n", m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2])
	}

	return writer.Flush()
}

// SavePLY writes the mesh to fileName in PLY format.
func (m *Mesh) SavePLY(fileName string) error {
	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create PLY file %s: %w", fileName, err)
	}
	defer file.Close()

	if err := m.WritePLY(file); err != nil {
		return fmt.Errorf("error writing PLY file %s: %w", fileName, err)
	}
	return file.Close()
}

// ReadPLY parses an ASCII PLY file of triangles back into a Mesh. Vertex
// normals are read when present and computed from the faces otherwise;
// per-vertex red/green/blue(/alpha) become a color channel. Detail and Radius
// are not recoverable and stay zero. Files declaring more vertices or faces
// than a build at the maximum detail level are rejected with ErrMeshTooLarge.
func ReadPLY(reader io.Reader, opts ...Option) (*Mesh, error) {
	scanner := bufio.NewScanner(reader)

	var vertexCount, faceCount int
	var currentElement string
	var vertexProps []string

	headerDone := false
	for scanner.Scan() {
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		switch parts[0] {
		case "format":
			if len(parts) < 2 || parts[1] != "ascii" {
				return nil, fmt.Errorf("unsupported PLY format %q", strings.Join(parts[1:], " "))
			}
		case "element":
			if len(parts) == 3 {
				currentElement = parts[1]
				n, err := strconv.Atoi(parts[2])
				if err != nil {
					return nil, fmt.Errorf("invalid element count %q: %w", parts[2], err)
				}
				if n < 0 {
					return nil, fmt.Errorf("negative element count %d for %s", n, parts[1])
				}
				if parts[1] == "vertex" {
					vertexCount = n
				} else if parts[1] == "face" {
					faceCount = n
				}
			}
		case "property":
			if currentElement == "vertex" && len(parts) == 3 {
				vertexProps = append(vertexProps, parts[2])
			}
		case "end_header":
			headerDone = true
		}
		if headerDone {
			break
		}
	}
	if !headerDone {
		return nil, fmt.Errorf("PLY header has no end_header")
	}

	maxVertices, maxTriangles := readLimits(buildOptions(opts))
	if int64(vertexCount) > maxVertices || int64(faceCount) > maxTriangles {
		return nil, fmt.Errorf("%w: %d vertices and %d faces, limit %d and %d",
			ErrMeshTooLarge, vertexCount, faceCount, maxVertices, maxTriangles)
	}

	propIndex := make(map[string]int, len(vertexProps))
	for i, p := range vertexProps {
		propIndex[p] = i
	}
	hasPositions, err := propertySet(propIndex, "x", "y", "z")
	if err != nil {
		return nil, err
	}
	if !hasPositions {
		return nil, fmt.Errorf("PLY vertex element has no x, y and z properties")
	}
	hasNormals, err := propertySet(propIndex, "nx", "ny", "nz")
	if err != nil {
		return nil, err
	}
	hasColor, err := propertySet(propIndex, "red", "green", "blue")
	if err != nil {
		return nil, err
	}
	_, hasAlpha := propIndex["alpha"]
	if hasAlpha && !hasColor {
		return nil, fmt.Errorf("PLY vertex element has alpha without red, green and blue")
	}

	m := &Mesh{
		Positions: make([]float32, 0, vertexCount*3),
		Indices:   make([]uint32, 0, faceCount*3),
	}
	if hasNormals {
		m.Normals = make([]float32, 0, vertexCount*3)
	}
	var colors []float32

	field := func(parts []string, name string) (float32, error) {
		v, err := strconv.ParseFloat(parts[propIndex[name]], 32)
		return float32(v), err
	}

	for i := 0; i < vertexCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading vertices")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) < len(vertexProps) {
			return nil, fmt.Errorf("invalid vertex data on line %d", i)
		}

		for _, name := range []string{"x", "y", "z"} {
			v, err := field(parts, name)
			if err != nil {
				return nil, fmt.Errorf("vertex %d %s: %w", i, name, err)
			}
			m.Positions = append(m.Positions, v)
		}
		if hasNormals {
			for _, name := range []string{"nx", "ny", "nz"} {
				v, err := field(parts, name)
				if err != nil {
					return nil, fmt.Errorf("vertex %d %s: %w", i, name, err)
				}
				m.Normals = append(m.Normals, v)
			}
		}
		if hasColor {
			names := []string{"red", "green", "blue"}
			if hasAlpha {
				names = append(names, "alpha")
			}
			for _, name := range names {
				v, err := field(parts, name)
				if err != nil {
					return nil, fmt.Errorf("vertex %d %s: %w", i, name, err)
				}
				colors = append(colors, v/255.0)
			}
			if !hasAlpha {
				colors = append(colors, 1)
			}
		}
	}

	for i := 0; i < faceCount; i++ {
		if !scanner.Scan() {
			return nil, fmt.Errorf("unexpected end of file while reading faces")
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) != 4 || parts[0] != "3" {
			return nil, fmt.Errorf("face %d is not a triangle", i)
		}
		for j := 1; j <= 3; j++ {
			idx, err := strconv.ParseUint(parts[j], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("face %d index: %w", i, err)
			}
			if idx >= uint64(vertexCount) {
				return nil, fmt.Errorf("%w: face %d uses vertex %d of %d", ErrInconsistentMesh, i, idx, vertexCount)
			}
			m.Indices = append(m.Indices, uint32(idx))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from PLY source: %w", err)
	}

	m.IndexCount = len(m.Indices)
	if hasColor {
		m.Channels = []Channel{{Name: ChannelColor, Size: 4, Data: colors}}
	}
	if !hasNormals {
		m.computeNormals()
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// propertySet reports whether all of names are vertex properties. Having only
// some of them is an error.
func propertySet(propIndex map[string]int, names ...string) (bool, error) {
	var missing []string
	for _, name := range names {
		if _, ok := propIndex[name]; !ok {
			missing = append(missing, name)
		}
	}
	switch len(missing) {
	case 0:
		return true, nil
	case len(names):
		return false, nil
	}
	return false, fmt.Errorf("PLY vertex element is missing %s", strings.Join(missing, ", "))
}
