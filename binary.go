package geosphere

import (
	"encoding/binary"
	"fmt"
	"io"
)

// bufferMagic opens every raw buffer dump.
var bufferMagic = [4]byte{'G', 'S', 'P', 'H'}

const bufferVersion uint32 = 1

// Limits on channel records read back by ReadMesh.
const (
	maxChannels       = 16
	maxChannelNameLen = 64
	maxChannelSize    = 16
)

// WriteTo dumps the mesh as little-endian buffers ready to be copied into GPU
// vertex and index buffers:
//
//	magic "GSPH", version u32, vertexCount u32, indexCount u32, channelCount u32
//	positions f32[3N], normals f32[3N], indices u32[3T]
//	per channel: nameLen u32, name, size u32, data f32[size*N]
func (m *Mesh) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}

	header := []uint32{
		bufferVersion,
		uint32(m.VertexCount()),
		uint32(len(m.Indices)),
		uint32(len(m.Channels)),
	}
	if err := binary.Write(cw, binary.LittleEndian, bufferMagic); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, header); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, m.Positions); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, m.Normals); err != nil {
		return cw.n, err
	}
	if err := binary.Write(cw, binary.LittleEndian, m.Indices); err != nil {
		return cw.n, err
	}
	for _, c := range m.Channels {
		if err := binary.Write(cw, binary.LittleEndian, uint32(len(c.Name))); err != nil {
			return cw.n, err
		}
		if _, err := io.WriteString(cw, c.Name); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.LittleEndian, uint32(c.Size)); err != nil {
			return cw.n, err
		}
		if err := binary.Write(cw, binary.LittleEndian, c.Data); err != nil {
			return cw.n, err
		}
	}
	return cw.n, nil
}

// ReadMesh reads a buffer dump written by WriteTo. Counts in the header are
// checked before anything is allocated: a dump larger than a build at the
// maximum detail level fails with ErrMeshTooLarge.
func ReadMesh(r io.Reader, opts ...Option) (*Mesh, error) {
	var magic [4]byte
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if magic != bufferMagic {
		return nil, fmt.Errorf("not a geosphere buffer: magic %q", magic[:])
	}

	var header [4]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if header[0] != bufferVersion {
		return nil, fmt.Errorf("unsupported buffer version %d", header[0])
	}
	n, indexCount, channelCount := int(header[1]), int(header[2]), int(header[3])

	maxVertices, maxTriangles := readLimits(buildOptions(opts))
	if int64(n) > maxVertices || int64(indexCount) > maxTriangles*3 {
		return nil, fmt.Errorf("%w: %d vertices and %d indices, limit %d and %d",
			ErrMeshTooLarge, n, indexCount, maxVertices, maxTriangles*3)
	}
	if channelCount > maxChannels {
		return nil, fmt.Errorf("%w: %d channels", ErrInconsistentMesh, channelCount)
	}

	m := &Mesh{
		Positions:  make([]float32, n*3),
		Normals:    make([]float32, n*3),
		Indices:    make([]uint32, indexCount),
		IndexCount: indexCount,
	}
	if err := binary.Read(r, binary.LittleEndian, m.Positions); err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, m.Normals); err != nil {
		return nil, fmt.Errorf("reading normals: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, m.Indices); err != nil {
		return nil, fmt.Errorf("reading indices: %w", err)
	}

	for i := 0; i < channelCount; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("reading channel %d: %w", i, err)
		}
		if nameLen > maxChannelNameLen {
			return nil, fmt.Errorf("%w: channel %d name of %d bytes", ErrInconsistentMesh, i, nameLen)
		}
		name := make([]byte, nameLen)
		if _, err := io.ReadFull(r, name); err != nil {
			return nil, fmt.Errorf("reading channel %d name: %w", i, err)
		}
		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("reading channel %q: %w", name, err)
		}
		if size == 0 || size > maxChannelSize {
			return nil, fmt.Errorf("%w: channel %q of size %d", ErrInconsistentMesh, name, size)
		}
		data := make([]float32, n*int(size))
		if err := binary.Read(r, binary.LittleEndian, data); err != nil {
			return nil, fmt.Errorf("reading channel %q data: %w", name, err)
		}
		m.Channels = append(m.Channels, Channel{Name: string(name), Size: int(size), Data: data})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
