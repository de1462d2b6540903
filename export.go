package geosphere

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for an export format this package cannot write.
var ErrUnknownFormat = errors.New("geosphere: unknown export format")

// Format selects an export encoding.
type Format string

const (
	FormatPLY    Format = "ply"
	FormatSTL    Format = "stl"
	FormatJSON   Format = "json"
	FormatBinary Format = "bin"
)

// ParseFormat accepts a format name or a file extension such as ".ply".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(s, ".")))
	switch f {
	case FormatPLY, FormatSTL, FormatJSON, FormatBinary:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// FormatFromPath infers the format from a file name's extension.
func FormatFromPath(fileName string) (Format, error) {
	return ParseFormat(filepath.Ext(fileName))
}

// Export writes the mesh to w. STL needs a file path and is only available
// through Save.
func (m *Mesh) Export(w io.Writer, f Format) error {
	switch f {
	case FormatPLY:
		return m.WritePLY(w)
	case FormatJSON:
		enc := json.NewEncoder(w)
		return enc.Encode(m)
	case FormatBinary:
		_, err := m.WriteTo(w)
		return err
	case FormatSTL:
		return fmt.Errorf("%w: %s must be saved to a file", ErrUnknownFormat, f)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// Save writes the mesh to fileName in the given format.
func (m *Mesh) Save(fileName string, f Format) error {
	switch f {
	case FormatSTL:
		return m.SaveSTL(fileName)
	case FormatPLY:
		return m.SavePLY(fileName)
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("could not create %s file %s: %w", f, fileName, err)
	}
	defer file.Close()

	if err := m.Export(file, f); err != nil {
		return fmt.Errorf("error writing %s file %s: %w", f, fileName, err)
	}
	return file.Close()
}
