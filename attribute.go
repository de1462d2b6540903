package geosphere

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl32"
)

// Channel names written by the built-in attributes.
const (
	ChannelColor     = "color"
	ChannelAmbient   = "ambient"
	ChannelDiffuse   = "diffuse"
	ChannelSpecular  = "specular"
	ChannelShininess = "shininess"
)

// ChannelLayout names one per-vertex attribute buffer and the number of
// floats it holds for each vertex.
type ChannelLayout struct {
	Name string
	Size int
}

// Attribute is a shading value carried by every vertex of a solid. A solid
// has exactly one attribute value; it is copied onto each vertex as the
// vertex is created and never interpolated.
type Attribute interface {
	// Layout lists the channels the attribute flattens into.
	Layout() []ChannelLayout
	// AppendComponents appends this value to the channel buffers, which are
	// indexed in Layout order.
	AppendComponents(channels [][]float32)
}

// Color is a flat RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float32
}

// RGBA builds a Color from float components.
func RGBA(r, g, b, a float32) Color {
	return Color{R: r, G: g, B: b, A: a}
}

// ColorFromRGBA converts an 8-bit color.
func ColorFromRGBA(c color.RGBA) Color {
	return Color{
		R: float32(c.R) / 255.0,
		G: float32(c.G) / 255.0,
		B: float32(c.B) / 255.0,
		A: float32(c.A) / 255.0,
	}
}

// RGBA converts back to an 8-bit color, clamping out of range components.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp(int(c.R*255+0.5), 0, 255)),
		G: uint8(clamp(int(c.G*255+0.5), 0, 255)),
		B: uint8(clamp(int(c.B*255+0.5), 0, 255)),
		A: uint8(clamp(int(c.A*255+0.5), 0, 255)),
	}
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

func (c Color) Layout() []ChannelLayout {
	return []ChannelLayout{{Name: ChannelColor, Size: 4}}
}

func (c Color) AppendComponents(channels [][]float32) {
	channels[0] = append(channels[0], c.R, c.G, c.B, c.A)
}

func (c Color) String() string {
	return fmt.Sprintf("rgba(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

// Material is a Phong material record.
type Material struct {
	Ambient   mgl32.Vec3
	Diffuse   mgl32.Vec3
	Specular  mgl32.Vec3
	Shininess float32
}

func (m Material) Layout() []ChannelLayout {
	return []ChannelLayout{
		{Name: ChannelAmbient, Size: 3},
		{Name: ChannelDiffuse, Size: 3},
		{Name: ChannelSpecular, Size: 3},
		{Name: ChannelShininess, Size: 1},
	}
}

func (m Material) AppendComponents(channels [][]float32) {
	channels[0] = append(channels[0], m.Ambient[0], m.Ambient[1], m.Ambient[2])
	channels[1] = append(channels[1], m.Diffuse[0], m.Diffuse[1], m.Diffuse[2])
	channels[2] = append(channels[2], m.Specular[0], m.Specular[1], m.Specular[2])
	channels[3] = append(channels[3], m.Shininess)
}
