package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/smasonuk/geosphere"
)

// Light is a white-ish point light with separate Phong terms.
type Light struct {
	Position mgl64.Vec3
	Ambient  mgl32.Vec3
	Diffuse  mgl32.Vec3
	Specular mgl32.Vec3
}

// DefaultLight sits up and to the right of the origin.
func DefaultLight() Light {
	return Light{
		Position: mgl64.Vec3{4, 3, 4},
		Ambient:  mgl32.Vec3{1, 1, 1},
		Diffuse:  mgl32.Vec3{1, 1, 1},
		Specular: mgl32.Vec3{1, 1, 1},
	}
}

// Flat colors are lit with a fixed split between an always-on ambient share
// and a diffuse share, and no highlight.
const (
	ambientLight = 0.35
	diffuseLight = 1.0 - ambientLight
)

// surface is the material of one vertex as read back from a mesh.
type surface struct {
	ambient, diffuse, specular mgl32.Vec3
	shininess                  float32
	alpha                      float32
}

// surfaceReader reads per-vertex materials out of a mesh's channels.
type surfaceReader func(i int) surface

// newSurfaceReader picks material channels when the mesh has them, then a
// flat color channel, then plain white.
func newSurfaceReader(m *geosphere.Mesh) surfaceReader {
	ambient, hasAmbient := m.Channel(geosphere.ChannelAmbient)
	diffuse, hasDiffuse := m.Channel(geosphere.ChannelDiffuse)
	specular, hasSpecular := m.Channel(geosphere.ChannelSpecular)
	shininess, hasShininess := m.Channel(geosphere.ChannelShininess)
	if hasAmbient && hasDiffuse && hasSpecular && hasShininess {
		return func(i int) surface {
			return surface{
				ambient:   vec3At(ambient, i),
				diffuse:   vec3At(diffuse, i),
				specular:  vec3At(specular, i),
				shininess: shininess.Data[i],
				alpha:     1,
			}
		}
	}

	if col, ok := m.Channel(geosphere.ChannelColor); ok && col.Size >= 4 {
		return func(i int) surface {
			c := mgl32.Vec3{col.Data[i*col.Size], col.Data[i*col.Size+1], col.Data[i*col.Size+2]}
			return surface{
				ambient: c.Mul(ambientLight),
				diffuse: c.Mul(diffuseLight),
				alpha:   col.Data[i*col.Size+3],
			}
		}
	}

	white := mgl32.Vec3{1, 1, 1}
	return func(int) surface {
		return surface{ambient: white.Mul(ambientLight), diffuse: white.Mul(diffuseLight), alpha: 1}
	}
}

func vec3At(c geosphere.Channel, i int) mgl32.Vec3 {
	return mgl32.Vec3{c.Data[i*c.Size], c.Data[i*c.Size+1], c.Data[i*c.Size+2]}
}

// shade evaluates the Phong model at position p with unit normal n seen from
// eye. The result is clamped to [0, 1] per channel.
func shade(s surface, p, n, eye mgl64.Vec3, light Light) mgl32.Vec4 {
	toLight := light.Position.Sub(p)
	if toLight.Len() > 0 {
		toLight = toLight.Normalize()
	}
	diff := math.Max(n.Dot(toLight), 0)

	var spec float64
	if diff > 0 && s.shininess > 0 {
		toEye := eye.Sub(p)
		if toEye.Len() > 0 {
			toEye = toEye.Normalize()
			reflected := n.Mul(2 * n.Dot(toLight)).Sub(toLight)
			spec = math.Pow(math.Max(reflected.Dot(toEye), 0), float64(s.shininess))
		}
	}

	var out mgl32.Vec4
	for k := 0; k < 3; k++ {
		v := s.ambient[k]*light.Ambient[k] +
			s.diffuse[k]*light.Diffuse[k]*float32(diff) +
			s.specular[k]*light.Specular[k]*float32(spec)
		out[k] = mgl32.Clamp(v, 0, 1)
	}
	out[3] = mgl32.Clamp(s.alpha, 0, 1)
	return out
}
