package viewer

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	maxPitch    = math.Pi/2 - 0.01
	minDistance = 0.1
)

// Camera orbits Target at Distance. Yaw turns around the Y axis, Pitch tilts
// above or below the XZ plane.
type Camera struct {
	Target   mgl64.Vec3
	Distance float64
	Yaw      float64
	Pitch    float64
	FovY     float64 // radians
	Near     float64
	Far      float64
}

func NewCamera(target mgl64.Vec3, distance float64) *Camera {
	return &Camera{
		Target:   target,
		Distance: math.Max(distance, minDistance),
		FovY:     mgl64.DegToRad(45),
		Near:     0.01,
		Far:      1000,
	}
}

// Eye returns the camera position in world space.
func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	dir := mgl64.Vec3{cp * math.Sin(c.Yaw), math.Sin(c.Pitch), cp * math.Cos(c.Yaw)}
	return c.Target.Add(dir.Mul(c.Distance))
}

// AddAngle turns the camera around its target. Pitch stops just short of the
// poles so the up vector never lines up with the view direction.
func (c *Camera) AddAngle(yaw, pitch float64) {
	c.Yaw = math.Mod(c.Yaw+yaw, 2*math.Pi)
	c.Pitch = mgl64.Clamp(c.Pitch+pitch, -maxPitch, maxPitch)
}

// Zoom scales the orbit distance by factor.
func (c *Camera) Zoom(factor float64) {
	c.Distance = math.Max(c.Distance*factor, minDistance)
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
}

func (c *Camera) Projection(width, height int) mgl64.Mat4 {
	aspect := 1.0
	if height > 0 {
		aspect = float64(width) / float64(height)
	}
	return mgl64.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// projector maps world points to screen pixels for one frame.
type projector struct {
	viewProj      mgl64.Mat4
	width, height float64
}

func (c *Camera) projector(width, height int) projector {
	return projector{
		viewProj: c.Projection(width, height).Mul4(c.View()),
		width:    float64(width),
		height:   float64(height),
	}
}

// project returns the screen position of p and its clip-space w, which grows
// with distance in front of the camera. ok is false for points on or behind
// the near plane.
func (p projector) project(v mgl64.Vec3) (x, y float32, w float64, ok bool) {
	clip := p.viewProj.Mul4x1(v.Vec4(1))
	w = clip[3]
	if w <= 0 || clip[2] < -w {
		return 0, 0, w, false
	}
	ndcX := clip[0] / w
	ndcY := clip[1] / w
	x = float32((ndcX + 1) / 2 * p.width)
	y = float32((1 - ndcY) / 2 * p.height)
	return x, y, w, true
}
