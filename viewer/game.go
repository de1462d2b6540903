// Package viewer shows scene bodies in an ebiten window and lets the user
// change each sphere's detail level while it is on screen.
package viewer

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/smasonuk/geosphere"
	"github.com/smasonuk/geosphere/scene"
)

const (
	orbitSpeed = 0.03
	zoomStep   = 1.02
)

// body is one scene body on screen.
type body struct {
	name       string
	position   mgl64.Vec3
	controller *geosphere.Controller[geosphere.Attribute]
	pending    atomic.Bool
	swaps      atomic.Int64
}

// Game implements ebiten.Game.
type Game struct {
	bodies   []*body
	selected int
	camera   *Camera
	light    Light
	logger   *log.Logger
	showHUD  bool

	width, height int
	triangles     []screenTriangle
	lastErr       atomic.Pointer[string]
}

// NewGame builds every body's initial mesh and frames the camera so the whole
// scene is visible.
func NewGame(bodies []scene.Body, opts ...geosphere.Option) (*Game, error) {
	if len(bodies) == 0 {
		return nil, errors.New("viewer: nothing to show")
	}

	o := geosphere.DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	g := &Game{
		light:   DefaultLight(),
		logger:  o.Logger,
		showHUD: true,
		width:   800,
		height:  600,
	}

	extent := 0.0
	var centre mgl64.Vec3
	for _, sb := range bodies {
		c, err := sb.Controller(opts...)
		if err != nil {
			return nil, err
		}
		b := &body{name: sb.Name, position: sb.Position, controller: c}
		c.OnSwap(func(m *geosphere.Mesh) {
			b.swaps.Add(1)
			g.logf("%s now at detail %d: %d triangles", b.name, m.Detail, m.TriangleCount())
		})
		g.bodies = append(g.bodies, b)
		centre = centre.Add(sb.Position)
	}
	centre = centre.Mul(1 / float64(len(bodies)))
	for _, sb := range bodies {
		extent = math.Max(extent, sb.Position.Sub(centre).Len()+sb.Radius)
	}

	g.camera = NewCamera(centre, extent*3)
	g.camera.Pitch = 0.3
	g.camera.Far = math.Max(g.camera.Far, extent*20)
	return g, nil
}

func (g *Game) logf(format string, args ...any) {
	if g.logger != nil {
		g.logger.Printf(format, args...)
	}
}

func (g *Game) Camera() *Camera {
	return g.camera
}

// SetLight replaces the scene light.
func (g *Game) SetLight(l Light) {
	g.light = l
}

// changeDetail asks the selected body for a new detail level. The rebuild
// runs off the game loop; the old mesh stays on screen until the controller
// swaps in the new one.
func (g *Game) changeDetail(delta int) {
	b := g.bodies[g.selected]
	detail := b.controller.Detail() + delta
	if detail < 0 {
		return
	}
	if !b.pending.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer b.pending.Store(false)
		if _, err := b.controller.Rebuild(detail); err != nil {
			msg := err.Error()
			g.lastErr.Store(&msg)
			g.logf("%s: %v", b.name, err)
			return
		}
		g.lastErr.Store(nil)
	}()
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	if ebiten.IsKeyPressed(ebiten.KeyLeft) {
		g.camera.AddAngle(-orbitSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyRight) {
		g.camera.AddAngle(orbitSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyUp) {
		g.camera.AddAngle(0, orbitSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyDown) {
		g.camera.AddAngle(0, -orbitSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		g.camera.Zoom(1 / zoomStep)
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) {
		g.camera.Zoom(zoomStep)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		g.camera.Zoom(math.Pow(zoomStep, -dy*4))
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEqual) || inpututil.IsKeyJustPressed(ebiten.KeyKPAdd) {
		g.changeDetail(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyMinus) || inpututil.IsKeyJustPressed(ebiten.KeyKPSubtract) {
		g.changeDetail(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		g.selected = (g.selected + 1) % len(g.bodies)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	return nil
}

// drawables snapshots the current mesh of every body.
func (g *Game) drawables() []drawable {
	items := make([]drawable, len(g.bodies))
	for i, b := range g.bodies {
		items[i] = drawable{mesh: b.controller.Mesh(), offset: b.position}
	}
	return items
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.triangles = assemble(g.drawables(), g.camera, g.light, g.width, g.height, g.triangles[:0])
	sortByDepth(g.triangles)
	drawBatches(screen, batchTriangles(g.triangles))

	if g.showHUD {
		ebitenutil.DebugPrint(screen, g.hud())
	}
}

func (g *Game) hud() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "TPS %.0f  FPS %.0f  drawn %d\n", ebiten.ActualTPS(), ebiten.ActualFPS(), len(g.triangles))
	for i, b := range g.bodies {
		marker := " "
		if i == g.selected {
			marker = ">"
		}
		m := b.controller.Mesh()
		state := b.controller.State().String()
		if b.pending.Load() {
			state = geosphere.Rebuilding.String()
		}
		fmt.Fprintf(&sb, "%s %-10s detail %d  %7d tris  %s\n", marker, b.name, m.Detail, m.TriangleCount(), state)
	}
	if msg := g.lastErr.Load(); msg != nil {
		fmt.Fprintf(&sb, "error: %s\n", *msg)
	}
	sb.WriteString("+/- detail  tab select  arrows orbit  w/s zoom  h hud  esc quit")
	return sb.String()
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// Run opens a window and blocks until it is closed.
func Run(g *Game, title string) error {
	ebiten.SetWindowSize(g.width, g.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
