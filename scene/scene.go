// Package scene reads a small Lisp description of several spheres and turns
// it into Bodies that can each be built into a geosphere mesh.
//
// A script is a sequence of forms evaluated by a sandboxed zygomys
// interpreter:
//
//	; comments use semicolons
//	(sphere :name "earth" :detail 3 :radius 1.0 :at (vec3 0 0 0)
//	        :material (material :diffuse (vec3 0.2 0.3 0.8) :shininess 32))
//	(sphere :name "moon" :radius 0.3 :at (vec3 2 0 0) :color (rgba 0.8 0.8 0.8 1))
package scene

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/smasonuk/geosphere"
)

// Defaults for fields a sphere form leaves out.
const (
	DefaultDetail = 2
	DefaultRadius = 1.0
)

// EvalTimeout bounds a single script evaluation.
const EvalTimeout = 5 * time.Second

// ErrTimeout is returned when a script runs longer than EvalTimeout.
var ErrTimeout = errors.New("scene: evaluation timed out")

// DefaultColor is the attribute of a sphere with neither :color nor :material.
var DefaultColor = geosphere.RGBA(1, 1, 1, 1)

// Body is one sphere of a scene.
type Body struct {
	Name      string
	Position  mgl64.Vec3
	Detail    int
	Radius    float64
	Attribute geosphere.Attribute
}

// Build constructs the body's mesh. Positions are relative to the body's
// centre; Position is left to the renderer.
func (b Body) Build(opts ...geosphere.Option) (*geosphere.Mesh, error) {
	m, err := geosphere.Build(b.Detail, b.Radius, b.Attribute, opts...)
	if err != nil {
		return nil, fmt.Errorf("body %q: %w", b.Name, err)
	}
	return m, nil
}

// Controller builds the body and returns a controller that can rebuild it at
// other detail levels.
func (b Body) Controller(opts ...geosphere.Option) (*geosphere.Controller[geosphere.Attribute], error) {
	c, err := geosphere.NewController(b.Detail, b.Radius, b.Attribute, opts...)
	if err != nil {
		return nil, fmt.Errorf("body %q: %w", b.Name, err)
	}
	return c, nil
}

// EvalError is a parse or runtime error in a script.
type EvalError struct {
	Line    int
	Message string
}

func (e *EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("scene: line %d: %s", e.Line, e.Message)
	}
	return "scene: " + e.Message
}

type evalResult struct {
	bodies []Body
	err    error
}

// Evaluate runs source and returns the spheres it declares, in declaration
// order. An empty script yields no bodies.
//
// A script still running after EvalTimeout is abandoned with ErrTimeout. Its
// interpreter stops at the next vec3, rgba, material or sphere call; a loop
// that calls none of them keeps its goroutine busy until it ends.
func Evaluate(source string) ([]Body, error) {
	return evaluateWithin(source, EvalTimeout)
}

func evaluateWithin(source string, timeout time.Duration) ([]Body, error) {
	c := newCollector()
	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("scene: panic during evaluation: %v", r)}
			}
		}()

		bodies, err := evaluate(source, c)
		ch <- evalResult{bodies: bodies, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.bodies, res.err
	case <-timer.C:
		c.stopped.Store(true)
		return nil, fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
}

// LoadFile reads and evaluates the script at path.
func LoadFile(path string) ([]Body, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: reading %s: %w", path, err)
	}
	bodies, err := Evaluate(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bodies, nil
}

func evaluate(source string, c *collector) ([]Body, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, c)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return c.bodies, nil
}

// linePattern finds the "on line N" zygomys puts in parse and runtime errors.
var linePattern = regexp.MustCompile(`(?i)on line (\d+)`)

// parseZygomysError keeps the whole interpreter message, which may span
// several lines, and pulls out the line number when there is one.
func parseZygomysError(err error) *EvalError {
	msg := strings.TrimSpace(err.Error())
	e := &EvalError{Message: msg}
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		e.Line, _ = strconv.Atoi(m[1])
	}
	return e
}
