package scene

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/smasonuk/geosphere"
)

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites :keyword tokens into "__kw_keyword" string
// literals and ; line comments into the // comments zygomys reads. String
// literals are copied untouched.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			result = append(result, '"')
			result = append(result, kwPrefix...)
			result = append(result, b[i+1:j]...)
			result = append(result, '"')
			i = j
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

// Values passed between builtins.

type sexpVec3 struct {
	vec mgl64.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

type sexpColor struct {
	color geosphere.Color
}

func (c *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(rgba %g %g %g %g)", c.color.R, c.color.G, c.color.B, c.color.A)
}
func (c *sexpColor) Type() *zygo.RegisteredType { return nil }

type sexpMaterial struct {
	material geosphere.Material
}

func (m *sexpMaterial) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(material :shininess %g)", m.material.Shininess)
}
func (m *sexpMaterial) Type() *zygo.RegisteredType { return nil }

type sexpBody struct {
	name string
}

func (b *sexpBody) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(sphere %q)", b.name)
}
func (b *sexpBody) Type() *zygo.RegisteredType { return nil }

// Argument helpers.

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// parseKWArgs reads a list made only of :keyword value pairs.
func parseKWArgs(fn string, args []zygo.Sexp, allowed ...string) (map[string]zygo.Sexp, error) {
	kw := make(map[string]zygo.Sexp, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		name, ok := isKW(args[i])
		if !ok {
			return nil, fmt.Errorf("%s: expected keyword, got %s", fn, args[i].SexpString(nil))
		}
		if i+1 >= len(args) {
			return nil, fmt.Errorf("%s: :%s has no value", fn, name)
		}
		known := false
		for _, a := range allowed {
			if a == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("%s: unknown keyword :%s", fn, name)
		}
		if _, dup := kw[name]; dup {
			return nil, fmt.Errorf("%s: :%s given twice", fn, name)
		}
		kw[name] = args[i+1]
	}
	return kw, nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %s", s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (mgl64.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return mgl64.Vec3{}, fmt.Errorf("expected vec3, got %s", s.SexpString(nil))
}

func toVec3f(s zygo.Sexp) (mgl32.Vec3, error) {
	v, err := toVec3(s)
	if err != nil {
		return mgl32.Vec3{}, err
	}
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}, nil
}

// errStopped is returned by every builtin once the evaluation was abandoned.
var errStopped = errors.New("evaluation stopped")

// collector accumulates the spheres declared by one evaluation.
type collector struct {
	bodies  []Body
	names   map[string]bool
	stopped atomic.Bool
}

func newCollector() *collector {
	return &collector{names: make(map[string]bool)}
}

func (c *collector) add(b Body) error {
	if c.names[b.Name] {
		return fmt.Errorf("sphere: duplicate name %q", b.Name)
	}
	c.names[b.Name] = true
	c.bodies = append(c.bodies, b)
	return nil
}

type builtin func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs vec3, rgba, material and sphere. Every sphere
// form appends a Body to c. Once c is stopped every call fails, which ends
// any script that keeps calling them.
func registerBuiltins(env *zygo.Zlisp, c *collector) {
	addFunction := func(fnName string, fn builtin) {
		env.AddFunction(fnName, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			if c.stopped.Load() {
				return zygo.SexpNull, errStopped
			}
			return fn(env, name, args)
		})
	}

	// (vec3 1 2 3)
	addFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}
		var v mgl64.Vec3
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: component %d: %w", i, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// (rgba 1 0.5 0) or (rgba 1 0.5 0 0.8)
	addFunction("rgba", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 && len(args) != 4 {
			return zygo.SexpNull, fmt.Errorf("rgba requires 3 or 4 arguments, got %d", len(args))
		}
		comp := [4]float32{1, 1, 1, 1}
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("rgba: component %d: %w", i, err)
			}
			if f < 0 || f > 1 {
				return zygo.SexpNull, fmt.Errorf("rgba: component %d is %g, outside [0, 1]", i, f)
			}
			comp[i] = float32(f)
		}
		return &sexpColor{color: geosphere.RGBA(comp[0], comp[1], comp[2], comp[3])}, nil
	})

	// (material :ambient (vec3 ...) :diffuse (vec3 ...) :specular (vec3 ...) :shininess 32)
	addFunction("material", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		kw, err := parseKWArgs("material", args, "ambient", "diffuse", "specular", "shininess")
		if err != nil {
			return zygo.SexpNull, err
		}
		var m geosphere.Material
		for key, dst := range map[string]*mgl32.Vec3{"ambient": &m.Ambient, "diffuse": &m.Diffuse, "specular": &m.Specular} {
			v, ok := kw[key]
			if !ok {
				continue
			}
			if *dst, err = toVec3f(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("material: %s: %w", key, err)
			}
		}
		if v, ok := kw["shininess"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("material: shininess: %w", err)
			}
			if f < 0 {
				return zygo.SexpNull, fmt.Errorf("material: shininess must not be negative, got %g", f)
			}
			m.Shininess = float32(f)
		}
		return &sexpMaterial{material: m}, nil
	})

	// (sphere :name "earth" :detail 3 :radius 1 :at (vec3 0 0 0) :color (rgba 1 1 1))
	addFunction("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		kw, err := parseKWArgs("sphere", args, "name", "detail", "radius", "at", "color", "material")
		if err != nil {
			return zygo.SexpNull, err
		}

		b := Body{
			Name:      fmt.Sprintf("sphere%d", len(c.bodies)),
			Detail:    DefaultDetail,
			Radius:    DefaultRadius,
			Attribute: DefaultColor,
		}
		if v, ok := kw["name"]; ok {
			if b.Name, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere: name: %w", err)
			}
		}
		if v, ok := kw["detail"]; ok {
			if b.Detail, err = toInt(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere %q: detail: %w", b.Name, err)
			}
			if b.Detail < 0 {
				return zygo.SexpNull, fmt.Errorf("sphere %q: detail must not be negative, got %d", b.Name, b.Detail)
			}
		}
		if v, ok := kw["radius"]; ok {
			if b.Radius, err = toFloat64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere %q: radius: %w", b.Name, err)
			}
			if b.Radius <= 0 {
				return zygo.SexpNull, fmt.Errorf("sphere %q: radius must be positive, got %g", b.Name, b.Radius)
			}
		}
		if v, ok := kw["at"]; ok {
			if b.Position, err = toVec3(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sphere %q: at: %w", b.Name, err)
			}
		}

		colorArg, hasColor := kw["color"]
		materialArg, hasMaterial := kw["material"]
		switch {
		case hasColor && hasMaterial:
			return zygo.SexpNull, fmt.Errorf("sphere %q: :color and :material are exclusive", b.Name)
		case hasColor:
			col, ok := colorArg.(*sexpColor)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("sphere %q: color: expected rgba, got %s", b.Name, colorArg.SexpString(nil))
			}
			b.Attribute = col.color
		case hasMaterial:
			mat, ok := materialArg.(*sexpMaterial)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("sphere %q: material: expected material, got %s", b.Name, materialArg.SexpString(nil))
			}
			b.Attribute = mat.material
		}

		if err := c.add(b); err != nil {
			return zygo.SexpNull, err
		}
		return &sexpBody{name: b.Name}, nil
	})
}
