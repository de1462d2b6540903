// Command geosphere writes geodesic sphere meshes to PLY, STL, JSON or raw
// buffer files, either one sphere from flags or every sphere of a scene script.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/smasonuk/geosphere"
	"github.com/smasonuk/geosphere/scene"
)

type config struct {
	detail    int
	radius    float64
	color     string
	format    string
	output    string
	script    string
	workers   int
	maxDetail int
	quiet     bool
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("geosphere: %v", err)
	}
}

func parseFlags(args []string) (config, error) {
	var cfg config
	fs := flag.NewFlagSet("geosphere", flag.ContinueOnError)
	fs.IntVar(&cfg.detail, "detail", 2, "Subdivision level; each level multiplies the triangle count by 4.")
	fs.Float64Var(&cfg.radius, "radius", 1, "Sphere radius.")
	fs.StringVar(&cfg.color, "color", "#ffffffff", "Vertex color as #rrggbb or #rrggbbaa.")
	fs.StringVar(&cfg.format, "format", "", "Output format: ply, stl, json or bin (default: from the output extension).")
	fs.StringVar(&cfg.output, "o", "geosphere.ply", "Output file, '-' for stdout, or a directory when -script is set.")
	fs.StringVar(&cfg.script, "script", "", "Scene script; writes one file per sphere.")
	fs.IntVar(&cfg.workers, "workers", 1, "Goroutines subdividing faces.")
	fs.IntVar(&cfg.maxDetail, "max-detail", geosphere.DefaultMaxDetail, "Largest detail level accepted.")
	fs.BoolVar(&cfg.quiet, "quiet", false, "Do not log progress.")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return cfg, nil
}

func run(args []string, stdout io.Writer) error {
	cfg, err := parseFlags(args)
	if err != nil {
		return err
	}

	logger := log.Default()
	if cfg.quiet {
		logger = nil
	}
	opts := []geosphere.Option{
		geosphere.WithWorkers(cfg.workers),
		geosphere.WithMaxDetail(cfg.maxDetail),
		geosphere.WithLogger(logger),
	}

	if cfg.script != "" {
		return writeScene(cfg, opts, logger)
	}

	col, err := parseHexColor(cfg.color)
	if err != nil {
		return err
	}
	mesh, err := geosphere.Build(cfg.detail, cfg.radius, col, opts...)
	if err != nil {
		return err
	}

	format, err := outputFormat(cfg.format, cfg.output)
	if err != nil {
		return err
	}
	if cfg.output == "-" {
		return mesh.Export(stdout, format)
	}
	if err := mesh.Save(cfg.output, format); err != nil {
		return err
	}
	if logger != nil {
		logger.Printf("Wrote %s", cfg.output)
	}
	return nil
}

// writeScene builds every body of the script and writes <dir>/<name>.<format>.
func writeScene(cfg config, opts []geosphere.Option, logger *log.Logger) error {
	bodies, err := scene.LoadFile(cfg.script)
	if err != nil {
		return err
	}

	format := geosphere.FormatPLY
	if cfg.format != "" {
		if format, err = geosphere.ParseFormat(cfg.format); err != nil {
			return err
		}
	}

	dir := cfg.output
	if dir == "" || dir == "-" || filepath.Ext(dir) != "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	for _, b := range bodies {
		mesh, err := b.Build(opts...)
		if err != nil {
			return err
		}
		path := filepath.Join(dir, b.Name+"."+string(format))
		if err := mesh.Save(path, format); err != nil {
			return err
		}
		if logger != nil {
			logger.Printf("Wrote %s (%d triangles)", path, mesh.TriangleCount())
		}
	}
	return nil
}

func outputFormat(flagValue, output string) (geosphere.Format, error) {
	if flagValue != "" {
		return geosphere.ParseFormat(flagValue)
	}
	if output == "-" {
		return geosphere.FormatPLY, nil
	}
	return geosphere.FormatFromPath(output)
}

// parseHexColor reads #rrggbb or #rrggbbaa.
func parseHexColor(s string) (geosphere.Color, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return geosphere.Color{}, fmt.Errorf("invalid color %q: want #rrggbb or #rrggbbaa", s)
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return geosphere.Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return geosphere.RGBA(
		float32(v>>24&0xff)/255,
		float32(v>>16&0xff)/255,
		float32(v>>8&0xff)/255,
		float32(v&0xff)/255,
	), nil
}
