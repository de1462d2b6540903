package geosphere

import (
	"errors"
	"log"
)

var (
	// ErrNegativeDetail is returned when a detail level below zero is requested.
	ErrNegativeDetail = errors.New("geosphere: detail level must be non-negative")

	// ErrDetailTooLarge is returned when a detail level exceeds the configured
	// maximum or would need more vertices than a uint32 index can address.
	ErrDetailTooLarge = errors.New("geosphere: detail level too large")

	// ErrInvalidRadius is returned for a radius that is not a positive finite number.
	ErrInvalidRadius = errors.New("geosphere: radius must be positive and finite")

	// ErrInconsistentMesh signals a broken structural invariant in a built mesh.
	ErrInconsistentMesh = errors.New("geosphere: inconsistent mesh")

	// ErrNilAttribute is returned when an interface-typed attribute is nil.
	ErrNilAttribute = errors.New("geosphere: attribute is nil")

	// ErrMeshTooLarge is returned by the readers when a file declares more
	// vertices or triangles than a build at the maximum detail level has.
	ErrMeshTooLarge = errors.New("geosphere: mesh too large")
)

// DefaultMaxDetail bounds the detail level accepted by Build unless
// WithMaxDetail says otherwise. Level 8 already yields 1,310,720 triangles.
const DefaultMaxDetail = 8

// hardMaxDetail is the last level Counts can report without overflow; level
// 15 already needs more vertices than a uint32 index can address.
const hardMaxDetail = 15

// Options configures mesh construction.
type Options struct {
	// Workers is the number of goroutines subdividing faces. Values below 2
	// subdivide on the calling goroutine.
	Workers int
	// MaxDetail is the largest detail level accepted.
	MaxDetail int
	// Logger receives build progress. Nil disables logging.
	Logger *log.Logger
}

// Option mutates Options.
type Option func(*Options)

// DefaultOptions returns serial subdivision, DefaultMaxDetail and the
// standard logger.
func DefaultOptions() Options {
	return Options{
		Workers:   1,
		MaxDetail: DefaultMaxDetail,
		Logger:    log.Default(),
	}
}

// WithWorkers subdivides the base faces on a pool of n workers. The output is
// identical to serial subdivision.
func WithWorkers(n int) Option {
	return func(o *Options) {
		o.Workers = n
	}
}

// WithMaxDetail overrides the largest accepted detail level.
func WithMaxDetail(d int) Option {
	return func(o *Options) {
		o.MaxDetail = d
	}
}

// WithLogger sets the logger. Passing nil silences the builder.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) logf(format string, args ...any) {
	if o.Logger != nil {
		o.Logger.Printf(format, args...)
	}
}
