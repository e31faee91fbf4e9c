package nxncube

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/SeamusWaldron/nxncube/internal/engine"
	"github.com/SeamusWaldron/nxncube/internal/history"
)

// Option configures a Session.
type Option func(*config)

type config struct {
	dimension     int
	scrambleTimes int
	engine        engine.Config
	camera        engine.Camera
	logger        zerolog.Logger
	seeded        bool
}

func defaultConfig() *config {
	return &config{
		dimension:     3,
		scrambleTimes: 10,
		engine:        engine.DefaultConfig(),
		camera:        engine.FrontCamera(),
		logger:        zerolog.Nop(),
	}
}

// WithDimension sets N, the number of cubies along each edge. N must be at least 2.
func WithDimension(n int) Option {
	return func(c *config) {
		c.dimension = n
	}
}

// WithScrambleTimes sets the number of moves in a generated scramble.
func WithScrambleTimes(times int) Option {
	return func(c *config) {
		c.scrambleTimes = times
	}
}

// WithScrambleDegree sets the rotation of each generated scramble move.
// It must be a multiple of 90.
func WithScrambleDegree(deg int) Option {
	return func(c *config) {
		if deg == 0 {
			deg = history.DefaultScrambleDegree
		}
		c.engine.ScrambleDegree = deg
	}
}

// WithSeed fixes the scramble generator seed. Sessions with the same seed
// and dimension produce the same scrambles. Without it the seed comes from
// the clock.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.engine.Seed = seed
		c.seeded = true
	}
}

// WithDragThreshold sets the drag distance, in screen units, needed before
// a gesture picks its rotation axis.
func WithDragThreshold(units float64) Option {
	return func(c *config) {
		c.engine.DragThreshold = units
	}
}

// WithDragSensitivity sets the degrees of rotation per unit of drag.
func WithDragSensitivity(degPerUnit float64) Option {
	return func(c *config) {
		c.engine.DragSensitivity = degPerUnit
	}
}

// WithScramblePause sets the pause after each scramble move.
func WithScramblePause(d time.Duration) Option {
	return func(c *config) {
		c.engine.ScramblePause = d
	}
}

// WithCamera sets the camera whose basis maps drags to world axes.
// The default looks down -Z with +Y up.
func WithCamera(cam Camera) Option {
	return func(c *config) {
		c.camera = cam
	}
}

// WithLogger sets the logger. Sessions are silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.logger = log
	}
}
