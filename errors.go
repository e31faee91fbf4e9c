package nxncube

import (
	"errors"

	"github.com/SeamusWaldron/nxncube/internal/engine"
	"github.com/SeamusWaldron/nxncube/internal/history"
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Sentinel errors for the nxncube package.
var (
	// Lattice errors
	ErrInvalidDimension = lattice.ErrInvalidDimension

	// Parsing errors
	ErrInvalidNotation = history.ErrInvalidNotation

	// Engine errors
	ErrBusy         = engine.ErrBusy
	ErrUnknownCubie = engine.ErrUnknownCubie
	ErrInvalidMove  = engine.ErrInvalidMove

	// Session errors
	ErrAlreadyStarted = errors.New("nxncube: session already started")
	ErrNotStarted     = errors.New("nxncube: session not started")
	ErrClosed         = errors.New("nxncube: session closed")
)
