package nxncube

// Phase is the stage of a play session. Phases progress from Created to
// Solved; Retry moves a session back to Scrambling.
type Phase int

const (
	// PhaseCreated indicates the lattice is built and untouched.
	PhaseCreated Phase = iota

	// PhaseScrambling indicates a scramble plan is being applied.
	PhaseScrambling

	// PhaseManipulating indicates the player may pick and drag slices.
	PhaseManipulating

	// PhaseSolved indicates every cubie shares one orientation after a
	// committed move.
	PhaseSolved
)

// String returns a short identifier for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseScrambling:
		return "scrambling"
	case PhaseManipulating:
		return "manipulating"
	case PhaseSolved:
		return "solved"
	default:
		return "unknown"
	}
}

// DisplayName returns a human-readable name for the phase.
func (p Phase) DisplayName() string {
	switch p {
	case PhaseCreated:
		return "Created"
	case PhaseScrambling:
		return "Scrambling"
	case PhaseManipulating:
		return "Your Move"
	case PhaseSolved:
		return "Solved"
	default:
		return "Unknown"
	}
}

// IsComplete returns true if the cube is solved.
func (p Phase) IsComplete() bool {
	return p == PhaseSolved
}
