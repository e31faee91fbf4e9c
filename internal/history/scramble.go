package history

import (
	"math/rand/v2"

	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// DefaultScrambleDegree is the quarter turn used by generated plans.
const DefaultScrambleDegree = 90

// Plan is an ordered list of moves applied by a scramble.
type Plan []MoveRecord

// Clone returns a copy of p.
func (p Plan) Clone() Plan {
	return append(Plan(nil), p...)
}

// Scrambler generates scramble plans and keeps the last one for replay.
type Scrambler struct {
	rng    *rand.Rand
	degree int
	plan   Plan
}

// NewScrambler creates a scrambler. The same seed yields the same plans.
func NewScrambler(seed uint64, degree int) *Scrambler {
	if degree == 0 {
		degree = DefaultScrambleDegree
	}
	return &Scrambler{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		degree: degree,
	}
}

// Plan returns the retained plan, or nil if none was generated yet.
func (s *Scrambler) Plan() Plan {
	return s.plan.Clone()
}

// SetPlan replaces the retained plan, e.g. with one loaded from disk.
func (s *Scrambler) SetPlan(p Plan) {
	s.plan = p.Clone()
}

// HasPlan reports whether a plan is retained.
func (s *Scrambler) HasPlan() bool {
	return len(s.plan) > 0
}

// Clear drops the retained plan.
func (s *Scrambler) Clear() {
	s.plan = nil
}

// Next returns the plan to run: the retained one when reuse is set and a
// plan exists, otherwise a fresh plan of length times drawn from ids.
func (s *Scrambler) Next(ids []int, times int, reuse bool) Plan {
	if reuse && s.HasPlan() {
		return s.Plan()
	}
	s.plan = s.generate(ids, times)
	return s.Plan()
}

func (s *Scrambler) generate(ids []int, times int) Plan {
	if len(ids) == 0 || times <= 0 {
		return nil
	}

	plan := make(Plan, 0, times)
	for i := 0; i < times; i++ {
		id := ids[s.rng.IntN(len(ids))]

		var r lattice.Vec3i
		switch s.rng.IntN(6) {
		case 0:
			r = lattice.Vec3i{X: s.degree}
		case 1:
			r = lattice.Vec3i{X: -s.degree}
		case 2:
			r = lattice.Vec3i{Y: s.degree}
		case 3:
			r = lattice.Vec3i{Y: -s.degree}
		case 4:
			r = lattice.Vec3i{Z: s.degree}
		case 5:
			r = lattice.Vec3i{Z: -s.degree}
		}

		plan = append(plan, MoveRecord{CubieID: id, Rotation: r})
	}
	return plan
}
