package rotation

import (
	"github.com/SeamusWaldron/nxncube/internal/lattice"
)

// Animation rotates a fixed set of cubies about one axis, one increment per Step.
// It never touches grid positions; committing them is the caller's job.
type Animation struct {
	cubies []*lattice.Cubie
	axis   lattice.Axis
	steps  []float64
	next   int
	onDone func()
}

// NewAnimation prepares the stepped rotation of cubies by r. r must have at
// most one non-zero component; its magnitude may be any number of degrees.
func NewAnimation(cubies []*lattice.Cubie, r lattice.Vec3i) *Animation {
	mustSingleAxis(r)
	axis, deg := r.Axis()
	return NewAxisAnimation(cubies, axis, float64(deg))
}

// NewAxisAnimation prepares the stepped rotation of cubies by deg about axis.
func NewAxisAnimation(cubies []*lattice.Cubie, axis lattice.Axis, deg float64) *Animation {
	a := &Animation{
		cubies: append([]*lattice.Cubie(nil), cubies...),
		axis:   axis,
	}
	if deg != 0 && axis != lattice.AxisNone {
		a.steps = Steps(deg)
	}
	return a
}

// OnDone registers fn to run right after the last increment is applied.
func (a *Animation) OnDone(fn func()) *Animation {
	a.onDone = fn
	return a
}

// Step applies the next increment and reports whether the animation is finished.
func (a *Animation) Step() bool {
	if a.next < len(a.steps) {
		Apply(a.cubies, a.axis, a.steps[a.next])
		a.next++
	}
	if a.Done() {
		a.finish()
		return true
	}
	return false
}

// Done reports whether every increment has been applied.
func (a *Animation) Done() bool {
	return a.next >= len(a.steps)
}

// Remaining returns the number of increments left.
func (a *Animation) Remaining() int {
	return len(a.steps) - a.next
}

func (a *Animation) finish() {
	if a.onDone != nil {
		fn := a.onDone
		a.onDone = nil
		fn()
	}
}

// Animator runs queued animations in order, advancing the head by one
// increment per Tick. Zero-length animations complete on the tick they reach
// the head of the queue.
type Animator struct {
	queue []*Animation
}

// Enqueue appends a to the queue.
func (q *Animator) Enqueue(a *Animation) {
	q.queue = append(q.queue, a)
}

// Tick advances the head animation by one increment.
func (q *Animator) Tick() {
	if len(q.queue) == 0 {
		return
	}
	if q.queue[0].Step() {
		q.queue[0] = nil
		q.queue = q.queue[1:]
	}
}

// Busy reports whether any animation is pending.
func (q *Animator) Busy() bool {
	return len(q.queue) > 0
}

// Pending returns the number of queued animations.
func (q *Animator) Pending() int {
	return len(q.queue)
}
