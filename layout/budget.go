package layout

import "time"

// Budget is checked at every resumable boundary of the planner. Once it
// reports exhaustion the planner returns and resumes on a later tick.
type Budget interface {
	Exhausted() bool
}

// Unlimited never runs out.
type Unlimited struct{}

func (Unlimited) Exhausted() bool { return false }

// Deadline runs out at a wall-clock instant.
type Deadline struct {
	until time.Time
	now   func() time.Time
}

// NewDeadline grants d from now. A non-positive d is unlimited.
func NewDeadline(d time.Duration) Budget {
	if d <= 0 {
		return Unlimited{}
	}
	return &Deadline{until: time.Now().Add(d), now: time.Now}
}

func (d *Deadline) Exhausted() bool { return !d.now().Before(d.until) }

// Steps grants a fixed number of boundary checks; each call to Exhausted
// consumes one. Deterministic, so tests use it to force resumption.
type Steps struct {
	left int
}

func NewSteps(n int) *Steps { return &Steps{left: n} }

func (s *Steps) Exhausted() bool {
	if s.left <= 0 {
		return true
	}
	s.left--
	return false
}
