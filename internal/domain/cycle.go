package domain

import "fmt"

// Stage is a step of the sync cycle state machine
type Stage int

const (
	StageIdle Stage = iota
	StageScanned
	StageDiffed
	StagePlanned
	StageApplied
	StageCommitted
	StageAborted
)

func (s Stage) String() string {
	switch s {
	case StageIdle:
		return "idle"
	case StageScanned:
		return "scanned"
	case StageDiffed:
		return "diffed"
	case StagePlanned:
		return "planned"
	case StageApplied:
		return "applied"
	case StageCommitted:
		return "committed"
	case StageAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// CanAdvance reports whether the state machine permits moving from s to next.
// Stages may be skipped forward (a merge never scans) but never revisited,
// and any non-final stage may abort.
func (s Stage) CanAdvance(next Stage) bool {
	if s.IsFinal() {
		return false
	}
	if next == StageAborted {
		return true
	}
	return next > s && next != StageIdle
}

// IsFinal reports whether the cycle has ended
func (s Stage) IsFinal() bool {
	return s == StageCommitted || s == StageAborted
}

// Cycle tracks the stage of one run
type Cycle struct {
	Name  string
	stage Stage
	Trail []Stage
}

// NewCycle starts a cycle in the idle stage
func NewCycle(name string) *Cycle {
	return &Cycle{Name: name, stage: StageIdle}
}

// Stage returns the current stage
func (c *Cycle) Stage() Stage {
	return c.stage
}

// Advance moves the cycle to the next stage
func (c *Cycle) Advance(next Stage) error {
	if !c.stage.CanAdvance(next) {
		return fmt.Errorf("cycle %s: invalid transition %s -> %s", c.Name, c.stage, next)
	}
	c.stage = next
	c.Trail = append(c.Trail, next)
	return nil
}

// Abort ends the cycle unless it already ended
func (c *Cycle) Abort() {
	if !c.stage.IsFinal() {
		c.stage = StageAborted
		c.Trail = append(c.Trail, StageAborted)
	}
}
