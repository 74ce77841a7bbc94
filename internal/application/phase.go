package application

import "fmt"

// Phase is a state of the audit pipeline. Phases only move forward.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseResolve
	PhaseTrack
	PhaseFetch
	PhasePerElement
	PhaseAggregate
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseResolve:
		return "resolve"
	case PhaseTrack:
		return "track"
	case PhaseFetch:
		return "fetch+reresolve"
	case PhasePerElement:
		return "per-element"
	case PhaseAggregate:
		return "aggregate"
	case PhaseDone:
		return "done"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// phaseMachine records the phases a run went through and rejects any move
// backwards.
type phaseMachine struct {
	current Phase
	visited []Phase
}

func (m *phaseMachine) enter(next Phase) error {
	if next <= m.current {
		return fmt.Errorf("pipeline cannot move from %s back to %s", m.current, next)
	}
	m.current = next
	m.visited = append(m.visited, next)
	return nil
}
