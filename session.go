package main

import (
	"fmt"
	"slices"
)

// SessionState is the lifecycle state of a NavigationSession
type SessionState int

const (
	StateIdle    SessionState = iota // no route requested yet
	StateActive                      // walking the route
	StateArrived                     // every step completed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateArrived:
		return "arrived"
	default:
		return fmt.Sprintf("SessionState(%d)", int(s))
	}
}

// Progress tells the caller what a session transition produced
type Progress int

const (
	// ProgressIdle means there is no route to advance.
	ProgressIdle Progress = iota
	// ProgressIgnored means an arrival event did not match the current target.
	ProgressIgnored
	// ProgressNextStep means the returned step is the next instruction.
	ProgressNextStep
	// ProgressArrived means the destination has been reached.
	ProgressArrived
)

func (p Progress) String() string {
	switch p {
	case ProgressIdle:
		return "idle"
	case ProgressIgnored:
		return "ignored"
	case ProgressNextStep:
		return "next_step"
	case ProgressArrived:
		return "arrived"
	default:
		return fmt.Sprintf("Progress(%d)", int(p))
	}
}

// NavigationSession tracks a single active route over a graph.
//
// A session is not safe for concurrent use; callers must serialize access.
type NavigationSession struct {
	graph   *Graph
	turns   TurnConfig
	start   string
	heading Point

	active bool
	path   []string
	steps  []DirectionStep
	index  int
	target string
}

// SessionSnapshot is a read-only view of a session
type SessionSnapshot struct {
	State       string          `json:"state"`
	StartNode   string          `json:"startNode"`
	Heading     Point           `json:"heading"`
	Target      string          `json:"target,omitempty"`
	StepIndex   int             `json:"stepIndex"`
	CurrentStep *DirectionStep  `json:"currentStep,omitempty"`
	Path        []string        `json:"path,omitempty"`
	Steps       []DirectionStep `json:"steps,omitempty"`
}

// NewNavigationSession creates an idle session standing at start and facing heading
func NewNavigationSession(graph *Graph, start string, heading Point, turns TurnConfig) (*NavigationSession, error) {
	if graph.Len() == 0 {
		return nil, ErrGraphNotReady
	}
	if err := turns.Validate(); err != nil {
		return nil, err
	}
	if _, ok := graph.Lookup(start); !ok {
		return nil, fmt.Errorf("start %w: %q", ErrUnknownNode, start)
	}

	return &NavigationSession{
		graph:   graph,
		turns:   turns,
		start:   start,
		heading: heading,
	}, nil
}

// SetStartNode moves the user to another node. The active route is kept.
func (s *NavigationSession) SetStartNode(id string) error {
	if _, ok := s.graph.Lookup(id); !ok {
		Logger.Warn().Str("node", id).Msg("invalid start node")
		return fmt.Errorf("start %w: %q", ErrUnknownNode, id)
	}
	s.start = id
	Logger.Debug().Str("node", id).Msg("start node set")
	return nil
}

// SetHeading changes the direction the user is facing for the next route
func (s *NavigationSession) SetHeading(heading Point) {
	s.heading = heading
}

// NavigateTo plans a route from the start node to destination and returns
// its first step. On error the previous route is left untouched. When the
// destination is the start node the session is immediately arrived.
func (s *NavigationSession) NavigateTo(destination string) (DirectionStep, Progress, error) {
	if s.graph.Len() == 0 {
		return DirectionStep{}, ProgressIdle, ErrGraphNotReady
	}
	if _, ok := s.graph.Lookup(destination); !ok {
		Logger.Warn().Str("destination", destination).Msg("invalid destination")
		return DirectionStep{}, ProgressIdle, fmt.Errorf("destination %w: %q", ErrUnknownNode, destination)
	}

	path, err := FindPath(s.graph, s.start, destination)
	if err != nil {
		Logger.Warn().Err(err).Msg("route planning failed")
		return DirectionStep{}, ProgressIdle, err
	}

	steps, err := ExtractDirections(s.graph, path, s.heading, s.turns)
	if err != nil {
		return DirectionStep{}, ProgressIdle, err
	}

	s.active = true
	s.path = path
	s.steps = steps
	s.index = 0

	Logger.Info().
		Strs("path", path).
		Int("steps", len(steps)).
		Msg("route planned")

	if len(steps) == 0 {
		s.target = ""
		return DirectionStep{}, ProgressArrived, nil
	}

	s.target = steps[0].To
	return steps[0], ProgressNextStep, nil
}

// AdvanceStep moves to the next instruction. Once the last step has been
// passed the session stays arrived.
func (s *NavigationSession) AdvanceStep() (DirectionStep, Progress) {
	if !s.active {
		return DirectionStep{}, ProgressIdle
	}
	if s.index >= len(s.steps) {
		return DirectionStep{}, ProgressArrived
	}

	s.index++

	if s.index >= len(s.steps) {
		s.target = ""
		Logger.Info().Str("node", s.start).Msg("destination reached")
		return DirectionStep{}, ProgressArrived
	}

	step := s.steps[s.index]
	s.target = step.To
	return step, ProgressNextStep
}

// OnNodeReached handles an arrival event from the position source. Events
// for any node other than the current target are ignored.
func (s *NavigationSession) OnNodeReached(id string) (DirectionStep, Progress) {
	if !s.active || s.target == "" || id != s.target {
		return DirectionStep{}, ProgressIgnored
	}

	Logger.Debug().Str("node", id).Msg("reached")
	s.start = id

	return s.AdvanceStep()
}

// State returns the lifecycle state
func (s *NavigationSession) State() SessionState {
	switch {
	case !s.active:
		return StateIdle
	case s.index >= len(s.steps):
		return StateArrived
	default:
		return StateActive
	}
}

// StartNode returns the node the user is standing at
func (s *NavigationSession) StartNode() string { return s.start }

// Heading returns the heading used for the next route
func (s *NavigationSession) Heading() Point { return s.heading }

// Target returns the node the user is walking to, empty when not active
func (s *NavigationSession) Target() string { return s.target }

// StepIndex returns the index of the current step
func (s *NavigationSession) StepIndex() int { return s.index }

// CurrentStep returns the step being walked
func (s *NavigationSession) CurrentStep() (DirectionStep, bool) {
	if s.State() != StateActive {
		return DirectionStep{}, false
	}
	return s.steps[s.index], true
}

// Steps returns a copy of the active route's instructions
func (s *NavigationSession) Steps() []DirectionStep { return slices.Clone(s.steps) }

// Path returns a copy of the active route's node IDs
func (s *NavigationSession) Path() []string { return slices.Clone(s.path) }

// Snapshot returns a view of the session for reporting
func (s *NavigationSession) Snapshot() SessionSnapshot {
	snapshot := SessionSnapshot{
		State:     s.State().String(),
		StartNode: s.start,
		Heading:   s.heading,
		Target:    s.target,
		StepIndex: s.index,
		Path:      s.Path(),
		Steps:     s.Steps(),
	}
	if step, ok := s.CurrentStep(); ok {
		snapshot.CurrentStep = &step
	}
	return snapshot
}
