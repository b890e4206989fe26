package main

import (
	"fmt"
	"math"
)

// Action is the instruction shown to the user for one step of a route
type Action string

const (
	ActionStartForward Action = "START_FORWARD"
	ActionForward      Action = "FORWARD"
	ActionBack         Action = "BACK"
	ActionLeft         Action = "LEFT"
	ActionRight        Action = "RIGHT"
)

// DirectionStep is a single instruction to walk from one node to the next
type DirectionStep struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Action Action `json:"action"`
}

// TurnConfig holds the angle cutoffs used to classify a turn, in degrees
type TurnConfig struct {
	ForwardThresholdDeg float64 `yaml:"forward_threshold_deg"`
	BackThresholdDeg    float64 `yaml:"back_threshold_deg"`
}

// DefaultTurnConfig returns the standard 20° / 160° cutoffs
func DefaultTurnConfig() TurnConfig {
	return TurnConfig{
		ForwardThresholdDeg: 20,
		BackThresholdDeg:    160,
	}
}

// Validate checks that the cutoffs are ordered and within [0, 180]
func (c TurnConfig) Validate() error {
	if c.ForwardThresholdDeg < 0 || c.BackThresholdDeg > 180 || c.ForwardThresholdDeg > c.BackThresholdDeg {
		return fmt.Errorf("invalid turn thresholds: forward %.2f, back %.2f", c.ForwardThresholdDeg, c.BackThresholdDeg)
	}
	return nil
}

// Classify maps a signed angle to an action. Angles exactly on a cutoff are
// turns: 20° is LEFT, not FORWARD, and 160° is LEFT, not BACK.
func (c TurnConfig) Classify(angle float64) Action {
	switch {
	case math.Abs(angle) < c.ForwardThresholdDeg:
		return ActionForward
	case math.Abs(angle) > c.BackThresholdDeg:
		return ActionBack
	case angle > 0:
		return ActionLeft
	default:
		return ActionRight
	}
}

// ExtractDirections converts a path into turn instructions relative to the
// heading the user is facing. The first step is always START_FORWARD; after
// each step the heading becomes the direction just walked.
func ExtractDirections(graph *Graph, path []string, heading Point, cfg TurnConfig) ([]DirectionStep, error) {
	if len(path) < 2 {
		return []DirectionStep{}, nil
	}

	steps := make([]DirectionStep, 0, len(path)-1)

	for i := 1; i < len(path); i++ {
		from, ok := graph.Lookup(path[i-1])
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, path[i-1])
		}
		to, ok := graph.Lookup(path[i])
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownNode, path[i])
		}

		movement := to.Point.Sub(from.Point)

		action := ActionStartForward
		if i > 1 {
			action = cfg.Classify(SignedAngle(heading, movement))
		}

		steps = append(steps, DirectionStep{
			From:   from.ID,
			To:     to.ID,
			Action: action,
		})

		// Coincident nodes keep the previous heading
		if unit, ok := movement.Normalize(); ok {
			heading = unit
		} else {
			Logger.Warn().
				Str("from", from.ID).
				Str("to", to.ID).
				Msg("zero-length movement, keeping heading")
		}
	}

	return steps, nil
}
