package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSampleSession(t *testing.T) *NavigationSession {
	t.Helper()
	session, err := NewNavigationSession(sampleGraph(), "GATE", Point{X: 0, Y: -1}, DefaultTurnConfig())
	require.NoError(t, err)
	return session
}

func TestNewNavigationSession(t *testing.T) {
	_, err := NewNavigationSession(sampleGraph(), "NOPE", Point{X: 0, Y: -1}, DefaultTurnConfig())
	assert.ErrorIs(t, err, ErrUnknownNode)

	_, err = NewNavigationSession(nil, "GATE", Point{X: 0, Y: -1}, DefaultTurnConfig())
	assert.ErrorIs(t, err, ErrGraphNotReady)

	_, err = NewNavigationSession(sampleGraph(), "GATE", Point{X: 0, Y: -1}, TurnConfig{ForwardThresholdDeg: 90, BackThresholdDeg: 10})
	assert.Error(t, err)

	session := newSampleSession(t)
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, "GATE", session.StartNode())
	assert.Empty(t, session.Target())
}

func TestSessionSampleWalk(t *testing.T) {
	session := newSampleSession(t)

	step, progress, err := session.NavigateTo("B")
	require.NoError(t, err)
	assert.Equal(t, ProgressNextStep, progress)
	assert.Equal(t, DirectionStep{From: "GATE", To: "A", Action: ActionStartForward}, step)
	assert.Equal(t, []string{"GATE", "A", "B"}, session.Path())
	assert.Equal(t, StateActive, session.State())
	assert.Equal(t, "A", session.Target())

	step, progress = session.OnNodeReached("A")
	assert.Equal(t, ProgressNextStep, progress)
	assert.Equal(t, DirectionStep{From: "A", To: "B", Action: ActionRight}, step)
	assert.Equal(t, "A", session.StartNode())
	assert.Equal(t, 1, session.StepIndex())
	assert.Equal(t, "B", session.Target())

	step, progress = session.OnNodeReached("B")
	assert.Equal(t, ProgressArrived, progress)
	assert.Equal(t, DirectionStep{}, step)
	assert.Equal(t, StateArrived, session.State())
	assert.Equal(t, "B", session.StartNode())
	assert.Empty(t, session.Target())
}

func TestSessionStrayArrivalIgnored(t *testing.T) {
	session := newSampleSession(t)

	_, progress := session.OnNodeReached("A")
	assert.Equal(t, ProgressIgnored, progress, "no route yet")

	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)
	before := session.Snapshot()

	for _, id := range []string{"B", "GATE", "NOPE", ""} {
		step, progress := session.OnNodeReached(id)
		assert.Equal(t, ProgressIgnored, progress, id)
		assert.Equal(t, DirectionStep{}, step)
	}

	assert.Equal(t, before, session.Snapshot())
	assert.Equal(t, 0, session.StepIndex())
	assert.Equal(t, "GATE", session.StartNode())
}

func TestSessionAdvanceStep(t *testing.T) {
	session := newSampleSession(t)

	_, progress := session.AdvanceStep()
	assert.Equal(t, ProgressIdle, progress)

	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)

	step, progress := session.AdvanceStep()
	assert.Equal(t, ProgressNextStep, progress)
	assert.Equal(t, "B", step.To)
	assert.Equal(t, "GATE", session.StartNode(), "advancing does not move the user")

	_, progress = session.AdvanceStep()
	assert.Equal(t, ProgressArrived, progress)
	assert.Equal(t, 2, session.StepIndex())

	_, progress = session.AdvanceStep()
	assert.Equal(t, ProgressArrived, progress)
	assert.Equal(t, 2, session.StepIndex(), "arrived is terminal")

	_, progress = session.OnNodeReached("B")
	assert.Equal(t, ProgressIgnored, progress)
}

func TestSessionNavigateUnknownKeepsRoute(t *testing.T) {
	session := newSampleSession(t)
	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)
	_, _ = session.OnNodeReached("A")
	before := session.Snapshot()

	_, _, err = session.NavigateTo("NOPE")
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, before, session.Snapshot())
}

func TestSessionNavigateNoPathKeepsRoute(t *testing.T) {
	records := append(sampleRecords(), MapNode{ID: "ISLAND", Position: Point{X: 50, Y: 50}})
	graph := BuildGraph(records, GraphOptions{SymmetricEdges: true})
	session, err := NewNavigationSession(graph, "GATE", Point{X: 0, Y: -1}, DefaultTurnConfig())
	require.NoError(t, err)

	_, _, err = session.NavigateTo("B")
	require.NoError(t, err)
	before := session.Snapshot()

	_, progress, err := session.NavigateTo("ISLAND")
	assert.ErrorIs(t, err, ErrNoPath)
	assert.Equal(t, ProgressIdle, progress)
	assert.Equal(t, before, session.Snapshot())
}

func TestSessionNavigateToStart(t *testing.T) {
	session := newSampleSession(t)

	step, progress, err := session.NavigateTo("GATE")
	require.NoError(t, err)
	assert.Equal(t, ProgressArrived, progress)
	assert.Equal(t, DirectionStep{}, step)
	assert.Equal(t, StateArrived, session.State())
	assert.Empty(t, session.Steps())
	assert.Empty(t, session.Target())
}

func TestSessionNavigateReplacesRoute(t *testing.T) {
	session := newSampleSession(t)
	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)
	_, _ = session.OnNodeReached("A")
	_, _ = session.OnNodeReached("B")

	// The next route starts where the user now stands
	step, progress, err := session.NavigateTo("GATE")
	require.NoError(t, err)
	assert.Equal(t, ProgressNextStep, progress)
	assert.Equal(t, DirectionStep{From: "B", To: "A", Action: ActionStartForward}, step)
	assert.Equal(t, []string{"B", "A", "GATE"}, session.Path())
	assert.Equal(t, 0, session.StepIndex())
	assert.Equal(t, StateActive, session.State())
}

func TestSessionSetStartNode(t *testing.T) {
	session := newSampleSession(t)

	err := session.SetStartNode("NOPE")
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Equal(t, "GATE", session.StartNode())

	require.NoError(t, session.SetStartNode("A"))
	assert.Equal(t, "A", session.StartNode())

	_, _, err = session.NavigateTo("B")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, session.Path())
}

func TestSessionSetHeading(t *testing.T) {
	session := newSampleSession(t)
	session.SetHeading(Point{X: 1, Y: 0})
	assert.Equal(t, Point{X: 1, Y: 0}, session.Heading())

	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)
	assert.Equal(t, []DirectionStep{
		{From: "GATE", To: "A", Action: ActionStartForward},
		{From: "A", To: "B", Action: ActionRight},
	}, session.Steps())
}

func TestSessionSnapshot(t *testing.T) {
	session := newSampleSession(t)

	snapshot := session.Snapshot()
	assert.Equal(t, "idle", snapshot.State)
	assert.Nil(t, snapshot.CurrentStep)

	_, _, err := session.NavigateTo("B")
	require.NoError(t, err)

	snapshot = session.Snapshot()
	assert.Equal(t, "active", snapshot.State)
	require.NotNil(t, snapshot.CurrentStep)
	assert.Equal(t, "A", snapshot.CurrentStep.To)
	assert.Len(t, snapshot.Steps, 2)

	// Returned slices are copies
	snapshot.Path[0] = "CHANGED"
	assert.Equal(t, "GATE", session.Path()[0])
}

func TestProgressAndStateStrings(t *testing.T) {
	assert.Equal(t, "next_step", ProgressNextStep.String())
	assert.Equal(t, "ignored", ProgressIgnored.String())
	assert.Equal(t, "arrived", StateArrived.String())
	assert.Equal(t, "SessionState(9)", SessionState(9).String())
}
