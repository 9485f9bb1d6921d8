package server

import (
	"context"
	"sync/atomic"

	"github.com/tailored-agentic-units/relay/driver"
	"github.com/tailored-agentic-units/relay/observability"
)

// MetricsSnapshot is a point-in-time copy of the server counters.
type MetricsSnapshot struct {
	TurnsStarted   int64 `json:"turns_started"`
	TurnsCompleted int64 `json:"turns_completed"`
	TurnsFailed    int64 `json:"turns_failed"`
	FramesEmitted  int64 `json:"frames_emitted"`
	ActionCalls    int64 `json:"action_calls"`
}

// Metrics counts turn activity. Turn and action counters are fed from driver
// events via OnEvent, so Metrics plugs into the driver as one more observer;
// frame counts come from the transport via RecordFrame.
type Metrics struct {
	turnsStarted   atomic.Int64
	turnsCompleted atomic.Int64
	turnsFailed    atomic.Int64
	framesEmitted  atomic.Int64
	actionCalls    atomic.Int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

// OnEvent implements observability.Observer over driver events.
func (m *Metrics) OnEvent(_ context.Context, event observability.Event) {
	switch event.Type {
	case driver.EventTurnStart:
		m.turnsStarted.Add(1)
	case driver.EventTurnComplete:
		m.turnsCompleted.Add(1)
	case driver.EventError:
		m.turnsFailed.Add(1)
	case driver.EventActionCall:
		m.actionCalls.Add(1)
	}
}

func (m *Metrics) RecordFrame(delta int) {
	m.framesEmitted.Add(int64(delta))
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	return MetricsSnapshot{
		TurnsStarted:   m.turnsStarted.Load(),
		TurnsCompleted: m.turnsCompleted.Load(),
		TurnsFailed:    m.turnsFailed.Load(),
		FramesEmitted:  m.framesEmitted.Load(),
		ActionCalls:    m.actionCalls.Load(),
	}
}
