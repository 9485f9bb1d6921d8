package driver

import "github.com/tailored-agentic-units/relay/observability"

// Driver event types emitted during the turn loop.
const (
	EventTurnStart       observability.EventType = "driver.turn.start"
	EventTurnComplete    observability.EventType = "driver.turn.complete"
	EventRoundStart      observability.EventType = "driver.round.start"
	EventSessionFallback observability.EventType = "driver.session.fallback"
	EventActionCall      observability.EventType = "driver.action.call"
	EventActionComplete  observability.EventType = "driver.action.complete"
	EventError           observability.EventType = "driver.error"
)
