// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"math"
	"time"
)

// TopicDecisions is the MQTT topic for decision-log events.
const TopicDecisions = "kitchen/cooksim/decisions"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "kitchen/cooksim/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishDecision sends a decision-log event to the broker.
	// Returns error if publishing fails (should not crash the process).
	PublishDecision(event DecisionEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// DecisionEvent is a decision-log entry bound for the broker.
type DecisionEvent struct {
	Minutes float64 // elapsed process time
	Message string
	Grain   string
	RunID   string
}

// SystemEvent represents a system lifecycle event
// (e.g. STARTUP, SHUTDOWN, HEARTBEAT, RUN_COMPLETE).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // e.g. "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// DecisionPayload is the MQTT message payload for decision events.
type DecisionPayload struct {
	Decision DecisionPayloadInner `json:"decision"`
}

// DecisionPayloadInner contains the decision details.
type DecisionPayloadInner struct {
	Minutes float64 `json:"t_min"`
	Message string  `json:"message"`
	Grain   string  `json:"grain"`
	RunID   string  `json:"run_id"`
}

// FormatDecisionPayload creates the JSON payload for a decision event.
func FormatDecisionPayload(event DecisionEvent) ([]byte, error) {
	payload := DecisionPayload{
		Decision: DecisionPayloadInner{
			Minutes: math.Round(event.Minutes*100) / 100,
			Message: event.Message,
			Grain:   event.Grain,
			RunID:   event.RunID,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message payload for simple system events that
// don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
