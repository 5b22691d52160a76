// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/dht-display/internal/app"
)

// Topic is the MQTT topic for display events.
const Topic = "environment/display/readings"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "environment/display/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a display event observed at ts to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(ts time.Time, event app.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Publishable reports whether an event type is sent to Topic. Display
// refreshes are too frequent to be worth publishing.
func Publishable(t app.EventType) bool {
	switch t {
	case app.EventSample, app.EventSampleFailed, app.EventUnitChanged,
		app.EventBacklightOff, app.EventBacklightOn,
		app.EventInputError, app.EventDisplayError:
		return true
	}
	return false
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Display DisplayPayload `json:"display"`
}

// DisplayPayload contains the display event details.
type DisplayPayload struct {
	Timestamp string         `json:"timestamp"`
	Event     string         `json:"event"`
	State     string         `json:"state"`
	Reading   ReadingPayload `json:"reading"`
	Error     string         `json:"error,omitempty"`
}

// ReadingPayload is the last known sensor reading. Temperature and humidity
// are omitted while no valid reading exists.
type ReadingPayload struct {
	Valid       bool     `json:"valid"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Unit        string   `json:"unit"`
}

// FormatPayload creates the JSON payload for a display event.
func FormatPayload(ts time.Time, event app.Event) ([]byte, error) {
	reading := ReadingPayload{
		Valid: event.Reading.Valid,
		Unit:  event.State.Unit().String(),
	}
	if event.Reading.Valid {
		temp, hum := event.Reading.Temperature, event.Reading.Humidity
		reading.Temperature = &temp
		reading.Humidity = &hum
		reading.Unit = event.Reading.Unit.String()
	}

	payload := Payload{
		Display: DisplayPayload{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     event.State.String(),
			Reading:   reading,
		},
	}
	if event.Err != nil {
		payload.Display.Error = event.Err.Error()
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
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
