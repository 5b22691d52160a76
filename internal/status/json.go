package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	State         string       `json:"state"`
	Unit          string       `json:"unit"`
	Backlight     bool         `json:"backlight"`
	Reading       ReadingJSON  `json:"reading"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"event_counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ReadingJSON is the last known sensor reading. Values are omitted until a
// sample has succeeded.
type ReadingJSON struct {
	Valid       bool     `json:"valid"`
	Temperature *float64 `json:"temperature,omitempty"`
	Humidity    *float64 `json:"humidity,omitempty"`
	Unit        string   `json:"unit,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Samples        int `json:"samples"`
	SampleFailures int `json:"sample_failures"`
	UnitChanges    int `json:"unit_changes"`
	BacklightOff   int `json:"backlight_off"`
	BacklightOn    int `json:"backlight_on"`
	DisplayUpdates int `json:"display_updates"`
	Errors         int `json:"errors"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Sensor      string `json:"sensor"`
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	ResampleMs  int64  `json:"resample_ms"`
	BacklightMs int64  `json:"backlight_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	state := "UNKNOWN"
	if snap.Ready {
		state = snap.State.String()
	}

	reading := ReadingJSON{Valid: snap.Reading.Valid}
	if snap.Reading.Valid {
		temp, hum := snap.Reading.Temperature, snap.Reading.Humidity
		reading.Temperature = &temp
		reading.Humidity = &hum
		reading.Unit = snap.Reading.Unit.String()
	}

	return StatusInner{
		State:         state,
		Unit:          snap.State.Unit().String(),
		Backlight:     snap.State.Backlit(),
		Reading:       reading,
		Ready:         snap.Ready,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Samples:        snap.Counts.Samples,
			SampleFailures: snap.Counts.SampleFailures,
			UnitChanges:    snap.Counts.UnitChanges,
			BacklightOff:   snap.Counts.BacklightOff,
			BacklightOn:    snap.Counts.BacklightOn,
			DisplayUpdates: snap.Counts.DisplayUpdates,
			Errors:         snap.Counts.Errors,
		},
		Config: ConfigJSON{
			Sensor:      snap.Config.Sensor,
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			ResampleMs:  snap.Config.ResampleMs,
			BacklightMs: snap.Config.BacklightMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
