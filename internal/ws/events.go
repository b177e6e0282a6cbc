package ws

import (
	"time"
)

type EventType string

const (
	EventConnected        EventType = "connected"
	EventDetectionStarted EventType = "detection_started"
	EventDetectionStopped EventType = "detection_stopped"
	EventDetectionResult  EventType = "detection_result"
)

// Command types clients may send over the channel.
const (
	CommandStartDetection = "start_detection"
	CommandStopDetection  = "stop_detection"
)

type Event struct {
	Type      EventType   `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Command is an inbound client message. Commands carry no payload.
type Command struct {
	Type string `json:"type"`
}

// ConnectedData is the greeting sent to every client on connect.
type ConnectedData struct {
	Status  string   `json:"status"`
	Objects []string `json:"objects"`
}

// AckData acknowledges a start/stop command.
type AckData struct {
	Status string `json:"status"`
}
