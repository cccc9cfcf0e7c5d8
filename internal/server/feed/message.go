package feed

import (
	"encoding/json"
	"time"
)

// Message types sent to clients besides bus event names.
const (
	TypeSnapshot    = "snapshot"
	TypePong        = "pong"
	TypeSubscribed  = "subscribed"
	TypeError       = "error"
	TypePing        = "ping"
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// Message is the envelope for every frame on the feed.
type Message struct {
	Type string    `json:"type"`
	Data any       `json:"data,omitempty"`
	At   time.Time `json:"at"`
}

// Request is a frame sent by a client.
type Request struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels,omitempty"`
}

func encode(msg Message) ([]byte, error) {
	if msg.At.IsZero() {
		msg.At = time.Now().UTC()
	}
	return json.Marshal(msg)
}
