// Package dto holds the JSON messages exchanged with gallery viewers.
package dto

import (
	"encoding/json"
	"fmt"

	"portfolio/internal/rotor"
)

// Server to viewer message types.
const (
	TypeHello = "hello"
	TypeItems = "items"
	TypeFrame = "frame"
)

// HelloMessage is the first message on a new connection.
type HelloMessage struct {
	Type   string       `json:"type"`
	Viewer string       `json:"viewer"`
	Config rotor.Config `json:"config"`
}

// ItemsMessage announces the gallery panels.
type ItemsMessage struct {
	Type  string       `json:"type"`
	Items []rotor.Item `json:"items"`
}

// FrameMessage carries one rendered frame; the frame fields are inlined.
type FrameMessage struct {
	Type string `json:"type"`
	rotor.Frame
}

// PointerMessage is a viewer input event.
type PointerMessage struct {
	Type   string  `json:"type"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	OnLink bool    `json:"onLink"`
}

// NewHello encodes a hello message.
func NewHello(viewer string, cfg rotor.Config) ([]byte, error) {
	return json.Marshal(HelloMessage{Type: TypeHello, Viewer: viewer, Config: cfg})
}

// NewItems encodes an items message.
func NewItems(items []rotor.Item) ([]byte, error) {
	if items == nil {
		items = []rotor.Item{}
	}
	return json.Marshal(ItemsMessage{Type: TypeItems, Items: items})
}

// NewFrame encodes a frame message.
func NewFrame(f rotor.Frame) ([]byte, error) {
	return json.Marshal(FrameMessage{Type: TypeFrame, Frame: f})
}

// ParsePointer decodes a viewer message into a rotor event.
func ParsePointer(data []byte) (rotor.Event, error) {
	var msg PointerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return rotor.Event{}, fmt.Errorf("invalid message: %w", err)
	}

	kind := rotor.EventKind(msg.Type)
	switch kind {
	case rotor.EventPointerDown, rotor.EventPointerMove, rotor.EventPointerUp,
		rotor.EventPointerLeave, rotor.EventPointerEnter:
	default:
		return rotor.Event{}, fmt.Errorf("unknown message type %q", msg.Type)
	}

	return rotor.Event{Kind: kind, X: msg.X, Y: msg.Y, OnLink: msg.OnLink}, nil
}
