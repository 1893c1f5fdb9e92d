package live

import (
	"errors"

	"github.com/recera/netviz/pkg/netgraph"
)

// ErrProtocol marks a frame that could not be understood.
var ErrProtocol = errors.New("protocol error")

// TypeConn is the handshake and keepalive message type. It carries no diagram data.
const TypeConn = "conn"

// Path is the websocket route a diagram is served on.
const Path = "/viz_component"

// Message is one JSON frame from the publisher.
type Message struct {
	Type  string    `json:"type"`
	UID   string    `json:"uid,omitempty"`
	Pos   []float64 `json:"pos,omitempty"`
	Size  []float64 `json:"size,omitempty"`
	Label string    `json:"label,omitempty"`
}

// ConnMessage is the handshake frame.
func ConnMessage() Message { return Message{Type: TypeConn} }

// CreateMessage describes an item as a creation frame.
func CreateMessage(info netgraph.Info) Message {
	return Message{
		Type:  string(info.Type),
		UID:   info.UID,
		Pos:   []float64{info.Pos[0], info.Pos[1]},
		Size:  []float64{info.Size[0], info.Size[1]},
		Label: info.Label,
	}
}

// Info converts a creation frame to item info. Call Validate first.
func (m Message) Info() netgraph.Info {
	info := netgraph.Info{UID: m.UID, Type: netgraph.ItemType(m.Type), Label: m.Label}
	copy(info.Pos[:], m.Pos)
	copy(info.Size[:], m.Size)
	return info
}
