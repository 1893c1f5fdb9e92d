package live

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/recera/netviz/pkg/netgraph"
)

// PeekType returns the "type" field of a frame without decoding the rest.
func PeekType(frame []byte) (string, error) {
	var env struct {
		Type *string `json:"type"`
	}
	if err := json.Unmarshal(frame, &env); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if env.Type == nil {
		return "", fmt.Errorf("%w: missing type", ErrProtocol)
	}
	return *env.Type, nil
}

// DecodeMessage parses a frame. Unknown fields are ignored.
func DecodeMessage(frame []byte) (Message, error) {
	var m Message
	dec := json.NewDecoder(bytes.NewReader(frame))
	if err := dec.Decode(&m); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	if dec.More() {
		return Message{}, fmt.Errorf("%w: trailing data", ErrProtocol)
	}
	return m, nil
}

// Validate checks that m is a well formed creation frame.
func (m Message) Validate() error {
	if !netgraph.ItemType(m.Type).Valid() {
		return fmt.Errorf("%w: unknown item type %q", ErrProtocol, m.Type)
	}
	if m.UID == "" {
		return fmt.Errorf("%w: missing uid", ErrProtocol)
	}
	if len(m.Pos) != 2 {
		return fmt.Errorf("%w: pos of %s has %d components", ErrProtocol, m.UID, len(m.Pos))
	}
	if len(m.Size) != 2 {
		return fmt.Errorf("%w: size of %s has %d components", ErrProtocol, m.UID, len(m.Size))
	}
	return nil
}

// EncodeMessage serializes m as a text frame.
func EncodeMessage(m Message) ([]byte, error) {
	return json.Marshal(m)
}
