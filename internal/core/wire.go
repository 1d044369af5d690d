package core

import (
	"encoding/json"
	"fmt"
)

// EventAck is the reserved envelope type for acknowledgements in both directions.
const EventAck = "ack"

// Envelope is the JSON shape of every frame on the signaling socket.
// ID is set when the sender expects an acknowledgement, or on an ack
// to name the request it answers.
type Envelope struct {
	Type string          `json:"type"`
	ID   uint64          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// AckReply is the body of every coordinator-generated acknowledgement.
type AckReply struct {
	Success bool `json:"success"`
	Message any  `json:"message"`
}

func DecodeEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing type")
	}
	return env, nil
}

// EncodeEvent builds a frame for event carrying data. A nil data is sent as JSON null.
func EncodeEvent(event string, id uint64, data any) (Frame, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return encode(Envelope{Type: event, ID: id, Data: raw})
}

// EncodeAck builds the acknowledgement frame for request id with a pre-encoded body.
func EncodeAck(id uint64, body json.RawMessage) (Frame, error) {
	if len(body) == 0 {
		body = json.RawMessage("null")
	}
	return encode(Envelope{Type: EventAck, ID: id, Data: body})
}

func encode(env Envelope) (Frame, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return b, nil
}
