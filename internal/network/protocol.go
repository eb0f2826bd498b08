package network

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

// MaxMessageSize bounds a single frame body. A result carries every visited
// cell, so this has to fit the trace of a few hundred thousand cells.
const MaxMessageSize = 16 << 20

// ErrMessageTooLarge is returned when a frame body exceeds the size limit.
// Nothing has been written when Encode returns it.
var ErrMessageTooLarge = errors.New("message too large")

// MsgType identifies the type of network message.
type MsgType string

const (
	MsgHello   MsgType = "hello"
	MsgWelcome MsgType = "welcome"
	MsgSearch  MsgType = "search"
	MsgResult  MsgType = "result"
	MsgError   MsgType = "error"
)

// Envelope wraps all messages with a type discriminator for deserialization.
type Envelope struct {
	Type    MsgType         `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// --- Client → Server Messages ---

// HelloMsg opens a session.
type HelloMsg struct {
	Name string `json:"name"`
}

// SearchMsg asks for a route on the session grid.
type SearchMsg struct {
	RequestID uint64     `json:"request_id"`
	Origin    grid.Point `json:"origin"`
	Target    grid.Point `json:"target"`
}

// --- Server → Client Messages ---

// Pacing is the playback speed the served scenario asks for.
type Pacing struct {
	VisitedDelay time.Duration `json:"visited_delay"`
	PathDelay    time.Duration `json:"path_delay"`
}

// WelcomeMsg is sent to a client after hello. Matrix is the served grid.
type WelcomeMsg struct {
	SessionID string  `json:"session_id"`
	Matrix    [][]int `json:"matrix"`
	Pacing    Pacing  `json:"pacing"`
}

// ResultMsg answers a SearchMsg.
type ResultMsg struct {
	RequestID uint64        `json:"request_id"`
	Result    search.Result `json:"result"`
}

// ErrorMsg notifies a client of an error. RequestID is zero when the error
// is not tied to a request.
type ErrorMsg struct {
	RequestID uint64 `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

// Encode serializes a message and writes it to the writer.
// Format: [4-byte big-endian length][JSON body]
func Encode(w io.Writer, msgType MsgType, payload interface{}) error {
	return encodeLimit(w, msgType, payload, MaxMessageSize)
}

// encodeLimit is Encode with a caller-chosen body limit.
func encodeLimit(w io.Writer, msgType MsgType, payload interface{}, limit int) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	env := Envelope{
		Type:    msgType,
		Payload: json.RawMessage(payloadBytes),
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(body) > limit {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrMessageTooLarge, len(body), limit)
	}

	// Header and body go out in one write so frames never interleave
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)
	if _, err := w.Write(frame); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}

	return nil
}

// Decode reads a length-prefixed JSON message from the reader.
func Decode(r io.Reader) (*Envelope, error) {
	var length uint32
	if err := binary.Read(r, binary.BigEndian, &length); err != nil {
		return nil, fmt.Errorf("read length: %w", err)
	}

	if length > MaxMessageSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	return &env, nil
}

// DecodePayload unmarshals the payload from an envelope into the target struct.
func DecodePayload(env *Envelope, target interface{}) error {
	return json.Unmarshal(env.Payload, target)
}
