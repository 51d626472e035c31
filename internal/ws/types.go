package ws

import (
	"encoding/json"

	"github.com/MrPicklePinosaur/shogiman/internal/shogi"
)

// MessageType represents the different kinds of messages our system can handle
type MessageType string

const (
	// client -> server
	MessageTypeClick  MessageType = "click"
	MessageTypeMove   MessageType = "move"
	MessageTypeResign MessageType = "resign"

	// server -> client
	MessageTypeGameState   MessageType = "gameState"
	MessageTypePieceMoved  MessageType = "pieceMoved"
	MessageTypeTurnChanged MessageType = "turnChanged"
	MessageTypeGameEnded   MessageType = "gameEnded"
	MessageTypeError       MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type ClickPayload struct {
	Square shogi.Square `json:"square"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

// NewError builds an error message for the client.
func NewError(err error) Message {
	payload, _ := json.Marshal(ErrorPayload{Message: err.Error()})
	return Message{Type: MessageTypeError, Payload: payload}
}
