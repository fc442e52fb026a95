package wire

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EnvelopeType discriminates the variant carried by an Envelope.
type EnvelopeType string

const (
	TypeMessage         EnvelopeType = "MESSAGE"
	TypeCommand         EnvelopeType = "COMMAND"
	TypeCommandResponse EnvelopeType = "COMMAND_RESPONSE"
	TypeNameNegotiation EnvelopeType = "NAME_NEGOTIATION"
)

// CommandType identifies a room command.
type CommandType string

const (
	CommandCreateChatRoom CommandType = "CREATE_CHATROOM"
	CommandLeaveChatRoom  CommandType = "LEAVE_CHATROOM"
	CommandViewChatRooms  CommandType = "VIEW_CHATROOMS"
	CommandJoinChatRoom   CommandType = "JOIN_CHATROOM"
	CommandHelp           CommandType = "HELP" // client-local, never transmitted
)

// ErrMalformed reports a payload that could not be decoded as an Envelope.
// The offending message is discarded; the connection survives.
var ErrMalformed = errors.New("wire: malformed envelope")

// Envelope is the logical message unit inside one frame. Exactly one variant
// field is populated, selected by Type.
type Envelope struct {
	Type            EnvelopeType     `json:"type"`
	Data            *MessageData     `json:"data,omitempty"`
	CommandRequest  *CommandRequest  `json:"command_request,omitempty"`
	CommandResponse *CommandResponse `json:"command_response,omitempty"`
	Negotiation     *Result          `json:"name_negotiation_response,omitempty"`
}

// MessageData carries chat text. SentBy is set only on server-to-client
// broadcasts; negotiation requests reuse Message for the candidate name.
type MessageData struct {
	Message string `json:"message"`
	SentBy  string `json:"sent_by,omitempty"`
}

type CommandRequest struct {
	Command CommandType `json:"command"`
	Value   string      `json:"value,omitempty"`
}

// CommandResponse pairs the command kind with its serialized result so the
// client can route replies without extra state.
type CommandResponse struct {
	Command CommandType     `json:"command"`
	Value   json.RawMessage `json:"value"`
}

// Result is the minimal success/failure payload.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// RoomResult reports the outcome of create/join commands.
type RoomResult struct {
	Success  bool   `json:"success"`
	RoomName string `json:"room_name,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RoomInfo is one entry of a room listing.
type RoomInfo struct {
	Name        string `json:"name"`
	MemberCount int    `json:"member_count"`
}

// RoomListResult reports the outcome of a view-rooms command.
type RoomListResult struct {
	Success bool       `json:"success"`
	Rooms   []RoomInfo `json:"rooms"`
}

// RegisterNode is the registration record sent by the peer after a
// successful name negotiation. It is framed on its own, not wrapped in an
// Envelope.
type RegisterNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomListing is the first server record after registration: a welcome line
// plus the live rooms with member counts.
type RoomListing struct {
	Message   string     `json:"message"`
	ChatRooms []RoomInfo `json:"chat_rooms"`
}

// DecodeEnvelope parses an envelope payload. Decode failures are reported as
// ErrMalformed so callers can discard the message and keep reading.
func DecodeEnvelope(payload []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	return &env, nil
}

// NewChatMessage builds a MESSAGE envelope.
func NewChatMessage(text, sentBy string) *Envelope {
	return &Envelope{
		Type: TypeMessage,
		Data: &MessageData{Message: text, SentBy: sentBy},
	}
}

// NewCommand builds a COMMAND envelope.
func NewCommand(kind CommandType, value string) *Envelope {
	return &Envelope{
		Type:           TypeCommand,
		CommandRequest: &CommandRequest{Command: kind, Value: value},
	}
}

// NewCommandResponse builds a COMMAND_RESPONSE envelope carrying the
// serialized result for the given command kind.
func NewCommandResponse(kind CommandType, result any) (*Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("wire: encode command result: %w", err)
	}
	return &Envelope{
		Type:            TypeCommandResponse,
		CommandResponse: &CommandResponse{Command: kind, Value: raw},
	}, nil
}

// NewNameCandidate builds the client side of the negotiation handshake.
func NewNameCandidate(name string) *Envelope {
	return &Envelope{
		Type: TypeNameNegotiation,
		Data: &MessageData{Message: name},
	}
}

// NewNameReply builds the server side of the negotiation handshake.
func NewNameReply(success bool) *Envelope {
	return &Envelope{
		Type:        TypeNameNegotiation,
		Negotiation: &Result{Success: success},
	}
}

// Message is a chat message as stored in a room log.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
