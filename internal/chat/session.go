package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// Session drives one peer connection through its lifecycle: name
// negotiation, registration, then the active read loop. Transport failures
// end the session; protocol and domain errors are contained and the session
// keeps running.
type Session struct {
	conn   wire.Conn
	names  *NameRegistry
	nodes  *NodeRegistry
	rooms  *RoomRegistry
	logger *slog.Logger

	node *Node
}

func NewSession(conn wire.Conn, names *NameRegistry, nodes *NodeRegistry, rooms *RoomRegistry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		conn:   conn,
		names:  names,
		nodes:  nodes,
		rooms:  rooms,
		logger: logger.With("peer", conn.RemoteAddr().String()),
	}
}

// Run blocks until the peer disconnects. It never panics the server; every
// exit path releases the session's name, node entry and transport.
func (s *Session) Run() {
	defer s.conn.Close()

	name, err := s.negotiateName()
	if err != nil {
		s.logger.Debug("connection lost during negotiation", "error", err)
		return
	}

	node, err := s.register(name)
	if err != nil {
		s.names.Release(name)
		s.logger.Warn("registration failed", "name", name, "error", err)
		return
	}
	s.node = node
	s.logger = s.logger.With("node", node.Name)
	s.logger.Info("node registered", "id", node.ID)
	ConnectedSessions.Set(float64(s.nodes.Len()))

	// All writes after this point go through the node outbox so command
	// responses and broadcasts share one writer.
	startWriter(s.conn, node.out, s.logger)

	s.loop()
	s.close()
}

// negotiateName reads candidate names until one can be reserved. A failure
// reply keeps the peer in the handshake; only transport errors abort.
func (s *Session) negotiateName() (string, error) {
	for {
		payload, err := s.conn.ReadMessage()
		if err != nil {
			return "", err
		}

		env, err := wire.DecodeEnvelope(payload)
		if err != nil || env.Type != wire.TypeNameNegotiation || env.Data == nil {
			s.logger.Warn("unexpected handshake message")
			if werr := s.conn.WriteMessage(wire.NewNameReply(false)); werr != nil {
				return "", werr
			}
			continue
		}

		name := NormalizeName(env.Data.Message)
		if err := s.names.Reserve(name); err != nil {
			s.logger.Info("name candidate rejected", "candidate", name, "reason", err)
			if werr := s.conn.WriteMessage(wire.NewNameReply(false)); werr != nil {
				return "", werr
			}
			continue
		}

		if err := s.conn.WriteMessage(wire.NewNameReply(true)); err != nil {
			s.names.Release(name)
			return "", err
		}
		return name, nil
	}
}

// register consumes the registration record, creates the Node and sends the
// room listing as the first response. The negotiated name is authoritative:
// a registration carrying a different name is logged and overridden.
func (s *Session) register(name string) (*Node, error) {
	payload, err := s.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var reg wire.RegisterNode
	if err := json.Unmarshal(payload, &reg); err != nil {
		return nil, fmt.Errorf("%w: %v", wire.ErrMalformed, err)
	}
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if got := NormalizeName(reg.Name); got != name {
		s.logger.Warn("registration name differs from negotiated name",
			"registered", got, "negotiated", name)
	}

	node := newNode(reg.ID, name, 32)
	if err := s.nodes.Add(node); err != nil {
		return nil, err
	}

	listing := &wire.RoomListing{
		Message:   fmt.Sprintf("Welcome to the server %s, see available chat rooms", name),
		ChatRooms: s.rooms.Listing(),
	}
	if err := s.conn.WriteMessage(listing); err != nil {
		s.nodes.Remove(node.ID)
		return nil, err
	}
	return node, nil
}

// loop is the Active state: read envelopes until the transport closes.
func (s *Session) loop() {
	for {
		payload, err := s.conn.ReadMessage()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, wire.ErrShortRead) {
				s.logger.Debug("transport closed", "error", err)
			}
			return
		}

		env, err := wire.DecodeEnvelope(payload)
		if err != nil {
			s.logger.Warn("discarding malformed envelope", "error", err)
			continue
		}

		// The metric label is fixed per branch; the peer-supplied type
		// string never reaches the label set.
		switch env.Type {
		case wire.TypeMessage:
			EnvelopesTotal.WithLabelValues("message").Inc()
			s.handleChatMessage(env)
		case wire.TypeCommand:
			EnvelopesTotal.WithLabelValues("command").Inc()
			s.handleCommand(env.CommandRequest)
		default:
			EnvelopesTotal.WithLabelValues("unexpected").Inc()
			s.logger.Warn("unexpected envelope type", "type", env.Type)
		}
	}
}

// handleChatMessage publishes chat text to the sender's current room. A
// sender without a room is dropped silently, matching the observed protocol;
// the drop is only counted and logged.
func (s *Session) handleChatMessage(env *wire.Envelope) {
	if env.Data == nil || env.Data.Message == "" {
		return
	}

	roomID := s.node.RoomID()
	if roomID == "" {
		DroppedMessages.Inc()
		s.logger.Debug("message dropped, sender not in a room")
		return
	}

	room := s.rooms.Get(roomID)
	if room == nil {
		DroppedMessages.Inc()
		s.logger.Error("current room missing from registry", "room_id", roomID)
		s.node.clearRoom()
		return
	}
	room.Publish(s.node, env.Data.Message, s.nodes.Snapshot(), s.logger)
}

// close removes the node from the global registry and releases its name.
// Room member sets are intentionally left alone; only an explicit leave
// command edits membership, and broadcasts re-check live state anyway.
func (s *Session) close() {
	s.nodes.Remove(s.node.ID)
	s.names.Release(s.node.Name)
	s.node.shutdown()
	ConnectedSessions.Set(float64(s.nodes.Len()))
	s.logger.Info("node disconnected", "id", s.node.ID)
}
