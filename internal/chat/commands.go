package chat

import (
	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// handleCommand dispatches a command request and always answers with a
// COMMAND_RESPONSE envelope carrying the command-specific result. Domain
// failures surface to the peer as failure results, never as session errors.
func (s *Session) handleCommand(req *wire.CommandRequest) {
	if req == nil {
		s.logger.Warn("command envelope without request")
		return
	}

	switch req.Command {
	case wire.CommandCreateChatRoom:
		s.createRoom(req.Value)
	case wire.CommandJoinChatRoom:
		s.joinRoom(req.Value)
	case wire.CommandLeaveChatRoom:
		s.leaveRoom()
	case wire.CommandViewChatRooms:
		s.viewRooms()
	default:
		// HELP is client-local; anything else here is a confused peer.
		s.logger.Warn("unsupported command", "command", req.Command)
		s.respond(req.Command, wire.Result{Success: false, Error: "unsupported command"})
	}
}

func (s *Session) createRoom(name string) {
	if s.node.RoomID() != "" {
		s.respond(wire.CommandCreateChatRoom, wire.RoomResult{Success: false, Error: ErrInRoom.Error()})
		return
	}

	room, err := s.rooms.Create(name)
	if err != nil {
		s.respond(wire.CommandCreateChatRoom, wire.RoomResult{Success: false, Error: err.Error()})
		return
	}

	room.addMember(s.node.ID)
	s.node.setRoom(room.id)
	s.logger.Info("room created", "room", room.name)
	s.respond(wire.CommandCreateChatRoom, wire.RoomResult{Success: true, RoomName: room.name})
}

func (s *Session) joinRoom(name string) {
	room := s.rooms.FindByName(name)
	if room == nil {
		s.respond(wire.CommandJoinChatRoom, wire.RoomResult{Success: false, Error: ErrNoRoom.Error()})
		return
	}

	room.addMember(s.node.ID)
	s.node.setRoom(room.id)
	s.logger.Info("joined room", "room", room.name)
	s.respond(wire.CommandJoinChatRoom, wire.RoomResult{Success: true, RoomName: room.name})
}

func (s *Session) leaveRoom() {
	roomID := s.node.RoomID()
	if roomID == "" {
		s.respond(wire.CommandLeaveChatRoom, wire.Result{Success: false, Error: ErrNotInRoom.Error()})
		return
	}

	if room := s.rooms.Get(roomID); room != nil {
		room.removeMember(s.node.ID)
	}
	s.node.clearRoom()
	s.respond(wire.CommandLeaveChatRoom, wire.Result{Success: true})
}

func (s *Session) viewRooms() {
	s.respond(wire.CommandViewChatRooms, wire.RoomListResult{Success: true, Rooms: s.rooms.Listing()})
}

func (s *Session) respond(kind wire.CommandType, result any) {
	env, err := wire.NewCommandResponse(kind, result)
	if err != nil {
		s.logger.Error("failed to encode command response", "command", kind, "error", err)
		return
	}
	if !s.node.Send(env) {
		s.logger.Warn("dropped command response", "command", kind)
	}
}
