// Package client implements the interactive console front end: it turns
// typed text into envelopes and renders received envelopes. All protocol
// knowledge lives in the wire package; the server is driven exclusively
// through the session contract.
package client

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// ErrNameRejected reports a negotiation round the server declined. The
// caller prompts for another candidate and retries.
var ErrNameRejected = errors.New("client: name rejected by server")

// Console command verbs, matched against the first word of a typed line.
const (
	cmdCreate = ":create-chatroom"
	cmdJoin   = ":join-chatroom"
	cmdLeave  = ":leave-chatroom"
	cmdView   = ":view-chatrooms"
	cmdHelp   = ":help"
)

var (
	senderColor = color.New(color.FgCyan, color.Bold)
	systemColor = color.New(color.FgYellow)
	okColor     = color.New(color.FgGreen)
	errColor    = color.New(color.FgRed)
)

// Messenger is one client connection with its console state.
type Messenger struct {
	conn wire.Conn
	name string

	mu       sync.Mutex
	roomName string // "" when not in a room
}

// Dial connects to the server without negotiating a name yet.
func Dial(addr string) (*Messenger, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("client: connect %s: %w", addr, err)
	}
	return &Messenger{conn: wire.NewFrameConn(conn)}, nil
}

// Negotiate offers one candidate name. It returns ErrNameRejected when the
// server declines, leaving the connection open for another round.
func (m *Messenger) Negotiate(name string) error {
	if err := m.conn.WriteMessage(wire.NewNameCandidate(name)); err != nil {
		return err
	}

	payload, err := m.conn.ReadMessage()
	if err != nil {
		return err
	}
	env, err := wire.DecodeEnvelope(payload)
	if err != nil {
		return err
	}
	if env.Type != wire.TypeNameNegotiation || env.Negotiation == nil {
		return fmt.Errorf("client: unexpected negotiation reply %q", env.Type)
	}
	if !env.Negotiation.Success {
		return ErrNameRejected
	}
	m.name = name
	return nil
}

// Register completes the handshake and renders the room listing the server
// sends as its first response.
func (m *Messenger) Register() error {
	reg := wire.RegisterNode{ID: uuid.NewString(), Name: m.name}
	if err := m.conn.WriteMessage(reg); err != nil {
		return err
	}

	payload, err := m.conn.ReadMessage()
	if err != nil {
		return err
	}
	var listing wire.RoomListing
	if err := json.Unmarshal(payload, &listing); err != nil {
		return fmt.Errorf("client: bad room listing: %w", err)
	}

	systemColor.Println(listing.Message)
	renderRooms(listing.ChatRooms)
	fmt.Println("\nType :help to see available commands")
	return nil
}

// Run starts the receive loop and consumes typed lines from in until EOF or
// disconnect.
func (m *Messenger) Run(in io.Reader) error {
	done := make(chan error, 1)
	go func() { done <- m.receiveLoop() }()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		select {
		case err := <-done:
			return err
		default:
		}
		if err := m.handleLine(strings.TrimSpace(scanner.Text())); err != nil {
			return err
		}
	}

	m.conn.Close()
	<-done
	return scanner.Err()
}

func (m *Messenger) handleLine(line string) error {
	if line == "" {
		return nil
	}
	if !strings.HasPrefix(line, ":") {
		if m.currentRoom() == "" {
			errColor.Println("You must join a chat room first. Use :create-chatroom or :join-chatroom")
			return nil
		}
		return m.conn.WriteMessage(wire.NewChatMessage(line, m.name))
	}

	verb, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch verb {
	case cmdCreate:
		return m.conn.WriteMessage(wire.NewCommand(wire.CommandCreateChatRoom, arg))
	case cmdJoin:
		return m.conn.WriteMessage(wire.NewCommand(wire.CommandJoinChatRoom, arg))
	case cmdLeave:
		return m.conn.WriteMessage(wire.NewCommand(wire.CommandLeaveChatRoom, ""))
	case cmdView:
		return m.conn.WriteMessage(wire.NewCommand(wire.CommandViewChatRooms, ""))
	case cmdHelp:
		printHelp()
	default:
		errColor.Println("Unknown command. Type :help for available commands.")
	}
	return nil
}

func (m *Messenger) receiveLoop() error {
	for {
		payload, err := m.conn.ReadMessage()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, wire.ErrShortRead) {
				systemColor.Println("Disconnected from server")
				return nil
			}
			return err
		}

		env, err := wire.DecodeEnvelope(payload)
		if err != nil {
			continue
		}
		switch env.Type {
		case wire.TypeMessage:
			if env.Data != nil {
				senderColor.Printf("%s: ", env.Data.SentBy)
				fmt.Println(env.Data.Message)
			}
		case wire.TypeCommandResponse:
			if env.CommandResponse != nil {
				m.renderCommandResponse(env.CommandResponse)
			}
		}
	}
}

func (m *Messenger) renderCommandResponse(resp *wire.CommandResponse) {
	switch resp.Command {
	case wire.CommandCreateChatRoom, wire.CommandJoinChatRoom:
		var result wire.RoomResult
		if err := json.Unmarshal(resp.Value, &result); err != nil {
			return
		}
		if !result.Success {
			errColor.Printf("Error: %s\n", result.Error)
			return
		}
		m.setRoom(result.RoomName)
		okColor.Printf("You are now in chat room %q\n", result.RoomName)
	case wire.CommandLeaveChatRoom:
		var result wire.Result
		if err := json.Unmarshal(resp.Value, &result); err != nil {
			return
		}
		if !result.Success {
			errColor.Printf("Error: %s\n", result.Error)
			return
		}
		m.setRoom("")
		okColor.Println("You left the chat room")
	case wire.CommandViewChatRooms:
		var result wire.RoomListResult
		if err := json.Unmarshal(resp.Value, &result); err != nil {
			return
		}
		renderRooms(result.Rooms)
	default:
		var result wire.Result
		if err := json.Unmarshal(resp.Value, &result); err == nil && !result.Success {
			errColor.Printf("Error: %s\n", result.Error)
		}
	}
}

func (m *Messenger) currentRoom() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.roomName
}

func (m *Messenger) setRoom(name string) {
	m.mu.Lock()
	m.roomName = name
	m.mu.Unlock()
}

func renderRooms(rooms []wire.RoomInfo) {
	if len(rooms) == 0 {
		systemColor.Println("No chat rooms yet. Create one with :create-chatroom <name>")
		return
	}
	systemColor.Println("Available chat rooms:")
	for _, room := range rooms {
		fmt.Printf("  %-24s %d member(s)\n", room.Name, room.MemberCount)
	}
}

func printHelp() {
	fmt.Println(":create-chatroom <name> - Create a new chat room with the given name")
	fmt.Println(":join-chatroom <name>   - Join an existing chat room")
	fmt.Println(":leave-chatroom         - Leave your current chat room")
	fmt.Println(":view-chatrooms         - List all available chat rooms")
	fmt.Println(":help                   - Show this help message")
}
