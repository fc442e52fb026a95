package chat

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// Room is one named chat room: a member set plus an append-only message log.
// Rooms are never destroyed, even when empty.
type Room struct {
	id   string
	name string

	mu      sync.Mutex
	members map[string]struct{}
	log     []wire.Message
}

func newRoom(name string) *Room {
	return &Room{
		id:      uuid.NewString(),
		name:    name,
		members: make(map[string]struct{}),
	}
}

func (r *Room) ID() string   { return r.id }
func (r *Room) Name() string { return r.name }

func (r *Room) addMember(nodeID string) {
	r.mu.Lock()
	r.members[nodeID] = struct{}{}
	r.mu.Unlock()
}

func (r *Room) removeMember(nodeID string) {
	r.mu.Lock()
	delete(r.members, nodeID)
	r.mu.Unlock()
}

// MemberCount returns the size of the member set.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Messages returns a copy of the room log in append order.
func (r *Room) Messages() []wire.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]wire.Message, len(r.log))
	copy(out, r.log)
	return out
}

// Publish appends the message to the room log and fans it out to every node
// in the snapshot whose current room is this room, excluding the sender.
// Membership is re-checked against live node state here, not cached; a node
// that left or switched rooms since joining receives nothing. Delivery is
// best-effort: a full or closed outbox is logged and skipped.
//
// The room lock is held across the fan-out so all recipients observe
// messages in room-log order. Node locks nest inside the room lock; no code
// path takes a room lock while holding a node lock.
func (r *Room) Publish(sender *Node, text string, nodes []*Node, logger *slog.Logger) wire.Message {
	start := time.Now()
	msg := wire.Message{
		ID:        uuid.NewString(),
		Text:      text,
		CreatedBy: sender.ID,
		CreatedAt: time.Now().UTC(),
	}
	env := wire.NewChatMessage(text, sender.Name)

	r.mu.Lock()
	r.log = append(r.log, msg)
	for _, n := range nodes {
		if n.ID == sender.ID || n.RoomID() != r.id {
			continue
		}
		if !n.Send(env) {
			logger.Warn("dropped broadcast for slow or closed peer",
				"room", r.name, "node", n.Name)
		}
	}
	r.mu.Unlock()

	BroadcastDuration.Observe(time.Since(start).Seconds())
	return msg
}
