package chat

import (
	"sort"
	"sync"

	"github.com/blackhat-coder/TcpChat/internal/wire"
)

// RoomRegistry owns the set of live rooms, indexed by id and by name. Room
// names are unique among live rooms.
type RoomRegistry struct {
	mu     sync.RWMutex
	byID   map[string]*Room
	byName map[string]*Room
}

func NewRoomRegistry() *RoomRegistry {
	return &RoomRegistry{
		byID:   make(map[string]*Room),
		byName: make(map[string]*Room),
	}
}

// Create makes a new empty room. Names go through the same normalization as
// display names, so the composed and decomposed spellings of a name refer to
// the same room. It fails with ErrRoomName on an empty name and ErrRoomExists
// when a live room already has that name.
func (r *RoomRegistry) Create(name string) (*Room, error) {
	name = NormalizeName(name)
	if name == "" {
		return nil, ErrRoomName
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return nil, ErrRoomExists
	}
	room := newRoom(name)
	r.byID[room.id] = room
	r.byName[name] = room
	LiveRooms.Set(float64(len(r.byID)))
	return room, nil
}

// Get returns the room with the given id, or nil.
func (r *RoomRegistry) Get(id string) *Room {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[id]
}

// FindByName returns the room with the given name, or nil. The lookup key is
// normalized the same way Create normalizes it.
func (r *RoomRegistry) FindByName(name string) *Room {
	name = NormalizeName(name)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Listing returns the live rooms with member counts, sorted by name.
func (r *RoomRegistry) Listing() []wire.RoomInfo {
	r.mu.RLock()
	rooms := make([]*Room, 0, len(r.byID))
	for _, room := range r.byID {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	// Member counts are read outside the registry lock; a room lock is
	// never nested inside it.
	infos := make([]wire.RoomInfo, 0, len(rooms))
	for _, room := range rooms {
		infos = append(infos, wire.RoomInfo{
			Name:        room.name,
			MemberCount: room.MemberCount(),
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
