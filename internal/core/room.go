package core

// Room groups the live connections of one chat room.
// It is not safe for concurrent use; Registry guards it.
type Room struct {
	ID    int64
	conns map[Conn]struct{}
}

// NewRoom constructs a room with no connections.
func NewRoom(id int64) *Room {
	return &Room{
		ID:    id,
		conns: make(map[Conn]struct{}),
	}
}

// AddConn inserts a connection into the room. Returns true if newly added.
func (r *Room) AddConn(c Conn) bool {
	if _, exists := r.conns[c]; exists {
		return false
	}
	r.conns[c] = struct{}{}
	return true
}

// RemoveConn deletes a connection from the room. Returns true if removed.
func (r *Room) RemoveConn(c Conn) bool {
	if _, exists := r.conns[c]; !exists {
		return false
	}
	delete(r.conns, c)
	return true
}

// Snapshot copies the current members.
func (r *Room) Snapshot() []Conn {
	out := make([]Conn, 0, len(r.conns))
	for c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Len returns the number of connections.
func (r *Room) Len() int {
	return len(r.conns)
}

// Empty returns true if no connections are in the room.
func (r *Room) Empty() bool {
	return len(r.conns) == 0
}
