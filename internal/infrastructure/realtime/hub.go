package realtime

import (
	"fmt"
	"sync"

	relay "github.com/mehdi852/chatbot-sub003/internal/pkg/relay/domain"
)

// WebsiteRoom is the broadcast group shared by every live session of one
// website. AdminRoom is the admin-only sub-scope keyed by website and owner.
func WebsiteRoom(websiteID int64) string {
	return fmt.Sprintf("website:%d", websiteID)
}

func AdminRoom(websiteID, accountID int64) string {
	return fmt.Sprintf("admins:%d:%d", websiteID, accountID)
}

// Hub owns the live socket registry and room topology. All registry mutation
// and fan-out lookups go through it; nothing else touches the maps. Mutations
// are atomic with respect to the lookups used for fan-out.
type Hub struct {
	mu          sync.RWMutex
	sessions    map[string]*Connection            // connectionID -> connection
	rooms       map[string]map[string]*Connection // room -> connectionID -> connection
	memberships map[string]map[string]struct{}    // connectionID -> set of rooms
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:    make(map[string]*Connection),
		rooms:       make(map[string]map[string]*Connection),
		memberships: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection, joins it to its website room (and, for
// admins, the admin room) and starts its write loop.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.sessions[conn.ID] = conn
	h.memberships[conn.ID] = make(map[string]struct{})
	h.joinLocked(WebsiteRoom(conn.Session.WebsiteID), conn)
	if conn.Session.Role == relay.RoleAdmin {
		h.joinLocked(AdminRoom(conn.Session.WebsiteID, conn.Session.AccountID), conn)
	}
	h.mu.Unlock()

	conn.Start()
}

// Detach removes a connection from the registry and every room.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to every member of room and reports how many
// sends were accepted. Send is a non-blocking enqueue, so the read lock is
// never held across socket I/O.
func (h *Hub) Broadcast(room string, payload []byte) int {
	h.mu.RLock()
	members := h.rooms[room]
	conns := make([]*Connection, 0, len(members))
	for _, conn := range members {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range conns {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// AdminsForWebsite returns the currently connected admin sessions for a
// website, regardless of owning account.
func (h *Hub) AdminsForWebsite(websiteID int64) []*Connection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var admins []*Connection
	for _, conn := range h.rooms[WebsiteRoom(websiteID)] {
		if conn.Session.Role == relay.RoleAdmin {
			admins = append(admins, conn)
		}
	}
	return admins
}

// CloseAccountSessions force-disconnects every admin session bound to
// accountID, across all of its websites. Returns the number closed.
func (h *Hub) CloseAccountSessions(accountID int64, code int, reason string) int {
	h.mu.Lock()
	var victims []*Connection
	for id, conn := range h.sessions {
		if conn.Session.Role == relay.RoleAdmin && conn.Session.AccountID == accountID {
			victims = append(victims, conn)
			h.detachLocked(id)
		}
	}
	h.mu.Unlock()

	for _, conn := range victims {
		conn.Close(code, reason)
	}
	return len(victims)
}

// SweepDisconnected removes sessions whose transport is already flagged
// gone. Best-effort cleanup; it never touches a live session.
func (h *Hub) SweepDisconnected(code int, reason string) int {
	h.mu.Lock()
	var victims []*Connection
	for id, conn := range h.sessions {
		if conn.Disconnected() {
			victims = append(victims, conn)
			h.detachLocked(id)
		}
	}
	h.mu.Unlock()

	for _, conn := range victims {
		conn.Close(code, reason)
	}
	return len(victims)
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.rooms = make(map[string]map[string]*Connection)
	h.memberships = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) joinLocked(room string, conn *Connection) {
	members := h.rooms[room]
	if members == nil {
		members = make(map[string]*Connection)
		h.rooms[room] = members
	}
	members[conn.ID] = conn
	h.memberships[conn.ID][room] = struct{}{}
}

func (h *Hub) detachLocked(connectionID string) {
	conn, ok := h.sessions[connectionID]
	if !ok {
		return
	}
	delete(h.sessions, connectionID)

	for room := range h.memberships[connectionID] {
		members := h.rooms[room]
		if members == nil {
			continue
		}
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(h.memberships, connectionID)
}
