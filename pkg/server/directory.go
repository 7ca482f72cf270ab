package server

import "github.com/L3n44nd/OnlineChatServer/pkg/protocol"

// Directory is the in-memory bidirectional index of live sessions: which
// connection is authenticated as which user id under which display name.
//
// It is owned by the event loop and carries no locks; all access must happen
// from event handlers. The three maps are kept mutually consistent: every
// entry in one has matching entries in the other two.
type Directory struct {
	byConn map[*client]int64
	byUser map[int64]*client
	names  map[int64]string
}

// NewDirectory creates an empty directory
func NewDirectory() *Directory {
	return &Directory{
		byConn: make(map[*client]int64),
		byUser: make(map[int64]*client),
		names:  make(map[int64]string),
	}
}

// Bind associates a connection with a user id and display name, atomically
// across all three maps. Any previous binding held by the connection is
// dropped first. When the user id is already bound to another live
// connection, that connection loses its session and is returned so the
// caller can close it (duplicate-login displacement).
func (d *Directory) Bind(c *client, userID int64, name string) (displaced *client) {
	if oldID, ok := d.byConn[c]; ok {
		delete(d.byUser, oldID)
		delete(d.names, oldID)
		delete(d.byConn, c)
	}

	if old, ok := d.byUser[userID]; ok && old != c {
		delete(d.byConn, old)
		displaced = old
	}

	d.byConn[c] = userID
	d.byUser[userID] = c
	d.names[userID] = name
	return displaced
}

// Unbind removes a connection's session from all three maps. Returns the
// user id that was bound, or ok=false when the connection held no session.
func (d *Directory) Unbind(c *client) (userID int64, ok bool) {
	userID, ok = d.byConn[c]
	if !ok {
		return 0, false
	}

	delete(d.byConn, c)
	// The user id may have been rebound to a newer connection by a
	// duplicate login; only drop it if it still points here.
	if cur, live := d.byUser[userID]; live && cur == c {
		delete(d.byUser, userID)
		delete(d.names, userID)
	}
	return userID, true
}

// Rename updates the display name for a live user id.
func (d *Directory) Rename(userID int64, name string) bool {
	if _, ok := d.names[userID]; !ok {
		return false
	}
	d.names[userID] = name
	return true
}

// LookupByConn returns the session bound to a connection.
func (d *Directory) LookupByConn(c *client) (userID int64, name string, ok bool) {
	userID, ok = d.byConn[c]
	if !ok {
		return 0, "", false
	}
	return userID, d.names[userID], true
}

// ConnByUserID returns the connection a live user id is bound to.
func (d *Directory) ConnByUserID(userID int64) (*client, bool) {
	c, ok := d.byUser[userID]
	return c, ok
}

// Snapshot returns the current id/name pairs in map iteration order.
func (d *Directory) Snapshot() []protocol.UserEntry {
	entries := make([]protocol.UserEntry, 0, len(d.names))
	for id, name := range d.names {
		entries = append(entries, protocol.UserEntry{ID: id, Name: name})
	}
	return entries
}

// Clients returns every authenticated connection.
func (d *Directory) Clients() []*client {
	clients := make([]*client, 0, len(d.byConn))
	for c := range d.byConn {
		clients = append(clients, c)
	}
	return clients
}

// Online returns the number of live sessions.
func (d *Directory) Online() int {
	return len(d.byConn)
}
