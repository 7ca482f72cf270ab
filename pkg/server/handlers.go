package server

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/L3n44nd/OnlineChatServer/pkg/protocol"
	"github.com/L3n44nd/OnlineChatServer/pkg/store"
)

// handleRegister handles the Register command: `<username> <password>`
func (s *Server) handleRegister(c *client, payload string) {
	username, password, ok := protocol.SplitCredentials(payload)
	if !ok {
		debugLog.Printf("Client #%d sent malformed Register payload, dropping", c.id)
		return
	}

	count, err := s.store.CountByUsername(username)
	if err != nil {
		errorLog.Printf("Register: store query failed for %q: %v", username, err)
		return
	}
	if count > 0 {
		s.send(c, protocol.RespUsernameExists, protocol.EncodeError(protocol.RespUsernameExists))
		return
	}

	salt, err := store.GenerateSalt()
	if err != nil {
		errorLog.Printf("Register: salt generation failed: %v", err)
		return
	}
	hash := store.HashPassword(password, salt)

	userID, err := s.store.Insert(username, hash, salt)
	if err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.send(c, protocol.RespUsernameExists, protocol.EncodeError(protocol.RespUsernameExists))
			return
		}
		errorLog.Printf("Register: insert failed for %q: %v", username, err)
		return
	}

	s.bindSession(c, userID, username)
	s.send(c, protocol.RespRegistered, protocol.EncodeAuthOK(protocol.RespRegistered, userID, username))
	s.broadcastPresence()
}

// handleLogin handles the Login command: `<username> <password>`
func (s *Server) handleLogin(c *client, payload string) {
	username, password, ok := protocol.SplitCredentials(payload)
	if !ok {
		debugLog.Printf("Client #%d sent malformed Login payload, dropping", c.id)
		return
	}

	auth, err := s.store.FetchAuth(username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.send(c, protocol.RespUserNotFound, protocol.EncodeError(protocol.RespUserNotFound))
			return
		}
		// A store failure is not "user not found"; abort with no reply.
		errorLog.Printf("Login: store query failed for %q: %v", username, err)
		return
	}

	if store.HashPassword(password, auth.Salt) != auth.Hash {
		s.send(c, protocol.RespWrongPassword, protocol.EncodeError(protocol.RespWrongPassword))
		return
	}

	s.bindSession(c, auth.UserID, username)
	s.send(c, protocol.RespLoginOK, protocol.EncodeAuthOK(protocol.RespLoginOK, auth.UserID, username))
	s.broadcastPresence()
}

// handleLogout closes the connection unconditionally. Session cleanup runs
// on the disconnect path, not here, so a logout on an already-closed
// connection is a no-op.
func (s *Server) handleLogout(c *client) {
	c.close()
}

// handleNameChange handles the NameChange command: the payload is the new
// display name.
func (s *Server) handleNameChange(c *client, payload string) {
	userID, _, ok := s.directory.LookupByConn(c)
	if !ok {
		debugLog.Printf("Client #%d sent NameChange without a session, dropping", c.id)
		return
	}

	newName := payload
	// Names are single tokens on the wire; anything else would corrupt the
	// presence and message frames that embed them.
	if newName == "" || strings.ContainsAny(newName, " \t") {
		debugLog.Printf("Client #%d sent invalid name %q, dropping", c.id, newName)
		return
	}

	if utf8.RuneCountInString(newName) > s.config.MaxNameLength {
		s.send(c, protocol.RespNameTooLong, protocol.EncodeError(protocol.RespNameTooLong))
		return
	}

	count, err := s.store.CountByUsername(newName)
	if err != nil {
		errorLog.Printf("NameChange: store query failed for %q: %v", newName, err)
		return
	}
	if count > 0 {
		s.send(c, protocol.RespUsernameExists, protocol.EncodeError(protocol.RespUsernameExists))
		return
	}

	if err := s.store.UpdateUsername(userID, newName); err != nil {
		if errors.Is(err, store.ErrUsernameTaken) {
			s.send(c, protocol.RespUsernameExists, protocol.EncodeError(protocol.RespUsernameExists))
			return
		}
		errorLog.Printf("NameChange: update failed for user %d: %v", userID, err)
		return
	}

	s.directory.Rename(userID, newName)
	s.send(c, protocol.RespSuccessful, protocol.EncodeRenamed(newName))
}

// handleBroadcast fans a chat message out to every other authenticated
// connection. The sender never receives its own message.
func (s *Server) handleBroadcast(c *client, payload string) {
	senderID, senderName, ok := s.directory.LookupByConn(c)
	if !ok {
		debugLog.Printf("Client #%d sent Message without a session, dropping", c.id)
		return
	}

	if len(payload) > s.config.MaxMessageLength {
		debugLog.Printf("Client #%d sent oversized message (%d bytes), dropping", c.id, len(payload))
		return
	}

	line := protocol.EncodeBroadcast(senderID, senderName, payload)

	recipients := 0
	for _, peer := range s.directory.Clients() {
		if peer == c {
			continue
		}
		// A failed write abandons that peer only; delivery to the rest
		// continues.
		s.send(peer, protocol.RespMessage, line)
		recipients++
	}

	if s.metrics != nil {
		s.metrics.RecordBroadcastFanout(recipients)
	}
}

// handlePrivate delivers a direct message to the single live session bound
// to the recipient user id. The sender gets no echo.
func (s *Server) handlePrivate(c *client, payload string) {
	senderID, senderName, ok := s.directory.LookupByConn(c)
	if !ok {
		debugLog.Printf("Client #%d sent PrivateMessage without a session, dropping", c.id)
		return
	}

	recipientID, body, ok := protocol.SplitPrivate(payload)
	if !ok {
		debugLog.Printf("Client #%d sent malformed PrivateMessage payload, dropping", c.id)
		return
	}

	if len(body) > s.config.MaxMessageLength {
		debugLog.Printf("Client #%d sent oversized private message (%d bytes), dropping", c.id, len(body))
		return
	}

	target, ok := s.directory.ConnByUserID(recipientID)
	if !ok {
		s.send(c, protocol.RespUserNotFound, protocol.EncodeError(protocol.RespUserNotFound))
		return
	}

	s.send(target, protocol.RespPrivateMessage, protocol.EncodePrivate(senderID, senderName, body))
}

// bindSession establishes the live session for a connection. A user id
// already bound to another connection displaces that older session: the old
// connection is closed and its cleanup runs via the disconnect path.
func (s *Server) bindSession(c *client, userID int64, username string) {
	if displaced := s.directory.Bind(c, userID, username); displaced != nil {
		debugLog.Printf("User %d rebound to client #%d, displacing client #%d", userID, c.id, displaced.id)
		displaced.close()
	}
	s.syncOnline()
}

// broadcastPresence sends the UpdateOnline snapshot to every authenticated
// connection, including whichever one triggered the change.
func (s *Server) broadcastPresence() {
	line := protocol.EncodeOnlineList(s.directory.Snapshot())
	for _, peer := range s.directory.Clients() {
		s.send(peer, protocol.RespUpdateOnline, line)
	}
}
