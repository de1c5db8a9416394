// Package session holds per-connection state. A Session binds a
// transport endpoint to at most one directory user and owns the
// outbound write path for that connection.
package session

import (
	"sync"
	"sync/atomic"

	"github.com/christopherjohns/chatserv/internal/directory"
)

// LineWriter is the transport-provided sink for one connection. It
// writes a single line of text, including the trailing newline, to the
// remote peer.
type LineWriter interface {
	WriteLine(line string) error
}

// nextID assigns session IDs monotonically for the process lifetime.
var nextID atomic.Uint64

// Session is the live per-connection context. It is created when a
// connection is accepted and discarded when the connection closes; all
// fields except the write path are touched only by the connection's
// own goroutine.
type Session struct {
	id uint64

	// wmu serializes deliveries: two routing operations may target the
	// same session at once, and interleaved partial writes must never
	// corrupt the recipient's stream.
	wmu sync.Mutex
	w   LineWriter

	// user currently bound to this session, nil until a successful
	// name claim. The authoritative binding lives in the directory;
	// this pointer is the session-side half, owned by the connection
	// goroutine.
	user *directory.User
}

// New creates a Session around the given write capability and assigns
// it the next connection ID.
func New(w LineWriter) *Session {
	return &Session{id: nextID.Add(1), w: w}
}

// ID returns the session's unique, monotonically assigned ID.
func (s *Session) ID() uint64 { return s.id }

// WriteLine sends one line to the remote peer. It is safe for
// concurrent use and serializes with all other writes to this session.
func (s *Session) WriteLine(line string) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()
	return s.w.WriteLine(line)
}

// User returns the user bound to this session, or nil.
func (s *Session) User() *directory.User { return s.user }

// SetUser records the session-side half of a binding established (or
// released, with nil) through the directory.
func (s *Session) SetUser(u *directory.User) { s.user = u }
