// Package router executes parsed commands against the directory and
// delivers output to the addressed sessions.
//
// The delivery discipline follows the registry's locking rules:
// recipients and message text are snapshotted under the read lock,
// every socket write happens after it is released. A write failure on
// the sender's own session ends that session; a failure delivering to
// some other recipient is logged and isolated.
package router

import (
	"errors"
	"log"
	"strings"

	"github.com/christopherjohns/chatserv/internal/command"
	"github.com/christopherjohns/chatserv/internal/directory"
	"github.com/christopherjohns/chatserv/internal/session"
)

// Replies sent for rejected or accepted commands. Every rejected
// command yields exactly one explanatory line on the originating
// session.
const (
	replyUnknownUser      = "server: unknown user!"
	replyAlreadyConnected = "server: user already connected"
	replyAlreadyBound     = "server: already registered"
	replyNoSuchUser       = "server: no such user"
	replyNotOnline        = "server: not online user"
	replyNameRequired     = "server: set your name first (/name <id>)"
)

// Router routes commands from sessions to their recipients.
type Router struct {
	dir *directory.Directory
}

// New creates a Router over the given directory.
func New(dir *directory.Directory) *Router {
	return &Router{dir: dir}
}

// HandleLine parses and executes one input line arriving on s. It
// returns true when the session must terminate: on /quit, or on a
// write failure on the sender's own connection. The caller owns the
// transport and performs the actual close; disconnect cleanup goes
// through Disconnect either way.
func (r *Router) HandleLine(s *session.Session, line string) (done bool) {
	switch c := command.Parse(line).(type) {
	case command.Quit:
		r.Disconnect(s)
		return true
	case command.SetName:
		return !r.setName(s, c.Name)
	case command.Who:
		return !r.who(s)
	case command.DirectMessage:
		return !r.directMessage(s, c.To, c.Text)
	case command.Broadcast:
		return !r.broadcast(s, c.Text)
	}
	return false
}

// Disconnect releases any user binding held by s. It is idempotent and
// must be called on every connection teardown path, so a dropped peer
// frees its name for the next claim.
func (r *Router) Disconnect(s *session.Session) {
	if u := s.User(); u != nil {
		r.dir.Unbind(u, s)
		s.SetUser(nil)
	}
}

// setName applies the binding policy: unknown users and users already
// bound to another live session are rejected, never evicted. A session
// that is already registered keeps its identity; re-claiming the same
// name is a harmless success.
func (r *Router) setName(s *session.Session, name string) bool {
	if cur := s.User(); cur != nil && cur.Name() != name {
		return r.reply(s, replyAlreadyBound+" as "+cur.Name())
	}
	u, err := r.dir.Bind(name, s)
	if errors.Is(err, directory.ErrSessionBound) {
		return r.reply(s, replyAlreadyConnected)
	}
	if err != nil {
		return r.reply(s, replyUnknownUser)
	}
	s.SetUser(u)
	return r.reply(s, "server: you are now "+name)
}

// who writes a single line naming the online members of the root room
// in join order.
func (r *Router) who(s *session.Session) bool {
	var b strings.Builder
	for _, o := range r.dir.Root().MembersOnline() {
		b.WriteString(o.User.Name())
		b.WriteByte(' ')
	}
	return r.reply(s, b.String())
}

// directMessage delivers "<sender>: <text>" to the target's session
// only.
func (r *Router) directMessage(s *session.Session, to, text string) bool {
	sender := s.User()
	if sender == nil {
		return r.reply(s, replyNameRequired)
	}
	peer := r.dir.FindUserByName(to)
	if peer == nil {
		return r.reply(s, replyNoSuchUser)
	}
	dst := peer.Peer()
	if dst == nil {
		return r.reply(s, replyNotOnline)
	}
	if err := dst.WriteLine(sender.Name() + ": " + text); err != nil {
		if dst == directory.Peer(s) {
			// Message to self; this is the sender's own socket.
			return false
		}
		log.Printf("router: session[%d]: deliver to %s failed: %v", s.ID(), to, err)
	}
	return true
}

// broadcast delivers "<sender>: <text>" to every online member of the
// root room, the sender included.
func (r *Router) broadcast(s *session.Session, text string) bool {
	sender := s.User()
	if sender == nil {
		return r.reply(s, replyNameRequired)
	}
	msg := sender.Name() + ": " + text
	ok := true
	for _, o := range r.dir.Root().MembersOnline() {
		if err := o.Peer.WriteLine(msg); err != nil {
			if o.Peer == directory.Peer(s) {
				ok = false
				continue
			}
			log.Printf("router: session[%d]: deliver to %s failed: %v", s.ID(), o.User.Name(), err)
		}
	}
	return ok
}

// reply writes one line back to the originating session. It returns
// false when the write fails, which ends the sender's session.
func (r *Router) reply(s *session.Session, line string) bool {
	if err := s.WriteLine(line); err != nil {
		log.Printf("router: session[%d]: write failed: %v", s.ID(), err)
		return false
	}
	return true
}
