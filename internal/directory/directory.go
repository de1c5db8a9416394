// Package directory holds the process-wide registry of users and chat
// rooms. It is the only shared mutable state in the server: every
// connection goroutine reads and mutates it concurrently, so all state
// is guarded by a single registry-wide RWMutex. Methods never perform
// I/O while holding the lock; callers get snapshots and write after.
package directory

import (
	"errors"
	"regexp"
	"sync"
)

// RootRoomName is the default room every seeded user belongs to. It is
// the target of unscoped broadcasts and of /who.
const RootRoomName = "root"

var (
	ErrDuplicateName  = errors.New("name already registered")
	ErrDuplicateEmail = errors.New("email already registered")
	ErrDuplicateRoom  = errors.New("room already exists")
	ErrInvalidName    = errors.New("invalid name")
	ErrUnknownUser    = errors.New("unknown user")
	ErrUnknownRoom    = errors.New("unknown room")
	ErrNotOnline      = errors.New("user not online")
	ErrAlreadyMember  = errors.New("already a member")
	ErrNotMember      = errors.New("not a member")
	ErrSessionBound   = errors.New("user already connected")
)

// Peer is the outbound write capability of a live connection. A Peer
// must be safe for concurrent use: two routing operations may deliver
// to the same connection at the same time.
type Peer interface {
	WriteLine(line string) error
}

// validName matches the protocol's user name grammar.
var validName = regexp.MustCompile(`^[A-Za-z0-9_]{1,19}$`)

// ValidName reports whether name is a legal user name.
func ValidName(name string) bool {
	return validName.MatchString(name)
}

// Directory is the registry. The zero value is not usable; construct
// with New, which also creates the root room.
type Directory struct {
	mu           sync.RWMutex
	usersByName  map[string]*User
	usersByEmail map[string]*User
	rooms        map[string]*ChatRoom
	root         *ChatRoom
}

// New creates an empty Directory containing only the root room.
func New() *Directory {
	d := &Directory{
		usersByName:  make(map[string]*User),
		usersByEmail: make(map[string]*User),
		rooms:        make(map[string]*ChatRoom),
	}
	d.root = &ChatRoom{d: d, name: RootRoomName, byName: make(map[string]*User)}
	d.rooms[RootRoomName] = d.root
	return d
}

// Root returns the root room.
func (d *Directory) Root() *ChatRoom {
	return d.root
}

// FindUserByName returns the user with the given name, or nil.
// Matching is exact and case-sensitive.
func (d *Directory) FindUserByName(name string) *User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.usersByName[name]
}

// FindUserByEmail returns the user with the given email, or nil.
func (d *Directory) FindUserByEmail(email string) *User {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.usersByEmail[email]
}

// FindRoomByName returns the room with the given name, or nil.
func (d *Directory) FindRoomByName(name string) *ChatRoom {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.rooms[name]
}

// CreateUser registers a new user. Names and emails are unique across
// the directory; the name is immutable once created.
func (d *Directory) CreateUser(name, email string) (*User, error) {
	if !ValidName(name) {
		return nil, ErrInvalidName
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.usersByName[name]; ok {
		return nil, ErrDuplicateName
	}
	if _, ok := d.usersByEmail[email]; ok {
		return nil, ErrDuplicateEmail
	}
	u := &User{d: d, name: name, email: email}
	d.usersByName[name] = u
	d.usersByEmail[email] = u
	return u, nil
}

// CreateRoom registers a new, empty room.
func (d *Directory) CreateRoom(name string) (*ChatRoom, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[name]; ok {
		return nil, ErrDuplicateRoom
	}
	r := &ChatRoom{d: d, name: name, byName: make(map[string]*User)}
	d.rooms[name] = r
	return r, nil
}

// Bind claims the named user for peer p, establishing the mutual
// session/user association in one atomic step.
//
// It fails with ErrUnknownUser if no such user exists, and with
// ErrSessionBound if the user is already bound to a different live
// peer; the existing binding is never evicted. Binding the same peer
// again is a no-op that succeeds.
func (d *Directory) Bind(name string, p Peer) (*User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.usersByName[name]
	if !ok {
		return nil, ErrUnknownUser
	}
	if u.peer != nil && u.peer != p {
		return nil, ErrSessionBound
	}
	u.peer = p
	return u, nil
}

// Unbind releases u's binding, but only if it is still held by p. A
// stale disconnect can therefore never release a binding established
// by a newer connection. The user record itself is never removed.
func (d *Directory) Unbind(u *User, p Peer) {
	if u == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if u.peer == p {
		u.peer = nil
	}
}
