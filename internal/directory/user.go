package directory

// User is an identity record owned by the Directory. Name and email
// are immutable after creation; the peer and room fields are guarded
// by the directory lock.
type User struct {
	d     *Directory
	name  string
	email string

	// peer is the write capability of the session currently bound to
	// this user, or nil while offline. At most one live session is
	// bound at a time.
	peer Peer

	// rooms the user belongs to, in join order. Membership is a
	// relation, not ownership: a room may outlive the user's
	// connection, and unbinding never touches it.
	rooms []*ChatRoom
}

// Name returns the user's unique display name.
func (u *User) Name() string { return u.name }

// Email returns the user's unique email address.
func (u *User) Email() string { return u.email }

// Peer returns the write capability of the currently bound session,
// or nil if the user is offline.
func (u *User) Peer() Peer {
	u.d.mu.RLock()
	defer u.d.mu.RUnlock()
	return u.peer
}

// Online reports whether a live session is bound to the user.
func (u *User) Online() bool {
	return u.Peer() != nil
}

// Rooms returns a snapshot of the rooms the user belongs to, in join
// order.
func (u *User) Rooms() []*ChatRoom {
	u.d.mu.RLock()
	defer u.d.mu.RUnlock()
	out := make([]*ChatRoom, len(u.rooms))
	copy(out, u.rooms)
	return out
}
