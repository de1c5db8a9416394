package directory

// ChatRoom is a named set of member users. Members are kept in join
// order so broadcast fan-out and presence listings are deterministic.
// All fields are guarded by the owning directory's lock.
type ChatRoom struct {
	d       *Directory
	name    string
	members []*User
	byName  map[string]*User
}

// Name returns the room's unique name.
func (r *ChatRoom) Name() string { return r.name }

// IsMember reports whether the named user belongs to the room.
func (r *ChatRoom) IsMember(name string) bool {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}

// FindMember returns the member with the given name, or nil.
func (r *ChatRoom) FindMember(name string) *User {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	return r.byName[name]
}

// Invite adds u to the room and records the room in u's membership
// relation. Inviting an existing member is a no-op reporting
// ErrAlreadyMember; the member set is unchanged.
func (r *ChatRoom) Invite(u *User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	if _, ok := r.byName[u.name]; ok {
		return ErrAlreadyMember
	}
	r.members = append(r.members, u)
	r.byName[u.name] = u
	u.rooms = append(u.rooms, r)
	return nil
}

// Leave removes the named user from the room. The user record itself
// is not deleted.
func (r *ChatRoom) Leave(name string) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()
	u, ok := r.byName[name]
	if !ok {
		return ErrNotMember
	}
	delete(r.byName, name)
	for i, m := range r.members {
		if m == u {
			r.members = append(r.members[:i], r.members[i+1:]...)
			break
		}
	}
	for i, room := range u.rooms {
		if room == r {
			u.rooms = append(u.rooms[:i], u.rooms[i+1:]...)
			break
		}
	}
	return nil
}

// Members returns a snapshot of all members in join order.
func (r *ChatRoom) Members() []*User {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]*User, len(r.members))
	copy(out, r.members)
	return out
}

// Online pairs a member with the write capability that was bound to it
// at snapshot time, so deliveries can happen after the lock is
// released.
type Online struct {
	User *User
	Peer Peer
}

// MembersOnline returns the members with a live session, in join
// order. The peers are captured under a single read lock; callers
// write to them without holding any directory lock.
func (r *ChatRoom) MembersOnline() []Online {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()
	out := make([]Online, 0, len(r.members))
	for _, u := range r.members {
		if u.peer == nil {
			continue
		}
		out = append(out, Online{User: u, Peer: u.peer})
	}
	return out
}
