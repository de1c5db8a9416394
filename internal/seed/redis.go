package seed

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// Redis key layout: "users" is a set of user names, "user:<name>" a
// hash with at least an "email" field, "rooms" a set of room names,
// and "room:<name>:members" a set of member names.
func userKey(name string) string { return "user:" + name }

func roomMembersKey(name string) string { return "room:" + name + ":members" }

// FromRedis builds a Seed from the records in Redis. User join order
// follows the sorted "users" set members so seeding is deterministic
// across runs.
func FromRedis(ctx context.Context, client redis.Cmdable) (*Seed, error) {
	ctx, cancel := context.WithTimeout(ctx, redisTimeout)
	defer cancel()

	names, err := client.SMembers(ctx, "users").Result()
	if err != nil {
		return nil, fmt.Errorf("seed: redis users: %w", err)
	}
	sort.Strings(names)

	rooms, err := client.SMembers(ctx, "rooms").Result()
	if err != nil {
		return nil, fmt.Errorf("seed: redis rooms: %w", err)
	}
	sort.Strings(rooms)

	membership := make(map[string][]string) // user -> rooms, in room order
	for _, room := range rooms {
		members, err := client.SMembers(ctx, roomMembersKey(room)).Result()
		if err != nil {
			return nil, fmt.Errorf("seed: redis room %s: %w", room, err)
		}
		for _, m := range members {
			membership[m] = append(membership[m], room)
		}
	}

	s := &Seed{Rooms: rooms}
	for _, name := range names {
		fields, err := client.HGetAll(ctx, userKey(name)).Result()
		if err != nil {
			return nil, fmt.Errorf("seed: redis user %s: %w", name, err)
		}
		email, ok := fields["email"]
		if !ok {
			return nil, fmt.Errorf("seed: redis user %s: missing email", name)
		}
		s.Users = append(s.Users, UserSeed{
			Name:  name,
			Email: email,
			Rooms: membership[name],
		})
	}
	return s, nil
}
