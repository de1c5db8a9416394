// Package seed populates a directory with its startup users and
// rooms. The registry itself only exposes the create/invite
// primitives; where the records come from — a YAML file, Redis, or
// the built-in defaults — is decided here, outside the core.
package seed

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/christopherjohns/chatserv/internal/directory"
)

// UserSeed describes one user to register at startup. Every seeded
// user is invited into the root room; Rooms lists additional rooms.
type UserSeed struct {
	Name  string   `yaml:"name"`
	Email string   `yaml:"email"`
	Rooms []string `yaml:"rooms,omitempty"`
}

// Seed is the full startup dataset.
type Seed struct {
	Rooms []string   `yaml:"rooms,omitempty"`
	Users []UserSeed `yaml:"users"`
}

// Default returns the built-in dataset used when no seed source is
// configured.
func Default() *Seed {
	return &Seed{
		Users: []UserSeed{
			{Name: "kanghee", Email: "kim.kanghee@example.com"},
			{Name: "jaewook", Email: "jaewook@example.com"},
			{Name: "surin", Email: "surin@example.com"},
		},
	}
}

// LoadFile reads a YAML seed file.
func LoadFile(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("seed: parse %s: %w", path, err)
	}
	return &s, nil
}

// Apply registers the seed's rooms and users in d. Users are created
// in order and invited into the root room first, so its join order
// matches the seed, then into any extra rooms they list.
func (s *Seed) Apply(d *directory.Directory) error {
	for _, name := range s.Rooms {
		if name == directory.RootRoomName {
			continue
		}
		if _, err := d.CreateRoom(name); err != nil {
			return fmt.Errorf("seed: room %s: %w", name, err)
		}
	}

	for _, us := range s.Users {
		u, err := d.CreateUser(us.Name, us.Email)
		if err != nil {
			return fmt.Errorf("seed: user %s: %w", us.Name, err)
		}
		if err := d.Root().Invite(u); err != nil {
			return fmt.Errorf("seed: user %s: %w", us.Name, err)
		}
		for _, rn := range us.Rooms {
			if rn == directory.RootRoomName {
				continue
			}
			r := d.FindRoomByName(rn)
			if r == nil {
				r, err = d.CreateRoom(rn)
				if err != nil {
					return fmt.Errorf("seed: room %s: %w", rn, err)
				}
			}
			if err := r.Invite(u); err != nil {
				return fmt.Errorf("seed: invite %s to %s: %w", us.Name, rn, err)
			}
		}
	}
	return nil
}
