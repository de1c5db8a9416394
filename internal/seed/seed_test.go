package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/christopherjohns/chatserv/internal/directory"
)

func TestApplyDefault(t *testing.T) {
	d := directory.New()
	if err := Default().Apply(d); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	want := []string{"kanghee", "jaewook", "surin"}
	members := d.Root().Members()
	if len(members) != len(want) {
		t.Fatalf("expected %d root members, got %d", len(want), len(members))
	}
	for i, u := range members {
		if u.Name() != want[i] {
			t.Errorf("root member %d: expected %q, got %q", i, want[i], u.Name())
		}
	}
	if d.FindUserByEmail("kim.kanghee@example.com") == nil {
		t.Error("expected kanghee findable by email")
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	data := `
rooms:
  - lounge
users:
  - name: alice
    email: alice@example.com
    rooms: [lounge]
  - name: bob
    email: bob@example.com
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	d := directory.New()
	if err := s.Apply(d); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if !d.Root().IsMember("alice") || !d.Root().IsMember("bob") {
		t.Error("every seeded user should be in the root room")
	}
	lounge := d.FindRoomByName("lounge")
	if lounge == nil {
		t.Fatal("expected lounge room to exist")
	}
	if !lounge.IsMember("alice") || lounge.IsMember("bob") {
		t.Error("lounge membership should be alice only")
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("users: {not: [a, list"), 0o600)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}

func TestApplyRejectsDuplicates(t *testing.T) {
	d := directory.New()
	s := &Seed{Users: []UserSeed{
		{Name: "alice", Email: "alice@example.com"},
		{Name: "alice", Email: "other@example.com"},
	}}
	if err := s.Apply(d); err == nil {
		t.Error("expected an error for duplicate seed names")
	}
}

func TestApplyRejectsInvalidName(t *testing.T) {
	d := directory.New()
	s := &Seed{Users: []UserSeed{{Name: "not valid", Email: "x@example.com"}}}
	if err := s.Apply(d); err == nil {
		t.Error("expected an error for an invalid seed name")
	}
}
