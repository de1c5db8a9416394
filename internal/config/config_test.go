package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != ":9000" {
		t.Errorf("ListenAddr = %q, want :9000", c.ListenAddr)
	}
	if c.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want :8080", c.HTTPAddr)
	}
	if c.MaxConns != 1000 {
		t.Errorf("MaxConns = %d, want 1000", c.MaxConns)
	}
	if c.RateLimitWindow != time.Minute {
		t.Errorf("RateLimitWindow = %v, want 1m", c.RateLimitWindow)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHATSERV_LISTEN_ADDR", "127.0.0.1:7000")
	t.Setenv("CHATSERV_HTTP_ADDR", "")
	t.Setenv("CHATSERV_MAX_CONNS", "5")
	t.Setenv("CHATSERV_SHUTDOWN_TIMEOUT", "250ms")

	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ListenAddr != "127.0.0.1:7000" {
		t.Errorf("ListenAddr = %q", c.ListenAddr)
	}
	if c.HTTPAddr != "" {
		t.Errorf("HTTPAddr = %q, want empty", c.HTTPAddr)
	}
	if c.MaxConns != 5 {
		t.Errorf("MaxConns = %d", c.MaxConns)
	}
	if c.ShutdownTimeout != 250*time.Millisecond {
		t.Errorf("ShutdownTimeout = %v", c.ShutdownTimeout)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("CHATSERV_MAX_CONNS", "lots")
	if _, err := Load(); err == nil {
		t.Error("expected an error for a non-numeric MAX_CONNS")
	}
}
