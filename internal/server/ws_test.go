package server

import (
	"context"
	"testing"
	"time"

	"nhooyr.io/websocket"
)

func dialWS(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, "ws://"+s.HTTPAddr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func wsSend(t *testing.T, conn *websocket.Conn, line string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		t.Fatalf("ws send %q: %v", line, err)
	}
}

func wsExpect(t *testing.T, conn *websocket.Conn, want string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	typ, data, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("ws recv: %v", err)
	}
	if typ != websocket.MessageText || string(data) != want {
		t.Fatalf("ws received %q, want %q", data, want)
	}
}

func TestWSBridge(t *testing.T) {
	s := startServer(t, WithHTTPAddr("127.0.0.1:0"))

	// alice over the bridge, bob over plain TCP, both on one core.
	ws := dialWS(t, s)
	wsSend(t, ws, "/name alice")
	wsExpect(t, ws, "server: you are now alice")

	bob := dialChat(t, s)
	bob.claim("bob")

	bob.send("/msg alice hi from tcp")
	wsExpect(t, ws, "bob: hi from tcp")

	wsSend(t, ws, "/msg bob hi from ws")
	bob.expect("alice: hi from ws")

	wsSend(t, ws, "/who")
	wsExpect(t, ws, "alice bob ")

	bob.send("all here?")
	wsExpect(t, ws, "bob: all here?")
	bob.expect("bob: all here?")
}

func TestWSQuit(t *testing.T) {
	s := startServer(t, WithHTTPAddr("127.0.0.1:0"))

	ws := dialWS(t, s)
	wsSend(t, ws, "/name alice")
	wsExpect(t, ws, "server: you are now alice")
	wsSend(t, ws, "/quit")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, _, err := ws.Read(ctx); err == nil {
		t.Error("expected the bridge to close after /quit")
	}

	// The name frees up for the next connection.
	c := dialChat(t, s)
	c.claim("alice")
}

func TestWSDropFreesName(t *testing.T) {
	s := startServer(t, WithHTTPAddr("127.0.0.1:0"))

	ws := dialWS(t, s)
	wsSend(t, ws, "/name alice")
	wsExpect(t, ws, "server: you are now alice")
	ws.Close(websocket.StatusGoingAway, "")

	c := dialChat(t, s)
	c.claim("alice")
}
