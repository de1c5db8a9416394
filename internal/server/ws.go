package server

import (
	"context"
	"log"
	"net/http"
	"strings"

	"nhooyr.io/websocket"

	"github.com/christopherjohns/chatserv/internal/session"
)

// handleWS bridges a WebSocket onto the chat protocol: each inbound
// text frame is one protocol line, each outbound line one frame. The
// bridge shares the router, directory, capacity cap, and rate limiter
// with the TCP transport.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	host := remoteHost(r.RemoteAddr)
	if s.limiter != nil && !s.limiter.Allow(host) {
		http.Error(w, "reconnecting too fast", http.StatusTooManyRequests)
		return
	}
	if !s.acquireSlot() {
		http.Error(w, "too many connections", http.StatusServiceUnavailable)
		return
	}
	defer s.releaseSlot()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Allow all origins in dev; tighten in production.
	})
	if err != nil {
		log.Printf("server: ws: accept error: %v", err)
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "")
	conn.SetReadLimit(maxLineBytes)

	sess := session.New(&wsWriter{conn: conn})
	log.Printf("server: session[%d]: ws connected from %s", sess.ID(), host)
	defer func() {
		s.router.Disconnect(sess)
		log.Printf("server: session[%d]: ws closed", sess.ID())
	}()

	// Reads stop when the client goes away or the server shuts down.
	ctx := s.serveCtx
	if ctx == nil {
		ctx = r.Context()
	}
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		line := strings.TrimRight(string(data), "\r\n")
		if s.router.HandleLine(sess, line) {
			return
		}
	}
}

// wsWriter delivers one protocol line per text frame. The bridge
// strips the trailing newline a stream transport would carry.
type wsWriter struct {
	conn *websocket.Conn
}

func (w *wsWriter) WriteLine(line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	return w.conn.Write(ctx, websocket.MessageText, []byte(line))
}
