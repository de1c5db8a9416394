// Package server owns the transports: the TCP listener speaking the
// newline-delimited chat protocol, and an optional HTTP listener with
// a WebSocket bridge onto the same protocol plus a couple of admin
// endpoints. It frames byte streams into lines and hands each line,
// with its session, to the router; everything else is the core's job.
package server

import (
	"bufio"
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/christopherjohns/chatserv/internal/directory"
	"github.com/christopherjohns/chatserv/internal/ratelimit"
	"github.com/christopherjohns/chatserv/internal/router"
	"github.com/christopherjohns/chatserv/internal/session"
)

const (
	// maxLineBytes bounds a single protocol line. A client exceeding
	// it is disconnected.
	maxLineBytes = 1024

	// writeTimeout is the max time one outbound line may take; a
	// stalled client is cut rather than allowed to block delivery.
	writeTimeout = 5 * time.Second
)

const (
	noticeServerFull  = "server: too many connections"
	noticeRateLimited = "server: reconnecting too fast, try again later"
)

// Server accepts chat connections and runs their read-parse-route
// loops, one goroutine per connection.
type Server struct {
	addr     string
	httpAddr string
	maxConns int
	limiter  *ratelimit.Limiter

	dir    *directory.Directory
	router *router.Router

	mu     sync.Mutex
	conns  map[net.Conn]struct{}
	active int
	closed bool

	ln       net.Listener
	httpln   net.Listener
	serveCtx context.Context
}

// Option configures a Server.
type Option func(*Server)

// WithMaxConns caps concurrent connections across both transports.
// 0 means unlimited.
func WithMaxConns(n int) Option {
	return func(s *Server) { s.maxConns = n }
}

// WithHTTPAddr enables the HTTP listener (WebSocket bridge and admin
// endpoints) on addr.
func WithHTTPAddr(addr string) Option {
	return func(s *Server) { s.httpAddr = addr }
}

// WithRateLimiter throttles connection attempts per remote address.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(s *Server) { s.limiter = l }
}

// New creates a Server for the given chat listen address and
// directory.
func New(addr string, dir *directory.Directory, opts ...Option) *Server {
	s := &Server{
		addr:   addr,
		dir:    dir,
		router: router.New(dir),
		conns:  make(map[net.Conn]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Listen binds the TCP listener and, if configured, the HTTP listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.ln = ln
	if s.httpAddr != "" {
		httpln, err := net.Listen("tcp", s.httpAddr)
		if err != nil {
			ln.Close()
			return err
		}
		s.httpln = httpln
	}
	return nil
}

// Addr returns the chat listener's address. Valid after Listen.
func (s *Server) Addr() net.Addr { return s.ln.Addr() }

// HTTPAddr returns the HTTP listener's address, or nil when the HTTP
// listener is disabled. Valid after Listen.
func (s *Server) HTTPAddr() net.Addr {
	if s.httpln == nil {
		return nil
	}
	return s.httpln.Addr()
}

// Serve accepts connections until ctx is cancelled, then closes every
// live connection and returns. Must follow Listen.
func (s *Server) Serve(ctx context.Context) error {
	s.serveCtx = ctx

	var httpSrv *http.Server
	if s.httpln != nil {
		httpSrv = &http.Server{Handler: s.routes()}
		go func() {
			if err := httpSrv.Serve(s.httpln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("server: http: %v", err)
			}
		}()
		log.Printf("server: http listening on %s", s.httpln.Addr())
	}

	go func() {
		<-ctx.Done()
		s.ln.Close()
		if httpSrv != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), writeTimeout)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}
		s.closeAll()
	}()

	log.Printf("server: listening on %s", s.ln.Addr())
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.accepted(conn)
	}
}

// Run is Listen followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// accepted vets a freshly accepted connection and starts its session
// goroutine, or rejects it with a one-line notice.
func (s *Server) accepted(conn net.Conn) {
	host := remoteHost(conn.RemoteAddr().String())
	if s.limiter != nil && !s.limiter.Allow(host) {
		log.Printf("server: rate limited %s", host)
		rejectConn(conn, noticeRateLimited)
		return
	}
	if !s.track(conn) {
		log.Printf("server: at capacity, rejecting %s", host)
		rejectConn(conn, noticeServerFull)
		return
	}
	go s.handleConn(conn)
}

// handleConn runs the read-parse-route loop for one TCP connection.
func (s *Server) handleConn(conn net.Conn) {
	sess := session.New(connWriter{conn: conn})
	log.Printf("server: session[%d]: connected from %s", sess.ID(), conn.RemoteAddr())
	defer func() {
		s.router.Disconnect(sess)
		s.untrack(conn)
		conn.Close()
		log.Printf("server: session[%d]: closed", sess.ID())
	}()

	sc := bufio.NewScanner(conn)
	sc.Buffer(make([]byte, 0, 256), maxLineBytes)
	for sc.Scan() {
		if s.router.HandleLine(sess, sc.Text()) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		log.Printf("server: session[%d]: read: %v", sess.ID(), err)
	}
}

// track registers a connection, refusing it when at capacity or
// shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.maxConns > 0 && s.active >= s.maxConns) {
		return false
	}
	s.conns[conn] = struct{}{}
	s.active++
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.conns[conn]; ok {
		delete(s.conns, conn)
		s.active--
	}
}

// acquireSlot reserves a capacity slot for a connection that is not a
// net.Conn (the WebSocket bridge). Release with releaseSlot.
func (s *Server) acquireSlot() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || (s.maxConns > 0 && s.active >= s.maxConns) {
		return false
	}
	s.active++
	return true
}

func (s *Server) releaseSlot() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active--
}

// closeAll cuts every live TCP connection; their goroutines unwind
// through handleConn's deferred cleanup, unbinding users as they go.
func (s *Server) closeAll() {
	s.mu.Lock()
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		c.Close()
	}
}

// rejectConn sends a one-line notice and closes. Best effort.
func rejectConn(conn net.Conn, notice string) {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	conn.Write([]byte(notice + "\n"))
	conn.Close()
}

// remoteHost strips the port from a remote address, falling back to
// the whole string for non host:port addresses.
func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// connWriter is the per-connection write capability handed to the
// session. The session serializes calls; the deadline cuts stalled
// clients so one slow reader never blocks a broadcast.
type connWriter struct {
	conn net.Conn
}

func (w connWriter) WriteLine(line string) error {
	w.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	_, err := w.conn.Write([]byte(line + "\n"))
	return err
}
