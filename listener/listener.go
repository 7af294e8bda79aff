/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package listener accepts TCP connections and turns each one into a
// session.Session, following the accept-a-connection/spawn-a-handler shape
// of _examples/mellium-xmpp/server's Server.Serve — the one example repo in
// the pack that implements a plain net.Listener accept loop for XMPP — with
// a bounded in-flight connection count added on top (spec §6's
// max_connections) and a context-driven shutdown. Shutdown closes the
// listening socket only; sessions already accepted are not closed by it and
// run until their own connections end.
package listener

import (
	"context"
	"crypto/tls"
	"net"
	"strconv"
	"sync"

	"github.com/mm060488/bumper/log"
	"github.com/mm060488/bumper/router"
	"github.com/mm060488/bumper/session"
	"github.com/mm060488/bumper/storage"
	"github.com/mm060488/bumper/transport"
)

// Config bundles everything a Listener needs to accept and hand off
// connections.
type Config struct {
	Address        string
	TLSConfig      *tls.Config
	Store          storage.Store
	Router         *router.Registry
	UseAuth        bool
	MaxConnections int
}

// Listener owns the TCP socket and the set of live sessions it spawned.
type Listener struct {
	cfg Config
	ln  net.Listener

	sem chan struct{} // bounds concurrent in-flight connections

	mu       sync.Mutex
	sessions map[*session.Session]struct{}

	nextID uint64
}

// New binds cfg.Address and returns a Listener ready to Serve.
func New(cfg Config) (*Listener, error) {
	ln, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, err
	}
	max := cfg.MaxConnections
	if max <= 0 {
		max = 1024
	}
	return &Listener{
		cfg:      cfg,
		ln:       ln,
		sem:      make(chan struct{}, max),
		sessions: make(map[*session.Session]struct{}),
	}, nil
}

// Addr reports the bound local address.
func (l *Listener) Addr() net.Addr { return l.ln.Addr() }

// Serve accepts connections until ctx is canceled, spawning one Session per
// accepted connection. It blocks until shutdown completes.
func (l *Listener) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = l.ln.Close()
	}()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				l.shutdownSessions()
				return nil
			default:
				log.Errorf("listener: accept: %v", err)
				return err
			}
		}
		select {
		case l.sem <- struct{}{}:
			go l.handle(conn)
		default:
			log.Warnf("listener: max_connections reached, rejecting %s", conn.RemoteAddr())
			_ = conn.Close()
		}
	}
}

func (l *Listener) handle(conn net.Conn) {
	defer func() { <-l.sem }()

	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.mu.Unlock()

	tr := transport.New(conn)
	sess := session.New(sessionID(id), tr, &session.Config{
		TLSConfig: l.cfg.TLSConfig,
		Store:     l.cfg.Store,
		Router:    l.cfg.Router,
		UseAuth:   l.cfg.UseAuth,
	})

	l.mu.Lock()
	l.sessions[sess] = struct{}{}
	l.mu.Unlock()

	<-sess.Done()

	l.mu.Lock()
	delete(l.sessions, sess)
	l.mu.Unlock()
}

// shutdownSessions waits for nothing — in-flight stanzas may be dropped on
// shutdown (spec §5) — it only logs how many connections were live.
func (l *Listener) shutdownSessions() {
	l.mu.Lock()
	n := len(l.sessions)
	l.mu.Unlock()
	if n > 0 {
		log.Infof("listener: shutting down with %d live session(s)", n)
	}
}

func sessionID(n uint64) string {
	return "s" + strconv.FormatUint(n, 10)
}
