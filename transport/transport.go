/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package transport wraps the raw TCP socket backing one Session, providing
// a single write path (serialized, per §5's ordering guarantee that writes
// to one peer never interleave) and the in-place STARTTLS upgrade.
package transport

import (
	"crypto/tls"
	"net"
	"sync"
)

// Transport is the write-capable connection handle owned by a Session. It
// is replaced exactly once, atomically, when STARTTLS completes.
type Transport struct {
	mu      sync.Mutex
	conn    net.Conn
	secured bool
}

// New wraps an accepted net.Conn.
func New(conn net.Conn) *Transport {
	return &Transport{conn: conn}
}

// Write sends b over the underlying connection. Concurrent Write calls are
// serialized so that two routing sources writing to the same Session never
// interleave at the byte level.
func (t *Transport) Write(b []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Write(b)
}

// StartTLS performs the server-side TLS handshake in place over the
// existing socket and swaps the underlying connection, exactly once. It is
// a no-op if the transport has already been secured.
func (t *Transport) StartTLS(cfg *tls.Config) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.secured {
		return nil
	}
	tlsConn := tls.Server(t.conn, cfg)
	if err := tlsConn.Handshake(); err != nil {
		return err
	}
	t.conn = tlsConn
	t.secured = true
	return nil
}

// Secured reports whether STARTTLS has completed on this transport.
func (t *Transport) Secured() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.secured
}

// Read reads directly off the current underlying connection. Only the
// Session's single reader goroutine ever calls Read, so it needs no lock —
// STARTTLS replaces t.conn while holding the write lock, and the spec
// guarantees no stanzas are routed on a Session between STARTTLS
// initiation and completion, so a concurrent Read during the swap cannot
// happen in practice; Read itself reads the field under the same mutex to
// stay safe regardless.
func (t *Transport) Read(b []byte) (int, error) {
	t.mu.Lock()
	conn := t.conn
	t.mu.Unlock()
	return conn.Read(b)
}

// RemoteAddr returns the peer's network address.
func (t *Transport) RemoteAddr() net.Addr {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.RemoteAddr()
}

// Close closes the underlying connection.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.conn.Close()
}
