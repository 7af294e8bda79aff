/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package session implements the per-connection XMPP state machine (spec
// §4.2): one Session per accepted TCP connection, driving the STARTTLS and
// SASL handshakes, resource binding, session establishment, and READY-state
// stanza dispatch. The shape — an actor goroutine draining a mailbox of
// closures plus a second goroutine doing blocking reads — follows
// github.com/ortuman/jackal's c2s.inStream (its actorCh/doneCh, loop/doRead
// pair, and atomic uint32 state field; see c2s/in.go).
package session

import (
	"crypto/tls"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/mm060488/bumper/auth"
	"github.com/mm060488/bumper/log"
	"github.com/mm060488/bumper/router"
	"github.com/mm060488/bumper/storage"
	"github.com/mm060488/bumper/stream"
	"github.com/mm060488/bumper/transport"
	"github.com/mm060488/bumper/xmpp"
)

// State is one of the six monotonically-increasing states of spec §4.2's
// table. Any attempted transition to a numerically lower state is an
// implementation fault and closes the session (spec §3's invariant).
type State uint32

// Session states, in strictly increasing order.
const (
	Idle State = iota
	Connect
	Init
	Bind
	Ready
	Disconnect
)

const mailboxSize = 64

// ServerID is the constant server identity string (spec §6).
const ServerID = "ecouser.net"

const pingInterval = 30 * time.Second

// Config bundles a Session's external collaborators.
type Config struct {
	TLSConfig *tls.Config
	Store     storage.Store
	Router    *router.Registry
	UseAuth   bool
}

// Session is one per accepted TCP connection.
type Session struct {
	id        string
	cfg       *Config
	tr        *transport.Transport
	tok       *stream.Tokenizer
	state     uint32 // atomic State
	tlsUp     int32  // atomic bool
	actorCh   chan func()
	doneCh    chan struct{}
	pingStop  chan struct{}

	uid      string
	kind     router.Kind
	devclass string
	resource string
	jid      string

	authenticator *auth.Plain
}

// New creates a Session for a freshly accepted connection and starts its
// actor and reader goroutines.
func New(id string, conn *transport.Transport, cfg *Config) *Session {
	s := &Session{
		id:      id,
		cfg:     cfg,
		tr:      conn,
		tok:     stream.New(),
		actorCh: make(chan func(), mailboxSize),
		doneCh:  make(chan struct{}),
	}
	s.authenticator = auth.NewPlain(verifier{s})
	s.setState(Connect)

	// A session sits in the Router set for its entire lifetime, from
	// accept to connection-loss (spec §3); routing itself considers only
	// READY peers (see Ready, and router.Registry's matching/broadcast).
	cfg.Router.Bind(s)

	go s.loop()
	go s.readLoop()
	return s
}

// verifier narrows Config.Store to auth.Verifier without importing storage
// into the auth package.
type verifier struct{ s *Session }

func (v verifier) CheckAuthcode(uid, code string) (bool, error) {
	return v.s.cfg.Store.CheckAuthcode(uid, code)
}

// UID implements router.Peer.
func (s *Session) UID() string { return s.uid }

// JID implements router.Peer.
func (s *Session) JID() string { return s.jid }

// Kind implements router.Peer.
func (s *Session) Kind() router.Kind { return s.kind }

// Ready implements router.Peer.
func (s *Session) Ready() bool { return s.getState() == Ready }

// Deliver implements router.Peer: enqueue elem for serialized delivery on
// this session's own actor loop.
func (s *Session) Deliver(elem xmpp.XElement) {
	if s.getState() == Disconnect {
		return
	}
	s.actorCh <- func() { s.write(elem.String()) }
}

// Done is closed once the session has fully torn down.
func (s *Session) Done() <-chan struct{} { return s.doneCh }

func (s *Session) getState() State { return State(atomic.LoadUint32(&s.state)) }

// setState enforces the monotonic transition invariant (spec §3); an
// attempted backwards transition is treated as fatal and tears the
// session down instead of applying it. Every call to setState happens on
// the actor loop's own goroutine, so a plain store is race-free.
func (s *Session) setState(newState State) {
	cur := s.getState()
	if newState < cur {
		log.Errorf("session %s: rejected backwards transition %d -> %d", s.id, cur, newState)
		s.fatal()
		return
	}
	atomic.StoreUint32(&s.state, uint32(newState))
}

func (s *Session) isTLSUpgraded() bool { return atomic.LoadInt32(&s.tlsUp) == 1 }

func (s *Session) setTLSUpgraded() { atomic.StoreInt32(&s.tlsUp, 1) }

// loop drains the actor mailbox on its own goroutine; every state mutation
// and write happens here, so no locking is needed across them.
func (s *Session) loop() {
	for f := range s.actorCh {
		f()
		if s.getState() == Disconnect {
			return
		}
	}
}

// readLoop blocks on the transport and hands each batch of tokenizer
// events to the actor loop, one closure per Feed call.
//
// A StartTLS event is special-cased: the handshake must run here, on the
// reader goroutine itself, rather than as a dispatched actor closure. The
// actor loop's only access to the connection is through Transport's own
// locked Write/StartTLS methods, but the handshake's Read traffic happens
// underneath that lock on the same goroutine that is about to keep calling
// tr.Read in this very loop — running it anywhere else would race this
// loop's blocking Read against the handshake's Read on the same socket.
// Splitting the batch keeps every other event on its normal dispatch path.
func (s *Session) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := s.tr.Read(buf)
		if err != nil {
			s.actorCh <- func() { s.teardown(err) }
			return
		}
		events := s.tok.Feed(buf[:n])
		if len(events) == 0 {
			continue
		}
		if !s.dispatchEvents(events) {
			return
		}
	}
}

// dispatchEvents hands events to the actor loop, performing any StartTLS
// handshake inline at the point it occurs in the batch. It returns false if
// the session has torn down and readLoop should stop.
func (s *Session) dispatchEvents(events []stream.Event) bool {
	start := 0
	for i, ev := range events {
		if ev.Kind != stream.StartTLS {
			continue
		}
		if pre := events[start:i]; len(pre) > 0 {
			if !s.runOnActor(pre) {
				return false
			}
		}
		s.handleStartTLS()
		start = i + 1
	}
	if rest := events[start:]; len(rest) > 0 {
		if !s.runOnActor(rest) {
			return false
		}
	}
	return s.getState() != Disconnect
}

// runOnActor dispatches chunk to the actor loop and waits for the state
// after processing it, so the caller can decide whether to keep reading.
func (s *Session) runOnActor(chunk []stream.Event) bool {
	done := make(chan struct{})
	s.actorCh <- func() {
		s.handleEvents(chunk)
		close(done)
	}
	<-done
	return s.getState() != Disconnect
}

// handleStartTLS implements the CONNECT+StartTLS transition (spec §4.2):
// reply <proceed/>, then upgrade the transport in place. Both steps run
// synchronously on this goroutine, ahead of the next tr.Read call.
func (s *Session) handleStartTLS() {
	if s.getState() != Connect {
		log.Warnf("session %s: unexpected STARTTLS in state %d", s.id, s.getState())
		return
	}
	if s.isTLSUpgraded() {
		// A second <starttls/> is a no-op (spec §8): the original guards
		// its entire body, including the <proceed/> reply, behind
		// "not self.TLSUpgraded" and sends nothing at all.
		return
	}
	s.write(proceedElement)
	if err := s.tr.StartTLS(s.cfg.TLSConfig); err != nil {
		log.Errorf("session %s: TLS handshake failed: %v", s.id, err)
		s.actorCh <- func() { s.teardown(err) }
		return
	}
	s.setTLSUpgraded()
}

func (s *Session) handleEvents(events []stream.Event) {
	for _, ev := range events {
		if s.getState() == Disconnect {
			return
		}
		s.handleEvent(ev)
	}
}

func (s *Session) write(raw string) {
	if _, err := s.tr.Write([]byte(raw)); err != nil {
		log.Error(err)
	}
}

// fatal tears the session down for an implementation fault (e.g. a
// rejected state transition) without attempting any further protocol
// courtesy.
func (s *Session) fatal() {
	s.teardown(fmt.Errorf("session: fatal protocol violation"))
}

// teardown implements spec §3's DISCONNECT side effects: clear the
// "online" flag, close the transport, and remove the session from the
// Router. Safe to call more than once.
func (s *Session) teardown(cause error) {
	if s.getState() == Disconnect {
		return
	}
	if cause != nil {
		log.Debugf("session %s: closing (%v)", s.id, cause)
	}
	atomic.StoreUint32(&s.state, uint32(Disconnect))

	s.stopPinging()

	if s.cfg.Store != nil {
		if s.kind == router.Bot {
			_ = s.cfg.Store.BotSetXMPP(s.uid, false)
		} else if s.kind == router.Controller {
			_ = s.cfg.Store.ClientSetXMPP(s.resource, false)
		}
	}
	s.cfg.Router.Unbind(s)
	_ = s.tr.Close()
	close(s.doneCh)
}
