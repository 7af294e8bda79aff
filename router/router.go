/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package router implements the process-wide registry of live peers (of
// which routing considers only the READY ones) and
// the stanza dispatch rule described in spec §4.3. It follows the shape of
// github.com/ortuman/jackal's own router package — a package-level
// Register/Unregister/Route surface backed by a single mutex-guarded set
// (see c2s/in.go's router.Bind/router.Unbind/router.Route call sites) —
// adapted from jackal's JID-keyed stream table to this server's
// case-insensitive substring-on-uid matching rule.
package router

import (
	"sync"

	"github.com/mm060488/bumper/storage"
	"github.com/mm060488/bumper/xmpp"
	"github.com/mm060488/bumper/xmpp/jid"
)

// ServerID is the constant server identity string (spec §6), duplicated
// from session.ServerID rather than imported from it — session already
// imports this package, and router must not import session back.
const ServerID = "ecouser.net"

// Kind distinguishes the two peer populations the spec routes between.
type Kind int

// Peer kinds.
const (
	Unknown Kind = iota
	Bot
	Controller
)

// Peer is the Session-side contract the Router depends on. Session
// implements this; Router never imports the session package, avoiding an
// import cycle (session depends on router, not the other way around).
type Peer interface {
	// UID is the identity string the substring-matching rule compares
	// against a stanza's "to" attribute.
	UID() string
	// JID is this peer's full assigned address (spec §3).
	JID() string
	// Kind reports whether this peer is a bot or a controller.
	Kind() Kind
	// Ready reports whether this peer has reached the READY state. A
	// session sits in the registry for its entire lifetime (spec §3), but
	// routing considers only READY peers.
	Ready() bool
	// Deliver writes elem to this peer's transport. Implementations must
	// serialize concurrent Delivers themselves (spec §5: "writes to one
	// peer Session are serialized").
	Deliver(elem xmpp.XElement)
}

// Registry is the process-wide, mutex-guarded set of live peers, mutated
// only by peer lifecycle events and read on every stanza delivery (spec
// §5's "iteration observes a consistent snapshot" requirement).
type Registry struct {
	mu    sync.RWMutex
	peers map[Peer]struct{}

	// Store is the credentials store the Registry was built with. The
	// dispatch code does not read it; errno=103 auto-enrollment runs the
	// same whether or not it is nil.
	Store storage.Store
	// UseAuth mirrors the server's use_auth configuration flag; when true,
	// auto-enrollment is skipped entirely (spec §4.5).
	UseAuth bool
}

// New returns an empty Registry.
func New(store storage.Store, useAuth bool) *Registry {
	return &Registry{peers: make(map[Peer]struct{}), Store: store, UseAuth: useAuth}
}

// Bind registers p as a live, routable peer.
func (r *Registry) Bind(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.peers[p] = struct{}{}
}

// Unbind removes p from the registry. Safe to call even if p was never
// bound or has already been removed.
func (r *Registry) Unbind(p Peer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.peers, p)
}

// snapshot returns a stable copy of the currently registered peers.
func (r *Registry) snapshot() []Peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Peer, 0, len(r.peers))
	for p := range r.peers {
		out = append(out, p)
	}
	return out
}

// matching returns every READY registered peer, other than from, whose UID
// is a case-insensitive substring of to (spec §4.3's matching rule),
// normalizing a bare "to" with no '@' to "{to}@ecouser.net" first.
func (r *Registry) matching(to string, from Peer) []Peer {
	if len(to) > 0 && !containsAt(to) {
		to = to + "@ecouser.net"
	}
	var out []Peer
	for _, p := range r.snapshot() {
		if p == from || !p.Ready() {
			continue
		}
		if jid.ContainsUID(p.UID(), to) {
			out = append(out, p)
		}
	}
	return out
}

// broadcast returns every other READY registered peer.
func (r *Registry) broadcast(from Peer) []Peer {
	var out []Peer
	for _, p := range r.snapshot() {
		if p != from && p.Ready() {
			out = append(out, p)
		}
	}
	return out
}

func containsAt(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '@' {
			return true
		}
	}
	return false
}
