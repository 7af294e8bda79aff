/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import (
	"strings"

	"github.com/mm060488/bumper/enroll"
	"github.com/mm060488/bumper/xmpp"
)

const (
	ctlNamespace  = "com:ctl"
	pingNamespace = "urn:xmpp:ping"
)

// RouteIQ applies the §4.3 dispatch rule to an <iq> arriving in READY state
// from the given peer and returns the (possibly empty) set of stanzas the
// caller should write back to the originator — the Router never writes to
// from directly, keeping delivery serialized through each peer's own actor
// loop (spec §5). raw is the Tokenizer-preserved original bytes of the
// stanza (spec §4.1); the errno='103' check inspects raw text, exactly as
// the original source does, rather than a re-serialization of the parsed
// tree.
func (r *Registry) RouteIQ(iq *xmpp.IQ, raw string, from Peer) []xmpp.XElement {
	if ping := iq.Elements().ChildNamespace("ping", pingNamespace); ping != nil {
		return r.routePing(iq, ping, from)
	}
	if query := iq.Elements().ChildNamespace("query", ctlNamespace); query != nil {
		return r.routeQuery(iq, query, raw, from)
	}
	if iq.IsResult() || iq.IsSet() {
		return r.forward(iq, from)
	}
	return nil
}

func (r *Registry) routePing(iq *xmpp.IQ, ping xmpp.XElement, from Peer) []xmpp.XElement {
	to := iq.To()
	if !strings.Contains(to, "@") {
		reply := xmpp.NewIQType(iq.ID(), xmpp.ResultType)
		reply.SetFrom(to)
		return []xmpp.XElement{reply}
	}
	normalizeNamespace(ping, pingNamespace)
	if len(iq.From()) == 0 {
		iq.SetFrom(from.JID())
	}
	r.deliverTo(iq, to, from)
	return nil
}

func (r *Registry) routeQuery(iq *xmpp.IQ, query xmpp.XElement, raw string, from Peer) []xmpp.XElement {
	normalizeNamespace(query, ctlNamespace)

	if from.Kind() == Controller {
		if containsFeature(raw, "roster", "disco#items", "disco#info") {
			errIQ := featureNotImplementedError(iq)
			return []xmpp.XElement{errIQ}
		}
		to := iq.To()
		if iq.IsSet() && strings.EqualFold(to, "rl.ecorobot.net") {
			reply := xmpp.NewIQType(iq.ID(), xmpp.ResultType)
			reply.SetFrom("rl.ecorobot.net")
			return []xmpp.XElement{reply}
		}
		if len(iq.From()) == 0 {
			iq.SetFrom(from.JID())
		}
		r.deliverToBots(iq, to, from)
		return nil
	}

	// From a bot: a result/event, possibly triggering auto-enrollment.
	if strings.Contains(raw, "errno='103'") || strings.Contains(raw, `errno="103"`) {
		var ctlErr, ctlAdmin string
		if ctl := query.Elements().Child("ctl"); ctl != nil {
			ctlErr = ctl.Attributes().Get("error")
			ctlAdmin = ctl.Attributes().Get("admin")
		}
		enroll.Errno103(from, from.JID(), iq.To(), ctlErr, ctlAdmin, r.UseAuth)
		return nil
	}

	if len(iq.From()) == 0 {
		iq.SetFrom(from.JID())
	}
	to := iq.To()
	if strings.EqualFold(to, "de.ecorobot.net") {
		r.deliverBroadcast(iq, from)
		return nil
	}
	r.deliverOrBroadcast(iq, to, from)
	return nil
}

func (r *Registry) forward(iq *xmpp.IQ, from Peer) []xmpp.XElement {
	if len(iq.From()) == 0 {
		iq.SetFrom(from.JID())
	}
	r.deliverOrBroadcast(iq, iq.To(), from)
	return nil
}

func (r *Registry) deliverTo(elem xmpp.XElement, to string, from Peer) {
	for _, p := range r.matching(to, from) {
		p.Deliver(elem)
	}
}

// deliverOrBroadcast implements _handle_result's literal "to address with no
// '@' -> send to all clients" fallback: a "to" containing no '@' at all (not
// even the implicit "@ecouser.net" this package's matching() would otherwise
// assume) goes to every other READY peer instead of being substring-matched.
// The original carries this behind a "TODO: Revisit later, this may be
// wrong" comment rather than a considered design choice, and it is kept
// exactly that uncertain here, not hardened into something more principled.
func (r *Registry) deliverOrBroadcast(elem xmpp.XElement, to string, from Peer) {
	if !containsAt(to) {
		r.deliverBroadcast(elem, from)
		return
	}
	r.deliverTo(elem, to, from)
}

func (r *Registry) deliverToBots(elem xmpp.XElement, to string, from Peer) {
	for _, p := range r.matching(to, from) {
		if p.Kind() == Bot {
			p.Deliver(elem)
		}
	}
}

func (r *Registry) deliverBroadcast(elem xmpp.XElement, from Peer) {
	for _, p := range r.broadcast(from) {
		p.Deliver(elem)
	}
}

func containsFeature(raw string, tokens ...string) bool {
	for _, tok := range tokens {
		if strings.Contains(raw, tok) {
			return true
		}
	}
	return false
}

func featureNotImplementedError(iq *xmpp.IQ) *xmpp.IQ {
	return xmpp.ErrorElementFromIQ(iq, xmpp.ErrFeatureNotImplemented)
}

// normalizeNamespace force-sets elem's xmlns to ns, per spec §4.3's "XML
// namespace cleanup". It does not remove other namespace-prefix
// declarations already present on elem. bumper's own xmpp.Element
// serializer never introduces an xmlns:ns0-style artifact in the first
// place (see xmpp/element.go), so this reasserts the canonical namespace
// on elements the wire format requires it on.
func normalizeNamespace(elem xmpp.XElement, ns string) {
	if e, ok := elem.(*xmpp.Element); ok {
		e.SetNamespace(ns)
	}
}
