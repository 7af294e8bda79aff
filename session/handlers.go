/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package session

import (
	"strings"

	"github.com/pborman/uuid"

	"github.com/mm060488/bumper/auth"
	"github.com/mm060488/bumper/log"
	"github.com/mm060488/bumper/router"
	"github.com/mm060488/bumper/stream"
	"github.com/mm060488/bumper/xmpp"
)

const (
	bindNamespace    = "urn:ietf:params:xml:ns:xmpp-bind"
	sessionNamespace = "urn:ietf:params:xml:ns:xmpp-session"
)

// handleEvent dispatches one tokenizer event against the current state, per
// the §4.2 transition table. Every call runs on the actor loop's own
// goroutine (see loop/handleEvents in session.go), so state reads and
// writes here need no further synchronization.
func (s *Session) handleEvent(ev stream.Event) {
	switch ev.Kind {
	case stream.StreamOpen:
		s.onStreamOpen(ev)
	case stream.Auth:
		s.onAuth(ev)
	case stream.IQ:
		s.onIQ(ev)
	case stream.Presence:
		s.onPresence(ev)
	case stream.StreamClose:
		s.write(streamCloseElement)
		s.teardown(nil)
	case stream.Invalid:
		log.Warnf("session %s: %s", s.id, ev.Reason)
	case stream.StartTLS:
		// Handled synchronously on the reader goroutine before this event
		// ever reaches the actor mailbox; see readLoop in session.go.
	}
}

func (s *Session) onStreamOpen(ev stream.Event) {
	switch s.getState() {
	case Connect:
		if len(s.devclass) == 0 {
			s.devclass = extractDevclass(ev.To)
		}
		s.write(streamHeader())
		s.write(preAuthFeatures(s.isTLSUpgraded()))
	case Init:
		s.write(streamHeader())
		s.write(postAuthFeatures)
	default:
		log.Warnf("session %s: unexpected stream re-open in state %d", s.id, s.getState())
	}
}

// extractDevclass returns the leading label of a "{devclass}.ecorobot.net"
// stream-open target, or "" if to does not match that shape — the sole
// signal (spec §3) that the peer is a bot rather than a controller.
func extractDevclass(to string) string {
	const suffix = ".ecorobot.net"
	if !strings.HasSuffix(to, suffix) {
		return ""
	}
	devclass := strings.TrimSuffix(to, suffix)
	if len(devclass) == 0 || strings.ContainsAny(devclass, "@/") {
		return ""
	}
	return devclass
}

func (s *Session) onAuth(ev stream.Event) {
	if s.getState() != Connect {
		log.Warnf("session %s: unexpected <auth> in state %d", s.id, s.getState())
		return
	}
	if !strings.EqualFold(ev.Mechanism, auth.Mechanism) {
		s.write(saslInvalidMechanismElement())
		return
	}
	s.authenticator.Unconditional = len(s.devclass) > 0 || !s.cfg.UseAuth

	elem := xmpp.NewElementName("auth")
	elem.SetText(ev.Payload)
	if err := s.authenticator.ProcessElement(elem); err != nil {
		// Every failure path (malformed payload, rejected credentials, a
		// tripped credentials-store breaker) gets the same legacy reply —
		// spec §4.4's compatibility carve-out — and the session stays in
		// CONNECT so the peer may retry.
		log.Debugf("session %s: auth failed: %v", s.id, err)
		s.write(saslLegacyFailureElement)
		return
	}

	s.uid = s.authenticator.Username()
	s.resource = s.authenticator.Resource()
	if len(s.devclass) > 0 {
		s.kind = router.Bot
		if s.cfg.Store != nil {
			// "atom"/"eco-legacy" are literal, grounded on xmppserver.py's
			// own bot_add(self.uid, self.uid, self.devclass, "atom",
			// "eco-legacy") call — not the session's own resource/company.
			if err := s.cfg.Store.BotAdd(s.uid, s.uid, s.devclass, "atom", "eco-legacy"); err != nil {
				log.Error(err)
			}
		}
	} else {
		s.kind = router.Controller
		if s.cfg.Store != nil {
			if err := s.cfg.Store.ClientAdd(s.uid, "", s.resource); err != nil {
				log.Error(err)
			}
		}
	}

	s.write(saslSuccessElement)
	s.setState(Init)
}

func (s *Session) onIQ(ev stream.Event) {
	iq, err := xmpp.NewIQFromElement(ev.Element)
	if err != nil {
		log.Warnf("session %s: %v", s.id, err)
		return
	}
	switch s.getState() {
	case Init:
		if bind := iq.Elements().ChildNamespace("bind", bindNamespace); bind != nil {
			s.bindResource(iq, bind)
			return
		}
		log.Warnf("session %s: expected <bind> in state INIT", s.id)
	case Bind:
		if iq.Elements().ChildNamespace("session", sessionNamespace) != nil {
			s.write(sessionResultIQ(iq.ID()))
			s.setState(Ready)
			s.startPinging()
			return
		}
		log.Warnf("session %s: expected <session> in state BIND", s.id)
	case Ready:
		for _, reply := range s.cfg.Router.RouteIQ(iq, ev.Raw, s) {
			s.write(reply.String())
		}
	default:
		log.Warnf("session %s: unexpected <iq> in state %d", s.id, s.getState())
	}
}

// bindResource assigns this session's JID per spec §3's per-kind template
// and replies with the bind result, completing the INIT -> BIND transition.
func (s *Session) bindResource(iq *xmpp.IQ, bind xmpp.XElement) {
	if resourceElem := bind.Elements().Child("resource"); resourceElem != nil && len(resourceElem.Text()) > 0 {
		s.resource = resourceElem.Text()
	} else if len(s.resource) == 0 {
		s.resource = uuid.New()
	}

	switch s.kind {
	case router.Bot:
		s.jid = s.uid + "@" + s.devclass + ".ecorobot.net/atom"
	default:
		if len(s.resource) > 0 {
			s.jid = s.uid + "@" + ServerID + "/" + s.resource
		} else {
			s.jid = s.uid + "@" + ServerID
		}
	}

	s.write(bindResultIQ(iq.ID(), s.jid))
	s.setState(Bind)
}

func (s *Session) onPresence(ev stream.Event) {
	if s.getState() != Ready {
		log.Warnf("session %s: unexpected <presence> in state %d", s.id, s.getState())
		return
	}
	p, err := xmpp.NewPresenceFromElement(ev.Element)
	if err != nil {
		log.Warnf("session %s: %v", s.id, err)
		return
	}
	outcome := router.HandlePresence(s.jid, p, s.kind == router.Bot)
	if outcome.Reply != nil {
		s.write(outcome.Reply.String())
	}
	if outcome.DeviceInfoQuery != nil {
		s.write(outcome.DeviceInfoQuery.String())
	}
	if outcome.Disconnect {
		s.teardown(nil)
	}
}
