/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package router

import "github.com/mm060488/bumper/xmpp"

// PresenceOutcome is what the Session should do in response to an inbound
// <presence>, per spec §4.3's "Presence handling" rules. Presence is never
// forwarded through the Registry — these are stateless, self-directed
// replies — so this lives as a pure function rather than a Registry
// method.
type PresenceOutcome struct {
	// Reply is the dummy presence to write back to the originator, or nil.
	Reply *xmpp.Presence
	// DeviceInfoQuery, when non-nil, is a GetDeviceInfo control query to
	// send to the originating bot.
	DeviceInfoQuery *xmpp.IQ
	// Disconnect is true when the Session must tear down (a controller's
	// "unavailable" presence).
	Disconnect bool
}

// HandlePresence implements spec §4.3's presence table. selfJID is the
// originating peer's own assigned JID (the Reply's "to").
func HandlePresence(selfJID string, presence *xmpp.Presence, isBot bool) PresenceOutcome {
	if isBot && presence.Elements().Child("status") != nil {
		return PresenceOutcome{
			Reply:           dummyPresence(selfJID),
			DeviceInfoQuery: getDeviceInfoIQ(selfJID),
		}
	}
	if !isBot && presence.IsUnavailable() {
		return PresenceOutcome{Disconnect: true}
	}
	return PresenceOutcome{Reply: dummyPresence(selfJID)}
}

func dummyPresence(selfJID string) *xmpp.Presence {
	p := xmpp.NewPresence("")
	p.SetTo(selfJID)
	p.SetText("dummy")
	return p
}

func getDeviceInfoIQ(botJID string) *xmpp.IQ {
	iq := xmpp.NewIQType("14", xmpp.SetType)
	iq.SetFrom(ServerID)
	iq.SetTo(botJID)

	query := xmpp.NewElementNamespace("query", ctlNamespace)
	ctl := xmpp.NewElementName("ctl")
	ctl.SetAttribute("td", "GetDeviceInfo")
	query.AppendElement(ctl)
	iq.AppendElement(query)
	return iq
}
