/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package session

import "fmt"

// The root <stream:stream> element is never closed (spec §4.1), so these
// are built as raw strings rather than through xmpp.Element — the element
// model's ToXML always balances its own tags.
const (
	streamNS      = `xmlns:stream="http://etherx.jabber.org/streams"`
	jabberClNS    = `xmlns="jabber:client"`
	tlsNamespace  = "urn:ietf:params:xml:ns:xmpp-tls"
	saslNamespace = "urn:ietf:params:xml:ns:xmpp-sasl"
)

func streamHeader() string {
	return fmt.Sprintf(`<stream:stream %s %s version="1.0" id="1" from="%s">`, streamNS, jabberClNS, ServerID)
}

func preAuthFeatures(secured bool) string {
	if !secured {
		return `<stream:features><starttls xmlns="urn:ietf:params:xml:ns:xmpp-tls"><required/></starttls><mechanisms xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><mechanism>PLAIN</mechanism></mechanisms></stream:features>`
	}
	return `<stream:features><mechanisms xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><mechanism>PLAIN</mechanism></mechanisms></stream:features>`
}

const postAuthFeatures = `<stream:features><bind xmlns="urn:ietf:params:xml:ns:xmpp-bind"/><session xmlns="urn:ietf:params:xml:ns:xmpp-session"/></stream:features>`

const proceedElement = `<proceed xmlns="urn:ietf:params:xml:ns:xmpp-tls"/>`

const saslSuccessElement = `<success xmlns="urn:ietf:params:xml:ns:xmpp-sasl"/>`

// saslLegacyFailureElement is the bare <response/> the legacy client
// expects on an authentication failure, in place of a proper <failure/>
// (spec §4.4's explicit compatibility carve-out).
const saslLegacyFailureElement = `<response xmlns="urn:ietf:params:xml:ns:xmpp-sasl"/>`

func saslInvalidMechanismElement() string {
	return `<failure xmlns="urn:ietf:params:xml:ns:xmpp-sasl"><invalid-mechanism/></failure>`
}

const streamCloseElement = `</stream:stream>`

func bindResultIQ(id, jid string) string {
	return fmt.Sprintf(`<iq type="result" id="%s"><bind xmlns="urn:ietf:params:xml:ns:xmpp-bind"><jid>%s</jid></bind></iq>`, id, jid)
}

func sessionResultIQ(id string) string {
	return fmt.Sprintf(`<iq type="result" id="%s"/>`, id)
}

func pingIQ(to string) string {
	return fmt.Sprintf(`<iq from="%s" to="%s" id="s2c1" type="get"><ping xmlns="urn:xmpp:ping"/></iq>`, ServerID, to)
}
