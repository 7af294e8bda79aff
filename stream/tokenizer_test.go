/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package stream

import "testing"

func TestFeedStreamOpenExtractsToAttribute(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<stream:stream xmlns:stream="http://etherx.jabber.org/streams" xmlns="jabber:client" to="xyz.ecorobot.net">`))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != StreamOpen {
		t.Fatalf("Kind = %v, want StreamOpen", events[0].Kind)
	}
	if events[0].To != "xyz.ecorobot.net" {
		t.Fatalf("To = %q, want %q", events[0].To, "xyz.ecorobot.net")
	}
	if !events[0].IsJabberClNS {
		t.Fatal("IsJabberClNS = false, want true")
	}
}

func TestFeedSplitAcrossMultipleChunks(t *testing.T) {
	tok := New()
	if events := tok.Feed([]byte(`<iq id="1" type="get"><pi`)); len(events) != 0 {
		t.Fatalf("partial feed produced %d events, want 0", len(events))
	}
	events := tok.Feed([]byte(`ng/></iq>`))
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Kind != IQ {
		t.Fatalf("Kind = %v, want IQ", events[0].Kind)
	}
	if events[0].Element.ID() != "1" {
		t.Fatalf("Element.ID() = %q, want %q", events[0].Element.ID(), "1")
	}
}

func TestFeedPreservesRawBytesForIQ(t *testing.T) {
	tok := New()
	raw := `<iq id="2" type="set"><query xmlns="com:ctl" errno='103'/></iq>`
	events := tok.Feed([]byte(raw))
	if len(events) != 1 || events[0].Kind != IQ {
		t.Fatalf("expected a single IQ event, got %+v", events)
	}
	if events[0].Raw != raw {
		t.Fatalf("Raw = %q, want %q", events[0].Raw, raw)
	}
}

func TestFeedAuthExtractsMechanismAndPayload(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<auth xmlns="urn:ietf:params:xml:ns:xmpp-sasl" mechanism="PLAIN">QUJD</auth>`))
	if len(events) != 1 || events[0].Kind != Auth {
		t.Fatalf("expected a single Auth event, got %+v", events)
	}
	if events[0].Mechanism != "PLAIN" {
		t.Fatalf("Mechanism = %q, want %q", events[0].Mechanism, "PLAIN")
	}
	if events[0].Payload != "QUJD" {
		t.Fatalf("Payload = %q, want %q", events[0].Payload, "QUJD")
	}
}

func TestFeedStartTLSAndStreamClose(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<starttls xmlns="urn:ietf:params:xml:ns:xmpp-tls"/></stream:stream>`))
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Kind != StartTLS {
		t.Fatalf("events[0].Kind = %v, want StartTLS", events[0].Kind)
	}
	if events[1].Kind != StreamClose {
		t.Fatalf("events[1].Kind = %v, want StreamClose", events[1].Kind)
	}
}

func TestFeedPresenceElement(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<presence type="unavailable"/>`))
	if len(events) != 1 || events[0].Kind != Presence {
		t.Fatalf("expected a single Presence event, got %+v", events)
	}
	if events[0].Element.Type() != "unavailable" {
		t.Fatalf("Element.Type() = %q, want %q", events[0].Element.Type(), "unavailable")
	}
}

func TestFeedUnsupportedTopLevelElementIsInvalid(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<message type="chat"/>`))
	if len(events) != 1 || events[0].Kind != Invalid {
		t.Fatalf("expected a single Invalid event, got %+v", events)
	}
}

func TestFeedMultipleElementsInOneChunk(t *testing.T) {
	tok := New()
	events := tok.Feed([]byte(`<iq id="a" type="get"><ping/></iq><iq id="b" type="get"><ping/></iq>`))
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Element.ID() != "a" || events[1].Element.ID() != "b" {
		t.Fatalf("unexpected ids: %q, %q", events[0].Element.ID(), events[1].Element.ID())
	}
}
