/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "testing"

func TestPresenceDefaultsToAvailable(t *testing.T) {
	p := NewPresence("")
	if !p.IsAvailable() {
		t.Fatal("IsAvailable() = false, want true for empty type")
	}
	if p.IsUnavailable() {
		t.Fatal("IsUnavailable() = true, want false for empty type")
	}
}

func TestPresenceUnavailable(t *testing.T) {
	p := NewPresence(UnavailableType)
	if p.IsAvailable() {
		t.Fatal("IsAvailable() = true, want false for unavailable type")
	}
	if !p.IsUnavailable() {
		t.Fatal("IsUnavailable() = false, want true")
	}
}

func TestNewPresenceFromElementRejectsWrongName(t *testing.T) {
	e := NewElementName("iq")
	if _, err := NewPresenceFromElement(e); err == nil {
		t.Fatal("NewPresenceFromElement() err = nil, want error for wrong element name")
	}
}

func TestNewPresenceFromElementCopiesAttributes(t *testing.T) {
	e := NewElementName("presence")
	e.SetFrom("bot@devclass.ecorobot.net/atom")
	e.SetType(SubscribeType)

	p, err := NewPresenceFromElement(e)
	if err != nil {
		t.Fatalf("NewPresenceFromElement() error = %v", err)
	}
	if got := p.From(); got != "bot@devclass.ecorobot.net/atom" {
		t.Fatalf("From() = %q, want copied value", got)
	}
	if p.Type() != SubscribeType {
		t.Fatalf("Type() = %q, want %q", p.Type(), SubscribeType)
	}
}
