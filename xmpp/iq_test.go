/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "testing"

func TestNewIQFromElementValid(t *testing.T) {
	e := NewElementName("iq")
	e.SetID("1")
	e.SetType(GetType)
	e.AppendElement(NewElementName("ping"))

	iq, err := NewIQFromElement(e)
	if err != nil {
		t.Fatalf("NewIQFromElement() error = %v", err)
	}
	if !iq.IsGet() {
		t.Fatal("IsGet() = false, want true")
	}
}

func TestNewIQFromElementRejectsWrongName(t *testing.T) {
	e := NewElementName("presence")
	if _, err := NewIQFromElement(e); err == nil {
		t.Fatal("NewIQFromElement() err = nil, want error for wrong element name")
	}
}

func TestNewIQFromElementRequiresID(t *testing.T) {
	e := NewElementName("iq")
	e.SetType(GetType)
	e.AppendElement(NewElementName("ping"))
	if _, err := NewIQFromElement(e); err == nil {
		t.Fatal("NewIQFromElement() err = nil, want error for missing id")
	}
}

func TestNewIQFromElementRequiresSingleChildOnGetSet(t *testing.T) {
	e := NewElementName("iq")
	e.SetID("1")
	e.SetType(SetType)
	if _, err := NewIQFromElement(e); err == nil {
		t.Fatal("NewIQFromElement() err = nil, want error for childless set IQ")
	}
	e.AppendElement(NewElementName("bind"))
	e.AppendElement(NewElementName("session"))
	if _, err := NewIQFromElement(e); err == nil {
		t.Fatal("NewIQFromElement() err = nil, want error for multi-child set IQ")
	}
}

func TestIQResultIQSwapsToAndFrom(t *testing.T) {
	iq := NewIQType("42", GetType)
	iq.SetFrom("controller@bumper.local/ctl")
	iq.SetTo("bot@devclass.ecorobot.net/atom")

	result := iq.ResultIQ()
	if got := result.ID(); got != "42" {
		t.Fatalf("ID() = %q, want %q", got, "42")
	}
	if !result.IsResult() {
		t.Fatal("IsResult() = false, want true")
	}
	if got := result.To(); got != "controller@bumper.local/ctl" {
		t.Fatalf("To() = %q, want original From()", got)
	}
	if got := result.From(); got != "bot@devclass.ecorobot.net/atom" {
		t.Fatalf("From() = %q, want original To()", got)
	}
}
