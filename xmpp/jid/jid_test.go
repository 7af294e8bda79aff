/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package jid

import "testing"

func TestNewWithStringFullJID(t *testing.T) {
	j, err := NewWithString("bot@devclass.ecorobot.net/atom", false)
	if err != nil {
		t.Fatalf("NewWithString() error = %v", err)
	}
	if got := j.Node(); got != "bot" {
		t.Fatalf("Node() = %q, want %q", got, "bot")
	}
	if got := j.Domain(); got != "devclass.ecorobot.net" {
		t.Fatalf("Domain() = %q, want %q", got, "devclass.ecorobot.net")
	}
	if got := j.Resource(); got != "atom" {
		t.Fatalf("Resource() = %q, want %q", got, "atom")
	}
	if !j.IsFullWithUser() {
		t.Fatal("IsFullWithUser() = false, want true")
	}
}

func TestNewWithStringBareJID(t *testing.T) {
	j, err := NewWithString("alice@ecouser.net", false)
	if err != nil {
		t.Fatalf("NewWithString() error = %v", err)
	}
	if !j.IsBare() {
		t.Fatal("IsBare() = false, want true")
	}
	if got := j.ToBareJID().String(); got != "alice@ecouser.net" {
		t.Fatalf("ToBareJID().String() = %q, want %q", got, "alice@ecouser.net")
	}
}

func TestNewWithStringDomainOnly(t *testing.T) {
	j, err := NewWithString("bumper.local", true)
	if err != nil {
		t.Fatalf("NewWithString() error = %v", err)
	}
	if !j.IsServer() {
		t.Fatal("IsServer() = false, want true")
	}
}

func TestMatches(t *testing.T) {
	a, _ := NewWithString("bot@devclass.ecorobot.net/atom", false)
	b, _ := NewWithString("bot@devclass.ecorobot.net/other", false)
	if !a.Matches(b, MatchesBare) {
		t.Fatal("Matches(MatchesBare) = false, want true for same node+domain")
	}
	if a.Matches(b, MatchesResource) {
		t.Fatal("Matches(MatchesResource) = true, want false for different resources")
	}
}

func TestContainsUIDCaseInsensitive(t *testing.T) {
	if !ContainsUID("sn123", "SN123@xyz.ecorobot.net/atom") {
		t.Fatal("ContainsUID() = false, want true for case-differing match")
	}
	if ContainsUID("", "anything") {
		t.Fatal("ContainsUID() = true, want false for empty uid")
	}
	if ContainsUID("missing", "SN123@xyz.ecorobot.net/atom") {
		t.Fatal("ContainsUID() = true, want false when uid isn't a substring")
	}
}
