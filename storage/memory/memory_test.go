/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package memory

import "testing"

func TestBotAddAndGet(t *testing.T) {
	s := New()
	if err := s.BotAdd("SN123", "did-1", "xyz", "atom", "acme"); err != nil {
		t.Fatalf("BotAdd() error = %v", err)
	}
	bot, ok, err := s.BotGet("SN123")
	if err != nil {
		t.Fatalf("BotGet() error = %v", err)
	}
	if !ok {
		t.Fatal("BotGet() ok = false, want true")
	}
	if bot.DID != "did-1" || bot.DevClass != "xyz" || bot.Company != "acme" {
		t.Fatalf("BotGet() = %+v, want matching fields", bot)
	}
}

func TestBotGetMissing(t *testing.T) {
	s := New()
	_, ok, err := s.BotGet("nonexistent")
	if err != nil {
		t.Fatalf("BotGet() error = %v", err)
	}
	if ok {
		t.Fatal("BotGet() ok = true, want false for unregistered uid")
	}
}

func TestBotSetXMPPFlipsOnlineByDID(t *testing.T) {
	s := New()
	s.BotAdd("SN123", "did-1", "xyz", "atom", "acme")
	if err := s.BotSetXMPP("did-1", true); err != nil {
		t.Fatalf("BotSetXMPP() error = %v", err)
	}
	bot, _, _ := s.BotGet("SN123")
	if !bot.XMPPOnline {
		t.Fatal("XMPPOnline = false, want true after BotSetXMPP(true)")
	}
}

func TestClientAddAndGet(t *testing.T) {
	s := New()
	if err := s.ClientAdd("alice", "realm1", "ctl"); err != nil {
		t.Fatalf("ClientAdd() error = %v", err)
	}
	c, ok, err := s.ClientGet("ctl")
	if err != nil {
		t.Fatalf("ClientGet() error = %v", err)
	}
	if !ok || c.UserID != "alice" || c.Realm != "realm1" {
		t.Fatalf("ClientGet() = %+v, ok=%v, want matching alice/realm1", c, ok)
	}
}

func TestClientSetXMPP(t *testing.T) {
	s := New()
	s.ClientAdd("alice", "realm1", "ctl")
	if err := s.ClientSetXMPP("ctl", true); err != nil {
		t.Fatalf("ClientSetXMPP() error = %v", err)
	}
	c, _, _ := s.ClientGet("ctl")
	if !c.XMPPOnline {
		t.Fatal("XMPPOnline = false, want true after ClientSetXMPP(true)")
	}
}

func TestCheckAuthcode(t *testing.T) {
	s := New()
	s.SeedAuthcode("alice", "secretcode")

	ok, err := s.CheckAuthcode("alice", "secretcode")
	if err != nil {
		t.Fatalf("CheckAuthcode() error = %v", err)
	}
	if !ok {
		t.Fatal("CheckAuthcode() = false, want true for matching code")
	}

	ok, err = s.CheckAuthcode("alice", "wrongcode")
	if err != nil {
		t.Fatalf("CheckAuthcode() error = %v", err)
	}
	if ok {
		t.Fatal("CheckAuthcode() = true, want false for mismatched code")
	}

	ok, err = s.CheckAuthcode("nobody", "anything")
	if err != nil {
		t.Fatalf("CheckAuthcode() error = %v", err)
	}
	if ok {
		t.Fatal("CheckAuthcode() = true, want false for unseeded uid")
	}
}
