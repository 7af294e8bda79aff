/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package storage declares the credentials-store interface the Session and
// auth packages consume (see spec §6, "Credentials store"). bumper itself
// never depends on a concrete backend — only on this interface — so the
// backend is freely swappable between storage/memory (used by default and
// by tests) and storage/sql (a real, driver-agnostic SQL-backed store).
package storage

// Bot is the subset of stored bot state the core needs back from the store.
type Bot struct {
	DID       string
	DevClass  string
	Resource  string
	Company   string
	XMPPOnline bool
}

// Client is the subset of stored controller state the core needs back.
type Client struct {
	UserID   string
	Realm    string
	Resource string
	XMPPOnline bool
}

// Store is the external credentials-store collaborator described in spec
// §6. Every method may block on disk or network I/O; callers on the
// Session's SASL/BIND/DISCONNECT paths must treat it as a suspension
// point (see spec §5) and, in the sql backend, a circuit-breaker boundary
// (see SPEC_FULL.md §4.4a).
type Store interface {
	// BotAdd idempotently upserts a bot identity.
	BotAdd(uid, did, devclass, resource, company string) error
	// BotGet looks up a bot by its serial number (uid). ok is false if no
	// such bot is registered.
	BotGet(uid string) (bot *Bot, ok bool, err error)
	// BotSetXMPP flips the bot's "currently online" flag.
	BotSetXMPP(did string, online bool) error

	// ClientAdd idempotently upserts a controller identity.
	ClientAdd(userID, realm, resource string) error
	// ClientGet looks up a controller by its bound resource. ok is false
	// if no such client is registered.
	ClientGet(resource string) (client *Client, ok bool, err error)
	// ClientSetXMPP flips the controller's "currently online" flag.
	ClientSetXMPP(resource string, online bool) error

	// CheckAuthcode reports whether code is the controller uid's current
	// authcode.
	CheckAuthcode(uid, code string) (bool, error)
}
