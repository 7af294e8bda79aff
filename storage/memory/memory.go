/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package memory provides an in-process, map-backed storage.Store, used as
// bumperd's default backend and by every package's tests.
package memory

import (
	"sync"

	"github.com/mm060488/bumper/storage"
)

// Store is a concurrency-safe, in-memory storage.Store.
type Store struct {
	mu      sync.RWMutex
	bots    map[string]*storage.Bot
	clients map[string]*storage.Client
	codes   map[string]string
}

// New returns an empty Store. Authcodes may be seeded with SeedAuthcode for
// tests that exercise the CheckAuthcode path.
func New() *Store {
	return &Store{
		bots:    make(map[string]*storage.Bot),
		clients: make(map[string]*storage.Client),
		codes:   make(map[string]string),
	}
}

// SeedAuthcode registers the authcode a given controller uid is expected to
// present during SASL PLAIN authentication.
func (s *Store) SeedAuthcode(uid, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[uid] = code
}

// BotAdd implements storage.Store.
func (s *Store) BotAdd(uid, did, devclass, resource, company string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bots[uid] = &storage.Bot{DID: did, DevClass: devclass, Resource: resource, Company: company}
	return nil
}

// BotGet implements storage.Store.
func (s *Store) BotGet(uid string) (*storage.Bot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bots[uid]
	return b, ok, nil
}

// BotSetXMPP implements storage.Store.
func (s *Store) BotSetXMPP(did string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bots {
		if b.DID == did {
			b.XMPPOnline = online
		}
	}
	return nil
}

// ClientAdd implements storage.Store.
func (s *Store) ClientAdd(userID, realm, resource string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[resource] = &storage.Client{UserID: userID, Realm: realm, Resource: resource}
	return nil
}

// ClientGet implements storage.Store.
func (s *Store) ClientGet(resource string) (*storage.Client, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[resource]
	return c, ok, nil
}

// ClientSetXMPP implements storage.Store.
func (s *Store) ClientSetXMPP(resource string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[resource]; ok {
		c.XMPPOnline = online
	}
	return nil
}

// CheckAuthcode implements storage.Store.
func (s *Store) CheckAuthcode(uid, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	want, ok := s.codes[uid]
	return ok && want == code, nil
}
