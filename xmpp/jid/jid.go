/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package jid implements the XMPP jabber identifier, as described in RFC 6122.
package jid

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// MatchingOptions represents a matching jid mask.
type MatchingOptions int8

const (
	// MatchesNode indicates that left and right operand has same node value.
	MatchesNode = MatchingOptions(1)

	// MatchesDomain indicates that left and right operand has same domain value.
	MatchesDomain = MatchingOptions(2)

	// MatchesResource indicates that left and right operand has same resource value.
	MatchesResource = MatchingOptions(4)

	// MatchesBare indicates that left and right operand has same node and domain value.
	MatchesBare = MatchesNode | MatchesDomain
)

// JID represents an XMPP address (node@domain/resource).
//
// Unlike the RFC, no Nodeprep/Resourceprep stringprep profiles are applied —
// the spec this server implements explicitly excludes internationalized JIDs.
type JID struct {
	node     string
	domain   string
	resource string
}

// New constructs a JID given a user, a domain and a resource.
// It returns an error if domain is empty; node and resource are not
// validated.
func New(node, domain, resource string, isServer bool) (*JID, error) {
	if len(domain) == 0 {
		return nil, fmt.Errorf("jid: domain must not be empty")
	}
	return &JID{node: node, domain: domain, resource: resource}, nil
}

// NewWithString constructs a JID from its string representation.
func NewWithString(str string, isServer bool) (*JID, error) {
	if len(str) == 0 {
		return New("", "", "", isServer)
	}
	var node, domain, resource string

	atIndex := strings.Index(str, "@")
	slashIndex := strings.Index(str, "/")

	switch {
	case slashIndex > 0 && (atIndex == -1 || atIndex > slashIndex):
		domain = str[0:slashIndex]
		resource = str[slashIndex+1:]

	case atIndex > 0:
		node = str[0:atIndex]
		if slashIndex > 0 {
			domain = str[atIndex+1 : slashIndex]
			resource = str[slashIndex+1:]
		} else {
			domain = str[atIndex+1:]
		}

	default:
		domain = str
	}
	return New(node, domain, resource, isServer)
}

// Node returns the node, or empty part, of the JID.
func (j *JID) Node() string { return j.node }

// Domain returns the domain part of the JID.
func (j *JID) Domain() string { return j.domain }

// Resource returns the resource, or empty part, of the JID.
func (j *JID) Resource() string { return j.resource }

// ToBareJID returns the JID equivalent of the bare JID, which is the JID with
// the resource removed.
func (j *JID) ToBareJID() *JID {
	if len(j.node) == 0 {
		return &JID{node: "", domain: j.domain, resource: ""}
	}
	return &JID{node: j.node, domain: j.domain, resource: ""}
}

// IsServer returns true if the JID has no node part.
func (j *JID) IsServer() bool { return len(j.node) == 0 }

// IsBare returns true if the JID has no resource part.
func (j *JID) IsBare() bool { return len(j.node) > 0 && len(j.resource) == 0 }

// IsFullWithUser returns true if the JID has both a node and a resource part.
func (j *JID) IsFullWithUser() bool { return len(j.node) > 0 && len(j.resource) > 0 }

// Matches tells whether or not j2 matches j according to the given matching options.
func (j *JID) Matches(j2 *JID, options MatchingOptions) bool {
	if options&MatchesNode > 0 && j.node != j2.node {
		return false
	}
	if options&MatchesDomain > 0 && j.domain != j2.domain {
		return false
	}
	if options&MatchesResource > 0 && j.resource != j2.resource {
		return false
	}
	return true
}

// String returns a string representation of the JID.
func (j *JID) String() string {
	var buf strings.Builder
	if len(j.node) > 0 {
		buf.WriteString(j.node)
		buf.WriteByte('@')
	}
	buf.WriteString(j.domain)
	if len(j.resource) > 0 {
		buf.WriteByte('/')
		buf.WriteString(j.resource)
	}
	return buf.String()
}

// ContainsUID reports whether uid is a case-insensitive substring of to,
// the loose matching rule the routing layer depends on over the wire.
//
// Unicode-aware case folding (golang.org/x/text/cases) is used instead of a
// byte-wise strings.ToLower so that non-ASCII uids fold correctly; every uid
// observed in practice is ASCII, so this is an invisible robustness margin,
// not a behavior change.
func ContainsUID(uid, to string) bool {
	if len(uid) == 0 {
		return false
	}
	fold := cases.Fold()
	return strings.Contains(fold.String(to), fold.String(uid))
}
