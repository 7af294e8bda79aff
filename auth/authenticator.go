/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package auth

import "github.com/mm060488/bumper/xmpp"

// SASLError wraps a failure element to be folded into a <failure/> or, per
// spec §4.4's legacy-compatibility carve-out, an empty <response/>.
type SASLError struct {
	element xmpp.XElement
}

// Element returns the child element to nest inside the SASL reply.
func (e *SASLError) Element() xmpp.XElement { return e.element }

// Error implements error.
func (e *SASLError) Error() string { return "auth: " + e.element.Name() }

func newSASLError(condition string) *SASLError {
	return &SASLError{element: xmpp.NewElementName(condition)}
}

// ErrSASLNotAuthorized is returned when the credentials store rejects the
// presented (uid, authcode) pair.
var ErrSASLNotAuthorized = newSASLError("not-authorized")

// ErrSASLIncorrectEncoding is returned when the payload cannot be parsed.
var ErrSASLIncorrectEncoding = newSASLError("incorrect-encoding")

// ErrSASLTemporaryAuthFailure is returned when the credentials store call
// itself fails (I/O error, tripped circuit breaker).
var ErrSASLTemporaryAuthFailure = newSASLError("temporary-auth-failure")

// Verifier is the credentials-store slice the Plain authenticator needs —
// a narrow read of storage.Store so this package does not import it.
type Verifier interface {
	CheckAuthcode(uid, code string) (bool, error)
}

// Authenticator is the single-mechanism surface the Session drives,
// mirroring github.com/ortuman/jackal's auth.Authenticator (Mechanism,
// Username, Authenticated, ProcessElement, Reset).
type Authenticator interface {
	Mechanism() string
	Username() string
	Resource() string
	Authenticated() bool
	ProcessElement(elem xmpp.XElement) error
	Reset()
}

// Plain implements SASL PLAIN (RFC 4616) plus the legacy dual forms
// described in spec §4.4. A single <auth> element carries the full
// payload — unlike DIGEST-MD5/SCRAM there is no multi-step challenge, so
// ProcessElement is called exactly once per authentication attempt.
type Plain struct {
	verifier Verifier

	// Unconditional makes ProcessElement accept any well-formed payload
	// without consulting verifier — set by the caller when the session's
	// devclass is non-empty (bot stream) or when the server is configured
	// with use_auth=false (spec §4.4).
	Unconditional bool

	username      string
	resource      string
	authenticated bool
}

// NewPlain returns a Plain authenticator backed by verifier.
func NewPlain(verifier Verifier) *Plain {
	return &Plain{verifier: verifier}
}

// Mechanism implements Authenticator.
func (p *Plain) Mechanism() string { return Mechanism }

// Username implements Authenticator.
func (p *Plain) Username() string { return p.username }

// Resource implements Authenticator.
func (p *Plain) Resource() string { return p.resource }

// Authenticated implements Authenticator.
func (p *Plain) Authenticated() bool { return p.authenticated }

// Reset implements Authenticator.
func (p *Plain) Reset() {
	p.username = ""
	p.resource = ""
	p.authenticated = false
}

// ProcessElement decodes elem's text as a SASL PLAIN payload and decides
// success or failure per spec §4.4. Credentials are returned on success
// (via Username/Resource) so the caller can register the peer; on the
// legacy-compatibility failure path ProcessElement still returns a
// *SASLError — it is the Session's job to choose between <failure/> and
// the bare <response/> legacy reply.
func (p *Plain) ProcessElement(elem xmpp.XElement) error {
	creds, err := DecodePlain(elem.Text())
	if err != nil {
		return ErrSASLIncorrectEncoding
	}
	p.username = creds.UID
	p.resource = creds.Resource

	if p.Unconditional {
		p.authenticated = true
		return nil
	}

	ok, err := p.verifier.CheckAuthcode(creds.UID, creds.Authcode)
	if err != nil {
		return ErrSASLTemporaryAuthFailure
	}
	if !ok {
		return ErrSASLNotAuthorized
	}
	p.authenticated = true
	return nil
}
