/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mm060488/bumper/xmpp"
)

type fakeVerifier struct {
	ok  bool
	err error
}

func (f *fakeVerifier) CheckAuthcode(uid, code string) (bool, error) { return f.ok, f.err }

func authElement(payload string) xmpp.XElement {
	e := xmpp.NewElementNamespace("auth", "urn:ietf:params:xml:ns:xmpp-sasl")
	e.SetAttribute("mechanism", Mechanism)
	e.SetText(payload)
	return e
}

func TestPlainAuthenticatedOnValidCredentials(t *testing.T) {
	p := NewPlain(&fakeVerifier{ok: true})
	err := p.ProcessElement(authElement(b64("\x00alice\x00secret")))
	require.NoError(t, err)
	require.True(t, p.Authenticated())
	require.Equal(t, "alice", p.Username())
}

func TestPlainRejectedOnBadAuthcode(t *testing.T) {
	p := NewPlain(&fakeVerifier{ok: false})
	err := p.ProcessElement(authElement(b64("\x00alice\x00wrong")))
	require.Equal(t, ErrSASLNotAuthorized, err)
	require.False(t, p.Authenticated())
}

func TestPlainUnconditionalForBots(t *testing.T) {
	p := NewPlain(&fakeVerifier{ok: false})
	p.Unconditional = true
	err := p.ProcessElement(authElement(b64("\x00SN123\x00anything")))
	require.NoError(t, err)
	require.True(t, p.Authenticated())
	require.Equal(t, "SN123", p.Username())
}

func TestPlainResetClearsState(t *testing.T) {
	p := NewPlain(&fakeVerifier{ok: true})
	_ = p.ProcessElement(authElement(b64("\x00alice\x00secret")))
	p.Reset()
	require.False(t, p.Authenticated())
	require.Equal(t, "", p.Username())
}
