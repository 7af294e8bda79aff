/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package auth

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestDecodePlainRFC4616(t *testing.T) {
	creds, err := DecodePlain(b64("\x00alice\x00secret"))
	require.NoError(t, err)
	require.Equal(t, "alice", creds.UID)
	require.Equal(t, "", creds.Resource)
	require.Equal(t, "secret", creds.Authcode)
}

func TestDecodePlainLegacyNUL(t *testing.T) {
	creds, err := DecodePlain(b64("\x00alice\x00phone1\x00secret"))
	require.NoError(t, err)
	require.Equal(t, "alice", creds.UID)
	require.Equal(t, "phone1", creds.Resource)
	require.Equal(t, "secret", creds.Authcode)
}

func TestDecodePlainLegacySlash(t *testing.T) {
	creds, err := DecodePlain(b64("alice/phone1/secret"))
	require.NoError(t, err)
	require.Equal(t, "alice", creds.UID)
	require.Equal(t, "phone1", creds.Resource)
	require.Equal(t, "secret", creds.Authcode)
}

func TestDecodePlainMalformed(t *testing.T) {
	_, err := DecodePlain(b64("\x00onlyonefield"))
	require.ErrorIs(t, err, ErrMalformedPayload)

	_, err = DecodePlain("not-base64!!")
	require.Error(t, err)
}
