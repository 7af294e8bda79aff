/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package auth implements the single SASL mechanism this server offers:
// PLAIN, in both its RFC 4616 form and a legacy slash/NUL-delimited form
// seen from older clients in the field. The shape of the package — an
// Authenticator interface with Mechanism/Username/Authenticated/Reset,
// fed one <auth>/<response> element at a time — follows
// github.com/ortuman/jackal's own auth.NewPlain(s)/auth.Authenticator
// pattern (see c2s/in.go's initializeAuthenticators/continueAuthentication).
package auth

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
)

// Mechanism name as advertised in <mechanisms>.
const Mechanism = "PLAIN"

// ErrMalformedPayload is returned when the base64 payload cannot be decoded
// or does not contain the expected NUL-delimited or slash-delimited fields.
var ErrMalformedPayload = errors.New("auth: malformed SASL PLAIN payload")

// Credentials holds the parsed content of a SASL PLAIN payload, covering
// both accepted authzid conventions (spec §4.4):
//
//	\0{authcid}\0{password}                       (RFC 4616)
//	\0{authcid}\0{resource}\0{password}            (legacy NUL form)
//	{authcid}/{resource}/{password}                (legacy slash form)
type Credentials struct {
	// UID is the authcid — the identity being authenticated as.
	UID string
	// Resource is the client-supplied resource, present only in the legacy
	// three-field forms; recorded by the caller as "clientresource".
	Resource string
	// Authcode is the trailing password/authcode field.
	Authcode string
}

// DecodePlain base64-decodes payload and parses it per the two accepted
// authzid conventions, preferring the NUL-delimited forms (the ones an
// RFC-conformant SASL client actually sends) and falling back to the
// slash-delimited legacy form only when no NUL bytes are present at all.
func DecodePlain(payload string) (*Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "auth: base64 decode")
	}
	s := string(raw)

	if strings.Contains(s, "\x00") {
		fields := strings.Split(s, "\x00")
		// A leading empty field is the authzid slot RFC 4616 reserves
		// before authcid; drop it when present.
		if len(fields) > 0 && fields[0] == "" {
			fields = fields[1:]
		}
		switch len(fields) {
		case 2:
			return &Credentials{UID: fields[0], Authcode: fields[1]}, nil
		case 3:
			return &Credentials{UID: fields[0], Resource: fields[1], Authcode: fields[2]}, nil
		default:
			return nil, ErrMalformedPayload
		}
	}

	fields := strings.Split(s, "/")
	if len(fields) != 3 {
		return nil, ErrMalformedPayload
	}
	return &Credentials{UID: fields[0], Resource: fields[1], Authcode: fields[2]}, nil
}
