/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package stream implements the Stream Tokenizer: it turns a raw,
// append-only byte stream from one TCP peer into a sequence of logical
// XMPP stanza events, tolerating the protocol's central quirk — the
// root <stream:stream> element is opened once and never closed until the
// session ends, so the connection as a whole is never well-formed XML.
//
// The approach mirrors _examples/original_source/bumper/xmppserver.py's
// parse_data: every unconsumed chunk is wrapped in a synthetic root and
// fed to a streaming decoder; a decoder that runs out of bytes mid-element
// is the ordinary, recoverable "not enough data yet" signal, and a lone
// `</stream:stream>` is recognized out of band before any XML decoding is
// attempted at all.
package stream

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"

	"github.com/mm060488/bumper/xmpp"
)

// EventKind identifies the kind of logical element the tokenizer produced.
type EventKind int

// Event kinds, one per row of the Stream Tokenizer contract table.
const (
	StreamOpen EventKind = iota
	StartTLS
	Auth
	IQ
	Presence
	StreamClose
	Invalid
)

// Event is one logical element surfaced by the tokenizer, in arrival order.
type Event struct {
	Kind EventKind

	// StreamOpen
	To            string
	IsJabberClNS  bool

	// Auth
	Mechanism string
	Payload   string

	// IQ / Presence
	Element xmpp.XElement
	Raw     string // preserved raw bytes of the <iq> element, see §4.1.

	// Invalid
	RawInvalid string
	Reason     string
}

const wrapperPrefix = `<bumper-frame xmlns:stream="http://etherx.jabber.org/streams">`

var (
	streamOpenRE  = regexp.MustCompile(`(?s)^\s*<stream:stream\b[^>]*>`)
	streamCloseRE = regexp.MustCompile(`(?s)^\s*</stream:stream>`)
	toAttrRE      = regexp.MustCompile(`\bto=["']([^"']*)["']`)
)

// Tokenizer accumulates bytes from one connection and yields Events.
type Tokenizer struct {
	buf []byte
}

// New returns an empty Tokenizer.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Feed appends newly-read bytes and returns every Event that can be
// extracted from the accumulated buffer. Unconsumed trailing bytes (an
// element still arriving) are retained for the next call.
func (t *Tokenizer) Feed(data []byte) []Event {
	t.buf = append(t.buf, data...)

	var events []Event
	for {
		t.buf = trimLeadingSpace(t.buf)
		if len(t.buf) == 0 {
			break
		}
		if loc := streamOpenRE.FindIndex(t.buf); loc != nil && loc[0] == 0 {
			tag := string(t.buf[:loc[1]])
			events = append(events, Event{
				Kind:         StreamOpen,
				To:           extractTo(tag),
				IsJabberClNS: bytes.Contains(t.buf[:loc[1]], []byte("jabber:client")),
			})
			t.buf = t.buf[loc[1]:]
			continue
		}
		if loc := streamCloseRE.FindIndex(t.buf); loc != nil && loc[0] == 0 {
			events = append(events, Event{Kind: StreamClose})
			t.buf = t.buf[loc[1]:]
			continue
		}

		elem, raw, consumed, err := decodeOneElement(t.buf)
		if err == errIncomplete {
			break // wait for more bytes; buffer retained as-is
		}
		if err != nil {
			events = append(events, Event{Kind: Invalid, RawInvalid: string(t.buf), Reason: err.Error()})
			t.buf = nil
			break
		}
		events = append(events, elementEvent(elem, raw))
		t.buf = t.buf[consumed:]
	}
	return events
}

func elementEvent(elem *xmpp.Element, raw []byte) Event {
	switch elem.Name() {
	case "starttls":
		return Event{Kind: StartTLS}
	case "auth":
		return Event{Kind: Auth, Mechanism: elem.Attributes().Get("mechanism"), Payload: elem.Text()}
	case "iq":
		return Event{Kind: IQ, Element: elem, Raw: string(raw)}
	case "presence":
		return Event{Kind: Presence, Element: elem}
	default:
		return Event{Kind: Invalid, RawInvalid: string(raw), Reason: fmt.Sprintf("unsupported top-level element: %s", elem.Name())}
	}
}

func extractTo(tag string) string {
	m := toAttrRE.FindStringSubmatch(tag)
	if m == nil {
		return ""
	}
	return m[1]
}

func trimLeadingSpace(b []byte) []byte {
	i := 0
	for i < len(b) {
		switch b[i] {
		case ' ', '\t', '\r', '\n':
			i++
			continue
		}
		break
	}
	return b[i:]
}

var errIncomplete = fmt.Errorf("stream: incomplete element")

// decodeOneElement decodes exactly one well-formed top-level element (e.g.
// <starttls/>, <auth>...</auth>, <iq>...</iq>, <presence>...</presence>)
// from the front of buf. It returns errIncomplete when buf does not yet
// contain a complete element — the ordinary signal to wait for more bytes —
// and a non-nil, non-errIncomplete error for genuinely malformed input.
func decodeOneElement(buf []byte) (elem *xmpp.Element, raw []byte, consumed int, err error) {
	wrapped := make([]byte, 0, len(wrapperPrefix)+len(buf))
	wrapped = append(wrapped, wrapperPrefix...)
	wrapped = append(wrapped, buf...)

	dec := xml.NewDecoder(bytes.NewReader(wrapped))

	if _, err := dec.Token(); err != nil { // wrapper <bumper-frame ...> start tag
		return nil, nil, 0, asIncomplete(err)
	}
	prevOffset := dec.InputOffset()

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, 0, asIncomplete(err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			if len(bytes.TrimSpace(t)) != 0 {
				return nil, nil, 0, fmt.Errorf("unexpected character data at top level: %q", string(t))
			}
			prevOffset = dec.InputOffset()
		case xml.StartElement:
			built, err := buildElementTree(dec, t)
			if err != nil {
				return nil, nil, 0, asIncomplete(err)
			}
			endOffset := dec.InputOffset()
			startInBuf := prevOffset - int64(len(wrapperPrefix))
			endInBuf := endOffset - int64(len(wrapperPrefix))
			return built, buf[startInBuf:endInBuf], int(endInBuf), nil
		default:
			return nil, nil, 0, fmt.Errorf("unexpected top-level token: %T", tok)
		}
	}
}

func asIncomplete(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return errIncomplete
	}
	// encoding/xml reports input that ends inside an open element as a
	// SyntaxError rather than io.ErrUnexpectedEOF.
	if se, ok := err.(*xml.SyntaxError); ok && se.Msg == "unexpected EOF" {
		return errIncomplete
	}
	return err
}

// buildElementTree reads tokens until the EndElement matching start is
// found, recursively assembling the element subtree.
func buildElementTree(dec *xml.Decoder, start xml.StartElement) (*xmpp.Element, error) {
	el := xmpp.NewElementName(start.Name.Local)
	for _, attr := range start.Attr {
		label := attr.Name.Local
		switch {
		case attr.Name.Space == "xmlns":
			label = "xmlns:" + attr.Name.Local
		case attr.Name.Local == "xmlns":
			label = "xmlns"
		}
		el.SetAttribute(label, attr.Value)
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			el.SetText(el.Text() + string(t))
		case xml.StartElement:
			child, err := buildElementTree(dec, t)
			if err != nil {
				return nil, err
			}
			el.AppendElement(child)
		case xml.EndElement:
			return el, nil
		}
	}
}
