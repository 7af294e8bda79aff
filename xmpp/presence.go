/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "fmt"

// Presence 'type' attribute values.
const (
	AvailableType    = "available"
	UnavailableType  = "unavailable"
	SubscribeType    = "subscribe"
	SubscribedType   = "subscribed"
	UnsubscribeType  = "unsubscribe"
	UnsubscribedType = "unsubscribed"
)

// Presence type represents a <presence> element.
type Presence struct {
	Element
}

// NewPresence creates and returns a new Presence element.
func NewPresence(presenceType string) *Presence {
	p := &Presence{}
	p.SetName("presence")
	p.SetType(presenceType)
	return p
}

// NewPresenceFromElement creates a Presence object from XElement.
func NewPresenceFromElement(e XElement) (*Presence, error) {
	if e.Name() != "presence" {
		return nil, fmt.Errorf("xmpp: wrong Presence element name: %s", e.Name())
	}
	p := &Presence{}
	p.copyFrom(e)
	return p, nil
}

// IsAvailable returns true if this is an 'available' type Presence.
func (p *Presence) IsAvailable() bool { return p.Type() == AvailableType || p.Type() == "" }

// IsUnavailable returns true if this is an 'unavailable' type Presence.
func (p *Presence) IsUnavailable() bool { return p.Type() == UnavailableType }
