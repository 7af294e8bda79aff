/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package xmpp implements a minimal XMPP stanza tree: elements, attributes,
// and the handful of well-known stanza shapes (iq, presence) this server
// actually routes.
package xmpp

import "strings"

// XElement represents an XML node.
type XElement interface {
	Name() string
	Namespace() string
	Attributes() AttributeSet
	Elements() ElementSet
	Text() string

	ID() string
	To() string
	From() string
	Type() string

	IsStanza() bool

	ToXML(includeClosing bool) string
	String() string
}

// Attribute represents an XML node attribute (label=value).
type Attribute struct {
	Label string
	Value string
}

// AttributeSet represents a read-only set of attributes.
type AttributeSet interface {
	Get(label string) string
	Count() int
}

type attributeSet []Attribute

func (as attributeSet) Get(label string) string {
	for _, attr := range as {
		if attr.Label == label {
			return attr.Value
		}
	}
	return ""
}

func (as attributeSet) Count() int { return len(as) }

// ElementSet represents a read-only set of child elements.
type ElementSet interface {
	Child(name string) XElement
	ChildNamespace(name, namespace string) XElement
	Children(name string) []XElement
	All() []XElement
	Count() int
}

type elementSet []XElement

func (es elementSet) Child(name string) XElement {
	for _, e := range es {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

func (es elementSet) ChildNamespace(name, namespace string) XElement {
	for _, e := range es {
		if e.Name() == name && e.Namespace() == namespace {
			return e
		}
	}
	return nil
}

func (es elementSet) Children(name string) []XElement {
	var ret []XElement
	for _, e := range es {
		if e.Name() == name {
			ret = append(ret, e)
		}
	}
	return ret
}

func (es elementSet) All() []XElement { return es }

func (es elementSet) Count() int { return len(es) }

// Element represents a generic XML node, and is the common embedding for
// every concrete stanza type (IQ, Presence).
type Element struct {
	name       string
	namespace  string
	text       string
	attributes attributeSet
	elements   elementSet
}

// NewElementName creates an Element instance with a given name.
func NewElementName(name string) *Element {
	return &Element{name: name}
}

// NewElementNamespace creates an Element instance with a given name and namespace.
func NewElementNamespace(name, namespace string) *Element {
	e := &Element{name: name}
	e.SetNamespace(namespace)
	return e
}

// Name returns XML node name.
func (e *Element) Name() string { return e.name }

// Namespace returns XML node namespace.
func (e *Element) Namespace() string { return e.attributes.Get("xmlns") }

// Attributes returns XML node attribute set.
func (e *Element) Attributes() AttributeSet { return e.attributes }

// Elements returns all child XML node elements.
func (e *Element) Elements() ElementSet { return e.elements }

// Text returns XML node text value.
func (e *Element) Text() string { return e.text }

// ID returns 'id' node attribute.
func (e *Element) ID() string { return e.attributes.Get("id") }

// To returns 'to' node attribute.
func (e *Element) To() string { return e.attributes.Get("to") }

// From returns 'from' node attribute.
func (e *Element) From() string { return e.attributes.Get("from") }

// Type returns 'type' node attribute.
func (e *Element) Type() string { return e.attributes.Get("type") }

// IsStanza returns true if the element is one of the three core stanza kinds.
func (e *Element) IsStanza() bool {
	switch e.name {
	case "iq", "presence", "message":
		return true
	}
	return false
}

// SetName sets XML node name value.
func (e *Element) SetName(name string) { e.name = name }

// SetNamespace sets 'xmlns' node attribute.
func (e *Element) SetNamespace(namespace string) {
	e.SetAttribute("xmlns", namespace)
}

// SetText sets XML node text value.
func (e *Element) SetText(text string) { e.text = text }

// SetID sets 'id' node attribute.
func (e *Element) SetID(identifier string) { e.SetAttribute("id", identifier) }

// SetTo sets 'to' node attribute.
func (e *Element) SetTo(to string) { e.SetAttribute("to", to) }

// SetFrom sets 'from' node attribute.
func (e *Element) SetFrom(from string) { e.SetAttribute("from", from) }

// SetType sets 'type' node attribute.
func (e *Element) SetType(tp string) { e.SetAttribute("type", tp) }

// SetAttribute sets a generic node attribute, replacing any previous value.
func (e *Element) SetAttribute(label, value string) {
	for i, attr := range e.attributes {
		if attr.Label == label {
			e.attributes[i].Value = value
			return
		}
	}
	e.attributes = append(e.attributes, Attribute{Label: label, Value: value})
}

// RemoveAttribute removes a node attribute, if present.
func (e *Element) RemoveAttribute(label string) {
	for i, attr := range e.attributes {
		if attr.Label == label {
			e.attributes = append(e.attributes[:i], e.attributes[i+1:]...)
			return
		}
	}
}

// AppendElement appends a new child element.
func (e *Element) AppendElement(elem XElement) {
	e.elements = append(e.elements, elem)
}

// AppendElements appends an array of child elements.
func (e *Element) AppendElements(elems []XElement) {
	e.elements = append(e.elements, elems...)
}

// copyFrom copies every field (name, attributes, text, children) from src.
func (e *Element) copyFrom(src XElement) {
	e.name = src.Name()
	e.text = src.Text()
	if attrs := src.Attributes(); attrs != nil {
		if as, ok := attrs.(attributeSet); ok {
			e.attributes = append(attributeSet{}, as...)
		}
	}
	if els := src.Elements(); els != nil {
		e.elements = append(elementSet{}, els.All()...)
	}
}

// String returns a canonical, self-closing-aware string representation,
// built through AttributeSet/ElementSet — never through post-hoc string
// substitution, so it never emits a stray xmlns:ns0 namespace prefix.
func (e *Element) String() string {
	return e.ToXML(true)
}

// ToXML serializes the element tree to a string.
func (e *Element) ToXML(includeClosing bool) string {
	var b strings.Builder
	writeXML(&b, e, includeClosing)
	return b.String()
}

func writeXML(b *strings.Builder, e XElement, includeClosing bool) {
	b.WriteByte('<')
	b.WriteString(e.Name())
	writeAttributes(b, e)
	text := e.Text()
	children := e.Elements().All()
	if len(children) == 0 && len(text) == 0 {
		if includeClosing {
			b.WriteString("/>")
		} else {
			b.WriteByte('>')
		}
		return
	}
	b.WriteByte('>')
	b.WriteString(escapeText(text))
	for _, child := range children {
		writeXML(b, child, true)
	}
	if includeClosing {
		b.WriteString("</")
		b.WriteString(e.Name())
		b.WriteByte('>')
	}
}

func writeAttributes(b *strings.Builder, e XElement) {
	as, ok := e.Attributes().(attributeSet)
	if !ok {
		return
	}
	for _, attr := range as {
		b.WriteByte(' ')
		b.WriteString(attr.Label)
		b.WriteString(`="`)
		b.WriteString(escapeAttr(attr.Value))
		b.WriteByte('"')
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttr(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
