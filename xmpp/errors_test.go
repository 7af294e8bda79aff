/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package xmpp

import "testing"

func TestErrorElementFromIQ(t *testing.T) {
	iq := NewIQType("7", GetType)
	iq.SetFrom("controller@bumper.local/ctl")
	iq.SetTo("bumper.local")

	errIQ := ErrorElementFromIQ(iq, ErrFeatureNotImplemented)
	if !errIQ.IsError() {
		t.Fatal("IsError() = false, want true")
	}
	if got := errIQ.To(); got != "controller@bumper.local/ctl" {
		t.Fatalf("To() = %q, want original From()", got)
	}
	errEl := errIQ.Elements().Child("error")
	if errEl == nil {
		t.Fatal("error child element missing")
	}
	if got := errEl.Attributes().Get("code"); got != "501" {
		t.Fatalf("error code = %q, want 501", got)
	}
	if cond := errEl.Elements().Child("feature-not-implemented"); cond == nil {
		t.Fatal("feature-not-implemented condition element missing")
	}
}
