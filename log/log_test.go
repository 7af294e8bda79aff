/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLevelFiltersBySeverity(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(ErrorLevel)
	defer SetLevel(InfoLevel)

	Infof("should not appear")
	Errorf("should appear: %d", 42)

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("Infof wrote output below the configured level: %q", out)
	}
	if !strings.Contains(out, "should appear: 42") {
		t.Fatalf("Errorf output missing, got %q", out)
	}
}

func TestErrorNilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetLevel(DebugLevel)
	defer SetLevel(InfoLevel)

	Error(nil)
	if buf.Len() != 0 {
		t.Fatalf("Error(nil) wrote %q, want nothing", buf.String())
	}
}
