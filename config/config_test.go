/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.ListenAddress != "0.0.0.0:5223" {
		t.Fatalf("ListenAddress = %q, want %q", cfg.ListenAddress, "0.0.0.0:5223")
	}
	if !cfg.UseAuth {
		t.Fatal("UseAuth = false, want true")
	}
	if cfg.StorageDSN != "memory://" {
		t.Fatalf("StorageDSN = %q, want %q", cfg.StorageDSN, "memory://")
	}
	if cfg.MaxConnections != 1024 {
		t.Fatalf("MaxConnections = %d, want 1024", cfg.MaxConnections)
	}
}

func TestLoadOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bumperd.yaml")
	yaml := "listen_address: 127.0.0.1:5333\nuse_auth: false\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.ListenAddress != "127.0.0.1:5333" {
		t.Fatalf("ListenAddress = %q, want override value", cfg.ListenAddress)
	}
	if cfg.UseAuth {
		t.Fatal("UseAuth = true, want false after override")
	}
	// Fields absent from the file keep their Default() value.
	if cfg.StorageDSN != "memory://" {
		t.Fatalf("StorageDSN = %q, want default carried through", cfg.StorageDSN)
	}
	if cfg.MaxConnections != 1024 {
		t.Fatalf("MaxConnections = %d, want default carried through", cfg.MaxConnections)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() error = nil, want error for missing file")
	}
}

func TestConnectTimeoutDefault(t *testing.T) {
	if Default().ConnectTimeout != 30*time.Second {
		t.Fatalf("ConnectTimeout = %v, want 30s", Default().ConnectTimeout)
	}
}
