/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Command bumperd runs the XMPP control-plane server described by §6 of the
// design: a single TCP listener brokering traffic between bots and
// controllers, backed by a configurable credentials store.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mm060488/bumper/config"
	"github.com/mm060488/bumper/listener"
	"github.com/mm060488/bumper/log"
	"github.com/mm060488/bumper/router"
	"github.com/mm060488/bumper/storage"
	"github.com/mm060488/bumper/storage/memory"
	"github.com/mm060488/bumper/storage/sql"
)

func main() {
	configPath := flag.String("config", "", "path to bumperd's YAML configuration file")
	flag.Parse()

	cfg := config.Default()
	if len(*configPath) > 0 {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Errorf("bumperd: loading config: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	store, err := openStore(cfg.StorageDSN)
	if err != nil {
		log.Errorf("bumperd: opening store: %v", err)
		os.Exit(1)
	}

	tlsConfig, err := loadTLSConfig(cfg.ServerCert, cfg.ServerKey, cfg.CACert)
	if err != nil {
		log.Errorf("bumperd: loading TLS material: %v", err)
		os.Exit(1)
	}

	reg := router.New(store, cfg.UseAuth)

	ln, err := listener.New(listener.Config{
		Address:        cfg.ListenAddress,
		TLSConfig:      tlsConfig,
		Store:          store,
		Router:         reg,
		UseAuth:        cfg.UseAuth,
		MaxConnections: cfg.MaxConnections,
	})
	if err != nil {
		log.Errorf("bumperd: binding %s: %v", cfg.ListenAddress, err)
		os.Exit(1)
	}
	log.Infof("bumperd: listening on %s", ln.Addr())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ln.Serve(ctx); err != nil {
		log.Errorf("bumperd: %v", err)
		os.Exit(1)
	}
}

// openStore selects a storage.Store backend by the DSN's scheme (spec §6):
// "memory://" for the in-process default, anything else handed to the SQL
// backend, which itself dispatches further by scheme (sqlite/mysql/postgres).
func openStore(dsn string) (storage.Store, error) {
	if dsn == "" || strings.HasPrefix(dsn, "memory://") {
		return memory.New(), nil
	}
	return sql.Open(dsn)
}

func loadTLSConfig(certFile, keyFile, caFile string) (*tls.Config, error) {
	if len(certFile) == 0 || len(keyFile) == 0 {
		return nil, nil
	}
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	tlsCfg := &tls.Config{Certificates: []tls.Certificate{cert}}
	if len(caFile) > 0 {
		caBytes, err := os.ReadFile(caFile)
		if err != nil {
			return nil, err
		}
		pool := x509.NewCertPool()
		pool.AppendCertsFromPEM(caBytes)
		tlsCfg.ClientCAs = pool
	}
	return tlsCfg, nil
}
