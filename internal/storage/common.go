// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package storage

import (
	"embed"
	"strings"

	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xstorage"
	"github.com/jmoiron/sqlx"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed db/migrations
var migrations embed.FS

// Storage is the record store: the single source of truth for what
// the orchestrator believes exists. Records are immutable; the only
// mutations are insert and delete.
type Storage struct {
	db *sqlx.DB
}

func New(path string) (*Storage, error) {
	db, err := xstorage.NewSqlite3(path, migrations, "db/migrations")
	if err != nil {
		return nil, err
	}

	return &Storage{db: db}, nil
}

func (storage *Storage) Shutdown() error {
	err := storage.db.Close()
	if err != nil {
		return xerror.EStorageError("failed close database", err)
	}

	storage.db = nil
	return nil
}

func (storage *Storage) Running() bool {
	return storage.db != nil
}

// isUniqueViolation matches the sqlite constraint error for duplicate
// create attempts, so callers see EExists rather than a raw driver error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
