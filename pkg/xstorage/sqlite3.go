// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xstorage

import (
	"embed"

	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/jmoiron/sqlx"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3"
)

// NewSqlite3 opens (or creates) the database at path and brings the
// schema up to date from the embedded migrations rooted at root.
func NewSqlite3(path string, migrations embed.FS, root string) (*sqlx.DB, error) {
	sqlDB, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, xerror.EStorageError("can't open database", err, zap.String("path", path))
	}

	migrationSource := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrations,
		Root:       root,
	}

	n, err := migrate.Exec(sqlDB.DB, "sqlite3", migrationSource, migrate.Up)
	if err != nil {
		return nil, xerror.EStorageError("can't perform migration", err)
	}
	if n > 0 {
		zap.L().Info("database migrated", zap.String("path", path), zap.Int("applied", n))
	}

	return sqlDB, nil
}
