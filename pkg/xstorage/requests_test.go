// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package xstorage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID      int64   `db:"id"`
	Name    *string `db:"name"`
	CIDR    *string `db:"cidr"`
	private string
}

func strptr(s string) *string { return &s }

func TestSelectQuery(t *testing.T) {
	assert.Equal(t, "SELECT * FROM vpcs", SelectQuery("vpcs", &record{}))

	q := SelectQuery("vpcs", &record{Name: strptr("alpha")})
	assert.Equal(t, "SELECT * FROM vpcs WHERE name=:name", q)

	q = SelectQuery("vpcs", &record{Name: strptr("alpha"), CIDR: strptr("10.0.0.0/16")})
	assert.Equal(t, "SELECT * FROM vpcs WHERE name=:name AND cidr=:cidr", q)
}

func TestInsertQuery(t *testing.T) {
	// zero ID is omitted so sqlite assigns it
	q := InsertQuery("vpcs", &record{Name: strptr("alpha")})
	assert.Equal(t, "INSERT INTO vpcs (name, cidr) VALUES (:name, :cidr)", q)

	q = InsertQuery("vpcs", &record{ID: 7, Name: strptr("alpha")})
	assert.Equal(t, "INSERT INTO vpcs (id, name, cidr) VALUES (:id, :name, :cidr)", q)
}

func TestDeleteQuery(t *testing.T) {
	_, err := DeleteQuery("vpcs", &record{})
	require.Error(t, err)

	q, err := DeleteQuery("vpcs", &record{Name: strptr("alpha")})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM vpcs WHERE name=:name", q)
}
