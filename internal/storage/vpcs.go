// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package storage

import (
	"database/sql"
	"errors"

	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xstorage"
	"github.com/hostvpc/vpcctl/pkg/xtime"
	"go.uber.org/zap"
)

// vpcFilter mirrors types.VPC with nilable columns so a partially
// filled value works as a search filter.
type vpcFilter struct {
	ID     int64   `db:"id"`
	Name   *string `db:"name"`
	CIDR   *string `db:"cidr"`
	Router *string `db:"router"`
}

func (storage *Storage) CreateVPC(vpc types.VPC) (int64, error) {
	if err := vpc.Validate(); err != nil {
		return -1, err
	}

	if vpc.Created == nil {
		now := xtime.Now()
		vpc.Created = &now
	}

	query := xstorage.InsertQuery("vpcs", &vpc)
	zap.L().Debug("create vpc record", zap.Any("vpc", vpc), zap.String("query", query))

	res, err := storage.db.NamedExec(query, vpc)
	if err != nil {
		if isUniqueViolation(err) {
			return -1, xerror.EExists("vpc record already exists", err, zap.String("name", vpc.Name))
		}
		return -1, xerror.EStorageError("can't insert vpc record", err, zap.Any("vpc", vpc))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return -1, xerror.EStorageError("can't get vpc id after insert", err, zap.Any("vpc", vpc))
	}

	return id, nil
}

func (storage *Storage) GetVPC(name string) (types.VPC, error) {
	row := storage.db.QueryRowx("SELECT * FROM vpcs WHERE name = $1", name)

	var vpc types.VPC
	if err := row.StructScan(&vpc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.VPC{}, xerror.EEntryNotFound("no such vpc", nil, zap.String("name", name))
		}
		return types.VPC{}, xerror.EStorageError("failed to scan vpc record", err, zap.String("name", name))
	}

	return vpc, nil
}

// ListVPCs returns all VPC records in creation order. The kernel is
// not cross-checked: this is what the orchestrator believes exists.
func (storage *Storage) ListVPCs() ([]types.VPC, error) {
	query := xstorage.SelectQuery("vpcs", &vpcFilter{})

	rows, err := storage.db.Queryx(query + " ORDER BY id")
	if err != nil {
		return nil, xerror.EStorageError("can't list vpcs", err)
	}
	defer rows.Close()

	var vpcs []types.VPC
	for rows.Next() {
		var v types.VPC
		if err := rows.StructScan(&v); err != nil {
			zap.L().Error("can't scan vpc record", zap.Error(err))
			continue
		}
		vpcs = append(vpcs, v)
	}

	return vpcs, nil
}

func (storage *Storage) DeleteVPC(name string) error {
	zap.L().Debug("delete vpc record", zap.String("name", name))

	filter := &vpcFilter{Name: &name}
	query, err := xstorage.DeleteQuery("vpcs", filter)
	if err != nil {
		return xerror.EStorageError("can't build vpc delete query", err, zap.String("name", name))
	}

	if _, err := storage.db.NamedExec(query, filter); err != nil {
		return xerror.EStorageError("failed to delete vpc record", err, zap.String("name", name))
	}

	return nil
}
