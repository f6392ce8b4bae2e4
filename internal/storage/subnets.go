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

// SubnetFilter selects subnet records by any combination of columns.
type SubnetFilter struct {
	ID    int64   `db:"id"`
	VPC   *string `db:"vpc"`
	Name  *string `db:"name"`
	CIDR  *string `db:"cidr"`
	Type  *string `db:"type"`
	Netns *string `db:"netns"`
}

func (storage *Storage) CreateSubnet(subnet types.Subnet) (int64, error) {
	if err := subnet.Validate(); err != nil {
		return -1, err
	}

	if subnet.Created == nil {
		now := xtime.Now()
		subnet.Created = &now
	}

	query := xstorage.InsertQuery("subnets", &subnet)
	zap.L().Debug("create subnet record", zap.Any("subnet", subnet), zap.String("query", query))

	res, err := storage.db.NamedExec(query, subnet)
	if err != nil {
		if isUniqueViolation(err) {
			return -1, xerror.EExists("subnet record already exists", err,
				zap.String("vpc", subnet.VPC), zap.String("name", subnet.Name))
		}
		return -1, xerror.EStorageError("can't insert subnet record", err, zap.Any("subnet", subnet))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return -1, xerror.EStorageError("can't get subnet id after insert", err, zap.Any("subnet", subnet))
	}

	return id, nil
}

func (storage *Storage) GetSubnet(vpc, name string) (types.Subnet, error) {
	row := storage.db.QueryRowx("SELECT * FROM subnets WHERE vpc = $1 AND name = $2", vpc, name)

	var subnet types.Subnet
	if err := row.StructScan(&subnet); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Subnet{}, xerror.EEntryNotFound("no such subnet", nil,
				zap.String("vpc", vpc), zap.String("name", name))
		}
		return types.Subnet{}, xerror.EStorageError("failed to scan subnet record", err,
			zap.String("vpc", vpc), zap.String("name", name))
	}

	return subnet, nil
}

func (storage *Storage) SearchSubnets(filter *SubnetFilter) ([]types.Subnet, error) {
	if filter == nil {
		// tolerate nil
		filter = &SubnetFilter{}
	}

	query := xstorage.SelectQuery("subnets", filter)
	zap.L().Debug("search subnets", zap.Any("filter", filter), zap.String("query", query))

	rows, err := storage.db.NamedQuery(query+" ORDER BY id", filter)
	if err != nil {
		return nil, xerror.EStorageError("can't lookup subnets", err, zap.Any("filter", filter))
	}
	defer rows.Close()

	var subnets []types.Subnet
	for rows.Next() {
		var s types.Subnet
		if err := rows.StructScan(&s); err != nil {
			zap.L().Error("can't scan subnet record", zap.Error(err))
			continue
		}
		subnets = append(subnets, s)
	}

	return subnets, nil
}

func (storage *Storage) DeleteSubnet(vpc, name string) error {
	zap.L().Debug("delete subnet record", zap.String("vpc", vpc), zap.String("name", name))

	filter := &SubnetFilter{VPC: &vpc, Name: &name}
	query, err := xstorage.DeleteQuery("subnets", filter)
	if err != nil {
		return xerror.EStorageError("can't build subnet delete query", err,
			zap.String("vpc", vpc), zap.String("name", name))
	}

	if _, err := storage.db.NamedExec(query, filter); err != nil {
		return xerror.EStorageError("failed to delete subnet record", err,
			zap.String("vpc", vpc), zap.String("name", name))
	}

	return nil
}

// DeleteSubnetsOfVPC removes every subnet record belonging to the VPC,
// used for residual cleanup after a cascade delete.
func (storage *Storage) DeleteSubnetsOfVPC(vpc string) error {
	filter := &SubnetFilter{VPC: &vpc}
	query, err := xstorage.DeleteQuery("subnets", filter)
	if err != nil {
		return xerror.EStorageError("can't build subnet delete query", err, zap.String("vpc", vpc))
	}

	if _, err := storage.db.NamedExec(query, filter); err != nil {
		return xerror.EStorageError("failed to delete subnet records of vpc", err, zap.String("vpc", vpc))
	}

	return nil
}
