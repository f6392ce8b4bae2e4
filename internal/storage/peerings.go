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

func (storage *Storage) CreatePeering(peering types.Peering) (int64, error) {
	if err := peering.Validate(); err != nil {
		return -1, err
	}

	if peering.Created == nil {
		now := xtime.Now()
		peering.Created = &now
	}

	query := xstorage.InsertQuery("peerings", &peering)
	zap.L().Debug("create peering record", zap.Any("peering", peering), zap.String("query", query))

	res, err := storage.db.NamedExec(query, peering)
	if err != nil {
		return -1, xerror.EStorageError("can't insert peering record", err, zap.Any("peering", peering))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return -1, xerror.EStorageError("can't get peering id after insert", err, zap.Any("peering", peering))
	}

	return id, nil
}

// FindPeering looks up the peering for an unordered pair.
func (storage *Storage) FindPeering(a, b string) (types.Peering, error) {
	row := storage.db.QueryRowx(
		`SELECT * FROM peerings WHERE (vpc1 = $1 AND vpc2 = $2) OR (vpc1 = $2 AND vpc2 = $1)`, a, b)

	var p types.Peering
	if err := row.StructScan(&p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Peering{}, xerror.WEntryNotFound("peering", "no such peering", nil,
				zap.String("vpc1", a), zap.String("vpc2", b))
		}
		return types.Peering{}, xerror.EStorageError("failed to scan peering record", err,
			zap.String("vpc1", a), zap.String("vpc2", b))
	}

	return p, nil
}

// ListPeerings returns all peering records in creation order.
func (storage *Storage) ListPeerings() ([]types.Peering, error) {
	rows, err := storage.db.Queryx(`SELECT * FROM peerings ORDER BY id`)
	if err != nil {
		return nil, xerror.EStorageError("can't list peerings", err)
	}
	defer rows.Close()

	var peerings []types.Peering
	for rows.Next() {
		var p types.Peering
		if err := rows.StructScan(&p); err != nil {
			zap.L().Error("can't scan peering record", zap.Error(err))
			continue
		}
		peerings = append(peerings, p)
	}

	return peerings, nil
}

// PeeringsOf returns the peerings referencing vpc on either side.
func (storage *Storage) PeeringsOf(vpc string) ([]types.Peering, error) {
	rows, err := storage.db.Queryx(`SELECT * FROM peerings WHERE vpc1 = $1 OR vpc2 = $1 ORDER BY id`, vpc)
	if err != nil {
		return nil, xerror.EStorageError("can't lookup peerings of vpc", err, zap.String("vpc", vpc))
	}
	defer rows.Close()

	var peerings []types.Peering
	for rows.Next() {
		var p types.Peering
		if err := rows.StructScan(&p); err != nil {
			zap.L().Error("can't scan peering record", zap.Error(err))
			continue
		}
		peerings = append(peerings, p)
	}

	return peerings, nil
}

// DeletePeering removes the record matching either ordering of the
// pair. The OR across orderings has no column-filter form, so this one
// stays on literal SQL.
func (storage *Storage) DeletePeering(a, b string) error {
	zap.L().Debug("delete peering record", zap.String("vpc1", a), zap.String("vpc2", b))

	_, err := storage.db.Exec(
		`DELETE FROM peerings WHERE (vpc1 = ? AND vpc2 = ?) OR (vpc1 = ? AND vpc2 = ?)`, a, b, b, a)
	if err != nil {
		return xerror.EStorageError("failed to delete peering record", err,
			zap.String("vpc1", a), zap.String("vpc2", b))
	}

	return nil
}
