// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xnet"
	"github.com/hostvpc/vpcctl/pkg/xtime"
)

// VPC is one isolated network: a virtual router (bridge) plus
// everything attached to it.
type VPC struct {
	ID      int64       `db:"id" json:"-"`
	Name    string      `db:"name" json:"name"`
	CIDR    string      `db:"cidr" json:"cidr"`
	Router  string      `db:"router" json:"router"`
	Created *xtime.Time `db:"created" json:"created,omitempty"`
}

func (v *VPC) Validate(omit ...string) error {
	if v == nil {
		return xerror.EInvalidArgument("empty vpc record", nil)
	}

	if !in("Name", omit) && !validName(v.Name) {
		return xerror.EInvalidField("invalid vpc name", "name", nil)
	}

	if !in("CIDR", omit) && !xnet.IsIPv4CIDR(v.CIDR) {
		return xerror.EInvalidField("invalid vpc cidr", "cidr", nil)
	}

	if !in("Router", omit) && len(v.Router) == 0 {
		return xerror.EInvalidField("empty router identifier", "router", nil)
	}

	return nil
}
