// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xtime"
)

// Peering is a direct cable between two VPC routers. The pair is
// unordered: (A,B) and (B,A) name the same peering. CIDRs are kept
// for display only.
type Peering struct {
	ID        int64       `db:"id" json:"-"`
	VPC1      string      `db:"vpc1" json:"vpc1"`
	VPC2      string      `db:"vpc2" json:"vpc2"`
	Endpoint1 string      `db:"endpoint1" json:"endpoint1"`
	Endpoint2 string      `db:"endpoint2" json:"endpoint2"`
	CIDR1     string      `db:"cidr1" json:"cidr1,omitempty"`
	CIDR2     string      `db:"cidr2" json:"cidr2,omitempty"`
	Created   *xtime.Time `db:"created" json:"created,omitempty"`
}

func (p *Peering) Validate(omit ...string) error {
	if p == nil {
		return xerror.EInvalidArgument("empty peering record", nil)
	}

	if !in("VPC1", omit) && !validName(p.VPC1) {
		return xerror.EInvalidField("invalid vpc name", "vpc1", nil)
	}

	if !in("VPC2", omit) && !validName(p.VPC2) {
		return xerror.EInvalidField("invalid vpc name", "vpc2", nil)
	}

	if p.VPC1 == p.VPC2 {
		return xerror.EInvalidArgument("a vpc cannot peer with itself", nil)
	}

	if !in("Endpoint1", omit) && len(p.Endpoint1) == 0 {
		return xerror.EInvalidField("empty endpoint identifier", "endpoint1", nil)
	}

	if !in("Endpoint2", omit) && len(p.Endpoint2) == 0 {
		return xerror.EInvalidField("empty endpoint identifier", "endpoint2", nil)
	}

	return nil
}

// Matches tells whether this record connects the given pair, in either order.
func (p *Peering) Matches(a, b string) bool {
	return (p.VPC1 == a && p.VPC2 == b) || (p.VPC1 == b && p.VPC2 == a)
}

// References tells whether this record involves the given VPC.
func (p *Peering) References(vpc string) bool {
	return p.VPC1 == vpc || p.VPC2 == vpc
}
