// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package types

import (
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xnet"
	"github.com/hostvpc/vpcctl/pkg/xtime"
)

const (
	SubnetTypePublic  = "public"
	SubnetTypePrivate = "private"
)

// Subnet is one isolated routing domain (a network namespace)
// cabled to its VPC's router. Type is immutable after creation.
type Subnet struct {
	ID      int64       `db:"id" json:"-"`
	VPC     string      `db:"vpc" json:"vpc"`
	Name    string      `db:"name" json:"name"`
	CIDR    string      `db:"cidr" json:"cidr"`
	Type    string      `db:"type" json:"type"`
	Netns   string      `db:"netns" json:"netns"`
	Created *xtime.Time `db:"created" json:"created,omitempty"`
}

func ValidSubnetType(t string) bool {
	return t == SubnetTypePublic || t == SubnetTypePrivate
}

func (s *Subnet) Validate(omit ...string) error {
	if s == nil {
		return xerror.EInvalidArgument("empty subnet record", nil)
	}

	if !in("VPC", omit) && !validName(s.VPC) {
		return xerror.EInvalidField("invalid vpc name", "vpc", nil)
	}

	if !in("Name", omit) && !validName(s.Name) {
		return xerror.EInvalidField("invalid subnet name", "name", nil)
	}

	if !in("CIDR", omit) && !xnet.IsIPv4CIDR(s.CIDR) {
		return xerror.EInvalidField("invalid subnet cidr", "cidr", nil)
	}

	if !in("Type", omit) && !ValidSubnetType(s.Type) {
		return xerror.EInvalidField("subnet type must be public or private", "type", nil)
	}

	if !in("Netns", omit) && len(s.Netns) == 0 {
		return xerror.EInvalidField("empty routing domain identifier", "netns", nil)
	}

	return nil
}

func (s *Subnet) Public() bool {
	return s.Type == SubnetTypePublic
}
