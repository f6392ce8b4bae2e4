// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package storage

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hostvpc/vpcctl/internal/types"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/hostvpc/vpcctl/pkg/xtime"
	"go.uber.org/zap"
)

// Legacy state file: one record per line, colon-delimited, first field
// is the record-kind tag. Kept as an interchange format for external
// consumers of the previous flat-file store:
//
//	VPC:<name>:<cidr>:<router-id>:<unix-timestamp>
//	SUBNET:<vpc-name>:<subnet-name>:<cidr>:<public|private>:<domain-id>:<unix-timestamp>
//	PEERING:<vpc1>:<vpc2>:<endpoint1>:<endpoint2>:<unix-timestamp>
const (
	tagVPC     = "VPC"
	tagSubnet  = "SUBNET"
	tagPeering = "PEERING"
)

// Export writes every record in the legacy line format, VPCs first,
// then subnets, then peerings, each in creation order.
func (storage *Storage) Export(w io.Writer) error {
	vpcs, err := storage.ListVPCs()
	if err != nil {
		return err
	}
	for _, v := range vpcs {
		if _, err := fmt.Fprintf(w, "%s:%s:%s:%s:%d\n",
			tagVPC, v.Name, v.CIDR, v.Router, v.Created.Unix()); err != nil {
			return xerror.EInternalError("failed to write state line", err)
		}
	}

	subnets, err := storage.SearchSubnets(nil)
	if err != nil {
		return err
	}
	for _, s := range subnets {
		if _, err := fmt.Fprintf(w, "%s:%s:%s:%s:%s:%s:%d\n",
			tagSubnet, s.VPC, s.Name, s.CIDR, s.Type, s.Netns, s.Created.Unix()); err != nil {
			return xerror.EInternalError("failed to write state line", err)
		}
	}

	peerings, err := storage.ListPeerings()
	if err != nil {
		return err
	}
	for _, p := range peerings {
		if _, err := fmt.Fprintf(w, "%s:%s:%s:%s:%s:%d\n",
			tagPeering, p.VPC1, p.VPC2, p.Endpoint1, p.Endpoint2, p.Created.Unix()); err != nil {
			return xerror.EInternalError("failed to write state line", err)
		}
	}

	return nil
}

// Import reads legacy state lines and inserts the records they carry.
// Malformed lines and unknown tags are skipped with a warning; the
// number of imported records is returned.
func (storage *Storage) Import(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)

	imported := 0
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}

		if err := storage.importLine(line); err != nil {
			zap.L().Warn("skipping state line", zap.Int("line", lineno), zap.Error(err))
			continue
		}
		imported++
	}

	if err := scanner.Err(); err != nil {
		return imported, xerror.EInternalError("failed to read state file", err)
	}

	return imported, nil
}

func (storage *Storage) importLine(line string) error {
	fields := strings.Split(line, ":")

	switch fields[0] {
	case tagVPC:
		if len(fields) != 5 {
			return fmt.Errorf("want 5 fields in a VPC line, got %d", len(fields))
		}
		created, err := parseUnix(fields[4])
		if err != nil {
			return err
		}
		_, err = storage.CreateVPC(types.VPC{
			Name:    fields[1],
			CIDR:    fields[2],
			Router:  fields[3],
			Created: created,
		})
		return err

	case tagSubnet:
		if len(fields) != 7 {
			return fmt.Errorf("want 7 fields in a SUBNET line, got %d", len(fields))
		}
		created, err := parseUnix(fields[6])
		if err != nil {
			return err
		}
		_, err = storage.CreateSubnet(types.Subnet{
			VPC:     fields[1],
			Name:    fields[2],
			CIDR:    fields[3],
			Type:    fields[4],
			Netns:   fields[5],
			Created: created,
		})
		return err

	case tagPeering:
		if len(fields) != 6 {
			return fmt.Errorf("want 6 fields in a PEERING line, got %d", len(fields))
		}
		created, err := parseUnix(fields[5])
		if err != nil {
			return err
		}
		_, err = storage.CreatePeering(types.Peering{
			VPC1:      fields[1],
			VPC2:      fields[2],
			Endpoint1: fields[3],
			Endpoint2: fields[4],
			Created:   created,
		})
		return err

	default:
		return fmt.Errorf("unknown record tag %q", fields[0])
	}
}

func parseUnix(s string) (*xtime.Time, error) {
	sec, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad timestamp %q: %w", s, err)
	}
	return xtime.FromUnix(sec), nil
}
