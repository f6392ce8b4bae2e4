// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

// Package firewall compiles declarative policy documents into
// ordered packet-filter rule programs and applies them per routing
// domain.
package firewall

import (
	"encoding/json"

	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Mode selects how a compiled program treats the chains it touches.
type Mode string

const (
	// ModePermissive layers policy rules onto whatever baseline is
	// already active.
	ModePermissive Mode = "permissive"
	// ModeStrict forces deny-by-default for inbound and forwarded
	// traffic and installs the baseline accept rules first.
	ModeStrict Mode = "strict"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePermissive, ModeStrict:
		return Mode(s), nil
	default:
		return "", xerror.EInvalidArgument("firewall mode must be strict or permissive", nil,
			zap.String("mode", s))
	}
}

const (
	ActionAllow = "allow"

	defaultProtocol    = "tcp"
	defaultSource      = "0.0.0.0/0"
	defaultDestination = "0.0.0.0/0"
)

// Document is the on-disk policy format.
type Document struct {
	Policies []Policy `json:"policies"`
}

// Policy targets one subnet by CIDR and lists its rules in
// evaluation order.
type Policy struct {
	Subnet      string        `json:"subnet"`
	Description string        `json:"description,omitempty"`
	Ingress     []IngressRule `json:"ingress,omitempty"`
	Egress      []EgressRule  `json:"egress,omitempty"`
}

type IngressRule struct {
	Port        int    `json:"port"`
	Protocol    string `json:"protocol,omitempty"`
	Source      string `json:"source,omitempty"`
	Action      string `json:"action,omitempty"`
	Description string `json:"description,omitempty"`
}

type EgressRule struct {
	Destination string `json:"destination,omitempty"`
	Action      string `json:"action,omitempty"`
	Description string `json:"description,omitempty"`
}

// normalize fills in the documented defaults so the compiler only
// ever sees complete rules.
func (d *Document) normalize() {
	for pi := range d.Policies {
		p := &d.Policies[pi]
		for i := range p.Ingress {
			r := &p.Ingress[i]
			if len(r.Protocol) == 0 {
				r.Protocol = defaultProtocol
			}
			if len(r.Source) == 0 {
				r.Source = defaultSource
			}
			if len(r.Action) == 0 {
				r.Action = ActionAllow
			}
		}
		for i := range p.Egress {
			r := &p.Egress[i]
			if len(r.Destination) == 0 {
				r.Destination = defaultDestination
			}
			if len(r.Action) == 0 {
				r.Action = ActionAllow
			}
		}
	}
}

// ParseDocument decodes a policy document and applies rule defaults.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, xerror.EInvalidArgument("can't parse policy document", err)
	}
	doc.normalize()
	return &doc, nil
}

// LoadDocument reads a policy document from the given filesystem.
func LoadDocument(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, xerror.EConfigError("can't read policy document", err, zap.String("path", path))
	}
	return ParseDocument(data)
}
