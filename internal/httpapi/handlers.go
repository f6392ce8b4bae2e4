// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

// Package httpapi exposes the record store over a read-only HTTP
// surface. All mutation stays on the privileged CLI.
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hostvpc/vpcctl/internal/storage"
	"github.com/hostvpc/vpcctl/pkg/version"
	"github.com/hostvpc/vpcctl/pkg/xhttp"
)

type Handlers struct {
	storage    *storage.Storage
	instanceID string
	started    time.Time
}

func New(store *storage.Storage, instanceID string) *Handlers {
	return &Handlers{
		storage:    store,
		instanceID: instanceID,
		started:    time.Now(),
	}
}

func (h *Handlers) RegisterHandlers(r chi.Router) {
	r.Get("/api/vpcs", h.listVPCs)
	r.Get("/api/subnets", h.listSubnets)
	r.Get("/api/peerings", h.listPeerings)
	r.Get("/api/status", h.status)
}

func (h *Handlers) listVPCs(w http.ResponseWriter, _ *http.Request) {
	vpcs, err := h.storage.ListVPCs()
	xhttp.WriteJSON(w, vpcs, err)
}

func (h *Handlers) listSubnets(w http.ResponseWriter, r *http.Request) {
	var filter *storage.SubnetFilter
	if vpc := r.URL.Query().Get("vpc"); len(vpc) > 0 {
		filter = &storage.SubnetFilter{VPC: &vpc}
	}

	subnets, err := h.storage.SearchSubnets(filter)
	xhttp.WriteJSON(w, subnets, err)
}

func (h *Handlers) listPeerings(w http.ResponseWriter, _ *http.Request) {
	peerings, err := h.storage.ListPeerings()
	xhttp.WriteJSON(w, peerings, err)
}

type statusResponse struct {
	InstanceID    string `json:"instance_id"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	VPCs          int    `json:"vpcs"`
	Subnets       int    `json:"subnets"`
	Peerings      int    `json:"peerings"`
}

func (h *Handlers) status(w http.ResponseWriter, _ *http.Request) {
	vpcs, err := h.storage.ListVPCs()
	if err != nil {
		xhttp.WriteJSON(w, nil, err)
		return
	}
	subnets, err := h.storage.SearchSubnets(nil)
	if err != nil {
		xhttp.WriteJSON(w, nil, err)
		return
	}
	peerings, err := h.storage.ListPeerings()
	if err != nil {
		xhttp.WriteJSON(w, nil, err)
		return
	}

	xhttp.WriteJSON(w, statusResponse{
		InstanceID:    h.instanceID,
		Version:       version.GetVersion(),
		UptimeSeconds: int64(time.Since(h.started).Seconds()),
		VPCs:          len(vpcs),
		Subnets:       len(subnets),
		Peerings:      len(peerings),
	}, nil)
}
