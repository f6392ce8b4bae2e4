// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

// Package manager implements the control-plane operations over
// virtual networks: routers, subnets and peering links. Every
// mutating operation validates its inputs, drives the kernel through
// the network.Driver and persists a record only once the kernel state
// is fully in place.
package manager

import (
	"sync"

	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/storage"
)

const (
	gatewayHostOffset = 1
	subnetHostOffset  = 10
)

type Manager struct {
	// one mutating operation at a time
	mu sync.Mutex

	storage   *storage.Storage
	driver    network.Driver
	resolvers []string
}

func New(store *storage.Storage, driver network.Driver, resolvers []string) *Manager {
	return &Manager{
		storage:   store,
		driver:    driver,
		resolvers: resolvers,
	}
}
