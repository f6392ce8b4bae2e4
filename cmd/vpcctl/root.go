// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/hostvpc/vpcctl/internal/firewall"
	"github.com/hostvpc/vpcctl/internal/manager"
	"github.com/hostvpc/vpcctl/internal/network"
	"github.com/hostvpc/vpcctl/internal/settings"
	"github.com/hostvpc/vpcctl/internal/storage"
	"github.com/hostvpc/vpcctl/pkg/control"
	sentryio "github.com/hostvpc/vpcctl/pkg/sentry"
	"github.com/hostvpc/vpcctl/pkg/version"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/spf13/cobra"
)

var (
	configDir string

	cfg *settings.Config
)

var rootCmd = &cobra.Command{
	Use:   "vpcctl",
	Short: "vpcctl emulates cloud virtual-network primitives on a single linux host",
	Long: `vpcctl manages virtual networks built from native kernel objects:
a VPC is a bridge acting as a virtual router, a subnet is an isolated
network namespace cabled to it, a peering is a veth link between two
routers. Records live in a local sqlite database so that everything
vpcctl created can be enumerated and safely torn down.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = settings.LoadStatic(configDir)
		if err != nil {
			return err
		}

		control.InitLogger(cfg.LogLevel)

		if cfg.Sentry != nil {
			if err := sentryio.ConfigureGlobal(*cfg.Sentry, version.GetVersion()); err != nil {
				return err
			}
		}
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "", "config directory (default /opt/hostvpc/vpcctl)")
}

// app bundles everything an invocation needs once the config is
// loaded. Call shutdown when done.
type app struct {
	store *storage.Storage
	mgr   *manager.Manager
	fw    *firewall.Service
}

func newApp() (*app, error) {
	store, err := storage.New(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	driver := network.NewLinuxDriver()
	return &app{
		store: store,
		mgr:   manager.New(store, driver, cfg.Resolvers),
		fw:    firewall.NewService(store, driver),
	}, nil
}

func (a *app) shutdown() {
	_ = a.store.Shutdown()
}

// precheck guards every mutating command: without root privileges
// and the iptables binary nothing below can work, so fail before
// touching anything.
func precheck() error {
	if os.Geteuid() != 0 {
		return xerror.EPrecheckFailure("must run as root", nil)
	}
	if _, err := exec.LookPath("iptables"); err != nil {
		return xerror.EPrecheckFailure("iptables binary not found in PATH", err)
	}
	return nil
}

// mutating wraps a RunE handler with the privilege precheck and app
// lifecycle.
func mutating(fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := precheck(); err != nil {
			return err
		}
		return withApp(fn, args)
	}
}

// readonly wraps a RunE handler with the app lifecycle only.
func readonly(fn func(a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withApp(fn, args)
	}
}

func withApp(fn func(a *app, args []string) error, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.shutdown()
	return fn(a, args)
}
