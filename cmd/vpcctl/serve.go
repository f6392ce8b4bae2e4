// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hostvpc/vpcctl/internal/httpapi"
	"github.com/hostvpc/vpcctl/pkg/xhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultListenAddr = ":8084"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the read-only status API",
	Long: `Serve the record store over HTTP: GET /api/vpcs, /api/subnets,
/api/peerings and /api/status, plus prometheus metrics on /metrics
when enabled in the config. The API never mutates anything.`,
	Args: cobra.NoArgs,
	RunE: readonly(func(a *app, _ []string) error {
		addr := defaultListenAddr
		opts := []xhttp.Option{xhttp.WithLogger()}
		if cfg.HTTP != nil {
			addr = cfg.HTTP.ListenAddr
			if cfg.HTTP.Prometheus {
				opts = append(opts, xhttp.WithMetrics())
			}
			opts = append(opts, xhttp.WithShutdownTimeout(cfg.HTTP.ShutdownTimeout.Value()))
		}

		srv := xhttp.New(opts...)
		httpapi.New(a.store, cfg.InstanceID).RegisterHandlers(srv.Router())

		if err := srv.Run(addr); err != nil {
			return err
		}
		fmt.Printf("status api listening on %s\n", addr)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		sig := <-stop
		zap.L().Info("shutting down", zap.String("signal", sig.String()))

		return srv.Shutdown()
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
