// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Exchange records in the colon-delimited state format",
}

var stateExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write all records as colon-delimited state lines",
	Long: `Write all records to the given file, or to stdout when no file is
given, in the colon-delimited line format:

  VPC:<name>:<cidr>:<router-id>:<unix-timestamp>
  SUBNET:<vpc>:<name>:<cidr>:<public|private>:<domain-id>:<unix-timestamp>
  PEERING:<vpc1>:<vpc2>:<endpoint1>:<endpoint2>:<unix-timestamp>`,
	Args: cobra.MaximumNArgs(1),
	RunE: readonly(func(a *app, args []string) error {
		out := os.Stdout
		if len(args) == 1 {
			fd, err := os.OpenFile(args[0], os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
			if err != nil {
				return err
			}
			defer fd.Close()
			out = fd
		}
		return a.store.Export(out)
	}),
}

var stateImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load colon-delimited state lines into the record store",
	Long: `Read state lines from the given file, or from the configured legacy
state path when no file is given, and insert them as records. Malformed
and unknown lines are skipped with a warning. Only records are created;
no kernel objects are touched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: readonly(func(a *app, args []string) error {
		path := cfg.StatePath
		if len(args) == 1 {
			path = args[0]
		}
		fd, err := os.Open(path)
		if err != nil {
			return err
		}
		defer fd.Close()

		n, err := a.store.Import(fd)
		if err != nil {
			return err
		}
		fmt.Printf("imported %d records from %s\n", n, path)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(stateCmd)

	stateCmd.AddCommand(stateExportCmd)
	stateCmd.AddCommand(stateImportCmd)
}
