// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package settings

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyFile(t *testing.T) {
	f := &afero.MemMapFs{}

	path := "/tmp/foo/bar/conf"
	err := f.MkdirAll(path, 0700)
	require.NoError(t, err)
	_, err = f.Create("/tmp/foo/bar/conf/" + configFileName)
	require.NoError(t, err)

	_, err = staticConfigFromFS(f, path)
	require.Error(t, err)
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	f := &afero.MemMapFs{}

	c, err := staticConfigFromFS(f, "/tmp/nowhere")
	require.NoError(t, err)

	assert.NotEmpty(t, c.InstanceID)
	assert.Equal(t, "/tmp/nowhere/records.sqlite3", c.SQLitePath)
	assert.Equal(t, []string{"1.1.1.1", "8.8.8.8"}, c.Resolvers)
	assert.Equal(t, "/tmp/nowhere", c.ConfigDir())
}

func TestLoadConfig(t *testing.T) {
	f := &afero.MemMapFs{}
	require.NoError(t, f.MkdirAll("/etc/vpcctl", 0700))

	content := `
instance_id: "0b1de8fe-1e28-4f46-a9bb-0b4b1ccb1e0a"
log_level: info
sqlite_path: /var/lib/vpcctl/records.sqlite3
policy_path: /etc/vpcctl/policy.json
resolvers: ["9.9.9.9"]
http:
  listen_addr: ":8084"
`
	require.NoError(t, afero.WriteFile(f, "/etc/vpcctl/"+configFileName, []byte(content), 0600))

	c, err := staticConfigFromFS(f, "/etc/vpcctl")
	require.NoError(t, err)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, []string{"9.9.9.9"}, c.Resolvers)
	require.NotNil(t, c.HTTP)
	assert.Equal(t, ":8084", c.HTTP.ListenAddr)
}

func TestBadResolver(t *testing.T) {
	f := &afero.MemMapFs{}
	require.NoError(t, f.MkdirAll("/etc/vpcctl", 0700))

	content := `
sqlite_path: /var/lib/vpcctl/records.sqlite3
policy_path: /etc/vpcctl/policy.json
resolvers: ["not-an-ip"]
`
	require.NoError(t, afero.WriteFile(f, "/etc/vpcctl/"+configFileName, []byte(content), 0600))

	_, err := staticConfigFromFS(f, "/etc/vpcctl")
	require.Error(t, err)
}
