// Copyright 2026 The HostVPC Authors. All rights reserved.
// Use of this source code is governed by a AGPL-style
// license that can be found in the LICENSE file.

package settings

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hostvpc/vpcctl/pkg/human"
	"github.com/hostvpc/vpcctl/pkg/sentry"
	"github.com/hostvpc/vpcctl/pkg/validator"
	"github.com/hostvpc/vpcctl/pkg/xerror"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigDir = "/opt/hostvpc/vpcctl/"
	configFileName   = "config.yaml"

	defaultPolicyFileName      = "policy.json"
	defaultLegacyStateFileName = "state.db"
)

type Config struct {
	InstanceID string   `yaml:"instance_id"`
	LogLevel   string   `yaml:"log_level"`
	SQLitePath string   `yaml:"sqlite_path" valid:"path,required"`
	PolicyPath string   `yaml:"policy_path" valid:"path,required"`
	StatePath  string   `yaml:"legacy_state_path,omitempty" valid:"path"`
	Resolvers  []string `yaml:"resolvers" valid:"ipv4list"`

	HTTP *HttpConfig `yaml:"http,omitempty"`

	// optional configuration
	Sentry *sentry.Config `yaml:"sentry,omitempty"`

	// path to the config file, or default path in case of safe defaults
	path string
}

type HttpConfig struct {
	// ListenAddr for the read-only status API, default: ":8084"
	ListenAddr string `yaml:"listen_addr" valid:"listen_addr,required"`
	// Enable prometheus metrics on "/metrics" path
	Prometheus bool `yaml:"prometheus"`
	// How long a graceful shutdown waits for in-flight requests,
	// e.g. "10s". Zero keeps the server default.
	ShutdownTimeout human.Interval `yaml:"shutdown_timeout,omitempty"`
}

func (s *Config) ConfigDir() string {
	return filepath.Dir(s.path)
}

func LoadStatic(configDir string) (*Config, error) {
	return staticConfigFromFS(afero.OsFs{}, configDir)
}

func staticConfigFromFS(fs afero.Fs, configDir string) (*Config, error) {
	if len(configDir) == 0 {
		configDir = defaultConfigDir
	}

	pathToStatic := filepath.Join(configDir, configFileName)
	_, err := fs.Stat(pathToStatic)
	switch {
	case os.IsNotExist(err):
		zap.L().Warn("no static config file, using safe defaults", zap.String("path", pathToStatic))
		return safeDefaults(configDir), nil
	case err == nil:
		return loadStaticConfig(fs, pathToStatic)
	default:
		return nil, xerror.EConfigError("failed to stat the static config path", err, zap.String("path", pathToStatic))
	}
}

func loadStaticConfig(fs afero.Fs, path string) (*Config, error) {
	fd, err := fs.Open(path)
	if err != nil {
		return nil, xerror.EConfigError("failed to open config file "+path, err)
	}

	defer fd.Close()

	c := &Config{}
	if err := yaml.NewDecoder(fd).Decode(c); err != nil {
		return nil, xerror.EConfigError("failed to unmarshal config", err)
	}

	if err := validator.ValidateStruct(c); err != nil {
		return nil, xerror.EConfigError("config validation failed", err)
	}

	c.path = path
	if len(c.Resolvers) == 0 {
		c.Resolvers = defaultResolvers()
	}
	if len(c.InstanceID) == 0 {
		c.InstanceID = uuid.New().String()
		_ = c.flush()
	}

	return c, nil
}

// safeDefaults provides safe static config with paths started with the rootDir
func safeDefaults(rootDir string) *Config {
	return &Config{
		InstanceID: uuid.New().String(),
		path:       filepath.Join(rootDir, configFileName),

		LogLevel:   "debug",
		SQLitePath: filepath.Join(rootDir, "records.sqlite3"),
		PolicyPath: filepath.Join(rootDir, defaultPolicyFileName),
		StatePath:  filepath.Join(rootDir, defaultLegacyStateFileName),
		Resolvers:  defaultResolvers(),
	}
}

func defaultResolvers() []string {
	return []string{"1.1.1.1", "8.8.8.8"}
}

func (s *Config) flush() error {
	bs, _ := yaml.Marshal(s)

	fd, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return xerror.EConfigError("failed to open config for writing", err, zap.String("path", s.path))
	}

	defer fd.Close()

	fd.Write(bs)
	return nil
}
