// Package config loads metdbload.yaml, the per-batch job settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const ConfigFileName = "metdbload.yaml"

type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
}

// FlagsConfig mirrors metdbload.LoadFlags. Pointers tell "unset" apart from false.
type FlagsConfig struct {
	ForceDupFile      *bool `yaml:"force_dup_file"`
	StatHeaderDBCheck *bool `yaml:"stat_header_db_check"`
	LoadXML           *bool `yaml:"load_xml"`
	LocalInfile       *bool `yaml:"local_infile"`
}

type JobConfig struct {
	Connection  ConnectionConfig `yaml:"connection"`
	Flags       FlagsConfig      `yaml:"flags"`
	Group       string           `yaml:"group"`
	Description string           `yaml:"description"`
	LoadNote    string           `yaml:"load_note"`
	StagingDir  string           `yaml:"staging_dir"`
	Timeout     string           `yaml:"timeout"`
}

// TimeoutDuration parses Timeout. Zero when unset.
func (c *JobConfig) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, err)
	}
	return d, nil
}

// Load reads metdbload.yaml from dir.
func Load(dir string) (*JobConfig, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads a job config from an explicit path.
func LoadFile(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg JobConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}
