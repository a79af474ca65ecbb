// Copyright 2025 The axfor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration for one store instance.
type Config struct {
	Store StoreConfig `yaml:"store"`
}

// StoreConfig configures a single MVCC store.
type StoreConfig struct {
	Name                string `yaml:"name"`
	LocalStateStoreDir  string `yaml:"local_state_store_dir"`
	Stream              string `yaml:"stream"` // optional: change-notification sink name

	Log        LogConfig        `yaml:"log"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	RocksDB    RocksDBConfig    `yaml:"rocksdb"`
	Limits     LimitsConfig     `yaml:"limits"`
}

// LimitsConfig bounds resource usage for a store instance.
type LimitsConfig struct {
	MaxRequestSize int64 `yaml:"max_request_size"` // Default 1.5MB
	MaxMemoryMB    int64 `yaml:"max_memory_mb"`     // Default 8192; SetDefaults replaces 0 with it
}

// LogConfig configures the zap-backed logger.
type LogConfig struct {
	Level            string   `yaml:"level"`              // Default info
	Encoding         string   `yaml:"encoding"`           // Default json
	OutputPaths      []string `yaml:"output_paths"`       // Default ["stdout"]
	ErrorOutputPaths []string `yaml:"error_output_paths"` // Default ["stderr"]
}

// MonitoringConfig configures the prometheus metrics endpoint.
type MonitoringConfig struct {
	EnablePrometheus     bool          `yaml:"enable_prometheus"`      // Default true
	PrometheusPort       int           `yaml:"prometheus_port"`        // Default 9090
	SlowRequestThreshold time.Duration `yaml:"slow_request_threshold"` // Default 100ms
}

// RocksDBConfig tunes the grocksdb-backed engine.
type RocksDBConfig struct {
	BlockCacheSize uint64 `yaml:"block_cache_size"` // Default 128MB

	WriteBufferSize             uint64 `yaml:"write_buffer_size"`              // Default 64MB
	MaxWriteBufferNumber        int    `yaml:"max_write_buffer_number"`        // Default 3
	MinWriteBufferNumberToMerge int    `yaml:"min_write_buffer_number_to_merge"` // Default 1

	MaxBackgroundJobs              int `yaml:"max_background_jobs"`                // Default 4
	Level0FileNumCompactionTrigger int `yaml:"level0_file_num_compaction_trigger"` // Default 4
	Level0SlowdownWritesTrigger    int `yaml:"level0_slowdown_writes_trigger"`     // Default 20
	Level0StopWritesTrigger        int `yaml:"level0_stop_writes_trigger"`         // Default 36

	BloomFilterBitsPerKey      int  `yaml:"bloom_filter_bits_per_key"`      // Default 10
	BlockBasedTableBloomFilter bool `yaml:"block_based_table_bloom_filter"` // Default true

	MaxOpenFiles int    `yaml:"max_open_files"` // Default 10000
	UseFsync     bool   `yaml:"use_fsync"`      // Default false (use fdatasync)
	BytesPerSync uint64 `yaml:"bytes_per_sync"` // Default 1MB
}

// DefaultConfig returns a configuration with recommended default values.
func DefaultConfig(name, localStateStoreDir string) *Config {
	cfg := &Config{
		Store: StoreConfig{
			Name:               name,
			LocalStateStoreDir: localStateStoreDir,
		},
	}
	cfg.SetDefaults()
	return cfg
}

// LoadConfig loads configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.SetDefaults()
	cfg.OverrideFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadConfigOrDefault loads path if it exists, or else falls back to
// DefaultConfig(name, localStateStoreDir).
func LoadConfigOrDefault(path, name, localStateStoreDir string) (*Config, error) {
	if path != "" {
		cfg, err := LoadConfig(path)
		if err == nil {
			return cfg, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	cfg := DefaultConfig(name, localStateStoreDir)
	cfg.OverrideFromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// SetDefaults fills zero-valued fields with recommended defaults.
func (c *Config) SetDefaults() {
	if c.Store.Limits.MaxRequestSize == 0 {
		c.Store.Limits.MaxRequestSize = 1572864 // 1.5MB
	}
	if c.Store.Limits.MaxMemoryMB == 0 {
		c.Store.Limits.MaxMemoryMB = 8192
	}

	if c.Store.Log.Level == "" {
		c.Store.Log.Level = "info"
	}
	if c.Store.Log.Encoding == "" {
		c.Store.Log.Encoding = "json"
	}
	if len(c.Store.Log.OutputPaths) == 0 {
		c.Store.Log.OutputPaths = []string{"stdout"}
	}
	if len(c.Store.Log.ErrorOutputPaths) == 0 {
		c.Store.Log.ErrorOutputPaths = []string{"stderr"}
	}

	if !c.Store.Monitoring.EnablePrometheus {
		c.Store.Monitoring.EnablePrometheus = true
	}
	if c.Store.Monitoring.PrometheusPort == 0 {
		c.Store.Monitoring.PrometheusPort = 9090
	}
	if c.Store.Monitoring.SlowRequestThreshold == 0 {
		c.Store.Monitoring.SlowRequestThreshold = 100 * time.Millisecond
	}

	if c.Store.RocksDB.BlockCacheSize == 0 {
		c.Store.RocksDB.BlockCacheSize = 134217728 // 128MB
	}
	if c.Store.RocksDB.WriteBufferSize == 0 {
		c.Store.RocksDB.WriteBufferSize = 67108864 // 64MB
	}
	if c.Store.RocksDB.MaxWriteBufferNumber == 0 {
		c.Store.RocksDB.MaxWriteBufferNumber = 3
	}
	if c.Store.RocksDB.MinWriteBufferNumberToMerge == 0 {
		c.Store.RocksDB.MinWriteBufferNumberToMerge = 1
	}
	if c.Store.RocksDB.MaxBackgroundJobs == 0 {
		c.Store.RocksDB.MaxBackgroundJobs = 4
	}
	if c.Store.RocksDB.Level0FileNumCompactionTrigger == 0 {
		c.Store.RocksDB.Level0FileNumCompactionTrigger = 4
	}
	if c.Store.RocksDB.Level0SlowdownWritesTrigger == 0 {
		c.Store.RocksDB.Level0SlowdownWritesTrigger = 20
	}
	if c.Store.RocksDB.Level0StopWritesTrigger == 0 {
		c.Store.RocksDB.Level0StopWritesTrigger = 36
	}
	if c.Store.RocksDB.BloomFilterBitsPerKey == 0 {
		c.Store.RocksDB.BloomFilterBitsPerKey = 10
	}
	if !c.Store.RocksDB.BlockBasedTableBloomFilter {
		c.Store.RocksDB.BlockBasedTableBloomFilter = true
	}
	if c.Store.RocksDB.MaxOpenFiles == 0 {
		c.Store.RocksDB.MaxOpenFiles = 10000
	}
	if c.Store.RocksDB.BytesPerSync == 0 {
		c.Store.RocksDB.BytesPerSync = 1048576
	}
}

// OverrideFromEnv applies environment-variable overrides on top of the
// file/defaults layer.
func (c *Config) OverrideFromEnv() {
	if name := os.Getenv("METAKV_STORE_NAME"); name != "" {
		c.Store.Name = name
	}
	if dir := os.Getenv("METAKV_STATE_DIR"); dir != "" {
		c.Store.LocalStateStoreDir = dir
	}
	if logLevel := os.Getenv("METAKV_LOG_LEVEL"); logLevel != "" {
		c.Store.Log.Level = logLevel
	}
	if logEncoding := os.Getenv("METAKV_LOG_ENCODING"); logEncoding != "" {
		c.Store.Log.Encoding = logEncoding
	}
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Store.Name == "" {
		return fmt.Errorf("store.name is required")
	}
	if c.Store.LocalStateStoreDir == "" {
		return fmt.Errorf("store.local_state_store_dir is required")
	}

	if c.Store.Limits.MaxRequestSize <= 0 {
		return fmt.Errorf("store.limits.max_request_size must be > 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true,
		"error": true, "dpanic": true, "panic": true, "fatal": true,
	}
	if !validLogLevels[c.Store.Log.Level] {
		return fmt.Errorf("store.log.level must be one of: debug, info, warn, error, dpanic, panic, fatal")
	}
	if c.Store.Log.Encoding != "json" && c.Store.Log.Encoding != "console" {
		return fmt.Errorf("store.log.encoding must be either 'json' or 'console'")
	}

	return nil
}

// StoreSpec is the fully-resolved handle an MVCC store is initialized
// with: the on-disk Config plus the pluggable byte codecs for the
// caller's key and value types. The codecs are not part of Config
// because they are Go values (closures), not serializable settings.
type StoreSpec struct {
	Name                string
	LocalStateStoreDir  string
	Stream              string
	KeyCoder            any // expected: mvcc.ByteCodec[K] for the caller's key type
	ValCoder            any // expected: mvcc.ByteCodec[V] for the caller's value type
	Config              Config
}

// NewStoreSpec builds a StoreSpec from a loaded Config plus the
// caller-supplied codecs.
func NewStoreSpec(cfg Config, keyCoder, valCoder any) StoreSpec {
	return StoreSpec{
		Name:               cfg.Store.Name,
		LocalStateStoreDir: cfg.Store.LocalStateStoreDir,
		Stream:             cfg.Store.Stream,
		KeyCoder:           keyCoder,
		ValCoder:           valCoder,
		Config:             cfg,
	}
}

// Validate checks that every field the MVCC engine requires is present.
func (s StoreSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("config: name is required")
	}
	if s.KeyCoder == nil {
		return fmt.Errorf("config: key_coder is required")
	}
	if s.ValCoder == nil {
		return fmt.Errorf("config: val_coder is required")
	}
	if s.LocalStateStoreDir == "" {
		return fmt.Errorf("config: local_state_store_dir is required")
	}
	return nil
}
