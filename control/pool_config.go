// control/pool_config.go
// Author: momentics <momentics@gmail.com>
//
// Environment-driven memory pool configuration.

package control

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/momentics/hioload-mempool/pool"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EnvPrefix is the prefix of every environment variable read by LoadPoolConfig.
const EnvPrefix = "MEMPOOL"

// PoolConfig describes how to build a pool.Pool.
type PoolConfig struct {
	PageCapacity int    `envconfig:"PAGE_CAPACITY" default:"512"`
	Allocator    string `envconfig:"ALLOCATOR" default:"heap"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadPoolConfig reads MEMPOOL_* variables from the environment.
func LoadPoolConfig() (PoolConfig, error) {
	var c PoolConfig
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return PoolConfig{}, errors.Wrap(err, "load pool config")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return PoolConfig{}, errors.Wrap(err, "load pool config")
	}
	return c, nil
}

// Options converts the config to pool options. The allocator name is
// resolved here so a bad name fails before the pool is built.
func (c PoolConfig) Options() ([]pool.Option, error) {
	alloc, err := pool.AllocatorByName(c.Allocator)
	if err != nil {
		return nil, err
	}
	return []pool.Option{
		pool.WithPageCapacity(c.PageCapacity),
		pool.WithAllocator(alloc),
	}, nil
}

// Values flattens the config for a ConfigStore.
func (c PoolConfig) Values() map[string]any {
	return map[string]any{
		"mempool.page_capacity": c.PageCapacity,
		"mempool.allocator":     c.Allocator,
		"mempool.log_level":     c.LogLevel,
	}
}
