// Package config provides the simulator's JSON-backed sizing configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/rv32tomasulo/delay"
	"github.com/sarchlab/rv32tomasulo/iqueue"
	"github.com/sarchlab/rv32tomasulo/memory"
	"github.com/sarchlab/rv32tomasulo/predictor"
	"github.com/sarchlab/rv32tomasulo/rob"
	"github.com/sarchlab/rv32tomasulo/rs"
	"github.com/sarchlab/rv32tomasulo/slb"
)

// SimConfig holds the sizing knobs the simulator defaults to. The
// reservation station, store/load buffer, reorder buffer and instruction
// queue are fixed-capacity arrays at compile time (so every cycle's state
// copy is allocation-free); their fields here exist so a config file
// documents the running simulator's shape and so Load can catch a config
// file written for a differently-sized build, rather than to resize them
// at runtime.
type SimConfig struct {
	// RAMSize is the flat memory size in bytes.
	RAMSize int `json:"ram_size"`

	// PredictorBuckets is the number of hashed branch-history buckets.
	PredictorBuckets uint32 `json:"predictor_buckets"`

	// ROBCapacity, RSCapacity, SLBCapacity, InstQueueCapacity and
	// DelayLineDepth document the compiled-in capacities. Load rejects a
	// file whose values disagree with the build.
	ROBCapacity       int `json:"rob_capacity"`
	RSCapacity        int `json:"rs_capacity"`
	SLBCapacity       int `json:"slb_capacity"`
	InstQueueCapacity int `json:"inst_queue_capacity"`
	DelayLineDepth    int `json:"delay_line_depth"`
}

// Default returns the simulator's default configuration.
func Default() *SimConfig {
	return &SimConfig{
		RAMSize:           memory.DefaultSize,
		PredictorBuckets:  predictor.BucketCount,
		ROBCapacity:       rob.Capacity,
		RSCapacity:        rs.Capacity,
		SLBCapacity:       slb.Capacity,
		InstQueueCapacity: iqueue.Capacity,
		DelayLineDepth:    delay.DefaultDepth,
	}
}

// Load reads a SimConfig from a JSON file, starting from Default so an
// override file only needs to set the fields it changes.
func Load(path string) (*SimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func (c *SimConfig) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to serialize: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}
	return nil
}

// Validate checks RAMSize/PredictorBuckets are usable and that the
// fixed-capacity fields agree with this build, since those are compiled-in
// array sizes rather than runtime parameters.
func (c *SimConfig) Validate() error {
	if c.RAMSize <= 0 {
		return fmt.Errorf("ram_size must be > 0")
	}
	if c.PredictorBuckets == 0 || c.PredictorBuckets&(c.PredictorBuckets-1) != 0 {
		return fmt.Errorf("predictor_buckets must be a power of two")
	}
	if c.ROBCapacity != rob.Capacity {
		return fmt.Errorf("rob_capacity %d does not match compiled-in capacity %d", c.ROBCapacity, rob.Capacity)
	}
	if c.RSCapacity != rs.Capacity {
		return fmt.Errorf("rs_capacity %d does not match compiled-in capacity %d", c.RSCapacity, rs.Capacity)
	}
	if c.SLBCapacity != slb.Capacity {
		return fmt.Errorf("slb_capacity %d does not match compiled-in capacity %d", c.SLBCapacity, slb.Capacity)
	}
	if c.InstQueueCapacity != iqueue.Capacity {
		return fmt.Errorf("inst_queue_capacity %d does not match compiled-in capacity %d", c.InstQueueCapacity, iqueue.Capacity)
	}
	if c.DelayLineDepth != delay.DefaultDepth {
		return fmt.Errorf("delay_line_depth %d does not match compiled-in depth %d", c.DelayLineDepth, delay.DefaultDepth)
	}
	return nil
}
