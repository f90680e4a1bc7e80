// Package config loads the engine's startup configuration from TOML and
// exposes the handful of values that stay tunable at runtime, in the same
// RWMutex-guarded-singleton style the teacher uses for its render and
// world-gen settings.
package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

// EngineConfig is the on-disk startup configuration.
type EngineConfig struct {
	RenderDistance int     `toml:"render_distance"` // chunks, radius around the player
	WorldSeed      int64   `toml:"world_seed"`
	SeaLevel       int     `toml:"sea_level"`
	ThreadPoolSize int     `toml:"thread_pool_size"` // 0 means half of NumCPU, per §5
	AOMultiplier   float32 `toml:"ao_multiplier"`
	DebugAO        bool    `toml:"debug_ao"`
	AssetsPath     string  `toml:"assets_path"`
}

// Default returns the engine's built-in defaults, used when no config file
// is present.
func Default() EngineConfig {
	return EngineConfig{
		RenderDistance: 12,
		WorldSeed:      1,
		SeaLevel:       62,
		ThreadPoolSize: 0,
		AOMultiplier:   1.0,
		DebugAO:        false,
		AssetsPath:     "assets",
	}
}

// Load reads and parses a TOML config file, filling any field the file
// omits from Default().
func Load(path string) (EngineConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// RuntimeSettings holds the subset of configuration that tools (a debug
// overlay, a console command) may change while the engine is running.
type RuntimeSettings struct {
	mu             sync.RWMutex
	renderDistance int
	aoMultiplier   float32
	debugAO        bool
}

var global = &RuntimeSettings{
	renderDistance: 12,
	aoMultiplier:   1.0,
}

// Apply seeds the runtime settings from a loaded EngineConfig. Call once at
// startup before reading any Get* accessor.
func Apply(cfg EngineConfig) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.renderDistance = cfg.RenderDistance
	global.aoMultiplier = cfg.AOMultiplier
	global.debugAO = cfg.DebugAO
}

func GetRenderDistance() int {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.renderDistance
}

func SetRenderDistance(chunks int) {
	if chunks < 1 {
		chunks = 1
	}
	global.mu.Lock()
	defer global.mu.Unlock()
	global.renderDistance = chunks
}

func GetAOMultiplier() float32 {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.aoMultiplier
}

func SetAOMultiplier(m float32) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.aoMultiplier = m
}

func GetDebugAO() bool {
	global.mu.RLock()
	defer global.mu.RUnlock()
	return global.debugAO
}

func SetDebugAO(enabled bool) {
	global.mu.Lock()
	defer global.mu.Unlock()
	global.debugAO = enabled
}
