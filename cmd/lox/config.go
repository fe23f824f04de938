package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the optional interpreter configuration, read from lox.toml.
type Config struct {
	// MaxFrames bounds call depth; 0 keeps the interpreter default.
	MaxFrames int `toml:"max_frames"`
	// Trace logs instruction dispatch at debug level.
	Trace bool `toml:"trace"`
	// Verbosity sets the log verbosity (0 quiet, higher is louder).
	Verbosity int `toml:"verbosity"`
}

// loadConfig reads the configuration file when present; a missing file
// yields the zero config.
func loadConfig(path string) (Config, error) {
	var cfg Config
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return cfg, nil
}
