// Package config loads and saves the simulator's TOML configuration file:
// default memory size and instruction limit, disassembly/dump display
// options, and structured trace-log settings. CLI flags override whatever
// a loaded config specifies.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config is the simulator's persisted configuration.
type Config struct {
	// Execution settings
	Execution struct {
		MemorySize    string `toml:"memory_size"` // hex, no 0x prefix, e.g. "10000"
		InstrLimit    uint64 `toml:"instr_limit"`
		ShowRegisters bool   `toml:"show_registers"`
		ShowTrace     bool   `toml:"show_trace"`
	} `toml:"execution"`

	// Debugger settings
	Debugger struct {
		HistorySize int `toml:"history_size"`
	} `toml:"debugger"`

	// Display settings
	Display struct {
		BytesPerLine  int  `toml:"bytes_per_line"`
		DisasmContext int  `toml:"disasm_context"`
		ColorOutput   bool `toml:"color_output"`
	} `toml:"display"`

	// Trace settings
	Trace struct {
		OutputFile string `toml:"output_file"` // "" disables the structured trace log
		Format     string `toml:"format"`      // "jsonl" or "csv"
		MaxEntries int    `toml:"max_entries"` // 0 = unbounded
	} `toml:"trace"`
}

// DefaultConfig returns the configuration used when no file is present or
// a value is left unset.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Execution.MemorySize = "10000"
	cfg.Execution.InstrLimit = 0
	cfg.Execution.ShowRegisters = false
	cfg.Execution.ShowTrace = false

	cfg.Debugger.HistorySize = 1000

	cfg.Display.BytesPerLine = 16
	cfg.Display.DisasmContext = 16
	cfg.Display.ColorOutput = true

	cfg.Trace.OutputFile = ""
	cfg.Trace.Format = "jsonl"
	cfg.Trace.MaxEntries = 100000

	return cfg
}

// GetConfigPath returns the platform-specific default config file path,
// creating its parent directory if necessary.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "rv32i")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "rv32i")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific default trace/log directory,
// creating it if necessary.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "rv32i", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "rv32i", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file path.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to DefaultConfig
// if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes c to the default config file path.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo writes c as TOML to path, creating its parent directory if
// necessary.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 -- user config file path
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
