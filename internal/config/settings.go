package config

// Settings-file support. The tool remembers the last input path, output
// directory and limits in a small YAML file so repeat runs need no
// arguments. Precedence: CLI flags > settings file > defaults.

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSettingsFile is looked up in the working directory when --settings
// is not given.
const DefaultSettingsFile = "videosplit.yaml"

// Settings is the persisted subset of Config.
type Settings struct {
	InputPath      string  `yaml:"input_path,omitempty"`
	OutputDir      string  `yaml:"output_dir,omitempty"`
	MaxSizeGB      float64 `yaml:"max_size_gb,omitempty"`
	MaxDurationMin float64 `yaml:"max_duration_minutes,omitempty"`
}

// Load builds the effective Config: defaults, then the settings file (the
// --settings value is pre-scanned from args so the file applies before flag
// parsing), then CLI flags on top.
func Load(args []string) (Config, error) {
	cfg := Default()

	path := scanSettingsFlag(args)
	if path == "" {
		if _, err := os.Stat(DefaultSettingsFile); err == nil {
			path = DefaultSettingsFile
		}
	}
	if path != "" {
		cfg.SettingsPath = path
		if err := applySettingsFile(&cfg, path); err != nil {
			return cfg, fmt.Errorf("settings file %s: %w", path, err)
		}
	}

	if err := ParseFlags(&cfg, args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// scanSettingsFlag extracts the --settings value without a full flag parse,
// so the file can be applied before the remaining flags override it.
func scanSettingsFlag(args []string) string {
	for i, arg := range args {
		switch arg {
		case "-settings", "--settings":
			if i+1 < len(args) {
				return args[i+1]
			}
		}
		for _, prefix := range []string{"-settings=", "--settings="} {
			if len(arg) > len(prefix) && arg[:len(prefix)] == prefix {
				return arg[len(prefix):]
			}
		}
	}
	return ""
}

// applySettingsFile overlays non-zero settings values onto cfg. A missing
// file is not an error; a malformed file is.
func applySettingsFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if s.InputPath != "" {
		cfg.InputPath = s.InputPath
	}
	if s.OutputDir != "" {
		cfg.OutputDir = s.OutputDir
	}
	if s.MaxSizeGB > 0 {
		cfg.MaxSizeGB = s.MaxSizeGB
	}
	if s.MaxDurationMin > 0 {
		cfg.MaxDurationMin = s.MaxDurationMin
	}
	return nil
}

// WriteSettings persists the effective values back to path atomically
// (temp file in the same directory, then rename).
func WriteSettings(cfg *Config, path string) error {
	s := Settings{
		InputPath:      cfg.InputPath,
		OutputDir:      cfg.OutputDir,
		MaxSizeGB:      cfg.MaxSizeGB,
		MaxDurationMin: cfg.MaxDurationMin,
	}
	data, err := yaml.Marshal(&s)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
