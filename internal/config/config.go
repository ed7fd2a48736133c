package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the optional config.yaml file.
type Config struct {
	// PNGPath is the directory scanned when no -in flag is given.
	PNGPath string `yaml:"png_path"`
	// OutDir is the default output directory.
	OutDir string `yaml:"out_dir"`
	// Format is the default output format (ppm or bmp).
	Format string `yaml:"format"`
}

// Load reads config.yaml from the working directory. A missing file is not an
// error; it yields a zero-value config and flags/defaults take over.
func Load() (*Config, error) {
	configPath := "config.yaml"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ResolveInputPath resolves the input path, joining bare filenames onto the
// configured png_path when one is set.
func ResolveInputPath(inputPath string, config *Config) string {
	if filepath.IsAbs(inputPath) || strings.Contains(inputPath, string(filepath.Separator)) {
		return inputPath
	}
	if config != nil && config.PNGPath != "" {
		return filepath.Join(config.PNGPath, inputPath)
	}
	return inputPath
}
