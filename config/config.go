// Package config loads the settings of the simplefs driver: a YAML file,
// overlaid with SIMPLEFS_* environment variables.
package config

import (
	"fmt"
	"io/ioutil"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"github.com/mit-pdos/go-simplefs/disk"
)

const EnvVarPrefix = "SIMPLEFS"

type Config struct {
	// Image is the path of the disk image file.
	Image string `envconfig:"SIMPLEFS_IMAGE" yaml:"image"`

	// Blocks sizes the image. Zero keeps the size of an existing image.
	Blocks uint64 `envconfig:"SIMPLEFS_BLOCKS" yaml:"blocks"`

	// Debug is the highest util.DPrintf level printed.
	Debug uint64 `envconfig:"SIMPLEFS_DEBUG" yaml:"debug"`
}

// Load reads the config file at path, if path is not empty, and then applies
// the environment.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.UnmarshalStrict(data, &c); err != nil {
			return nil, fmt.Errorf("unmarshaling config file `%s`: %w", path, err)
		}
	}

	if err := envconfig.Process(EnvVarPrefix, &c); err != nil {
		return nil, fmt.Errorf("parsing environment variables: %w", err)
	}
	return &c, nil
}

func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf(
			"missing required configuration: image / %s_IMAGE",
			EnvVarPrefix,
		)
	}
	return nil
}

// OpenDisk opens the image, creating or resizing it when Blocks is set.
func (c *Config) OpenDisk() (*disk.FileDisk, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Blocks == 0 {
		return disk.OpenFileDisk(c.Image)
	}
	return disk.NewFileDisk(c.Image, c.Blocks)
}
