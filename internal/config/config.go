package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"justapengu.in/lapeda/pkg/sessioncleaner"
)

const DefaultPath = "./lapeda.yml"

type Config struct {
	Input    string `json:"input" yaml:"input" env:"INPUT"`
	Driver   string `json:"driver" yaml:"driver" env:"DRIVER"`
	Output   string `json:"output" yaml:"output" env:"OUTPUT"`
	Format   string `json:"format" yaml:"format" env:"FORMAT"`
	LogLevel string `json:"log_level" yaml:"log_level" env:"LOG_LEVEL"`

	Clean  sessioncleaner.Options `json:"clean" yaml:"clean" envPrefix:"CLEAN_"`
	Server ServerConfig           `json:"server" yaml:"server" envPrefix:"SERVER_"`
}

type ServerConfig struct {
	Listen string `json:"listen" yaml:"listen" env:"LISTEN"`
}

func Default() *Config {
	return &Config{
		LogLevel: "info",
		Clean: sessioncleaner.Options{
			Verbose: true,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies LAPEDA_
// environment variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	conf := Default()

	f, err := os.Open(path)

	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "config: could not open %s", path)
	} else if err == nil {
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(conf); err != nil {
			return nil, errors.Wrapf(err, "config: could not decode %s", path)
		}
	}

	if err := env.ParseWithOptions(conf, env.Options{Prefix: "LAPEDA_"}); err != nil {
		return nil, errors.Wrap(err, "config: could not parse environment")
	}

	return conf, nil
}

func (c *Config) Level() logrus.Level {
	level, err := logrus.ParseLevel(c.LogLevel)

	if err != nil {
		return logrus.InfoLevel
	}

	return level
}
