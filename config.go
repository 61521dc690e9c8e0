package main

import (
	"io/ioutil"
	"strings"

	"github.com/coreos/pkg/capnslog"
	"github.com/urfave/cli/v2"
	"github.com/ztrue/tracerr"
	"gopkg.in/yaml.v2"
)

type config struct {
	LogLevel string `yaml:"log_level"`
	Trace    bool   `yaml:"trace"`
	Symbols  string `yaml:"symbols"`
}

func defaultConfig() config {
	return config{LogLevel: "WARNING"}
}

func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return cfg, tracerr.Wrap(err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, tracerr.Wrap(err)
	}
	return cfg, nil
}

// setup reads the config file, lets flags override it and applies logging.
func setup(c *cli.Context) (config, error) {
	cfg, err := loadConfig(c.String("config"))
	if err != nil {
		return cfg, cli.Exit("error reading config: "+err.Error(), 1)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("trace") {
		cfg.Trace = c.Bool("trace")
	}
	if c.IsSet("symbols") {
		cfg.Symbols = c.String("symbols")
	}

	level, err := capnslog.ParseLevel(strings.ToUpper(cfg.LogLevel))
	if err != nil {
		return cfg, cli.Exit(err.Error(), 1)
	}
	capnslog.SetFormatter(capnslog.NewPrettyFormatter(c.App.ErrWriter, cfg.Trace))
	capnslog.SetGlobalLogLevel(level)
	return cfg, nil
}
