// Copyright 2026, Square, Inc.

// Package logging configures a logrus logger from the LOGGING_LEVEL and
// LOGGING_CONFIG settings.
package logging

import (
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"github.com/square/kuyruk/config"
	"github.com/square/kuyruk/errors"
)

// File is the format of the file named by LOGGING_CONFIG.
//
//   level: warning
//   format: json
//   output: /var/log/kuyruk/worker.log
//   max_size: 100
//   max_backups: 5
//
type File struct {
	// Level name, see LevelFor. Defaults to info.
	Level string `yaml:"level"`

	// Format is "text" (default) or "json".
	Format string `yaml:"format"`

	// Output is "stderr" (default), "stdout" or a file path. Files are
	// rotated using the fields below.
	Output string `yaml:"output"`

	// Megabytes before a log file is rotated.
	MaxSize int `yaml:"max_size"`

	// Number of rotated files to keep. 0 keeps all of them.
	MaxBackups int `yaml:"max_backups"`

	// Days to keep rotated files. 0 keeps them forever.
	MaxAge int `yaml:"max_age"`

	// Compress rotated files with gzip.
	Compress bool `yaml:"compress"`
}

// Setup applies cfg to logger. If LOGGING_CONFIG is set, the file is loaded
// and LOGGING_LEVEL is ignored. Either setting holding a value of the wrong
// type is an error.
func Setup(logger *logrus.Logger, cfg *config.Config) error {
	if err := cfg.Check("LOGGING_CONFIG", "LOGGING_LEVEL"); err != nil {
		return err
	}
	if cfg.LoggingConfig != nil {
		f, err := LoadFile(*cfg.LoggingConfig)
		if err != nil {
			return err
		}
		return Apply(logger, f)
	}

	level, err := LevelFor(cfg.LoggingLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	return nil
}

// LoadFile reads a logging config file. A file that cannot be read returns an
// errors.ConfigLoadError.
func LoadFile(path string) (File, error) {
	var f File
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return f, errors.NewConfigLoadError(path, err)
	}
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return f, fmt.Errorf("invalid logging config %s: %s", path, err)
	}
	return f, nil
}

// Apply sets the level, formatter and output of logger.
func Apply(logger *logrus.Logger, f File) error {
	level := logrus.InfoLevel
	if f.Level != "" {
		var err error
		if level, err = LevelFor(f.Level); err != nil {
			return err
		}
	}

	var formatter logrus.Formatter
	switch strings.ToLower(f.Format) {
	case "", "text":
		formatter = &logrus.TextFormatter{FullTimestamp: true}
	case "json":
		formatter = &logrus.JSONFormatter{}
	default:
		return fmt.Errorf("invalid log format %q: expected text or json", f.Format)
	}

	var out io.Writer
	switch f.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	default:
		out = &lumberjack.Logger{
			Filename:   f.Output,
			MaxSize:    f.MaxSize,
			MaxBackups: f.MaxBackups,
			MaxAge:     f.MaxAge,
			Compress:   f.Compress,
		}
	}

	logger.SetLevel(level)
	logger.SetFormatter(formatter)
	logger.SetOutput(out)
	return nil
}

// LevelFor maps a level name to a logrus level. Names are case-insensitive
// and include DEBUG, INFO, WARNING, ERROR and CRITICAL as well as the logrus
// names.
func LevelFor(name string) (logrus.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "critical":
		return logrus.FatalLevel, nil
	case "notset":
		return logrus.TraceLevel, nil
	}
	level, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return level, fmt.Errorf("invalid logging level %q", name)
	}
	return level, nil
}
