// Copyright 2026, Square, Inc.

package logging_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/square/kuyruk/config"
	serr "github.com/square/kuyruk/errors"
	"github.com/square/kuyruk/logging"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		name   string
		expect logrus.Level
	}{
		{"DEBUG", logrus.DebugLevel},
		{"INFO", logrus.InfoLevel},
		{"WARNING", logrus.WarnLevel},
		{"warn", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"CRITICAL", logrus.FatalLevel},
		{"NOTSET", logrus.TraceLevel},
		{" trace ", logrus.TraceLevel},
	}
	for _, tt := range tests {
		got, err := logging.LevelFor(tt.name)
		if err != nil {
			t.Errorf("LevelFor(%q): err = %s, expected nil", tt.name, err)
		}
		if got != tt.expect {
			t.Errorf("LevelFor(%q) = %s, expected %s", tt.name, got, tt.expect)
		}
	}

	if _, err := logging.LevelFor("LOUD"); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestSetupLevel(t *testing.T) {
	logger := logrus.New()
	cfg := config.New()
	cfg.LoggingLevel = "WARNING"
	if err := logging.Setup(logger, cfg); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	if logger.GetLevel() != logrus.WarnLevel {
		t.Errorf("level = %s, expected warning", logger.GetLevel())
	}

	cfg.LoggingLevel = "nope"
	if err := logging.Setup(logger, cfg); err == nil {
		t.Error("expected an error, did not get one")
	}
}

func TestSetupConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "kuyruk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	logFile := filepath.Join(dir, "worker.log")
	cfgFile := filepath.Join(dir, "logging.yaml")
	content := "level: error\nformat: json\noutput: " + logFile + "\nmax_size: 1\n"
	if err := ioutil.WriteFile(cfgFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	logger := logrus.New()
	cfg := config.New()
	cfg.LoggingLevel = "DEBUG" // ignored, the file takes precedence
	cfg.LoggingConfig = &cfgFile
	if err := logging.Setup(logger, cfg); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	if logger.GetLevel() != logrus.ErrorLevel {
		t.Errorf("level = %s, expected error", logger.GetLevel())
	}

	logger.Error("worker failed")
	logger.Info("not written")

	data, err := ioutil.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"worker failed"`) {
		t.Errorf("log file = %q, expected a json entry for 'worker failed'", out)
	}
	if strings.Contains(out, "not written") {
		t.Errorf("log file = %q, info entry should be filtered", out)
	}
}

func TestSetupMissingConfigFile(t *testing.T) {
	missing := "/nonexistant/logging.yaml"
	cfg := config.New()
	cfg.LoggingConfig = &missing
	err := logging.Setup(logrus.New(), cfg)
	if _, ok := err.(serr.ConfigLoadError); !ok {
		t.Errorf("err = %v, expected errors.ConfigLoadError", err)
	}
}

func TestSetupShadowedSetting(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	cfg := config.New()
	cfg.Set("LOGGING_LEVEL", "DEBUG")
	cfg.Set("LOGGING_LEVEL", 10)
	err := logging.Setup(logger, cfg)
	if e, ok := err.(serr.InvalidSetting); !ok || e.Name != "LOGGING_LEVEL" {
		t.Errorf("err = %v, expected errors.InvalidSetting for LOGGING_LEVEL", err)
	}
	if logger.GetLevel() != logrus.InfoLevel {
		t.Errorf("level = %s, expected it unchanged", logger.GetLevel())
	}

	cfg = config.New()
	cfg.Set("LOGGING_CONFIG", []interface{}{"a.yaml"})
	if _, ok := logging.Setup(logger, cfg).(serr.InvalidSetting); !ok {
		t.Error("expected errors.InvalidSetting for LOGGING_CONFIG")
	}
}

func TestApplyInvalid(t *testing.T) {
	if err := logging.Apply(logrus.New(), logging.File{Format: "xml"}); err == nil {
		t.Error("expected an error, did not get one")
	}
	if err := logging.Apply(logrus.New(), logging.File{Level: "loud"}); err == nil {
		t.Error("expected an error, did not get one")
	}
}
