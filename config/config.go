// Copyright 2026, Square, Inc.

package config

import (
	"math"
	"net"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"unicode"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/square/kuyruk/errors"
)

const (
	// DefaultQueue is consumed by a host that has no WORKERS entry.
	DefaultQueue = "kuyruk"

	// FailedQueue receives failed tasks when SAVE_FAILED_TASKS is set.
	FailedQueue = "kuyruk_failed"
)

///////////////////////////////////////////////////////////////////////////////
// Config
///////////////////////////////////////////////////////////////////////////////

// Config holds every kuyruk setting. Create one with New, which sets the
// defaults documented on each field. Optional settings are pointers; nil
// means the setting is absent (None in a settings file).
type Config struct {
	// Filename is the settings file the config was loaded from. It is set by
	// FromFile only and is empty otherwise.
	Filename string

	// --
	// Worker options
	// --

	// IMPORT_PATH: worker imports tasks from this directory.
	ImportPath *string

	// IMPORTS: by default the worker imports task modules lazily when it
	// receives a task. Modules listed here are imported at worker start.
	Imports []string

	// EAGER: run tasks in the calling process without sending them to the
	// queue. Useful in tests.
	Eager bool

	// MAX_LOAD: stop consuming the queue when the system load goes above
	// this level.
	MaxLoad *float64

	// MAX_RUN_TIME: gracefully shut down the worker after running this many
	// seconds. The master notices the exit and spawns a new worker with an
	// identical config, which can be used to pick up new application code.
	MaxRunTime *float64

	// SAVE_FAILED_TASKS: save failed tasks to FailedQueue for inspecting and
	// requeueing later.
	SaveFailedTasks bool

	// WORKERS: hostname to queue assignment. Values are comma separated
	// queue names, optionally prefixed with a process count:
	//
	//   {"host1.example.com": "a, 2*b"}
	//
	// runs 3 worker processes on host1, 1 for "a" and 2 for "b". Hosts
	// without an entry run a single worker for DefaultQueue.
	Workers map[string]string

	// LOGGING_LEVEL: level of the root logger.
	LoggingLevel string

	// LOGGING_CONFIG: logging configuration file. Takes precedence over
	// LOGGING_LEVEL.
	LoggingConfig *string

	// --
	// Connection options
	// --

	RabbitHost     string // RABBIT_HOST
	RabbitPort     int    // RABBIT_PORT
	RabbitUser     string // RABBIT_USER
	RabbitPassword string // RABBIT_PASSWORD

	// --
	// Manager options
	// --

	// MANAGER_HOST: manager host that workers connect to and send stats.
	ManagerHost *string

	// MANAGER_PORT: manager port that workers connect to and send stats.
	ManagerPort int

	// MANAGER_HTTP_PORT: port the manager HTTP application runs on.
	ManagerHTTPPort int

	// Extra holds recognized settings that have no typed field, and values
	// for typed settings that could not be coerced to the field's type. An
	// entry here shadows the typed field of the same name.
	Extra map[string]interface{}
}

// New returns a Config with every setting at its default value.
func New() *Config {
	return &Config{
		Imports:         []string{},
		Workers:         map[string]string{},
		LoggingLevel:    "INFO",
		RabbitHost:      "localhost",
		RabbitPort:      5672,
		RabbitUser:      "guest",
		RabbitPassword:  "guest",
		ManagerPort:     16501,
		ManagerHTTPPort: 16500,
		Extra:           map[string]interface{}{},
	}
}

// Get returns the effective value of a setting. Absent optional settings
// return a nil value. The bool is false if the name is neither in the schema
// nor set on c.
func (c *Config) Get(name string) (interface{}, bool) {
	if v, ok := c.Extra[name]; ok {
		return v, true
	}
	opt, ok := schema[name]
	if !ok {
		return nil, false
	}
	return opt.get(c), true
}

// Set assigns a value to a recognized setting. Values for typed settings are
// coerced to the field's type; a value that does not coerce is kept as-is in
// Extra and the typed field is reset to its default. Set is a no-op returning
// false for names that are not recognized.
func (c *Config) Set(name string, value interface{}) bool {
	if !Recognized(name) {
		return false
	}
	if c.Extra == nil {
		c.Extra = map[string]interface{}{}
	}
	opt, ok := schema[name]
	if ok && opt.set(c, value) {
		delete(c.Extra, name)
		return true
	}
	if ok {
		log.Warnf("config: %s = %#v does not fit a %s setting, keeping value as-is", name, value, opt.kind)
		opt.set(c, opt.Default())
	}
	c.Extra[name] = value
	return true
}

// Check returns an errors.InvalidSetting for the first of names whose value
// is held in Extra because it did not fit the typed field. Code that reads
// typed fields directly calls Check first.
func (c *Config) Check(names ...string) error {
	for _, name := range names {
		opt, ok := schema[name]
		if !ok {
			continue
		}
		if v, shadowed := c.Extra[name]; shadowed {
			return errors.InvalidSetting{Name: name, Kind: opt.kind, Value: v}
		}
	}
	return nil
}

// Names returns the names of every setting on c, sorted: the schema plus
// anything in Extra.
func (c *Config) Names() []string {
	names := make([]string, 0, len(options)+len(c.Extra))
	for _, opt := range options {
		names = append(names, opt.Name)
	}
	for name := range c.Extra {
		if _, ok := schema[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// BrokerURL returns the AMQP URL for the RABBIT_* settings. It fails if one of
// them holds a value of the wrong type.
func (c *Config) BrokerURL() (string, error) {
	if err := c.Check("RABBIT_HOST", "RABBIT_PASSWORD", "RABBIT_PORT", "RABBIT_USER"); err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: "amqp",
		User:   url.UserPassword(c.RabbitUser, c.RabbitPassword),
		Host:   net.JoinHostPort(c.RabbitHost, strconv.Itoa(c.RabbitPort)),
		Path:   "/",
	}
	return u.String(), nil
}

// Recognized returns true if name can be a setting: it has at least one
// upper-case letter, no lower-case letters, and no leading underscore.
func Recognized(name string) bool {
	if name == "" || strings.HasPrefix(name, "_") {
		return false
	}
	cased := false
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

///////////////////////////////////////////////////////////////////////////////
// Schema
///////////////////////////////////////////////////////////////////////////////

// Option describes one setting of the schema.
type Option struct {
	Name string
	Doc  string

	kind string
	get  func(*Config) interface{}
	set  func(*Config, interface{}) bool
}

// Default returns the option's default value.
func (o Option) Default() interface{} {
	return o.get(New())
}

// Options returns the schema in name order.
func Options() []Option {
	return append([]Option(nil), options...)
}

// Default returns the default value of a schema option.
func Default(name string) (interface{}, bool) {
	opt, ok := schema[name]
	if !ok {
		return nil, false
	}
	return opt.Default(), true
}

var options = []Option{
	{
		Name: "EAGER", Doc: "Run tasks in the process without sending to queue.", kind: "bool",
		get: func(c *Config) interface{} { return c.Eager },
		set: func(c *Config, v interface{}) bool { return toBool(&c.Eager, v) },
	},
	{
		Name: "IMPORTS", Doc: "Task modules imported when the worker is started.", kind: "list of strings",
		get: func(c *Config) interface{} { return c.Imports },
		set: func(c *Config, v interface{}) bool { return toStringSlice(&c.Imports, v) },
	},
	{
		Name: "IMPORT_PATH", Doc: "Worker imports tasks from this directory.", kind: "string or None",
		get: func(c *Config) interface{} { return derefString(c.ImportPath) },
		set: func(c *Config, v interface{}) bool { return toOptString(&c.ImportPath, v) },
	},
	{
		Name: "LOGGING_CONFIG", Doc: "Logging configuration file. Takes precedence over LOGGING_LEVEL.", kind: "string or None",
		get: func(c *Config) interface{} { return derefString(c.LoggingConfig) },
		set: func(c *Config, v interface{}) bool { return toOptString(&c.LoggingConfig, v) },
	},
	{
		Name: "LOGGING_LEVEL", Doc: "Logging level of the root logger.", kind: "string",
		get: func(c *Config) interface{} { return c.LoggingLevel },
		set: func(c *Config, v interface{}) bool { return toString(&c.LoggingLevel, v) },
	},
	{
		Name: "MANAGER_HOST", Doc: "Manager host that the workers connect and send stats to.", kind: "string or None",
		get: func(c *Config) interface{} { return derefString(c.ManagerHost) },
		set: func(c *Config, v interface{}) bool { return toOptString(&c.ManagerHost, v) },
	},
	{
		Name: "MANAGER_HTTP_PORT", Doc: "Manager HTTP port.", kind: "int",
		get: func(c *Config) interface{} { return c.ManagerHTTPPort },
		set: func(c *Config, v interface{}) bool { return toInt(&c.ManagerHTTPPort, v) },
	},
	{
		Name: "MANAGER_PORT", Doc: "Manager port that the workers connect and send stats to.", kind: "int",
		get: func(c *Config) interface{} { return c.ManagerPort },
		set: func(c *Config, v interface{}) bool { return toInt(&c.ManagerPort, v) },
	},
	{
		Name: "MAX_LOAD", Doc: "Stop consuming queue when the load goes above this level.", kind: "float or None",
		get: func(c *Config) interface{} { return derefFloat(c.MaxLoad) },
		set: func(c *Config, v interface{}) bool { return toOptFloat(&c.MaxLoad, v) },
	},
	{
		Name: "MAX_RUN_TIME", Doc: "Gracefully shutdown worker after running this many seconds.", kind: "float or None",
		get: func(c *Config) interface{} { return derefFloat(c.MaxRunTime) },
		set: func(c *Config, v interface{}) bool { return toOptFloat(&c.MaxRunTime, v) },
	},
	{
		Name: "RABBIT_HOST", Doc: "Broker host.", kind: "string",
		get: func(c *Config) interface{} { return c.RabbitHost },
		set: func(c *Config, v interface{}) bool { return toString(&c.RabbitHost, v) },
	},
	{
		Name: "RABBIT_PASSWORD", Doc: "Broker password.", kind: "string",
		get: func(c *Config) interface{} { return c.RabbitPassword },
		set: func(c *Config, v interface{}) bool { return toString(&c.RabbitPassword, v) },
	},
	{
		Name: "RABBIT_PORT", Doc: "Broker port.", kind: "int",
		get: func(c *Config) interface{} { return c.RabbitPort },
		set: func(c *Config, v interface{}) bool { return toInt(&c.RabbitPort, v) },
	},
	{
		Name: "RABBIT_USER", Doc: "Broker user.", kind: "string",
		get: func(c *Config) interface{} { return c.RabbitUser },
		set: func(c *Config, v interface{}) bool { return toString(&c.RabbitUser, v) },
	},
	{
		Name: "SAVE_FAILED_TASKS", Doc: "Save failed tasks to a queue for inspecting and requeueing later.", kind: "bool",
		get: func(c *Config) interface{} { return c.SaveFailedTasks },
		set: func(c *Config, v interface{}) bool { return toBool(&c.SaveFailedTasks, v) },
	},
	{
		Name: "WORKERS", Doc: "Hostnames and the queues their workers consume.", kind: "dict of strings",
		get: func(c *Config) interface{} { return c.Workers },
		set: func(c *Config, v interface{}) bool { return toStringMap(&c.Workers, v) },
	},
}

var schema = map[string]Option{}

func init() {
	for _, opt := range options {
		schema[opt.Name] = opt
	}
}

// --------------------------------------------------------------------------
// Coercion. Each helper returns false, leaving dst untouched, when v does not
// fit the destination type.

func toString(dst *string, v interface{}) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	*dst = s
	return true
}

func toOptString(dst **string, v interface{}) bool {
	if p, ok := v.(*string); ok {
		if p == nil {
			v = nil
		} else {
			v = *p
		}
	}
	if v == nil {
		*dst = nil
		return true
	}
	var s string
	if !toString(&s, v) {
		return false
	}
	*dst = &s
	return true
}

func toBool(dst *bool, v interface{}) bool {
	b, ok := v.(bool)
	if !ok {
		return false
	}
	*dst = b
	return true
}

func toInt(dst *int, v interface{}) bool {
	switch n := v.(type) {
	case nil, bool:
		return false
	case float32:
		if float64(n) != math.Trunc(float64(n)) {
			return false
		}
	case float64:
		if n != math.Trunc(n) {
			return false
		}
	case string:
		// Decimal only: no octal or hex prefixes.
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return false
		}
		*dst = i
		return true
	}
	i, err := cast.ToIntE(v)
	if err != nil {
		return false
	}
	*dst = i
	return true
}

func toOptFloat(dst **float64, v interface{}) bool {
	switch v.(type) {
	case nil:
		*dst = nil
		return true
	case bool:
		return false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return false
	}
	*dst = &f
	return true
}

func toStringSlice(dst *[]string, v interface{}) bool {
	if v == nil {
		return false
	}
	if k := reflect.TypeOf(v).Kind(); k != reflect.Slice && k != reflect.Array {
		return false
	}
	rv := reflect.ValueOf(v)
	for i := 0; i < rv.Len(); i++ {
		if _, ok := rv.Index(i).Interface().(string); !ok {
			return false
		}
	}
	s, err := cast.ToStringSliceE(v)
	if err != nil {
		return false
	}
	if s == nil {
		s = []string{}
	}
	*dst = s
	return true
}

func toStringMap(dst *map[string]string, v interface{}) bool {
	if v == nil || reflect.TypeOf(v).Kind() != reflect.Map {
		return false
	}
	iter := reflect.ValueOf(v).MapRange()
	for iter.Next() {
		if _, ok := iter.Key().Interface().(string); !ok {
			return false
		}
		if _, ok := iter.Value().Interface().(string); !ok {
			return false
		}
	}
	m, err := cast.ToStringMapStringE(v)
	if err != nil {
		return false
	}
	*dst = m
	return true
}

func derefString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func derefFloat(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}
