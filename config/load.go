// Copyright 2026, Square, Inc.

package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"gopkg.in/yaml.v2"

	"github.com/square/kuyruk/errors"
)

// Bindings is implemented by sources that know their own named values, like
// the globals of an evaluated settings file.
type Bindings interface {
	Bindings() map[string]interface{}
}

// StringDict adapts the globals of a Starlark module to Bindings.
type StringDict starlark.StringDict

func (d StringDict) Bindings() map[string]interface{} {
	m := make(map[string]interface{}, len(d))
	for k, v := range d {
		m[k] = FromStarlark(v)
	}
	return m
}

// FromObject sets every recognized name exposed by source onto c. source is
// a Bindings, a map with string keys, or a struct (or pointer to one) whose
// exported fields are named by a `kuyruk:"NAME"` tag or the field name.
// Other names are ignored. Values are stored verbatim, see Set.
func (c *Config) FromObject(source interface{}) {
	bindings := attributes(source)
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		if Recognized(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		c.Set(name, bindings[name])
	}
	log.WithField("settings", len(names)).Infof("Config is loaded from %s", describe(source))
}

// FromFile evaluates a settings file and merges its top-level bindings with
// FromObject. Filename is set to path before the file is read. A file that
// cannot be read returns an errors.ConfigLoadError. Syntax and evaluation
// errors are returned as-is, and nothing is merged.
func (c *Config) FromFile(path string) error {
	c.Filename = path

	src, err := ioutil.ReadFile(path)
	if err != nil {
		return errors.NewConfigLoadError(path, err)
	}

	var source interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err := evalYAML(src)
		if err != nil {
			return err
		}
		source = yamlSource{path: path, m: m}
	default:
		globals, err := evalStarlark(path, src)
		if err != nil {
			return err
		}
		source = fileSource{path: path, StringDict: StringDict(globals)}
	}
	c.FromObject(source)
	return nil
}

// --------------------------------------------------------------------------

type fileSource struct {
	path string
	StringDict
}

func (s fileSource) String() string { return s.path }

type yamlSource struct {
	path string
	m    map[string]interface{}
}

func (s yamlSource) Bindings() map[string]interface{} { return s.m }
func (s yamlSource) String() string                   { return s.path }

func describe(source interface{}) string {
	if s, ok := source.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", source)
}

func attributes(source interface{}) map[string]interface{} {
	if source == nil {
		return nil
	}
	if b, ok := source.(Bindings); ok {
		return b.Bindings()
	}
	if m, ok := source.(map[string]interface{}); ok {
		return m
	}

	v := reflect.ValueOf(source)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	attrs := map[string]interface{}{}
	switch v.Kind() {
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil
		}
		iter := v.MapRange()
		for iter.Next() {
			attrs[iter.Key().String()] = iter.Value().Interface()
		}
	case reflect.Struct:
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.PkgPath != "" { // unexported
				continue
			}
			name := f.Name
			if tag := f.Tag.Get("kuyruk"); tag != "" {
				name = tag
			}
			attrs[name] = v.Field(i).Interface()
		}
	}
	return attrs
}

///////////////////////////////////////////////////////////////////////////////
// YAML
///////////////////////////////////////////////////////////////////////////////

func evalYAML(src []byte) (map[string]interface{}, error) {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, err
	}
	for k, v := range doc {
		doc[k] = normalizeYAML(v)
	}
	return doc, nil
}

// normalizeYAML converts the map[interface{}]interface{} values yaml.v2
// produces for nested mappings to map[string]interface{}.
func normalizeYAML(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, e := range t {
			m[fmt.Sprint(k)] = normalizeYAML(e)
		}
		return m
	case []interface{}:
		for i := range t {
			t[i] = normalizeYAML(t[i])
		}
		return t
	}
	return v
}

///////////////////////////////////////////////////////////////////////////////
// Starlark
///////////////////////////////////////////////////////////////////////////////

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// evalStarlark runs a settings script in a new thread with fresh globals.
// The script can only reach the process through the predeclared helpers.
func evalStarlark(path string, src []byte) (starlark.StringDict, error) {
	thread := &starlark.Thread{
		Name: "config " + path,
		Print: func(_ *starlark.Thread, msg string) {
			log.WithField("file", path).Debug(msg)
		},
		Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
			return nil, fmt.Errorf("load(%q): not allowed in settings files", module)
		},
	}
	return starlark.ExecFileOptions(fileOptions, thread, path, src, predeclared())
}

func predeclared() starlark.StringDict {
	return starlark.StringDict{
		"env":       starlark.NewBuiltin("env", builtinEnv),
		"hostname":  starlark.NewBuiltin("hostname", builtinHostname),
		"cpu_count": starlark.NewBuiltin("cpu_count", builtinCPUCount),
	}
}

// env(name, default=None) returns the environment variable or default.
func builtinEnv(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	var def starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "name", &name, "default?", &def); err != nil {
		return nil, err
	}
	if val, ok := os.LookupEnv(name); ok {
		return starlark.String(val), nil
	}
	return def, nil
}

func builtinHostname(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("%s: %s", b.Name(), err)
	}
	return starlark.String(host), nil
}

func builtinCPUCount(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}
	return starlark.MakeInt(runtime.NumCPU()), nil
}

// FromStarlark converts a Starlark value to its Go equivalent: None is nil,
// lists and tuples are []interface{}, dicts are map[string]interface{}.
// Values with no Go equivalent, like functions, are returned unchanged.
func FromStarlark(v starlark.Value) interface{} {
	switch t := v.(type) {
	case starlark.NoneType:
		return nil
	case starlark.Bool:
		return bool(t)
	case starlark.Int:
		if i, ok := t.Int64(); ok && int64(int(i)) == i {
			return int(i)
		}
		return t
	case starlark.Float:
		return float64(t)
	case starlark.String:
		return string(t)
	case *starlark.List:
		s := make([]interface{}, t.Len())
		for i := range s {
			s[i] = FromStarlark(t.Index(i))
		}
		return s
	case starlark.Tuple:
		s := make([]interface{}, len(t))
		for i := range t {
			s[i] = FromStarlark(t[i])
		}
		return s
	case *starlark.Dict:
		m := make(map[string]interface{}, t.Len())
		for _, kv := range t.Items() {
			key := kv[0].String()
			if s, ok := kv[0].(starlark.String); ok {
				key = string(s)
			}
			m[key] = FromStarlark(kv[1])
		}
		return m
	}
	return v
}
