// Copyright 2026, Square, Inc.

package config

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"sort"

	"go.starlark.net/starlark"
)

// Export writes the effective value of every setting to path, replacing the
// file if it exists. The file can be loaded back with FromFile.
func (c *Config) Export(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes one "NAME = literal" line per setting, sorted by name. Literals
// use the settings file syntax: None, True, False, numbers, quoted strings,
// lists and dicts with sorted keys.
func (c *Config) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, name := range c.Names() {
		v, _ := c.Get(name)
		if _, err := fmt.Fprintf(bw, "%s = %s\n", name, Literal(v)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Literal returns v in settings file syntax.
func Literal(v interface{}) string {
	return ToStarlark(v).String()
}

// ToStarlark converts a Go value to a Starlark value. Maps become dicts with
// keys inserted in sorted order. Values that have no Starlark equivalent are
// converted to their fmt.Sprint string.
func ToStarlark(v interface{}) starlark.Value {
	if v == nil {
		return starlark.None
	}
	if f, ok := v.(starlark.Float); ok {
		return toFloat(float64(f))
	}
	if sv, ok := v.(starlark.Value); ok {
		return sv
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return starlark.None
		}
		return ToStarlark(rv.Elem().Interface())
	case reflect.Bool:
		return starlark.Bool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return starlark.MakeInt64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return starlark.MakeUint64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return toFloat(rv.Float())
	case reflect.String:
		return starlark.String(rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return starlark.NewList(nil)
		}
		elems := make([]starlark.Value, rv.Len())
		for i := range elems {
			elems[i] = ToStarlark(rv.Index(i).Interface())
		}
		return starlark.NewList(elems)
	case reflect.Map:
		type entry struct {
			key, val starlark.Value
		}
		entries := make([]entry, 0, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			entries = append(entries, entry{
				key: ToStarlark(iter.Key().Interface()),
				val: ToStarlark(iter.Value().Interface()),
			})
		}
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].key.String() < entries[j].key.String()
		})
		d := starlark.NewDict(len(entries))
		for _, e := range entries {
			if err := d.SetKey(e.key, e.val); err != nil {
				// Unhashable key, e.g. a list. Fall back to its repr.
				d.SetKey(starlark.String(e.key.String()), e.val)
			}
		}
		return d
	}
	return starlark.String(fmt.Sprint(v))
}

func toFloat(f float64) starlark.Value {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nonFinite(f)
	}
	return starlark.Float(f)
}

// nonFinite is an infinite or NaN float. Starlark prints those as +inf and
// nan, which are not literals, so it is written as a float() call instead.
type nonFinite float64

func (f nonFinite) String() string {
	switch {
	case math.IsNaN(float64(f)):
		return `float("nan")`
	case f > 0:
		return `float("inf")`
	}
	return `float("-inf")`
}

func (f nonFinite) Type() string { return "float" }
func (f nonFinite) Freeze() {}
func (f nonFinite) Truth() starlark.Bool { return starlark.Float(f).Truth() }
func (f nonFinite) Hash() (uint32, error) { return starlark.Float(f).Hash() }
