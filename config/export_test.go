// Copyright 2026, Square, Inc.

package config_test

import (
	"bytes"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-test/deep"
	"pgregory.net/rapid"

	"github.com/square/kuyruk/config"
)

func TestWriteDefaults(t *testing.T) {
	var buf bytes.Buffer
	if err := config.New().Write(&buf); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	expect := `EAGER = False
IMPORTS = []
IMPORT_PATH = None
LOGGING_CONFIG = None
LOGGING_LEVEL = "INFO"
MANAGER_HOST = None
MANAGER_HTTP_PORT = 16500
MANAGER_PORT = 16501
MAX_LOAD = None
MAX_RUN_TIME = None
RABBIT_HOST = "localhost"
RABBIT_PASSWORD = "guest"
RABBIT_PORT = 5672
RABBIT_USER = "guest"
SAVE_FAILED_TASKS = False
WORKERS = {}
`
	if diff := deep.Equal(buf.String(), expect); diff != nil {
		t.Error(diff)
	}
}

func TestLiteral(t *testing.T) {
	tests := []struct {
		v      interface{}
		expect string
	}{
		{nil, "None"},
		{true, "True"},
		{false, "False"},
		{42, "42"},
		{-7, "-7"},
		{uint8(3), "3"},
		{2.0, "2.0"},
		{0.25, "0.25"},
		{"a \"quoted\" string", `"a \"quoted\" string"`},
		{strp("x"), `"x"`},
		{(*string)(nil), "None"},
		{[]string{"a", "b"}, `["a", "b"]`},
		{[]interface{}{1, "a", nil}, `[1, "a", None]`},
		{map[string]string{"b": "2", "a": "1"}, `{"a": "1", "b": "2"}`},
		{map[string]interface{}{"k": []interface{}{1.5}}, `{"k": [1.5]}`},
		{math.Inf(1), `float("inf")`},
		{[]float64{math.Inf(-1)}, `[float("-inf")]`},
		{math.NaN(), `float("nan")`},
	}
	for _, tt := range tests {
		if got := config.Literal(tt.v); got != tt.expect {
			t.Errorf("Literal(%#v) = %s, expected %s", tt.v, got, tt.expect)
		}
	}
}

func TestExportOverwrites(t *testing.T) {
	dir, err := ioutil.TempDir("", "kuyruk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "frozen.star")

	long := config.New()
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		long.Set(name, "a long value that makes the first export bigger")
	}
	if err := long.Export(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	if err := config.New().Export(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}

	got, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var expect bytes.Buffer
	config.New().Write(&expect)
	if diff := deep.Equal(string(got), expect.String()); diff != nil {
		t.Error(diff)
	}
}

func TestExportBadPath(t *testing.T) {
	err := config.New().Export(filepath.Join("no", "such", "dir", "frozen.star"))
	if !os.IsNotExist(err) {
		t.Errorf("err = %v, expected a 'file does not exist' error", err)
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "kuyruk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "frozen.star")

	c := config.New()
	c.ImportPath = strp("/srv/app")
	c.Imports = []string{"tasks", "other"}
	c.Eager = true
	c.MaxLoad = fltp(2)
	c.MaxRunTime = fltp(90.5)
	c.Workers = map[string]string{"host1": "a, 2*b", "host2": "c"}
	c.LoggingLevel = "DEBUG"
	c.LoggingConfig = strp("/etc/kuyruk/logging.yaml")
	c.RabbitPort = 5673
	c.ManagerHost = strp("manager.example.com")
	c.Set("FOO", map[string]interface{}{"x": []interface{}{1, 2.5, "s", true, nil}})
	c.Set("RABBIT_USER", 12.5) // raw value of another type

	if err := c.Export(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	got := config.New()
	if err := got.FromFile(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	c.Filename = path
	if diff := deep.Equal(got, c); diff != nil {
		t.Error(diff)
	}
}

func TestExportNonFiniteFloats(t *testing.T) {
	dir, err := ioutil.TempDir("", "kuyruk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "frozen.star")

	c := config.New()
	c.Set("LIMITS", []interface{}{math.Inf(1), math.Inf(-1)})
	c.Set("RATIO", math.NaN())
	if err := c.Export(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	got := config.New()
	if err := got.FromFile(path); err != nil {
		t.Fatalf("err = %s, expected nil", err)
	}
	if diff := deep.Equal(got.Extra["LIMITS"], []interface{}{math.Inf(1), math.Inf(-1)}); diff != nil {
		t.Error(diff)
	}
	if f, ok := got.Extra["RATIO"].(float64); !ok || !math.IsNaN(f) {
		t.Errorf("RATIO = %#v, expected NaN", got.Extra["RATIO"])
	}
}

// Any literal value survives Export then FromFile.
func TestExportRoundTripProperty(t *testing.T) {
	dir, err := ioutil.TempDir("", "kuyruk")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "frozen.star")

	str := rapid.StringMatching(`[a-zA-Z0-9 _./*,"\\-]{0,12}`)
	scalar := rapid.OneOf(
		rapid.Just[interface{}](nil),
		rapid.Map(rapid.Bool(), func(b bool) interface{} { return b }),
		rapid.Map(rapid.IntRange(-1<<40, 1<<40), func(i int) interface{} { return i }),
		rapid.Map(rapid.Float64Range(-1e6, 1e6), func(f float64) interface{} { return f }),
		rapid.Map(str, func(s string) interface{} { return s }),
	)
	value := rapid.OneOf(
		scalar,
		rapid.Map(rapid.SliceOfN(scalar, 0, 4), func(s []interface{}) interface{} {
			if s == nil {
				s = []interface{}{}
			}
			return s
		}),
		rapid.Map(rapid.MapOfN(str, scalar, 0, 4), func(m map[string]interface{}) interface{} {
			if m == nil {
				m = map[string]interface{}{}
			}
			return m
		}),
	)

	rapid.Check(t, func(t *rapid.T) {
		c := config.New()
		c.RabbitHost = str.Draw(t, "host")
		c.RabbitPort = rapid.IntRange(1, 65535).Draw(t, "port")
		c.Eager = rapid.Bool().Draw(t, "eager")
		c.Imports = rapid.SliceOfN(str, 0, 3).Draw(t, "imports")
		c.Workers = rapid.MapOfN(str, str, 0, 3).Draw(t, "workers")
		if c.Imports == nil {
			c.Imports = []string{}
		}
		if c.Workers == nil {
			c.Workers = map[string]string{}
		}
		if rapid.Bool().Draw(t, "has_max_load") {
			c.MaxLoad = fltp(rapid.Float64Range(0, 100).Draw(t, "max_load"))
		}
		extra := rapid.MapOfN(rapid.StringMatching(`X[A-Z_]{0,6}`), value, 0, 3).Draw(t, "extra")
		for name, v := range extra {
			c.Set(name, v)
		}

		if err := c.Export(path); err != nil {
			t.Fatalf("err = %s, expected nil", err)
		}
		got := config.New()
		if err := got.FromFile(path); err != nil {
			t.Fatalf("err = %s, expected nil", err)
		}
		c.Filename = path
		if diff := deep.Equal(got, c); diff != nil {
			t.Fatal(diff)
		}
	})
}
