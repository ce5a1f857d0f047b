/*
Copyright 2026, Square, Inc.

Package config provides the kuyruk settings object shared by the worker, the
master and the manager. A Config is built in three steps:

* New: every recognized option set to its default (see Options)

* FromObject or FromFile: overlay values from a Go value or a settings file

* Export: write the effective values back as "NAME = literal" lines

Only recognized names take part in merging and exporting. A name is
recognized when it has no lower-case letters, has at least one upper-case
letter and does not start with an underscore, so helper bindings such as
"base = 4" in a settings file are ignored.

Settings files ending in .yaml or .yml are plain YAML documents whose
top-level keys are the bindings. Any other file is a Starlark script: a
sandboxed Python dialect, so an exported file can be loaded back as-is and
operators may compute values, e.g.

	WORKERS = {hostname(): "a, %d*b" % cpu_count()}
	MAX_LOAD = float(env("MAX_LOAD", "4"))

Typed fields hold values that coerce to the option's type. A value that does
not coerce is kept verbatim in Config.Extra, which shadows the typed field in
Get and Export, so a bad override is never silently dropped.

Config does no locking. Configure it once at start-up, then hand it to the
components that read it.
*/
package config
