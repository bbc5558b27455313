// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package env provides the environment sources consulted by env fallbacks:
// the process environment, KEY=VALUE env files, and a layered lookup over
// several of them.
package env

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Lookup reports the value of an environment variable and whether it is set.
type Lookup func(string) (string, bool)

// OS returns the process environment lookup.
func OS() Lookup {
	return os.LookupEnv
}

// Map returns a lookup over m.
func Map(m map[string]string) Lookup {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

// Layered returns a lookup that consults each layer in order and returns the
// first hit. Nil layers are skipped.
func Layered(layers ...Lookup) Lookup {
	return func(k string) (string, bool) {
		for _, l := range layers {
			if l == nil {
				continue
			}
			if v, ok := l(k); ok {
				return v, true
			}
		}
		return "", false
	}
}

// Read parses the env file at name.
func Read(name string) (map[string]string, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return m, nil
}

// Parse reads KEY=VALUE lines. Blank lines and lines starting with # are
// ignored, a leading "export " is dropped, and double or single quoted values
// are unquoted.
func Parse(r io.Reader) (map[string]string, error) {
	m := make(map[string]string)
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		k, v, ok := strings.Cut(line, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("line %d: expected KEY=VALUE, got %q", n, line)
		}
		v = strings.TrimSpace(v)
		if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
			if v[0] == '"' {
				uq, err := strconv.Unquote(v)
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", n, err)
				}
				v = uq
			} else {
				v = v[1 : len(v)-1]
			}
		}
		m[k] = v
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Write writes an environment file with the given name and content. e is
// either a map[string]string, written in key order, or a struct whose fields
// carry `env` tags.
func Write(name string, e any) error {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create file: %v", err)
	}
	defer f.Close()
	if err := marshalEnv(f, e); err != nil {
		return fmt.Errorf("failed to marshal env: %v", err)
	}
	return f.Close()
}

func marshalEnv(o io.Writer, e any) error {
	if m, ok := e.(map[string]string); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(o, "%s=%s\n", k, quote(m[k])); err != nil {
				return err
			}
		}
		return nil
	}
	re := reflect.ValueOf(e)
	if re.Kind() == reflect.Ptr {
		re = re.Elem()
	}
	if re.Kind() != reflect.Struct {
		return fmt.Errorf("unsupported env type %T", e)
	}
	ret := re.Type()
	for i := 0; i < re.NumField(); i++ {
		field := re.Field(i)
		tag := ret.Field(i).Tag.Get("env")
		if tag == "" {
			continue
		}
		if field.IsZero() {
			continue
		}
		if _, err := fmt.Fprintf(o, "%s=%s\n", tag, quote(fmt.Sprint(field.Interface()))); err != nil {
			return err
		}
	}
	return nil
}

// quote leaves plain values alone so that files stay readable by shells and
// systemd, and quotes anything Parse would otherwise change.
func quote(v string) string {
	if v == "" || strings.ContainsAny(v, " \t\n\"'#\\") || v != strings.TrimSpace(v) {
		return strconv.Quote(v)
	}
	return v
}
