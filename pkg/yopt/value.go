// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"encoding"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"
)

// Port is a uint16 network port. Zero is rejected.
type Port uint16

func parsePort(s string) (Port, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("port must be between 1 and 65535, got %q", s)
		}
		return 0, fmt.Errorf("invalid port value %q", s)
	}
	if v == 0 {
		return 0, fmt.Errorf("port must be between 1 and 65535, got %q", s)
	}
	return Port(v), nil
}

var (
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	durationType        = reflect.TypeOf(time.Duration(0))
	portType            = reflect.TypeOf(Port(0))
	urlType             = reflect.TypeOf(url.URL{})
)

// convert parses s into a T.
func convert[T any](s string) (T, error) {
	var out T
	if err := setValue(reflect.ValueOf(&out).Elem(), s); err != nil {
		return out, err
	}
	return out, nil
}

// setValue stores the parsed form of s in v.
func setValue(v reflect.Value, s string) error {
	if v.CanAddr() && v.Addr().Type().Implements(textUnmarshalerType) {
		return v.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s))
	}

	switch v.Type() {
	case portType:
		p, err := parsePort(s)
		if err != nil {
			return err
		}
		v.SetUint(uint64(p))
		return nil
	case durationType:
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		v.SetInt(int64(d))
		return nil
	case urlType:
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("invalid URL %q: %w", s, err)
		}
		v.Set(reflect.ValueOf(*u))
		return nil
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid bool value %q: %w", s, err)
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(s, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid int value %q: %w", s, err)
		}
		v.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(s, 10, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid uint value %q: %w", s, err)
		}
		v.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float value %q: %w", s, err)
		}
		v.SetFloat(f)
	case reflect.Pointer:
		elem := reflect.New(v.Type().Elem())
		if err := setValue(elem.Elem(), s); err != nil {
			return err
		}
		v.Set(elem)
	default:
		return fmt.Errorf("unsupported value type %s", v.Type())
	}
	return nil
}
