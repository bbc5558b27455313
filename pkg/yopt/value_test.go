// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"net/netip"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestConvert(t *testing.T) {
	if got, err := convert[Port]("8080"); err != nil || got != 8080 {
		t.Errorf("Port: got %d, %v", got, err)
	}
	if _, err := convert[Port]("70000"); err == nil || !strings.Contains(err.Error(), "between 1 and 65535") {
		t.Errorf("Port out of range: error = %v", err)
	}
	if _, err := convert[Port]("0"); err == nil {
		t.Errorf("Port 0 accepted")
	}
	if got, err := convert[time.Duration]("1m30s"); err != nil || got != 90*time.Second {
		t.Errorf("Duration: got %v, %v", got, err)
	}
	if got, err := convert[int8]("-12"); err != nil || got != -12 {
		t.Errorf("int8: got %d, %v", got, err)
	}
	if _, err := convert[int8]("300"); err == nil {
		t.Errorf("int8 overflow accepted")
	}
	if got, err := convert[uint]("7"); err != nil || got != 7 {
		t.Errorf("uint: got %d, %v", got, err)
	}
	if got, err := convert[float64]("2.5"); err != nil || got != 2.5 {
		t.Errorf("float64: got %v, %v", got, err)
	}
	if got, err := convert[bool]("true"); err != nil || !got {
		t.Errorf("bool: got %v, %v", got, err)
	}
	if got, err := convert[*int]("3"); err != nil || got == nil || *got != 3 {
		t.Errorf("*int: got %v, %v", got, err)
	}
	if got, err := convert[*url.URL]("https://example.com/x"); err != nil || got.Host != "example.com" {
		t.Errorf("*url.URL: got %v, %v", got, err)
	}
	if got, err := convert[url.URL]("http://h:1"); err != nil || got.Port() != "1" {
		t.Errorf("url.URL: got %v, %v", got, err)
	}
	if got, err := convert[netip.Addr]("10.0.0.1"); err != nil || got != netip.MustParseAddr("10.0.0.1") {
		t.Errorf("netip.Addr: got %v, %v", got, err)
	}
	if _, err := convert[[]int]("1,2"); err == nil {
		t.Errorf("unsupported type accepted")
	}
}

func TestArgument_ConversionError(t *testing.T) {
	_, err := run[int](t, Argument[int](Long("n"), "N"), "--n", "abc")
	if err == nil || !strings.HasPrefix(err.Error(), "couldn't parse `abc`: invalid int value") {
		t.Fatalf("error = %v", err)
	}
}
