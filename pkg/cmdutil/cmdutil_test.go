// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"y", true},
		{"yep\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		got, err := Confirm(strings.NewReader(tt.in), &out, "Remove svc?")
		if err != nil {
			t.Errorf("Confirm(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if out.String() != "Remove svc? [y/N]: " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("tty gone") }

func TestConfirm_ReadError(t *testing.T) {
	_, err := Confirm(failingReader{}, &bytes.Buffer{}, "ok?")
	if err == nil || !strings.Contains(err.Error(), "tty gone") {
		t.Errorf("error = %v", err)
	}
}

func TestCommandLine(t *testing.T) {
	got := CommandLine("sh", "-c", "echo 'hi' $HOME", "", "plain")
	want := `sh -c 'echo '\''hi'\'' $HOME' '' plain`
	if got != want {
		t.Errorf("CommandLine = %s, want %s", got, want)
	}
}

func TestNewStdCmd(t *testing.T) {
	cmd := NewStdCmd(context.Background(), "echo", "a", "b")
	if want := []string{"echo", "a", "b"}; !reflect.DeepEqual(cmd.Args, want) {
		t.Errorf("Args = %q, want %q", cmd.Args, want)
	}
	if cmd.Stdout == nil || cmd.Stderr == nil || cmd.Stdin == nil {
		t.Errorf("standard streams not attached")
	}
}
