// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/yopt/pkg/env"
	"github.com/yeetrun/yopt/pkg/yopt"
)

func parse(environ map[string]string, args ...string) (globals, error) {
	opts := newParser(yopt.Choices("api", "web"))
	return opts.RunInner(yopt.NewArgs(args...).SetEnv(env.Map(environ)))
}

func TestParse(t *testing.T) {
	release := uuid.MustParse("9b2f6a52-3c1e-4f5e-8d7a-0c4b1e2f3a4b")
	tests := []struct {
		name    string
		environ map[string]string
		args    []string
		want    globals
	}{
		{
			name: "defaults",
			args: []string{"run", "api", "./bin"},
			want: globals{host: "catch", root: ".svcctl", cmd: runCmd{svc: "api", payload: "./bin", net: "svc"}},
		},
		{
			name: "run with everything",
			args: []string{"run", "--net", "ts", "--ts-ver", "1.60.0", "-p", "80", "-p", "443", "--pull", "api", "./bin", "--", "--flag", "x"},
			want: globals{host: "catch", root: ".svcctl", cmd: runCmd{
				svc:     "api",
				payload: "./bin",
				net:     "ts",
				tsVer:   semver.MustParse("1.60.0"),
				ports:   []yopt.Port{80, 443},
				pull:    true,
				args:    []string{"--flag", "x"},
			}},
		},
		{
			name:    "host from environment",
			environ: map[string]string{"CATCH_HOST": "edge"},
			args:    []string{"status"},
			want:    globals{host: "edge", root: ".svcctl", cmd: statusCmd{format: "table"}},
		},
		{
			name:    "flag beats environment",
			environ: map[string]string{"CATCH_HOST": "edge"},
			args:    []string{"--host", "lab", "-v", "status", "--format", "json"},
			want:    globals{host: "lab", root: ".svcctl", verbose: true, cmd: statusCmd{format: "json"}},
		},
		{
			name: "global after command",
			args: []string{"logs", "-f", "web", "--root", "/tmp/state"},
			want: globals{host: "catch", root: "/tmp/state", cmd: logsCmd{svc: "web", follow: true, lines: 100}},
		},
		{
			name: "logs lines",
			args: []string{"logs", "-n", "20", "api"},
			want: globals{host: "catch", root: ".svcctl", cmd: logsCmd{svc: "api", lines: 20}},
		},
		{
			name: "stage literal",
			args: []string{"stage", "api", "show"},
			want: globals{host: "catch", root: ".svcctl", cmd: stageCmd{svc: "api", action: stageAction{op: "show"}}},
		},
		{
			name: "stage upload",
			args: []string{"stage", "api", "./new.bin"},
			want: globals{host: "catch", root: ".svcctl", cmd: stageCmd{svc: "api", action: stageAction{op: "upload", payload: "./new.bin"}}},
		},
		{
			name: "rollback to release",
			args: []string{"rollback", "api", "--to", release.String()},
			want: globals{host: "catch", root: ".svcctl", cmd: rollbackCmd{svc: "api", to: &release}},
		},
		{
			name: "rollback to previous",
			args: []string{"rollback", "api"},
			want: globals{host: "catch", root: ".svcctl", cmd: rollbackCmd{svc: "api"}},
		},
		{
			name: "exec",
			args: []string{"exec", "--dry-run", "api", "--", "ls", "-la"},
			want: globals{host: "catch", root: ".svcctl", cmd: execCmd{dryRun: true, svc: "api", argv: []string{"ls", "-la"}}},
		},
		{
			name: "exec args that look like globals",
			args: []string{"exec", "api", "--", "grep", "-v", "foo", "--host", "x", "--root=/"},
			want: globals{host: "catch", root: ".svcctl", cmd: execCmd{svc: "api", argv: []string{"grep", "-v", "foo", "--host", "x", "--root=/"}}},
		},
		{
			name: "env set",
			args: []string{"env", "set", "api", "A=1", "B=x=y"},
			want: globals{host: "catch", root: ".svcctl", cmd: envSetCmd{svc: "api", pairs: []envPair{{"A", "1"}, {"B", "x=y"}}}},
		},
		{
			name: "remove alias",
			args: []string{"r", "-y", "api"},
			want: globals{host: "catch", root: ".svcctl", cmd: removeCmd{yes: true, svc: "api"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parse(tt.environ, tt.args...)
			if err != nil {
				t.Fatalf("parse(%q): %v", tt.args, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parse(%q)\ngot  %+v\nwant %+v", tt.args, got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"status", "--format", "xml"}, `"xml": must be one of table, json, plain`},
		{[]string{"logs", "-n", "0", "api"}, `"0": must be positive`},
		{[]string{"env", "set", "api", "BAD"}, `couldn't parse "BAD": expected KEY=VALUE`},
		{[]string{"env", "set", "api", "A B=1"}, `couldn't parse "A B=1": invalid variable name "A B"`},
		{[]string{"env", "set", "api"}, "at least one KEY=VALUE is required"},
		{[]string{"exec", "api"}, "a command to run is required after --"},
		{[]string{"exec", "api", "grep", "-v", "foo"}, "a command to run is required after --"},
		{[]string{"remove", "--yes", ""}, `"": must be a plain service name`},
		{[]string{"remove", "--yes", "."}, `".": must be a plain service name`},
		{[]string{"remove", "--yes", "../x"}, `"../x": must be a plain service name`},
		{[]string{"env", "set", "a/b", "A=1"}, `"a/b": must be a plain service name`},
		{[]string{"run", "api"}, "expected <PAYLOAD>, pass --help for usage information"},
		{[]string{"run", "--ts-ver", "nope", "api", "./bin"}, `couldn't parse "nope": `},
		{[]string{"rollback", "api", "--to", "nope"}, "couldn't parse `nope`: "},
	}
	for _, tt := range tests {
		_, err := parse(nil, tt.args...)
		var ve *yopt.ValueError
		if !errors.As(err, &ve) {
			t.Errorf("parse(%q) error = %v, want a value error", tt.args, err)
			continue
		}
		if !strings.HasPrefix(err.Error(), tt.want) {
			t.Errorf("parse(%q) error = %q, want prefix %q", tt.args, err.Error(), tt.want)
		}
	}
}

func TestParse_HelpAndVersion(t *testing.T) {
	_, err := parse(nil, "--version")
	if text, ok := yopt.IsStdout(err); !ok || text != "Version: "+version+"\n" {
		t.Errorf("--version = %q, %v", text, err)
	}

	_, err = parse(map[string]string{"CATCH_HOST": "edge"}, "--help")
	text, ok := yopt.IsStdout(err)
	if !ok {
		t.Fatalf("--help error = %v", err)
	}
	for _, want := range []string{
		"Control services on a catch host\n",
		`[env:CATCH_HOST = "edge"]`,
		"[env:SVCCTL_ROOT: N/A]",
		"[default: catch]",
		"Available commands:",
		"Show status of all services",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("help does not contain %q:\n%s", want, text)
		}
	}

	_, err = parse(nil, "run", "--help")
	text, ok = yopt.IsStdout(err)
	if !ok {
		t.Fatalf("run --help error = %v", err)
	}
	if !strings.HasPrefix(text, "Install or update a service from a payload\n\nUsage: ") {
		t.Errorf("run help:\n%s", text)
	}
	for _, want := range []string{"--net <NET>", "[default: svc]", "<PAYLOAD>"} {
		if !strings.Contains(text, want) {
			t.Errorf("run help does not contain %q:\n%s", want, text)
		}
	}
}

func TestComplete(t *testing.T) {
	bash := yopt.CompletionRequest{Style: yopt.Bash}
	touch := yopt.CompletionRequest{Style: yopt.Bash, Touching: true}
	tests := []struct {
		name string
		req  yopt.CompletionRequest
		args []string
		want string
	}{
		{
			name: "empty line",
			req:  bash,
			want: strings.Join([]string{
				"--host <HOST>  Catch host to talk to",
				"--root <DIR>   Local state directory",
				"--verbose      Print debug output",
				"run            Install or update a service from a payload",
				"logs           Show logs of a service",
				"status         Show status of all services",
				"stage          Upload a payload without applying it",
				"rollback       Roll a service back to a previous release",
				"exec           Run a command with the service environment",
				"env            Manage service environment files",
				"remove         Remove a service",
			}, "\n") + "\n",
		},
		{name: "command prefix", req: touch, args: []string{"st"}, want: "status  Show status of all services\nstage   Upload a payload without applying it\n"},
		{name: "single command", req: touch, args: []string{"stat"}, want: "status\n"},
		{name: "option values", req: bash, args: []string{"status", "--format"}, want: "table\njson\nplain\n"},
		{name: "services", req: bash, args: []string{"logs"}, want: "api\nweb\n"},
		{name: "service prefix", req: touch, args: []string{"remove", "a"}, want: "api\n"},
		{name: "service prefix by alias", req: touch, args: []string{"r", "w"}, want: "web\n"},
		{name: "stage literals", req: touch, args: []string{"stage", "api", "c"}, want: "commit\nclear\n"},
		{name: "typing a payload", req: touch, args: []string{"run", "api", "./b"}, want: ""},
		{name: "globals stay at the top level", req: bash, args: []string{"status"}, want: "--format\n"},
		{name: "net modes", req: touch, args: []string{"run", "--net", "m"}, want: "macvlan\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := newParser(yopt.Choices("api", "web"))
			a := yopt.NewArgs(tt.args...).SetEnv(env.Map(nil)).SetCompletion(tt.req)
			_, err := opts.RunInner(a)
			var ce *yopt.CompletionError
			if !errors.As(err, &ce) {
				t.Fatalf("error = %v, want completion", err)
			}
			if ce.Text != tt.want {
				t.Errorf("got %q, want %q", ce.Text, tt.want)
			}
		})
	}
}

func TestParsePair(t *testing.T) {
	tests := []struct {
		in      string
		want    envPair
		wantErr bool
	}{
		{in: "A=1", want: envPair{"A", "1"}},
		{in: "EMPTY=", want: envPair{"EMPTY", ""}},
		{in: "URL=a=b", want: envPair{"URL", "a=b"}},
		{in: "=1", wantErr: true},
		{in: "NOVALUE", wantErr: true},
		{in: "A\tB=1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parsePair(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parsePair(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parsePair(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
