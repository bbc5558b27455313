// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/yeetrun/yopt/pkg/env"
	"github.com/yeetrun/yopt/pkg/yopt"
)

func newTestApp(t *testing.T, stdin string) (*app, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	return &app{
		host:   "catch",
		root:   t.TempDir(),
		stdin:  strings.NewReader(stdin),
		stdout: &stdout,
		stderr: &stderr,
		logger: log.New(io.Discard),
	}, &stdout, &stderr
}

func TestSend(t *testing.T) {
	release := uuid.MustParse("9b2f6a52-3c1e-4f5e-8d7a-0c4b1e2f3a4b")
	tests := []struct {
		name string
		cmd  command
		want string
	}{
		{
			name: "rollback to previous",
			cmd:  rollbackCmd{svc: "api"},
			want: "host: catch\ncommand: rollback\nservice: api\n",
		},
		{
			name: "rollback to release",
			cmd:  rollbackCmd{svc: "api", to: &release},
			want: "host: catch\ncommand: rollback\nservice: api\nparams:\n    to: " + release.String() + "\n",
		},
		{
			name: "status",
			cmd:  statusCmd{format: "json"},
			want: "host: catch\ncommand: status\nparams:\n    format: json\n",
		},
		{
			name: "logs",
			cmd:  logsCmd{svc: "web", follow: true, lines: 20},
			want: "host: catch\ncommand: logs\nservice: web\nparams:\n    follow: true\n    lines: 20\n",
		},
		{
			name: "stage upload",
			cmd:  stageCmd{svc: "web", action: stageAction{op: "upload", payload: "./web.bin"}},
			want: "host: catch\ncommand: stage\nservice: web\nparams:\n    action: upload\n    payload: ./web.bin\n",
		},
		{
			name: "run",
			cmd:  runCmd{svc: "api", payload: "nginx:latest", net: "svc", args: []string{"serve"}},
			want: "host: catch\ncommand: run\nservice: api\nparams:\n    args:\n        - serve\n    kind: image\n    net: svc\n    payload: nginx:latest\n    pull: false\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, stdout, _ := newTestApp(t, "")
			if err := tt.cmd.run(context.Background(), a); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, stdout.String()); diff != "" {
				t.Errorf("request mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEnvSet(t *testing.T) {
	a, stdout, _ := newTestApp(t, "")
	ctx := context.Background()

	if err := (envSetCmd{svc: "api", pairs: []envPair{{"A", "1"}, {"GREETING", "hello world"}}}).run(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := (envSetCmd{svc: "api", pairs: []envPair{{"A", "2"}}}).run(ctx, a); err != nil {
		t.Fatal(err)
	}

	name := filepath.Join(a.root, "api", "env")
	got, err := env.Read(name)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]string{"A": "2", "GREETING": "hello world"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("env file mismatch (-want +got):\n%s", diff)
	}
	if want := "updated " + name + "\n"; !strings.HasSuffix(stdout.String(), want) {
		t.Errorf("stdout = %q, want suffix %q", stdout.String(), want)
	}
}

func TestExec_DryRun(t *testing.T) {
	a, stdout, _ := newTestApp(t, "")
	ctx := context.Background()

	if err := (execCmd{dryRun: true, svc: "api", argv: []string{"ls"}}).run(ctx, a); err != nil {
		t.Fatalf("without env file: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(a.root, "api"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := env.Write(a.envFile("api"), map[string]string{"B": "2", "A": "x y"}); err != nil {
		t.Fatal(err)
	}
	if err := (execCmd{dryRun: true, svc: "api", argv: []string{"ls", "-la"}}).run(ctx, a); err != nil {
		t.Fatal(err)
	}
	want := "ls\n'A=x y' B=2 ls -la\n"
	if got := stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}
}

func TestRemove(t *testing.T) {
	t.Run("confirmed by flag", func(t *testing.T) {
		a, stdout, stderr := newTestApp(t, "")
		dir := a.serviceDir("api")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := (removeCmd{yes: true, svc: "api"}).run(context.Background(), a); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(dir); !os.IsNotExist(err) {
			t.Errorf("service dir still exists: %v", err)
		}
		if got, want := stdout.String(), "host: catch\ncommand: remove\nservice: api\n"; got != want {
			t.Errorf("stdout = %q, want %q", got, want)
		}
		if stderr.Len() != 0 {
			t.Errorf("unexpected prompt %q", stderr.String())
		}
	})

	t.Run("declined", func(t *testing.T) {
		a, stdout, stderr := newTestApp(t, "n\n")
		dir := a.serviceDir("api")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		err := (removeCmd{svc: "api"}).run(context.Background(), a)
		if err == nil || err.Error() != "aborted" {
			t.Fatalf("error = %v, want aborted", err)
		}
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("service dir removed: %v", err)
		}
		if got, want := stderr.String(), `Remove service "api"? [y/N]: `; got != want {
			t.Errorf("prompt = %q, want %q", got, want)
		}
		if stdout.Len() != 0 {
			t.Errorf("request sent after declining: %q", stdout.String())
		}
	})
}

func TestServiceCompleter(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"api", "web", "worker"} {
		if err := os.Mkdir(filepath.Join(root, d), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(root, "wip.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	got := serviceCompleter(root)("w")
	want := []yopt.Suggestion{{Value: "web"}, {Value: "worker"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}
	if got := serviceCompleter(filepath.Join(root, "missing"))(""); got != nil {
		t.Errorf("missing root = %v, want nil", got)
	}
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	t.Setenv("CATCH_HOST", "")
	t.Setenv("SVCCTL_ROOT", root)
	ctx := context.Background()

	var stdout, stderr bytes.Buffer
	if code := run(ctx, []string{"--host", "edge", "status"}, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("exit code = %d, stderr = %q", code, stderr.String())
	}
	if got, want := stdout.String(), "host: edge\ncommand: status\nparams:\n    format: table\n"; got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	stdout.Reset()
	stderr.Reset()
	if code := run(ctx, []string{"status", "--format", "xml"}, strings.NewReader(""), &stdout, &stderr); code != 1 {
		t.Errorf("exit code = %d, want 1", code)
	}
	if !strings.Contains(stderr.String(), `Error: "xml": must be one of table, json, plain`) {
		t.Errorf("stderr = %q", stderr.String())
	}

	stdout.Reset()
	stderr.Reset()
	args := []string{"--yopt-complete-style-bash", "--yopt-complete-touching", "stat"}
	if code := run(ctx, args, strings.NewReader(""), &stdout, &stderr); code != 0 {
		t.Fatalf("completion exit code = %d, stderr = %q", code, stderr.String())
	}
	if got := stdout.String(); got != "status\n" {
		t.Errorf("completion = %q, want %q", got, "status\n")
	}

	for _, svc := range []string{"", ".", ".."} {
		stdout.Reset()
		stderr.Reset()
		if code := run(ctx, []string{"remove", "--yes", svc}, strings.NewReader(""), &stdout, &stderr); code != 1 {
			t.Errorf("remove %q: exit code = %d, want 1", svc, code)
		}
		if _, err := os.Stat(root); err != nil {
			t.Fatalf("remove %q touched the state root: %v", svc, err)
		}
	}
}
