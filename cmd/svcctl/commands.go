// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/yeetrun/yopt/pkg/cmdutil"
	"github.com/yeetrun/yopt/pkg/env"
	"github.com/yeetrun/yopt/pkg/yopt"
	"gopkg.in/yaml.v3"
)

// app is what commands run against.
type app struct {
	host   string
	root   string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *log.Logger
	// environ is the base environment handed to exec'd commands.
	environ []string
}

type command interface {
	run(ctx context.Context, a *app) error
}

// request is the message sent to the catch host. svcctl prints it instead
// of dialing the host.
type request struct {
	Host    string         `yaml:"host"`
	Command string         `yaml:"command"`
	Service string         `yaml:"service,omitempty"`
	Params  map[string]any `yaml:"params,omitempty"`
}

func (a *app) send(r request) error {
	r.Host = a.host
	a.logger.Debug("sending request", "host", r.Host, "command", r.Command, "service", r.Service)
	b, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	_, err = a.stdout.Write(b)
	return err
}

func (a *app) serviceDir(svc string) string {
	return filepath.Join(a.root, svc)
}

func (a *app) envFile(svc string) string {
	return filepath.Join(a.serviceDir(svc), "env")
}

type runCmd struct {
	svc     string
	payload string
	net     string
	tsVer   *semver.Version
	ports   []yopt.Port
	pull    bool
	args    []string
}

func (c runCmd) run(_ context.Context, a *app) error {
	kind, err := detectPayload(c.payload)
	if err != nil {
		return err
	}
	params := map[string]any{
		"kind":    string(kind),
		"payload": c.payload,
		"net":     c.net,
		"pull":    c.pull,
	}
	if c.tsVer != nil {
		params["ts_version"] = c.tsVer.String()
	}
	if len(c.ports) > 0 {
		params["ports"] = c.ports
	}
	if len(c.args) > 0 {
		params["args"] = c.args
	}
	return a.send(request{Command: "run", Service: c.svc, Params: params})
}

type logsCmd struct {
	svc    string
	follow bool
	lines  int
}

func (c logsCmd) run(_ context.Context, a *app) error {
	return a.send(request{Command: "logs", Service: c.svc, Params: map[string]any{
		"follow": c.follow,
		"lines":  c.lines,
	}})
}

type statusCmd struct {
	format string
}

func (c statusCmd) run(_ context.Context, a *app) error {
	return a.send(request{Command: "status", Params: map[string]any{"format": c.format}})
}

type stageAction struct {
	op      string
	payload string
}

type stageCmd struct {
	svc    string
	action stageAction
}

func (c stageCmd) run(_ context.Context, a *app) error {
	params := map[string]any{"action": c.action.op}
	if c.action.payload != "" {
		params["payload"] = c.action.payload
	}
	return a.send(request{Command: "stage", Service: c.svc, Params: params})
}

type rollbackCmd struct {
	svc string
	to  *uuid.UUID
}

func (c rollbackCmd) run(_ context.Context, a *app) error {
	var params map[string]any
	if c.to != nil {
		params = map[string]any{"to": c.to.String()}
	}
	return a.send(request{Command: "rollback", Service: c.svc, Params: params})
}

type execCmd struct {
	dryRun bool
	svc    string
	argv   []string
}

func (c execCmd) run(ctx context.Context, a *app) error {
	vars, err := env.Read(a.envFile(c.svc))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	keys := slices.Sorted(maps.Keys(vars))
	if c.dryRun {
		words := make([]string, 0, len(keys)+len(c.argv))
		for _, k := range keys {
			words = append(words, k+"="+vars[k])
		}
		words = append(words, c.argv...)
		fmt.Fprintln(a.stdout, cmdutil.CommandLine(words...))
		return nil
	}
	cmd := cmdutil.NewStdCmd(ctx, c.argv[0], c.argv[1:]...)
	cmd.Env = slices.Clone(a.environ)
	for _, k := range keys {
		cmd.Env = append(cmd.Env, k+"="+vars[k])
	}
	a.logger.Debug("running command", "service", c.svc, "argv", c.argv)
	return cmd.Run()
}

type envSetCmd struct {
	svc   string
	pairs []envPair
}

func (c envSetCmd) run(_ context.Context, a *app) error {
	name := a.envFile(c.svc)
	vars, err := env.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		vars = make(map[string]string)
	} else if err != nil {
		return err
	}
	for _, p := range c.pairs {
		vars[p.key] = p.value
	}
	if err := os.MkdirAll(filepath.Dir(name), 0o755); err != nil {
		return err
	}
	if err := env.Write(name, vars); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "updated %s\n", name)
	return nil
}

type removeCmd struct {
	yes bool
	svc string
}

func (c removeCmd) run(_ context.Context, a *app) error {
	if !c.yes {
		ok, err := cmdutil.Confirm(a.stdin, a.stderr, fmt.Sprintf("Remove service %q?", c.svc))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("aborted")
		}
	}
	if err := os.RemoveAll(a.serviceDir(c.svc)); err != nil {
		return err
	}
	return a.send(request{Command: "remove", Service: c.svc})
}

// serviceCompleter suggests the services known under root.
func serviceCompleter(root string) completer {
	return func(prefix string) []yopt.Suggestion {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil
		}
		var out []yopt.Suggestion
		for _, e := range entries {
			if e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
				out = append(out, yopt.Suggestion{Value: e.Name()})
			}
		}
		return out
	}
}
