// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/yopt/pkg/yopt"
)

const (
	defaultHost = "catch"
	defaultRoot = ".svcctl"
)

var (
	netModes      = []string{"svc", "ts", "macvlan", "host"}
	statusFormats = []string{"table", "json", "plain"}
)

// globals are the options shared by every command. They may appear on either
// side of the command name.
type globals struct {
	host    string
	root    string
	verbose bool
	cmd     command
}

// completer suggests service names.
type completer func(prefix string) []yopt.Suggestion

// newParser builds the svcctl grammar. services completes SVC positionals.
func newParser(services completer) *yopt.Options[globals] {
	svc := func() yopt.Parser[string] {
		name := yopt.Complete[string](yopt.Positional[string]("SVC").Help("Service name"), services)
		return yopt.Guard[string](name, validService, "must be a plain service name")
	}
	commands := yopt.OneOf(
		runCommand(svc()),
		logsCommand(svc()),
		statusCommand(),
		stageCommand(svc()),
		rollbackCommand(svc()),
		execCommand(svc()),
		envCommand(svc()),
		removeCommand(svc()),
	)
	p := yopt.Construct(
		yopt.Bind(yopt.Fallback[string](yopt.Long("host").Env("CATCH_HOST").Help("Catch host to talk to").Argument("HOST"), defaultHost).DisplayFallback(),
			func(g *globals, v string) { g.host = v }),
		yopt.Bind(yopt.Fallback[string](yopt.Long("root").Env("SVCCTL_ROOT").Help("Local state directory").Argument("DIR"), defaultRoot).DisplayFallback(),
			func(g *globals, v string) { g.root = v }),
		yopt.Bind(yopt.Short('v').Long("verbose").Help("Print debug output").Switch(),
			func(g *globals, v bool) { g.verbose = v }),
		yopt.Bind(commands, func(g *globals, c command) { g.cmd = c }),
	)
	return yopt.ToOptions(p).
		Descr("Control services on a catch host").
		Footer("Completion: svcctl --yopt-complete-style-bash [--yopt-complete-touching] WORDS...").
		Version(version)
}

// validService reports whether name is usable as a directory under the state
// root.
func validService(name string) bool {
	return name != "" && name != "." && filepath.IsLocal(name) && !strings.ContainsAny(name, `/\`)
}

// asCommand erases the concrete command type.
func asCommand[T command](p yopt.Parser[T]) yopt.Parser[command] {
	return yopt.Map(p, func(c T) command { return c })
}

func runCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	p := yopt.Construct(
		yopt.Bind(yopt.Fallback[string](yopt.Complete[string](yopt.Long("net").Help("Network mode").Argument("NET"), yopt.Choices(netModes...)), "svc").DisplayFallback(),
			func(r *runCmd, v string) { r.net = v }),
		yopt.Bind(yopt.Fallback[*semver.Version](yopt.Parse[string, *semver.Version](yopt.Long("ts-ver").Help("Tailscale version to install").Argument("VERSION"), semver.NewVersion), nil),
			func(r *runCmd, v *semver.Version) { r.tsVer = v }),
		yopt.Bind(yopt.Many[yopt.Port](yopt.Argument[yopt.Port](yopt.Short('p').Long("publish").Help("Publish a port"), "PORT")),
			func(r *runCmd, v []yopt.Port) { r.ports = v }),
		yopt.Bind(yopt.Long("pull").Help("Pull the image before starting").Switch(),
			func(r *runCmd, v bool) { r.pull = v }),
		yopt.Bind(svc, func(r *runCmd, v string) { r.svc = v }),
		yopt.Bind(yopt.Positional[string]("PAYLOAD").Help("Binary, compose file, image or Dockerfile"),
			func(r *runCmd, v string) { r.payload = v }),
		yopt.Bind(yopt.Many[string](yopt.Positional[string]("ARGS").Strict().Help("Arguments passed to the payload")),
			func(r *runCmd, v []string) { r.args = v }),
	)
	opts := yopt.ToOptions(p).Descr("Install or update a service from a payload")
	return asCommand[runCmd](yopt.Command("run", opts))
}

func logsCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	lines := yopt.Fallback[int](yopt.Argument[int](yopt.Short('n').Long("lines").Help("Number of lines to show"), "LINES"), 100).DisplayFallback()
	p := yopt.Construct(
		yopt.Bind(yopt.Short('f').Long("follow").Help("Keep streaming new lines").Switch(),
			func(l *logsCmd, v bool) { l.follow = v }),
		yopt.Bind(yopt.Guard[int](lines, func(n int) bool { return n > 0 }, "must be positive"),
			func(l *logsCmd, v int) { l.lines = v }),
		yopt.Bind(svc, func(l *logsCmd, v string) { l.svc = v }),
	)
	return asCommand[logsCmd](yopt.Command("logs", yopt.ToOptions(p).Descr("Show logs of a service")))
}

func statusCommand() yopt.Parser[command] {
	format := yopt.Fallback[string](yopt.Complete[string](yopt.Long("format").Help("Output format").Argument("FORMAT"), yopt.Choices(statusFormats...)), "table").DisplayFallback()
	p := yopt.Construct(
		yopt.Bind(yopt.Guard[string](format, func(f string) bool { return slices.Contains(statusFormats, f) }, "must be one of "+strings.Join(statusFormats, ", ")),
			func(s *statusCmd, v string) { s.format = v }),
	)
	return asCommand[statusCmd](yopt.Command("status", yopt.ToOptions(p).Descr("Show status of all services")))
}

func stageCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	action := yopt.OneOf(
		yopt.Literal("show", stageAction{op: "show"}),
		yopt.Literal("commit", stageAction{op: "commit"}),
		yopt.Literal("clear", stageAction{op: "clear"}),
		yopt.Map[string, stageAction](yopt.Positional[string]("PAYLOAD").Help("Payload to stage"), func(p string) stageAction {
			return stageAction{op: "upload", payload: p}
		}),
	)
	p := yopt.Construct(
		yopt.Bind(svc, func(s *stageCmd, v string) { s.svc = v }),
		yopt.Bind(action, func(s *stageCmd, v stageAction) { s.action = v }),
	)
	opts := yopt.ToOptions(p).Descr("Upload a payload without applying it\nUse show, commit or clear to manage the staged payload.")
	return asCommand[stageCmd](yopt.Command("stage", opts))
}

func rollbackCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	p := yopt.Construct(
		yopt.Bind(svc, func(r *rollbackCmd, v string) { r.svc = v }),
		yopt.Bind(yopt.Optional[uuid.UUID](yopt.Argument[uuid.UUID](yopt.Long("to").Help("Release to roll back to"), "ID")),
			func(r *rollbackCmd, v *uuid.UUID) { r.to = v }),
	)
	return asCommand[rollbackCmd](yopt.Command("rollback", yopt.ToOptions(p).Descr("Roll a service back to a previous release")))
}

func execCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	p := yopt.Construct(
		yopt.Bind(yopt.Long("dry-run").Help("Print the command instead of running it").Switch(),
			func(e *execCmd, v bool) { e.dryRun = v }),
		yopt.Bind(svc, func(e *execCmd, v string) { e.svc = v }),
		yopt.Bind(yopt.Some[string](yopt.Positional[string]("ARGS").Strict().Help("Command and arguments, after --"), "a command to run is required after --"),
			func(e *execCmd, v []string) { e.argv = v }),
	)
	opts := yopt.ToOptions(p).Descr("Run a command with the service environment")
	return asCommand[execCmd](yopt.Command("exec", opts))
}

func envCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	set := yopt.Construct(
		yopt.Bind(svc, func(e *envSetCmd, v string) { e.svc = v }),
		yopt.Bind(yopt.Some[envPair](yopt.Parse[string, envPair](yopt.Positional[string]("KEY=VALUE").Help("Variable to set"), parsePair), "at least one KEY=VALUE is required"),
			func(e *envSetCmd, v []envPair) { e.pairs = v }),
	)
	setCmd := asCommand[envSetCmd](yopt.Command("set", yopt.ToOptions(set).Descr("Set environment variables of a service")))
	return yopt.Command("env", yopt.ToOptions(yopt.OneOf(setCmd)).Descr("Manage service environment files"))
}

func removeCommand(svc yopt.Parser[string]) yopt.Parser[command] {
	p := yopt.Construct(
		yopt.Bind(yopt.Short('y').Long("yes").Help("Do not ask for confirmation").Switch(),
			func(r *removeCmd, v bool) { r.yes = v }),
		yopt.Bind(svc, func(r *removeCmd, v string) { r.svc = v }),
	)
	return asCommand[removeCmd](yopt.Command("remove", yopt.ToOptions(p).Descr("Remove a service")).Short('r'))
}

type envPair struct {
	key, value string
}

func parsePair(s string) (envPair, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return envPair{}, errors.New("expected KEY=VALUE")
	}
	if strings.ContainsAny(k, " \t") {
		return envPair{}, fmt.Errorf("invalid variable name %q", k)
	}
	return envPair{key: k, value: v}, nil
}
