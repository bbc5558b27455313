// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// svcctl is a service control client for catch hosts, built on yopt. It
// prints the requests it would send, manages local service env files, and
// answers shell completion requests.
package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/yeetrun/yopt/pkg/cli"
	"github.com/yeetrun/yopt/pkg/env"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	useColor := cli.UseColor(cli.ColorAuto, os.Stderr)
	wd, err := os.Getwd()
	if err != nil {
		return cli.Report(stdout, stderr, err, useColor)
	}
	cfg, err := cli.LoadConfig(wd)
	if err != nil {
		return cli.Report(stdout, stderr, err, useColor)
	}
	useColor = cli.UseColor(cfg.Color, os.Stderr)

	inv, err := cli.Detect(args, cfg)
	if err != nil {
		return cli.Report(stdout, stderr, err, useColor)
	}
	lookup, err := cli.Environment(cfg)
	if err != nil {
		return cli.Report(stdout, stderr, err, useColor)
	}
	logger := cli.NewLogger(stderr, "svcctl", cfg)

	opts := newParser(serviceCompleter(rootDir(lookup)))
	g, err := cli.Parse(opts, "svcctl", inv, lookup, logger)
	if err != nil {
		return cli.Report(stdout, stderr, err, useColor)
	}
	if g.verbose {
		logger.SetLevel(log.DebugLevel)
	}
	a := &app{
		host:    g.host,
		root:    g.root,
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		environ: os.Environ(),
	}
	return cli.Report(stdout, stderr, g.cmd.run(ctx, a), useColor)
}

// rootDir is the state directory used for completion, before --root is
// parsed.
func rootDir(lookup env.Lookup) string {
	if v, ok := lookup("SVCCTL_ROOT"); ok && v != "" {
		return v
	}
	return defaultRoot
}
