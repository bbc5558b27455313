// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cli is the process glue around a yopt parser: it detects completion
// requests in argv, loads the project config, layers environment sources,
// builds the logger and maps results to output streams and exit codes.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/fatih/color"
	"github.com/shayne/yargs"
	"github.com/yeetrun/yopt/pkg/env"
	"github.com/yeetrun/yopt/pkg/metadoc"
	"github.com/yeetrun/yopt/pkg/yopt"
	"golang.org/x/term"
)

var isTerminalFn = term.IsTerminal

// triggerFlags are stripped from argv before the token store sees it.
type triggerFlags struct {
	Complete bool `flag:"yopt-complete" help:"Print completion candidates in the configured style"`
	Bash     bool `flag:"yopt-complete-style-bash" help:"Print completion candidates for bash"`
	Zsh      bool `flag:"yopt-complete-style-zsh" help:"Print completion candidates for zsh"`
	Touching bool `flag:"yopt-complete-touching" help:"The cursor touches the last word"`
	Describe bool `flag:"yopt-describe" help:"Print the grammar as YAML"`
}

// Invocation is argv with the hidden flags removed.
type Invocation struct {
	Args []string
	// Completion is set when the shell asked for candidates.
	Completion *yopt.CompletionRequest
	// Describe is set when the grammar should be printed instead of parsed.
	Describe bool
}

// Detect strips the hidden completion and describe flags from args, which
// excludes the program name. Hidden flags after "--" are left alone.
func Detect(args []string, cfg *Config) (*Invocation, error) {
	result, err := yargs.ParseKnownFlags[triggerFlags](args, yargs.KnownFlagsOptions{})
	if err != nil {
		return nil, err
	}
	f := result.Flags
	inv := &Invocation{Args: result.RemainingArgs, Describe: f.Describe}
	if inv.Args == nil {
		inv.Args = []string{}
	}
	if !f.Complete && !f.Bash && !f.Zsh {
		return inv, nil
	}
	if f.Bash && f.Zsh {
		return nil, errors.New("only one completion style may be requested")
	}
	style, err := cfg.style()
	if err != nil {
		return nil, err
	}
	switch {
	case f.Bash:
		style = yopt.Bash
	case f.Zsh:
		style = yopt.Zsh
	}
	req := yopt.CompletionRequest{
		Style:       style,
		Touching:    f.Touching,
		ClusterEcho: cfg.Completion.ClusterEcho,
	}
	// Shells pass an empty word for the cursor position after a space.
	if !req.Touching && len(inv.Args) > 0 && inv.Args[len(inv.Args)-1] == "" {
		inv.Args = inv.Args[:len(inv.Args)-1]
	}
	inv.Completion = &req
	return inv, nil
}

// NewLogger returns the logger handed to the token store. Debug output is
// enabled by the config file or by setting YOPT_DEBUG.
func NewLogger(w io.Writer, prefix string, cfg *Config) *log.Logger {
	level := log.WarnLevel
	if cfg.Debug || os.Getenv("YOPT_DEBUG") != "" {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: prefix,
	})
}

// Environment returns the lookup used for env fallbacks: the process
// environment, then the env file named by the config, if any.
func Environment(cfg *Config) (env.Lookup, error) {
	if cfg.EnvFile == "" {
		return env.OS(), nil
	}
	m, err := env.Read(cfg.EnvFile)
	if errors.Is(err, os.ErrNotExist) {
		return env.OS(), nil
	}
	if err != nil {
		return nil, err
	}
	return env.Layered(env.OS(), env.Map(m)), nil
}

// Parse runs o over the invocation. Completion and describe requests come
// back as errors whose text belongs on stdout, see Report.
func Parse[T any](o *yopt.Options[T], name string, inv *Invocation, lookup env.Lookup, logger *log.Logger) (T, error) {
	var zero T
	if inv.Describe {
		b, err := metadoc.Marshal(metadoc.New(name, o.Meta()))
		if err != nil {
			return zero, &yopt.UnrenderableError{Err: err}
		}
		return zero, &yopt.HelpError{Text: string(b)}
	}
	a := yopt.NewArgs(inv.Args...).SetEnv(lookup).SetLogger(logger)
	if inv.Completion != nil {
		a.SetCompletion(*inv.Completion)
	}
	return o.RunInner(a)
}

// UseColor resolves the color mode against the terminal state of f.
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminalFn(int(f.Fd()))
}

// Report writes the outcome of a run and returns the process exit code.
// Help, version, describe and completion output go to stdout with status 0,
// everything else to stderr with status 1.
func Report(stdout, stderr io.Writer, err error, useColor bool) int {
	if err == nil {
		return 0
	}
	if text, ok := yopt.IsStdout(err); ok {
		io.WriteString(stdout, text)
		return 0
	}
	c := color.New(color.FgRed)
	if useColor {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	fmt.Fprintln(stderr, c.Sprintf("Error: %v", err))
	var ue *yopt.UnrenderableError
	if errors.As(err, &ue) && ue.Err != nil {
		fmt.Fprintf(stderr, "%v\n", ue.Err)
	}
	return 1
}
