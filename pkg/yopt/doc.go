// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package yopt provides a command-line parser built from small composable
// parsers, with shell completion driven by the same parser tree.
//
// The library follows these principles:
//   - Parsers are values: primitives are combined with Construct and OneOf
//   - Named items may appear anywhere on the command line
//   - Alternation backtracks on independent copies of the input
//   - Completion evaluates the whole tree and shows the most specific candidates
//
// # Basic Usage
//
//	type Opts struct {
//	    Verbose bool
//	    Name    string
//	}
//
//	parser := yopt.Construct(
//	    yopt.Bind(yopt.Short('v').Long("verbose").Help("Verbose output").Switch(),
//	        func(o *Opts, v bool) { o.Verbose = v }),
//	    yopt.Bind[Opts](yopt.Positional[string]("NAME"),
//	        func(o *Opts, v string) { o.Name = v }),
//	)
//	opts, err := yopt.ToOptions(parser).Run(os.Args[1:]...)
//
// # Errors
//
// Evaluation reports one of these error types:
//   - *MissingError: nothing matched; absorbed by Optional, Fallback, Many and OneOf
//   - *ValueError: a token matched but its value was rejected; never absorbed
//   - *UnexpectedError: parsing succeeded with tokens left over
//   - *HelpError and *CompletionError: output for stdout, not failures
//   - *UnrenderableError: help or completion output could not be produced
//
// Use IsStdout to separate the last two groups from real failures.
//
// # Completion
//
// Attach a CompletionRequest with Args.SetCompletion and call
// Options.RunInner. Every primitive that would fail records a candidate
// instead, tagged with how far evaluation got. Only the deepest candidates
// are rendered, and dynamic values from Complete outrank static names.
//
//	a := yopt.NewArgs("--ver").SetCompletion(yopt.CompletionRequest{Style: yopt.Bash, Touching: true})
//	_, err := opts.RunInner(a)
//	text, _ := yopt.IsStdout(err) // "--verbose\n"
package yopt
