// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

// Options wraps a parser with the information needed to run it as a whole
// program or subcommand: help decorations, version, and the handling of
// --help, --version and leftover tokens.
type Options[T any] struct {
	p       Parser[T]
	descr   string
	header  string
	footer  string
	version string
	usage   string
}

// ToOptions wraps p.
func ToOptions[T any](p Parser[T]) *Options[T] {
	return &Options[T]{p: p}
}

// Descr sets the description printed before the usage line.
func (o *Options[T]) Descr(s string) *Options[T] {
	o.descr = s
	return o
}

// Header sets the text printed between the usage line and the item tables.
func (o *Options[T]) Header(s string) *Options[T] {
	o.header = s
	return o
}

// Footer sets the text printed last.
func (o *Options[T]) Footer(s string) *Options[T] {
	o.footer = s
	return o
}

// Version enables -V/--version.
func (o *Options[T]) Version(s string) *Options[T] {
	o.version = s
	return o
}

// Usage replaces the usage line. "{usage}" expands to the generated one.
func (o *Options[T]) Usage(s string) *Options[T] {
	o.usage = s
	return o
}

// Meta returns the descriptor of the wrapped parser.
func (o *Options[T]) Meta() Meta {
	return o.p.Meta()
}

// Run parses args, without the program name.
func (o *Options[T]) Run(args ...string) (T, error) {
	return o.RunInner(NewArgs(args...))
}

// RunInner parses a prepared token store. When a completion request is
// attached the result is always an error: a *CompletionError with the
// candidates, or an *UnrenderableError.
func (o *Options[T]) RunInner(a *Args) (T, error) {
	v, err := o.evalScope(a)
	if a.comp == nil {
		return v, err
	}
	var zero T
	if isControl(err) {
		return zero, err
	}
	return zero, a.checkComplete()
}

func (o *Options[T]) evalScope(a *Args) (T, error) {
	var zero T
	mark := a.compMark()
	v, err := o.p.eval(a)
	if a.comp != nil {
		a.settle(mark)
		return v, err
	}
	if isControl(err) {
		return zero, err
	}
	if a.findNamed([]rune{'h'}, []string{"help"}) >= 0 {
		return zero, &HelpError{Text: o.help(a.env)}
	}
	if o.version != "" && a.findNamed([]rune{'V'}, []string{"version"}) >= 0 {
		return zero, &HelpError{Text: "Version: " + o.version + "\n"}
	}
	if err != nil {
		return zero, err
	}
	if i := a.nextToken(); i >= 0 {
		return zero, &UnexpectedError{Pos: a.pos(i), Token: a.items[i].text}
	}
	return v, nil
}

// Help renders the help text, reading environment variables with lookup.
func (o *Options[T]) Help(lookup func(string) (string, bool)) string {
	return o.help(lookup)
}

func (o *Options[T]) help(lookup func(string) (string, bool)) string {
	h := helpDoc{
		descr:   o.descr,
		header:  o.header,
		footer:  o.footer,
		version: o.version,
		usage:   o.usage,
	}
	return h.render(o.p.Meta(), lookup)
}
