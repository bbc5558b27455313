// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import "fmt"

// Named collects the names of a flag or argument: short names, long names and
// environment variables. The first short and long name are shown in help,
// the rest are hidden aliases. Environment variables are consulted in order
// when no token matches.
type Named struct {
	shorts []rune
	longs  []string
	envs   []string
	help   string
}

// Short starts a named item with a short name.
func Short(c rune) *Named {
	return (&Named{}).Short(c)
}

// Long starts a named item with a long name.
func Long(name string) *Named {
	return (&Named{}).Long(name)
}

// Env starts a named item backed only by an environment variable.
func Env(name string) *Named {
	return (&Named{}).Env(name)
}

// Short adds a short name.
func (n *Named) Short(c rune) *Named {
	n.shorts = append(n.shorts, c)
	return n
}

// Long adds a long name.
func (n *Named) Long(name string) *Named {
	n.longs = append(n.longs, name)
	return n
}

// Env adds an environment variable fallback.
func (n *Named) Env(name string) *Named {
	n.envs = append(n.envs, name)
	return n
}

// Help sets the help text.
func (n *Named) Help(help string) *Named {
	n.help = help
	return n
}

func (n *Named) name() ShortLong {
	var sl ShortLong
	if len(n.shorts) > 0 {
		sl.Short = n.shorts[0]
	}
	if len(n.longs) > 0 {
		sl.Long = n.longs[0]
	}
	return sl
}

func (n *Named) env() string {
	if len(n.envs) == 0 {
		return ""
	}
	return n.envs[0]
}

// Switch returns a boolean flag: true when present, false otherwise.
func (n *Named) Switch() *FlagParser[bool] {
	return Flag(n, true, false)
}

// Argument returns a string valued argument.
func (n *Named) Argument(metavar string) *ArgumentParser[string] {
	return Argument[string](n, metavar)
}

// FlagParser parses a named item that takes no value.
type FlagParser[T any] struct {
	n         *Named
	present   T
	absent    T
	hasAbsent bool
	help      string
}

// Flag returns present when the flag is given and absent otherwise.
func Flag[T any](n *Named, present, absent T) *FlagParser[T] {
	return &FlagParser[T]{n: n, present: present, absent: absent, hasAbsent: true, help: n.help}
}

// ReqFlag returns present when the flag is given and fails with a missing
// item otherwise.
func ReqFlag[T any](n *Named, present T) *FlagParser[T] {
	return &FlagParser[T]{n: n, present: present, help: n.help}
}

// Help sets the help text.
func (f *FlagParser[T]) Help(help string) *FlagParser[T] {
	f.help = help
	return f
}

func (f *FlagParser[T]) item() Item {
	return Item{Kind: ItemFlag, Name: f.n.name(), Env: f.n.env(), Help: f.help}
}

func (f *FlagParser[T]) eval(a *Args) (T, error) {
	var zero T
	if i := a.findNamed(f.n.shorts, f.n.longs); i >= 0 {
		t := a.items[i]
		a.consume(i)
		if a.isTouching(i) {
			a.pushItem(f.item())
			return zero, nil
		}
		if t.hasValue {
			return zero, &ValueError{
				Pos:     a.pos(i),
				Token:   t.text,
				UserMsg: fmt.Sprintf("`%s` does not take a value, got %q", t.text, t.value),
			}
		}
		return f.present, nil
	}
	if !f.n.name().isZero() {
		a.pushItem(f.item())
	}
	if _, _, ok := a.lookupEnv(f.n.envs); ok {
		return f.present, nil
	}
	if f.hasAbsent {
		return f.absent, nil
	}
	return zero, &MissingError{Expected: f.Meta()}
}

// Meta implements Parser.
func (f *FlagParser[T]) Meta() Meta {
	if f.n.name().isZero() {
		return Meta{Kind: MetaSkip}
	}
	m := itemMeta(f.item())
	if f.hasAbsent {
		return optionalMeta(m)
	}
	return m
}

// ArgumentParser parses a named item that takes a value.
type ArgumentParser[T any] struct {
	n        *Named
	metavar  string
	help     string
	adjacent bool
}

// Argument returns a named argument whose value is converted to T.
func Argument[T any](n *Named, metavar string) *ArgumentParser[T] {
	return &ArgumentParser[T]{n: n, metavar: metavar, help: n.help}
}

// Help sets the help text.
func (p *ArgumentParser[T]) Help(help string) *ArgumentParser[T] {
	p.help = help
	return p
}

// Adjacent requires the value to be attached to the name, as in --name=value.
func (p *ArgumentParser[T]) Adjacent() *ArgumentParser[T] {
	p.adjacent = true
	return p
}

func (p *ArgumentParser[T]) item() Item {
	return Item{Kind: ItemArgument, Name: p.n.name(), Metavar: p.metavar, Env: p.n.env(), Help: p.help}
}

func (p *ArgumentParser[T]) eval(a *Args) (T, error) {
	var zero T
	i := a.findNamed(p.n.shorts, p.n.longs)
	if i < 0 {
		if !p.n.name().isZero() {
			a.pushItem(p.item())
		}
		if name, v, ok := a.lookupEnv(p.n.envs); ok {
			out, err := convert[T](v)
			if err != nil {
				return zero, &ValueError{
					Pos:     -1,
					Token:   v,
					UserMsg: fmt.Sprintf("couldn't parse %s=%q: %v", name, v, err),
					Err:     err,
				}
			}
			return out, nil
		}
		return zero, &MissingError{Expected: p.Meta()}
	}

	t := a.items[i]
	a.consume(i)
	if t.hasValue {
		if a.isTouching(i) {
			prefix := t.os[:len(t.os)-len(t.value)]
			a.pushMeta(p.metavar, p.help, true, t.value, prefix)
			return zero, nil
		}
		return p.convertAt(a, i, t.value)
	}
	if a.isTouching(i) {
		a.pushItem(p.item())
		return zero, nil
	}

	j := i + 1
	if p.adjacent || j >= len(a.items) || a.consumed[j] || a.items[j].isFlag() || a.items[j].sep || a.items[j].afterDash {
		if a.isLast(i) {
			a.pushMeta(p.metavar, p.help, true, "", "")
			return zero, nil
		}
		return zero, &ValueError{
			Pos:     a.pos(i),
			Token:   t.text,
			UserMsg: fmt.Sprintf("`%s` requires an argument `%s`", t.text, p.metavar),
		}
	}
	a.consume(j)
	if a.isTouching(j) {
		a.pushMeta(p.metavar, p.help, true, a.items[j].os, "")
		return zero, nil
	}
	return p.convertAt(a, j, a.items[j].os)
}

func (p *ArgumentParser[T]) convertAt(a *Args, i int, s string) (T, error) {
	out, err := convert[T](s)
	if err != nil {
		return out, &ValueError{
			Pos:     a.pos(i),
			Token:   s,
			UserMsg: fmt.Sprintf("couldn't parse `%s`: %v", s, err),
			Err:     err,
		}
	}
	return out, nil
}

// Meta implements Parser.
func (p *ArgumentParser[T]) Meta() Meta {
	if p.n.name().isZero() {
		return Meta{Kind: MetaSkip}
	}
	return itemMeta(p.item())
}
