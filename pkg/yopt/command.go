// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import "strings"

// CommandParser matches a subcommand name and runs a nested parser on the
// tokens after it.
type CommandParser[T any] struct {
	name  string
	short rune
	help  string
	opts  *Options[T]
}

// Command returns a subcommand parser. The help text defaults to the first
// line of the nested description.
func Command[T any](name string, opts *Options[T]) *CommandParser[T] {
	help, _, _ := strings.Cut(opts.descr, "\n")
	return &CommandParser[T]{name: name, help: help, opts: opts}
}

// Short adds a one-character alias.
func (c *CommandParser[T]) Short(alias rune) *CommandParser[T] {
	c.short = alias
	return c
}

// Help sets the help text shown in the parent's command list.
func (c *CommandParser[T]) Help(help string) *CommandParser[T] {
	c.help = help
	return c
}

func (c *CommandParser[T]) matches(word string) bool {
	return word == c.name || (c.short != 0 && word == string(c.short))
}

func (c *CommandParser[T]) item() Item {
	sub := c.opts.Meta()
	return Item{Kind: ItemCommand, Command: c.name, CommandShort: c.short, Help: c.help, Sub: &sub}
}

func (c *CommandParser[T]) eval(a *Args) (T, error) {
	var zero T
	i := a.nextWord(false)
	if i >= 0 && a.isTouching(i) {
		// The name is still being typed: complete it, don't descend.
		if _, ok := cmdMatches(a.items[i].os, true, c.name, c.short); ok {
			a.take(i)
			a.pushItem(c.item())
			return zero, nil
		}
		a.pushItem(c.item())
		return zero, &MissingError{Expected: c.Meta()}
	}
	if i < 0 || !c.matches(a.items[i].os) {
		a.pushItem(c.item())
		return zero, &MissingError{Expected: c.Meta()}
	}
	a.take(i)
	sub := a.scope(i)
	a.debug("entering command", "name", c.name, "tokens", sub.Len())
	v, err := c.opts.evalScope(sub)
	if IsMissing(err) && a.comp == nil {
		// The name matched, so what the command lacks is final.
		return zero, &ValueError{Pos: a.pos(i), Token: a.items[i].text, UserMsg: err.Error(), Err: err}
	}
	return v, err
}

// Meta implements Parser.
func (c *CommandParser[T]) Meta() Meta {
	return itemMeta(c.item())
}
