// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"fmt"
	"strings"
)

// PositionalParser consumes the first free word.
type PositionalParser[T any] struct {
	metavar string
	help    string
	strict  bool
}

// Positional returns a parser for the first unconsumed word that does not
// look like a flag.
func Positional[T any](metavar string) *PositionalParser[T] {
	return &PositionalParser[T]{metavar: metavar}
}

// Help sets the help text.
func (p *PositionalParser[T]) Help(help string) *PositionalParser[T] {
	p.help = help
	return p
}

// Strict only accepts words given after the "--" separator.
func (p *PositionalParser[T]) Strict() *PositionalParser[T] {
	p.strict = true
	return p
}

func (p *PositionalParser[T]) item() Item {
	return Item{Kind: ItemPositional, Metavar: p.metavar, Help: p.help, Strict: p.strict}
}

func (p *PositionalParser[T]) eval(a *Args) (T, error) {
	var zero T
	i := a.nextWord(p.strict)
	if i < 0 {
		a.pushItem(p.item())
		return zero, &MissingError{Expected: p.Meta()}
	}
	t := a.items[i]
	a.take(i)
	if a.isTouching(i) {
		a.pushMeta(p.metavar, p.help, false, t.os, "")
		return zero, nil
	}
	out, err := convert[T](t.os)
	if err != nil {
		return zero, &ValueError{
			Pos:     a.pos(i),
			Token:   t.text,
			UserMsg: fmt.Sprintf("couldn't parse `%s`: %v", t.text, err),
			Err:     err,
		}
	}
	return out, nil
}

// Meta implements Parser.
func (p *PositionalParser[T]) Meta() Meta {
	return itemMeta(p.item())
}

// AnyParser consumes a token of any shape, flags included, if check accepts
// it.
type AnyParser[I, T any] struct {
	metavar  string
	help     string
	anywhere bool
	check    func(I) (T, bool)
}

// Any returns a parser that converts a token to I and passes it to check.
// By default only the first unconsumed token is considered.
func Any[I, T any](metavar string, check func(I) (T, bool)) *AnyParser[I, T] {
	return &AnyParser[I, T]{metavar: metavar, check: check}
}

// Help sets the help text.
func (p *AnyParser[I, T]) Help(help string) *AnyParser[I, T] {
	p.help = help
	return p
}

// Metavar sets the metavar shown in help and completion.
func (p *AnyParser[I, T]) Metavar(metavar string) *AnyParser[I, T] {
	p.metavar = metavar
	return p
}

// Anywhere lets the parser take the first accepted token at any position.
func (p *AnyParser[I, T]) Anywhere() *AnyParser[I, T] {
	p.anywhere = true
	return p
}

func (p *AnyParser[I, T]) eval(a *Args) (T, error) {
	var zero T
	for i, t := range a.items {
		if a.consumed[i] || t.sep {
			continue
		}
		if v, ok := p.try(t); ok {
			a.take(i)
			if a.isTouching(i) {
				a.pushMeta(p.metavar, p.help, false, t.os, "")
				return zero, nil
			}
			return v, nil
		}
		if !p.anywhere {
			break
		}
	}
	a.pushMeta(p.metavar, p.help, false, "", "")
	return zero, &MissingError{Expected: p.Meta()}
}

func (p *AnyParser[I, T]) try(t arg) (T, bool) {
	var zero T
	in, err := convert[I](t.os)
	if err != nil {
		return zero, false
	}
	return p.check(in)
}

// Meta implements Parser.
func (p *AnyParser[I, T]) Meta() Meta {
	return itemMeta(Item{Kind: ItemPositional, Metavar: p.metavar, Help: p.help, Anywhere: p.anywhere})
}

// Literal matches a token equal to text and produces value.
func Literal[T any](text string, value T) Parser[T] {
	return &literal[T]{text: text, value: value}
}

type literal[T any] struct {
	text  string
	value T
}

func (l *literal[T]) eval(a *Args) (T, error) {
	var zero T
	i := a.nextToken()
	if i >= 0 && a.isTouching(i) && strings.HasPrefix(l.text, a.items[i].os) {
		a.take(i)
		a.pushLiteral(l.text, "")
		return zero, nil
	}
	if i >= 0 && a.items[i].os == l.text {
		a.take(i)
		return l.value, nil
	}
	a.pushLiteral(l.text, "")
	return zero, &MissingError{Expected: l.Meta()}
}

// Meta implements Parser.
func (l *literal[T]) Meta() Meta {
	return itemMeta(Item{Kind: ItemPositional, Metavar: l.text, Literal: true})
}
