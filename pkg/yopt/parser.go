// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"errors"
	"fmt"
	"strings"
)

// Parser is a node of a combinator tree producing a T.
//
// The set of parsers is closed: build them with the primitives (Short, Long,
// Env, Positional, Any, Literal, Command) and combine them with Construct,
// OneOf and the modifiers in this package.
type Parser[T any] interface {
	eval(a *Args) (T, error)
	// Meta describes what the parser can consume.
	Meta() Meta
}

// Field is one member of a product built with Construct.
type Field[T any] interface {
	evalInto(a *Args, dst *T) error
	meta() Meta
}

type bound[T, V any] struct {
	p   Parser[V]
	set func(*T, V)
}

// Bind attaches a parser to a product member. set stores the parsed value in
// the product being built.
func Bind[T, V any](p Parser[V], set func(*T, V)) Field[T] {
	return &bound[T, V]{p: p, set: set}
}

func (b *bound[T, V]) evalInto(a *Args, dst *T) error {
	v, err := b.p.eval(a)
	if err != nil {
		return err
	}
	b.set(dst, v)
	return nil
}

func (b *bound[T, V]) meta() Meta {
	return b.p.Meta()
}

type construct[T any] struct {
	fields []Field[T]
}

// Construct returns a product parser: every field must succeed, evaluated in
// order against the same tokens.
func Construct[T any](fields ...Field[T]) Parser[T] {
	return &construct[T]{fields: fields}
}

func (c *construct[T]) eval(a *Args) (T, error) {
	var out T
	var first error
	for _, f := range c.fields {
		err := f.evalInto(a, &out)
		if err == nil {
			continue
		}
		// Completion keeps going to collect every reachable candidate.
		if a.comp == nil || isControl(err) {
			var zero T
			return zero, err
		}
		if first == nil {
			first = err
		}
	}
	if first != nil {
		var zero T
		return zero, first
	}
	return out, nil
}

func (c *construct[T]) Meta() Meta {
	children := make([]Meta, 0, len(c.fields))
	for _, f := range c.fields {
		if m := f.meta(); m.Kind != MetaSkip {
			children = append(children, m)
		}
	}
	switch len(children) {
	case 0:
		return Meta{Kind: MetaSkip}
	case 1:
		return children[0]
	}
	return andMeta(children...)
}

type oneOf[T any] struct {
	ps []Parser[T]
}

// OneOf returns an alternation: each branch is tried on an independent copy of
// the tokens and the best one wins. A successful branch beats a failing one,
// the branch that consumed more tokens beats other successes, and among
// failures a value error at a later position beats an earlier one, which in
// turn beats any missing item.
func OneOf[T any](ps ...Parser[T]) Parser[T] {
	return &oneOf[T]{ps: ps}
}

func (o *oneOf[T]) eval(a *Args) (T, error) {
	var (
		zero    T
		best    *Args
		bestV   T
		bestErr error
		missing []Meta
	)
	for i, p := range o.ps {
		trial := a.clone()
		mark := a.compMark()
		v, err := p.eval(trial)
		trial.settle(mark)
		a.debug("alternative evaluated", "branch", i, "consumed", trial.used-a.used, "err", err)

		var m *MissingError
		if errors.As(err, &m) {
			missing = append(missing, m.Expected)
		}
		if best == nil || better(err, trial, bestErr, best) {
			best, bestV, bestErr = trial, v, err
		}
	}
	if best == nil {
		return zero, &MissingError{Expected: o.Meta()}
	}
	if IsMissing(bestErr) {
		return zero, &MissingError{Expected: orMeta(missing...)}
	}
	a.restore(best)
	return bestV, bestErr
}

func better(err error, trial *Args, bestErr error, best *Args) bool {
	r1, p1 := progress(err)
	r2, p2 := progress(bestErr)
	if r1 != r2 {
		return r1 > r2
	}
	if err == nil {
		return trial.used > best.used
	}
	return p1 > p2
}

func (o *oneOf[T]) Meta() Meta {
	children := make([]Meta, 0, len(o.ps))
	for _, p := range o.ps {
		if m := p.Meta(); m.Kind != MetaSkip {
			children = append(children, m)
		}
	}
	switch len(children) {
	case 0:
		return Meta{Kind: MetaSkip}
	case 1:
		return children[0]
	}
	return orMeta(children...)
}

type many[T any] struct {
	p Parser[T]
}

// Many repeats p until it reports a missing item. A value error from p is
// returned as is. Repetition stops early when an iteration consumes nothing.
func Many[T any](p Parser[T]) Parser[[]T] {
	return &many[T]{p: p}
}

func (m *many[T]) eval(a *Args) ([]T, error) {
	var out []T
	for {
		trial := a.clone()
		v, err := m.p.eval(trial)
		if err != nil {
			if IsMissing(err) {
				return out, nil
			}
			return nil, err
		}
		progressed := trial.used > a.used
		a.restore(trial)
		out = append(out, v)
		if !progressed {
			return out, nil
		}
	}
}

func (m *many[T]) Meta() Meta {
	return manyMeta(m.p.Meta())
}

type some[T any] struct {
	many[T]
	msg string
}

// Some is Many that needs at least one item. Finding none is a value error
// carrying msg, so it is not absorbed by Optional or Fallback.
func Some[T any](p Parser[T], msg string) Parser[[]T] {
	return &some[T]{many: many[T]{p: p}, msg: msg}
}

func (s *some[T]) eval(a *Args) ([]T, error) {
	out, err := s.many.eval(a)
	if err == nil && len(out) == 0 && a.comp == nil {
		return nil, &ValueError{Pos: a.current, UserMsg: s.msg, Err: errors.New(s.msg)}
	}
	return out, err
}

type optional[T any] struct {
	p Parser[T]
}

// Optional turns a missing item into a nil result.
func Optional[T any](p Parser[T]) Parser[*T] {
	return &optional[T]{p: p}
}

func (o *optional[T]) eval(a *Args) (*T, error) {
	trial := a.clone()
	v, err := o.p.eval(trial)
	if err != nil {
		if IsMissing(err) {
			return nil, nil
		}
		return nil, err
	}
	a.restore(trial)
	return &v, nil
}

func (o *optional[T]) Meta() Meta {
	return optionalMeta(o.p.Meta())
}

// FallbackParser substitutes a value when the wrapped parser reports a
// missing item.
type FallbackParser[T any] struct {
	p       Parser[T]
	value   T
	display bool
}

// Fallback returns value when p finds nothing. Value errors still propagate.
func Fallback[T any](p Parser[T], value T) *FallbackParser[T] {
	return &FallbackParser[T]{p: p, value: value}
}

// DisplayFallback shows the fallback value in help output.
func (f *FallbackParser[T]) DisplayFallback() *FallbackParser[T] {
	f.display = true
	return f
}

func (f *FallbackParser[T]) eval(a *Args) (T, error) {
	trial := a.clone()
	v, err := f.p.eval(trial)
	if err != nil {
		if IsMissing(err) {
			return f.value, nil
		}
		return v, err
	}
	a.restore(trial)
	return v, nil
}

// Meta implements Parser.
func (f *FallbackParser[T]) Meta() Meta {
	m := optionalMeta(f.p.Meta())
	if f.display && m.Kind == MetaOptional {
		m.Default = fmt.Sprint(f.value)
	}
	return m
}

type mapped[T, U any] struct {
	p Parser[T]
	f func(T) (U, error)
}

// Map transforms the result of p.
func Map[T, U any](p Parser[T], f func(T) U) Parser[U] {
	return &mapped[T, U]{p: p, f: func(v T) (U, error) { return f(v), nil }}
}

// Parse transforms the result of p with a function that may fail. A failure
// is reported as a value error at the last consumed token. Like Guard, f is
// not called while collecting completions.
func Parse[T, U any](p Parser[T], f func(T) (U, error)) Parser[U] {
	return &mapped[T, U]{p: p, f: f}
}

func (m *mapped[T, U]) eval(a *Args) (U, error) {
	var zero U
	v, err := m.p.eval(a)
	if err != nil || a.comp != nil {
		return zero, err
	}
	u, err := m.f(v)
	if err != nil {
		tok := a.currentText()
		return zero, &ValueError{
			Pos:     a.current,
			Token:   tok,
			UserMsg: fmt.Sprintf("couldn't parse %q: %v", tok, err),
			Err:     err,
		}
	}
	return u, nil
}

func (m *mapped[T, U]) Meta() Meta {
	return m.p.Meta()
}

type guard[T any] struct {
	p     Parser[T]
	check func(T) bool
	msg   string
}

// Guard fails with a value error carrying msg when check rejects the result.
func Guard[T any](p Parser[T], check func(T) bool, msg string) Parser[T] {
	return &guard[T]{p: p, check: check, msg: msg}
}

func (g *guard[T]) eval(a *Args) (T, error) {
	v, err := g.p.eval(a)
	if err != nil {
		return v, err
	}
	if a.comp == nil && !g.check(v) {
		var zero T
		tok := a.currentText()
		return zero, &ValueError{
			Pos:     a.current,
			Token:   tok,
			UserMsg: fmt.Sprintf("%q: %s", tok, g.msg),
			Err:     errors.New(g.msg),
		}
	}
	return v, nil
}

func (g *guard[T]) Meta() Meta {
	return g.p.Meta()
}

type hidden[T any] struct {
	p Parser[T]
}

// Hide keeps p working but removes it from help output and completion.
func Hide[T any](p Parser[T]) Parser[T] {
	return &hidden[T]{p: p}
}

func (h *hidden[T]) eval(a *Args) (T, error) {
	mark := a.compMark()
	v, err := h.p.eval(a)
	if a.comp != nil {
		a.comp.truncate(mark)
	}
	return v, err
}

func (h *hidden[T]) Meta() Meta {
	return Meta{Kind: MetaSkip}
}

type pure[T any] struct {
	v T
}

// Pure always succeeds with v without consuming anything.
func Pure[T any](v T) Parser[T] {
	return &pure[T]{v: v}
}

func (p *pure[T]) eval(*Args) (T, error) {
	return p.v, nil
}

func (p *pure[T]) Meta() Meta {
	return Meta{Kind: MetaSkip}
}

// Suggestion is a dynamically produced completion value.
type Suggestion struct {
	Value string
	Help  string
}

type completed[T any] struct {
	p  Parser[T]
	fn func(input string) []Suggestion
}

// Complete adds dynamic completion to p: whenever p is waiting for a value
// during completion, fn is called with the text typed so far and its
// suggestions replace the placeholder.
func Complete[T any](p Parser[T], fn func(input string) []Suggestion) Parser[T] {
	return &completed[T]{p: p, fn: fn}
}

func (c *completed[T]) eval(a *Args) (T, error) {
	mark := a.compMark()
	v, err := c.p.eval(a)
	if a.comp != nil {
		a.comp.expand(mark, c.fn)
	}
	return v, err
}

func (c *completed[T]) Meta() Meta {
	return c.p.Meta()
}

// Choices returns a completion function for a finite set of values. Values
// that do not start with the typed text are dropped.
func Choices(values ...string) func(string) []Suggestion {
	return func(input string) []Suggestion {
		var out []Suggestion
		for _, v := range values {
			if strings.HasPrefix(v, input) {
				out = append(out, Suggestion{Value: v})
			}
		}
		return out
	}
}
