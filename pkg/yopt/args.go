// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
)

const separator = "--"

type argKind uint8

const (
	argWord argKind = iota
	argShort
	argLong
)

// arg is a single command line token. Tokens are immutable once the store is
// built; consumption is tracked by Args.
type arg struct {
	kind argKind
	// name is the text after the leading dashes for short and long tokens,
	// without any attached value.
	name     string
	value    string
	hasValue bool
	// os is the original text, possibly not valid UTF-8.
	os string
	// text is a best-effort UTF-8 view of os.
	text      string
	afterDash bool
	sep       bool
}

func (t arg) isFlag() bool {
	return t.kind != argWord
}

func parseArg(s string, afterDash bool) arg {
	t := arg{os: s, text: strings.ToValidUTF8(s, "\uFFFD"), afterDash: afterDash}
	switch {
	case afterDash, s == "-", !strings.HasPrefix(s, "-"), isNegativeNumber(s):
		t.kind = argWord
		return t
	case strings.HasPrefix(s, "--"):
		t.kind = argLong
		t.name = s[2:]
	default:
		t.kind = argShort
		t.name = s[1:]
	}
	if idx := strings.IndexByte(t.name, '='); idx >= 0 {
		t.value = t.name[idx+1:]
		t.name = t.name[:idx]
		t.hasValue = true
	}
	return t
}

// isNegativeNumber reports whether s is a dash followed by a decimal number,
// such as -5, -0.25 or -.5. Such tokens are words, not short flags.
func isNegativeNumber(s string) bool {
	num, ok := strings.CutPrefix(s, "-")
	if !ok {
		return false
	}
	whole, frac, _ := strings.Cut(num, ".")
	digits := whole + frac
	return digits != "" && !strings.ContainsFunc(digits, func(r rune) bool {
		return r < '0' || r > '9'
	})
}

// Args is the mutable, order-independent view of the remaining command line.
//
// Parsers observe input only by consuming tokens. Named items can be consumed
// from anywhere, positional items take the first free word. Alternation works
// on clones so that a failed branch never leaks consumption into its siblings.
type Args struct {
	items    []arg
	consumed []bool
	used     int
	// current is the absolute position of the most recently consumed token,
	// -1 when nothing was consumed yet.
	current int
	// offset is the absolute position of items[0], non-zero inside a subcommand.
	offset int
	// level is the subcommand nesting level, used when stamping completion depth.
	level int

	comp   *completion
	env    func(string) (string, bool)
	logger *log.Logger
}

// NewArgs builds a token store from command line arguments, without the
// program name.
func NewArgs(args ...string) *Args {
	a := &Args{
		items:    make([]arg, 0, len(args)),
		consumed: make([]bool, len(args)),
		current:  -1,
		env:      os.LookupEnv,
	}
	afterDash := false
	for _, s := range args {
		if s == separator && !afterDash {
			a.items = append(a.items, arg{kind: argWord, os: s, text: s, sep: true})
			afterDash = true
			continue
		}
		a.items = append(a.items, parseArg(s, afterDash))
	}
	return a
}

// SetCompletion attaches a completion request. Evaluation then collects
// completion candidates instead of failing on the first mismatch.
func (a *Args) SetCompletion(req CompletionRequest) *Args {
	a.comp = newCompletion(req, len(a.items)-1)
	return a
}

// SetEnv replaces the environment lookup used by env fallbacks.
func (a *Args) SetEnv(lookup func(string) (string, bool)) *Args {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	a.env = lookup
	return a
}

// SetLogger attaches a logger that traces alternation decisions at debug level.
func (a *Args) SetLogger(l *log.Logger) *Args {
	a.logger = l
	return a
}

// Len returns the number of tokens, consumed or not.
func (a *Args) Len() int {
	return len(a.items)
}

// Remaining returns the number of unconsumed tokens.
func (a *Args) Remaining() int {
	return len(a.items) - a.used
}

func (a *Args) clone() *Args {
	c := *a
	c.consumed = make([]bool, len(a.consumed))
	copy(c.consumed, a.consumed)
	return &c
}

// restore copies the consumption state of a trial clone back into a.
func (a *Args) restore(from *Args) {
	copy(a.consumed, from.consumed)
	a.used = from.used
	a.current = from.current
}

func (a *Args) consume(i int) {
	if a.consumed[i] {
		return
	}
	a.consumed[i] = true
	a.used++
	a.current = a.offset + i
}

func (a *Args) pos(i int) int {
	return a.offset + i
}

// currentText returns the text of the most recently consumed token.
func (a *Args) currentText() string {
	i := a.current - a.offset
	if i < 0 || i >= len(a.items) {
		return ""
	}
	return a.items[i].text
}

func (a *Args) lookupEnv(names []string) (string, string, bool) {
	for _, name := range names {
		if v, ok := a.env(name); ok {
			return name, v, true
		}
	}
	return "", "", false
}

// isTouching reports whether token i is the one under the cursor of an
// active completion request.
func (a *Args) isTouching(i int) bool {
	return a.comp != nil && a.comp.touching && a.offset+i == a.comp.last
}

// isLast reports whether token i is the last token on the command line.
func (a *Args) isLast(i int) bool {
	return a.comp != nil && a.offset+i == a.comp.last
}

// findNamed returns the index of the first unconsumed flag token with one of
// the given names, or -1.
func (a *Args) findNamed(shorts []rune, longs []string) int {
	for i, t := range a.items {
		if a.consumed[i] {
			continue
		}
		switch t.kind {
		case argShort:
			for _, s := range shorts {
				if t.name == string(s) {
					return i
				}
			}
		case argLong:
			for _, l := range longs {
				if t.name == l {
					return i
				}
			}
		}
	}
	return -1
}

// nextWord returns the index of the first unconsumed positional word, or -1.
// Flags are skipped. When strict is set only words after the "--" separator
// qualify.
func (a *Args) nextWord(strict bool) int {
	for i, t := range a.items {
		if a.consumed[i] || t.sep || t.isFlag() {
			continue
		}
		if strict && !t.afterDash {
			continue
		}
		return i
	}
	return -1
}

// nextToken returns the index of the first unconsumed token of any kind,
// ignoring the separator, or -1.
func (a *Args) nextToken() int {
	for i, t := range a.items {
		if a.consumed[i] || t.sep {
			continue
		}
		return i
	}
	return -1
}

// take consumes token i. Taking a word past the separator consumes the
// separator as well.
func (a *Args) take(i int) {
	a.consume(i)
	if !a.items[i].afterDash {
		return
	}
	for j := i - 1; j >= 0; j-- {
		if a.items[j].sep {
			a.consume(j)
			return
		}
	}
}

// scope returns a new store owning every unconsumed token after position i.
// The tokens are marked consumed in a.
func (a *Args) scope(i int) *Args {
	sub := &Args{
		items:    a.items[i+1:],
		consumed: make([]bool, len(a.items)-i-1),
		current:  a.current,
		offset:   a.offset + i + 1,
		comp:     a.comp,
		env:      a.env,
		logger:   a.logger,
	}
	for j := range sub.items {
		if a.consumed[i+1+j] {
			sub.consumed[j] = true
			sub.used++
		}
	}
	sub.level = a.level + 1
	for j := i + 1; j < len(a.items); j++ {
		a.consume(j)
	}
	a.current = a.offset + i
	return sub
}

// depth ranks completion candidates: any subcommand scope outranks its
// parents, within a scope more consumed tokens outrank fewer.
func (a *Args) depth() int {
	if a.comp == nil {
		return 0
	}
	return a.level*(a.comp.last+2) + a.used
}

func (a *Args) debug(msg string, keyvals ...any) {
	if a.logger == nil {
		return
	}
	a.logger.Debug(msg, keyvals...)
}
