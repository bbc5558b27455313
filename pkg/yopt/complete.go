// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Style selects the completion output dialect.
type Style uint8

const (
	Bash Style = iota
	Zsh
)

func (s Style) String() string {
	switch s {
	case Bash:
		return "bash"
	case Zsh:
		return "zsh"
	}
	return fmt.Sprintf("Style(%d)", uint8(s))
}

// DefaultClusterEcho is the default ClusterEcho threshold.
const DefaultClusterEcho = 2

// CompletionRequest describes a single shell completion invocation.
type CompletionRequest struct {
	Style Style
	// Touching is set when the cursor is directly after the last token, so
	// that token is the fragment being completed.
	Touching bool
	// ClusterEcho is the longest short token, in characters, that is still
	// completed structurally. Longer ones like -vvv are echoed back as is.
	// Zero means DefaultClusterEcho.
	ClusterEcho int
}

type compKind uint8

const (
	compItem compKind = iota
	compValue
	compMeta
)

// pending marks a candidate whose depth is not known yet.
const pending = -1

// comp is a single completion candidate.
type comp struct {
	kind  compKind
	depth int

	// compItem
	item Item

	// compValue
	value string
	help  string

	// isArg is set on metas and values for the value of a named argument
	// being typed: no other candidate applies then.
	isArg bool

	// compMeta
	meta string
	// input is the value text typed so far, prefix the text before it in the
	// same token (like "--name=").
	input   string
	prefix  string
	literal bool
}

type completion struct {
	style       Style
	touching    bool
	last        int
	clusterEcho int
	comps       []comp
}

func newCompletion(req CompletionRequest, last int) *completion {
	c := &completion{
		style:       req.Style,
		touching:    req.Touching && last >= 0,
		last:        last,
		clusterEcho: req.ClusterEcho,
	}
	if c.clusterEcho <= 0 {
		c.clusterEcho = DefaultClusterEcho
	}
	return c
}

func (a *Args) pushItem(it Item) {
	if a.comp == nil {
		return
	}
	a.comp.comps = append(a.comp.comps, comp{kind: compItem, depth: pending, item: it})
}

func (a *Args) pushMeta(meta, help string, isArg bool, input, prefix string) {
	if a.comp == nil {
		return
	}
	a.comp.comps = append(a.comp.comps, comp{
		kind:   compMeta,
		depth:  pending,
		meta:   meta,
		help:   help,
		isArg:  isArg,
		input:  input,
		prefix: prefix,
	})
}

func (a *Args) pushLiteral(text, help string) {
	if a.comp == nil {
		return
	}
	a.comp.comps = append(a.comp.comps, comp{kind: compMeta, depth: pending, meta: text, help: help, literal: true})
}

func (a *Args) compMark() int {
	if a.comp == nil {
		return 0
	}
	return len(a.comp.comps)
}

// settle stamps every pending candidate pushed since mark with the current
// depth of a.
func (a *Args) settle(mark int) {
	if a.comp == nil {
		return
	}
	d := a.depth()
	for i := mark; i < len(a.comp.comps); i++ {
		if a.comp.comps[i].depth == pending {
			a.comp.comps[i].depth = d
		}
	}
}

func (c *completion) truncate(mark int) {
	if mark < len(c.comps) {
		c.comps = c.comps[:mark]
	}
}

// expand replaces the value placeholders pushed since mark with the
// suggestions produced by fn.
func (c *completion) expand(mark int, fn func(string) []Suggestion) {
	if mark >= len(c.comps) {
		return
	}
	tail := append([]comp(nil), c.comps[mark:]...)
	c.comps = c.comps[:mark]
	for _, cp := range tail {
		var input, prefix string
		switch {
		case cp.kind == compMeta && !cp.literal:
			input, prefix = cp.input, cp.prefix
		case cp.kind == compItem && cp.item.Kind == ItemPositional && !cp.item.Literal:
		default:
			c.comps = append(c.comps, cp)
			continue
		}
		for _, s := range fn(input) {
			c.comps = append(c.comps, comp{
				kind:  compValue,
				depth: cp.depth,
				value: prefix + s.Value,
				help:  s.Help,
				isArg: cp.isArg,
			})
		}
	}
}

// fragment returns the text of the touching token. ok is false if the token
// is not valid UTF-8.
func (a *Args) fragment() (frag string, present, ok bool) {
	if a.comp == nil || !a.comp.touching {
		return "", false, true
	}
	t := a.items[a.comp.last-a.offset]
	if !utf8.ValidString(t.os) {
		return "", true, false
	}
	return t.os, true, true
}

// checkComplete renders the collected candidates. It returns nil when no
// completion was requested and a *CompletionError otherwise.
func (a *Args) checkComplete() error {
	if a.comp == nil {
		return nil
	}
	frag, present, ok := a.fragment()
	if !ok {
		return &CompletionError{Text: "\n"}
	}
	if present {
		t := a.items[a.comp.last-a.offset]
		if t.kind == argShort && !t.hasValue && utf8.RuneCountInString(frag) > a.comp.clusterEcho {
			return &CompletionError{Text: frag + "\n"}
		}
	}
	var sb strings.Builder
	if err := a.comp.render(&sb, frag, present); err != nil {
		return &UnrenderableError{Err: err}
	}
	return &CompletionError{Text: sb.String()}
}

type showComp struct {
	descr string
	// subst is used when several candidates are shown and includes metavars,
	// subst1 when there is a single one.
	subst   string
	subst1  string
	isValue bool
	isArg   bool
}

func (c *completion) render(w io.Writer, frag string, present bool) error {
	maxDepth := pending
	for _, cp := range c.comps {
		if cp.depth > maxDepth {
			maxDepth = cp.depth
		}
	}

	var items []showComp
	hasValues, hasArgValues := false, false
	for _, cp := range c.comps {
		if cp.depth != maxDepth {
			continue
		}
		switch cp.kind {
		case compItem:
			sc, ok := itemComp(cp.item, frag, present)
			if ok {
				items = append(items, sc)
			}
		case compValue:
			hasValues = true
			hasArgValues = hasArgValues || cp.isArg
			items = append(items, showComp{descr: cp.help, subst: cp.value, subst1: cp.value, isValue: true, isArg: cp.isArg})
		case compMeta:
			if cp.isArg {
				if present {
					_, err := fmt.Fprintln(w, frag)
					return err
				}
				_, err := fmt.Fprintf(w, "<%s>\n", cp.meta)
				return err
			}
			if cp.literal {
				if !present || strings.HasPrefix(cp.meta, frag) {
					items = append(items, showComp{descr: cp.help, subst: cp.meta, subst1: cp.meta})
				}
				continue
			}
			// A placeholder would overwrite the word being typed.
			if present {
				continue
			}
			m := "<" + cp.meta + ">"
			items = append(items, showComp{descr: cp.help, subst: m, subst1: m})
		}
	}

	if hasValues {
		kept := items[:0]
		for _, it := range items {
			if it.isValue && (it.isArg || !hasArgValues) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	items = mergeRows(items)

	if len(items) == 1 {
		_, err := fmt.Fprintln(w, items[0].subst1)
		return err
	}

	width := 0
	for _, it := range items {
		if n := utf8.RuneCountInString(it.subst); n > width {
			width = n
		}
	}
	for _, it := range items {
		var err error
		switch {
		case c.style == Zsh && it.descr != "":
			_, err = fmt.Fprintf(w, "%s\t%s\n", it.subst1, it.descr)
		case c.style == Zsh:
			_, err = fmt.Fprintln(w, it.subst1)
		case it.descr != "":
			_, err = fmt.Fprintf(w, "%s  %s\n", padRight(it.subst, width), it.descr)
		default:
			_, err = fmt.Fprintln(w, it.subst)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func itemComp(it Item, frag string, present bool) (showComp, bool) {
	switch it.Kind {
	case ItemPositional:
		// Nothing sensible can be suggested for a free-form word the user
		// already started typing.
		if present {
			return showComp{}, false
		}
		m := "<" + it.Metavar + ">"
		return showComp{descr: it.Help, subst: m, subst1: m}, true
	case ItemCommand:
		name, ok := cmdMatches(frag, present, it.Command, it.CommandShort)
		if !ok {
			return showComp{}, false
		}
		return showComp{descr: it.Help, subst: name, subst1: name}, true
	case ItemFlag:
		name, ok := argMatches(frag, present, it.Name)
		if !ok {
			return showComp{}, false
		}
		return showComp{descr: it.Help, subst: name, subst1: name}, true
	case ItemArgument:
		name, ok := argMatches(frag, present, it.Name)
		if !ok {
			return showComp{}, false
		}
		return showComp{descr: it.Help, subst: name + " <" + it.Metavar + ">", subst1: name}, true
	}
	return showComp{}, false
}

// argMatches reports whether frag could still grow into the name and returns
// the text to substitute.
func argMatches(frag string, present bool, name ShortLong) (string, bool) {
	if !present {
		return name.PreferredName(), true
	}
	match := frag == "-"
	if name.Short != 0 && (frag == "" || frag == "-"+string(name.Short)) {
		match = true
	}
	if name.Long != "" {
		if rest, ok := strings.CutPrefix(frag, "--"); ok && strings.HasPrefix(name.Long, rest) {
			match = true
		}
	}
	if !match {
		return "", false
	}
	return name.PreferredName(), true
}

func cmdMatches(frag string, present bool, name string, short rune) (string, bool) {
	if !present {
		return name, true
	}
	if strings.HasPrefix(name, frag) || (short != 0 && frag == string(short)) {
		return name, true
	}
	return "", false
}

func mergeRows(items []showComp) []showComp {
	out := items[:0]
	seen := make(map[showComp]bool, len(items))
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
