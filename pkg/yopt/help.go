// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"fmt"
	"os"
	"slices"
	"strings"
	"unicode/utf8"
)

type helpDoc struct {
	descr   string
	header  string
	footer  string
	version string
	usage   string
}

type helpRow struct {
	name  string
	lines []string
}

type helpSection struct {
	title string
	rows  []*helpRow
}

// add appends r unless an identical row exists, and returns the kept row.
func (s *helpSection) add(r *helpRow) *helpRow {
	for _, have := range s.rows {
		if have.name == r.name && slices.Equal(have.lines, r.lines) {
			return have
		}
	}
	s.rows = append(s.rows, r)
	return r
}

func (s *helpSection) render() string {
	width := 0
	for _, r := range s.rows {
		if n := utf8.RuneCountInString(r.name); n > width {
			width = n
		}
	}
	indent := strings.Repeat(" ", width+6)
	var sb strings.Builder
	sb.WriteString(s.title)
	for _, r := range s.rows {
		sb.WriteString("\n    ")
		if len(r.lines) == 0 || r.lines[0] == "" {
			sb.WriteString(r.name)
		} else {
			sb.WriteString(padRight(r.name, width))
			sb.WriteString("  ")
			sb.WriteString(r.lines[0])
		}
		for _, l := range r.lines[1:] {
			sb.WriteString("\n")
			sb.WriteString(indent)
			sb.WriteString(l)
		}
	}
	return sb.String()
}

// collector walks a descriptor and sorts its items into help sections.
type collector struct {
	lookup      func(string) (string, bool)
	positionals helpSection
	options     helpSection
	commands    helpSection
	// last is the most recently added row, the target of [default: X].
	last *helpRow
}

func (c *collector) walk(m Meta) {
	switch m.Kind {
	case MetaItem:
		c.item(*m.Item)
	case MetaSkip:
	case MetaOptional:
		c.last = nil
		c.walk(m.Children[0])
		if m.Default != "" && c.last != nil {
			if len(c.last.lines) == 0 {
				c.last.lines = append(c.last.lines, "")
			}
			c.last.lines = append(c.last.lines, fmt.Sprintf("[default: %s]", m.Default))
		}
	default:
		for _, ch := range m.Children {
			c.walk(ch)
		}
	}
}

func (c *collector) item(it Item) {
	r := &helpRow{}
	var sec *helpSection
	switch it.Kind {
	case ItemPositional:
		if it.Literal {
			return
		}
		r.name = "<" + it.Metavar + ">"
		sec = &c.positionals
	case ItemCommand:
		r.name = it.Command
		sec = &c.commands
	case ItemFlag:
		r.name = it.Name.helpName()
		if it.Env != "" {
			state := "not set"
			if _, ok := c.lookup(it.Env); ok {
				state = "set"
			}
			r.lines = append(r.lines, fmt.Sprintf("[env:%s: %s]", it.Env, state))
		}
		sec = &c.options
	case ItemArgument:
		r.name = it.Name.helpName() + " <" + it.Metavar + ">"
		if it.Env != "" {
			if v, ok := c.lookup(it.Env); ok {
				r.lines = append(r.lines, fmt.Sprintf("[env:%s = %q]", it.Env, v))
			} else {
				r.lines = append(r.lines, fmt.Sprintf("[env:%s: N/A]", it.Env))
			}
		}
		sec = &c.options
	default:
		return
	}
	if it.Help != "" {
		r.lines = append(r.lines, strings.Split(it.Help, "\n")...)
	}
	c.last = sec.add(r)
}

func (h helpDoc) render(m Meta, lookup func(string) (string, bool)) string {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	c := &collector{
		lookup:      lookup,
		positionals: helpSection{title: "Available positional items:"},
		options:     helpSection{title: "Available options:"},
		commands:    helpSection{title: "Available commands:"},
	}
	c.walk(m)
	c.options.rows = append(c.options.rows, &helpRow{name: "-h, --help", lines: []string{"Prints help information"}})
	if h.version != "" {
		c.options.rows = append(c.options.rows, &helpRow{name: "-V, --version", lines: []string{"Prints version information"}})
	}

	var blocks []string
	if h.descr != "" {
		blocks = append(blocks, h.descr)
	}
	usage := m.Usage()
	if h.usage != "" {
		blocks = append(blocks, strings.ReplaceAll(h.usage, "{usage}", usage))
	} else {
		blocks = append(blocks, strings.TrimRight("Usage: "+usage, " "))
	}
	if h.header != "" {
		blocks = append(blocks, h.header)
	}
	for _, s := range []*helpSection{&c.positionals, &c.options, &c.commands} {
		if len(s.rows) > 0 {
			blocks = append(blocks, s.render())
		}
	}
	if h.footer != "" {
		blocks = append(blocks, h.footer)
	}
	return strings.Join(blocks, "\n\n") + "\n"
}
