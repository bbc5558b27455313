// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import (
	"fmt"
	"strings"
)

// MetaKind identifies a node of the structural descriptor.
type MetaKind uint8

const (
	// MetaItem is a single leaf item.
	MetaItem MetaKind = iota
	// MetaAnd is a product: every child is required.
	MetaAnd
	// MetaOr is an alternation: exactly one child wins.
	MetaOr
	// MetaMany is a repeatable child.
	MetaMany
	// MetaOptional is an optional child.
	MetaOptional
	// MetaSkip is not shown anywhere.
	MetaSkip
)

func (k MetaKind) String() string {
	switch k {
	case MetaItem:
		return "item"
	case MetaAnd:
		return "and"
	case MetaOr:
		return "or"
	case MetaMany:
		return "many"
	case MetaOptional:
		return "optional"
	case MetaSkip:
		return "skip"
	}
	return fmt.Sprintf("MetaKind(%d)", uint8(k))
}

// Meta describes what a parser can consume. It mirrors the shape of the
// combinator tree and does not depend on the input, so it is shared by help
// rendering and by anything else that wants to inspect the grammar.
type Meta struct {
	Kind     MetaKind
	Item     *Item
	Children []Meta
	// Default is the displayed fallback value of an optional node.
	Default string
}

func itemMeta(it Item) Meta {
	return Meta{Kind: MetaItem, Item: &it}
}

func andMeta(children ...Meta) Meta {
	return Meta{Kind: MetaAnd, Children: children}
}

func orMeta(children ...Meta) Meta {
	return Meta{Kind: MetaOr, Children: children}
}

func optionalMeta(child Meta) Meta {
	if child.Kind == MetaOptional || child.Kind == MetaSkip {
		return child
	}
	return Meta{Kind: MetaOptional, Children: []Meta{child}}
}

func manyMeta(child Meta) Meta {
	if child.Kind == MetaSkip {
		return child
	}
	return Meta{Kind: MetaMany, Children: []Meta{child}}
}

// Usage renders the descriptor as a usage line.
func (m Meta) Usage() string {
	return m.usage()
}

func (m Meta) usage() string {
	switch m.Kind {
	case MetaItem:
		return m.Item.usage()
	case MetaAnd:
		parts := make([]string, 0, len(m.Children))
		for _, c := range m.Children {
			if s := c.usage(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, " ")
	case MetaOr:
		parts := make([]string, 0, len(m.Children))
		for _, c := range m.Children {
			if s := c.usage(); s != "" {
				parts = append(parts, s)
			}
		}
		switch len(parts) {
		case 0:
			return ""
		case 1:
			return parts[0]
		}
		return "(" + strings.Join(parts, " | ") + ")"
	case MetaOptional:
		s := m.Children[0].usage()
		if s == "" {
			return ""
		}
		return "[" + s + "]"
	case MetaMany:
		s := m.Children[0].usage()
		if s == "" {
			return ""
		}
		if m.Children[0].Kind == MetaAnd {
			s = "(" + s + ")"
		}
		return s + "..."
	}
	return ""
}

// Items returns every visible leaf item in the descriptor, depth first. Items
// nested inside commands are not included.
func (m Meta) Items() []Item {
	var out []Item
	m.walk(func(it Item) { out = append(out, it) })
	return out
}

func (m Meta) walk(f func(Item)) {
	switch m.Kind {
	case MetaItem:
		f(*m.Item)
	case MetaSkip:
	default:
		for _, c := range m.Children {
			c.walk(f)
		}
	}
}
