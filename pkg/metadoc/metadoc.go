// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package metadoc exports the structural descriptor of a yopt parser as YAML
// so that help, man page or website renderers can work from the grammar
// without linking against the program.
package metadoc

import (
	"fmt"
	"unicode/utf8"

	"github.com/yeetrun/yopt/pkg/yopt"
	"gopkg.in/yaml.v3"
)

// Document is the top level of an exported descriptor.
type Document struct {
	Name    string `yaml:"name,omitempty"`
	Usage   string `yaml:"usage"`
	Grammar Node   `yaml:"grammar"`
}

// Node mirrors yopt.Meta.
type Node struct {
	Kind     string `yaml:"kind"`
	Item     *Item  `yaml:"item,omitempty"`
	Children []Node `yaml:"children,omitempty"`
	Default  string `yaml:"default,omitempty"`
}

// Item mirrors yopt.Item. Runes are exported as one-character strings.
type Item struct {
	Kind         string `yaml:"kind"`
	Short        string `yaml:"short,omitempty"`
	Long         string `yaml:"long,omitempty"`
	Metavar      string `yaml:"metavar,omitempty"`
	Env          string `yaml:"env,omitempty"`
	Help         string `yaml:"help,omitempty"`
	Command      string `yaml:"command,omitempty"`
	CommandShort string `yaml:"command_short,omitempty"`
	Strict       bool   `yaml:"strict,omitempty"`
	Literal      bool   `yaml:"literal,omitempty"`
	Anywhere     bool   `yaml:"anywhere,omitempty"`
	Sub          *Node  `yaml:"sub,omitempty"`
}

// New builds a document for the named program.
func New(name string, m yopt.Meta) Document {
	return Document{Name: name, Usage: m.Usage(), Grammar: FromMeta(m)}
}

// Marshal renders the document as YAML.
func Marshal(d Document) ([]byte, error) {
	return yaml.Marshal(d)
}

// Unmarshal parses a document produced by Marshal.
func Unmarshal(b []byte) (Document, error) {
	var d Document
	if err := yaml.Unmarshal(b, &d); err != nil {
		return Document{}, fmt.Errorf("failed to parse descriptor: %w", err)
	}
	return d, nil
}

// FromMeta converts a descriptor tree.
func FromMeta(m yopt.Meta) Node {
	n := Node{Kind: m.Kind.String(), Default: m.Default}
	if m.Item != nil {
		n.Item = fromItem(*m.Item)
	}
	for _, c := range m.Children {
		n.Children = append(n.Children, FromMeta(c))
	}
	return n
}

func fromItem(it yopt.Item) *Item {
	out := &Item{
		Kind:         it.Kind.String(),
		Short:        runeString(it.Name.Short),
		Long:         it.Name.Long,
		Metavar:      it.Metavar,
		Env:          it.Env,
		Help:         it.Help,
		Command:      it.Command,
		CommandShort: runeString(it.CommandShort),
		Strict:       it.Strict,
		Literal:      it.Literal,
		Anywhere:     it.Anywhere,
	}
	if it.Sub != nil {
		sub := FromMeta(*it.Sub)
		out.Sub = &sub
	}
	return out
}

// Meta converts the node back into a descriptor.
func (n Node) Meta() (yopt.Meta, error) {
	kind, err := parseMetaKind(n.Kind)
	if err != nil {
		return yopt.Meta{}, err
	}
	m := yopt.Meta{Kind: kind, Default: n.Default}
	if n.Item != nil {
		it, err := n.Item.item()
		if err != nil {
			return yopt.Meta{}, err
		}
		m.Item = &it
	}
	for _, c := range n.Children {
		cm, err := c.Meta()
		if err != nil {
			return yopt.Meta{}, err
		}
		m.Children = append(m.Children, cm)
	}
	return m, nil
}

func (i *Item) item() (yopt.Item, error) {
	kind, err := parseItemKind(i.Kind)
	if err != nil {
		return yopt.Item{}, err
	}
	short, err := parseRune(i.Short)
	if err != nil {
		return yopt.Item{}, err
	}
	cmdShort, err := parseRune(i.CommandShort)
	if err != nil {
		return yopt.Item{}, err
	}
	it := yopt.Item{
		Kind:         kind,
		Name:         yopt.ShortLong{Short: short, Long: i.Long},
		Metavar:      i.Metavar,
		Env:          i.Env,
		Help:         i.Help,
		Command:      i.Command,
		CommandShort: cmdShort,
		Strict:       i.Strict,
		Literal:      i.Literal,
		Anywhere:     i.Anywhere,
	}
	if i.Sub != nil {
		sub, err := i.Sub.Meta()
		if err != nil {
			return yopt.Item{}, err
		}
		it.Sub = &sub
	}
	return it, nil
}

func runeString(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}

func parseRune(s string) (rune, error) {
	if s == "" {
		return 0, nil
	}
	r, size := utf8.DecodeRuneInString(s)
	if size != len(s) || r == utf8.RuneError {
		return 0, fmt.Errorf("expected a single character, got %q", s)
	}
	return r, nil
}

func parseMetaKind(s string) (yopt.MetaKind, error) {
	for k := yopt.MetaItem; k <= yopt.MetaSkip; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown node kind %q", s)
}

func parseItemKind(s string) (yopt.ItemKind, error) {
	for k := yopt.ItemPositional; k <= yopt.ItemArgument; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown item kind %q", s)
}
