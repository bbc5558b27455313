// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yopt

import "fmt"

// ShortLong is the canonical name of a named item: a short name, a long name
// or both. A zero Short or an empty Long means that form is absent.
type ShortLong struct {
	Short rune
	Long  string
}

// PreferredName returns the display name, favoring the long form.
func (n ShortLong) PreferredName() string {
	if n.Long != "" {
		return "--" + n.Long
	}
	return fmt.Sprintf("-%c", n.Short)
}

// usageName returns the name as shown in usage lines, favoring the short form.
func (n ShortLong) usageName() string {
	if n.Short != 0 {
		return fmt.Sprintf("-%c", n.Short)
	}
	return "--" + n.Long
}

// helpName returns the name column used in option tables.
func (n ShortLong) helpName() string {
	switch {
	case n.Short != 0 && n.Long != "":
		return fmt.Sprintf("-%c, --%s", n.Short, n.Long)
	case n.Short != 0:
		return fmt.Sprintf("-%c", n.Short)
	default:
		return "    --" + n.Long
	}
}

func (n ShortLong) isZero() bool {
	return n.Short == 0 && n.Long == ""
}

// ItemKind identifies the kind of leaf Item.
type ItemKind uint8

const (
	ItemPositional ItemKind = iota
	ItemCommand
	ItemFlag
	ItemArgument
)

func (k ItemKind) String() string {
	switch k {
	case ItemPositional:
		return "positional"
	case ItemCommand:
		return "command"
	case ItemFlag:
		return "flag"
	case ItemArgument:
		return "argument"
	}
	return fmt.Sprintf("ItemKind(%d)", uint8(k))
}

// Item describes something a primitive parser can consume. Items are derived
// from static parser configuration and never change after construction.
type Item struct {
	Kind ItemKind
	// Name is set for flags and arguments.
	Name ShortLong
	// Metavar is set for positionals and arguments.
	Metavar string
	// Env is the first environment variable consulted, if any.
	Env  string
	Help string

	// Command holds the command name and CommandShort its optional
	// one-character alias.
	Command      string
	CommandShort rune
	// Sub is the descriptor of the command's own parser.
	Sub *Meta

	// Strict positionals are only taken after "--".
	Strict bool
	// Literal positionals match their metavar text exactly.
	Literal bool
	// Anywhere positionals may match any unconsumed token.
	Anywhere bool
}

// usage renders the item for a usage line.
func (it Item) usage() string {
	switch it.Kind {
	case ItemPositional:
		switch {
		case it.Literal:
			return it.Metavar
		case it.Strict:
			return "-- <" + it.Metavar + ">"
		default:
			return "<" + it.Metavar + ">"
		}
	case ItemCommand:
		return it.Command
	case ItemFlag:
		return it.Name.usageName()
	case ItemArgument:
		return it.Name.usageName() + " " + it.Metavar
	}
	return ""
}
