// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package metadoc

import (
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/yeetrun/yopt/pkg/yopt"
)

type runArgs struct {
	ports []int
	svc   string
}

func runOptions() *yopt.Options[runArgs] {
	p := yopt.Construct(
		yopt.Bind(yopt.Many[int](yopt.Argument[int](yopt.Short('p').Long("port").Env("PORT").Help("Publish a port"), "PORT")),
			func(r *runArgs, v []int) { r.ports = v }),
		yopt.Bind(yopt.Positional[string]("SVC"), func(r *runArgs, v string) { r.svc = v }),
	)
	return yopt.ToOptions(p).Descr("Run a service")
}

func TestNew(t *testing.T) {
	top := yopt.ToOptions(yopt.OneOf[runArgs](
		yopt.Command("run", runOptions()).Short('r'),
		yopt.Literal("noop", runArgs{}),
	))
	d := New("svcctl", top.Meta())

	if d.Usage != "(run | noop)" {
		t.Errorf("Usage = %q", d.Usage)
	}
	want := Node{
		Kind: "or",
		Children: []Node{
			{Kind: "item", Item: &Item{
				Kind:         "command",
				Command:      "run",
				CommandShort: "r",
				Help:         "Run a service",
				Sub: &Node{Kind: "and", Children: []Node{
					{Kind: "many", Children: []Node{
						{Kind: "item", Item: &Item{Kind: "argument", Short: "p", Long: "port", Metavar: "PORT", Env: "PORT", Help: "Publish a port"}},
					}},
					{Kind: "item", Item: &Item{Kind: "positional", Metavar: "SVC"}},
				}},
			}},
			{Kind: "item", Item: &Item{Kind: "positional", Metavar: "noop", Literal: true}},
		},
	}
	if diff := cmp.Diff(want, d.Grammar); diff != "" {
		t.Errorf("grammar mismatch (-want +got):\n%s", diff)
	}
}

func TestMarshal(t *testing.T) {
	m := yopt.Fallback[int](yopt.Argument[int](yopt.Long("count"), "N"), 3).DisplayFallback().Meta()
	b, err := Marshal(New("demo", m))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	lines := strings.Split(string(b), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	for _, want := range []string{"name: demo", "kind: optional", "long: count"} {
		if !slices.Contains(lines, want) {
			t.Errorf("output missing %q:\n%s", want, b)
		}
	}

	d, err := Unmarshal(b)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	back, err := d.Grammar.Meta()
	if err != nil {
		t.Fatalf("Meta: %v", err)
	}
	if diff := cmp.Diff(m, back, cmpopts.EquateEmpty()); diff != "" {
		t.Errorf("descriptor mismatch (-want +got):\n%s", diff)
	}
	if back.Usage() != "[--count N]" {
		t.Errorf("Usage() = %q", back.Usage())
	}
}

func TestMeta_Errors(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want string
	}{
		{name: "node kind", node: Node{Kind: "xor"}, want: `unknown node kind "xor"`},
		{name: "item kind", node: Node{Kind: "item", Item: &Item{Kind: "switch"}}, want: `unknown item kind "switch"`},
		{name: "short name", node: Node{Kind: "item", Item: &Item{Kind: "flag", Short: "vv"}}, want: `expected a single character, got "vv"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.node.Meta()
			if err == nil || err.Error() != tt.want {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
