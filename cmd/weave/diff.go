package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/pkg/dom"
	"github.com/vango-dev/weave/pkg/protocol"
	"github.com/vango-dev/weave/pkg/vdom"
)

func diffCmd() *cobra.Command {
	var unkeyed bool

	cmd := &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Print the edit script between two lists",
		Long: `Print the edit script that turns one list into another.

Each argument is a comma or space separated list of items rendered as
<li> children of a <ul>. Items are keyed by their text unless --unkeyed
is set. The script is applied to a live tree to confirm the result.

Examples:
  weave diff "a,b,c" "c,a,b,d"
  weave diff --unkeyed "a b c" "a c"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(splitItems(args[0]), splitItems(args[1]), !unkeyed)
		},
	}

	cmd.Flags().BoolVarP(&unkeyed, "unkeyed", "u", false, "Match children by position instead of key")

	return cmd
}

func splitItems(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' '
	})
}

func listTree(items []string, keyed bool) *vdom.VNode {
	return vdom.Ul(vdom.Range(items, func(item string, _ int) *vdom.VNode {
		if keyed {
			return vdom.Li(vdom.Key(item), item)
		}
		return vdom.Li(item)
	}))
}

func runDiff(from, to []string, keyed bool) error {
	prev, next := listTree(from, keyed), listTree(to, keyed)
	patches := vdom.Diff(prev, next)

	if len(patches) == 0 {
		success("Lists are identical")
		return nil
	}
	for i, p := range patches {
		info("%2d  %s", i+1, p)
	}
	fmt.Println()

	counts := vdom.Counts(patches)
	ops := make([]vdom.PatchOp, 0, len(counts))
	for op := range counts {
		ops = append(ops, op)
	}
	slices.Sort(ops)

	tbl := table.NewWriter()
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"op", "count"})
	for _, op := range ops {
		tbl.AppendRow(table.Row{op, counts[op]})
	}
	tbl.AppendFooter(table.Row{"total", len(patches)})
	tbl.Render()

	wire := protocol.EncodePatches(&protocol.PatchesFrame{Seq: 1, Patches: patches})
	info("wire size: %s", humanize.Bytes(uint64(len(wire))))

	live := dom.NewPatcher()
	live.Mount(prev)
	if err := live.Apply(patches); err != nil {
		return err
	}
	want := dom.NewPatcher()
	want.Mount(next)
	if live.Root().HTML() != want.Root().HTML() {
		return fmt.Errorf("patched tree %s does not match %s", live.Root().HTML(), want.Root().HTML())
	}
	success("Applied: %s", live.Root().HTML())
	return nil
}
