package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/vango-dev/weave/internal/demo"
	"github.com/vango-dev/weave/pkg/protocol"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
)

type benchOptions struct {
	iterations int
	widths     []int
	heights    []int
	sizes      []int
	poolSize   int
}

func benchCmd() *cobra.Command {
	opts := benchOptions{
		iterations: 100,
		widths:     []int{1, 10, 100},
		heights:    []int{1, 10, 100},
		sizes:      []int{10, 100, 1000},
		poolSize:   reactive.DefaultPoolSize,
	}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure propagation and reconciliation latency",
		Long: `Measure propagation and reconciliation latency.

propagate: one cell feeding width chains of height derivations, each
chain read by an effect. Each iteration writes the cell once.

reconcile: the list demo app with size keyed rows. Each iteration moves,
renames and replaces rows, renders, diffs, patches and encodes the
edit script.

Examples:
  weave bench
  weave bench --iterations 1000 --sizes 100,10000
  weave bench --pool-size 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.iterations <= 0 {
				return fmt.Errorf("--iterations must be > 0")
			}
			benchPropagate(opts)
			fmt.Println()
			benchReconcile(opts)
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.iterations, "iterations", "n", opts.iterations, "Iterations per case")
	cmd.Flags().IntSliceVar(&opts.widths, "widths", opts.widths, "Propagate chain counts")
	cmd.Flags().IntSliceVar(&opts.heights, "heights", opts.heights, "Propagate chain lengths")
	cmd.Flags().IntSliceVar(&opts.sizes, "sizes", opts.sizes, "Reconcile list sizes")
	cmd.Flags().IntVar(&opts.poolSize, "pool-size", opts.poolSize, "Edge pool free-list size (0 disables recycling)")

	return cmd
}

func newBenchTable(title string, header table.Row) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(header)
	return tbl
}

func benchPropagate(opts benchOptions) {
	tbl := newBenchTable("Propagate", table.Row{"graph", "avg", "min", "p75", "p99", "max", "edges", "reused"})

	for _, w := range opts.widths {
		for _, h := range opts.heights {
			rt := reactive.New(reactive.WithPoolSize(opts.poolSize))
			src := reactive.NewCell(rt, 1)
			for range w {
				last := func() int { return src.Get() }
				for range h {
					prev := last
					d := reactive.Derive(rt, func() int { return prev() + 1 })
					last = d.Get
				}
				rt.Effect(func() reactive.Cleanup {
					last()
					return nil
				})
			}

			tach := tachymeter.New(&tachymeter.Config{Size: opts.iterations})
			for range opts.iterations {
				start := time.Now()
				src.Set(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			stats := rt.Pool().Stats()
			tbl.AppendRow(table.Row{
				fmt.Sprintf("%d * %d", w, h),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
				humanize.Comma(int64(stats.Live)),
				humanize.Comma(int64(stats.Reused)),
			})
		}
	}
	tbl.Render()
}

func benchReconcile(opts benchOptions) {
	tbl := newBenchTable("Reconcile", table.Row{"rows", "avg", "min", "p75", "p99", "max", "patches", "wire"})

	for _, size := range opts.sizes {
		rt := reactive.New(reactive.WithPoolSize(opts.poolSize))
		app := demo.List(rt, size, rand.New(rand.NewPCG(1, uint64(size))))
		root := render.New(rt, app.View)

		var (
			patches int
			wire    uint64
		)
		root.OnPatch(func(f render.Frame) {
			data := protocol.EncodePatches(&protocol.PatchesFrame{Seq: f.Seq, Patches: f.Patches})
			patches += len(f.Patches)
			wire += uint64(len(data))
		})
		root.Mount()
		patches, wire = 0, 0

		tach := tachymeter.New(&tachymeter.Config{Size: opts.iterations})
		for range opts.iterations {
			start := time.Now()
			app.Tick()
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRow(table.Row{
			humanize.Comma(int64(size)),
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
			humanize.Comma(int64(patches)),
			humanize.Bytes(wire),
		})
		root.Dispose()
	}
	tbl.Render()
}
