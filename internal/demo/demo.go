// Package demo provides the sample views served by weave serve and
// measured by weave bench.
//
// Each App owns its cells. Tick advances the app's state by one step and
// must run on the runtime goroutine.
package demo

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
	"github.com/vango-dev/weave/pkg/vdom"
)

// Names lists the available apps.
var Names = []string{"counter", "clock", "list"}

// App is a view plus the state transition that drives it.
type App struct {
	Name string
	View render.View
	Tick func()
}

// New builds the named app on rt. size is the row count for the list app.
func New(rt *reactive.Runtime, name string, size int) (*App, error) {
	switch name {
	case "counter":
		return Counter(rt), nil
	case "clock":
		return Clock(rt, time.Now), nil
	case "list":
		return List(rt, size, rand.New(rand.NewPCG(1, 2))), nil
	}
	return nil, errors.New("E006").
		WithDetailf("unknown app %q", name).
		WithSuggestion(fmt.Sprintf("Use one of %v", Names))
}

// Counter counts ticks and derives the parity. Every tenth count shows a
// milestone; the reset button and the "r" key zero it.
func Counter(rt *reactive.Runtime) *App {
	count := reactive.NewCell(rt, 0)
	parity := reactive.Derive(rt, func() string {
		if count.Get()%2 == 0 {
			return "even"
		}
		return "odd"
	})
	return &App{
		Name: "counter",
		View: func() *vdom.VNode {
			n := count.Get()
			return vdom.Div(vdom.Class("counter"),
				vdom.OnKeyDown(func(key string) {
					if key == "r" {
						count.Set(0)
					}
				}),
				vdom.H1(vdom.Textf("%d", n)),
				vdom.P(vdom.Class(parity.Get()), vdom.Text(parity.Get())),
				vdom.When(n > 0 && n%10 == 0, func() *vdom.VNode {
					return vdom.Span(vdom.Class("milestone"), vdom.Textf("%d!", n))
				}),
				vdom.Unless(n == 0, vdom.Button(vdom.OnClick(func() { count.Set(0) }), vdom.Text("reset"))),
			)
		},
		Tick: func() {
			count.Update(func(n int) int { return n + 1 })
		},
	}
}

// Clock shows the time of the last tick. now is injectable for tests.
func Clock(rt *reactive.Runtime, now func() time.Time) *App {
	at := reactive.NewCell(rt, now())
	return &App{
		Name: "clock",
		View: func() *vdom.VNode {
			t := at.Get()
			return vdom.Div(vdom.Class("clock"),
				vdom.Span(vdom.Class("hh"), vdom.Textf("%02d", t.Hour())),
				vdom.Span(vdom.Class("mm"), vdom.Textf("%02d", t.Minute())),
				vdom.Span(vdom.Class("ss"), vdom.Textf("%02d", t.Second())),
				vdom.IfElse(t.Hour() < 12,
					vdom.Span(vdom.Class("half"), vdom.Text("am")),
					vdom.Span(vdom.Class("half"), vdom.Text("pm"))),
			)
		},
		Tick: func() {
			at.Set(now())
		},
	}
}

// List renders size keyed rows. Each tick moves one row, renames one and
// replaces one with a fresh key, in a single batch. The moved row is labeled.
func List(rt *reactive.Runtime, size int, rng *rand.Rand) *App {
	size = max(size, 1)
	next := 0
	row := func() string {
		next++
		return fmt.Sprintf("row-%d", next)
	}
	initial := make([]string, size)
	for i := range initial {
		initial[i] = row()
	}
	rows := reactive.NewCell(rt, initial)
	highlight := reactive.NewCell(rt, "")

	return &App{
		Name: "list",
		View: func() *vdom.VNode {
			hl := highlight.Get()
			return vdom.Ul(vdom.Class("rows"),
				vdom.Range(rows.Get(), func(key string, i int) *vdom.VNode {
					return vdom.Li(vdom.Key(key),
						vdom.ClassIf(key == hl, "hl"),
						vdom.Textf("%d %s", i, key),
						vdom.If(key == hl, vdom.Span(vdom.Class("moved"), vdom.Text("moved"))))
				}),
			)
		},
		Tick: func() {
			rt.Batch(func() {
				cur := slices.Clone(rows.Peek())
				from, to := rng.IntN(len(cur)), rng.IntN(len(cur))
				moved := cur[from]
				cur = slices.Delete(cur, from, from+1)
				cur = slices.Insert(cur, to, moved)
				cur[rng.IntN(len(cur))] = row()
				rows.Set(cur)
				highlight.Set(moved)
			})
		},
	}
}
