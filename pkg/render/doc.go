// Package render connects a view function to a live tree.
//
// A Root runs the view inside a reactor. The first run mounts the live tree
// directly; every later run diffs the new virtual tree against the previous
// one, applies the edit script to the live tree and hands it to the
// registered sinks, numbered by a sequence that increases by one per
// non-empty script.
//
// # Basic Usage
//
//	rt := reactive.New()
//	count := reactive.NewCell(rt, 0)
//
//	root := render.New(rt, func() *vdom.VNode {
//	    return vdom.Div(vdom.Textf("count: %d", count.Get()))
//	})
//	root.OnPatch(func(f render.Frame) { ... })
//	root.Mount()
//
//	count.Set(1) // one SetText patch reaches the sink
package render
