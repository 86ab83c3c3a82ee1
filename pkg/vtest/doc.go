// Package vtest provides testing helpers for weave views.
//
// The vtest package reduces boilerplate when testing render roots by
// mounting a view, recording its frames and keeping a remote live tree in
// sync through the wire codec, so every test also checks that its edit
// scripts survive encoding.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    rt := reactive.New()
//	    count := reactive.NewCell(rt, 0)
//	    h := vtest.Mount(t, rt, func() *vdom.VNode {
//	        return vdom.P(vdom.Textf("%d", count.Get()))
//	    })
//
//	    count.Set(1)
//	    h.ExpectHTML("<p>1</p>")
//	    h.ExpectOps(vdom.PatchSetText)
//	}
//
// # Render Assertions
//
// Assert on the HTML of a single VNode without a runtime:
//
//	vtest.ExpectContains(t, view(), "Welcome")
//	vtest.ExpectNotContains(t, view(), "Error")
//	vtest.ExpectAttribute(t, view(), "class", "btn-primary")
package vtest
