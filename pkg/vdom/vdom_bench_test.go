package vdom

import "testing"

func benchList(n int, reversed bool) *VNode {
	items := make([]*VNode, n)
	for i := range items {
		k := i
		if reversed {
			k = n - 1 - i
		}
		items[i] = Li(Key(k), Class("row"), Textf("row %d", k))
	}
	return Ul(items)
}

func BenchmarkDiffIdentical1000(b *testing.B) {
	prev, next := benchList(1000, false), benchList(1000, false)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Diff(prev, next)
	}
}

func BenchmarkDiffReverse1000(b *testing.B) {
	prev, next := benchList(1000, false), benchList(1000, true)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Diff(prev, next)
	}
}

func BenchmarkDiffUnkeyedText1000(b *testing.B) {
	build := func(label string) *VNode {
		return Div(Repeat(1000, func(i int) *VNode { return P(Textf("%s %d", label, i)) }))
	}
	prev, next := build("a"), build("b")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Diff(prev, next)
	}
}
