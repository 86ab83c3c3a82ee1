// Package vdom provides the virtual tree and the differ.
//
// A VNode is an immutable description of a piece of UI: an element, a text
// node or a fragment. Views build a fresh tree on every render; Diff
// compares the previous and next trees and returns the edit script that
// turns one live tree into the other.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("todos"),
//	    Li(Key("1"), Text("Write code")),
//	    Li(Key("2"), Text("Ship it")),
//	)
//
// or with El for tags without a helper:
//
//	El("my-widget", Props{"size": "lg"}, []*VNode{Text("hi")})
//
// # Identity
//
// Every child is addressed by an identity key: its explicit Key, or the
// synthetic key "#<index>" when it has none. Patches name their target by
// the identity keys on the path from the root. When one child list holds
// the same key twice the last occurrence wins and earlier ones are dropped.
//
// # Diffing
//
// For each element Diff emits, in order: removals of children that are
// gone, moves of retained children, insertions of new children, changes to
// the element's own attributes, then the changes inside each child. Keyed
// child lists keep the longest increasing subsequence of retained children
// in place and move only the rest.
package vdom
