// Package dom holds the live output tree and the Patcher that keeps it in
// step with the virtual tree.
//
// A Node is the mutable counterpart of a vdom.VNode. Each Node indexes its
// children by identity key, so patches addressed by key path resolve in
// one map lookup per level and a retained child keeps its *Node across any
// number of moves.
//
// The first Mount builds the live tree directly from a VNode; every later
// change arrives as an edit script from vdom.Diff and is applied with
// Patcher.Apply. Bindings write to single nodes through the Set* methods.
//
// Nodes are not safe for concurrent use; mutate them from the goroutine
// that runs the reactive runtime.
package dom
