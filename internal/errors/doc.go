// Package errors provides coded, structured errors for weave.
//
// Every failure that crosses a package boundary in weave is described by a
// registered code:
//
//   - reactive: graph errors (circular derivations, runaway flushes,
//     writes to disposed cells)
//   - reconcile: edit scripts that cannot be applied to a live tree
//   - protocol: malformed wire frames
//   - config: invalid configuration files
//
// # Usage
//
//	err := errors.New("E003").
//	    WithDetail("no child #4 under [list]").
//	    WithSuggestion("apply edit scripts in the order Diff produced them")
//
//	fmt.Println(err.Format())
//
// Errors compare equal under errors.Is when their codes match, so callers
// can test for a class of failure with a bare template:
//
//	if errors.Is(err, weaveerrors.New("E002")) { ... }
package errors
