package vdom

import "strconv"

// SyntheticKeyPrefix starts the identity key of a child without an explicit
// key. The rest of the key is the child's position.
const SyntheticKeyPrefix = "#"

// Child is a child node paired with its identity key.
type Child struct {
	Key  string
	Node *VNode
}

// IdentityKey returns the identity key of child at index i.
func IdentityKey(child *VNode, i int) string {
	if child != nil && child.Key != "" {
		return child.Key
	}
	return SyntheticKeyPrefix + strconv.Itoa(i)
}

// Children returns n's children with their identity keys. Synthetic keys
// are assigned by position in n.Children. When two children share an
// identity key the last one wins and earlier ones are dropped; an explicit
// key spelled like a synthetic one collides with it.
func Children(n *VNode) []Child {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	out := make([]Child, 0, len(n.Children))
	var seen map[string]int
	dups := false
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		k := IdentityKey(c, i)
		if seen == nil {
			seen = make(map[string]int, len(n.Children))
		}
		if _, ok := seen[k]; ok {
			dups = true
		}
		seen[k] = len(out)
		out = append(out, Child{Key: k, Node: c})
	}
	if !dups {
		return out
	}
	kept := out[:0]
	for i, c := range out {
		if seen[c.Key] != i {
			continue
		}
		kept = append(kept, c)
	}
	return kept
}

// HasKeys returns true if any child has an explicit key.
func HasKeys(children []*VNode) bool {
	for _, child := range children {
		if child != nil && child.Key != "" {
			return true
		}
	}
	return false
}
