package vdom

// Diff compares two VNode trees and returns the patches that transform a
// live tree built from prev into one matching next.
//
// Diff(t, t) is empty. A nil prev or next yields a single PatchMount.
func Diff(prev, next *VNode) []Patch {
	if prev == nil && next == nil {
		return nil
	}
	if prev == nil || next == nil {
		return []Patch{{Op: PatchMount, Node: next}}
	}
	var d differ
	d.diff(nil, prev, next)
	return d.patches
}

type differ struct {
	patches []Patch
}

// pending is a retained child whose subtree still has to be compared.
type pending struct {
	path       []string
	prev, next *VNode
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

// diff compares two nodes with the same identity at path.
func (d *differ) diff(path []string, prev, next *VNode) {
	if prev == next {
		// Trees are immutable; a shared subtree is unchanged.
		return
	}
	if prev.Kind != next.Kind || prev.Tag != next.Tag {
		d.emit(Patch{Op: PatchReplaceNode, Path: path, Node: next})
		return
	}

	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			d.emit(Patch{Op: PatchSetText, Path: path, Value: next.Text})
		}
	case KindElement, KindFragment:
		retained := d.diffChildren(path, prev, next)
		if prev.Kind == KindElement {
			d.diffProps(path, prev.Props, next.Props)
		}
		for _, r := range retained {
			d.diff(r.path, r.prev, r.next)
		}
	}
}

// diffChildren emits the structural patches for one child list: removes,
// then moves, then inserts. It returns the retained pairs in new order.
func (d *differ) diffChildren(path []string, prev, next *VNode) []pending {
	oldKids := Children(prev)
	newKids := Children(next)

	switch {
	case len(oldKids) == 0 && len(newKids) == 0:
		return nil
	case len(oldKids) == 0:
		for _, c := range newKids {
			d.emit(Patch{Op: PatchInsertNode, Path: path, Key: c.Key, Node: c.Node})
		}
		return nil
	case len(newKids) == 0:
		for _, c := range oldKids {
			d.emit(Patch{Op: PatchRemoveNode, Path: path, Key: c.Key})
		}
		return nil
	}

	if !HasKeys(prev.Children) && !HasKeys(next.Children) {
		return d.diffUnkeyedChildren(path, oldKids, newKids)
	}
	return d.diffKeyedChildren(path, oldKids, newKids)
}

// diffUnkeyedChildren matches children by position: the shorter list's
// length is compared in place, the old tail is removed and the new tail
// appended.
func (d *differ) diffUnkeyedChildren(path []string, oldKids, newKids []Child) []pending {
	common := min(len(oldKids), len(newKids))

	for _, c := range oldKids[common:] {
		d.emit(Patch{Op: PatchRemoveNode, Path: path, Key: c.Key})
	}
	for _, c := range newKids[common:] {
		d.emit(Patch{Op: PatchInsertNode, Path: path, Key: c.Key, Node: c.Node})
	}

	retained := make([]pending, 0, common)
	for i := 0; i < common; i++ {
		retained = append(retained, pending{
			path: childPath(path, newKids[i].Key),
			prev: oldKids[i].Node,
			next: newKids[i].Node,
		})
	}
	return retained
}

// diffKeyedChildren matches children by identity key. Retained children on
// the longest increasing subsequence of old positions stay put; the rest
// are moved. Moves are emitted last-to-first, each anchored on its next
// retained sibling; inserts follow, also last-to-first, anchored on their
// next sibling in the new list.
func (d *differ) diffKeyedChildren(path []string, oldKids, newKids []Child) []pending {
	oldIndex := make(map[string]int, len(oldKids))
	for i, c := range oldKids {
		oldIndex[c.Key] = i
	}
	newKeys := make(map[string]struct{}, len(newKids))
	for _, c := range newKids {
		newKeys[c.Key] = struct{}{}
	}

	for _, c := range oldKids {
		if _, ok := newKeys[c.Key]; !ok {
			d.emit(Patch{Op: PatchRemoveNode, Path: path, Key: c.Key})
		}
	}

	// seq holds the old index of each retained child, in new order;
	// at holds its new index.
	var (
		seq      []int
		at       []int
		isNew    = make([]bool, len(newKids))
		retained []pending
	)
	for j, c := range newKids {
		i, ok := oldIndex[c.Key]
		if !ok {
			isNew[j] = true
			continue
		}
		seq = append(seq, i)
		at = append(at, j)
		retained = append(retained, pending{
			path: childPath(path, c.Key),
			prev: oldKids[i].Node,
			next: c.Node,
		})
	}

	stable := longestIncreasingSubsequence(seq)
	anchor := ""
	for r := len(seq) - 1; r >= 0; r-- {
		key := newKids[at[r]].Key
		if !stable[r] {
			d.emit(Patch{Op: PatchMoveNode, Path: path, Key: key, Before: anchor})
		}
		anchor = key
	}

	for j := len(newKids) - 1; j >= 0; j-- {
		if !isNew[j] {
			continue
		}
		before := ""
		if j+1 < len(newKids) {
			before = newKids[j+1].Key
		}
		d.emit(Patch{Op: PatchInsertNode, Path: path, Key: newKids[j].Key, Before: before, Node: newKids[j].Node})
	}

	return retained
}

// diffProps compares attributes, style properties and DOM properties.
// Event handlers and key are skipped.
func (d *differ) diffProps(path []string, prev, next Props) {
	for _, name := range sortedKeys(prev, next) {
		pv, hadPrev := prev[name]
		nv, hasNext := next[name]
		if hadPrev && hasNext && propsEqual(pv, nv) {
			continue
		}

		switch {
		case IsProperty(name):
			if !hasNext || nv == nil {
				if hadPrev && pv != nil {
					d.emit(Patch{Op: PatchRemoveProp, Path: path, Name: name})
				}
				continue
			}
			d.emit(Patch{Op: PatchSetProp, Path: path, Name: name, Value: PropToString(nv), Raw: nv})

		case name == "style":
			d.diffStyle(path, pv, nv)

		default:
			d.diffAttr(path, name, pv, nv)
		}
	}
}

func (d *differ) diffAttr(path []string, name string, pv, nv any) {
	ps, hadPrev := AttrValue(pv)
	ns, hasNext := AttrValue(nv)
	switch {
	case !hasNext && hadPrev:
		d.emit(Patch{Op: PatchRemoveAttr, Path: path, Name: name})
	case hasNext && (!hadPrev || ps != ns):
		d.emit(Patch{Op: PatchSetAttr, Path: path, Name: name, Value: ns})
	}
}

// diffStyle diffs style maps per property. A style given as a string is
// handled as a plain attribute.
func (d *differ) diffStyle(path []string, pv, nv any) {
	prevStyle, prevIsMap := asStyle(pv)
	nextStyle, nextIsMap := asStyle(nv)

	switch {
	case nextIsMap && (prevIsMap || pv == nil):
		for _, prop := range styleKeys(prevStyle, nextStyle) {
			before, had := prevStyle[prop]
			after, has := nextStyle[prop]
			switch {
			case !has:
				d.emit(Patch{Op: PatchRemoveStyle, Path: path, Name: prop})
			case !had || before != after:
				d.emit(Patch{Op: PatchSetStyle, Path: path, Name: prop, Value: after})
			}
		}
	case nextIsMap:
		// String to map: drop the attribute, then set each property.
		d.emit(Patch{Op: PatchRemoveAttr, Path: path, Name: "style"})
		for _, prop := range styleKeys(nil, nextStyle) {
			d.emit(Patch{Op: PatchSetStyle, Path: path, Name: prop, Value: nextStyle[prop]})
		}
	default:
		d.diffAttr(path, "style", pv, nv)
	}
}

// childPath returns a fresh slice; patches keep their paths.
func childPath(path []string, key string) []string {
	p := make([]string, len(path)+1)
	copy(p, path)
	p[len(path)] = key
	return p
}
