// Package btree implements an in-memory B-tree with the classic CLRS
// insert and delete algorithms. The tree is generic over its key type;
// callers supply the comparator. Duplicate keys are permitted — uniqueness
// is a caller concern, enforced with Search before Insert.
package btree

import (
	"fmt"
	"sort"
)

// MinDegree is the smallest legal minimum degree.
const MinDegree = 2

type node[K any] struct {
	leaf     bool
	keys     []K
	children []*node[K]
}

// Tree is a B-tree of minimum degree t: every node except the root holds
// between t-1 and 2t-1 keys, an internal node with k keys has k+1
// children, and all leaves sit at the same depth.
type Tree[K any] struct {
	root *node[K]
	t    int
	cmp  func(a, b K) int
}

// New returns an empty tree of the given minimum degree. Degrees below
// MinDegree are rejected.
func New[K any](degree int, cmp func(a, b K) int) (*Tree[K], error) {
	if degree < MinDegree {
		return nil, fmt.Errorf("btree: minimum degree %d is below %d", degree, MinDegree)
	}
	return &Tree[K]{
		root: &node[K]{leaf: true},
		t:    degree,
		cmp:  cmp,
	}, nil
}

// Degree returns the minimum degree the tree was built with.
func (tr *Tree[K]) Degree() int { return tr.t }

// Len returns the number of keys stored.
func (tr *Tree[K]) Len() int {
	return tr.root.count()
}

func (n *node[K]) count() int {
	if n == nil {
		return 0
	}
	total := len(n.keys)
	for _, c := range n.children {
		total += c.count()
	}
	return total
}

// findIndex returns the position of the first key >= k.
func (n *node[K]) findIndex(k K, cmp func(a, b K) int) int {
	return sort.Search(len(n.keys), func(i int) bool {
		return cmp(n.keys[i], k) >= 0
	})
}

// Search reports whether k is present.
func (tr *Tree[K]) Search(k K) bool {
	n := tr.root
	for {
		i := n.findIndex(k, tr.cmp)
		if i < len(n.keys) && tr.cmp(n.keys[i], k) == 0 {
			return true
		}
		if n.leaf {
			return false
		}
		n = n.children[i]
	}
}

// Insert adds k to the tree. If the root is full it is split under a new
// root first; the descent then splits any full child before entering it,
// so no node on the path can overflow.
func (tr *Tree[K]) Insert(k K) {
	if len(tr.root.keys) == 2*tr.t-1 {
		s := &node[K]{children: []*node[K]{tr.root}}
		s.splitChild(0, tr.t)
		tr.root = s
	}
	tr.root.insertNonFull(k, tr.t, tr.cmp)
}

func (n *node[K]) insertNonFull(k K, t int, cmp func(a, b K) int) {
	i := n.findIndex(k, cmp)
	if n.leaf {
		n.keys = append(n.keys, k)
		copy(n.keys[i+1:], n.keys[i:])
		n.keys[i] = k
		return
	}
	if len(n.children[i].keys) == 2*t-1 {
		n.splitChild(i, t)
		if cmp(k, n.keys[i]) > 0 {
			i++
		}
	}
	n.children[i].insertNonFull(k, t, cmp)
}

// splitChild splits the full child at index i around its median key, which
// moves up into n.
func (n *node[K]) splitChild(i, t int) {
	y := n.children[i]
	z := &node[K]{leaf: y.leaf}

	z.keys = append(z.keys, y.keys[t:]...)
	mid := y.keys[t-1]
	y.keys = y.keys[:t-1]
	if !y.leaf {
		z.children = append(z.children, y.children[t:]...)
		y.children = y.children[:t]
	}

	n.children = append(n.children, nil)
	copy(n.children[i+2:], n.children[i+1:])
	n.children[i+1] = z

	var zero K
	n.keys = append(n.keys, zero)
	copy(n.keys[i+1:], n.keys[i:])
	n.keys[i] = mid
}

// Remove deletes one occurrence of k. Removing an absent key is a no-op.
// If the root ends up empty and non-leaf its sole child becomes the root.
func (tr *Tree[K]) Remove(k K) {
	tr.root.remove(k, tr.t, tr.cmp)
	if len(tr.root.keys) == 0 && !tr.root.leaf {
		tr.root = tr.root.children[0]
	}
}

func (n *node[K]) remove(k K, t int, cmp func(a, b K) int) {
	idx := n.findIndex(k, cmp)
	if idx < len(n.keys) && cmp(n.keys[idx], k) == 0 {
		if n.leaf {
			n.keys = append(n.keys[:idx], n.keys[idx+1:]...)
			return
		}
		n.removeInternal(idx, t, cmp)
		return
	}
	if n.leaf {
		return
	}
	// Key lives in the subtree at idx. Top the child up before descending
	// so deletion never visits a node with fewer than t keys.
	last := idx == len(n.keys)
	if len(n.children[idx].keys) < t {
		n.fill(idx, t)
	}
	if last && idx > len(n.keys) {
		n.children[idx-1].remove(k, t, cmp)
	} else {
		n.children[idx].remove(k, t, cmp)
	}
}

// removeInternal deletes the key at idx of an internal node by swapping in
// the predecessor or successor when an adjacent child can spare a key, or
// merging the two children around it otherwise.
func (n *node[K]) removeInternal(idx, t int, cmp func(a, b K) int) {
	k := n.keys[idx]
	switch {
	case len(n.children[idx].keys) >= t:
		pred := n.children[idx].max()
		n.keys[idx] = pred
		n.children[idx].remove(pred, t, cmp)
	case len(n.children[idx+1].keys) >= t:
		succ := n.children[idx+1].min()
		n.keys[idx] = succ
		n.children[idx+1].remove(succ, t, cmp)
	default:
		n.merge(idx)
		n.children[idx].remove(k, t, cmp)
	}
}

func (n *node[K]) max() K {
	cur := n
	for !cur.leaf {
		cur = cur.children[len(cur.children)-1]
	}
	return cur.keys[len(cur.keys)-1]
}

func (n *node[K]) min() K {
	cur := n
	for !cur.leaf {
		cur = cur.children[0]
	}
	return cur.keys[0]
}

// fill brings the child at idx up to at least t keys: borrow from the left
// sibling if it can spare one, else from the right, else merge.
func (n *node[K]) fill(idx, t int) {
	switch {
	case idx != 0 && len(n.children[idx-1].keys) >= t:
		n.borrowFromPrev(idx)
	case idx != len(n.keys) && len(n.children[idx+1].keys) >= t:
		n.borrowFromNext(idx)
	case idx != len(n.keys):
		n.merge(idx)
	default:
		n.merge(idx - 1)
	}
}

func (n *node[K]) borrowFromPrev(idx int) {
	child, sibling := n.children[idx], n.children[idx-1]

	child.keys = append(child.keys, *new(K))
	copy(child.keys[1:], child.keys)
	child.keys[0] = n.keys[idx-1]
	if !child.leaf {
		child.children = append(child.children, nil)
		copy(child.children[1:], child.children)
		child.children[0] = sibling.children[len(sibling.children)-1]
		sibling.children = sibling.children[:len(sibling.children)-1]
	}

	n.keys[idx-1] = sibling.keys[len(sibling.keys)-1]
	sibling.keys = sibling.keys[:len(sibling.keys)-1]
}

func (n *node[K]) borrowFromNext(idx int) {
	child, sibling := n.children[idx], n.children[idx+1]

	child.keys = append(child.keys, n.keys[idx])
	if !child.leaf {
		child.children = append(child.children, sibling.children[0])
		sibling.children = sibling.children[1:]
	}

	n.keys[idx] = sibling.keys[0]
	sibling.keys = sibling.keys[1:]
}

// merge folds the separator key at idx and the right sibling into the
// child at idx.
func (n *node[K]) merge(idx int) {
	child, sibling := n.children[idx], n.children[idx+1]

	child.keys = append(child.keys, n.keys[idx])
	child.keys = append(child.keys, sibling.keys...)
	if !child.leaf {
		child.children = append(child.children, sibling.children...)
	}

	n.keys = append(n.keys[:idx], n.keys[idx+1:]...)
	n.children = append(n.children[:idx+1], n.children[idx+2:]...)
}

// Ascend visits every key in non-decreasing order until fn returns false.
func (tr *Tree[K]) Ascend(fn func(K) bool) {
	tr.root.ascend(fn)
}

func (n *node[K]) ascend(fn func(K) bool) bool {
	for i, k := range n.keys {
		if !n.leaf && !n.children[i].ascend(fn) {
			return false
		}
		if !fn(k) {
			return false
		}
	}
	if !n.leaf {
		return n.children[len(n.children)-1].ascend(fn)
	}
	return true
}

// Keys returns every key in ascending order.
func (tr *Tree[K]) Keys() []K {
	out := make([]K, 0, tr.Len())
	tr.Ascend(func(k K) bool {
		out = append(out, k)
		return true
	})
	return out
}
